package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/hcp-erp/hcp-erp/internal/jobs"
)

// Warmer pre-computes the report datasets into the cache.
type Warmer interface {
	Warm(ctx context.Context) error
}

// ReportsWarmupJob keeps the dashboard's report cache hot.
type ReportsWarmupJob struct {
	Reports Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(warmer Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: warmer, Logger: logger, Metrics: metrics}
}

// Handle processes report-warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}

	tracker := j.Metrics.Track(TaskReportsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Reports.Warm(ctx); err != nil {
		resultErr = err
		return err
	}
	j.Logger.Info("report cache warmed")
	return nil
}
