package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/hcp-erp/hcp-erp/internal/billing"
	jobmetrics "github.com/hcp-erp/hcp-erp/internal/jobs"
)

// OverdueLister supplies the invoices currently past due.
type OverdueLister interface {
	Overdue(ctx context.Context) ([]billing.Invoice, error)
}

// OverdueScanJob reports overdue invoices to the log. Invoice statuses
// stay derived on read; the scan changes nothing.
type OverdueScanJob struct {
	Billing OverdueLister
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewOverdueScanJob wires dependencies for the scan handler.
func NewOverdueScanJob(lister OverdueLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Billing: lister,
		Logger:  logger,
		Metrics: metrics,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes overdue-scan tasks.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Billing == nil {
		return errors.New("overdue scan: handler not configured")
	}

	tracker := j.Metrics.Track(TaskBillingOverdueScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.clock()
	overdue, err := j.Billing.Overdue(ctx)
	if err != nil {
		resultErr = err
		return err
	}

	var outstanding float64
	for _, invoice := range overdue {
		outstanding += invoice.Remaining()
		j.Logger.Warn("invoice overdue",
			slog.String("id", invoice.ID),
			slog.String("customer", invoice.Customer),
			slog.Float64("remaining", invoice.Remaining()),
			slog.Time("dueDate", invoice.DueDate))
	}
	j.Logger.Info("overdue scan finished",
		slog.Int("count", len(overdue)),
		slog.Float64("outstanding", outstanding),
		slog.Time("scannedAt", now))
	return nil
}
