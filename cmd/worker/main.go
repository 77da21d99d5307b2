package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/hcp-erp/hcp-erp/internal/app"
	"github.com/hcp-erp/hcp-erp/internal/billing"
	"github.com/hcp-erp/hcp-erp/internal/collections"
	jobmetrics "github.com/hcp-erp/hcp-erp/internal/jobs"
	"github.com/hcp-erp/hcp-erp/internal/platform/cache"
	"github.com/hcp-erp/hcp-erp/internal/platform/db"
	"github.com/hcp-erp/hcp-erp/internal/reports"
	"github.com/hcp-erp/hcp-erp/internal/shared"
	"github.com/hcp-erp/hcp-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sequences := shared.NewSequenceStore(redisClient)

	collectionsRepo := collections.NewRepository(pool)
	collectionsService := collections.NewService(collectionsRepo, sequences, logger)

	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(billingRepo, sequences, collectionsService, logger)

	reportsService := reports.NewService(reports.NewSource(pool), redisClient, cfg.ReportCacheTTL, logger)

	metrics := jobmetrics.NewMetrics(nil)
	overdueJob := jobs.NewOverdueScanJob(billingService, logger, metrics)
	warmupJob := jobs.NewReportsWarmupJob(reportsService, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBillingOverdueScan, Handler: overdueJob.Handle},
			{Type: jobs.TaskReportsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/15 * * * *", Task: jobs.NewReportsWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
