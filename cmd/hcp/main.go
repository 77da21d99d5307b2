package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/hcp-erp/hcp-erp/internal/app"
	"github.com/hcp-erp/hcp-erp/internal/auth"
	"github.com/hcp-erp/hcp-erp/internal/billing"
	"github.com/hcp-erp/hcp-erp/internal/catalog"
	"github.com/hcp-erp/hcp-erp/internal/collections"
	"github.com/hcp-erp/hcp-erp/internal/crm"
	"github.com/hcp-erp/hcp-erp/internal/dispatch"
	"github.com/hcp-erp/hcp-erp/internal/observability"
	"github.com/hcp-erp/hcp-erp/internal/orders"
	"github.com/hcp-erp/hcp-erp/internal/platform/cache"
	"github.com/hcp-erp/hcp-erp/internal/platform/db"
	"github.com/hcp-erp/hcp-erp/internal/rbac"
	"github.com/hcp-erp/hcp-erp/internal/reports"
	"github.com/hcp-erp/hcp-erp/internal/shared"
	"github.com/hcp-erp/hcp-erp/internal/users"
	"github.com/hcp-erp/hcp-erp/jobs"
	"github.com/hcp-erp/hcp-erp/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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

	sessionManager := shared.NewSessionManager(redisClient, "hcp_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	sequences := shared.NewSequenceStore(redisClient)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, redisClient)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rbacMiddleware := rbac.Middleware{Logger: logger}
	menuHandler := &rbac.Handler{}

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, sequences, logger)
	ordersHandler := orders.NewHandler(logger, ordersService)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo, sequences, logger)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	collectionsRepo := collections.NewRepository(pool)
	collectionsService := collections.NewService(collectionsRepo, sequences, logger)
	collectionsHandler := collections.NewHandler(logger, collectionsService)

	renderer := report.NewRenderer(report.NewClient(cfg.GotenbergURL))

	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(billingRepo, sequences, collectionsService, logger)
	billingHandler := billing.NewHandler(logger, billingService, renderer)

	dispatchRepo := dispatch.NewRepository(pool)
	dispatchService := dispatch.NewService(dispatchRepo, sequences, logger)
	dispatchHandler := dispatch.NewHandler(logger, dispatchService)

	crmRepo := crm.NewRepository(pool)
	crmService := crm.NewService(crmRepo, sequences, logger)
	crmHandler := crm.NewHandler(logger, crmService)

	reportsService := reports.NewService(reports.NewSource(pool), redisClient, cfg.ReportCacheTTL, logger)
	reportsHandler := reports.NewHandler(logger, reportsService, renderer)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, logger)
	usersHandler := users.NewHandler(logger, usersService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		RBACMiddleware:     rbacMiddleware,
		AuthHandler:        authHandler,
		MenuHandler:        menuHandler,
		OrdersHandler:      ordersHandler,
		CatalogHandler:     catalogHandler,
		BillingHandler:     billingHandler,
		DispatchHandler:    dispatchHandler,
		CRMHandler:         crmHandler,
		CollectionsHandler: collectionsHandler,
		ReportsHandler:     reportsHandler,
		UsersHandler:       usersHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
