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

	"github.com/talinda-pos/talinda-pos/internal/app"
	"github.com/talinda-pos/talinda-pos/internal/auth"
	"github.com/talinda-pos/talinda-pos/internal/cart"
	"github.com/talinda-pos/talinda-pos/internal/catalog"
	"github.com/talinda-pos/talinda-pos/internal/orders"
	"github.com/talinda-pos/talinda-pos/internal/platform/cache"
	"github.com/talinda-pos/talinda-pos/internal/platform/db"
	"github.com/talinda-pos/talinda-pos/internal/reports"
	"github.com/talinda-pos/talinda-pos/internal/sales"
	"github.com/talinda-pos/talinda-pos/internal/shared"
	"github.com/talinda-pos/talinda-pos/internal/shifts"
	"github.com/talinda-pos/talinda-pos/jobs"
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

	sessionManager := shared.NewSessionManager(redisClient, "talinda_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	shiftRepo := shifts.NewRepository(pool)
	shiftService := shifts.NewService(shiftRepo, authService, authService, logger)
	shiftHandler := shifts.NewHandler(logger, shiftService)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, shiftService, logger)
	orderHandler := orders.NewHandler(logger, orderService, catalogService)

	saleRepo := sales.NewRepository(pool)
	saleService := sales.NewService(saleRepo, shiftService, logger)
	saleHandler := sales.NewHandler(logger, saleService)

	cartService := cart.NewService(cart.NewStore(), catalogService, orderService, saleService, logger)
	cartHandler := cart.NewHandler(logger, cartService)

	reportRepo := reports.NewRepository(pool)
	reportService := reports.NewService(reportRepo)
	reportHandler := reports.NewHandler(logger, reportService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		AuthHandler:    authHandler,
		CatalogHandler: catalogHandler,
		OrderHandler:   orderHandler,
		ShiftHandler:   shiftHandler,
		CartHandler:    cartHandler,
		SaleHandler:    saleHandler,
		ReportHandler:  reportHandler,
		JobHandler:     jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
