package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/talinda-pos/talinda-pos/internal/app"
	"github.com/talinda-pos/talinda-pos/internal/auth"
	jobmetrics "github.com/talinda-pos/talinda-pos/internal/jobs"
	"github.com/talinda-pos/talinda-pos/internal/orders"
	"github.com/talinda-pos/talinda-pos/internal/platform/db"
	"github.com/talinda-pos/talinda-pos/internal/shifts"
	"github.com/talinda-pos/talinda-pos/jobs"
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

	metrics := jobmetrics.NewMetrics(nil)

	authService := auth.NewService(auth.NewRepository(pool))
	shiftService := shifts.NewService(shifts.NewRepository(pool), authService, authService, logger)
	orderService := orders.NewService(orders.NewRepository(pool), shiftService, logger)

	sweepJob := jobs.NewOrderSweepJob(orderService, cfg.OrderMaxAge, logger, metrics)
	resetJob := jobs.NewShiftResetJob(shiftService, logger, metrics)

	now := time.Now().UTC()
	sweepTask, err := jobs.NewOrderSweepTask(now)
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}
	resetTask, err := jobs.NewShiftResetTask(now)
	if err != nil {
		logger.Error("build reset task", slog.Any("error", err))
		os.Exit(1)
	}

	sweepSpec := cronEvery(cfg.OrderSweepInterval)
	resetSpec := fmt.Sprintf("0 %d * * *", cfg.ShiftResetHour)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOrderSweep, Handler: sweepJob.Handle},
			{Type: jobs.TaskShiftReset, Handler: resetJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: sweepSpec, Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: resetSpec, Task: resetTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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

// cronEvery converts a duration to a cron spec, clamped to whole minutes
// inside one day.
func cronEvery(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	if minutes >= 24*60 {
		return "0 0 * * *"
	}
	if minutes >= 60 {
		return fmt.Sprintf("0 */%d * * *", minutes/60)
	}
	return fmt.Sprintf("*/%d * * * *", minutes)
}
