package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/talinda-pos/talinda-pos/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SweepTarget is the slice of the order service the sweep needs: finding
// stale active orders and completing them.
type SweepTarget interface {
	StaleActiveIDs(ctx context.Context, cutoff time.Time) ([]int64, error)
	Complete(ctx context.Context, id int64, actorID int64) (bool, error)
}

// OrderSweepJob auto-completes active orders older than MaxAge. An order that
// reached a terminal state between listing and completion is skipped, so
// overlapping runs converge on the same result.
type OrderSweepJob struct {
	Orders  SweepTarget
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	MaxAge  time.Duration
	clock   func() time.Time
}

// NewOrderSweepJob wires dependencies for the sweep handler.
func NewOrderSweepJob(target SweepTarget, maxAge time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *OrderSweepJob {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &OrderSweepJob{
		Orders:  target,
		Logger:  logger,
		Metrics: metrics,
		MaxAge:  maxAge,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the job clock for testing.
func (j *OrderSweepJob) WithClock(fn func() time.Time) {
	if fn != nil {
		j.clock = fn
	}
}

// Handle processes one sweep run.
func (j *OrderSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Orders == nil {
		return errors.New("order sweep: handler not configured")
	}
	var payload OrderSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskOrderSweep)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	swept, failed, err := j.Sweep(ctx)
	if err != nil {
		resultErr = err
		return resultErr
	}
	if failed > 0 {
		// Surface partial failure so Asynq retries; completed orders stay
		// completed, the retry only touches the remainder.
		resultErr = errors.New("order sweep: some orders failed to complete")
	}
	j.metrics().AddSweptOrders(swept)
	return resultErr
}

// Sweep finds and completes stale active orders, returning how many were
// completed and how many failed. A failure on one order does not stop the
// rest of the run.
func (j *OrderSweepJob) Sweep(ctx context.Context) (swept, failed int, err error) {
	cutoff := j.now().Add(-j.MaxAge)
	logger := j.logger()

	ids, err := j.Orders.StaleActiveIDs(ctx, cutoff)
	if err != nil {
		logger.Error("list stale orders", slog.Any("error", err))
		return 0, 0, err
	}
	if len(ids) == 0 {
		return 0, 0, nil
	}

	for _, id := range ids {
		done, err := j.Orders.Complete(ctx, id, 0)
		if err != nil {
			failed++
			logger.Error("sweep order", slog.Int64("order_id", id), slog.Any("error", err))
			continue
		}
		if done {
			swept++
			logger.Info("auto-completed stale order", slog.Int64("order_id", id))
		}
	}
	logger.Info("order sweep finished",
		slog.Int("candidates", len(ids)), slog.Int("swept", swept), slog.Int("failed", failed))
	return swept, failed, nil
}

func (j *OrderSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskOrderSweep))
	}
	return slog.Default().With(slog.String("job", TaskOrderSweep))
}

func (j *OrderSweepJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *OrderSweepJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
