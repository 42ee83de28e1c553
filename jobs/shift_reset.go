package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/talinda-pos/talinda-pos/internal/jobs"
)

// ShiftCloser is the slice of the shift service the daily reset needs.
type ShiftCloser interface {
	ResetDaily(ctx context.Context) (int, error)
}

// ShiftResetJob closes any shift still open at the daily boundary. Cashiers
// whose shifts were closed this way must re-authenticate.
type ShiftResetJob struct {
	Shifts  ShiftCloser
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewShiftResetJob wires dependencies for the reset handler.
func NewShiftResetJob(shifts ShiftCloser, logger *slog.Logger, metrics *jobmetrics.Metrics) *ShiftResetJob {
	return &ShiftResetJob{Shifts: shifts, Logger: logger, Metrics: metrics}
}

// Handle processes one daily reset run.
func (j *ShiftResetJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Shifts == nil {
		return errors.New("shift reset: handler not configured")
	}
	var payload ShiftResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskShiftReset)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	closed, err := j.Shifts.ResetDaily(ctx)
	if err != nil {
		resultErr = err
		j.logger().Error("daily shift reset", slog.Any("error", err))
		return resultErr
	}
	j.logger().Info("daily shift reset finished", slog.Int("closed", closed))
	return resultErr
}

func (j *ShiftResetJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskShiftReset))
	}
	return slog.Default().With(slog.String("job", TaskShiftReset))
}

func (j *ShiftResetJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
