package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOrderSweep auto-completes active orders older than the configured
	// maximum age.
	TaskOrderSweep = "orders:sweep"
	// TaskShiftReset closes any shift still open at the daily boundary.
	TaskShiftReset = "shifts:reset"
)

// OrderSweepPayload carries scheduling metadata for a sweep run.
type OrderSweepPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewOrderSweepTask constructs an Asynq task for the order sweep.
func NewOrderSweepTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(OrderSweepPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderSweep, body, asynq.Queue(QueueDefault)), nil
}

// ShiftResetPayload carries scheduling metadata for a daily reset run.
type ShiftResetPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewShiftResetTask constructs an Asynq task for the daily shift reset.
func NewShiftResetTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ShiftResetPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShiftReset, body, asynq.Queue(QueueDefault)), nil
}
