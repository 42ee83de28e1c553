package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSweepTarget struct {
	created   map[int64]time.Time
	status    map[int64]string
	failOn    map[int64]bool
	completes []int64
}

func newMockSweepTarget() *mockSweepTarget {
	return &mockSweepTarget{
		created: make(map[int64]time.Time),
		status:  make(map[int64]string),
		failOn:  make(map[int64]bool),
	}
}

func (m *mockSweepTarget) addOrder(id int64, createdAt time.Time, status string) {
	m.created[id] = createdAt
	m.status[id] = status
}

func (m *mockSweepTarget) StaleActiveIDs(_ context.Context, cutoff time.Time) ([]int64, error) {
	var ids []int64
	for id, at := range m.created {
		if m.status[id] == "ACTIVE" && at.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockSweepTarget) Complete(_ context.Context, id int64, _ int64) (bool, error) {
	if m.failOn[id] {
		return false, errors.New("storage down")
	}
	if m.status[id] != "ACTIVE" {
		return false, nil
	}
	m.status[id] = "COMPLETED"
	m.completes = append(m.completes, id)
	return true, nil
}

func newTestSweepJob(target *mockSweepTarget, now time.Time) *OrderSweepJob {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := NewOrderSweepJob(target, 24*time.Hour, logger, nil)
	job.WithClock(func() time.Time { return now })
	return job
}

func TestSweepCompletesOnlyStaleOrders(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	target := newMockSweepTarget()
	target.addOrder(1, now.Add(-25*time.Hour), "ACTIVE")
	target.addOrder(2, now.Add(-2*time.Hour), "ACTIVE")
	target.addOrder(3, now.Add(-30*time.Hour), "COMPLETED")

	job := newTestSweepJob(target, now)
	swept, failed, err := job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)
	assert.Equal(t, 0, failed)
	assert.Equal(t, []int64{1}, target.completes)
	assert.Equal(t, "ACTIVE", target.status[2], "recent orders are left alone")
}

func TestSweepIsIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	target := newMockSweepTarget()
	target.addOrder(1, now.Add(-25*time.Hour), "ACTIVE")

	job := newTestSweepJob(target, now)
	swept, _, err := job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	// A second run finds nothing left to do.
	swept, failed, err := job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
	assert.Equal(t, 0, failed)
	assert.Equal(t, []int64{1}, target.completes, "each order completes at most once")
}

func TestSweepIsolatesPerOrderFailures(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	target := newMockSweepTarget()
	target.addOrder(1, now.Add(-25*time.Hour), "ACTIVE")
	target.addOrder(2, now.Add(-26*time.Hour), "ACTIVE")
	target.addOrder(3, now.Add(-27*time.Hour), "ACTIVE")
	target.failOn[2] = true

	job := newTestSweepJob(target, now)
	swept, failed, err := job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, swept)
	assert.Equal(t, 1, failed)
	assert.ElementsMatch(t, []int64{1, 3}, target.completes)
}

func TestSweepEmpty(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	job := newTestSweepJob(newMockSweepTarget(), now)

	swept, failed, err := job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, swept)
	assert.Zero(t, failed)
}
