package orders

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talinda-pos/talinda-pos/internal/shared"
)

type mockOrderRepo struct {
	orders     map[int64]*Order
	lines      map[int64][]OrderLine
	nextID     int64
	nextLineID int64
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders:     make(map[int64]*Order),
		lines:      make(map[int64][]OrderLine),
		nextID:     1,
		nextLineID: 1,
	}
}

func (m *mockOrderRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockOrderRepo) Get(_ context.Context, id int64) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	cp.Lines = append([]OrderLine(nil), m.lines[id]...)
	return &cp, nil
}

func (m *mockOrderRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	for id, o := range m.orders {
		if o.OrderNumber == number {
			return m.Get(ctx, id)
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockOrderRepo) GetLines(_ context.Context, orderID int64) ([]OrderLine, error) {
	return append([]OrderLine(nil), m.lines[orderID]...), nil
}

func (m *mockOrderRepo) List(_ context.Context, req ListOrdersRequest) ([]Order, int, error) {
	var out []Order
	for _, o := range m.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *mockOrderRepo) Create(_ context.Context, o Order) (int64, error) {
	o.ID = m.nextID
	m.nextID++
	m.orders[o.ID] = &o
	return o.ID, nil
}

func (m *mockOrderRepo) InsertLine(_ context.Context, line OrderLine) (int64, error) {
	line.ID = m.nextLineID
	m.nextLineID++
	m.lines[line.OrderID] = append(m.lines[line.OrderID], line)
	return line.ID, nil
}

func (m *mockOrderRepo) UpdateLineQuantity(_ context.Context, lineID int64, quantity int) error {
	for orderID := range m.lines {
		for i := range m.lines[orderID] {
			if m.lines[orderID][i].ID == lineID {
				m.lines[orderID][i].Quantity = quantity
				return nil
			}
		}
	}
	return shared.ErrNotFound
}

func (m *mockOrderRepo) UpdateHeader(_ context.Context, id int64, customerName, notes *string) error {
	o, ok := m.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	if customerName != nil {
		o.CustomerName = customerName
	}
	if notes != nil {
		o.Notes = notes
	}
	return nil
}

func (m *mockOrderRepo) UpdateTotals(_ context.Context, id int64, subtotal, discount, tax, total float64) error {
	o, ok := m.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Subtotal, o.DiscountAmount, o.TaxAmount, o.TotalAmount = subtotal, discount, tax, total
	return nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id int64, from, to OrderStatus, actorID int64, reason *string, at time.Time) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	switch to {
	case OrderStatusCompleted:
		o.CompletedAt = &at
		o.CompletedBy = &actorID
	case OrderStatusCancelled:
		o.CancelledAt = &at
		o.CancelledBy = &actorID
		o.CancellationReason = reason
	}
	return true, nil
}

func (m *mockOrderRepo) FindStaleActive(_ context.Context, cutoff time.Time) ([]int64, error) {
	var ids []int64
	for id, o := range m.orders {
		if o.Status == OrderStatusActive && o.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type staticShiftFinder struct {
	id   int64
	open bool
}

func (f *staticShiftFinder) OpenShiftID(_ context.Context) (int64, bool, error) {
	return f.id, f.open, nil
}

func newTestOrderService(repo Repository, shifts OpenShiftFinder) *Service {
	return NewService(repo, shifts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func twoLines() []LineInput {
	return []LineInput{
		{ProductID: 1, Quantity: 2, UnitPrice: 10, TaxRate: 14},
		{ProductID: 2, Quantity: 1, UnitPrice: 5},
	}
}

func TestCreateOrder(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestOrderService(repo, &staticShiftFinder{id: 3, open: true})

	order, err := svc.Create(context.Background(), CreateOrderRequest{Lines: twoLines()}, 7)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusActive, order.Status)
	assert.Equal(t, int64(7), order.CashierID)
	require.NotNil(t, order.ShiftID)
	assert.Equal(t, int64(3), *order.ShiftID)
	assert.Equal(t, 25.0, order.Subtotal)
	assert.InDelta(t, 2.8, order.TaxAmount, 1e-9)
	assert.InDelta(t, 27.8, order.TotalAmount, 1e-9)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.Len(t, order.Lines, 2)
}

func TestCreateOrderNoOpenShift(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestOrderService(repo, &staticShiftFinder{open: false})

	order, err := svc.Create(context.Background(), CreateOrderRequest{Lines: twoLines()}, 7)
	require.NoError(t, err)
	assert.Nil(t, order.ShiftID, "orders without an open shift stay unbound")
}

func TestCreateOrderEmptyLines(t *testing.T) {
	svc := newTestOrderService(newMockOrderRepo(), nil)

	_, err := svc.Create(context.Background(), CreateOrderRequest{}, 7)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAddItemsMergesByProduct(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestOrderService(repo, nil)

	order, err := svc.Create(context.Background(), CreateOrderRequest{Lines: twoLines()}, 7)
	require.NoError(t, err)

	updated, err := svc.AddItems(context.Background(), order.ID, []LineInput{
		{ProductID: 1, Quantity: 3, UnitPrice: 10, TaxRate: 14},
		{ProductID: 9, Quantity: 1, UnitPrice: 4},
	})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 3)

	var merged *OrderLine
	for i := range updated.Lines {
		if updated.Lines[i].ProductID == 1 {
			merged = &updated.Lines[i]
		}
	}
	require.NotNil(t, merged)
	assert.Equal(t, 5, merged.Quantity)
	assert.Equal(t, 59.0, updated.Subtotal) // 5*10 + 1*5 + 1*4
}

func TestAddItemsRejectsCompleted(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestOrderService(repo, nil)

	order, err := svc.Create(context.Background(), CreateOrderRequest{Lines: twoLines()}, 7)
	require.NoError(t, err)
	done, err := svc.Complete(context.Background(), order.ID, 7)
	require.NoError(t, err)
	require.True(t, done)

	_, err = svc.AddItems(context.Background(), order.ID, []LineInput{{ProductID: 1, Quantity: 1}})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestCompleteOrder(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestOrderService(repo, nil)
	fixed := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return fixed })

	order, err := svc.Create(context.Background(), CreateOrderRequest{Lines: twoLines()}, 7)
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), order.ID, 9)
	require.NoError(t, err)
	assert.True(t, done)

	got, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, fixed, *got.CompletedAt)
	require.NotNil(t, got.CompletedBy)
	assert.Equal(t, int64(9), *got.CompletedBy)
}

func TestCompleteIsSilentlyIdempotent(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestOrderService(repo, nil)

	order, err := svc.Create(context.Background(), CreateOrderRequest{Lines: twoLines()}, 7)
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), order.ID, 7)
	require.NoError(t, err)
	assert.True(t, done)

	// Completing again reports false without an error.
	done, err = svc.Complete(context.Background(), order.ID, 7)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestCancelRequiresReason(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestOrderService(repo, nil)

	order, err := svc.Create(context.Background(), CreateOrderRequest{Lines: twoLines()}, 7)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, 7, "   ")
	require.ErrorIs(t, err, shared.ErrValidation)

	done, err := svc.Cancel(context.Background(), order.ID, 7, "customer left")
	require.NoError(t, err)
	assert.True(t, done)

	got, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, got.Status)
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, "customer left", *got.CancellationReason)
}

func TestCancelCompletedReturnsFalse(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestOrderService(repo, nil)

	order, err := svc.Create(context.Background(), CreateOrderRequest{Lines: twoLines()}, 7)
	require.NoError(t, err)
	done, err := svc.Complete(context.Background(), order.ID, 7)
	require.NoError(t, err)
	require.True(t, done)

	done, err = svc.Cancel(context.Background(), order.ID, 7, "too late")
	require.NoError(t, err)
	assert.False(t, done, "terminal orders cannot be cancelled")
}

func TestUpdateDetailsActiveOnly(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestOrderService(repo, nil)

	order, err := svc.Create(context.Background(), CreateOrderRequest{Lines: twoLines()}, 7)
	require.NoError(t, err)

	name := "Walk-in"
	updated, err := svc.UpdateDetails(context.Background(), order.ID, UpdateOrderRequest{CustomerName: &name})
	require.NoError(t, err)
	require.NotNil(t, updated.CustomerName)
	assert.Equal(t, "Walk-in", *updated.CustomerName)

	_, err = svc.Cancel(context.Background(), order.ID, 7, "changed mind")
	require.NoError(t, err)

	_, err = svc.UpdateDetails(context.Background(), order.ID, UpdateOrderRequest{CustomerName: &name})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestDiscountClampedToSubtotal(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestOrderService(repo, nil)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		DiscountAmount: 1000,
		Lines:          []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, 10.0, order.DiscountAmount)
	assert.Equal(t, 0.0, order.TotalAmount)
}
