package shifts

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talinda-pos/talinda-pos/internal/shared"
)

type mockShiftRepo struct {
	shifts map[int64]*Shift
	nextID int64

	salesTotal   float64
	salesCount   int
	orderTotal   float64
	orderCount   int
	byCashier    []CashierBreakdown
	byProduct    []ProductBreakdown
	closedShifts []int64
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[int64]*Shift), nextID: 1}
}

func (m *mockShiftRepo) Get(_ context.Context, id int64) (*Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockShiftRepo) FindOpen(_ context.Context) (*Shift, error) {
	for _, s := range m.shifts {
		if s.Status == ShiftStatusOpen {
			cp := *s
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockShiftRepo) Create(_ context.Context, cashierID int64, openingAmount float64, openedAt time.Time) (*Shift, error) {
	for _, s := range m.shifts {
		if s.Status == ShiftStatusOpen {
			return nil, shared.ErrShiftConflict
		}
	}
	s := &Shift{
		ID:            m.nextID,
		CashierID:     cashierID,
		OpeningAmount: openingAmount,
		Status:        ShiftStatusOpen,
		OpenedAt:      openedAt,
	}
	m.shifts[s.ID] = s
	m.nextID++
	cp := *s
	return &cp, nil
}

func (m *mockShiftRepo) Close(_ context.Context, id int64, closedAt time.Time) error {
	s, ok := m.shifts[id]
	if !ok {
		return shared.ErrNotFound
	}
	if s.Status != ShiftStatusOpen {
		return shared.ErrInvalidState
	}
	s.Status = ShiftStatusClosed
	s.ClosedAt = &closedAt
	m.closedShifts = append(m.closedShifts, id)
	return nil
}

func (m *mockShiftRepo) List(_ context.Context, limit, offset int) ([]Shift, int, error) {
	var out []Shift
	for _, s := range m.shifts {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockShiftRepo) SalesSummary(_ context.Context, _, _ time.Time) (float64, int, error) {
	return m.salesTotal, m.salesCount, nil
}

func (m *mockShiftRepo) CompletedOrderSummary(_ context.Context, _, _ time.Time) (float64, int, error) {
	return m.orderTotal, m.orderCount, nil
}

func (m *mockShiftRepo) SalesByCashier(_ context.Context, _, _ time.Time) ([]CashierBreakdown, error) {
	return m.byCashier, nil
}

func (m *mockShiftRepo) SalesByProduct(_ context.Context, _, _ time.Time) ([]ProductBreakdown, error) {
	return m.byProduct, nil
}

type mockVerifier struct {
	password string
}

func (m *mockVerifier) VerifyPassword(_ context.Context, _ int64, password string) error {
	if password != m.password {
		return shared.ErrAuthentication
	}
	return nil
}

type mockReauth struct {
	flagged []int64
}

func (m *mockReauth) FlagReauth(_ context.Context, userID int64) error {
	m.flagged = append(m.flagged, userID)
	return nil
}

func newTestService(repo *mockShiftRepo, verifier PasswordVerifier, reauth ReauthFlagger) *Service {
	return NewService(repo, verifier, reauth, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestOpenShift(t *testing.T) {
	repo := newMockShiftRepo()
	svc := newTestService(repo, &mockVerifier{password: "secret"}, nil)

	shift, err := svc.Open(context.Background(), 7, 100)
	require.NoError(t, err)
	assert.Equal(t, ShiftStatusOpen, shift.Status)
	assert.Equal(t, int64(7), shift.CashierID)
	assert.Equal(t, 100.0, shift.OpeningAmount)
}

func TestOpenShiftNegativeAmount(t *testing.T) {
	repo := newMockShiftRepo()
	svc := newTestService(repo, &mockVerifier{password: "secret"}, nil)

	_, err := svc.Open(context.Background(), 7, -5)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestOpenShiftConflict(t *testing.T) {
	repo := newMockShiftRepo()
	svc := newTestService(repo, &mockVerifier{password: "secret"}, nil)

	first, err := svc.Open(context.Background(), 7, 100)
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), 8, 50)
	require.ErrorIs(t, err, shared.ErrShiftConflict)

	// The first shift is untouched by the failed attempt.
	got, err := svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, ShiftStatusOpen, got.Status)
}

func TestCloseShift(t *testing.T) {
	repo := newMockShiftRepo()
	svc := newTestService(repo, &mockVerifier{password: "secret"}, nil)

	shift, err := svc.Open(context.Background(), 7, 100)
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), shift.ID, 7, "secret")
	require.NoError(t, err)
	assert.Equal(t, ShiftStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
}

func TestCloseShiftWrongPassword(t *testing.T) {
	repo := newMockShiftRepo()
	svc := newTestService(repo, &mockVerifier{password: "secret"}, nil)

	shift, err := svc.Open(context.Background(), 7, 100)
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), shift.ID, 7, "wrong")
	require.ErrorIs(t, err, shared.ErrAuthentication)

	got, err := svc.Get(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, ShiftStatusOpen, got.Status, "failed verification must not close the shift")
}

func TestCloseShiftAlreadyClosed(t *testing.T) {
	repo := newMockShiftRepo()
	svc := newTestService(repo, &mockVerifier{password: "secret"}, nil)

	shift, err := svc.Open(context.Background(), 7, 100)
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), shift.ID, 7, "secret")
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), shift.ID, 7, "secret")
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestReopenAfterClose(t *testing.T) {
	repo := newMockShiftRepo()
	svc := newTestService(repo, &mockVerifier{password: "secret"}, nil)

	shift, err := svc.Open(context.Background(), 7, 100)
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), shift.ID, 7, "secret")
	require.NoError(t, err)

	// Closing frees the singleton slot.
	next, err := svc.Open(context.Background(), 8, 200)
	require.NoError(t, err)
	assert.NotEqual(t, shift.ID, next.ID)
}

func TestResetDaily(t *testing.T) {
	repo := newMockShiftRepo()
	reauth := &mockReauth{}
	svc := newTestService(repo, &mockVerifier{password: "secret"}, reauth)

	shift, err := svc.Open(context.Background(), 7, 100)
	require.NoError(t, err)

	n, err := svc.ResetDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.Get(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, ShiftStatusClosed, got.Status)
	assert.Equal(t, []int64{7}, reauth.flagged)
}

func TestResetDailyNoOpenShift(t *testing.T) {
	repo := newMockShiftRepo()
	svc := newTestService(repo, &mockVerifier{password: "secret"}, &mockReauth{})

	n, err := svc.ResetDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestShiftReport(t *testing.T) {
	repo := newMockShiftRepo()
	repo.salesTotal, repo.salesCount = 350.50, 12
	repo.orderTotal, repo.orderCount = 120.00, 3
	repo.byCashier = []CashierBreakdown{{CashierID: 7, CashierName: "Dana", Count: 12, Total: 350.50}}
	repo.byProduct = []ProductBreakdown{{ProductID: 1, ProductName: "Espresso", Quantity: 20, Total: 80}}
	svc := newTestService(repo, &mockVerifier{password: "secret"}, nil)

	shift, err := svc.Open(context.Background(), 7, 100)
	require.NoError(t, err)

	report, err := svc.Report(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, 350.50, report.SalesTotal)
	assert.Equal(t, 12, report.SalesCount)
	assert.Equal(t, 120.00, report.CompletedOrderTotal)
	assert.Equal(t, 3, report.CompletedOrders)
	require.Len(t, report.ByCashier, 1)
	require.Len(t, report.ByProduct, 1)
}
