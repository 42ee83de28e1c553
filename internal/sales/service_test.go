package sales

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

type stockState struct {
	qty     int
	tracked bool
}

type mockSaleRepo struct {
	nextSaleID int64
	nextLineID int64
	sales      map[int64]*Sale
	stock      map[int64]*stockState
}

func newMockSaleRepo() *mockSaleRepo {
	return &mockSaleRepo{
		nextSaleID: 1,
		nextLineID: 1,
		sales:      make(map[int64]*Sale),
		stock:      make(map[int64]*stockState),
	}
}

func (m *mockSaleRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockSaleRepo) Get(_ context.Context, id int64) (*Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockSaleRepo) GetLines(_ context.Context, saleID int64) ([]SaleLine, error) {
	s, ok := m.sales[saleID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return append([]SaleLine(nil), s.Lines...), nil
}

func (m *mockSaleRepo) List(_ context.Context, from, to time.Time, _, _ int) ([]Sale, int, error) {
	var result []Sale
	for _, s := range m.sales {
		if !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			result = append(result, *s)
		}
	}
	return result, len(result), nil
}

func (m *mockSaleRepo) Create(_ context.Context, s Sale) (int64, error) {
	id := m.nextSaleID
	m.nextSaleID++
	s.ID = id
	s.Lines = nil
	m.sales[id] = &s
	return id, nil
}

func (m *mockSaleRepo) InsertLine(_ context.Context, line SaleLine) (int64, error) {
	s, ok := m.sales[line.SaleID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	line.ID = m.nextLineID
	m.nextLineID++
	s.Lines = append(s.Lines, line)
	return line.ID, nil
}

func (m *mockSaleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.sales[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.sales, id)
	return nil
}

func (m *mockSaleRepo) AdjustStock(_ context.Context, productID int64, delta int) error {
	if st, ok := m.stock[productID]; ok && st.tracked {
		st.qty += delta
	}
	return nil
}

func (m *mockSaleRepo) StockQty(_ context.Context, productID int64) (int, bool, error) {
	st, ok := m.stock[productID]
	if !ok {
		return 0, false, shared.ErrNotFound
	}
	return st.qty, st.tracked, nil
}

type staticShiftFinder struct {
	id   int64
	open bool
}

func (f staticShiftFinder) OpenShiftID(context.Context) (int64, bool, error) {
	return f.id, f.open, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func croissantSale() Sale {
	return Sale{
		CashierID:   1,
		Subtotal:    8,
		TotalAmount: 8,
		Lines:       []SaleLine{{ProductID: 10, Quantity: 2, UnitPrice: 4}},
	}
}

func TestRecordSale(t *testing.T) {
	repo := newMockSaleRepo()
	repo.stock[10] = &stockState{qty: 5, tracked: true}
	svc := NewService(repo, staticShiftFinder{id: 3, open: true}, testLogger())
	svc.WithNow(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) })

	sale, err := svc.Record(context.Background(), croissantSale())
	require.NoError(t, err)
	require.NotNil(t, sale.ShiftID)
	assert.Equal(t, int64(3), *sale.ShiftID)
	assert.Len(t, sale.Lines, 1)
	assert.Equal(t, 3, repo.stock[10].qty)
}

func TestRecordSaleNoOpenShift(t *testing.T) {
	repo := newMockSaleRepo()
	repo.stock[10] = &stockState{qty: 5, tracked: true}
	svc := NewService(repo, staticShiftFinder{}, testLogger())

	sale, err := svc.Record(context.Background(), croissantSale())
	require.NoError(t, err)
	assert.Nil(t, sale.ShiftID)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	repo := newMockSaleRepo()
	repo.stock[10] = &stockState{qty: 1, tracked: true}
	svc := NewService(repo, staticShiftFinder{}, testLogger())

	_, err := svc.Record(context.Background(), croissantSale())
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, repo.sales)
	assert.Equal(t, 1, repo.stock[10].qty)
}

func TestRecordSaleUntrackedProductIgnoresStock(t *testing.T) {
	repo := newMockSaleRepo()
	repo.stock[10] = &stockState{qty: 0, tracked: false}
	svc := NewService(repo, staticShiftFinder{}, testLogger())

	_, err := svc.Record(context.Background(), croissantSale())
	require.NoError(t, err)
	assert.Equal(t, 0, repo.stock[10].qty)
}

func TestRecordSaleValidation(t *testing.T) {
	repo := newMockSaleRepo()
	svc := NewService(repo, staticShiftFinder{}, testLogger())

	_, err := svc.Record(context.Background(), Sale{CashierID: 1})
	assert.ErrorIs(t, err, shared.ErrValidation)

	bad := croissantSale()
	bad.Lines[0].Quantity = 0
	_, err = svc.Record(context.Background(), bad)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteRestoresStock(t *testing.T) {
	repo := newMockSaleRepo()
	repo.stock[10] = &stockState{qty: 5, tracked: true}
	svc := NewService(repo, staticShiftFinder{}, testLogger())

	sale, err := svc.Record(context.Background(), croissantSale())
	require.NoError(t, err)
	require.Equal(t, 3, repo.stock[10].qty)

	require.NoError(t, svc.Delete(context.Background(), sale.ID))
	assert.Equal(t, 5, repo.stock[10].qty)
	_, err = svc.Get(context.Background(), sale.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
