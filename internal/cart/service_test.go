package cart

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talinda-pos/talinda-pos/internal/catalog"
	"github.com/talinda-pos/talinda-pos/internal/orders"
	"github.com/talinda-pos/talinda-pos/internal/sales"
	"github.com/talinda-pos/talinda-pos/internal/shared"
)

type mockCatalog struct {
	products map[int64]*catalog.PricedProduct
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*catalog.PricedProduct, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

type mockOrders struct {
	orders    map[int64]*orders.Order
	completed []int64
}

func (m *mockOrders) Get(_ context.Context, id int64) (*orders.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (m *mockOrders) Complete(_ context.Context, id int64, _ int64) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.Status != orders.OrderStatusActive {
		return false, nil
	}
	o.Status = orders.OrderStatusCompleted
	m.completed = append(m.completed, id)
	return true, nil
}

type mockSales struct {
	recorded []sales.Sale
	nextID   int64
}

func (m *mockSales) Record(_ context.Context, sale sales.Sale) (*sales.Sale, error) {
	m.nextID++
	sale.ID = m.nextID
	m.recorded = append(m.recorded, sale)
	return &sale, nil
}

func espresso() *catalog.PricedProduct {
	return &catalog.PricedProduct{
		Product: catalog.Product{ID: 1, Name: "Espresso", Price: 5, IsActive: true},
		TaxRate: 0,
	}
}

func newTestCartService(cat *mockCatalog, ord *mockOrders, rec *mockSales) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewStore(), cat, ord, rec, logger)
}

func TestCheckoutRecordsSale(t *testing.T) {
	cat := &mockCatalog{products: map[int64]*catalog.PricedProduct{1: espresso()}}
	rec := &mockSales{}
	svc := newTestCartService(cat, &mockOrders{}, rec)

	_, err := svc.AddItem(context.Background(), 7, 1, 5)
	require.NoError(t, err)

	result, err := svc.Checkout(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, result.SaleID)
	assert.Nil(t, result.CompletedOrderID)
	assert.Equal(t, 25.0, result.Totals.Total)

	require.Len(t, rec.recorded, 1)
	assert.Equal(t, 25.0, rec.recorded[0].TotalAmount)
	assert.Equal(t, int64(7), rec.recorded[0].CashierID)

	view, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, view.Cart.IsEmpty(), "checkout empties the cart")
}

func TestCheckoutLoadedOrderCompletesWithoutSale(t *testing.T) {
	cat := &mockCatalog{products: map[int64]*catalog.PricedProduct{1: espresso()}}
	ord := &mockOrders{orders: map[int64]*orders.Order{
		4: {
			ID:          4,
			OrderNumber: "ORD-260824-AAAA",
			Status:      orders.OrderStatusActive,
			Subtotal:    25, TotalAmount: 25,
			Lines: []orders.OrderLine{{ProductID: 1, Quantity: 5, UnitPrice: 5}},
		},
	}}
	rec := &mockSales{}
	svc := newTestCartService(cat, ord, rec)

	view, err := svc.LoadOrder(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.Equal(t, 25.0, view.Totals.Total)

	result, err := svc.Checkout(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, result.CompletedOrderID)
	assert.Equal(t, int64(4), *result.CompletedOrderID)
	assert.Nil(t, result.SaleID)

	// The order was completed exactly once and no sale was written.
	assert.Equal(t, []int64{4}, ord.completed)
	assert.Empty(t, rec.recorded, "a loaded order must not also become a sale")
}

func TestCheckoutLoadedOrderAlreadyTerminal(t *testing.T) {
	cat := &mockCatalog{products: map[int64]*catalog.PricedProduct{1: espresso()}}
	ord := &mockOrders{orders: map[int64]*orders.Order{
		4: {
			ID:     4,
			Status: orders.OrderStatusActive,
			Lines:  []orders.OrderLine{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
		},
	}}
	rec := &mockSales{}
	svc := newTestCartService(cat, ord, rec)

	_, err := svc.LoadOrder(context.Background(), 7, 4)
	require.NoError(t, err)

	// Someone else completes the order between load and checkout.
	ord.orders[4].Status = orders.OrderStatusCompleted

	_, err = svc.Checkout(context.Background(), 7)
	require.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Empty(t, rec.recorded)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc := newTestCartService(&mockCatalog{}, &mockOrders{}, &mockSales{})

	_, err := svc.Checkout(context.Background(), 7)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAddItemInactiveProduct(t *testing.T) {
	p := espresso()
	p.IsActive = false
	cat := &mockCatalog{products: map[int64]*catalog.PricedProduct{1: p}}
	svc := newTestCartService(cat, &mockOrders{}, &mockSales{})

	_, err := svc.AddItem(context.Background(), 7, 1, 1)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAddItemStockLimit(t *testing.T) {
	p := espresso()
	p.TrackStock = true
	p.StockQty = 3
	cat := &mockCatalog{products: map[int64]*catalog.PricedProduct{1: p}}
	svc := newTestCartService(cat, &mockOrders{}, &mockSales{})

	_, err := svc.AddItem(context.Background(), 7, 1, 2)
	require.NoError(t, err)

	// The cart already holds 2; another 2 would exceed the 3 on hand.
	_, err = svc.AddItem(context.Background(), 7, 1, 2)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestLoadOrderPreservesOriginalPrices(t *testing.T) {
	// Catalog price has changed since the order was taken.
	p := espresso()
	p.Price = 9
	cat := &mockCatalog{products: map[int64]*catalog.PricedProduct{1: p}}
	ord := &mockOrders{orders: map[int64]*orders.Order{
		4: {
			ID:     4,
			Status: orders.OrderStatusActive,
			Lines:  []orders.OrderLine{{ProductID: 1, Quantity: 2, UnitPrice: 5}},
		},
	}}
	svc := newTestCartService(cat, ord, &mockSales{})

	view, err := svc.LoadOrder(context.Background(), 7, 4)
	require.NoError(t, err)
	require.Len(t, view.Cart.Lines, 1)
	assert.Equal(t, 5.0, view.Cart.Lines[0].UnitPrice)
	assert.Equal(t, 10.0, view.Totals.Subtotal)
}

func TestLoadOrderRejectsCancelled(t *testing.T) {
	ord := &mockOrders{orders: map[int64]*orders.Order{
		4: {ID: 4, Status: orders.OrderStatusCancelled},
	}}
	svc := newTestCartService(&mockCatalog{}, ord, &mockSales{})

	_, err := svc.LoadOrder(context.Background(), 7, 4)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}
