package cart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talinda-pos/talinda-pos/internal/catalog"
	"github.com/talinda-pos/talinda-pos/internal/orders"
	"github.com/talinda-pos/talinda-pos/internal/sales"
	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// ProductCatalog resolves products for price and tax capture when items are
// added to a cart.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id int64) (*catalog.PricedProduct, error)
}

// OrderSource loads and completes orders. A cart loaded from an order checks
// out by completing that order, not by recording a second transaction.
type OrderSource interface {
	Get(ctx context.Context, id int64) (*orders.Order, error)
	Complete(ctx context.Context, id int64, actorID int64) (bool, error)
}

// SaleRecorder persists a finalized sale.
type SaleRecorder interface {
	Record(ctx context.Context, sale sales.Sale) (*sales.Sale, error)
}

// CheckoutResult reports what a checkout produced: either a recorded sale or
// a completed order, never both.
type CheckoutResult struct {
	SaleID           *int64 `json:"sale_id,omitempty"`
	CompletedOrderID *int64 `json:"completed_order_id,omitempty"`
	Totals           Totals `json:"totals"`
}

// View is a snapshot of a cart with its priced totals.
type View struct {
	Cart   Cart   `json:"cart"`
	Totals Totals `json:"totals"`
}

// Service drives cashier carts from add-item through checkout.
type Service struct {
	store   *Store
	catalog ProductCatalog
	orders  OrderSource
	sales   SaleRecorder
	logger  *slog.Logger
}

// NewService constructs a Service.
func NewService(store *Store, productCatalog ProductCatalog, orderSource OrderSource, saleRecorder SaleRecorder, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		catalog: productCatalog,
		orders:  orderSource,
		sales:   saleRecorder,
		logger:  logger,
	}
}

// AddItem adds a product to the cashier's cart, merging with an existing line
// for the same product. Inactive products are rejected; stock-tracked
// products cannot exceed what is on hand, counting what the cart already
// holds.
func (s *Service) AddItem(ctx context.Context, cashierID, productID int64, quantity int) (*View, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product %q is not for sale", shared.ErrValidation, product.Name)
	}

	var view *View
	err = s.store.With(cashierID, func(c *Cart) error {
		if product.TrackStock && c.Quantity(productID)+quantity > product.StockQty {
			return fmt.Errorf("%w: insufficient stock for %q", shared.ErrValidation, product.Name)
		}
		c.Add(Line{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    quantity,
			TaxRate:     product.TaxRate,
		})
		view = snapshot(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (s *Service) SetQuantity(ctx context.Context, cashierID, productID int64, quantity int) (*View, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", shared.ErrValidation)
	}
	var view *View
	err := s.store.With(cashierID, func(c *Cart) error {
		if !c.SetQuantity(productID, quantity) {
			return fmt.Errorf("%w: product not in cart", shared.ErrNotFound)
		}
		view = snapshot(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SetItemDiscount sets the item-level discount on one cart line.
func (s *Service) SetItemDiscount(ctx context.Context, cashierID, productID int64, pct, fixed float64) (*View, error) {
	if pct < 0 || pct > 100 || fixed < 0 {
		return nil, fmt.Errorf("%w: discount out of range", shared.ErrValidation)
	}
	var view *View
	err := s.store.With(cashierID, func(c *Cart) error {
		if !c.SetItemDiscount(productID, pct, fixed) {
			return fmt.Errorf("%w: product not in cart", shared.ErrNotFound)
		}
		view = snapshot(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SetDiscount sets the cart-level discount.
func (s *Service) SetDiscount(ctx context.Context, cashierID int64, pct, fixed float64) (*View, error) {
	if pct < 0 || pct > 100 || fixed < 0 {
		return nil, fmt.Errorf("%w: discount out of range", shared.ErrValidation)
	}
	var view *View
	err := s.store.With(cashierID, func(c *Cart) error {
		c.DiscountPct = pct
		c.DiscountFixed = fixed
		view = snapshot(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// LoadOrder replaces the cashier's cart with the lines of an active order,
// preserving the prices and tax rates captured when the order was taken.
// Checkout will then complete this order.
func (s *Service) LoadOrder(ctx context.Context, cashierID, orderID int64) (*View, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != orders.OrderStatusActive {
		return nil, fmt.Errorf("%w: only active orders can be loaded", shared.ErrInvalidState)
	}

	var view *View
	err = s.store.With(cashierID, func(c *Cart) error {
		c.Reset()
		for _, l := range order.Lines {
			name := ""
			if product, err := s.catalog.GetProduct(ctx, l.ProductID); err == nil {
				name = product.Name
			}
			c.Add(Line{
				ProductID:   l.ProductID,
				ProductName: name,
				UnitPrice:   l.UnitPrice,
				Quantity:    l.Quantity,
				TaxRate:     l.TaxRate,
			})
		}
		c.DiscountFixed = order.DiscountAmount
		id := order.ID
		c.OrderID = &id
		c.OrderNumber = order.OrderNumber
		view = snapshot(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Checkout finalizes the cart. A cart loaded from an order completes that
// order and records nothing else, so the transaction is counted exactly
// once. Any other cart becomes a new sale. The cart empties on success.
func (s *Service) Checkout(ctx context.Context, cashierID int64) (*CheckoutResult, error) {
	var result *CheckoutResult
	err := s.store.With(cashierID, func(c *Cart) error {
		if c.IsEmpty() {
			return fmt.Errorf("%w: cart is empty", shared.ErrValidation)
		}
		totals := c.Totals()

		if c.OrderID != nil {
			orderID := *c.OrderID
			done, err := s.orders.Complete(ctx, orderID, cashierID)
			if err != nil {
				return fmt.Errorf("complete order: %w", err)
			}
			if !done {
				return fmt.Errorf("%w: order is no longer active", shared.ErrInvalidState)
			}
			s.logger.Info("checkout completed order",
				slog.Int64("order_id", orderID), slog.Int64("cashier_id", cashierID))
			result = &CheckoutResult{CompletedOrderID: &orderID, Totals: totals}
			c.Reset()
			return nil
		}

		sale := sales.Sale{
			CashierID:      cashierID,
			Subtotal:       totals.Subtotal,
			DiscountAmount: totals.Discount,
			TaxAmount:      totals.Tax,
			TotalAmount:    totals.Total,
		}
		for _, l := range c.Lines {
			sale.Lines = append(sale.Lines, sales.SaleLine{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				TaxRate:   l.TaxRate,
			})
		}
		recorded, err := s.sales.Record(ctx, sale)
		if err != nil {
			return fmt.Errorf("record sale: %w", err)
		}
		s.logger.Info("checkout recorded sale",
			slog.Int64("sale_id", recorded.ID), slog.Int64("cashier_id", cashierID))
		result = &CheckoutResult{SaleID: &recorded.ID, Totals: totals}
		c.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Clear empties the cashier's cart.
func (s *Service) Clear(ctx context.Context, cashierID int64) error {
	s.store.Drop(cashierID)
	return nil
}

// Get returns the cashier's current cart with totals.
func (s *Service) Get(ctx context.Context, cashierID int64) (*View, error) {
	var view *View
	err := s.store.With(cashierID, func(c *Cart) error {
		view = snapshot(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func snapshot(c *Cart) *View {
	cp := *c
	cp.Lines = append([]Line(nil), c.Lines...)
	return &View{Cart: cp, Totals: c.Totals()}
}
