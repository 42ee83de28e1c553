package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// OpenShiftFinder resolves the currently open shift, if any. Implemented by
// the shifts service; orders created while a shift is open are bound to it.
type OpenShiftFinder interface {
	OpenShiftID(ctx context.Context) (int64, bool, error)
}

// Service owns the order lifecycle: creation, mutation, completion and
// cancellation, keeping totals consistent with the lines.
type Service struct {
	repo   Repository
	shifts OpenShiftFinder
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service. shifts may be nil when orders should not
// bind to shifts (tests).
func NewService(repo Repository, shifts OpenShiftFinder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		shifts: shifts,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Create constructs an active order from the supplied lines.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, cashierID int64) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: an order needs at least one line item", shared.ErrValidation)
	}
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive", shared.ErrValidation)
		}
		if line.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: line price cannot be negative", shared.ErrValidation)
		}
	}

	subtotal, tax := lineTotals(req.Lines)
	discount := req.DiscountAmount
	if discount > subtotal {
		discount = subtotal
	}

	order := Order{
		OrderNumber:    s.generateNumber(),
		CustomerName:   req.CustomerName,
		Status:         OrderStatusActive,
		CashierID:      cashierID,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		TotalAmount:    subtotal - discount + tax,
		Notes:          req.Notes,
	}

	if s.shifts != nil {
		shiftID, open, err := s.shifts.OpenShiftID(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve open shift: %w", err)
		}
		if open {
			order.ShiftID = &shiftID
		}
	}

	var orderID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		orderID = id
		for _, input := range req.Lines {
			line := OrderLine{
				OrderID:   orderID,
				ProductID: input.ProductID,
				Quantity:  input.Quantity,
				UnitPrice: input.UnitPrice,
				TaxRate:   input.TaxRate,
				Notes:     input.Notes,
			}
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, orderID)
}

// AddItems appends or merges line items into an existing active order and
// recomputes the totals.
func (s *Service) AddItems(ctx context.Context, id int64, items []LineInput) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if existing.Status != OrderStatusActive {
		return nil, fmt.Errorf("%w: items can only be added to active orders", shared.ErrInvalidState)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items supplied", shared.ErrValidation)
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive", shared.ErrValidation)
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		lines, err := repo.GetLines(ctx, id)
		if err != nil {
			return err
		}
		byProduct := make(map[int64]*OrderLine, len(lines))
		for i := range lines {
			byProduct[lines[i].ProductID] = &lines[i]
		}

		for _, item := range items {
			if current, ok := byProduct[item.ProductID]; ok {
				if err := repo.UpdateLineQuantity(ctx, current.ID, current.Quantity+item.Quantity); err != nil {
					return fmt.Errorf("merge order line: %w", err)
				}
				continue
			}
			line := OrderLine{
				OrderID:   id,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				TaxRate:   item.TaxRate,
				Notes:     item.Notes,
			}
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
		}

		// Recompute from storage so merged and inserted lines are both seen.
		updated, err := repo.GetLines(ctx, id)
		if err != nil {
			return err
		}
		subtotal, tax := 0.0, 0.0
		for _, l := range updated {
			amount := float64(l.Quantity) * l.UnitPrice
			subtotal += amount
			tax += amount * l.TaxRate / 100
		}
		discount := existing.DiscountAmount
		if discount > subtotal {
			discount = subtotal
		}
		return repo.UpdateTotals(ctx, id, subtotal, discount, tax, subtotal-discount+tax)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// UpdateDetails edits customer name and notes on an active order.
func (s *Service) UpdateDetails(ctx context.Context, id int64, req UpdateOrderRequest) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if existing.Status != OrderStatusActive {
		return nil, fmt.Errorf("%w: only active orders can be edited", shared.ErrInvalidState)
	}
	if req.CustomerName == nil && req.Notes == nil {
		return existing, nil
	}
	if err := s.repo.UpdateHeader(ctx, id, req.CustomerName, req.Notes); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Complete transitions an active order to completed, stamping the completion
// time. Returns false without error when the order is not active; completion
// is the single allowed success path out of active besides cancellation.
func (s *Service) Complete(ctx context.Context, id int64, actorID int64) (bool, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get order: %w", err)
	}
	if !CanTransition(existing.Status, OrderStatusCompleted) {
		return false, nil
	}
	ok, err := s.repo.UpdateStatus(ctx, id, existing.Status, OrderStatusCompleted, actorID, nil, s.now())
	if err != nil {
		return false, fmt.Errorf("complete order: %w", err)
	}
	return ok, nil
}

// Cancel transitions an active order to cancelled, recording reason and actor.
// Returns false without error when the order is not active.
func (s *Service) Cancel(ctx context.Context, id int64, actorID int64, reason string) (bool, error) {
	if strings.TrimSpace(reason) == "" {
		return false, fmt.Errorf("%w: a cancellation reason is required", shared.ErrValidation)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get order: %w", err)
	}
	if !CanTransition(existing.Status, OrderStatusCancelled) {
		return false, nil
	}
	ok, err := s.repo.UpdateStatus(ctx, id, existing.Status, OrderStatusCancelled, actorID, &reason, s.now())
	if err != nil {
		return false, fmt.Errorf("cancel order: %w", err)
	}
	return ok, nil
}

// Get returns one order with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// Items re-fetches the order's lines from storage. Callers holding a stale
// in-memory order use this instead of the cached slice.
func (s *Service) Items(ctx context.Context, id int64) ([]OrderLine, error) {
	return s.repo.GetLines(ctx, id)
}

// StaleActiveIDs lists active orders created before the cutoff. Used by the
// sweep job to find orders left behind by an abandoned register.
func (s *Service) StaleActiveIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	return s.repo.FindStaleActive(ctx, cutoff)
}

// List returns orders matching the filter.
func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) generateNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("ORD-%s-%s", s.now().Format("060102150405"), suffix)
}

func lineTotals(lines []LineInput) (subtotal, tax float64) {
	for _, l := range lines {
		amount := float64(l.Quantity) * l.UnitPrice
		subtotal += amount
		tax += amount * l.TaxRate / 100
	}
	return subtotal, tax
}
