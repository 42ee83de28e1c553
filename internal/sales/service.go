package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// OpenShiftFinder resolves the currently open shift, if any. Implemented by
// the shifts service; sales recorded while a shift is open are bound to it.
type OpenShiftFinder interface {
	OpenShiftID(ctx context.Context) (int64, bool, error)
}

// Service records and removes finalized sales. Recording consumes stock for
// tracked products; deleting restores it.
type Service struct {
	repo   Repository
	shifts OpenShiftFinder
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service. shifts may be nil when sales should not
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

// Record persists a finalized sale. Stock for tracked products is checked and
// decremented in the same transaction, so a sale either lands with all its
// stock effects or not at all.
func (s *Service) Record(ctx context.Context, sale Sale) (*Sale, error) {
	if len(sale.Lines) == 0 {
		return nil, fmt.Errorf("%w: a sale needs at least one line item", shared.ErrValidation)
	}
	for _, line := range sale.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive", shared.ErrValidation)
		}
		if line.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: line price cannot be negative", shared.ErrValidation)
		}
	}

	if s.shifts != nil && sale.ShiftID == nil {
		shiftID, open, err := s.shifts.OpenShiftID(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve open shift: %w", err)
		}
		if open {
			sale.ShiftID = &shiftID
		}
	}
	sale.CreatedAt = s.now()

	var saleID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, line := range sale.Lines {
			qty, tracked, err := repo.StockQty(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("check stock for product %d: %w", line.ProductID, err)
			}
			if tracked && qty < line.Quantity {
				return fmt.Errorf("%w: insufficient stock for product %d", shared.ErrValidation, line.ProductID)
			}
		}

		id, err := repo.Create(ctx, sale)
		if err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		saleID = id
		for _, line := range sale.Lines {
			line.SaleID = saleID
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert sale line: %w", err)
			}
			if err := repo.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, saleID)
}

// Delete removes a sale and restores the stock its lines consumed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		lines, err := repo.GetLines(ctx, id)
		if err != nil {
			return fmt.Errorf("get sale lines: %w", err)
		}
		for _, line := range lines {
			if err := repo.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}
		if err := repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}
		return nil
	})
}

// Get returns one sale with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.Get(ctx, id)
}

// List returns sales created inside [from, to), newest first.
func (s *Service) List(ctx context.Context, from, to time.Time, limit, offset int) ([]Sale, int, error) {
	return s.repo.List(ctx, from, to, limit, offset)
}
