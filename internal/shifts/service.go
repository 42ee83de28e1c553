package shifts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// PasswordVerifier re-checks a user's password. Implemented by the auth
// service; shift closure requires the cashier to confirm their identity.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID int64, password string) error
}

// ReauthFlagger marks a user account so the next login demands fresh
// credentials. Used after an administrative shift close.
type ReauthFlagger interface {
	FlagReauth(ctx context.Context, userID int64) error
}

// Service owns shift lifecycle and per-shift aggregation.
type Service struct {
	repo      Repository
	passwords PasswordVerifier
	reauth    ReauthFlagger
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, passwords PasswordVerifier, reauth ReauthFlagger, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		passwords: passwords,
		reauth:    reauth,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Open creates a new open shift for the cashier. At most one shift may be
// open system-wide; a concurrent opener loses on the storage unique index
// rather than on the pre-check, so two processes cannot both win.
func (s *Service) Open(ctx context.Context, cashierID int64, openingAmount float64) (*Shift, error) {
	if openingAmount < 0 {
		return nil, fmt.Errorf("%w: opening amount cannot be negative", shared.ErrValidation)
	}

	// Friendly pre-check; the index is the actual guard.
	if _, err := s.repo.FindOpen(ctx); err == nil {
		return nil, shared.ErrShiftConflict
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find open shift: %w", err)
	}

	shift, err := s.repo.Create(ctx, cashierID, openingAmount, s.now())
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// Close verifies the actor's password and closes the shift. Closed shifts
// are immutable.
func (s *Service) Close(ctx context.Context, shiftID, actorID int64, password string) (*Shift, error) {
	shift, err := s.repo.Get(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("get shift: %w", err)
	}
	if shift.Status != ShiftStatusOpen {
		return nil, fmt.Errorf("%w: shift is already closed", shared.ErrInvalidState)
	}
	if err := s.passwords.VerifyPassword(ctx, actorID, password); err != nil {
		return nil, err
	}
	if err := s.repo.Close(ctx, shiftID, s.now()); err != nil {
		return nil, fmt.Errorf("close shift: %w", err)
	}
	return s.repo.Get(ctx, shiftID)
}

// ResetDaily closes any still-open shift without password verification. This
// is the administrative midnight override; the affected cashier is flagged to
// re-authenticate at next login. Returns the number of shifts closed (0 or 1).
func (s *Service) ResetDaily(ctx context.Context) (int, error) {
	shift, err := s.repo.FindOpen(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("find open shift: %w", err)
	}

	if err := s.repo.Close(ctx, shift.ID, s.now()); err != nil {
		return 0, fmt.Errorf("close shift: %w", err)
	}
	if s.reauth != nil {
		if err := s.reauth.FlagReauth(ctx, shift.CashierID); err != nil {
			// The shift is closed; a failed flag should not undo that.
			s.logger.Error("flag reauth failed",
				slog.Any("error", err), slog.Int64("cashier_id", shift.CashierID))
		}
	}
	return 1, nil
}

// Report aggregates sales and completed orders inside the shift's window.
// Read-only; aggregate queries run concurrently.
func (s *Service) Report(ctx context.Context, shiftID int64) (*ShiftReport, error) {
	shift, err := s.repo.Get(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("get shift: %w", err)
	}

	from := shift.OpenedAt
	to := s.now()
	if shift.ClosedAt != nil {
		to = *shift.ClosedAt
	}

	report := &ShiftReport{Shift: *shift}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, count, err := s.repo.SalesSummary(gctx, from, to)
		if err != nil {
			return fmt.Errorf("sales summary: %w", err)
		}
		report.SalesTotal, report.SalesCount = total, count
		return nil
	})
	g.Go(func() error {
		total, count, err := s.repo.CompletedOrderSummary(gctx, from, to)
		if err != nil {
			return fmt.Errorf("order summary: %w", err)
		}
		report.CompletedOrderTotal, report.CompletedOrders = total, count
		return nil
	})
	g.Go(func() error {
		byCashier, err := s.repo.SalesByCashier(gctx, from, to)
		if err != nil {
			return fmt.Errorf("sales by cashier: %w", err)
		}
		report.ByCashier = byCashier
		return nil
	})
	g.Go(func() error {
		byProduct, err := s.repo.SalesByProduct(gctx, from, to)
		if err != nil {
			return fmt.Errorf("sales by product: %w", err)
		}
		report.ByProduct = byProduct
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// Get returns one shift.
func (s *Service) Get(ctx context.Context, id int64) (*Shift, error) {
	return s.repo.Get(ctx, id)
}

// List returns shifts, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Shift, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// OpenShiftID resolves the id of the currently open shift. Satisfies the
// order service's OpenShiftFinder.
func (s *Service) OpenShiftID(ctx context.Context) (int64, bool, error) {
	shift, err := s.repo.FindOpen(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return shift.ID, true, nil
}
