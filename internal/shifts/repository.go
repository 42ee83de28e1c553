package shifts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talinda-pos/talinda-pos/internal/orders"
	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// Repository defines persistence operations for shifts.
type Repository interface {
	Get(ctx context.Context, id int64) (*Shift, error)
	// FindOpen returns the currently open shift or shared.ErrNotFound.
	FindOpen(ctx context.Context) (*Shift, error)
	// Create inserts an open shift. A unique violation on the partial index
	// over open shifts surfaces as shared.ErrShiftConflict.
	Create(ctx context.Context, cashierID int64, openingAmount float64, openedAt time.Time) (*Shift, error)
	Close(ctx context.Context, id int64, closedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]Shift, int, error)

	SalesSummary(ctx context.Context, from, to time.Time) (total float64, count int, err error)
	CompletedOrderSummary(ctx context.Context, from, to time.Time) (total float64, count int, err error)
	SalesByCashier(ctx context.Context, from, to time.Time) ([]CashierBreakdown, error)
	SalesByProduct(ctx context.Context, from, to time.Time) ([]ProductBreakdown, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const shiftColumns = `id, cashier_id, opening_amount, status, opened_at, closed_at, created_at, updated_at`

// uniqueViolation is the PostgreSQL error code raised by the partial unique
// index when a second open shift is inserted.
const uniqueViolation = "23505"

func (r *PGRepository) Get(ctx context.Context, id int64) (*Shift, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)
	return scanShift(row)
}

func (r *PGRepository) FindOpen(ctx context.Context) (*Shift, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE status = $1`, ShiftStatusOpen)
	return scanShift(row)
}

func (r *PGRepository) Create(ctx context.Context, cashierID int64, openingAmount float64, openedAt time.Time) (*Shift, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO shifts (cashier_id, opening_amount, status, opened_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+shiftColumns,
		cashierID, openingAmount, ShiftStatusOpen, openedAt)
	shift, err := scanShift(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, shared.ErrShiftConflict
		}
		return nil, err
	}
	return shift, nil
}

func (r *PGRepository) Close(ctx context.Context, id int64, closedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shifts SET status = $2, closed_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`,
		id, ShiftStatusClosed, closedAt, ShiftStatusOpen)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shift is not open", shared.ErrInvalidState)
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]Shift, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM shifts`).Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+shiftColumns+` FROM shifts ORDER BY opened_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var shifts []Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, 0, err
		}
		shifts = append(shifts, *shift)
	}
	return shifts, total, rows.Err()
}

func (r *PGRepository) SalesSummary(ctx context.Context, from, to time.Time) (float64, int, error) {
	var total float64
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM sales WHERE created_at >= $1 AND created_at < $2`, from, to,
	).Scan(&total, &count)
	return total, count, err
}

// CompletedOrderSummary counts terminal completed orders inside the window.
// Rows carrying the legacy duplicate-sale prefix are excluded so a checkout
// recorded as both a sale and an order is never counted twice.
func (r *PGRepository) CompletedOrderSummary(ctx context.Context, from, to time.Time) (float64, int, error) {
	var total float64
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM orders
		WHERE status = $1 AND completed_at >= $2 AND completed_at < $3
		  AND (customer_name IS NULL OR customer_name NOT LIKE $4)`,
		orders.OrderStatusCompleted, from, to, orders.LegacySaleOrderPrefix+"%",
	).Scan(&total, &count)
	return total, count, err
}

func (r *PGRepository) SalesByCashier(ctx context.Context, from, to time.Time) ([]CashierBreakdown, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.cashier_id, u.full_name, COUNT(*), COALESCE(SUM(s.total_amount), 0)
		FROM sales s
		JOIN users u ON s.cashier_id = u.id
		WHERE s.created_at >= $1 AND s.created_at < $2
		GROUP BY s.cashier_id, u.full_name
		ORDER BY SUM(s.total_amount) DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CashierBreakdown
	for rows.Next() {
		var b CashierBreakdown
		if err := rows.Scan(&b.CashierID, &b.CashierName, &b.Count, &b.Total); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *PGRepository) SalesByProduct(ctx context.Context, from, to time.Time) ([]ProductBreakdown, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sl.product_id, p.name, SUM(sl.quantity), COALESCE(SUM(sl.quantity * sl.unit_price), 0)
		FROM sale_lines sl
		JOIN sales s ON sl.sale_id = s.id
		JOIN products p ON sl.product_id = p.id
		WHERE s.created_at >= $1 AND s.created_at < $2
		GROUP BY sl.product_id, p.name
		ORDER BY SUM(sl.quantity * sl.unit_price) DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProductBreakdown
	for rows.Next() {
		var b ProductBreakdown
		if err := rows.Scan(&b.ProductID, &b.ProductName, &b.Quantity, &b.Total); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func scanShift(row pgx.Row) (*Shift, error) {
	var s Shift
	var closedAt pgtype.Timestamptz
	err := row.Scan(
		&s.ID, &s.CashierID, &s.OpeningAmount, &s.Status,
		&s.OpenedAt, &closedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if closedAt.Valid {
		v := closedAt.Time
		s.ClosedAt = &v
	}
	return &s, nil
}

var _ Repository = (*PGRepository)(nil)
