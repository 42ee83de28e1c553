package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talinda-pos/talinda-pos/internal/orders"
)

// Repository runs the read-only aggregate queries behind reports.
type Repository interface {
	SalesSummary(ctx context.Context, from, to time.Time) (total float64, count int, err error)
	// CompletedOrderSummary totals terminal completed orders inside the
	// window, skipping rows carrying the legacy duplicate-sale marker so a
	// transaction recorded both ways is counted once.
	CompletedOrderSummary(ctx context.Context, from, to time.Time) (total float64, count int, err error)
	SalesByProduct(ctx context.Context, from, to time.Time) ([]ProductRow, error)
	SalesByCashier(ctx context.Context, from, to time.Time) ([]CashierRow, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
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

func (r *PGRepository) SalesByProduct(ctx context.Context, from, to time.Time) ([]ProductRow, error) {
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

	var result []ProductRow
	for rows.Next() {
		var row ProductRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.Quantity, &row.Total); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *PGRepository) SalesByCashier(ctx context.Context, from, to time.Time) ([]CashierRow, error) {
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

	var result []CashierRow
	for rows.Next() {
		var row CashierRow
		if err := rows.Scan(&row.CashierID, &row.CashierName, &row.Count, &row.Total); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
