package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talinda-pos/talinda-pos/internal/platform/db"
	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// Repository defines persistence operations for sales.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Sale, error)
	GetLines(ctx context.Context, saleID int64) ([]SaleLine, error)
	List(ctx context.Context, from, to time.Time, limit, offset int) ([]Sale, int, error)
	Create(ctx context.Context, s Sale) (int64, error)
	InsertLine(ctx context.Context, line SaleLine) (int64, error)
	Delete(ctx context.Context, id int64) error
	// AdjustStock applies a signed delta to a stock-tracked product.
	AdjustStock(ctx context.Context, productID int64, delta int) error
	// StockQty returns the current stock count and whether the product tracks
	// stock at all.
	StockQty(ctx context.Context, productID int64) (qty int, tracked bool, err error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const saleColumns = `id, cashier_id, shift_id, subtotal, discount_amount, tax_amount, total_amount, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Sale, error) {
	row := r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	s, err := scanSale(row)
	if err != nil {
		return nil, err
	}
	s.Lines, err = r.GetLines(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repository) GetLines(ctx context.Context, saleID int64) ([]SaleLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, tax_rate
		FROM sale_lines WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.TaxRate); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, from, to time.Time, limit, offset int) ([]Sale, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM sales WHERE created_at >= $1 AND created_at < $2`, from, to,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *s)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, s Sale) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sales (cashier_id, shift_id, subtotal, discount_amount, tax_amount, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		s.CashierID, s.ShiftID, s.Subtotal, s.DiscountAmount, s.TaxAmount, s.TotalAmount, s.CreatedAt,
	).Scan(&id)
	return id, err
}

func (r *repository) InsertLine(ctx context.Context, line SaleLine) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sale_lines (sale_id, product_id, quantity, unit_price, tax_rate)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		line.SaleID, line.ProductID, line.Quantity, line.UnitPrice, line.TaxRate,
	).Scan(&id)
	return id, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sale_lines WHERE sale_id = $1`, id); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AdjustStock(ctx context.Context, productID int64, delta int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE products SET stock_qty = stock_qty + $2, updated_at = NOW()
		WHERE id = $1 AND track_stock`, productID, delta)
	return err
}

func (r *repository) StockQty(ctx context.Context, productID int64) (int, bool, error) {
	var qty int
	var tracked bool
	err := r.db.QueryRow(ctx,
		`SELECT stock_qty, track_stock FROM products WHERE id = $1`, productID,
	).Scan(&qty, &tracked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, shared.ErrNotFound
		}
		return 0, false, err
	}
	return qty, tracked, nil
}

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	var shiftID pgtype.Int8
	err := row.Scan(
		&s.ID, &s.CashierID, &shiftID,
		&s.Subtotal, &s.DiscountAmount, &s.TaxAmount, &s.TotalAmount, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if shiftID.Valid {
		v := shiftID.Int64
		s.ShiftID = &v
	}
	return &s, nil
}
