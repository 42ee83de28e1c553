package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talinda-pos/talinda-pos/internal/platform/db"
	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	GetLines(ctx context.Context, orderID int64) ([]OrderLine, error)
	List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
	Create(ctx context.Context, o Order) (int64, error)
	InsertLine(ctx context.Context, line OrderLine) (int64, error)
	UpdateLineQuantity(ctx context.Context, lineID int64, quantity int) error
	UpdateHeader(ctx context.Context, id int64, customerName, notes *string) error
	UpdateTotals(ctx context.Context, id int64, subtotal, discount, tax, total float64) error
	// UpdateStatus performs a compare-and-set transition: the row changes only
	// when its current status equals from. Returns false when the guard fails.
	UpdateStatus(ctx context.Context, id int64, from, to OrderStatus, actorID int64, reason *string, at time.Time) (bool, error)
	// FindStaleActive lists ids of active orders created before the cutoff.
	FindStaleActive(ctx context.Context, cutoff time.Time) ([]int64, error)
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

const orderColumns = `
	id, order_number, customer_name, status, cashier_id, shift_id,
	subtotal, discount_amount, tax_amount, total_amount, notes,
	completed_at, completed_by, cancelled_at, cancelled_by, cancellation_reason,
	created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	row := r.db.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	o.Lines, err = r.GetLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	row := r.db.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE order_number = $1`, number)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	o.Lines, err = r.GetLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetLines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, tax_rate, notes, created_at, updated_at
		FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		var notes pgtype.Text
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.TaxRate, &notes, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		if notes.Valid {
			v := notes.String
			l.Notes = &v
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.CashierID != nil {
		conditions = append(conditions, fmt.Sprintf("cashier_id = $%d", argPos))
		args = append(args, *req.CashierID)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT%s FROM orders %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *o)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, o Order) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_name, status, cashier_id, shift_id,
			subtotal, discount_amount, tax_amount, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		o.OrderNumber, textOrNil(o.CustomerName), o.Status, o.CashierID, o.ShiftID,
		o.Subtotal, o.DiscountAmount, o.TaxAmount, o.TotalAmount, textOrNil(o.Notes),
	).Scan(&id)
	return id, err
}

func (r *repository) InsertLine(ctx context.Context, line OrderLine) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO order_lines (order_id, product_id, quantity, unit_price, tax_rate, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.TaxRate, textOrNil(line.Notes),
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateLineQuantity(ctx context.Context, lineID int64, quantity int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE order_lines SET quantity = $2, updated_at = NOW() WHERE id = $1`, lineID, quantity)
	return err
}

func (r *repository) UpdateHeader(ctx context.Context, id int64, customerName, notes *string) error {
	query := "UPDATE orders SET updated_at = NOW()"
	var args []interface{}
	argPos := 1
	if customerName != nil {
		query += fmt.Sprintf(", customer_name = $%d", argPos)
		args = append(args, *customerName)
		argPos++
	}
	if notes != nil {
		query += fmt.Sprintf(", notes = $%d", argPos)
		args = append(args, *notes)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)
	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) UpdateTotals(ctx context.Context, id int64, subtotal, discount, tax, total float64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders
		SET subtotal = $2, discount_amount = $3, tax_amount = $4, total_amount = $5, updated_at = NOW()
		WHERE id = $1`, id, subtotal, discount, tax, total)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to OrderStatus, actorID int64, reason *string, at time.Time) (bool, error) {
	var tag pgconn.CommandTag
	var err error
	switch to {
	case OrderStatusCompleted:
		tag, err = r.db.Exec(ctx, `
			UPDATE orders
			SET status = $3, completed_at = $4, completed_by = $5, updated_at = NOW()
			WHERE id = $1 AND status = $2`, id, from, to, at, actorID)
	case OrderStatusCancelled:
		tag, err = r.db.Exec(ctx, `
			UPDATE orders
			SET status = $3, cancelled_at = $4, cancelled_by = $5, cancellation_reason = $6, updated_at = NOW()
			WHERE id = $1 AND status = $2`, id, from, to, at, actorID, textOrNil(reason))
	default:
		tag, err = r.db.Exec(ctx, `
			UPDATE orders SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2`, id, from, to)
	}
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) FindStaleActive(ctx context.Context, cutoff time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM orders WHERE status = $1 AND created_at < $2 ORDER BY id`,
		OrderStatusActive, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var customerName, notes, cancellationReason pgtype.Text
	var shiftID, completedBy, cancelledBy pgtype.Int8
	var completedAt, cancelledAt pgtype.Timestamptz

	err := row.Scan(
		&o.ID, &o.OrderNumber, &customerName, &o.Status, &o.CashierID, &shiftID,
		&o.Subtotal, &o.DiscountAmount, &o.TaxAmount, &o.TotalAmount, &notes,
		&completedAt, &completedBy, &cancelledAt, &cancelledBy, &cancellationReason,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if customerName.Valid {
		v := customerName.String
		o.CustomerName = &v
	}
	if shiftID.Valid {
		v := shiftID.Int64
		o.ShiftID = &v
	}
	if notes.Valid {
		v := notes.String
		o.Notes = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		o.CompletedAt = &v
	}
	if completedBy.Valid {
		v := completedBy.Int64
		o.CompletedBy = &v
	}
	if cancelledAt.Valid {
		v := cancelledAt.Time
		o.CancelledAt = &v
	}
	if cancelledBy.Valid {
		v := cancelledBy.Int64
		o.CancelledBy = &v
	}
	if cancellationReason.Valid {
		v := cancellationReason.String
		o.CancellationReason = &v
	}
	return &o, nil
}

func textOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
