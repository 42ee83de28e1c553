package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// Repository defines persistence operations for the catalog.
type Repository interface {
	GetProduct(ctx context.Context, id int64) (*PricedProduct, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]PricedProduct, error)
	CreateProduct(ctx context.Context, p Product) (int64, error)
	UpdateProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, productID int64, delta int) error
	CountSaleReferences(ctx context.Context, productID int64) (int, error)

	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c Category) (int64, error)
	UpdateCategory(ctx context.Context, c Category) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const pricedProductQuery = `
	SELECT p.id, p.code, p.name, p.category_id, p.price, p.track_stock,
	       p.stock_qty, p.is_active, p.created_at, p.updated_at, c.tax_rate
	FROM products p
	JOIN categories c ON p.category_id = c.id`

// GetProduct returns the product joined with its category tax rate.
func (r *PGRepository) GetProduct(ctx context.Context, id int64) (*PricedProduct, error) {
	row := r.pool.QueryRow(ctx, pricedProductQuery+` WHERE p.id = $1`, id)
	var p PricedProduct
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.Price, &p.TrackStock,
		&p.StockQty, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.TaxRate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListProducts returns catalog products, optionally restricted to active ones.
func (r *PGRepository) ListProducts(ctx context.Context, activeOnly bool) ([]PricedProduct, error) {
	query := pricedProductQuery
	if activeOnly {
		query += ` WHERE p.is_active`
	}
	query += ` ORDER BY p.name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []PricedProduct
	for rows.Next() {
		var p PricedProduct
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.Price, &p.TrackStock,
			&p.StockQty, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.TaxRate,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CreateProduct inserts a product and returns its id.
func (r *PGRepository) CreateProduct(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, category_id, price, track_stock, stock_qty, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.Code, p.Name, p.CategoryID, p.Price, p.TrackStock, p.StockQty, p.IsActive,
	).Scan(&id)
	return id, err
}

// UpdateProduct persists mutable product fields.
func (r *PGRepository) UpdateProduct(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET code = $2, name = $3, category_id = $4, price = $5,
		    track_stock = $6, stock_qty = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Code, p.Name, p.CategoryID, p.Price, p.TrackStock, p.StockQty, p.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product row.
func (r *PGRepository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AdjustStock applies a signed delta to a tracked product's stock quantity.
func (r *PGRepository) AdjustStock(ctx context.Context, productID int64, delta int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE products SET stock_qty = stock_qty + $2, updated_at = NOW()
		WHERE id = $1 AND track_stock`, productID, delta)
	return err
}

// CountSaleReferences counts sale lines referencing the product.
func (r *PGRepository) CountSaleReferences(ctx context.Context, productID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sale_lines WHERE product_id = $1`, productID,
	).Scan(&count)
	return count, err
}

// GetCategory fetches a category by id.
func (r *PGRepository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, tax_rate, created_at, updated_at FROM categories WHERE id = $1`, id)
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.TaxRate, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCategories returns all categories.
func (r *PGRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, tax_rate, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.TaxRate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category and returns its id.
func (r *PGRepository) CreateCategory(ctx context.Context, c Category) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, tax_rate) VALUES ($1, $2) RETURNING id`,
		c.Name, c.TaxRate,
	).Scan(&id)
	return id, err
}

// UpdateCategory persists category fields.
func (r *PGRepository) UpdateCategory(ctx context.Context, c Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $2, tax_rate = $3, updated_at = NOW() WHERE id = $1`,
		c.ID, c.Name, c.TaxRate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
