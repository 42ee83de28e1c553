package catalog

import "time"

// Category groups products and carries the tax rate applied to their sales.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxRate   float64   `json:"tax_rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product represents a sellable catalog item.
type Product struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	CategoryID int64     `json:"category_id"`
	Price      float64   `json:"price"`
	TrackStock bool      `json:"track_stock"`
	StockQty   int       `json:"stock_qty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PricedProduct bundles a product with its category tax rate, which is what
// the cart needs to price a line.
type PricedProduct struct {
	Product
	TaxRate float64 `json:"tax_rate"`
}
