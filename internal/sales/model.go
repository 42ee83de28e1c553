package sales

import "time"

// Sale is a finalized transaction. Sales are immutable once recorded; the
// only mutation is deletion, which restores the stock it consumed.
type Sale struct {
	ID             int64      `json:"id"`
	CashierID      int64      `json:"cashier_id"`
	ShiftID        *int64     `json:"shift_id,omitempty"`
	Subtotal       float64    `json:"subtotal"`
	DiscountAmount float64    `json:"discount_amount"`
	TaxAmount      float64    `json:"tax_amount"`
	TotalAmount    float64    `json:"total_amount"`
	CreatedAt      time.Time  `json:"created_at"`
	Lines          []SaleLine `json:"lines,omitempty"`
}

// SaleLine is one product position on a sale, priced at the moment of sale.
type SaleLine struct {
	ID        int64   `json:"id"`
	SaleID    int64   `json:"sale_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	TaxRate   float64 `json:"tax_rate"`
}
