package shifts

import "time"

// ShiftStatus enumerates shift lifecycle states.
type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "OPEN"
	ShiftStatusClosed ShiftStatus = "CLOSED"
)

// Shift is a bounded work session for one cashier, bracketed by opening and
// closing cash counts. At most one shift is open system-wide; the database
// enforces this with a partial unique index over status = 'OPEN'.
type Shift struct {
	ID            int64       `json:"id"`
	CashierID     int64       `json:"cashier_id"`
	OpeningAmount float64     `json:"opening_amount"`
	Status        ShiftStatus `json:"status"`
	OpenedAt      time.Time   `json:"opened_at"`
	ClosedAt      *time.Time  `json:"closed_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// CashierBreakdown aggregates sales per cashier inside a shift window.
type CashierBreakdown struct {
	CashierID   int64   `json:"cashier_id"`
	CashierName string  `json:"cashier_name"`
	Count       int     `json:"count"`
	Total       float64 `json:"total"`
}

// ProductBreakdown aggregates sold quantity and revenue per product inside a
// shift window.
type ProductBreakdown struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
}

// ShiftReport summarises activity inside the shift's open/close window.
type ShiftReport struct {
	Shift               Shift              `json:"shift"`
	SalesTotal          float64            `json:"sales_total"`
	SalesCount          int                `json:"sales_count"`
	CompletedOrders     int                `json:"completed_orders"`
	CompletedOrderTotal float64            `json:"completed_order_total"`
	ByCashier           []CashierBreakdown `json:"by_cashier"`
	ByProduct           []ProductBreakdown `json:"by_product"`
}
