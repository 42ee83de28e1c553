package reports

import "time"

// DailySummary aggregates one day of revenue. Completed orders and recorded
// sales are disjoint populations: a checkout produces exactly one of the two,
// so their totals add without double counting.
type DailySummary struct {
	Date        string  `json:"date"`
	SalesCount  int     `json:"sales_count"`
	SalesTotal  float64 `json:"sales_total"`
	OrdersCount int     `json:"orders_count"`
	OrdersTotal float64 `json:"orders_total"`
	GrandTotal  float64 `json:"grand_total"`
}

// ProductRow is per-product sold quantity and revenue inside a window.
type ProductRow struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
}

// CashierRow is per-cashier transaction count and revenue inside a window.
type CashierRow struct {
	CashierID   int64   `json:"cashier_id"`
	CashierName string  `json:"cashier_name"`
	Count       int     `json:"count"`
	Total       float64 `json:"total"`
}

// RangeReport covers a date window with its breakdowns.
type RangeReport struct {
	From      time.Time    `json:"from"`
	To        time.Time    `json:"to"`
	Summary   DailySummary `json:"summary"`
	ByProduct []ProductRow `json:"by_product"`
	ByCashier []CashierRow `json:"by_cashier"`
}
