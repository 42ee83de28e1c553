package orders

import "time"

// LineInput describes one line supplied to Create or AddItems. UnitPrice and
// TaxRate are captured by the caller at order time.
type LineInput struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	TaxRate   float64 `json:"tax_rate" validate:"gte=0,lte=100"`
	Notes     *string `json:"notes,omitempty"`
}

// CreateOrderRequest carries everything needed to open a new active order.
type CreateOrderRequest struct {
	CustomerName   *string     `json:"customer_name,omitempty"`
	Notes          *string     `json:"notes,omitempty"`
	DiscountAmount float64     `json:"discount_amount" validate:"gte=0"`
	Lines          []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// UpdateOrderRequest mutates header fields of an active order.
type UpdateOrderRequest struct {
	CustomerName *string `json:"customer_name,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// ListOrdersRequest filters the order listing.
type ListOrdersRequest struct {
	Status    *OrderStatus `json:"status,omitempty"`
	CashierID *int64       `json:"cashier_id,omitempty"`
	DateFrom  *time.Time   `json:"date_from,omitempty"`
	DateTo    *time.Time   `json:"date_to,omitempty"`
	Limit     int          `json:"limit" validate:"gte=0,lte=1000"`
	Offset    int          `json:"offset" validate:"gte=0"`
}
