package orders

import "time"

// OrderStatus enumerates order lifecycle states.
type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	// OrderStatusPending appears in rows written by older clients; it has no
	// outgoing transitions here.
	OrderStatusPending OrderStatus = "PENDING"
)

// transitions is the single source of truth for legal status changes.
// Completed and Cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusActive: {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0 && s != OrderStatusActive
}

// LegacySaleOrderPrefix marks order rows that older clients created as
// duplicates of direct sales. Report queries exclude orders whose customer
// name carries this prefix so the same transaction is never counted twice.
const LegacySaleOrderPrefix = "POS-SALE"

// Order is a customer transaction tracked through the lifecycle states,
// independent of immediate payment.
type Order struct {
	ID                 int64       `json:"id"`
	OrderNumber        string      `json:"order_number"`
	CustomerName       *string     `json:"customer_name,omitempty"`
	Status             OrderStatus `json:"status"`
	CashierID          int64       `json:"cashier_id"`
	ShiftID            *int64      `json:"shift_id,omitempty"`
	Subtotal           float64     `json:"subtotal"`
	DiscountAmount     float64     `json:"discount_amount"`
	TaxAmount          float64     `json:"tax_amount"`
	TotalAmount        float64     `json:"total_amount"`
	Notes              *string     `json:"notes,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	CompletedBy        *int64      `json:"completed_by,omitempty"`
	CancelledAt        *time.Time  `json:"cancelled_at,omitempty"`
	CancelledBy        *int64      `json:"cancelled_by,omitempty"`
	CancellationReason *string     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	Lines              []OrderLine `json:"lines,omitempty"`
}

// OrderLine is one product position on an order. UnitPrice is the price at
// order time; it does not follow later catalog changes.
type OrderLine struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	TaxRate   float64   `json:"tax_rate"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
