package cart

// Line is one product position in a cart. Item-level discounts apply to the
// line amount before tax is computed from the category rate.
type Line struct {
	ProductID     int64   `json:"product_id"`
	ProductName   string  `json:"product_name"`
	UnitPrice     float64 `json:"unit_price"`
	Quantity      int     `json:"quantity"`
	TaxRate       float64 `json:"tax_rate"`
	DiscountPct   float64 `json:"discount_pct"`
	DiscountFixed float64 `json:"discount_fixed"`
}

// Amount is the line total after item-level discounts, before tax.
// The percentage discount applies first, then the fixed one; the result
// never goes below zero.
func (l Line) Amount() float64 {
	amount := float64(l.Quantity) * l.UnitPrice
	amount -= amount * l.DiscountPct / 100
	amount -= l.DiscountFixed
	if amount < 0 {
		amount = 0
	}
	return amount
}

// Tax is the line's tax, computed on the discounted amount.
func (l Line) Tax() float64 {
	return l.Amount() * l.TaxRate / 100
}

// Totals is the priced summary of a cart.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Cart is a cashier's in-progress sale. When a cart is loaded from an
// existing order, OrderID links back to it and checkout completes that order
// instead of recording a separate sale.
type Cart struct {
	Lines         []Line  `json:"lines"`
	DiscountPct   float64 `json:"discount_pct"`
	DiscountFixed float64 `json:"discount_fixed"`
	OrderID       *int64  `json:"order_id,omitempty"`
	OrderNumber   string  `json:"order_number,omitempty"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Quantity returns the quantity of a product already in the cart.
func (c *Cart) Quantity(productID int64) int {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Add merges a line into the cart. An existing line for the same product
// absorbs the quantity; price, tax rate and discounts stay as first set.
func (c *Cart) Add(line Line) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID {
			c.Lines[i].Quantity += line.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// SetQuantity replaces a line's quantity. A quantity of zero removes the
// line. Returns false when the product is not in the cart.
func (c *Cart) SetQuantity(productID int64, quantity int) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Quantity = quantity
		}
		return true
	}
	return false
}

// SetItemDiscount sets the item-level discount on a product's line. Returns
// false when the product is not in the cart.
func (c *Cart) SetItemDiscount(productID int64, pct, fixed float64) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].DiscountPct = pct
			c.Lines[i].DiscountFixed = fixed
			return true
		}
	}
	return false
}

// Totals prices the cart. The subtotal sums line amounts after item-level
// discounts. The cart-level discount is a percentage of the subtotal plus a
// fixed amount, clamped to the subtotal. Tax is computed per line from the
// discounted line amount, then scaled by the share of the subtotal that
// survives the cart-level discount, so discounting the cart discounts its
// tax proportionally.
func (c *Cart) Totals() Totals {
	var subtotal, lineTax float64
	for _, l := range c.Lines {
		subtotal += l.Amount()
		lineTax += l.Tax()
	}

	discount := subtotal*c.DiscountPct/100 + c.DiscountFixed
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	tax := lineTax
	if subtotal > 0 {
		tax = lineTax * (subtotal - discount) / subtotal
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal - discount + tax,
	}
}

// Reset empties the cart and drops any linked order.
func (c *Cart) Reset() {
	c.Lines = nil
	c.DiscountPct = 0
	c.DiscountFixed = 0
	c.OrderID = nil
	c.OrderNumber = ""
}
