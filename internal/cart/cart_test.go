package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalsNoTaxNoDiscount(t *testing.T) {
	c := &Cart{}
	c.Add(Line{ProductID: 1, UnitPrice: 5, Quantity: 5})

	totals := c.Totals()
	assert.Equal(t, 25.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.Discount)
	assert.Equal(t, 0.0, totals.Tax)
	assert.Equal(t, 25.0, totals.Total)
}

func TestTotalsCartPercentageDiscount(t *testing.T) {
	c := &Cart{DiscountPct: 10}
	c.Add(Line{ProductID: 1, UnitPrice: 5, Quantity: 5})

	totals := c.Totals()
	assert.Equal(t, 25.0, totals.Subtotal)
	assert.Equal(t, 2.5, totals.Discount)
	assert.Equal(t, 22.5, totals.Total)
}

func TestTotalsTaxOnDiscountedLine(t *testing.T) {
	c := &Cart{}
	c.Add(Line{ProductID: 1, UnitPrice: 100, Quantity: 1, TaxRate: 10, DiscountPct: 20})

	totals := c.Totals()
	assert.Equal(t, 80.0, totals.Subtotal)
	assert.Equal(t, 8.0, totals.Tax, "tax applies after the item discount")
	assert.Equal(t, 88.0, totals.Total)
}

func TestTotalsItemPercentageBeforeFixed(t *testing.T) {
	// 2 x 50 = 100; 10% takes it to 90, then 5 fixed to 85.
	l := Line{ProductID: 1, UnitPrice: 50, Quantity: 2, DiscountPct: 10, DiscountFixed: 5}
	assert.Equal(t, 85.0, l.Amount())
}

func TestTotalsLineNeverNegative(t *testing.T) {
	l := Line{ProductID: 1, UnitPrice: 2, Quantity: 1, DiscountFixed: 10}
	assert.Equal(t, 0.0, l.Amount())
	assert.Equal(t, 0.0, l.Tax())
}

func TestTotalsCartDiscountScalesTax(t *testing.T) {
	c := &Cart{DiscountPct: 50}
	c.Add(Line{ProductID: 1, UnitPrice: 100, Quantity: 1, TaxRate: 10})

	totals := c.Totals()
	assert.Equal(t, 100.0, totals.Subtotal)
	assert.Equal(t, 50.0, totals.Discount)
	assert.Equal(t, 5.0, totals.Tax, "halving the cart halves its tax")
	assert.Equal(t, 55.0, totals.Total)
}

func TestTotalsCartDiscountClampedToSubtotal(t *testing.T) {
	c := &Cart{DiscountFixed: 500}
	c.Add(Line{ProductID: 1, UnitPrice: 10, Quantity: 1, TaxRate: 14})

	totals := c.Totals()
	assert.Equal(t, 10.0, totals.Subtotal)
	assert.Equal(t, 10.0, totals.Discount)
	assert.Equal(t, 0.0, totals.Tax)
	assert.Equal(t, 0.0, totals.Total)
}

func TestTotalsMixedRates(t *testing.T) {
	c := &Cart{}
	c.Add(Line{ProductID: 1, UnitPrice: 10, Quantity: 2, TaxRate: 14})
	c.Add(Line{ProductID: 2, UnitPrice: 5, Quantity: 1, TaxRate: 0})

	totals := c.Totals()
	assert.Equal(t, 25.0, totals.Subtotal)
	assert.InDelta(t, 2.8, totals.Tax, 1e-9)
	assert.InDelta(t, 27.8, totals.Total, 1e-9)
}

func TestAddMergesSameProduct(t *testing.T) {
	c := &Cart{}
	c.Add(Line{ProductID: 1, UnitPrice: 5, Quantity: 2})
	c.Add(Line{ProductID: 1, UnitPrice: 5, Quantity: 3})

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 5, c.Lines[0].Quantity)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	c := &Cart{}
	c.Add(Line{ProductID: 1, UnitPrice: 5, Quantity: 2})
	c.Add(Line{ProductID: 2, UnitPrice: 3, Quantity: 1})

	assert.True(t, c.SetQuantity(1, 0))
	assert.Len(t, c.Lines, 1)
	assert.Equal(t, int64(2), c.Lines[0].ProductID)
	assert.False(t, c.SetQuantity(99, 1))
}

func TestResetDropsLinkedOrder(t *testing.T) {
	id := int64(4)
	c := &Cart{OrderID: &id, OrderNumber: "ORD-1", DiscountPct: 10}
	c.Add(Line{ProductID: 1, UnitPrice: 5, Quantity: 1})

	c.Reset()
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.OrderID)
	assert.Empty(t, c.OrderNumber)
	assert.Equal(t, 0.0, c.DiscountPct)
}
