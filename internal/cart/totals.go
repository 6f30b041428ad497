package cart

import (
	"feedmart-pos/internal/models"
	"feedmart-pos/internal/money"

	"github.com/shopspring/decimal"
)

// Totals are recomputed from the lines on every call; nothing is cached on
// the Cart.

func UnitPrice(l Line) decimal.Decimal {
	return money.Parse(l.Product.Price)
}

func LineTotal(l Line) decimal.Decimal {
	return UnitPrice(l).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func LineCost(l Line) decimal.Decimal {
	return money.Parse(l.Product.CostPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(LineTotal(l))
	}
	return sum
}

// Total is subtotal less the order discount. It goes negative when the
// discount exceeds the subtotal; Finalize rejects that case.
func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Sub(c.discount)
}

func (c *Cart) TotalCost() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(LineCost(l))
	}
	return sum
}

// EstimatedProfit is computed for every caller; hiding it from cashiers is
// the presentation layer's job.
func (c *Cart) EstimatedProfit() decimal.Decimal {
	return c.Subtotal().Sub(c.TotalCost()).Sub(c.discount)
}

// ChangeDue is tendered cash minus total. Non-cash payments have no change.
func (c *Cart) ChangeDue() decimal.Decimal {
	if c.payment.Method != models.PaymentCash {
		return decimal.Zero
	}
	return c.payment.Tendered.Sub(c.Total())
}

// Tax is the VAT already contained in a tax-inclusive total.
func Tax(total, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() || !total.IsPositive() {
		return decimal.Zero
	}
	return money.Round(total.Mul(rate).Div(decimal.NewFromInt(1).Add(rate)))
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}
