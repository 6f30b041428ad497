package cart

import (
	"github.com/shopspring/decimal"
)

// State is the serializable form of a Cart, used to park a cashier's cart in
// the session store between requests.
type State struct {
	Lines         []Line          `json:"lines"`
	OrderDiscount decimal.Decimal `json:"order_discount"`
	Payment       Payment         `json:"payment"`
}

func (c *Cart) Snapshot() State {
	return State{
		Lines:         c.Lines(),
		OrderDiscount: c.discount,
		Payment:       c.payment,
	}
}

// Restore rebuilds a Cart from a snapshot. Lines that would break the cart's
// invariants (zero quantity, duplicate key) are dropped or merged.
func Restore(s State) *Cart {
	c := New()
	for _, l := range s.Lines {
		if l.Quantity < 1 {
			continue
		}
		if i := c.index(l.Key()); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
	c.SetOrderDiscount(s.OrderDiscount)
	if s.Payment.Method != 0 {
		c.payment = s.Payment
	}
	return c
}
