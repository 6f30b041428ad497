// Package cart is the sales terminal's cart engine. A Cart is owned by a
// single cashier session and is not safe for concurrent use; callers
// serialize access (see the session package).
package cart

import (
	"fmt"

	"feedmart-pos/internal/models"
	"feedmart-pos/internal/money"

	"github.com/shopspring/decimal"
)

// Key identifies a cart line. A product sold both by the bag and by the kg
// occupies two lines.
type Key struct {
	ProductID int64       `json:"product_id"`
	Unit      models.Unit `json:"unit"`
}

type Line struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
	Unit     models.Unit    `json:"unit"`
	// Discount is a per-line override kept for display. Order level discount
	// is what the totals use.
	Discount *decimal.Decimal `json:"discount,omitempty"`
}

func (l Line) Key() Key {
	return Key{ProductID: l.Product.ID, Unit: l.Unit}
}

type Payment struct {
	Method        models.PaymentMethod `json:"method"`
	Tendered      decimal.Decimal      `json:"amount"`
	Reference     string               `json:"reference,omitempty"`
	CustomerPhone string               `json:"customer_phone,omitempty"`
}

func defaultPayment() Payment {
	return Payment{Method: models.PaymentCash, Tendered: decimal.Zero}
}

type Cart struct {
	lines    []Line
	discount decimal.Decimal
	payment  Payment
}

func New() *Cart {
	return &Cart{discount: decimal.Zero, payment: defaultPayment()}
}

// AddOrIncrement adds quantity of product sold in unit. An existing line with
// the same key grows; otherwise a line is appended. Stock is not checked here.
func (c *Cart) AddOrIncrement(p models.Product, unit models.Unit, quantity int) error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: product id %d", ErrInvalidProduct, p.ID)
	}
	if !unit.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	key := Key{ProductID: p.ID, Unit: unit}
	if i := c.index(key); i >= 0 {
		c.lines[i].Quantity += quantity
		return nil
	}

	c.lines = append(c.lines, Line{Product: p, Quantity: quantity, Unit: unit})
	return nil
}

// UpdateQuantity shifts a line's quantity by delta and drops the line once it
// reaches zero or below. It reports whether the line was removed.
func (c *Cart) UpdateQuantity(key Key, delta int) (bool, error) {
	i := c.index(key)
	if i < 0 {
		return false, fmt.Errorf("%w: product %d (%s)", ErrLineNotFound, key.ProductID, key.Unit)
	}

	next := c.lines[i].Quantity + delta
	if next <= 0 {
		c.removeAt(i)
		return true, nil
	}

	c.lines[i].Quantity = next
	return false, nil
}

func (c *Cart) RemoveLine(key Key) {
	if i := c.index(key); i >= 0 {
		c.removeAt(i)
	}
}

// RemoveProduct drops every unit variant of a product.
func (c *Cart) RemoveProduct(productID int64) {
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.Product.ID != productID {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}

func (c *Cart) SetLineDiscount(key Key, amount decimal.Decimal) error {
	i := c.index(key)
	if i < 0 {
		return fmt.Errorf("%w: product %d (%s)", ErrLineNotFound, key.ProductID, key.Unit)
	}
	d := money.NonNegative(amount)
	c.lines[i].Discount = &d
	return nil
}

func (c *Cart) SetOrderDiscount(amount decimal.Decimal) {
	c.discount = money.NonNegative(amount)
}

func (c *Cart) SetPaymentMethod(m models.PaymentMethod) {
	c.payment.Method = m
}

func (c *Cart) SetTendered(amount decimal.Decimal) {
	c.payment.Tendered = amount
}

func (c *Cart) SetReference(ref string) {
	c.payment.Reference = ref
}

func (c *Cart) SetCustomerPhone(phone string) {
	c.payment.CustomerPhone = phone
}

// Reset empties the cart and restores payment defaults.
func (c *Cart) Reset() {
	c.lines = nil
	c.discount = decimal.Zero
	c.payment = defaultPayment()
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Line(key Key) (Line, bool) {
	if i := c.index(key); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) OrderDiscount() decimal.Decimal {
	return c.discount
}

func (c *Cart) Payment() Payment {
	return c.payment
}

func (c *Cart) index(key Key) int {
	for i, l := range c.lines {
		if l.Product.ID == key.ProductID && l.Unit == key.Unit {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}
