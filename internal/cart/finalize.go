package cart

import (
	"strings"

	"feedmart-pos/internal/models"
	"feedmart-pos/internal/money"

	"github.com/shopspring/decimal"
)

// Finalize checks the payment details against the current cart and builds
// the payload for the remote sales endpoint. It does not touch the cart; call
// Reset once the remote side has confirmed the sale.
func (c *Cart) Finalize(taxRate decimal.Decimal) (models.SaleSubmission, error) {
	if c.IsEmpty() {
		return models.SaleSubmission{}, rejection(ReasonEmptyCart, "cart has no items")
	}

	p := c.payment
	if !p.Method.Valid() {
		return models.SaleSubmission{}, rejection(ReasonInvalidPaymentMethod, "unknown payment method %d", p.Method)
	}

	reference := strings.TrimSpace(p.Reference)
	if p.Method != models.PaymentCash && reference == "" {
		return models.SaleSubmission{}, rejection(ReasonMissingReference, "%s payments need a transaction reference", p.Method)
	}

	total := c.Total()
	if total.IsNegative() {
		return models.SaleSubmission{}, rejection(ReasonNegativeTotal, "discount %s exceeds subtotal %s",
			money.Format(c.discount), money.Format(c.Subtotal()))
	}

	paid := total
	change := decimal.Zero
	if p.Method == models.PaymentCash {
		if p.Tendered.LessThan(total) {
			return models.SaleSubmission{}, rejection(ReasonInsufficientTender, "tendered %s is less than total %s",
				money.Format(p.Tendered), money.Format(total))
		}
		paid = p.Tendered
		change = c.ChangeDue()
		reference = ""
	}

	items := make([]models.SaleItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, models.SaleItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Unit:      l.Unit,
			Quantity:  l.Quantity,
			UnitPrice: UnitPrice(l),
			LineTotal: LineTotal(l),
		})
	}

	return models.SaleSubmission{
		Items:         items,
		Subtotal:      c.Subtotal(),
		Tax:           Tax(total, taxRate),
		Total:         total,
		Discount:      c.discount,
		PaymentMethod: p.Method,
		AmountPaid:    paid,
		Change:        change,
		Reference:     reference,
		CustomerPhone: strings.TrimSpace(p.CustomerPhone),
	}, nil
}
