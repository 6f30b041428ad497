package catalog

import (
	"strings"
	"time"

	"feedmart-pos/internal/models"
	"feedmart-pos/internal/money"

	"github.com/shopspring/decimal"
)

type Query struct {
	Search       string      `form:"search"`
	UnitType     models.Unit `form:"unit_type"`
	LowStockOnly bool        `form:"low_stock"`
	InStockOnly  bool        `form:"in_stock"`
}

// Filter keeps the products matching every set field of q, in input order.
func Filter(products []models.Product, q Query) []models.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if q.UnitType != "" && p.UnitType != q.UnitType {
			continue
		}
		if q.LowStockOnly && !IsLowStock(p) {
			continue
		}
		if q.InStockOnly && p.StockQuantity <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Margin is the gross margin as a percentage of price, rounded to 2dp.
func Margin(p models.Product) decimal.Decimal {
	price := money.Parse(p.Price)
	if price.IsZero() {
		return decimal.Zero
	}
	cost := money.Parse(p.CostPrice)
	return money.Round(price.Sub(cost).Div(price).Mul(decimal.NewFromInt(100)))
}

func IsLowStock(p models.Product) bool {
	if p.ReorderLevel == nil {
		return false
	}
	return p.StockQuantity <= *p.ReorderLevel
}

// ExpiresWithin reports whether the product's expiry date (YYYY-MM-DD) falls
// within days of now. Products without a readable date never expire.
func ExpiresWithin(p models.Product, now time.Time, days int) bool {
	if p.ExpiryDate == nil {
		return false
	}
	exp, err := time.Parse("2006-01-02", *p.ExpiryDate)
	if err != nil {
		return false
	}
	return !exp.After(now.AddDate(0, 0, days))
}
