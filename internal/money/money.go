// Package money holds the decimal conventions shared by the cart and closure
// code. Amounts are GHS with two decimal places.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const Currency = "GHS"

var ErrInvalidAmount = errors.New("invalid amount")

// Parse reads a user or API supplied amount. Blank or malformed text reads as
// zero; use ParseStrict where a silent zero is not acceptable.
func Parse(s string) decimal.Decimal {
	d, _ := parse(s)
	return d
}

// ParseDefaulted is Parse plus a flag telling whether the zero came from
// unusable input rather than a real "0".
func ParseDefaulted(s string) (decimal.Decimal, bool) {
	d, err := parse(s)
	return d, err != nil
}

func ParseStrict(s string) (decimal.Decimal, error) {
	d, err := parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, Currency)
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// NonNegative clamps negative values to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func Display(d decimal.Decimal) string {
	return Currency + " " + d.StringFixed(2)
}
