// Package closure computes the end-of-day cash-up: what each tender should
// hold according to the day's sales against what the cashier counted.
package closure

import (
	"errors"
	"fmt"

	"feedmart-pos/internal/models"
	"feedmart-pos/internal/money"

	"github.com/shopspring/decimal"
)

var ErrUnparsedAmount = errors.New("counted amount could not be read")

type Status string

const (
	StatusBalanced Status = "balanced"
	StatusShort    Status = "short"
	StatusOver     Status = "over"
)

func statusOf(v decimal.Decimal) Status {
	switch v.Sign() {
	case -1:
		return StatusShort
	case 1:
		return StatusOver
	}
	return StatusBalanced
}

type TenderVariance struct {
	Method   models.PaymentMethod `json:"payment_method"`
	Label    string               `json:"label"`
	Expected decimal.Decimal      `json:"expected"`
	Actual   decimal.Decimal      `json:"actual"`
	Variance decimal.Decimal      `json:"variance"`
	Status   Status               `json:"status"`
	// Defaulted is set when the counted amount was blank or unreadable and
	// was taken as zero.
	Defaulted bool `json:"defaulted"`
}

type Report struct {
	Date          string           `json:"date"`
	Tenders       []TenderVariance `json:"tenders"`
	TotalExpected decimal.Decimal  `json:"total_expected"`
	TotalActual   decimal.Decimal  `json:"total_actual"`
	TotalVariance decimal.Decimal  `json:"total_variance"`
	Status        Status           `json:"status"`
}

// HasDefaults reports whether any counted amount fell back to zero.
func (r Report) HasDefaults() bool {
	for _, t := range r.Tenders {
		if t.Defaulted {
			return true
		}
	}
	return false
}

// Compute derives per-tender and total variance (actual - expected). Counted
// amounts that cannot be parsed read as zero and are flagged on the line.
func Compute(summary models.DailySummary, actual map[models.PaymentMethod]string) Report {
	r := Report{
		Date:          summary.Date,
		Tenders:       make([]TenderVariance, 0, len(models.PaymentMethods)),
		TotalExpected: decimal.Zero,
		TotalActual:   decimal.Zero,
		TotalVariance: decimal.Zero,
	}

	for _, m := range models.PaymentMethods {
		expected := money.Parse(summary.Expected(m))
		counted, defaulted := money.ParseDefaulted(actual[m])
		v := counted.Sub(expected)

		r.Tenders = append(r.Tenders, TenderVariance{
			Method:    m,
			Label:     m.String(),
			Expected:  expected,
			Actual:    counted,
			Variance:  v,
			Status:    statusOf(v),
			Defaulted: defaulted,
		})

		r.TotalExpected = r.TotalExpected.Add(expected)
		r.TotalActual = r.TotalActual.Add(counted)
		r.TotalVariance = r.TotalVariance.Add(v)
	}

	r.Status = statusOf(r.TotalVariance)
	return r
}

// ComputeStrict is Compute but refuses blank or unreadable counted amounts
// for tenders that had expected takings.
func ComputeStrict(summary models.DailySummary, actual map[models.PaymentMethod]string) (Report, error) {
	r := Compute(summary, actual)
	for _, t := range r.Tenders {
		if t.Defaulted && !t.Expected.IsZero() {
			return Report{}, fmt.Errorf("%w: %s", ErrUnparsedAmount, t.Label)
		}
	}
	return r, nil
}
