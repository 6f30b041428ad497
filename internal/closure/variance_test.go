package closure_test

import (
	"testing"

	"feedmart-pos/internal/closure"
	"feedmart-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summary() models.DailySummary {
	return models.DailySummary{
		Date: "2026-10-18",
		Tenders: []models.TenderTotal{
			{Method: models.PaymentCash, Expected: "500.00", Count: 12},
			{Method: models.PaymentMobileMoney, Expected: "200.00", Count: 4},
		},
	}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute_Variances(t *testing.T) {
	r := closure.Compute(summary(), map[models.PaymentMethod]string{
		models.PaymentCash:         "480.00",
		models.PaymentMobileMoney:  "210.00",
		models.PaymentBankTransfer: "0",
	})

	require.Len(t, r.Tenders, 3)

	cash := r.Tenders[0]
	assert.Equal(t, models.PaymentCash, cash.Method)
	assert.True(t, amount("-20.00").Equal(cash.Variance), "480 - 500 = -20, got %s", cash.Variance)
	assert.Equal(t, closure.StatusShort, cash.Status)

	momo := r.Tenders[1]
	assert.True(t, amount("10.00").Equal(momo.Variance), "210 - 200 = 10, got %s", momo.Variance)
	assert.Equal(t, closure.StatusOver, momo.Status)

	bank := r.Tenders[2]
	assert.True(t, bank.Variance.IsZero())
	assert.Equal(t, closure.StatusBalanced, bank.Status)
	assert.False(t, bank.Defaulted)

	assert.True(t, amount("-10.00").Equal(r.TotalVariance), "got %s", r.TotalVariance)
	assert.True(t, amount("700.00").Equal(r.TotalExpected))
	assert.True(t, amount("690.00").Equal(r.TotalActual))
	assert.Equal(t, closure.StatusShort, r.Status)
	assert.Equal(t, "2026-10-18", r.Date)
}

func TestCompute_BlankCountDefaultsToZero(t *testing.T) {
	r := closure.Compute(summary(), map[models.PaymentMethod]string{
		models.PaymentCash:        "",
		models.PaymentMobileMoney: "200",
	})

	cash := r.Tenders[0]
	assert.True(t, cash.Actual.IsZero())
	assert.True(t, cash.Defaulted)
	assert.True(t, amount("-500").Equal(cash.Variance))
	assert.True(t, r.HasDefaults())
}

func TestCompute_MalformedExpectedReadsAsZero(t *testing.T) {
	s := models.DailySummary{Tenders: []models.TenderTotal{{Method: models.PaymentCash, Expected: "n/a"}}}

	r := closure.Compute(s, map[models.PaymentMethod]string{models.PaymentCash: "15.00"})

	assert.True(t, amount("15.00").Equal(r.Tenders[0].Variance))
}

func TestComputeStrict(t *testing.T) {
	t.Run("rejects blank count for a tender with takings", func(t *testing.T) {
		_, err := closure.ComputeStrict(summary(), map[models.PaymentMethod]string{
			models.PaymentMobileMoney: "200",
		})
		assert.ErrorIs(t, err, closure.ErrUnparsedAmount)
	})

	t.Run("tolerates blank count for an idle tender", func(t *testing.T) {
		r, err := closure.ComputeStrict(summary(), map[models.PaymentMethod]string{
			models.PaymentCash:        "500",
			models.PaymentMobileMoney: "200",
		})
		require.NoError(t, err)
		assert.True(t, r.TotalVariance.IsZero())
		assert.Equal(t, closure.StatusBalanced, r.Status)
	})
}
