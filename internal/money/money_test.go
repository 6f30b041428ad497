package money_test

import (
	"testing"

	"feedmart-pos/internal/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DefaultsToZero(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  string
		defaulted bool
	}{
		{name: "plain", input: "25.50", expected: "25.5"},
		{name: "integer", input: "480", expected: "480"},
		{name: "padded", input: "  12.00 ", expected: "12"},
		{name: "currency prefix", input: "GHS 76.00", expected: "76"},
		{name: "thousands separator", input: "1,250.75", expected: "1250.75"},
		{name: "negative", input: "-5", expected: "-5"},
		{name: "blank", input: "", expected: "0", defaulted: true},
		{name: "whitespace", input: "   ", expected: "0", defaulted: true},
		{name: "garbage", input: "abc", expected: "0", defaulted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defaulted := money.ParseDefaulted(tt.input)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
			assert.Equal(t, tt.defaulted, defaulted)
			assert.True(t, got.Equal(money.Parse(tt.input)))
		})
	}
}

func TestParseStrict_RejectsBlank(t *testing.T) {
	_, err := money.ParseStrict("")
	require.Error(t, err)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)

	d, err := money.ParseStrict("10.10")
	require.NoError(t, err)
	assert.Equal(t, "10.10", money.Format(d))
}

func TestNonNegative(t *testing.T) {
	assert.True(t, money.NonNegative(decimal.NewFromInt(-3)).IsZero())
	assert.Equal(t, "4.00", money.Format(money.NonNegative(decimal.NewFromInt(4))))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "GHS 76.00", money.Display(decimal.NewFromInt(76)))
	assert.Equal(t, "GHS -10.00", money.Display(decimal.NewFromInt(-10)))
}
