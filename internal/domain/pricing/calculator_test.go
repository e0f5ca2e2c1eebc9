//go:build unit

package pricing_test

import (
	"testing"

	"merch-api/internal/domain/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestQuote_Examples(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultConfig())

	tests := []struct {
		name             string
		itemPrice        string
		creditsRequested int64
		creditsApplied   int64
		maxCredits       int64
		creditsValue     string
		cashAmount       string
		tax              string
		total            string
	}{
		{
			name:             "request far above cap is clamped",
			itemPrice:        "29.99",
			creditsRequested: 1000,
			creditsApplied:   599,
			maxCredits:       599,
			creditsValue:     "17.97",
			cashAmount:       "12.02",
			tax:              "2.3992",
			total:            "20.4092",
		},
		{
			name:             "request below cap is applied as-is",
			itemPrice:        "19.99",
			creditsRequested: 100,
			creditsApplied:   100,
			maxCredits:       399,
			creditsValue:     "3.00",
			cashAmount:       "16.99",
			tax:              "1.5992",
			total:            "24.5792",
		},
		{
			name:             "zero credits pays full cash",
			itemPrice:        "10.00",
			creditsRequested: 0,
			creditsApplied:   0,
			maxCredits:       200,
			creditsValue:     "0",
			cashAmount:       "10.00",
			tax:              "0.80",
			total:            "16.79",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := calc.Quote(dec(tt.itemPrice), tt.creditsRequested)
			require.NoError(t, err)

			assert.Equal(t, tt.creditsApplied, quote.CreditsApplied)
			assert.Equal(t, tt.maxCredits, quote.MaxCreditsAllowed)
			assert.True(t, dec(tt.creditsValue).Equal(quote.CreditsValue), "creditsValue = %s", quote.CreditsValue)
			assert.True(t, dec(tt.cashAmount).Equal(quote.CashAmount), "cashAmount = %s", quote.CashAmount)
			assert.True(t, dec(tt.tax).Equal(quote.Tax), "tax = %s", quote.Tax)
			assert.True(t, dec(tt.total).Equal(quote.Total), "total = %s", quote.Total)
		})
	}
}

func TestQuote_InvalidInput(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultConfig())

	tests := []struct {
		name      string
		itemPrice string
		credits   int64
	}{
		{name: "zero price", itemPrice: "0", credits: 10},
		{name: "negative price", itemPrice: "-1.00", credits: 10},
		{name: "negative credits", itemPrice: "10.00", credits: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Quote(dec(tt.itemPrice), tt.credits)
			require.ErrorIs(t, err, pricing.ErrInvalidInput)
		})
	}
}

func TestQuote_CapInvariant(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultConfig())

	prices := []string{"0.01", "5.99", "9.99", "10.00", "29.99", "149.99", "1000.00"}
	requests := []int64{0, 1, 50, 599, 600, 10000}

	for _, p := range prices {
		for _, r := range requests {
			quote, err := calc.Quote(dec(p), r)
			require.NoError(t, err)

			// creditsApplied = min(requested, cap) and never exceeds the cap.
			assert.LessOrEqual(t, quote.CreditsApplied, quote.MaxCreditsAllowed)
			assert.LessOrEqual(t, quote.CreditsApplied, r)
			if r <= quote.MaxCreditsAllowed {
				assert.Equal(t, r, quote.CreditsApplied)
			}

			// Cash portion is never negative, so total >= shipping + tax.
			assert.False(t, quote.CashAmount.IsNegative(), "price=%s credits=%d cash=%s", p, r, quote.CashAmount)
			assert.True(t, quote.Total.GreaterThanOrEqual(quote.Shipping.Add(quote.Tax)))
		}
	}
}

func TestQuote_Deterministic(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultConfig())

	first, err := calc.Quote(dec("29.99"), 1000)
	require.NoError(t, err)
	second, err := calc.Quote(dec("29.99"), 1000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestQuote_ConfigIsInjected(t *testing.T) {
	cfg := pricing.Config{
		CreditUnitValue:     dec("0.05"),
		MaxDiscountFraction: dec("0.50"),
		FlatShipping:        dec("0"),
		TaxRate:             dec("0.10"),
	}
	calc := pricing.NewCalculator(cfg)

	quote, err := calc.Quote(dec("10.00"), 1000)
	require.NoError(t, err)

	// floor(10.00 * 0.5 / 0.05) = 100 credits at $0.05 each.
	assert.Equal(t, int64(100), quote.MaxCreditsAllowed)
	assert.Equal(t, int64(100), quote.CreditsApplied)
	assert.True(t, dec("5.00").Equal(quote.CreditsValue))
	assert.True(t, dec("5.00").Equal(quote.CashAmount))
	assert.True(t, dec("1.00").Equal(quote.Tax))
	assert.True(t, dec("6.00").Equal(quote.Total))
}

func TestQuote_TotalMinorUnits(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultConfig())

	quote, err := calc.Quote(dec("29.99"), 1000)
	require.NoError(t, err)

	// 20.4092 rounds to 2041 cents.
	assert.Equal(t, int64(2041), quote.TotalMinorUnits())
}
