// Package pricing implements the credit redemption quote engine: the pure
// calculation that converts an item price plus requested loyalty credits into
// an itemized price breakdown, under a configurable credit-usage cap.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"merch-api/internal/pkg/config"
)

var ErrInvalidInput = errors.New("invalid pricing input")

var oneHundred = decimal.NewFromInt(100)

// Config carries the pricing constants. Injected so tests can vary them.
type Config struct {
	// CreditUnitValue is the cash value of a single credit.
	CreditUnitValue decimal.Decimal
	// MaxDiscountFraction caps how much of the item price credits may cover.
	MaxDiscountFraction decimal.Decimal
	// FlatShipping is charged per redemption, always in cash.
	FlatShipping decimal.Decimal
	// TaxRate applies to the pre-discount item price, not the cash remainder.
	TaxRate decimal.Decimal
}

func NewConfig(cfg config.PricingConfig) Config {
	return Config{
		CreditUnitValue:     cfg.CreditUnitValue,
		MaxDiscountFraction: cfg.MaxDiscountFraction,
		FlatShipping:        cfg.FlatShipping,
		TaxRate:             cfg.TaxRate,
	}
}

func DefaultConfig() Config {
	return Config{
		CreditUnitValue:     decimal.RequireFromString("0.03"),
		MaxDiscountFraction: decimal.RequireFromString("0.60"),
		FlatShipping:        decimal.RequireFromString("5.99"),
		TaxRate:             decimal.RequireFromString("0.08"),
	}
}

// Quote is a derived, ephemeral value object; it is computed on demand and
// never persisted. All currency amounts are exact decimals; display rounding
// happens at the response boundary only.
type Quote struct {
	ItemPrice          decimal.Decimal
	CreditsRequested   int64
	CreditsApplied     int64
	CreditsValue       decimal.Decimal
	CashAmount         decimal.Decimal
	Shipping           decimal.Decimal
	Tax                decimal.Decimal
	Total              decimal.Decimal
	MaxCreditsAllowed  int64
	CreditsUsedPercent decimal.Decimal
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Quote prices a redemption request. Requests above the credit cap are
// silently clamped, not rejected. The function is pure: identical inputs
// always produce identical output.
func (c *Calculator) Quote(itemPrice decimal.Decimal, creditsRequested int64) (Quote, error) {
	if !itemPrice.IsPositive() || creditsRequested < 0 {
		return Quote{}, ErrInvalidInput
	}

	maxCreditsAllowed := itemPrice.
		Mul(c.cfg.MaxDiscountFraction).
		Div(c.cfg.CreditUnitValue).
		Floor().
		IntPart()

	creditsApplied := creditsRequested
	if creditsApplied > maxCreditsAllowed {
		creditsApplied = maxCreditsAllowed
	}

	creditsValue := decimal.NewFromInt(creditsApplied).Mul(c.cfg.CreditUnitValue)
	cashAmount := itemPrice.Sub(creditsValue)
	tax := itemPrice.Mul(c.cfg.TaxRate)
	total := cashAmount.Add(c.cfg.FlatShipping).Add(tax)
	creditsUsedPercent := creditsValue.Div(itemPrice).Mul(oneHundred)

	return Quote{
		ItemPrice:          itemPrice,
		CreditsRequested:   creditsRequested,
		CreditsApplied:     creditsApplied,
		CreditsValue:       creditsValue,
		CashAmount:         cashAmount,
		Shipping:           c.cfg.FlatShipping,
		Tax:                tax,
		Total:              total,
		MaxCreditsAllowed:  maxCreditsAllowed,
		CreditsUsedPercent: creditsUsedPercent,
	}, nil
}

// TotalMinorUnits converts the total into integer minor units (cents) for the
// payment provider, rounding to the nearest cent.
func (q Quote) TotalMinorUnits() int64 {
	return q.Total.Mul(oneHundred).Round(0).IntPart()
}
