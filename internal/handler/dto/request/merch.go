package request

import (
	"merch-api/internal/domain/redemption"

	"github.com/shopspring/decimal"
)

type QuoteRequest struct {
	ProductID    string `json:"productId" binding:"required"`
	CreditsToUse int64  `json:"creditsToUse" binding:"gte=0"`
}

type ShippingAddressRequest struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zipCode" binding:"required"`
	Country string `json:"country"`
}

func (r ShippingAddressRequest) ToDomain() (redemption.ShippingAddress, error) {
	return redemption.NewShippingAddress(r.Street, r.City, r.State, r.ZipCode, r.Country)
}

type RedeemRequest struct {
	ProductID    string `json:"productId" binding:"required"`
	CreditsToUse int64  `json:"creditsToUse" binding:"gte=0"`
	// CashAmount is what the client displayed at checkout. It is accepted for
	// audit logging only; the charged amount is always recomputed server-side.
	CashAmount      *decimal.Decimal       `json:"cashAmount,omitempty"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress" binding:"required"`
}
