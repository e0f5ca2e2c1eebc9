package redemption

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStatus   = errors.New("invalid redemption status")
	ErrInvalidAddress  = errors.New("incomplete shipping address")
	ErrNegativeCredits = errors.New("credits used cannot be negative")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

func NewStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

func (s Status) String() string {
	return string(s)
}

type ShippingAddress struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

func NewShippingAddress(street, city, state, zipCode, country string) (ShippingAddress, error) {
	if street == "" || city == "" || state == "" || zipCode == "" {
		return ShippingAddress{}, ErrInvalidAddress
	}
	if country == "" {
		country = "US"
	}
	return ShippingAddress{
		Street:  street,
		City:    city,
		State:   state,
		ZipCode: zipCode,
		Country: country,
	}, nil
}

// Redemption is the durable record of one credits-plus-cash purchase. It is
// created together with the credit debit; later status transitions come from
// payment confirmation, which is outside this service.
type Redemption struct {
	id               uuid.UUID
	userID           uuid.UUID
	productID        string
	creditsUsed      int64
	cashAmount       decimal.Decimal
	totalAmount      decimal.Decimal
	paymentReference string
	status           Status
	shippingAddress  ShippingAddress
	trackingNumber   *string
	createdAt        time.Time
	updatedAt        time.Time
}

func NewRedemption(
	userID uuid.UUID,
	productID string,
	creditsUsed int64,
	cashAmount, totalAmount decimal.Decimal,
	paymentReference string,
	status Status,
	shippingAddress ShippingAddress,
) (*Redemption, error) {
	if creditsUsed < 0 {
		return nil, ErrNegativeCredits
	}
	if cashAmount.IsNegative() || totalAmount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	return &Redemption{
		id:               uuid.New(),
		userID:           userID,
		productID:        productID,
		creditsUsed:      creditsUsed,
		cashAmount:       cashAmount,
		totalAmount:      totalAmount,
		paymentReference: paymentReference,
		status:           status,
		shippingAddress:  shippingAddress,
	}, nil
}

// MarkFailed transitions the record to failed. Used for compensating records
// when the debit transaction cannot complete after payment authorization.
func (r *Redemption) MarkFailed() {
	r.status = StatusFailed
}

func (r *Redemption) ID() uuid.UUID                    { return r.id }
func (r *Redemption) UserID() uuid.UUID                { return r.userID }
func (r *Redemption) ProductID() string                { return r.productID }
func (r *Redemption) CreditsUsed() int64               { return r.creditsUsed }
func (r *Redemption) CashAmount() decimal.Decimal      { return r.cashAmount }
func (r *Redemption) TotalAmount() decimal.Decimal     { return r.totalAmount }
func (r *Redemption) PaymentReference() string         { return r.paymentReference }
func (r *Redemption) Status() Status                   { return r.status }
func (r *Redemption) ShippingAddress() ShippingAddress { return r.shippingAddress }
func (r *Redemption) TrackingNumber() *string          { return r.trackingNumber }
func (r *Redemption) CreatedAt() time.Time             { return r.createdAt }
func (r *Redemption) UpdatedAt() time.Time             { return r.updatedAt }
