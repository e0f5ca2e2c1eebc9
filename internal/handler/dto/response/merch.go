package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"merch-api/internal/domain/pricing"
	"merch-api/internal/usecase/queries"
)

type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	InStock     bool   `json:"inStock"`
	Inventory   int32  `json:"inventory"`
}

func FromProductView(v *queries.ProductView) *ProductResponse {
	return &ProductResponse{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Price:       v.Price.StringFixed(2),
		Category:    v.Category,
		Image:       v.Image,
		InStock:     v.InStock,
		Inventory:   v.Inventory,
	}
}

// QuoteResponse carries display amounts rounded to two decimal places. The
// exact decimals stay server-side; nothing here is accepted back on redeem.
type QuoteResponse struct {
	ItemPrice          string `json:"itemPrice"`
	CreditsRequested   int64  `json:"creditsRequested"`
	CreditsApplied     int64  `json:"creditsApplied"`
	CreditsValue       string `json:"creditsValue"`
	CashAmount         string `json:"cashAmount"`
	Shipping           string `json:"shipping"`
	Tax                string `json:"tax"`
	Total              string `json:"total"`
	MaxCreditsAllowed  int64  `json:"maxCreditsAllowed"`
	CreditsUsedPercent string `json:"creditsUsedPercent"`
}

func FromQuote(q *pricing.Quote) *QuoteResponse {
	return &QuoteResponse{
		ItemPrice:          q.ItemPrice.StringFixed(2),
		CreditsRequested:   q.CreditsRequested,
		CreditsApplied:     q.CreditsApplied,
		CreditsValue:       q.CreditsValue.StringFixed(2),
		CashAmount:         q.CashAmount.StringFixed(2),
		Shipping:           q.Shipping.StringFixed(2),
		Tax:                q.Tax.StringFixed(2),
		Total:              q.Total.StringFixed(2),
		MaxCreditsAllowed:  q.MaxCreditsAllowed,
		CreditsUsedPercent: q.CreditsUsedPercent.StringFixed(1),
	}
}

type RedemptionResponse struct {
	ID               uuid.UUID `json:"id"`
	ProductID        string    `json:"productId"`
	CreditsUsed      int64     `json:"creditsUsed"`
	CashAmount       string    `json:"cashAmount"`
	TotalAmount      string    `json:"totalAmount"`
	PaymentReference string    `json:"paymentReference"`
	Status           string    `json:"status"`
	TrackingNumber   *string   `json:"trackingNumber,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func FromRedemptionView(v *queries.RedemptionView) (*RedemptionResponse, error) {
	var resp RedemptionResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	resp.CashAmount = v.CashAmount.StringFixed(2)
	resp.TotalAmount = v.TotalAmount.StringFixed(2)
	return &resp, nil
}

type RedeemResponse struct {
	Success          bool      `json:"success"`
	RedemptionID     uuid.UUID `json:"redemptionId"`
	PaymentReference string    `json:"paymentReference"`
	Status           string    `json:"status"`
	TotalAmount      string    `json:"totalAmount"`
	Replayed         bool      `json:"replayed"`
}
