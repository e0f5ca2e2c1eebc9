// Package payment adapts the Stripe PaymentIntents API to the authorizer port
// used by the redemption command.
package payment

import (
	"context"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"merch-api/internal/pkg/config"
	"merch-api/internal/pkg/errs"
	"merch-api/internal/usecase/commands"
)

type StripeAuthorizer struct {
	api *client.API
	cfg config.StripeConfig
}

func NewStripeAuthorizer(cfg config.StripeConfig) *StripeAuthorizer {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeAuthorizer{
		api: api,
		cfg: cfg,
	}
}

var _ commands.PaymentAuthorizer = (*StripeAuthorizer)(nil)

// Authorize creates a PaymentIntent for the given amount. The intent is
// confirmed client-side; this service only records its reference.
func (s *StripeAuthorizer) Authorize(ctx context.Context, amountMinorUnits int64, currency string, meta commands.PaymentMetadata) (*commands.PaymentAuthorization, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	params.AddMetadata("user_id", meta.UserID.String())
	params.AddMetadata("product_id", meta.ProductID)
	params.AddMetadata("credits_applied", strconv.FormatInt(meta.CreditsApplied, 10))

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create payment intent")
	}

	return &commands.PaymentAuthorization{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}
