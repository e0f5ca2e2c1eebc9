package bootstrap

import (
	"merch-api/internal/infra/payment"
	"merch-api/internal/pkg/config"
	"merch-api/internal/usecase/commands"

	"go.uber.org/fx"
)

var PaymentModule = fx.Module("payment",
	fx.Provide(
		fx.Annotate(
			NewStripeAuthorizer,
			fx.As(new(commands.PaymentAuthorizer)),
		),
	),
)

func NewStripeAuthorizer(cfg config.Config) *payment.StripeAuthorizer {
	return payment.NewStripeAuthorizer(cfg.Stripe)
}
