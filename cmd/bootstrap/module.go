package bootstrap

import (
	"merch-api/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	PaymentModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
