package components

import (
	"merch-api/internal/domain/pricing"
	"merch-api/internal/pkg/clock"
	"merch-api/internal/pkg/config"
	"merch-api/internal/usecase/commands"
	"merch-api/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewCalculator,
)

func NewCalculator(cfg config.Config) *pricing.Calculator {
	return pricing.NewCalculator(pricing.NewConfig(cfg.Pricing))
}

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCatalogQueries,
		queries.NewQuoteQueries,
		queries.NewUserQueries,
		queries.NewRedemptionQueries,
		queries.NewAdminQueries,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewRedeemCommands,
		commands.NewCatalogAdminCommands,
	),
)
