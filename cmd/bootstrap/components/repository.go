package components

import (
	"merch-api/internal/domain/product"
	"merch-api/internal/infra/db"
	"merch-api/internal/infra/repository"
	"merch-api/internal/usecase/commands"
	"merch-api/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		NewCommandsDB,
		fx.Annotate(
			repository.NewUserRepository,
			fx.As(new(commands.UserRepository)),
			fx.As(new(queries.UserReadStore)),
		),
		fx.Annotate(
			repository.NewRedemptionRepository,
			fx.As(new(commands.RedemptionRepository)),
			fx.As(new(queries.RedemptionReadStore)),
		),
		fx.Annotate(
			repository.NewIdempotencyRepository,
			fx.As(new(commands.IdempotencyRepository)),
		),
		fx.Annotate(
			repository.NewProductRepository,
			fx.As(new(commands.ProductRepository)),
			fx.As(new(queries.ProductReadStore)),
		),
		fx.Annotate(
			repository.NewLaneRepository,
			fx.As(new(commands.LaneRepository)),
			fx.As(new(queries.LaneReadStore)),
		),
		// Products resolve through the database first, then the demo catalog.
		fx.Annotate(
			NewProductSource,
			fx.As(new(product.Source)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewCommandsDB(pool *pgxpool.Pool) commands.DB {
	return pool
}

func NewProductSource(pool *pgxpool.Pool) *product.Chain {
	return product.NewChain(repository.NewProductRepository(pool), product.NewDemoCatalog())
}
