package bootstrap

import (
	"context"
	"log/slog"

	dbschema "merch-api/db"
	"merch-api/internal/infra/db"
	"merch-api/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx := context.Background()

	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, dbschema.Schema); err != nil {
		cleanup()
		return nil, err
	}

	if cfg.DB.Seed {
		if _, err := pool.Exec(ctx, dbschema.Seed); err != nil {
			slog.Warn("failed to apply seed data", "error", err.Error())
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
