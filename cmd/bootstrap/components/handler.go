package components

import (
	"merch-api/internal/handler"
	"merch-api/internal/handler/api"
	"merch-api/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewMerchHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
