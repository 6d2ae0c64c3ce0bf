package components

import (
	"gin-auth-core/internal/handler"
	"gin-auth-core/internal/handler/api"
	"gin-auth-core/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
