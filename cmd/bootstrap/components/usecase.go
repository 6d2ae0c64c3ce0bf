package components

import (
	"gin-auth-core/internal/pkg/clock"
	"gin-auth-core/internal/usecase"
	"gin-auth-core/internal/usecase/commands"
	"gin-auth-core/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		commands.NewAuthCommands,
		queries.NewUserQueries,
		queries.NewEventQueries,
		usecase.NewTokenValidator,
	),
)
