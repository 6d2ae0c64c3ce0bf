package components

import (
	"gin-auth-core/internal/infra/db"
	"gin-auth-core/internal/infra/readstore"
	"gin-auth-core/internal/infra/repository"
	"gin-auth-core/internal/infra/uow"
	"gin-auth-core/internal/usecase/queries"
	"gin-auth-core/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		// UnitOfWork
		uow.NewPostgresUoW,
		// Event log (write side, called inside the unit of work's tx)
		fx.Annotate(
			repository.NewEventRepository,
			fx.As(new(shared.EventRepository)),
		),
		// Read stores
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
		fx.Annotate(
			readstore.NewEventReadStore,
			fx.As(new(queries.EventReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
