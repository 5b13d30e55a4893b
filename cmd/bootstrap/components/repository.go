package components

import (
	"rentflow/internal/infra/db"
	"rentflow/internal/infra/readstore"
	"rentflow/internal/infra/writerepo"
	"rentflow/internal/usecase/commands"
	"rentflow/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		// Read stores
		fx.Annotate(
			readstore.NewStoreReadStore,
			fx.As(new(commands.StoreReads)),
			fx.As(new(queries.StoreReads)),
		),
		fx.Annotate(
			readstore.NewProductReadStore,
			fx.As(new(commands.ProductReads)),
			fx.As(new(queries.ProductReads)),
		),
		fx.Annotate(
			readstore.NewAvailabilityReadStore,
			fx.As(new(commands.AvailabilityReads)),
			fx.As(new(queries.HoldReads)),
		),
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(commands.ReservationReads)),
			fx.As(new(queries.ReservationReads)),
		),
		fx.Annotate(
			readstore.NewActivityReadStore,
			fx.As(new(queries.ActivityReads)),
		),
		fx.Annotate(
			readstore.NewPaymentReadStore,
			fx.As(new(commands.PaymentReads)),
			fx.As(new(queries.PaymentReads)),
		),
		// Write repositories
		fx.Annotate(
			writerepo.NewReservationRepository,
			fx.As(new(commands.ReservationWrites)),
		),
		fx.Annotate(
			writerepo.NewActivityRepository,
			fx.As(new(commands.ActivityWrites)),
		),
		fx.Annotate(
			writerepo.NewPaymentRepository,
			fx.As(new(commands.PaymentWrites)),
		),
		fx.Annotate(
			writerepo.NewIdempotencyRepository,
			fx.As(new(commands.IdempotencyRepository)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
