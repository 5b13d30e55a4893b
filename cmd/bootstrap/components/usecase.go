package components

import (
	"log/slog"

	"rentflow/internal/infra/provider/stripe"
	"rentflow/internal/notify"
	"rentflow/internal/pkg/clock"
	"rentflow/internal/usecase/commands"
	"rentflow/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		stripe.NewProvider,
		fx.As(new(commands.PaymentProvider)),
	),
	fx.Annotate(
		NewDispatcher,
		fx.As(new(notify.Dispatcher)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationEngine,
		commands.NewLifecycleInteractor,
		commands.NewDepositInteractor,
		commands.NewPaymentInteractor,
		commands.NewUnitInteractor,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueryService,
		queries.NewAvailabilityQueryService,
	),
)

func NewDispatcher(logger *slog.Logger) *notify.AsyncDispatcher {
	return notify.NewAsyncDispatcher(logger, notify.NewLogSink(logger))
}
