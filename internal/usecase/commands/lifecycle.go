package commands

import (
	"context"

	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/notify"
	"rentflow/internal/pkg/clock"
	"rentflow/internal/pkg/errs"
	"rentflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChangeStatusInput struct {
	ReservationID uuid.UUID
	To            reservation.Status
	Reason        string
	ActorID       *uuid.UUID
	// ActorIsStaff widens the allowed edges: customers may only cancel.
	ActorIsStaff bool
}

type LifecycleCommands interface {
	ChangeStatus(ctx context.Context, input ChangeStatusInput) error
}

type lifecycleInteractor struct {
	stores     StoreReads
	resReads   ReservationReads
	resWrites  ReservationWrites
	activities ActivityWrites
	dispatcher notify.Dispatcher
	pool       *pgxpool.Pool
	clock      clock.Clock
}

func NewLifecycleInteractor(
	stores StoreReads,
	resReads ReservationReads,
	resWrites ReservationWrites,
	activities ActivityWrites,
	dispatcher notify.Dispatcher,
	pool *pgxpool.Pool,
	clk clock.Clock,
) LifecycleCommands {
	return &lifecycleInteractor{
		stores:     stores,
		resReads:   resReads,
		resWrites:  resWrites,
		activities: activities,
		dispatcher: dispatcher,
		pool:       pool,
		clock:      clk,
	}
}

// ChangeStatus moves a reservation along the lifecycle graph. The
// aggregate is re-read inside the transaction so concurrent transitions
// serialize on the row instead of clobbering each other.
func (l *lifecycleInteractor) ChangeStatus(ctx context.Context, input ChangeStatusInput) error {
	if !input.To.IsValid() {
		return reservation.ErrInvalidStatusTransition
	}
	if !input.ActorIsStaff && input.To != reservation.StatusCancelled {
		return ErrUnauthorized
	}

	now := l.clock.Now()

	res, err := shared.RunInTx(ctx, l.pool, func(tx db.DBTX) (*reservation.Reservation, error) {
		res, err := l.resReads.FindByID(ctx, tx, input.ReservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, ErrReservationNotFound
			}
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		warnings := l.confirmationWarnings(ctx, res, input.To)

		activity, err := res.ChangeStatus(input.To, input.ActorID, input.Reason, warnings, now)
		if err != nil {
			return nil, err
		}

		if err := l.resWrites.UpdateStatus(ctx, tx, res); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := l.activities.Append(ctx, tx, activity); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return res, nil
	})
	if err != nil {
		return err
	}

	l.dispatcher.Dispatch(ctx, intentsForStatus(res, input.To, input.Reason))
	return nil
}

// confirmationWarnings re-runs the business-hour findings when a store
// confirms. They were fatal at creation time; by confirmation the store
// has seen the request and findings are advisory only.
func (l *lifecycleInteractor) confirmationWarnings(ctx context.Context, res *reservation.Reservation, to reservation.Status) []string {
	if to != reservation.StatusConfirmed {
		return nil
	}
	store, err := l.stores.FindByID(ctx, res.StoreID())
	if err != nil {
		return nil
	}
	return businessHourViolations(store.BusinessHours, res.Period())
}

func intentsForStatus(res *reservation.Reservation, to reservation.Status, reason string) []notify.Intent {
	event := map[reservation.Status]string{
		reservation.StatusConfirmed: notify.EventReservationConfirmed,
		reservation.StatusRejected:  notify.EventReservationRejected,
		reservation.StatusOngoing:   notify.EventReservationOngoing,
		reservation.StatusCompleted: notify.EventReservationCompleted,
		reservation.StatusCancelled: notify.EventReservationCancelled,
	}[to]
	if event == "" {
		return nil
	}

	ctx := map[string]any{"number": res.Number()}
	if reason != "" {
		ctx["reason"] = reason
	}
	return []notify.Intent{
		{Event: event, ReservationID: res.ID(), Recipient: "customer", Context: ctx},
		{Event: event, ReservationID: res.ID(), Recipient: "store", Context: ctx},
	}
}
