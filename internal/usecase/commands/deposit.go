package commands

import (
	"context"
	"time"

	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/notify"
	"rentflow/internal/pkg/clock"
	"rentflow/internal/pkg/config"
	"rentflow/internal/pkg/errs"
	"rentflow/internal/pkg/money"
	"rentflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SaveCardInput struct {
	ReservationID    uuid.UUID
	CustomerRef      string
	PaymentMethodRef string
	ActorID          *uuid.UUID
}

type CaptureDepositInput struct {
	ReservationID uuid.UUID
	Amount        float64
	Reason        string
	ActorID       *uuid.UUID
}

type DepositCommands interface {
	SaveCard(ctx context.Context, input SaveCardInput) error
	Authorize(ctx context.Context, reservationID uuid.UUID, actorID *uuid.UUID) error
	Capture(ctx context.Context, input CaptureDepositInput) error
	Release(ctx context.Context, reservationID uuid.UUID, actorID *uuid.UUID) error
}

type depositInteractor struct {
	resReads      ReservationReads
	resWrites     ReservationWrites
	activities    ActivityWrites
	paymentReads  PaymentReads
	paymentWrites PaymentWrites
	provider      PaymentProvider
	dispatcher    notify.Dispatcher
	pool          *pgxpool.Pool
	clock         clock.Clock
	stripe        config.StripeConfig
}

func NewDepositInteractor(
	resReads ReservationReads,
	resWrites ReservationWrites,
	activities ActivityWrites,
	paymentReads PaymentReads,
	paymentWrites PaymentWrites,
	provider PaymentProvider,
	dispatcher notify.Dispatcher,
	pool *pgxpool.Pool,
	clk clock.Clock,
	cfg config.Config,
) DepositCommands {
	return &depositInteractor{
		resReads:      resReads,
		resWrites:     resWrites,
		activities:    activities,
		paymentReads:  paymentReads,
		paymentWrites: paymentWrites,
		provider:      provider,
		dispatcher:    dispatcher,
		pool:          pool,
		clock:         clk,
		stripe:        cfg.Stripe,
	}
}

func (d *depositInteractor) SaveCard(ctx context.Context, input SaveCardInput) error {
	now := d.clock.Now()

	_, err := shared.RunInTx(ctx, d.pool, func(tx db.DBTX) (struct{}, error) {
		res, err := d.findReservation(ctx, tx, input.ReservationID)
		if err != nil {
			return struct{}{}, err
		}

		activity, err := res.MarkCardSaved(input.CustomerRef, input.PaymentMethodRef, input.ActorID, now)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, d.persistDepositChange(ctx, tx, res, activity)
	})
	return err
}

// Authorize places the provider hold for the full deposit amount. The
// provider is called outside the transaction; on provider failure the
// deposit moves to failed so the store sees the attempt.
func (d *depositInteractor) Authorize(ctx context.Context, reservationID uuid.UUID, actorID *uuid.UUID) error {
	now := d.clock.Now()

	res, err := d.findReservation(ctx, nil, reservationID)
	if err != nil {
		return err
	}
	if res.DepositAmount() <= 0 {
		return reservation.ErrDepositNotRequired
	}
	if res.DepositStatus() != reservation.DepositCardSaved ||
		res.ProviderCustomerID() == nil || res.ProviderPaymentMethodID() == nil {
		return reservation.ErrInvalidDepositStatus
	}

	intentRef, err := d.provider.CreateDepositAuthorization(ctx, DepositAuthorization{
		CustomerRef:      *res.ProviderCustomerID(),
		PaymentMethodRef: *res.ProviderPaymentMethodID(),
		AmountMinor:      money.ToMinorUnits(res.DepositAmount()),
		Currency:         d.stripe.Currency,
		Description:      "Deposit hold for reservation " + res.Number(),
	})
	if err != nil {
		d.recordFailure(ctx, reservationID, "authorization failed", actorID)
		return errs.Mark(err, ErrProviderFailure)
	}

	_, err = shared.RunInTx(ctx, d.pool, func(tx db.DBTX) (struct{}, error) {
		res, err := d.findReservation(ctx, tx, reservationID)
		if err != nil {
			return struct{}{}, err
		}
		activity, err := res.AuthorizeDeposit(intentRef, actorID, now)
		if err != nil {
			return struct{}{}, err
		}
		if err := d.persistDepositChange(ctx, tx, res, activity); err != nil {
			return struct{}{}, err
		}

		hold, err := payment.New(reservationID, payment.TypeDepositHold, payment.MethodStripe, payment.StatusAuthorized, res.DepositAmount(), now)
		if err != nil {
			return struct{}{}, err
		}
		hold.ProviderIntentID = &intentRef
		if err := d.paymentWrites.Insert(ctx, tx, hold); err != nil {
			return struct{}{}, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return struct{}{}, nil
	})
	return err
}

// Capture charges part or all of the held deposit. The mandatory reason
// lands on both the activity log and the ledger row.
func (d *depositInteractor) Capture(ctx context.Context, input CaptureDepositInput) error {
	now := d.clock.Now()

	res, err := d.findReservation(ctx, nil, input.ReservationID)
	if err != nil {
		return err
	}
	if res.DepositStatus() != reservation.DepositAuthorized || res.ProviderPaymentIntentID() == nil {
		return reservation.ErrNoActiveAuthorization
	}
	if input.Reason == "" {
		return reservation.ErrReasonRequired
	}
	if input.Amount <= 0 {
		return reservation.ErrNegativeAmount
	}
	if input.Amount > res.DepositAmount()+0.005 {
		return reservation.ErrAmountExceedsDeposit
	}

	chargeRef, err := d.provider.CaptureDeposit(ctx, *res.ProviderPaymentIntentID(), money.ToMinorUnits(input.Amount))
	if err != nil {
		d.recordFailure(ctx, input.ReservationID, "capture failed", input.ActorID)
		return errs.Mark(err, ErrProviderFailure)
	}

	_, err = shared.RunInTx(ctx, d.pool, func(tx db.DBTX) (struct{}, error) {
		res, err := d.findReservation(ctx, tx, input.ReservationID)
		if err != nil {
			return struct{}{}, err
		}
		activity, err := res.CaptureDeposit(input.Amount, input.Reason, input.ActorID, now)
		if err != nil {
			return struct{}{}, err
		}
		if err := d.persistDepositChange(ctx, tx, res, activity); err != nil {
			return struct{}{}, err
		}
		if err := d.resolveHold(ctx, tx, input.ReservationID, func(hold *payment.Payment) error {
			if err := hold.ResolveCaptured(input.Amount, input.Reason, now); err != nil {
				return err
			}
			hold.ProviderChargeID = &chargeRef
			return nil
		}); err != nil {
			return struct{}{}, err
		}

		// Companion ledger row: the hold keeps the authorization history,
		// the capture row records what was actually charged and why.
		capture, err := captureLedgerRow(input.ReservationID, input.Amount, input.Reason, chargeRef, now)
		if err != nil {
			return struct{}{}, err
		}
		if err := d.paymentWrites.Insert(ctx, tx, capture); err != nil {
			return struct{}{}, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	d.dispatcher.Dispatch(ctx, []notify.Intent{{
		Event:         notify.EventDepositCaptured,
		ReservationID: input.ReservationID,
		Recipient:     "customer",
		Context:       map[string]any{"amount": input.Amount, "reason": input.Reason},
	}})
	return nil
}

// Release cancels the hold without charging. A second release finds no
// active authorization and fails without touching the provider, which
// makes retrying a timed-out release safe.
func (d *depositInteractor) Release(ctx context.Context, reservationID uuid.UUID, actorID *uuid.UUID) error {
	now := d.clock.Now()

	res, err := d.findReservation(ctx, nil, reservationID)
	if err != nil {
		return err
	}
	if res.DepositStatus() != reservation.DepositAuthorized || res.ProviderPaymentIntentID() == nil {
		return reservation.ErrNoActiveAuthorization
	}

	if err := d.provider.ReleaseDeposit(ctx, *res.ProviderPaymentIntentID()); err != nil {
		d.recordFailure(ctx, reservationID, "release failed", actorID)
		return errs.Mark(err, ErrProviderFailure)
	}

	_, err = shared.RunInTx(ctx, d.pool, func(tx db.DBTX) (struct{}, error) {
		res, err := d.findReservation(ctx, tx, reservationID)
		if err != nil {
			return struct{}{}, err
		}
		activity, err := res.ReleaseDeposit(actorID, now)
		if err != nil {
			return struct{}{}, err
		}
		if err := d.persistDepositChange(ctx, tx, res, activity); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, d.resolveHold(ctx, tx, reservationID, func(hold *payment.Payment) error {
			return hold.ResolveReleased(now)
		})
	})
	if err != nil {
		return err
	}

	d.dispatcher.Dispatch(ctx, []notify.Intent{{
		Event:         notify.EventDepositReleased,
		ReservationID: reservationID,
		Recipient:     "customer",
	}})
	return nil
}

func captureLedgerRow(reservationID uuid.UUID, amount float64, reason, chargeRef string, now time.Time) (*payment.Payment, error) {
	entry, err := payment.New(reservationID, payment.TypeDepositCapture, payment.MethodStripe, payment.StatusCompleted, amount, now)
	if err != nil {
		return nil, err
	}
	entry.Reason = reason
	entry.ProviderChargeID = &chargeRef
	return entry, nil
}

func (d *depositInteractor) findReservation(ctx context.Context, tx db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := d.resReads.FindByID(ctx, tx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return res, nil
}

func (d *depositInteractor) persistDepositChange(ctx context.Context, tx db.DBTX, res *reservation.Reservation, activity reservation.Activity) error {
	if err := d.resWrites.UpdateDeposit(ctx, tx, res); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := d.activities.Append(ctx, tx, activity); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (d *depositInteractor) resolveHold(ctx context.Context, tx db.DBTX, reservationID uuid.UUID, mutate func(*payment.Payment) error) error {
	hold, err := d.paymentReads.FindAuthorizedHold(ctx, tx, reservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return reservation.ErrNoActiveAuthorization
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := mutate(hold); err != nil {
		return err
	}
	if err := d.paymentWrites.ResolveHold(ctx, tx, hold); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

// recordFailure persists the failed deposit state after a provider error.
// Best effort: the caller already returns ErrProviderFailure either way.
func (d *depositInteractor) recordFailure(ctx context.Context, reservationID uuid.UUID, cause string, actorID *uuid.UUID) {
	now := d.clock.Now()
	_, _ = shared.RunInTx(ctx, d.pool, func(tx db.DBTX) (struct{}, error) {
		res, err := d.findReservation(ctx, tx, reservationID)
		if err != nil {
			return struct{}{}, err
		}
		activity, err := res.FailDeposit(cause, actorID, now)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, d.persistDepositChange(ctx, tx, res, activity)
	})
}
