package commands

import (
	"context"

	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/clock"
	"rentflow/internal/pkg/errs"
	"rentflow/internal/pkg/money"
	"rentflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecordPaymentInput struct {
	ReservationID uuid.UUID
	Type          payment.Type
	Method        payment.Method
	Amount        float64
	Reason        string
	ActorID       *uuid.UUID
}

type RefundPaymentInput struct {
	ReservationID uuid.UUID
	PaymentID     uuid.UUID
	Amount        float64
	Reason        string
	ActorID       *uuid.UUID
}

type PaymentCommands interface {
	Record(ctx context.Context, input RecordPaymentInput) (*payment.Payment, error)
	Delete(ctx context.Context, reservationID, paymentID uuid.UUID, actorID *uuid.UUID) error
	Refund(ctx context.Context, input RefundPaymentInput) (*payment.Payment, error)
}

type paymentInteractor struct {
	resReads      ReservationReads
	paymentReads  PaymentReads
	paymentWrites PaymentWrites
	activities    ActivityWrites
	provider      PaymentProvider
	pool          *pgxpool.Pool
	clock         clock.Clock
}

func NewPaymentInteractor(
	resReads ReservationReads,
	paymentReads PaymentReads,
	paymentWrites PaymentWrites,
	activities ActivityWrites,
	provider PaymentProvider,
	pool *pgxpool.Pool,
	clk clock.Clock,
) PaymentCommands {
	return &paymentInteractor{
		resReads:      resReads,
		paymentReads:  paymentReads,
		paymentWrites: paymentWrites,
		activities:    activities,
		provider:      provider,
		pool:          pool,
		clock:         clk,
	}
}

// Record appends a manually entered ledger row (cash at the counter, a
// bank transfer the store reconciled by hand). Provider-managed rows are
// written by the deposit and checkout flows, never through here.
func (p *paymentInteractor) Record(ctx context.Context, input RecordPaymentInput) (*payment.Payment, error) {
	if input.Method.IsProviderManaged() {
		return nil, payment.ErrInvalidMethod
	}
	now := p.clock.Now()

	return shared.RunInTx(ctx, p.pool, func(tx db.DBTX) (*payment.Payment, error) {
		if _, err := p.findReservation(ctx, tx, input.ReservationID); err != nil {
			return nil, err
		}

		entry, err := payment.New(input.ReservationID, input.Type, input.Method, payment.StatusCompleted, money.Round2(input.Amount), now)
		if err != nil {
			return nil, err
		}
		entry.Reason = input.Reason

		if err := p.paymentWrites.Insert(ctx, tx, entry); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		activity := reservation.NewActivity(input.ReservationID, reservation.ActivityPaymentRecorded, input.ActorID,
			"payment recorded", map[string]any{
				"paymentId": entry.ID.String(),
				"type":      string(entry.Type),
				"method":    string(entry.Method),
				"amount":    entry.Amount,
			}, now)
		if err := p.activities.Append(ctx, tx, activity); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return entry, nil
	})
}

// Delete removes a manually entered row. Provider-managed rows refuse:
// the ledger must keep mirroring what the processor holds.
func (p *paymentInteractor) Delete(ctx context.Context, reservationID, paymentID uuid.UUID, actorID *uuid.UUID) error {
	now := p.clock.Now()

	_, err := shared.RunInTx(ctx, p.pool, func(tx db.DBTX) (struct{}, error) {
		entry, err := p.findPayment(ctx, tx, reservationID, paymentID)
		if err != nil {
			return struct{}{}, err
		}
		if err := entry.CanDelete(); err != nil {
			return struct{}{}, err
		}

		if err := p.paymentWrites.Delete(ctx, tx, paymentID); err != nil {
			return struct{}{}, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		activity := reservation.NewActivity(reservationID, reservation.ActivityPaymentDeleted, actorID,
			"payment deleted", map[string]any{
				"paymentId": paymentID.String(),
				"type":      string(entry.Type),
				"amount":    entry.Amount,
			}, now)
		if err := p.activities.Append(ctx, tx, activity); err != nil {
			return struct{}{}, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return struct{}{}, nil
	})
	return err
}

// Refund sends money back through the provider and appends a negative
// counterpart row referencing the original charge. The provider is the
// authority on how much is still refundable.
func (p *paymentInteractor) Refund(ctx context.Context, input RefundPaymentInput) (*payment.Payment, error) {
	now := p.clock.Now()

	original, err := p.findPayment(ctx, nil, input.ReservationID, input.PaymentID)
	if err != nil {
		return nil, err
	}
	if !original.Method.IsProviderManaged() || original.ProviderChargeID == nil {
		return nil, payment.ErrInvalidMethod
	}
	if input.Amount <= 0 {
		return nil, reservation.ErrNegativeAmount
	}

	refundable, err := p.provider.GetChargeRefundableAmount(ctx, *original.ProviderChargeID)
	if err != nil {
		return nil, errs.Mark(err, ErrProviderFailure)
	}
	amountMinor := money.ToMinorUnits(input.Amount)
	if amountMinor > refundable {
		return nil, ErrRefundExceedsRefundable
	}

	refundRef, err := p.provider.CreateRefund(ctx, *original.ProviderChargeID, amountMinor)
	if err != nil {
		return nil, errs.Mark(err, ErrProviderFailure)
	}

	return shared.RunInTx(ctx, p.pool, func(tx db.DBTX) (*payment.Payment, error) {
		entry, err := payment.New(input.ReservationID, payment.TypeDepositReturn, payment.MethodStripe, payment.StatusCompleted, money.Round2(input.Amount), now)
		if err != nil {
			return nil, err
		}
		entry.Reason = input.Reason
		entry.ProviderChargeID = &refundRef
		entry.RefundOfPaymentID = &original.ID

		if err := p.paymentWrites.Insert(ctx, tx, entry); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		activity := reservation.NewActivity(input.ReservationID, reservation.ActivityPaymentRecorded, input.ActorID,
			"refund issued", map[string]any{
				"paymentId":         entry.ID.String(),
				"refundOfPaymentId": original.ID.String(),
				"amount":            entry.Amount,
			}, now)
		if err := p.activities.Append(ctx, tx, activity); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return entry, nil
	})
}

func (p *paymentInteractor) findReservation(ctx context.Context, tx db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := p.resReads.FindByID(ctx, tx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return res, nil
}

func (p *paymentInteractor) findPayment(ctx context.Context, tx db.DBTX, reservationID, paymentID uuid.UUID) (*payment.Payment, error) {
	entry, err := p.paymentReads.FindByID(ctx, tx, paymentID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if entry.ReservationID != reservationID {
		return nil, ErrPaymentNotFound
	}
	return entry, nil
}
