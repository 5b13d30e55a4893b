package queries

import (
	"context"

	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrReservationNotFound = errs.New("reservation not found")

type ReservationReads interface {
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ReservationListItem, error)
}

type ActivityReads interface {
	ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]reservation.Activity, error)
}

type PaymentReads interface {
	ListByReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) ([]payment.Payment, error)
}

// ReservationDetail is the full read model for one reservation: the
// aggregate, its audit trail, the ledger rows and the derived totals.
type ReservationDetail struct {
	Reservation   *reservation.Reservation
	Activities    []reservation.Activity
	Payments      []payment.Payment
	Ledger        payment.Summary
	MaxReturnable float64
}

type ReservationQueries interface {
	Get(ctx context.Context, id uuid.UUID) (*ReservationDetail, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ReservationListItem, error)
}

type reservationQueryService struct {
	reservations ReservationReads
	activities   ActivityReads
	payments     PaymentReads
}

func NewReservationQueryService(reservations ReservationReads, activities ActivityReads, payments PaymentReads) ReservationQueries {
	return &reservationQueryService{
		reservations: reservations,
		activities:   activities,
		payments:     payments,
	}
}

func (s *reservationQueryService) Get(ctx context.Context, id uuid.UUID) (*ReservationDetail, error) {
	res, err := s.reservations.FindByID(ctx, nil, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	activities, err := s.activities.ListByReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByReservation(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	ledger := payment.Summarize(payments)
	return &ReservationDetail{
		Reservation:   res,
		Activities:    activities,
		Payments:      payments,
		Ledger:        ledger,
		MaxReturnable: ledger.MaxReturnable(),
	}, nil
}

func (s *reservationQueryService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ReservationListItem, error) {
	return s.reservations.ListByCustomer(ctx, customerID)
}
