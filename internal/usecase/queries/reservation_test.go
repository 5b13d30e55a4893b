//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra/db"
	"rentflow/internal/usecase/queries"
	"rentflow/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReservationReads struct {
	res   *reservation.Reservation
	list  []*queries.ReservationListItem
	err   error
	gotID uuid.UUID
}

func (s *stubReservationReads) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	s.gotID = id
	return s.res, s.err
}

func (s *stubReservationReads) ListByCustomer(_ context.Context, _ uuid.UUID) ([]*queries.ReservationListItem, error) {
	return s.list, s.err
}

type stubActivityReads struct {
	activities []reservation.Activity
}

func (s *stubActivityReads) ListByReservation(_ context.Context, _ uuid.UUID) ([]reservation.Activity, error) {
	return s.activities, nil
}

type stubPaymentReads struct {
	payments []payment.Payment
}

func (s *stubPaymentReads) ListByReservation(_ context.Context, _ db.DBTX, _ uuid.UUID) ([]payment.Payment, error) {
	return s.payments, nil
}

func TestReservationGet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)

	t.Run("composes the full detail", func(t *testing.T) {
		res, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)

		capturedHold, err := payment.New(res.ID(), payment.TypeDepositHold, payment.MethodStripe, payment.StatusAuthorized, 50, now)
		require.NoError(t, err)
		require.NoError(t, capturedHold.ResolveCaptured(20, "damage", now))
		rental, err := payment.New(res.ID(), payment.TypeRental, payment.MethodCash, payment.StatusCompleted, 300, now)
		require.NoError(t, err)

		reads := &stubReservationReads{res: res}
		svc := queries.NewReservationQueryService(
			reads,
			&stubActivityReads{activities: []reservation.Activity{res.CreatedActivity(nil, now)}},
			&stubPaymentReads{payments: []payment.Payment{*capturedHold, *rental}},
		)

		detail, err := svc.Get(ctx, res.ID())
		require.NoError(t, err)

		assert.Equal(t, res.ID(), reads.gotID)
		assert.Equal(t, res, detail.Reservation)
		assert.Len(t, detail.Activities, 1)
		assert.Len(t, detail.Payments, 2)
		assert.InDelta(t, 300.0, detail.Ledger.RentalPaid, 0.001)
		assert.InDelta(t, 20.0, detail.Ledger.DepositCollected, 0.001)
		assert.InDelta(t, 20.0, detail.MaxReturnable, 0.001)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		svc := queries.NewReservationQueryService(
			&stubReservationReads{err: notFoundErr("reservation not found")},
			&stubActivityReads{},
			&stubPaymentReads{},
		)

		_, err := svc.Get(ctx, uuid.New())
		require.ErrorIs(t, err, queries.ErrReservationNotFound)
	})
}

func TestReservationListByCustomer(t *testing.T) {
	list := []*queries.ReservationListItem{{}, {}}
	svc := queries.NewReservationQueryService(
		&stubReservationReads{list: list},
		&stubActivityReads{},
		&stubPaymentReads{},
	)

	got, err := svc.ListByCustomer(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
