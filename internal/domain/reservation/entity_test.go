//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"rentflow/internal/domain/reservation"
	"rentflow/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.ReservationBuilder)
	errIs  error
}

func TestReservation(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, reservation.StatusPending, actual.Status())
		assert.Equal(t, reservation.DepositNone, actual.DepositStatus())
		assert.InDelta(t, 300.0, actual.SubtotalAmount(), 0.001)
		assert.InDelta(t, 50.0, actual.DepositAmount(), 0.001)
		assert.InDelta(t, 350.0, actual.TotalAmount(), 0.001)
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
		assert.Nil(t, actual.PickedUpAt())
		assert.Nil(t, actual.ReturnedAt())
	})

	t.Run("construction validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "no items",
				mutate: func(b *builder.ReservationBuilder) { b.WithItems() },
				errIs:  reservation.ErrNoItems,
			},
			{
				name:   "negative deposit",
				mutate: func(b *builder.ReservationBuilder) { b.WithDepositAmount(-1) },
				errIs:  reservation.ErrNegativeAmount,
			},
			{
				name:   "zero deposit",
				mutate: func(b *builder.ReservationBuilder) { b.WithDepositAmount(0) },
			},
			{
				name: "reversed period",
				mutate: func(b *builder.ReservationBuilder) {
					b.WithPeriod(b.End, b.Start)
				},
				errIs: reservation.ErrInvalidPeriod,
			},
			{
				name: "zero-length period",
				mutate: func(b *builder.ReservationBuilder) {
					b.WithPeriod(b.Start, b.Start)
				},
				errIs: reservation.ErrInvalidPeriod,
			},
		})
	})

	t.Run("subtotal is the sum of item totals", func(t *testing.T) {
		b := builder.NewReservationBuilder()
		items := b.Items
		extra := items[0]
		extra.ID = uuid.New()
		extra.TotalPrice = 49.99
		b.WithItems(items[0], extra)

		actual, err := b.BuildDomain()
		require.NoError(t, err)

		assert.InDelta(t, 349.99, actual.SubtotalAmount(), 0.001)
		assert.InDelta(t, 399.99, actual.TotalAmount(), 0.001)
	})
}

func TestReservationChangeStatus(t *testing.T) {
	now := time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)

	t.Run("legal transition records an activity", func(t *testing.T) {
		res := buildWithStatus(t, reservation.StatusPending)
		actorID := uuid.New()

		activity, err := res.ChangeStatus(reservation.StatusConfirmed, &actorID, "", nil, now)
		require.NoError(t, err)

		assert.Equal(t, reservation.StatusConfirmed, res.Status())
		assert.Equal(t, now, res.UpdatedAt())
		assert.Equal(t, reservation.ActivityStatusChanged, activity.Type)
		assert.Equal(t, "pending", activity.Metadata["from"])
		assert.Equal(t, "confirmed", activity.Metadata["to"])
	})

	t.Run("illegal transition mutates nothing", func(t *testing.T) {
		res := buildWithStatus(t, reservation.StatusPending)
		before := res.UpdatedAt()

		_, err := res.ChangeStatus(reservation.StatusCompleted, nil, "", nil, now)
		require.ErrorIs(t, err, reservation.ErrInvalidStatusTransition)

		assert.Equal(t, reservation.StatusPending, res.Status())
		assert.Equal(t, before, res.UpdatedAt())
	})

	t.Run("unknown target status is rejected", func(t *testing.T) {
		res := buildWithStatus(t, reservation.StatusPending)

		_, err := res.ChangeStatus(reservation.Status("archived"), nil, "", nil, now)
		require.ErrorIs(t, err, reservation.ErrInvalidStatusTransition)
	})

	t.Run("pickup and return are stamped", func(t *testing.T) {
		res := buildWithStatus(t, reservation.StatusConfirmed)

		_, err := res.ChangeStatus(reservation.StatusOngoing, nil, "", nil, now)
		require.NoError(t, err)
		require.NotNil(t, res.PickedUpAt())
		assert.Equal(t, now, *res.PickedUpAt())

		returned := now.Add(72 * time.Hour)
		_, err = res.ChangeStatus(reservation.StatusCompleted, nil, "", nil, returned)
		require.NoError(t, err)
		require.NotNil(t, res.ReturnedAt())
		assert.Equal(t, returned, *res.ReturnedAt())
	})

	t.Run("reason and warnings end up in metadata", func(t *testing.T) {
		res := buildWithStatus(t, reservation.StatusPending)
		warnings := []string{"start falls on a closed day (Sunday)"}

		activity, err := res.ChangeStatus(reservation.StatusConfirmed, nil, "customer called", warnings, now)
		require.NoError(t, err)

		assert.Equal(t, "customer called", activity.Metadata["reason"])
		assert.Equal(t, warnings, activity.Metadata["warnings"])
	})

	t.Run("terminal statuses accept nothing", func(t *testing.T) {
		for _, from := range []reservation.Status{
			reservation.StatusCompleted,
			reservation.StatusCancelled,
			reservation.StatusRejected,
		} {
			res := buildWithStatus(t, from)
			for _, to := range []reservation.Status{
				reservation.StatusPending,
				reservation.StatusConfirmed,
				reservation.StatusOngoing,
				reservation.StatusCompleted,
				reservation.StatusCancelled,
				reservation.StatusRejected,
			} {
				_, err := res.ChangeStatus(to, nil, "", nil, now)
				assert.ErrorIs(t, err, reservation.ErrInvalidStatusTransition, "%s -> %s", from, to)
			}
		}
	})
}

func TestReservationDeposit(t *testing.T) {
	now := time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)

	t.Run("full capture walk", func(t *testing.T) {
		res, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)

		_, err = res.MarkCardSaved("cus_123", "pm_123", nil, now)
		require.NoError(t, err)
		assert.Equal(t, reservation.DepositCardSaved, res.DepositStatus())
		require.NotNil(t, res.ProviderCustomerID())
		assert.Equal(t, "cus_123", *res.ProviderCustomerID())

		_, err = res.AuthorizeDeposit("pi_123", nil, now)
		require.NoError(t, err)
		assert.Equal(t, reservation.DepositAuthorized, res.DepositStatus())
		require.NotNil(t, res.ProviderPaymentIntentID())
		assert.Equal(t, "pi_123", *res.ProviderPaymentIntentID())

		activity, err := res.CaptureDeposit(30, "scratched lens", nil, now)
		require.NoError(t, err)
		assert.Equal(t, reservation.DepositCaptured, res.DepositStatus())
		assert.Equal(t, "scratched lens", activity.Metadata["reason"])
	})

	t.Run("release is not repeatable", func(t *testing.T) {
		res := buildWithDeposit(t, reservation.DepositAuthorized)

		_, err := res.ReleaseDeposit(nil, now)
		require.NoError(t, err)
		assert.Equal(t, reservation.DepositReleased, res.DepositStatus())

		_, err = res.ReleaseDeposit(nil, now)
		require.ErrorIs(t, err, reservation.ErrNoActiveAuthorization)
		assert.Equal(t, reservation.DepositReleased, res.DepositStatus())
	})

	t.Run("capture validation", func(t *testing.T) {
		cases := []struct {
			name   string
			amount float64
			reason string
			errIs  error
		}{
			{name: "reason required", amount: 30, reason: "", errIs: reservation.ErrReasonRequired},
			{name: "zero amount", amount: 0, reason: "damage", errIs: reservation.ErrNegativeAmount},
			{name: "negative amount", amount: -5, reason: "damage", errIs: reservation.ErrNegativeAmount},
			{name: "over the authorized hold", amount: 50.01, reason: "damage", errIs: reservation.ErrAmountExceedsDeposit},
			{name: "full hold", amount: 50, reason: "damage"},
			{name: "partial hold", amount: 12.5, reason: "damage"},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				res := buildWithDeposit(t, reservation.DepositAuthorized)

				_, err := res.CaptureDeposit(c.amount, c.reason, nil, now)
				if c.errIs == nil {
					require.NoError(t, err)
					assert.Equal(t, reservation.DepositCaptured, res.DepositStatus())
				} else {
					require.ErrorIs(t, err, c.errIs)
					assert.Equal(t, reservation.DepositAuthorized, res.DepositStatus())
				}
			})
		}
	})

	t.Run("capture without authorization", func(t *testing.T) {
		res := buildWithDeposit(t, reservation.DepositCardSaved)

		_, err := res.CaptureDeposit(30, "damage", nil, now)
		require.ErrorIs(t, err, reservation.ErrNoActiveAuthorization)
	})

	t.Run("authorize requires a saved card", func(t *testing.T) {
		res, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)

		_, err = res.AuthorizeDeposit("pi_123", nil, now)
		require.ErrorIs(t, err, reservation.ErrInvalidDepositStatus)
	})

	t.Run("authorize requires a deposit", func(t *testing.T) {
		res, err := builder.NewReservationBuilder().
			WithDepositAmount(0).
			WithDepositStatus(reservation.DepositCardSaved).
			BuildDomain()
		require.NoError(t, err)

		_, err = res.AuthorizeDeposit("pi_123", nil, now)
		require.ErrorIs(t, err, reservation.ErrDepositNotRequired)
	})

	t.Run("failed deposit recovers via a fresh card", func(t *testing.T) {
		res := buildWithDeposit(t, reservation.DepositAuthorized)

		_, err := res.FailDeposit("card_declined", nil, now)
		require.NoError(t, err)
		assert.Equal(t, reservation.DepositFailed, res.DepositStatus())

		_, err = res.MarkCardSaved("cus_456", "pm_456", nil, now)
		require.NoError(t, err)
		assert.Equal(t, reservation.DepositCardSaved, res.DepositStatus())
	})

	t.Run("captured is terminal for the deposit", func(t *testing.T) {
		res := buildWithDeposit(t, reservation.DepositCaptured)

		_, err := res.FailDeposit("late provider error", nil, now)
		require.ErrorIs(t, err, reservation.ErrInvalidDepositStatus)

		_, err = res.MarkCardSaved("cus_789", "pm_789", nil, now)
		require.ErrorIs(t, err, reservation.ErrInvalidDepositStatus)
	})
}

func TestReservationAssignUnits(t *testing.T) {
	now := time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)

	t.Run("assigns units and snapshots identifiers", func(t *testing.T) {
		res, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)
		itemID := res.Items()[0].ID

		units := []reservation.ItemUnit{
			{UnitID: uuid.New(), IdentifierSnapshot: "CAM-001"},
		}
		activity, err := res.AssignUnits(itemID, units, nil, now)
		require.NoError(t, err)

		assert.Equal(t, units, res.Items()[0].Units)
		assert.Equal(t, reservation.ActivityUnitsAssigned, activity.Type)
		assert.Equal(t, []string{"CAM-001"}, activity.Metadata["identifiers"])
	})

	t.Run("terminal reservations are immutable", func(t *testing.T) {
		res := buildWithStatus(t, reservation.StatusCancelled)
		itemID := res.Items()[0].ID

		_, err := res.AssignUnits(itemID, nil, nil, now)
		require.ErrorIs(t, err, reservation.ErrEditNotAllowed)
	})

	t.Run("unknown item", func(t *testing.T) {
		res, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)

		_, err = res.AssignUnits(uuid.New(), nil, nil, now)
		require.Error(t, err)
	})
}

func buildWithStatus(t *testing.T, status reservation.Status) *reservation.Reservation {
	t.Helper()
	res, err := builder.NewReservationBuilder().WithStatus(status).BuildDomain()
	require.NoError(t, err)
	return res
}

func buildWithDeposit(t *testing.T, status reservation.DepositStatus) *reservation.Reservation {
	t.Helper()
	res, err := builder.NewReservationBuilder().WithDepositStatus(status).BuildDomain()
	require.NoError(t, err)
	return res
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewReservationBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
