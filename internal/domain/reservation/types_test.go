//go:build unit

package reservation_test

import (
	"testing"

	"rentflow/internal/domain/reservation"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []reservation.Status{
	reservation.StatusPending,
	reservation.StatusConfirmed,
	reservation.StatusOngoing,
	reservation.StatusCompleted,
	reservation.StatusCancelled,
	reservation.StatusRejected,
}

func TestStatusTransitions(t *testing.T) {
	allowed := map[reservation.Status][]reservation.Status{
		reservation.StatusPending: {
			reservation.StatusConfirmed,
			reservation.StatusRejected,
			reservation.StatusCancelled,
		},
		reservation.StatusConfirmed: {
			reservation.StatusOngoing,
			reservation.StatusCancelled,
		},
		reservation.StatusOngoing: {
			reservation.StatusCompleted,
			reservation.StatusCancelled,
		},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	terminal := map[reservation.Status]bool{
		reservation.StatusCompleted: true,
		reservation.StatusCancelled: true,
		reservation.StatusRejected:  true,
	}
	for _, s := range allStatuses {
		assert.Equal(t, terminal[s], s.IsTerminal(), "%s", s)
		assert.Equal(t, !terminal[s], s.AllowsEdits(), "%s", s)
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, s.IsValid(), "%s", s)
	}
	assert.False(t, reservation.Status("archived").IsValid())
	assert.False(t, reservation.Status("").IsValid())
}

func TestBlockingStatuses(t *testing.T) {
	assert.Equal(t, []reservation.Status{
		reservation.StatusPending,
		reservation.StatusConfirmed,
		reservation.StatusOngoing,
	}, reservation.BlockingStatuses(true))

	assert.Equal(t, []reservation.Status{
		reservation.StatusConfirmed,
		reservation.StatusOngoing,
	}, reservation.BlockingStatuses(false))
}

func TestDepositStatusTransitions(t *testing.T) {
	all := []reservation.DepositStatus{
		reservation.DepositNone,
		reservation.DepositCardSaved,
		reservation.DepositAuthorized,
		reservation.DepositCaptured,
		reservation.DepositReleased,
		reservation.DepositFailed,
	}
	allowed := map[reservation.DepositStatus][]reservation.DepositStatus{
		reservation.DepositNone: {
			reservation.DepositCardSaved,
			reservation.DepositFailed,
		},
		reservation.DepositCardSaved: {
			reservation.DepositAuthorized,
			reservation.DepositFailed,
		},
		reservation.DepositAuthorized: {
			reservation.DepositCaptured,
			reservation.DepositReleased,
			reservation.DepositFailed,
		},
		reservation.DepositFailed: {
			reservation.DepositCardSaved,
		},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}
