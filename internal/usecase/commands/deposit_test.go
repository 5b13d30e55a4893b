//go:build unit

package commands

import (
	"testing"
	"time"

	"rentflow/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureLedgerRow(t *testing.T) {
	reservationID := uuid.New()
	now := time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC)

	entry, err := captureLedgerRow(reservationID, 35.50, "cracked lens filter", "ch_123", now)

	require.NoError(t, err)
	assert.Equal(t, reservationID, entry.ReservationID)
	assert.Equal(t, payment.TypeDepositCapture, entry.Type)
	assert.Equal(t, payment.MethodStripe, entry.Method)
	assert.Equal(t, payment.StatusCompleted, entry.Status)
	assert.InDelta(t, 35.50, entry.Amount, 0.001)
	assert.Equal(t, "cracked lens filter", entry.Reason)
	require.NotNil(t, entry.ProviderChargeID)
	assert.Equal(t, "ch_123", *entry.ProviderChargeID)
}
