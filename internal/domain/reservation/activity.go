package reservation

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType identifies one kind of lifecycle event. Activity rows are
// append-only; they are the sole audit trail for status, deposit and
// payment events.
type ActivityType string

const (
	ActivityCreated           ActivityType = "created"
	ActivityStatusChanged     ActivityType = "status_changed"
	ActivityDepositCardSaved  ActivityType = "deposit_card_saved"
	ActivityDepositAuthorized ActivityType = "deposit_authorized"
	ActivityDepositCaptured   ActivityType = "deposit_captured"
	ActivityDepositReleased   ActivityType = "deposit_released"
	ActivityDepositFailed     ActivityType = "deposit_failed"
	ActivityPaymentRecorded   ActivityType = "payment_recorded"
	ActivityPaymentDeleted    ActivityType = "payment_deleted"
	ActivityUnitsAssigned     ActivityType = "units_assigned"
)

type Activity struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	Type          ActivityType
	ActorID       *uuid.UUID
	Description   string
	Metadata      map[string]any
	CreatedAt     time.Time
}

func NewActivity(reservationID uuid.UUID, activityType ActivityType, actorID *uuid.UUID, description string, metadata map[string]any, now time.Time) Activity {
	return Activity{
		ID:            uuid.New(),
		ReservationID: reservationID,
		Type:          activityType,
		ActorID:       actorID,
		Description:   description,
		Metadata:      metadata,
		CreatedAt:     now,
	}
}
