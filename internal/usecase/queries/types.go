package queries

import (
	"time"

	"github.com/google/uuid"
)

// ReservationListItem is the slim row for customer/store listings.
type ReservationListItem struct {
	ID             uuid.UUID
	Number         string
	Status         string
	StartDate      time.Time
	EndDate        time.Time
	SubtotalAmount float64
	DepositAmount  float64
	TotalAmount    float64
	DepositStatus  string
	CreatedAt      time.Time
}

// AvailabilityResult answers "how many are free" for one product over a
// window, optionally broken down by attribute combination.
type AvailabilityResult struct {
	ProductID   uuid.UUID
	Requested   int
	Available   int
	BySignature map[string]int
	Satisfiable bool
}
