package shared

import (
	"time"

	"rentflow/internal/domain/pricing"
	"rentflow/internal/domain/product"
	"rentflow/internal/domain/tax"
	"rentflow/internal/pkg/geo"

	"github.com/google/uuid"
)

// Minimal snapshots for command read operations.

type StoreSnapshot struct {
	ID                        uuid.UUID
	Name                      string
	Tax                       tax.Settings
	PendingBlocksAvailability bool
	BusinessHours             []DayHours
	AdvanceNoticeMin          int
	MinRentalMin              int
	MaxRentalMin              int
	Location                  *geo.Point
	Delivery                  DeliverySettings
}

// DayHours describes opening hours for one weekday; index 0 is Sunday,
// matching time.Weekday.
type DayHours struct {
	Closed bool   `json:"closed"`
	Open   string `json:"open"`
	Close  string `json:"close"`
}

type DeliverySettings struct {
	Enabled  bool
	MaxKm    float64
	FeeTiers []DeliveryFeeTier
}

// DeliveryFeeTier charges Fee for distances up to MaxKm. Tiers are
// evaluated in ascending MaxKm order; the first tier covering the distance
// wins.
type DeliveryFeeTier struct {
	MaxKm float64 `json:"maxKm"`
	Fee   float64 `json:"fee"`
}

type ProductSnapshot struct {
	ID              uuid.UUID
	StoreID         uuid.UUID
	Name            string
	Description     string
	Images          []string
	DepositPerUnit  float64
	Pricing         pricing.Spec
	Quantity        int
	TrackUnits      bool
	IsActive        bool
	AttributeAxes   []product.Axis
	TaxRateOverride *float64
}

type IdempotencyRecord struct {
	Key                 uuid.UUID
	CustomerID          uuid.UUID
	Endpoint            string
	RequestHash         string
	Status              string
	ResponseHash        *string
	ResultReservationID *uuid.UUID
	ExpiresAt           time.Time
}
