package reservation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidPeriod = errors.New("start must be before end")

// Period is the half-open rental interval [start, end) in UTC.
type Period struct {
	start time.Time
	end   time.Time
}

func NewPeriod(start, end time.Time) (Period, error) {
	if !start.Before(end) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{start: start.UTC(), end: end.UTC()}, nil
}

func (p Period) Start() time.Time {
	return p.start
}

func (p Period) End() time.Time {
	return p.end
}

func (p Period) Duration() time.Duration {
	return p.end.Sub(p.start)
}

func (p Period) Overlaps(other Period) bool {
	return p.start.Before(other.end) && p.end.After(other.start)
}

func (p Period) String() string {
	return fmt.Sprintf("[%s,%s)", p.start.Format(time.RFC3339), p.end.Format(time.RFC3339))
}

// ProductSnapshot is the denormalized product description captured at
// booking time. It is never re-joined to the live product afterwards, so
// line items survive product edits and deletion.
type ProductSnapshot struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// ItemUnit assigns a specific serialized unit to a line item. The
// identifier is snapshotted at assignment time and survives unit renames
// and deletion.
type ItemUnit struct {
	UnitID             uuid.UUID
	IdentifierSnapshot string
}

// TaxFields is the optional per-reservation (and per-item) tax breakdown.
type TaxFields struct {
	Rate            float64
	SubtotalExclTax float64
	TaxAmount       float64
}
