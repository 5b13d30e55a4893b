package commands

import (
	"fmt"
	"sort"
	"time"

	"rentflow/internal/domain/reservation"
	"rentflow/internal/pkg/geo"
	"rentflow/internal/pkg/money"
	"rentflow/internal/usecase/shared"
)

// validateRentalWindow checks the overall window against the store's
// booking rules. All violations are collected so the caller can report
// them together.
func validateRentalWindow(store *shared.StoreSnapshot, period reservation.Period, now time.Time) []error {
	var violations []error

	if store.AdvanceNoticeMin > 0 {
		earliest := now.Add(time.Duration(store.AdvanceNoticeMin) * time.Minute)
		if period.Start().Before(earliest) {
			violations = append(violations, ErrAdvanceNoticeViolation)
		}
	}

	durationMin := int(period.Duration().Minutes())
	if store.MinRentalMin > 0 && durationMin < store.MinRentalMin {
		violations = append(violations, ErrMinRentalDuration)
	}
	if store.MaxRentalMin > 0 && durationMin > store.MaxRentalMin {
		violations = append(violations, ErrMaxRentalDuration)
	}

	if len(businessHourViolations(store.BusinessHours, period)) > 0 {
		violations = append(violations, ErrBusinessHoursViolation)
	}

	return violations
}

// businessHourViolations reports which endpoint of the window falls
// outside opening hours. At creation time these are fatal; at
// confirmation time they are recorded as warnings on the activity row.
func businessHourViolations(hours []shared.DayHours, period reservation.Period) []string {
	if len(hours) != 7 {
		return nil // store has not configured hours
	}

	var findings []string
	for _, endpoint := range []struct {
		label string
		t     time.Time
	}{
		{"start", period.Start()},
		{"end", period.End()},
	} {
		day := hours[int(endpoint.t.Weekday())]
		if day.Closed {
			findings = append(findings, fmt.Sprintf("%s falls on a closed day (%s)", endpoint.label, endpoint.t.Weekday()))
			continue
		}
		minutes := endpoint.t.Hour()*60 + endpoint.t.Minute()
		open, okOpen := parseClock(day.Open)
		closeAt, okClose := parseClock(day.Close)
		if !okOpen || !okClose {
			continue
		}
		if minutes < open || minutes > closeAt {
			findings = append(findings, fmt.Sprintf("%s %02d:%02d is outside opening hours %s-%s",
				endpoint.label, endpoint.t.Hour(), endpoint.t.Minute(), day.Open, day.Close))
		}
	}
	return findings
}

func parseClock(value string) (minutes int, ok bool) {
	var h, m int
	if _, err := fmt.Sscanf(value, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// computeDeliveryFee recomputes distance and fee server-side; the
// client-submitted fee is never consulted.
func computeDeliveryFee(store *shared.StoreSnapshot, destination geo.Point) (distanceKm, fee float64, err error) {
	if store.Location == nil {
		return 0, 0, ErrDeliveryAddressInvalid
	}

	distanceKm = geo.DistanceKm(*store.Location, destination)
	if store.Delivery.MaxKm > 0 && distanceKm > store.Delivery.MaxKm {
		return distanceKm, 0, ErrDeliveryTooFar
	}

	tiers := make([]shared.DeliveryFeeTier, len(store.Delivery.FeeTiers))
	copy(tiers, store.Delivery.FeeTiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MaxKm < tiers[j].MaxKm })

	for _, tier := range tiers {
		if distanceKm <= tier.MaxKm {
			return distanceKm, money.Round2(tier.Fee), nil
		}
	}
	if len(tiers) > 0 {
		// Within range but past the last tier boundary: charge the top tier.
		return distanceKm, money.Round2(tiers[len(tiers)-1].Fee), nil
	}
	return distanceKm, 0, nil
}
