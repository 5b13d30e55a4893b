package pricing

import (
	"errors"
	"math"
	"sort"
	"time"
)

var (
	ErrInvalidWindow      = errors.New("rental window must have positive duration")
	ErrConflictingPricing = errors.New("tiers and rates are mutually exclusive")
	ErrInvalidMode        = errors.New("invalid pricing mode")
)

// Spec is the authoritative pricing definition of a product, resolved from
// storage at booking time. Tiers XOR Rates; never both.
type Spec struct {
	BasePrice         float64
	Mode              Mode
	BasePeriodMinutes int
	Tiers             []Tier
	Rates             []Rate
}

// Quote is the server-computed price for one reservation item.
type Quote struct {
	UnitPrice        float64
	Duration         int
	Subtotal         float64
	OriginalSubtotal float64
	Savings          float64
	Breakdown        Breakdown
}

func (s Spec) periodUnit() time.Duration {
	switch s.Mode {
	case ModeHour:
		return time.Hour
	case ModeDay:
		return 24 * time.Hour
	case ModeWeek:
		return 7 * 24 * time.Hour
	case ModeRate:
		minutes := s.BasePeriodMinutes
		if minutes <= 0 {
			minutes = 60
		}
		return time.Duration(minutes) * time.Minute
	default:
		return 24 * time.Hour
	}
}

// PeriodCount returns the billable duration in whole periods. Any partial
// period is billed as a full one; the minimum is 1.
func (s Spec) PeriodCount(start, end time.Time) int {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 1
	}
	periods := int(math.Ceil(float64(elapsed) / float64(s.periodUnit())))
	if periods < 1 {
		return 1
	}
	return periods
}

// EffectiveTier picks the tier with the greatest MinDuration that still
// qualifies for the requested duration, not the first match.
func EffectiveTier(tiers []Tier, duration int) *Tier {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinDuration < sorted[j].MinDuration })

	var effective *Tier
	for i := range sorted {
		if sorted[i].MinDuration <= duration {
			effective = &sorted[i]
		}
	}
	return effective
}

// QuoteItem computes the authoritative price for a catalog item over
// [start,end). manualUnitPrice bypasses both strategies; a subsequent
// reprice must skip items whose breakdown carries IsManualOverride.
func QuoteItem(spec Spec, start, end time.Time, quantity int, manualUnitPrice *float64) (Quote, error) {
	if !end.After(start) {
		return Quote{}, ErrInvalidWindow
	}
	if len(spec.Tiers) > 0 && len(spec.Rates) > 0 {
		return Quote{}, ErrConflictingPricing
	}
	if quantity < 1 {
		quantity = 1
	}

	duration := spec.PeriodCount(start, end)

	if manualUnitPrice != nil {
		unit := *manualUnitPrice
		return Quote{
			UnitPrice:        unit,
			Duration:         duration,
			Subtotal:         unit * float64(duration) * float64(quantity),
			OriginalSubtotal: unit * float64(duration) * float64(quantity),
			Breakdown: Breakdown{
				Strategy:         StrategyManual,
				Duration:         duration,
				BasePrice:        spec.BasePrice,
				IsManualOverride: true,
			},
		}, nil
	}

	if spec.Mode == ModeRate || len(spec.Rates) > 0 {
		return quoteFromRates(spec, start, end, quantity)
	}
	return quoteFromTiers(spec, duration, quantity), nil
}

func quoteFromTiers(spec Spec, duration, quantity int) Quote {
	effectivePrice := spec.BasePrice
	breakdown := Breakdown{
		Strategy:  StrategyFlat,
		Duration:  duration,
		BasePrice: spec.BasePrice,
	}

	if tier := EffectiveTier(spec.Tiers, duration); tier != nil {
		effectivePrice = spec.BasePrice * (1 - tier.DiscountPercent/100)
		minDuration := tier.MinDuration
		discount := tier.DiscountPercent
		breakdown.Strategy = StrategyTier
		breakdown.TierMinDuration = &minDuration
		breakdown.DiscountPercent = &discount
	}

	subtotal := effectivePrice * float64(duration) * float64(quantity)
	original := spec.BasePrice * float64(duration) * float64(quantity)
	breakdown.Savings = original - subtotal

	return Quote{
		UnitPrice:        effectivePrice,
		Duration:         duration,
		Subtotal:         subtotal,
		OriginalSubtotal: original,
		Savings:          original - subtotal,
		Breakdown:        breakdown,
	}
}

// quoteFromRates charges by minute blocks: an exact period match wins,
// then the largest rate period dividing the duration scaled up, then
// linear proration from the base period price. The charge never drops
// below the smallest defined rate for a non-zero duration.
func quoteFromRates(spec Spec, start, end time.Time, quantity int) (Quote, error) {
	minutes := int(math.Ceil(end.Sub(start).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	basePeriod := spec.BasePeriodMinutes
	if basePeriod <= 0 {
		basePeriod = 60
	}

	var charge float64
	var matchedPeriod *int

	if rate := exactRate(spec.Rates, minutes); rate != nil {
		charge = rate.Price
		matchedPeriod = &rate.PeriodMinutes
	} else if rate := largestDividingRate(spec.Rates, minutes); rate != nil {
		charge = rate.Price * float64(minutes/rate.PeriodMinutes)
		matchedPeriod = &rate.PeriodMinutes
	} else {
		charge = spec.BasePrice * float64(minutes) / float64(basePeriod)
	}

	if floor := smallestRatePrice(spec.Rates); floor != nil && charge < *floor {
		charge = *floor
	}

	duration := int(math.Ceil(float64(minutes) / float64(basePeriod)))
	if duration < 1 {
		duration = 1
	}

	subtotal := charge * float64(quantity)
	return Quote{
		UnitPrice:        charge,
		Duration:         duration,
		Subtotal:         subtotal,
		OriginalSubtotal: subtotal,
		Breakdown: Breakdown{
			Strategy:      StrategyRate,
			Duration:      duration,
			BasePrice:     spec.BasePrice,
			RatePeriodMin: matchedPeriod,
		},
	}, nil
}

func exactRate(rates []Rate, minutes int) *Rate {
	for i := range rates {
		if rates[i].PeriodMinutes == minutes {
			return &rates[i]
		}
	}
	return nil
}

func largestDividingRate(rates []Rate, minutes int) *Rate {
	var best *Rate
	for i := range rates {
		p := rates[i].PeriodMinutes
		if p > 0 && minutes%p == 0 {
			if best == nil || p > best.PeriodMinutes {
				best = &rates[i]
			}
		}
	}
	return best
}

func smallestRatePrice(rates []Rate) *float64 {
	var min *float64
	for i := range rates {
		if min == nil || rates[i].Price < *min {
			min = &rates[i].Price
		}
	}
	return min
}

// QuoteCustomItem prices an accessory or custom line: no tiers, no rates,
// the submitted unit price times duration times quantity.
func QuoteCustomItem(unitPrice float64, duration, quantity int) Quote {
	if duration < 1 {
		duration = 1
	}
	if quantity < 1 {
		quantity = 1
	}
	total := unitPrice * float64(duration) * float64(quantity)
	return Quote{
		UnitPrice:        unitPrice,
		Duration:         duration,
		Subtotal:         total,
		OriginalSubtotal: total,
		Breakdown: Breakdown{
			Strategy:  StrategyCustom,
			Duration:  duration,
			BasePrice: unitPrice,
		},
	}
}
