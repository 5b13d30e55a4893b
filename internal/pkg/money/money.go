package money

import "math"

// Round2 rounds a major-unit amount to 2 decimal places, half away from
// zero. All persisted amounts go through this before storage or comparison.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ToMinorUnits converts a major-unit amount to integer minor units
// (e.g. dollars to cents) after Round2. Payment providers take minor units.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(Round2(amount) * 100))
}

// FromMinorUnits converts provider minor units back to a major-unit amount.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}

// Equal reports whether two amounts match within rounding tolerance
// (half a cent). Used when comparing recomputed totals to stored ones.
func Equal(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}
