package tax

// Settings is the store-level tax configuration. A product may carry a
// rate override which wins over the store default.
type Settings struct {
	Enabled          bool
	DefaultRate      float64
	PricesIncludeTax bool
}

// Breakdown is the tax decomposition of a single amount.
type Breakdown struct {
	Rate      float64
	Exclusive float64
	Tax       float64
}

// ExtractExclusive splits a tax-inclusive amount into its exclusive part
// and the tax it contains. Rounding is left to the caller.
func ExtractExclusive(inclusive, rate float64) (exclusive, taxAmount float64) {
	if rate <= 0 {
		return inclusive, 0
	}
	exclusive = inclusive / (1 + rate)
	return exclusive, inclusive - exclusive
}

// FromExclusive returns the tax owed on a tax-exclusive amount.
func FromExclusive(exclusive, rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return exclusive * rate
}

// EffectiveRate resolves the rate that applies to a product. The product
// override wins when present and store tax is enabled; otherwise the store
// default applies. nil means untaxed.
func EffectiveRate(store Settings, productOverride *float64) *float64 {
	if !store.Enabled {
		return nil
	}
	rate := store.DefaultRate
	if productOverride != nil {
		rate = *productOverride
	}
	if rate <= 0 {
		return nil
	}
	return &rate
}

// BreakdownInclusive decomposes a tax-inclusive amount.
func BreakdownInclusive(amount, rate float64) Breakdown {
	exclusive, taxAmount := ExtractExclusive(amount, rate)
	return Breakdown{Rate: rate, Exclusive: exclusive, Tax: taxAmount}
}

// BreakdownExclusive decomposes a tax-exclusive amount.
func BreakdownExclusive(amount, rate float64) Breakdown {
	return Breakdown{Rate: rate, Exclusive: amount, Tax: FromExclusive(amount, rate)}
}
