//go:build unit

package pricing_test

import (
	"testing"
	"time"

	"rentflow/internal/domain/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func TestPeriodCount(t *testing.T) {
	cases := []struct {
		name string
		spec pricing.Spec
		span time.Duration
		want int
	}{
		{name: "exact days", spec: pricing.Spec{Mode: pricing.ModeDay}, span: 72 * time.Hour, want: 3},
		{name: "partial day rounds up", spec: pricing.Spec{Mode: pricing.ModeDay}, span: 72*time.Hour + time.Minute, want: 4},
		{name: "sub-period minimum", spec: pricing.Spec{Mode: pricing.ModeDay}, span: time.Hour, want: 1},
		{name: "zero span", spec: pricing.Spec{Mode: pricing.ModeDay}, span: 0, want: 1},
		{name: "hours", spec: pricing.Spec{Mode: pricing.ModeHour}, span: 90 * time.Minute, want: 2},
		{name: "weeks", spec: pricing.Spec{Mode: pricing.ModeWeek}, span: 8 * 24 * time.Hour, want: 2},
		{name: "rate blocks", spec: pricing.Spec{Mode: pricing.ModeRate, BasePeriodMinutes: 30}, span: 45 * time.Minute, want: 2},
		{name: "rate default block", spec: pricing.Spec{Mode: pricing.ModeRate}, span: 90 * time.Minute, want: 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.spec.PeriodCount(baseTime, baseTime.Add(c.span)))
		})
	}
}

func TestEffectiveTier(t *testing.T) {
	// Deliberately unsorted.
	tiers := []pricing.Tier{
		{MinDuration: 7, DiscountPercent: 10},
		{MinDuration: 3, DiscountPercent: 5},
	}

	t.Run("largest qualifying tier wins", func(t *testing.T) {
		tier := pricing.EffectiveTier(tiers, 9)
		require.NotNil(t, tier)
		assert.Equal(t, 7, tier.MinDuration)
		assert.InDelta(t, 10.0, tier.DiscountPercent, 0.001)
	})

	t.Run("boundary duration qualifies", func(t *testing.T) {
		tier := pricing.EffectiveTier(tiers, 3)
		require.NotNil(t, tier)
		assert.Equal(t, 3, tier.MinDuration)
	})

	t.Run("below all tiers", func(t *testing.T) {
		assert.Nil(t, pricing.EffectiveTier(tiers, 2))
	})

	t.Run("no tiers", func(t *testing.T) {
		assert.Nil(t, pricing.EffectiveTier(nil, 30))
	})
}

func TestQuoteItemTiers(t *testing.T) {
	spec := pricing.Spec{
		BasePrice: 100,
		Mode:      pricing.ModeDay,
		Tiers:     []pricing.Tier{{MinDuration: 7, DiscountPercent: 10}},
	}

	t.Run("tier discount applies", func(t *testing.T) {
		quote, err := pricing.QuoteItem(spec, baseTime, baseTime.Add(10*24*time.Hour), 1, nil)
		require.NoError(t, err)

		assert.Equal(t, 10, quote.Duration)
		assert.InDelta(t, 90.0, quote.UnitPrice, 0.001)
		assert.InDelta(t, 900.0, quote.Subtotal, 0.001)
		assert.InDelta(t, 1000.0, quote.OriginalSubtotal, 0.001)
		assert.InDelta(t, 100.0, quote.Savings, 0.001)
		assert.Equal(t, pricing.StrategyTier, quote.Breakdown.Strategy)
		require.NotNil(t, quote.Breakdown.TierMinDuration)
		assert.Equal(t, 7, *quote.Breakdown.TierMinDuration)
	})

	t.Run("short rental pays the flat price", func(t *testing.T) {
		quote, err := pricing.QuoteItem(spec, baseTime, baseTime.Add(3*24*time.Hour), 2, nil)
		require.NoError(t, err)

		assert.InDelta(t, 100.0, quote.UnitPrice, 0.001)
		assert.InDelta(t, 600.0, quote.Subtotal, 0.001)
		assert.InDelta(t, 0.0, quote.Savings, 0.001)
		assert.Equal(t, pricing.StrategyFlat, quote.Breakdown.Strategy)
	})

	t.Run("quantity below one is coerced", func(t *testing.T) {
		quote, err := pricing.QuoteItem(spec, baseTime, baseTime.Add(24*time.Hour), 0, nil)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, quote.Subtotal, 0.001)
	})

	t.Run("manual override bypasses tiers", func(t *testing.T) {
		manual := 80.0
		quote, err := pricing.QuoteItem(spec, baseTime, baseTime.Add(10*24*time.Hour), 2, &manual)
		require.NoError(t, err)

		assert.InDelta(t, 80.0, quote.UnitPrice, 0.001)
		assert.InDelta(t, 1600.0, quote.Subtotal, 0.001)
		assert.Equal(t, pricing.StrategyManual, quote.Breakdown.Strategy)
		assert.True(t, quote.Breakdown.IsManualOverride)
	})

	t.Run("invalid window", func(t *testing.T) {
		_, err := pricing.QuoteItem(spec, baseTime, baseTime, 1, nil)
		require.ErrorIs(t, err, pricing.ErrInvalidWindow)
	})

	t.Run("tiers and rates together are rejected", func(t *testing.T) {
		conflicting := spec
		conflicting.Rates = []pricing.Rate{{PeriodMinutes: 60, Price: 50}}
		_, err := pricing.QuoteItem(conflicting, baseTime, baseTime.Add(24*time.Hour), 1, nil)
		require.ErrorIs(t, err, pricing.ErrConflictingPricing)
	})
}

func TestTierUnitPriceMonotonicity(t *testing.T) {
	spec := pricing.Spec{
		BasePrice: 100,
		Mode:      pricing.ModeDay,
		Tiers: []pricing.Tier{
			{MinDuration: 3, DiscountPercent: 5},
			{MinDuration: 7, DiscountPercent: 10},
			{MinDuration: 14, DiscountPercent: 20},
		},
	}

	// A longer rental must never pay a higher per-day price.
	prev := spec.BasePrice
	for days := 1; days <= 30; days++ {
		quote, err := pricing.QuoteItem(spec, baseTime, baseTime.Add(time.Duration(days)*24*time.Hour), 1, nil)
		require.NoError(t, err)

		assert.LessOrEqual(t, quote.UnitPrice, prev+0.001, "unit price rose at %d days", days)
		prev = quote.UnitPrice
	}
}

func TestQuoteItemRates(t *testing.T) {
	spec := pricing.Spec{
		BasePrice:         60,
		Mode:              pricing.ModeRate,
		BasePeriodMinutes: 60,
		Rates: []pricing.Rate{
			{PeriodMinutes: 60, Price: 50},
			{PeriodMinutes: 180, Price: 120},
		},
	}

	t.Run("exact period match", func(t *testing.T) {
		quote, err := pricing.QuoteItem(spec, baseTime, baseTime.Add(time.Hour), 1, nil)
		require.NoError(t, err)

		assert.InDelta(t, 50.0, quote.Subtotal, 0.001)
		assert.Equal(t, pricing.StrategyRate, quote.Breakdown.Strategy)
		require.NotNil(t, quote.Breakdown.RatePeriodMin)
		assert.Equal(t, 60, *quote.Breakdown.RatePeriodMin)
	})

	t.Run("largest dividing rate scales up", func(t *testing.T) {
		quote, err := pricing.QuoteItem(spec, baseTime, baseTime.Add(6*time.Hour), 1, nil)
		require.NoError(t, err)

		// 360 minutes: two 180-minute blocks beat six 60-minute blocks.
		assert.InDelta(t, 240.0, quote.Subtotal, 0.001)
		require.NotNil(t, quote.Breakdown.RatePeriodMin)
		assert.Equal(t, 180, *quote.Breakdown.RatePeriodMin)
	})

	t.Run("no matching rate prorates the base price", func(t *testing.T) {
		quote, err := pricing.QuoteItem(spec, baseTime, baseTime.Add(90*time.Minute), 1, nil)
		require.NoError(t, err)

		assert.InDelta(t, 90.0, quote.Subtotal, 0.001)
		assert.Nil(t, quote.Breakdown.RatePeriodMin)
	})

	t.Run("charge never drops below the smallest rate", func(t *testing.T) {
		quote, err := pricing.QuoteItem(spec, baseTime, baseTime.Add(10*time.Minute), 1, nil)
		require.NoError(t, err)

		assert.InDelta(t, 50.0, quote.Subtotal, 0.001)
	})

	t.Run("quantity multiplies the charge", func(t *testing.T) {
		quote, err := pricing.QuoteItem(spec, baseTime, baseTime.Add(time.Hour), 3, nil)
		require.NoError(t, err)

		assert.InDelta(t, 150.0, quote.Subtotal, 0.001)
	})
}

func TestQuoteCustomItem(t *testing.T) {
	quote := pricing.QuoteCustomItem(25, 4, 2)

	assert.InDelta(t, 25.0, quote.UnitPrice, 0.001)
	assert.Equal(t, 4, quote.Duration)
	assert.InDelta(t, 200.0, quote.Subtotal, 0.001)
	assert.InDelta(t, 0.0, quote.Savings, 0.001)
	assert.Equal(t, pricing.StrategyCustom, quote.Breakdown.Strategy)

	coerced := pricing.QuoteCustomItem(25, 0, 0)
	assert.InDelta(t, 25.0, coerced.Subtotal, 0.001)
	assert.Equal(t, 1, coerced.Duration)
}
