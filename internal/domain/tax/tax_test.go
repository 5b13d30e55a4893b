//go:build unit

package tax_test

import (
	"testing"

	"rentflow/internal/domain/tax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdownInclusive(t *testing.T) {
	t.Run("splits the contained tax out", func(t *testing.T) {
		b := tax.BreakdownInclusive(120, 0.20)

		assert.InDelta(t, 100.0, b.Exclusive, 0.001)
		assert.InDelta(t, 20.0, b.Tax, 0.001)
		assert.InDelta(t, 0.20, b.Rate, 0.001)
		assert.InDelta(t, 120.0, b.Exclusive+b.Tax, 0.001)
	})

	t.Run("zero rate means no tax", func(t *testing.T) {
		b := tax.BreakdownInclusive(120, 0)

		assert.InDelta(t, 120.0, b.Exclusive, 0.001)
		assert.InDelta(t, 0.0, b.Tax, 0.001)
	})
}

func TestBreakdownExclusive(t *testing.T) {
	b := tax.BreakdownExclusive(100, 0.10)

	assert.InDelta(t, 100.0, b.Exclusive, 0.001)
	assert.InDelta(t, 10.0, b.Tax, 0.001)
}

func TestExtractExclusiveRoundTrip(t *testing.T) {
	exclusive, taxAmount := tax.ExtractExclusive(108, 0.08)

	assert.InDelta(t, 100.0, exclusive, 0.001)
	assert.InDelta(t, 8.0, taxAmount, 0.001)
	assert.InDelta(t, tax.FromExclusive(exclusive, 0.08), taxAmount, 0.001)
}

func TestEffectiveRate(t *testing.T) {
	override := 0.08
	zero := 0.0

	cases := []struct {
		name     string
		store    tax.Settings
		override *float64
		want     *float64
	}{
		{
			name:  "disabled store taxes nothing",
			store: tax.Settings{Enabled: false, DefaultRate: 0.10},
			want:  nil,
		},
		{
			name:     "disabled store ignores the override",
			store:    tax.Settings{Enabled: false, DefaultRate: 0.10},
			override: &override,
			want:     nil,
		},
		{
			name:  "store default applies",
			store: tax.Settings{Enabled: true, DefaultRate: 0.10},
			want:  ptr(0.10),
		},
		{
			name:     "product override wins",
			store:    tax.Settings{Enabled: true, DefaultRate: 0.10},
			override: &override,
			want:     ptr(0.08),
		},
		{
			name:     "zero override means untaxed",
			store:    tax.Settings{Enabled: true, DefaultRate: 0.10},
			override: &zero,
			want:     nil,
		},
		{
			name:  "zero default means untaxed",
			store: tax.Settings{Enabled: true, DefaultRate: 0},
			want:  nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := tax.EffectiveRate(c.store, c.override)
			if c.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.InDelta(t, *c.want, *got, 0.001)
			}
		})
	}
}

func ptr(v float64) *float64 {
	return &v
}
