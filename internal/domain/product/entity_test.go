//go:build unit

package product_test

import (
	"testing"

	"rentflow/internal/domain/pricing"
	"rentflow/internal/domain/product"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	id := uuid.New()
	storeID := uuid.New()
	override := 0.08
	spec := pricing.Spec{BasePrice: 100, Mode: pricing.ModeDay}
	axes := []product.Axis{{Key: "size", Label: "Size"}}

	t.Run("valid product round-trips through getters", func(t *testing.T) {
		p, err := product.NewProduct(
			id, storeID, "Canon EOS R5", "mirrorless body",
			[]string{"r5.jpg"}, 50, spec, 3, true, axes, &override,
		)
		require.NoError(t, err)

		assert.Equal(t, id, p.ID())
		assert.Equal(t, storeID, p.StoreID())
		assert.Equal(t, "Canon EOS R5", p.Name())
		assert.Equal(t, "mirrorless body", p.Description())
		assert.Equal(t, []string{"r5.jpg"}, p.Images())
		assert.InDelta(t, 50.0, p.DepositPerUnit(), 0.001)
		assert.Equal(t, spec, p.Pricing())
		assert.Equal(t, 3, p.Quantity())
		assert.True(t, p.TrackUnits())
		assert.Equal(t, axes, p.AttributeAxes())
		require.NotNil(t, p.TaxRateOverride())
		assert.InDelta(t, 0.08, *p.TaxRateOverride(), 0.001)
	})

	cases := []struct {
		name    string
		product func() (*product.Product, error)
		errIs   error
	}{
		{
			name: "empty name",
			product: func() (*product.Product, error) {
				return product.NewProduct(id, storeID, "", "", nil, 50, spec, 1, false, nil, nil)
			},
			errIs: product.ErrEmptyName,
		},
		{
			name: "negative base price",
			product: func() (*product.Product, error) {
				return product.NewProduct(id, storeID, "Tripod", "", nil, 0,
					pricing.Spec{BasePrice: -1, Mode: pricing.ModeDay}, 1, false, nil, nil)
			},
			errIs: product.ErrNegativePrice,
		},
		{
			name: "negative deposit",
			product: func() (*product.Product, error) {
				return product.NewProduct(id, storeID, "Tripod", "", nil, -10, spec, 1, false, nil, nil)
			},
			errIs: product.ErrNegativeDeposit,
		},
		{
			name: "zero quantity",
			product: func() (*product.Product, error) {
				return product.NewProduct(id, storeID, "Tripod", "", nil, 0, spec, 0, false, nil, nil)
			},
			errIs: product.ErrInvalidQuantity,
		},
		{
			name: "tiers and rates together",
			product: func() (*product.Product, error) {
				conflicting := pricing.Spec{
					BasePrice: 100,
					Mode:      pricing.ModeDay,
					Tiers:     []pricing.Tier{{MinDuration: 7, DiscountPercent: 10}},
					Rates:     []pricing.Rate{{PeriodMinutes: 60, Price: 50}},
				}
				return product.NewProduct(id, storeID, "Tripod", "", nil, 0, conflicting, 1, false, nil, nil)
			},
			errIs: pricing.ErrConflictingPricing,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := c.product()
			assert.ErrorIs(t, err, c.errIs)
			assert.Nil(t, p)
		})
	}
}
