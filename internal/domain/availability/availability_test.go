//go:build unit

package availability_test

import (
	"testing"
	"time"

	"rentflow/internal/domain/availability"
	"rentflow/internal/domain/product"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = 24 * time.Hour

func window(startDay, endDay int) availability.Window {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return availability.Window{
		Start: base.Add(time.Duration(startDay) * day),
		End:   base.Add(time.Duration(endDay) * day),
	}
}

func TestWindowOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b availability.Window
		want bool
	}{
		{name: "back to back does not overlap", a: window(0, 2), b: window(2, 4), want: false},
		{name: "back to back reversed", a: window(2, 4), b: window(0, 2), want: false},
		{name: "partial overlap", a: window(0, 2), b: window(1, 3), want: true},
		{name: "containment", a: window(0, 4), b: window(1, 2), want: true},
		{name: "identical", a: window(0, 2), b: window(0, 2), want: true},
		{name: "disjoint", a: window(0, 1), b: window(3, 4), want: false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.a.Overlaps(c.b))
		})
	}
}

func TestSignature(t *testing.T) {
	t.Run("empty selection is the default signature", func(t *testing.T) {
		assert.Equal(t, availability.DefaultSignature, availability.Signature(nil))
		assert.Equal(t, availability.DefaultSignature, availability.Signature(map[string]string{}))
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		sig := availability.Signature(map[string]string{" Size ": "M", "color": "RED"})
		assert.Equal(t, "color:red|size:m", sig)
	})

	t.Run("key order does not matter", func(t *testing.T) {
		a := availability.Signature(map[string]string{"size": "m", "color": "red"})
		b := availability.Signature(map[string]string{"color": "red", "size": "m"})
		assert.Equal(t, a, b)
	})

	t.Run("blank keys are dropped", func(t *testing.T) {
		assert.Equal(t, availability.DefaultSignature, availability.Signature(map[string]string{"  ": "m"}))
	})
}

func TestAvailable(t *testing.T) {
	productID := uuid.New()
	otherProduct := uuid.New()
	mine := uuid.New()

	holds := []availability.Hold{
		{ReservationID: uuid.New(), ProductID: productID, Quantity: 2, Window: window(1, 3)},
		{ReservationID: uuid.New(), ProductID: productID, Quantity: 1, Window: window(5, 7)},
		{ReservationID: uuid.New(), ProductID: otherProduct, Quantity: 4, Window: window(1, 3)},
		{ReservationID: mine, ProductID: productID, Quantity: 3, Window: window(1, 3)},
	}

	t.Run("counts only overlapping holds on the product", func(t *testing.T) {
		assert.Equal(t, 5, availability.ReservedQuantity(holds, productID, window(2, 4), nil))
		assert.Equal(t, 5, availability.Available(10, holds, productID, window(2, 4), nil))
	})

	t.Run("excludes the caller's own reservation", func(t *testing.T) {
		assert.Equal(t, 2, availability.ReservedQuantity(holds, productID, window(2, 4), &mine))
	})

	t.Run("never negative", func(t *testing.T) {
		assert.Equal(t, 0, availability.Available(3, holds, productID, window(2, 4), nil))
	})

	t.Run("adjacent window is free", func(t *testing.T) {
		assert.Equal(t, 10, availability.Available(10, holds, productID, window(3, 5), nil))
	})
}

func TestCapacityBySignature(t *testing.T) {
	productID := uuid.New()
	unitM1 := product.Unit{ID: uuid.New(), ProductID: productID, Identifier: "CAM-001", Status: product.UnitAvailable, Attributes: map[string]string{"size": "m"}}
	unitM2 := product.Unit{ID: uuid.New(), ProductID: productID, Identifier: "CAM-002", Status: product.UnitAvailable, Attributes: map[string]string{"size": "m"}}
	unitL := product.Unit{ID: uuid.New(), ProductID: productID, Identifier: "CAM-003", Status: product.UnitAvailable, Attributes: map[string]string{"size": "l"}}
	broken := product.Unit{ID: uuid.New(), ProductID: productID, Identifier: "CAM-004", Status: product.UnitMaintenance, Attributes: map[string]string{"size": "l"}}
	units := []product.Unit{unitM1, unitM2, unitL, broken}

	t.Run("groups free units by signature", func(t *testing.T) {
		capacity := availability.CapacityBySignature(units, nil, window(0, 2), nil)
		assert.Equal(t, map[string]int{"size:m": 2, "size:l": 1}, capacity)
	})

	t.Run("overlapping assignments reduce capacity", func(t *testing.T) {
		holds := []availability.Hold{
			{ReservationID: uuid.New(), ProductID: productID, Quantity: 1, Window: window(1, 3), UnitIDs: []uuid.UUID{unitM1.ID}},
		}
		capacity := availability.CapacityBySignature(units, holds, window(2, 4), nil)
		assert.Equal(t, map[string]int{"size:m": 1, "size:l": 1}, capacity)
	})

	t.Run("non-overlapping assignments do not", func(t *testing.T) {
		holds := []availability.Hold{
			{ReservationID: uuid.New(), ProductID: productID, Quantity: 1, Window: window(5, 7), UnitIDs: []uuid.UUID{unitM1.ID}},
		}
		capacity := availability.CapacityBySignature(units, holds, window(0, 2), nil)
		assert.Equal(t, map[string]int{"size:m": 2, "size:l": 1}, capacity)
	})

	t.Run("own reservation is excluded", func(t *testing.T) {
		mine := uuid.New()
		holds := []availability.Hold{
			{ReservationID: mine, ProductID: productID, Quantity: 1, Window: window(1, 3), UnitIDs: []uuid.UUID{unitM1.ID}},
		}
		capacity := availability.CapacityBySignature(units, holds, window(2, 4), &mine)
		assert.Equal(t, map[string]int{"size:m": 2, "size:l": 1}, capacity)
	})
}

func TestGreedyAllocator(t *testing.T) {
	allocator := availability.GreedyAllocator{}

	t.Run("largest capacity first, signature breaks ties", func(t *testing.T) {
		capacity := map[string]int{"size:a": 2, "size:b": 5, "size:c": 2}

		allocation, err := allocator.Allocate(6, capacity)
		require.NoError(t, err)

		assert.Equal(t, map[string]int{"size:b": 5, "size:a": 1}, allocation)
	})

	t.Run("all or nothing", func(t *testing.T) {
		capacity := map[string]int{"size:a": 2, "size:b": 3}

		allocation, err := allocator.Allocate(6, capacity)
		require.ErrorIs(t, err, availability.ErrInsufficientCapacity)
		assert.Nil(t, allocation)
	})

	t.Run("exact fit drains everything", func(t *testing.T) {
		capacity := map[string]int{"size:a": 2, "size:b": 3}

		allocation, err := allocator.Allocate(5, capacity)
		require.NoError(t, err)

		total := 0
		for _, n := range allocation {
			total += n
		}
		assert.Equal(t, 5, total)
	})

	t.Run("zero request allocates nothing", func(t *testing.T) {
		allocation, err := allocator.Allocate(0, map[string]int{"size:a": 2})
		require.NoError(t, err)
		assert.Empty(t, allocation)
	})

	t.Run("exhausted combinations are skipped", func(t *testing.T) {
		allocation, err := allocator.Allocate(1, map[string]int{"size:a": 0, "size:b": 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"size:b": 1}, allocation)
	})
}
