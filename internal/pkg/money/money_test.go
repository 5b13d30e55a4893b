//go:build unit

package money_test

import (
	"testing"

	"rentflow/internal/pkg/money"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		name  string
		in    float64
		want  float64
		delta float64
	}{
		{name: "already rounded", in: 19.99, want: 19.99},
		{name: "rounds up", in: 10.006, want: 10.01},
		{name: "rounds down", in: 10.004, want: 10.00},
		{name: "rounds away from zero", in: -10.006, want: -10.01},
		{name: "accumulated float noise", in: 0.1 + 0.2, want: 0.3},
		{name: "zero", in: 0, want: 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, money.Round2(c.in), 0.0001)
		})
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), money.ToMinorUnits(19.99))
	assert.Equal(t, int64(30), money.ToMinorUnits(0.1+0.2))
	assert.Equal(t, int64(0), money.ToMinorUnits(0))
	assert.InDelta(t, 25.0, money.FromMinorUnits(2500), 0.0001)
	assert.InDelta(t, 19.99, money.FromMinorUnits(money.ToMinorUnits(19.99)), 0.0001)
}

func TestEqual(t *testing.T) {
	assert.True(t, money.Equal(0.1+0.2, 0.3))
	assert.True(t, money.Equal(10, 10.004))
	assert.False(t, money.Equal(10, 10.006))
	assert.False(t, money.Equal(10, 10.01))
}
