package vecmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestMagnitude(t *testing.T) {
	tests := []struct {
		v    r2.Vec
		want float64
	}{
		{r2.Vec{X: 3, Y: 4}, 5},
		{r2.Vec{X: -3, Y: -4}, 5},
		{r2.Vec{X: 0, Y: 0}, 0},
		{r2.Vec{X: 2.2e10, Y: 0}, 2.2e10},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Magnitude(tt.v), 1e-9, "Magnitude(%v)", tt.v)
	}
}

func TestUnitVector(t *testing.T) {
	vectors := []r2.Vec{
		{X: 1, Y: 0},
		{X: 3, Y: 4},
		{X: -7.5, Y: 2},
		{X: 1e-12, Y: -3e-12},
		{X: 2.2e10, Y: 9.4e9},
	}

	for _, v := range vectors {
		u, err := UnitVector(v)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, Magnitude(u), 1e-12, "|UnitVector(%v)|", v)
		assert.Greater(t, u.X*v.X+u.Y*v.Y, 0.0, "unit vector must point along %v", v)
	}
}

func TestUnitVectorZero(t *testing.T) {
	u, err := UnitVector(r2.Vec{})
	assert.ErrorIs(t, err, ErrZeroVector)
	assert.Equal(t, r2.Vec{}, u)
}

func TestNormalVector(t *testing.T) {
	vectors := []r2.Vec{
		{X: 1, Y: 0},
		{X: 0.1, Y: 0.7},
		{X: -123.456, Y: 9.87e-3},
		{X: 2.2e10, Y: -1.3e9},
	}

	for _, v := range vectors {
		n := NormalVector(v)
		assert.Equal(t, 0.0, v.X*n.X+v.Y*n.Y, "NormalVector(%v) not orthogonal", v)
		assert.Equal(t, Magnitude(v), Magnitude(n))
	}

	assert.Equal(t, r2.Vec{X: 0, Y: 1}, NormalVector(r2.Vec{X: 1, Y: 0}), "rotation must be counter-clockwise")
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(r2.Vec{X: 1, Y: -1}))
	assert.False(t, IsFinite(r2.Vec{X: math.NaN()}))
	assert.False(t, IsFinite(r2.Vec{Y: math.Inf(-1)}))
}
