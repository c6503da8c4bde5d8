// Package vecmath provides the 2D vector helpers used by the gravity engine.
//
// All functions are pure and operate on [r2.Vec] values.
package vecmath

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrZeroVector is returned when a direction is requested for a zero-length vector.
var ErrZeroVector = errors.New("vecmath: zero-length vector has no direction")

// Magnitude returns the Euclidean norm of v.
func Magnitude(v r2.Vec) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// UnitVector returns v scaled to length one.
func UnitVector(v r2.Vec) (r2.Vec, error) {
	mag := Magnitude(v)
	if mag == 0 {
		return r2.Vec{}, ErrZeroVector
	}
	return r2.Vec{X: v.X / mag, Y: v.Y / mag}, nil
}

// NormalVector returns v rotated 90 degrees counter-clockwise.
func NormalVector(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// IsFinite reports whether both components are neither NaN nor infinite.
func IsFinite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
