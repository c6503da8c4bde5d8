// Package body defines the state container for one simulated celestial object.
package body

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/vecmath"
)

// Body is the mutable physical state of one object plus the display
// attributes a renderer needs. Radius and Color play no part in the physics.
type Body struct {
	Name         string
	Mass         float64
	Position     r2.Vec
	Velocity     r2.Vec
	Acceleration r2.Vec
	Radius       float64
	Color        colorful.Color
}

// New places a body on the x-axis at orbitRadius with zero velocity.
func New(name string, mass, orbitRadius, radius float64, color colorful.Color) Body {
	return Body{
		Name:     name,
		Mass:     mass,
		Position: r2.Vec{X: orbitRadius},
		Radius:   radius,
		Color:    color,
	}
}

// KineticEnergy returns ½·m·|v|².
func (b Body) KineticEnergy() float64 {
	speed := vecmath.Magnitude(b.Velocity)
	return 0.5 * b.Mass * speed * speed
}

// Momentum returns m·v.
func (b Body) Momentum() r2.Vec {
	return r2.Scale(b.Mass, b.Velocity)
}

// IsFinite reports whether position, velocity and acceleration hold no NaN or Inf.
func (b Body) IsFinite() bool {
	return vecmath.IsFinite(b.Position) &&
		vecmath.IsFinite(b.Velocity) &&
		vecmath.IsFinite(b.Acceleration)
}

// TotalKineticEnergy sums the kinetic energy of every body.
func TotalKineticEnergy(bodies []Body) float64 {
	total := 0.0
	for _, b := range bodies {
		total += b.KineticEnergy()
	}
	return total
}

// TotalMomentum returns the vector sum of every body's momentum.
func TotalMomentum(bodies []Body) r2.Vec {
	var p r2.Vec
	for _, b := range bodies {
		p = r2.Add(p, b.Momentum())
	}
	return p
}

// AngularMomentum returns the z component of Σ m·(r × v) about the origin.
func AngularMomentum(bodies []Body) float64 {
	L := 0.0
	for _, b := range bodies {
		L += b.Mass * r2.Cross(b.Position, b.Velocity)
	}
	return L
}

// Clone returns an independent copy of bodies.
func Clone(bodies []Body) []Body {
	out := make([]Body, len(bodies))
	copy(out, bodies)
	return out
}

// Find returns the index of the body called name, or -1.
func Find(bodies []Body, name string) int {
	for i, b := range bodies {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// Bounds returns the largest absolute coordinate over all bodies.
func Bounds(bodies []Body) float64 {
	m := 0.0
	for _, b := range bodies {
		m = math.Max(m, math.Max(math.Abs(b.Position.X), math.Abs(b.Position.Y)))
	}
	return m
}
