// Package integrators holds the explicit time-stepping schemes for body sets.
//
// An integrator never computes forces itself. It moves bodies and asks the
// caller, through an AccelFunc, to refresh accelerations from the new
// positions.
package integrators

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
)

// AccelFunc replaces the Acceleration of every body using the current
// positions of all of them.
type AccelFunc func(bodies []body.Body) error

type Integrator interface {
	Name() string
	Step(bodies []body.Body, dt float64, accel AccelFunc) error
}

// SemiImplicitEuler is the symplectic Euler scheme: velocity from the
// acceleration at the start of the step, then position from the new velocity.
// Accelerations are refreshed only after every body has moved.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Name() string { return "euler" }

func (e *SemiImplicitEuler) Step(bodies []body.Body, dt float64, accel AccelFunc) error {
	for i := range bodies {
		b := &bodies[i]
		b.Velocity = r2.Add(b.Velocity, r2.Scale(dt, b.Acceleration))
		b.Position = r2.Add(b.Position, r2.Scale(dt, b.Velocity))
	}
	return accel(bodies)
}

// ByName returns a new integrator for the given scheme name.
func ByName(name string) (Integrator, error) {
	switch name {
	case "", "euler":
		return NewSemiImplicitEuler(), nil
	case "leapfrog":
		return NewLeapfrog(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

// Names lists the schemes ByName understands.
func Names() []string {
	return []string{"euler", "leapfrog"}
}
