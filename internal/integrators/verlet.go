package integrators

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
)

// Leapfrog is the kick-drift-kick form of velocity Verlet. It expects the
// bodies to carry valid accelerations on entry and leaves them valid on exit.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(bodies []body.Body, dt float64, accel AccelFunc) error {
	halfDt := 0.5 * dt

	for i := range bodies {
		b := &bodies[i]
		b.Velocity = r2.Add(b.Velocity, r2.Scale(halfDt, b.Acceleration))
		b.Position = r2.Add(b.Position, r2.Scale(dt, b.Velocity))
	}

	if err := accel(bodies); err != nil {
		return err
	}

	for i := range bodies {
		b := &bodies[i]
		b.Velocity = r2.Add(b.Velocity, r2.Scale(halfDt, b.Acceleration))
	}

	return nil
}
