package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/vecmath"
)

// Engine owns the authoritative state of a gravitational system and advances
// it one tick per Step. It is not safe for concurrent use.
type Engine struct {
	bodies     []body.Body
	dt         float64
	steps      int
	ref        int
	refName    string
	solver     Solver
	integrator integrators.Integrator
	err        error
}

type Option func(*Engine)

// WithReference designates the dominant body used to derive initial
// velocities. Without it the first body is the reference.
func WithReference(name string) Option {
	return func(e *Engine) { e.refName = name }
}

func WithSolver(s Solver) Option {
	return func(e *Engine) { e.solver = s }
}

func WithIntegrator(i integrators.Integrator) Option {
	return func(e *Engine) { e.integrator = i }
}

// New validates the bodies, copies them, computes their initial accelerations
// and then their initial circular-orbit velocities.
func New(bodies []body.Body, dt float64, opts ...Option) (*Engine, error) {
	if err := validate(bodies, dt); err != nil {
		return nil, err
	}

	e := &Engine{
		bodies:     body.Clone(bodies),
		dt:         dt,
		solver:     NewDirect(),
		integrator: integrators.NewSemiImplicitEuler(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.refName != "" {
		e.ref = body.Find(e.bodies, e.refName)
		if e.ref < 0 {
			return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownReference, e.refName)
		}
	}

	if err := e.ComputeAccelerations(); err != nil {
		return nil, err
	}
	if err := e.ComputeInitialVelocities(); err != nil {
		return nil, err
	}

	return e, nil
}

func validate(bodies []body.Body, dt float64) error {
	if len(bodies) < 2 {
		return fmt.Errorf("%w: got %d", dynamo.ErrTooFewBodies, len(bodies))
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %g", dynamo.ErrInvalidTimeStep, dt)
	}

	names := make(map[string]struct{}, len(bodies))
	for _, b := range bodies {
		if b.Mass <= 0 || math.IsNaN(b.Mass) || math.IsInf(b.Mass, 0) {
			return fmt.Errorf("%w: %q has mass %g", dynamo.ErrInvalidMass, b.Name, b.Mass)
		}
		if _, dup := names[b.Name]; dup || b.Name == "" {
			return fmt.Errorf("%w: %q", dynamo.ErrDuplicateName, b.Name)
		}
		if !vecmath.IsFinite(b.Position) || !vecmath.IsFinite(b.Velocity) {
			return fmt.Errorf("%w: %q", dynamo.ErrInvalidState, b.Name)
		}
		names[b.Name] = struct{}{}
	}
	return nil
}

// ComputeAccelerations replaces every body's acceleration with the net pull
// of all other bodies at their current positions.
func (e *Engine) ComputeAccelerations() error {
	return e.solver.Accelerations(e.bodies)
}

// ComputeInitialVelocities gives the reference body zero velocity and every
// other body the speed of a circular orbit around the reference alone,
// directed counter-clockwise. Other bodies' pull is ignored.
func (e *Engine) ComputeInitialVelocities() error {
	ref := e.bodies[e.ref]

	for i := range e.bodies {
		b := &e.bodies[i]
		if i == e.ref {
			b.Velocity = r2.Vec{}
			continue
		}

		vectR := r2.Sub(b.Position, ref.Position)
		magR := vecmath.Magnitude(vectR)
		normR, err := vecmath.UnitVector(vecmath.NormalVector(vectR))
		if err != nil {
			return fmt.Errorf("%w: %q and %q: %w", dynamo.ErrCoincidentBodies, ref.Name, b.Name, err)
		}

		magV := math.Sqrt(G * ref.Mass / magR)
		b.Velocity = r2.Scale(magV, normR)
	}

	return nil
}

// Step advances every body by one time step. The bodies are integrated on a
// copy that replaces the state only when the whole tick succeeds, so a failed
// step leaves the last good tick in place. An error is fatal: later calls
// return it wrapped in ErrEngineFailed.
func (e *Engine) Step() error {
	if e.err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrEngineFailed, e.err)
	}

	next := e.steps + 1
	work := body.Clone(e.bodies)
	err := e.integrator.Step(work, e.dt, e.solver.Accelerations)
	if err == nil {
		err = checkFinite(work)
	}
	if err != nil {
		e.err = &dynamo.SimulationError{Step: next, Time: float64(next) * e.dt, Wrapped: err}
		return e.err
	}

	e.bodies = work
	e.steps = next
	return nil
}

func checkFinite(bodies []body.Body) error {
	for _, b := range bodies {
		if !b.IsFinite() {
			return fmt.Errorf("%w: %q", dynamo.ErrInvalidState, b.Name)
		}
	}
	return nil
}

// Bodies returns a copy of the current state in the original order.
func (e *Engine) Bodies() []body.Body {
	return body.Clone(e.bodies)
}

func (e *Engine) Steps() int           { return e.steps }
func (e *Engine) TimeStep() float64    { return e.dt }
func (e *Engine) Time() float64        { return float64(e.steps) * e.dt }
func (e *Engine) Reference() body.Body { return e.bodies[e.ref] }
func (e *Engine) Solver() Solver       { return e.solver }

func (e *Engine) Integrator() integrators.Integrator { return e.integrator }

// Err returns the error that halted the engine, if any.
func (e *Engine) Err() error { return e.err }

// TotalKineticEnergy returns Σ ½·m·|v|² over all bodies.
func (e *Engine) TotalKineticEnergy() float64 {
	return body.TotalKineticEnergy(e.bodies)
}

// TotalEnergy returns kinetic plus gravitational potential energy.
func (e *Engine) TotalEnergy() float64 {
	return e.TotalKineticEnergy() + PotentialEnergy(e.bodies)
}

// Checkpoint is a saved engine state.
type Checkpoint struct {
	Steps  int
	Bodies []body.Body
}

func (e *Engine) Checkpoint() Checkpoint {
	return Checkpoint{Steps: e.steps, Bodies: e.Bodies()}
}

// Restore replaces the engine state with cp, which must hold the same bodies
// in the same order, and clears any halting error.
func (e *Engine) Restore(cp Checkpoint) error {
	if len(cp.Bodies) != len(e.bodies) {
		return fmt.Errorf("checkpoint has %d bodies, engine has %d", len(cp.Bodies), len(e.bodies))
	}
	for i, b := range cp.Bodies {
		if b.Name != e.bodies[i].Name {
			return fmt.Errorf("checkpoint body %d is %q, engine expects %q", i, b.Name, e.bodies[i].Name)
		}
	}

	e.bodies = body.Clone(cp.Bodies)
	e.steps = cp.Steps
	e.err = nil
	return nil
}
