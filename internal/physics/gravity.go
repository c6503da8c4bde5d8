package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/vecmath"
)

// G is the gravitational constant in m³·kg⁻¹·s⁻².
const G = 6.67e-11

// Solver refreshes the acceleration of every body from the positions of all
// the others. A solver only reads positions and masses and only writes
// accelerations.
type Solver interface {
	Name() string
	Accelerations(bodies []body.Body) error
}

// accelerationOn sums G·m/|r|²·unit(r) over every body not named like
// bodies[i].
func accelerationOn(bodies []body.Body, i int) (r2.Vec, error) {
	b := bodies[i]
	var acc r2.Vec

	for _, other := range bodies {
		if other.Name == b.Name {
			continue
		}

		vectR := r2.Sub(other.Position, b.Position)
		magR := vecmath.Magnitude(vectR)
		unitR, err := vecmath.UnitVector(vectR)
		if err != nil {
			return r2.Vec{}, fmt.Errorf("%w: %q and %q: %w", dynamo.ErrCoincidentBodies, b.Name, other.Name, err)
		}

		magA := G * other.Mass / (magR * magR)
		acc = r2.Add(acc, r2.Scale(magA, unitR))
	}

	return acc, nil
}

// Direct is the exact pairwise O(N²) sum on the calling goroutine.
type Direct struct{}

func NewDirect() *Direct {
	return &Direct{}
}

func (d *Direct) Name() string { return "direct" }

// Accelerations writes nothing unless every body's sum succeeds.
func (d *Direct) Accelerations(bodies []body.Body) error {
	acc := make([]r2.Vec, len(bodies))
	for i := range bodies {
		a, err := accelerationOn(bodies, i)
		if err != nil {
			return err
		}
		acc[i] = a
	}

	for i := range bodies {
		bodies[i].Acceleration = acc[i]
	}
	return nil
}

// Parallel computes the same sums as Direct, in the same order, split across
// goroutines. Workers read a copy of the bodies taken before any of them
// starts and accelerations are written back only after all have finished.
type Parallel struct {
	MinChunk int
}

func NewParallel() *Parallel {
	return &Parallel{MinChunk: 16}
}

func (p *Parallel) Name() string { return "parallel" }

func (p *Parallel) Accelerations(bodies []body.Body) error {
	n := len(bodies)
	snapshot := body.Clone(bodies)
	acc := make([]r2.Vec, n)
	errs := make([]error, n)

	dynamo.ParallelFor(n, p.MinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			acc[i], errs[i] = accelerationOn(snapshot, i)
		}
	})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	for i := range bodies {
		bodies[i].Acceleration = acc[i]
	}
	return nil
}

// BarnesHut approximates the pairwise sum with a quadtree. Theta is the
// opening angle; zero walks every particle.
type BarnesHut struct {
	Theta float64
}

func NewBarnesHut(theta float64) *BarnesHut {
	return &BarnesHut{Theta: theta}
}

func (bh *BarnesHut) Name() string { return "barneshut" }

type particle struct {
	pos  r2.Vec
	mass float64
}

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return p.mass }

// pull returns the acceleration exerted on a particle by mass m2 at offset v.
// The quadtree passes the particle itself with v == 0.
func pull(_, _ barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
	d2 := v.X*v.X + v.Y*v.Y
	if d2 == 0 {
		return r2.Vec{}
	}
	return r2.Scale(G*m2/(d2*math.Sqrt(d2)), v)
}

func (bh *BarnesHut) Accelerations(bodies []body.Body) error {
	if err := checkCoincident(bodies); err != nil {
		return err
	}

	particles := make([]barneshut.Particle2, len(bodies))
	for i, b := range bodies {
		particles[i] = &particle{pos: b.Position, mass: b.Mass}
	}

	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidState, err)
	}

	for i, p := range particles {
		bodies[i].Acceleration = plane.ForceOn(p, bh.Theta, pull)
	}
	return nil
}

func checkCoincident(bodies []body.Body) error {
	seen := make(map[r2.Vec]string, len(bodies))
	for _, b := range bodies {
		if other, ok := seen[b.Position]; ok {
			return fmt.Errorf("%w: %q and %q: %w", dynamo.ErrCoincidentBodies, other, b.Name, vecmath.ErrZeroVector)
		}
		seen[b.Position] = b.Name
	}
	return nil
}

// DefaultTheta is the Barnes-Hut opening angle used when none is configured.
const DefaultTheta = 0.5

// SolverByName returns a solver for "direct", "parallel" or "barneshut".
func SolverByName(name string, theta float64) (Solver, error) {
	switch name {
	case "", "direct":
		return NewDirect(), nil
	case "parallel":
		return NewParallel(), nil
	case "barneshut":
		if theta < 0 {
			return nil, fmt.Errorf("barneshut theta must be non-negative, got %f", theta)
		}
		return NewBarnesHut(theta), nil
	default:
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
}

// SolverNames lists the solvers SolverByName understands.
func SolverNames() []string {
	return []string{"direct", "parallel", "barneshut"}
}
