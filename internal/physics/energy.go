package physics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/vecmath"
)

// PotentialEnergy returns -Σ G·mᵢ·mⱼ/rᵢⱼ over distinct pairs. Coincident pairs
// are skipped.
func PotentialEnergy(bodies []body.Body) float64 {
	pe := 0.0
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			r := vecmath.Magnitude(r2.Sub(bodies[j].Position, bodies[i].Position))
			if r == 0 {
				continue
			}
			pe -= G * bodies[i].Mass * bodies[j].Mass / r
		}
	}
	return pe
}

// Momentum returns the total linear momentum of the engine's bodies.
func (e *Engine) Momentum() r2.Vec {
	return body.TotalMomentum(e.bodies)
}
