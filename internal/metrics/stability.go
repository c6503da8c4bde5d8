package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/vecmath"
)

// Boundedness is the fraction of frames in which every body stays within
// radius of the first body. Escapes and ejections lower it.
type Boundedness struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBoundedness(radius float64) *Boundedness {
	return &Boundedness{
		name:   "bounded",
		radius: radius,
	}
}

func (s *Boundedness) Name() string {
	return s.name
}

func (s *Boundedness) Observe(f dynamo.Frame) {
	if len(f.Bodies) == 0 {
		return
	}
	s.samples++
	center := f.Bodies[0].Position
	for _, b := range f.Bodies[1:] {
		d := vecmath.Magnitude(r2.Sub(b.Position, center))
		if math.IsNaN(d) || d > s.radius {
			s.violations++
			break
		}
	}
}

func (s *Boundedness) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Boundedness) Reset() {
	s.violations = 0
	s.samples = 0
}

// Default returns the metric set attached to every recorded run.
func Default(radius float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewKineticEnergy(),
		NewEnergyDrift(),
		NewMomentum(),
		NewAngularMomentum(),
		NewBoundedness(radius),
	}
}
