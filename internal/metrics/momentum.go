package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/vecmath"
)

// Momentum tracks the largest change in total linear momentum magnitude
// relative to the first observed frame. Gravity between bodies conserves
// momentum, so growth here is integration or solver error.
type Momentum struct {
	name     string
	initial  r2.Vec
	maxDelta float64
	samples  int
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum_drift"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(f dynamo.Frame) {
	p := body.TotalMomentum(f.Bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDelta = math.Max(m.maxDelta, vecmath.Magnitude(r2.Sub(p, m.initial)))
}

func (m *Momentum) Value() float64 { return m.maxDelta }

func (m *Momentum) Reset() {
	m.initial = r2.Vec{}
	m.maxDelta = 0
	m.samples = 0
}

// AngularMomentum tracks the largest relative change in total angular
// momentum about the origin.
type AngularMomentum struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentum() *AngularMomentum {
	return &AngularMomentum{name: "angular_momentum_drift"}
}

func (a *AngularMomentum) Name() string { return a.name }

func (a *AngularMomentum) Observe(f dynamo.Frame) {
	l := body.AngularMomentum(f.Bodies)
	if a.samples == 0 {
		a.initial = l
	}
	a.samples++
	if a.initial != 0 {
		a.maxDrift = math.Max(a.maxDrift, math.Abs(l-a.initial)/math.Abs(a.initial))
	}
}

func (a *AngularMomentum) Value() float64 { return a.maxDrift }

func (a *AngularMomentum) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}
