package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/vecmath"
)

// Orbit summarizes the distance of one body from another over a run.
type Orbit struct {
	Periapsis    float64
	Apoapsis     float64
	Eccentricity float64
}

// Apsides returns the closest and farthest recorded distance between the
// named bodies. Eccentricity is (ra-rp)/(ra+rp).
func Apsides(frames []dynamo.Frame, name, around string) (Orbit, error) {
	if len(frames) == 0 {
		return Orbit{}, fmt.Errorf("no frames recorded")
	}

	o := Orbit{Periapsis: math.Inf(1)}
	for _, f := range frames {
		i, j := body.Find(f.Bodies, name), body.Find(f.Bodies, around)
		if i < 0 {
			return Orbit{}, fmt.Errorf("body %q not found", name)
		}
		if j < 0 {
			return Orbit{}, fmt.Errorf("body %q not found", around)
		}

		d := vecmath.Magnitude(r2.Sub(f.Bodies[i].Position, f.Bodies[j].Position))
		o.Periapsis = math.Min(o.Periapsis, d)
		o.Apoapsis = math.Max(o.Apoapsis, d)
	}

	if sum := o.Apoapsis + o.Periapsis; sum > 0 {
		o.Eccentricity = (o.Apoapsis - o.Periapsis) / sum
	}
	return o, nil
}

// Divergence returns the largest distance between same-named bodies in two
// final states.
func Divergence(a, b []body.Body) float64 {
	maxDist := 0.0
	for _, ba := range a {
		j := body.Find(b, ba.Name)
		if j < 0 {
			continue
		}
		maxDist = math.Max(maxDist, vecmath.Magnitude(r2.Sub(ba.Position, b[j].Position)))
	}
	return maxDist
}
