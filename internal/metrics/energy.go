package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// KineticEnergy reports the total kinetic energy of the latest observed frame.
type KineticEnergy struct {
	name string
	last float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(f dynamo.Frame) {
	k.last = body.TotalKineticEnergy(f.Bodies)
}

func (k *KineticEnergy) Value() float64 { return k.last }

func (k *KineticEnergy) Reset() {
	k.last = 0
}

// TotalEnergy is kinetic plus gravitational potential energy.
func TotalEnergy(bodies []body.Body) float64 {
	return body.TotalKineticEnergy(bodies) + physics.PotentialEnergy(bodies)
}

// EnergyDrift tracks the largest relative deviation of total energy from the
// first observed frame.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f dynamo.Frame) {
	energy := TotalEnergy(f.Bodies)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
