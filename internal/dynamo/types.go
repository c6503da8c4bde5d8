package dynamo

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/body"
)

// System is a fixed set of bodies that advances one tick per Step call.
// Bodies must return copies; callers never see the system's own storage.
type System interface {
	Step() error
	Bodies() []body.Body
	Time() float64
	TimeStep() float64
	TotalKineticEnergy() float64
}

// Hamiltonian is implemented by systems that can report total (kinetic plus
// potential) energy.
type Hamiltonian interface {
	TotalEnergy() float64
}

// Frame is a read-only copy of the system after a tick.
type Frame struct {
	Step   int
	Time   float64
	Bodies []body.Body
}

func (f Frame) IsValid() bool {
	for _, b := range f.Bodies {
		if !b.IsFinite() {
			return false
		}
	}
	return true
}

// EnergySample is one periodic kinetic energy reading.
type EnergySample struct {
	Step    int     `json:"step"`
	Time    float64 `json:"time"`
	Kinetic float64 `json:"kinetic"`
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

// DefaultSampleEvery is the kinetic energy sampling cadence, in ticks.
const DefaultSampleEvery = 51

type Config struct {
	Iterations    int
	SampleEvery   int
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Iterations:    1000,
		SampleEvery:   DefaultSampleEvery,
		RecordEvery:   1,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.SampleEvery <= 0 {
		return fmt.Errorf("sample interval must be positive, got %d", c.SampleEvery)
	}
	if c.RecordEvery <= 0 {
		return fmt.Errorf("record interval must be positive, got %d", c.RecordEvery)
	}
	return nil
}

type Result struct {
	Frames      []Frame
	Energy      []EnergySample
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int

	// Final holds the bodies as they were when the run ended, whether or
	// not that tick was recorded.
	Final []body.Body
}

// Track returns the recorded positions of the body at index i, one per frame.
func (r *Result) Track(i int) (xs, ys []float64) {
	xs = make([]float64, 0, len(r.Frames))
	ys = make([]float64, 0, len(r.Frames))
	for _, f := range r.Frames {
		if i < len(f.Bodies) {
			xs = append(xs, f.Bodies[i].Position.X)
			ys = append(ys, f.Bodies[i].Position.Y)
		}
	}
	return xs, ys
}
