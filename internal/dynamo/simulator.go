package dynamo

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
)

type Simulator struct {
	sys       System
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New(sys System) *Simulator {
	return &Simulator{
		sys:       sys,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)           { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)       { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(logger *log.Logger) { s.logger = logger }

// Run advances the system cfg.Iterations ticks. On a step error the partial
// result is returned together with the error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frames := cfg.Iterations/cfg.RecordEvery + 1
	result := &Result{
		Frames:  make([]Frame, 0, frames),
		Energy:  make([]EnergySample, 0, cfg.Iterations/cfg.SampleEvery+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	first := s.frame(0)
	result.Frames = append(result.Frames, first)
	for _, m := range s.metrics {
		m.Observe(first)
	}

	initialEnergy := s.totalEnergy()
	s.info("simulation started", "bodies", len(first.Bodies), "iterations", cfg.Iterations, "dt", s.sys.TimeStep())

	for i := 0; i < cfg.Iterations; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, initialEnergy)
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		if err := s.sys.Step(); err != nil {
			s.finish(result, initialEnergy)
			return result, err
		}
		result.StepsTaken++

		f := s.frame(i + 1)
		if cfg.ValidateState && !f.IsValid() {
			s.finish(result, initialEnergy)
			return result, &SimulationError{Step: f.Step, Time: f.Time, Wrapped: ErrInvalidState}
		}

		for _, m := range s.metrics {
			m.Observe(f)
		}
		for _, obs := range s.observers {
			obs.OnStep(f)
		}

		if i%cfg.SampleEvery == 0 {
			ke := s.sys.TotalKineticEnergy()
			result.Energy = append(result.Energy, EnergySample{Step: f.Step, Time: f.Time, Kinetic: ke})
			s.info("total kinetic energy", "step", f.Step, "ke_kj", math.Round(ke)/1000)
		}

		if (i+1)%cfg.RecordEvery == 0 {
			result.Frames = append(result.Frames, f)
		}
	}

	s.finish(result, initialEnergy)
	s.info("simulation finished", "steps", result.StepsTaken, "energy_drift", result.EnergyDrift)
	return result, nil
}

// RunWithCallback steps the system until the callback returns false, the
// iteration budget is spent or ctx is done. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, iterations int, callback func(Frame) bool) error {
	if iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", iterations)
	}

	for i := 0; i < iterations; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		if err := s.sys.Step(); err != nil {
			return err
		}

		if !callback(s.frame(i + 1)) {
			return nil
		}
	}

	return nil
}

func (s *Simulator) frame(step int) Frame {
	return Frame{Step: step, Time: s.sys.Time(), Bodies: s.sys.Bodies()}
}

func (s *Simulator) finish(result *Result, initialEnergy float64) {
	result.Final = s.sys.Bodies()
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(s.totalEnergy()-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) totalEnergy() float64 {
	if h, ok := s.sys.(Hamiltonian); ok {
		return h.TotalEnergy()
	}
	return 0
}

func (s *Simulator) info(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, keyvals...)
	}
}
