// Package experiment turns a scenario config into a configured engine and
// runs it under the simulation driver.
package experiment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/scenario"
	"github.com/san-kum/gravsim/internal/storage"
)

type Experiment struct {
	cfg       *config.Config
	engine    *physics.Engine
	simulator *dynamo.Simulator
}

// New builds the engine for cfg and attaches the default metric set.
func New(cfg *config.Config, logger *log.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eng, err := Build(cfg, cfg.TimeStep)
	if err != nil {
		return nil, err
	}

	sim := dynamo.New(eng)
	sim.SetLogger(logger)
	for _, m := range metrics.Default(2 * cfg.QuadrantSize) {
		sim.AddMetric(m)
	}

	return &Experiment{cfg: cfg, engine: eng, simulator: sim}, nil
}

// Build creates an engine for the bodies of cfg with the given time step,
// using the solver, integrator and reference cfg names.
func Build(cfg *config.Config, dt float64) (*physics.Engine, error) {
	bodies, err := scenario.Bodies(cfg)
	if err != nil {
		return nil, err
	}

	solver, err := physics.SolverByName(cfg.Solver, cfg.Theta)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.ByName(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	opts := []physics.Option{physics.WithSolver(solver), physics.WithIntegrator(integ)}
	if cfg.Reference != "" {
		opts = append(opts, physics.WithReference(cfg.Reference))
	}

	eng, err := physics.New(bodies, dt, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", cfg.Name, err)
	}
	return eng, nil
}

// Factory returns a dynamo.Factory that builds fresh engines for cfg.
func Factory(cfg *config.Config) dynamo.Factory {
	return func(dt float64) (dynamo.System, error) {
		return Build(cfg, dt)
	}
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.simulator.Run(ctx, e.RunConfig())
}

// RunConfig converts the scenario's run parameters for the driver.
func (e *Experiment) RunConfig() dynamo.Config {
	return dynamo.Config{
		Iterations:    e.cfg.Iterations,
		SampleEvery:   e.cfg.SampleEvery,
		RecordEvery:   e.cfg.RecordEvery,
		ValidateState: true,
	}
}

// Info describes the run for storage.
func (e *Experiment) Info() storage.RunInfo {
	return storage.RunInfo{
		Scenario:   e.cfg.Name,
		Iterations: e.cfg.Iterations,
		TimeStep:   e.cfg.TimeStep,
		Solver:     e.engine.Solver().Name(),
		Integrator: e.engine.Integrator().Name(),
		Reference:  e.engine.Reference().Name,
	}
}
