package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultIterations   = 5000
	DefaultTimeStep     = 100.0
	DefaultQuadrantSize = 3e10
	DefaultSampleEvery  = 51
	DefaultRecordEvery  = 10
	DefaultSolver       = "direct"
	DefaultIntegrator   = "euler"
	DefaultTheta        = 0.5
)

type Config struct {
	Name         string       `yaml:"name"`
	Iterations   int          `yaml:"iterations"`
	TimeStep     float64      `yaml:"time_step"`
	QuadrantSize float64      `yaml:"quadrant_size"`
	SampleEvery  int          `yaml:"sample_every"`
	RecordEvery  int          `yaml:"record_every"`
	Reference    string       `yaml:"reference,omitempty"`
	Solver       string       `yaml:"solver"`
	Theta        float64      `yaml:"theta"`
	Integrator   string       `yaml:"integrator"`
	Bodies       []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Name        string    `yaml:"name"`
	Mass        float64   `yaml:"mass"`
	OrbitRadius float64   `yaml:"orbit_radius"`
	Radius      float64   `yaml:"radius"`
	RadiusBias  float64   `yaml:"radius_bias,omitempty"`
	Color       []float64 `yaml:"color,flow"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:         "untitled",
		Iterations:   DefaultIterations,
		TimeStep:     DefaultTimeStep,
		QuadrantSize: DefaultQuadrantSize,
		SampleEvery:  DefaultSampleEvery,
		RecordEvery:  DefaultRecordEvery,
		Solver:       DefaultSolver,
		Theta:        DefaultTheta,
		Integrator:   DefaultIntegrator,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode writes cfg as yaml to w.
func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks the run parameters. Body physics (mass, names, reference)
// is checked by the engine when it is built.
func (c *Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.SampleEvery <= 0 {
		return fmt.Errorf("sample_every must be positive, got %d", c.SampleEvery)
	}
	if c.RecordEvery <= 0 {
		return fmt.Errorf("record_every must be positive, got %d", c.RecordEvery)
	}
	if c.QuadrantSize <= 0 {
		return fmt.Errorf("quadrant_size must be positive, got %g", c.QuadrantSize)
	}
	for _, b := range c.Bodies {
		if len(b.Color) != 0 && len(b.Color) != 3 {
			return fmt.Errorf("body %q: color needs 3 components, got %d", b.Name, len(b.Color))
		}
	}
	return nil
}
