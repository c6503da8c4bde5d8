package config

import "sort"

var Presets = map[string]*Config{
	"mars": {
		Name: "mars", Iterations: 5000, TimeStep: 10, QuadrantSize: 3e7,
		SampleEvery: 51, RecordEvery: 10, Solver: "direct", Theta: DefaultTheta, Integrator: "euler",
		Bodies: []BodyConfig{
			{Name: "Mars", Mass: 6.4171e23, Radius: 3.3895e6, Color: []float64{1, 0.3, 0.1}},
			{Name: "Phobos", Mass: 1.0659e16, OrbitRadius: 9.376e6, Radius: 1.1267e4, RadiusBias: 6e5, Color: []float64{0.6, 0.6, 0.6}},
			{Name: "Deimos", Mass: 1.4762e15, OrbitRadius: 2.3463e7, Radius: 6.2e3, RadiusBias: 6e5, Color: []float64{0.8, 0.7, 0.5}},
		},
	},
	"earth_moon": {
		Name: "earth_moon", Iterations: 24000, TimeStep: 100, QuadrantSize: 5e8,
		SampleEvery: 51, RecordEvery: 20, Solver: "direct", Theta: DefaultTheta, Integrator: "euler",
		Bodies: []BodyConfig{
			{Name: "Earth", Mass: 5.972e24, Radius: 6.371e6, RadiusBias: 1e7, Color: []float64{0.2, 0.4, 1}},
			{Name: "Moon", Mass: 7.342e22, OrbitRadius: 3.844e8, Radius: 1.7374e6, RadiusBias: 5e6, Color: []float64{0.8, 0.8, 0.8}},
		},
	},
	"binary": {
		Name: "binary", Iterations: 20000, TimeStep: 3600, QuadrantSize: 3e11,
		SampleEvery: 51, RecordEvery: 20, Solver: "direct", Theta: DefaultTheta, Integrator: "leapfrog",
		Bodies: []BodyConfig{
			{Name: "Primary", Mass: 2e30, Radius: 7e8, RadiusBias: 5e9, Color: []float64{1, 0.9, 0.4}},
			{Name: "Companion", Mass: 1e29, OrbitRadius: 1.5e11, Radius: 2e8, RadiusBias: 4e9, Color: []float64{1, 0.4, 0.3}},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Bodies = make([]BodyConfig, len(p.Bodies))
	for i, b := range p.Bodies {
		b.Color = append([]float64(nil), b.Color...)
		cfg.Bodies[i] = b
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
