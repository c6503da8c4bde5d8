package experiment

import (
	"fmt"
	"os"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/scenario"
)

var presetInfo = map[string]string{
	"mars":       "Mars with Phobos and Deimos",
	"earth_moon": "Earth and the Moon",
	"binary":     "star with a low-mass companion",
}

// Describe returns a one-line description of a preset.
func Describe(name string) string {
	return presetInfo[name]
}

// Descriptions returns the description of every preset.
func Descriptions() map[string]string {
	out := make(map[string]string, len(presetInfo))
	for k, v := range presetInfo {
		out[k] = v
	}
	return out
}

// Resolve loads a scenario file when one exists at nameOrPath and falls back
// to a preset of that name otherwise.
func Resolve(nameOrPath string) (*config.Config, error) {
	if _, err := os.Stat(nameOrPath); err == nil {
		return scenario.Load(nameOrPath)
	}
	if cfg := config.GetPreset(nameOrPath); cfg != nil {
		return cfg, nil
	}
	return nil, fmt.Errorf("unknown scenario %q: not a file or preset (presets: %v)", nameOrPath, config.ListPresets())
}
