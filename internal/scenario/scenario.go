// Package scenario loads simulation setups, either from the plain text
// scenario format or from YAML config files, and builds their bodies.
//
// The text format is a title line, the run parameters, a "Celestial bodies:"
// marker and six lines per body:
//
//	Mars system
//	Iterations: 5000
//	TimeStep: 10
//	QuadrantSize: 3e7
//	Celestial bodies:
//	Name: Mars
//	Color: 1, 0.3, 0.1
//	Mass: 6.4171e23
//	BodyRadius: 3.3895e6
//	RadiusBias: 0
//	OrbitRadius: 0
//
// Spaces are ignored everywhere except in the title, and blank lines are
// skipped.
package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/config"
)

var ErrMalformed = errors.New("scenario: ill-formatted file")

// ParseError reports the line that could not be parsed.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

const bodiesMarker = "Celestialbodies:"

var bodyKeys = [...]string{"Name", "Color", "Mass", "BodyRadius", "RadiusBias", "OrbitRadius"}

type line struct {
	num  int
	raw  string
	text string
}

func (l line) fail(format string, args ...interface{}) error {
	return &ParseError{Line: l.num, Text: l.raw, Err: fmt.Errorf("%w: "+format, append([]interface{}{ErrMalformed}, args...)...)}
}

// split returns the key and value of a "Key:value" line.
func (l line) split() (string, string, error) {
	key, value, ok := strings.Cut(l.text, ":")
	if !ok || key == "" {
		return "", "", l.fail("expected key: value")
	}
	return key, value, nil
}

func (l line) float(value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, l.fail("invalid number %q", value)
	}
	return f, nil
}

// Load reads a scenario, choosing the format by file extension.
func Load(path string) (*config.Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.Load(path)
	default:
		return ParseFile(path)
	}
}

func ParseFile(path string) (*config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads the text scenario format. Settings the format has no field for
// keep their config defaults.
func Parse(r io.Reader) (*config.Config, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}

	cfg := config.DefaultConfig()
	cfg.Name = strings.TrimSpace(lines[0].raw)
	lines = lines[1:]

	seen := make(map[string]bool)
	for len(lines) > 0 && lines[0].text != bodiesMarker {
		l := lines[0]
		lines = lines[1:]

		key, value, err := l.split()
		if err != nil {
			return nil, err
		}
		switch key {
		case "Iterations":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, l.fail("invalid iteration count %q", value)
			}
			cfg.Iterations = n
		case "TimeStep":
			if cfg.TimeStep, err = l.float(value); err != nil {
				return nil, err
			}
		case "QuadrantSize":
			if cfg.QuadrantSize, err = l.float(value); err != nil {
				return nil, err
			}
		default:
			return nil, l.fail("unknown parameter %q", key)
		}
		seen[key] = true
	}

	for _, key := range []string{"Iterations", "TimeStep", "QuadrantSize"} {
		if !seen[key] {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformed, key)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: missing %q section", ErrMalformed, "Celestial bodies:")
	}
	lines = lines[1:]

	for len(lines) > 0 {
		if len(lines) < len(bodyKeys) {
			return nil, lines[0].fail("incomplete body, need %d lines, got %d", len(bodyKeys), len(lines))
		}
		b, err := parseBody(lines[:len(bodyKeys)])
		if err != nil {
			return nil, err
		}
		cfg.Bodies = append(cfg.Bodies, b)
		lines = lines[len(bodyKeys):]
	}

	return cfg, nil
}

func parseBody(block []line) (config.BodyConfig, error) {
	values := make([]string, len(bodyKeys))
	for i, l := range block {
		key, value, err := l.split()
		if err != nil {
			return config.BodyConfig{}, err
		}
		if key != bodyKeys[i] {
			return config.BodyConfig{}, l.fail("expected %s, got %s", bodyKeys[i], key)
		}
		values[i] = value
	}

	b := config.BodyConfig{Name: values[0]}
	if b.Name == "" {
		return b, block[0].fail("empty body name")
	}

	parts := strings.Split(values[1], ",")
	if len(parts) != 3 {
		return b, block[1].fail("color needs 3 components, got %d", len(parts))
	}
	for _, p := range parts {
		c, err := block[1].float(p)
		if err != nil {
			return b, err
		}
		b.Color = append(b.Color, c)
	}

	numbers := []*float64{&b.Mass, &b.Radius, &b.RadiusBias, &b.OrbitRadius}
	for i, dst := range numbers {
		f, err := block[i+2].float(values[i+2])
		if err != nil {
			return b, err
		}
		*dst = f
	}

	return b, nil
}

func readLines(r io.Reader) ([]line, error) {
	var lines []line
	sc := bufio.NewScanner(r)
	num := 0
	for sc.Scan() {
		num++
		raw := sc.Text()
		text := strings.Join(strings.Fields(raw), "")
		if text == "" {
			continue
		}
		lines = append(lines, line{num: num, raw: raw, text: text})
	}
	return lines, sc.Err()
}

// Bodies builds the initial bodies of cfg. Each body sits on the x-axis at its
// orbit radius; its display radius is Radius plus RadiusBias.
func Bodies(cfg *config.Config) ([]body.Body, error) {
	bodies := make([]body.Body, 0, len(cfg.Bodies))
	for _, bc := range cfg.Bodies {
		color, err := Color(bc.Color)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}
		bodies = append(bodies, body.New(bc.Name, bc.Mass, bc.OrbitRadius, bc.Radius+bc.RadiusBias, color))
	}
	return bodies, nil
}

// Color converts an [r, g, b] triple in [0, 1] to a color. An empty triple
// is white.
func Color(rgb []float64) (colorful.Color, error) {
	if len(rgb) == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}, nil
	}
	if len(rgb) != 3 {
		return colorful.Color{}, fmt.Errorf("%w: color needs 3 components, got %d", ErrMalformed, len(rgb))
	}
	c := colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}
	if !c.IsValid() {
		return colorful.Color{}, fmt.Errorf("%w: color %v outside [0, 1]", ErrMalformed, rgb)
	}
	return c, nil
}

// Write emits cfg in the text scenario format.
func Write(w io.Writer, cfg *config.Config) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, cfg.Name)
	fmt.Fprintf(bw, "Iterations: %d\n", cfg.Iterations)
	fmt.Fprintf(bw, "TimeStep: %s\n", formatFloat(cfg.TimeStep))
	fmt.Fprintf(bw, "QuadrantSize: %s\n", formatFloat(cfg.QuadrantSize))
	fmt.Fprintln(bw, "Celestial bodies:")
	for _, b := range cfg.Bodies {
		rgb := b.Color
		if len(rgb) == 0 {
			rgb = []float64{1, 1, 1}
		}
		if len(rgb) != 3 {
			return fmt.Errorf("body %q: %w: color needs 3 components", b.Name, ErrMalformed)
		}
		fmt.Fprintf(bw, "\nName: %s\n", b.Name)
		fmt.Fprintf(bw, "Color: %s, %s, %s\n", formatFloat(rgb[0]), formatFloat(rgb[1]), formatFloat(rgb[2]))
		fmt.Fprintf(bw, "Mass: %s\n", formatFloat(b.Mass))
		fmt.Fprintf(bw, "BodyRadius: %s\n", formatFloat(b.Radius))
		fmt.Fprintf(bw, "RadiusBias: %s\n", formatFloat(b.RadiusBias))
		fmt.Fprintf(bw, "OrbitRadius: %s\n", formatFloat(b.OrbitRadius))
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
