package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrBadTrajectory = errors.New("storage: malformed trajectory file")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was configured.
type RunInfo struct {
	Scenario   string
	Iterations int
	TimeStep   float64
	Solver     string
	Integrator string
	Reference  string
}

type BodyInfo struct {
	Name   string  `json:"name"`
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

type RunMetadata struct {
	ID          string                `json:"id"`
	Scenario    string                `json:"scenario"`
	Timestamp   time.Time             `json:"timestamp"`
	Iterations  int                   `json:"iterations"`
	StepsTaken  int                   `json:"steps_taken"`
	TimeStep    float64               `json:"time_step"`
	Solver      string                `json:"solver"`
	Integrator  string                `json:"integrator"`
	Reference   string                `json:"reference,omitempty"`
	Bodies      []BodyInfo            `json:"bodies"`
	Metrics     map[string]float64    `json:"metrics"`
	EnergyDrift float64               `json:"energy_drift"`
	Energy      []dynamo.EnergySample `json:"energy"`
}

// Save writes the run under <base>/<scenario>_<unix>. A numeric suffix is
// added when that directory already exists.
func (s *Store) Save(info RunInfo, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.makeRunDir(info.Scenario, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scenario:    info.Scenario,
		Timestamp:   now,
		Iterations:  info.Iterations,
		StepsTaken:  result.StepsTaken,
		TimeStep:    info.TimeStep,
		Solver:      info.Solver,
		Integrator:  info.Integrator,
		Reference:   info.Reference,
		Metrics:     result.Metrics,
		EnergyDrift: result.EnergyDrift,
		Energy:      result.Energy,
	}
	if len(result.Frames) > 0 {
		for _, b := range result.Frames[0].Bodies {
			meta.Bodies = append(meta.Bodies, BodyInfo{Name: b.Name, Mass: b.Mass, Radius: b.Radius, Color: b.Color.Hex()})
		}
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result.Frames); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) makeRunDir(scenario string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}

	base := fmt.Sprintf("%s_%d", sanitize(scenario), now.Unix())
	runID := base
	for n := 2; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
	if name == "" {
		return "run"
	}
	return name
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTrajectory(path string, frames []dynamo.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, frames); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes frames as step,time then x,y,vx,vy per body.
func WriteCSV(out io.Writer, frames []dynamo.Frame) error {
	w := csv.NewWriter(out)

	if len(frames) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"step", "time"}
	for _, b := range frames[0].Bodies {
		header = append(header, b.Name+"_x", b.Name+"_y", b.Name+"_vx", b.Name+"_vy")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, f := range frames {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(f.Step), formatFloat(f.Time))
		for _, b := range f.Bodies {
			row = append(row,
				formatFloat(b.Position.X), formatFloat(b.Position.Y),
				formatFloat(b.Velocity.X), formatFloat(b.Velocity.Y))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// List returns the metadata of every stored run, oldest first. Directories
// without readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// TrajectoryPath returns the CSV file of a run.
func (s *Store) TrajectoryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, trajectoryFile)
}

// LoadTrajectory reads the recorded frames of a run. Mass, radius and color
// come from the run metadata.
func (s *Store) LoadTrajectory(runID string) ([]dynamo.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(s.TrajectoryPath(runID))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	frames, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	for _, f := range frames {
		for i := range f.Bodies {
			if i >= len(meta.Bodies) || meta.Bodies[i].Name != f.Bodies[i].Name {
				continue
			}
			info := meta.Bodies[i]
			f.Bodies[i].Mass = info.Mass
			f.Bodies[i].Radius = info.Radius
			if c, err := colorful.Hex(info.Color); err == nil {
				f.Bodies[i].Color = c
			}
		}
	}

	return frames, nil
}

// ReadCSV parses the format written by WriteCSV.
func ReadCSV(in io.Reader) ([]dynamo.Frame, error) {
	r := csv.NewReader(in)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []dynamo.Frame{}, nil
	}

	header := records[0]
	if len(header) < 2 || header[0] != "step" || header[1] != "time" || (len(header)-2)%4 != 0 {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrBadTrajectory, header)
	}

	names := make([]string, 0, (len(header)-2)/4)
	for i := 2; i < len(header); i += 4 {
		name, ok := strings.CutSuffix(header[i], "_x")
		if !ok {
			return nil, fmt.Errorf("%w: column %q", ErrBadTrajectory, header[i])
		}
		names = append(names, name)
	}

	frames := make([]dynamo.Frame, 0, len(records)-1)
	for row, record := range records[1:] {
		values := make([]float64, len(record))
		for j := 1; j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", ErrBadTrajectory, row+2, err)
			}
			values[j] = v
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadTrajectory, row+2, err)
		}

		f := dynamo.Frame{Step: step, Time: values[1], Bodies: make([]body.Body, len(names))}
		for k, name := range names {
			c := 2 + 4*k
			f.Bodies[k] = body.Body{
				Name:     name,
				Position: r2.Vec{X: values[c], Y: values[c+1]},
				Velocity: r2.Vec{X: values[c+2], Y: values[c+3]},
			}
		}
		frames = append(frames, f)
	}

	return frames, nil
}
