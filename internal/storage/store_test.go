package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	red := colorful.Color{R: 1}
	frame := func(step int, x float64) dynamo.Frame {
		return dynamo.Frame{
			Step: step,
			Time: float64(step) * 100,
			Bodies: []body.Body{
				{Name: "Mars", Mass: 6.4171e23, Radius: 3e8, Color: red},
				{Name: "Phobos", Mass: 1e16, Position: r2.Vec{X: x, Y: 0.1}, Velocity: r2.Vec{Y: 1.0 / 3}},
			},
		}
	}

	return &dynamo.Result{
		Frames:      []dynamo.Frame{frame(0, 2.2e10), frame(1, 2.2e10-1e-3)},
		Energy:      []dynamo.EnergySample{{Step: 1, Time: 100, Kinetic: 1.5e3}},
		Metrics:     map[string]float64{"energy_drift": 1e-6},
		EnergyDrift: 2e-6,
		StepsTaken:  1,
	}
}

func sampleInfo() RunInfo {
	return RunInfo{Scenario: "mars", Iterations: 1, TimeStep: 100, Solver: "direct", Integrator: "euler", Reference: "Mars"}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())

	runID, err := st.Save(sampleInfo(), sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "mars_"), runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)

	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "mars", meta.Scenario)
	assert.Equal(t, 100.0, meta.TimeStep)
	assert.Equal(t, "Mars", meta.Reference)
	assert.Equal(t, 1, meta.StepsTaken)
	assert.Equal(t, 1e-6, meta.Metrics["energy_drift"])
	assert.Equal(t, 2e-6, meta.EnergyDrift)
	assert.Equal(t, []dynamo.EnergySample{{Step: 1, Time: 100, Kinetic: 1.5e3}}, meta.Energy)
	require.Len(t, meta.Bodies, 2)
	assert.Equal(t, BodyInfo{Name: "Mars", Mass: 6.4171e23, Radius: 3e8, Color: "#ff0000"}, meta.Bodies[0])
}

func TestStoreTrajectoryRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	want := sampleResult()

	runID, err := st.Save(sampleInfo(), want)
	require.NoError(t, err)

	frames, err := st.LoadTrajectory(runID)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	for i, f := range frames {
		assert.Equal(t, want.Frames[i].Step, f.Step)
		assert.Equal(t, want.Frames[i].Time, f.Time)
		for j, b := range f.Bodies {
			exp := want.Frames[i].Bodies[j]
			assert.Equal(t, exp.Name, b.Name)
			assert.Equal(t, exp.Position, b.Position)
			assert.Equal(t, exp.Velocity, b.Velocity)
			assert.Equal(t, exp.Mass, b.Mass)
			assert.Equal(t, exp.Radius, b.Radius)
		}
	}
	assert.Equal(t, "#ff0000", frames[0].Bodies[0].Color.Hex())
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(sampleInfo(), sampleResult())
	require.NoError(t, err)

	runDir := filepath.Join(tmpDir, runID)
	assert.FileExists(t, filepath.Join(runDir, "metadata.json"))
	assert.FileExists(t, filepath.Join(runDir, "trajectory.csv"))

	data, err := os.ReadFile(st.TrajectoryPath(runID))
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, "step,time,Mars_x,Mars_y,Mars_vx,Mars_vy,Phobos_x,Phobos_y,Phobos_vx,Phobos_vy", header)
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save(sampleInfo(), sampleResult())
	require.NoError(t, err)
	second, err := st.Save(sampleInfo(), sampleResult())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// stray directories are ignored
	require.NoError(t, os.Mkdir(filepath.Join(st.baseDir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
}

func TestSaveSanitizesScenario(t *testing.T) {
	st := New(t.TempDir())
	info := sampleInfo()
	info.Scenario = "Mars and ../Phobos"

	runID, err := st.Save(info, sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "Mars_and____Phobos_"), runID)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad header", "time,step\n0,0\n"},
		{"partial body", "step,time,a_x,a_y\n0,0,1,2\n"},
		{"bad column", "step,time,a,a_y,a_vx,a_vy\n0,0,1,2,3,4\n"},
		{"bad number", "step,time,a_x,a_y,a_vx,a_vy\n0,0,1,two,3,4\n"},
		{"bad step", "step,time,a_x,a_y,a_vx,a_vy\n0.5,0,1,2,3,4\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrBadTrajectory)
		})
	}
}

func TestReadCSVEmpty(t *testing.T) {
	frames, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestExportJSON(t *testing.T) {
	result := sampleResult()
	meta := &RunMetadata{ID: "mars_1", Scenario: "mars"}

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, meta, result.Frames))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))

	assert.Equal(t, "mars_1", data.Run.ID)
	require.Len(t, data.Frames, 2)
	assert.Equal(t, 1, data.Frames[1].Step)
	assert.Equal(t, BodyState{Name: "Phobos", X: 2.2e10 - 1e-3, Y: 0.1, VY: 1.0 / 3}, data.Frames[1].Bodies[1])
}
