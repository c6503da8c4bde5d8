package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tBODIES\tSTEPS\tDT\tSOLVER\tINTEG\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\t%gs\t%s\t%s\t%.2e\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Bodies),
			run.StepsTaken,
			run.Iterations,
			run.TimeStep,
			run.Solver,
			run.Integrator,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

// loadRun reads a run's metadata and recorded frames.
func loadRun(runID string) (*storage.RunMetadata, []dynamo.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no recorded frames", runID)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n\n", meta.ID, meta.Scenario)

	if len(meta.Energy) > 1 {
		ke := make([]float64, len(meta.Energy))
		for i, s := range meta.Energy {
			ke[i] = s.Kinetic / 1000
		}
		fmt.Println(asciigraph.Plot(ke,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("total kinetic energy (kJ)"),
		))
		fmt.Println()
	}

	for i, b := range frames[0].Bodies {
		xs := make([]float64, len(frames))
		for j, f := range frames {
			xs[j] = f.Bodies[i].Position.X
		}
		if flat(xs) {
			continue
		}
		fmt.Println(asciigraph.Plot(xs,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s x (m)", b.Name)),
		))
		fmt.Println()
	}

	return nil
}

func flat(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("run %s has too few frames to analyze", meta.ID)
	}

	name, around := bodyName, aroundName
	bodies := frames[0].Bodies
	if around == "" {
		around = meta.Reference
	}
	if around == "" {
		around = bodies[0].Name
	}
	if name == "" {
		for _, b := range bodies {
			if b.Name != around {
				name = b.Name
				break
			}
		}
	}
	i, j := body.Find(bodies, name), body.Find(bodies, around)
	if i < 0 {
		return fmt.Errorf("body %q not found in run %s", name, meta.ID)
	}
	if j < 0 {
		return fmt.Errorf("body %q not found in run %s", around, meta.ID)
	}

	orbit, err := analysis.Apsides(frames, name, around)
	if err != nil {
		return err
	}

	rel := make([]float64, len(frames))
	for k, f := range frames {
		rel[k] = f.Bodies[i].Position.X - f.Bodies[j].Position.X
	}
	spacing := frames[1].Time - frames[0].Time

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Scenario)
	fmt.Printf("orbit of %s around %s over %d frames\n\n", name, around, len(frames))
	fmt.Printf("  periapsis:     %.4e m\n", orbit.Periapsis)
	fmt.Printf("  apoapsis:      %.4e m\n", orbit.Apoapsis)
	fmt.Printf("  eccentricity:  %.4f\n", orbit.Eccentricity)

	period, err := analysis.OrbitalPeriod(rel, spacing)
	switch {
	case errors.Is(err, analysis.ErrNoPeriod):
		fmt.Println("  period:        not resolved (run shorter than one orbit?)")
	case err != nil:
		return err
	default:
		fmt.Printf("  period:        %.4e s (%s)\n", period, time.Duration(period*float64(time.Second)).Round(time.Second))
	}

	ps := analysis.PowerSpectrum(rel)
	if n := len(ps) / 4; n > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps[:n],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (%s x relative to %s)", name, around)),
		))
	}

	return nil
}

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(out, frames); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(out, meta, frames); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if svgWidth <= 0 || svgHeight <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", svgWidth, svgHeight)
	}

	path := outputPath
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(export.TrajectorySVG(frames, svgWidth, svgHeight)), 0644); err != nil {
		return err
	}

	logger.Info("wrote trajectory image", "path", path, "frames", len(frames), "bounds_m", math.Round(orbitSpan(frames)))
	return nil
}

// orbitSpan returns the largest coordinate magnitude across all frames.
func orbitSpan(frames []dynamo.Frame) float64 {
	span := 0.0
	for _, f := range frames {
		span = math.Max(span, body.Bounds(f.Bodies))
	}
	return span
}
