package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/scenario"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running scenario", "name", cfg.Name, "bodies", len(cfg.Bodies), "iterations", cfg.Iterations, "dt", cfg.TimeStep, "solver", cfg.Solver)
	start := time.Now()

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(exp.Info(), result)
	if err != nil {
		return err
	}

	if runErr != nil {
		logger.Error("simulation halted, partial run saved", "run", runID, "steps", result.StepsTaken, "err", runErr)
		return runErr
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-24s %.6g\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_, err := viz.Run(newPicker())
		return err
	}

	cfg, err := loadScenario(cmd, args[0])
	if err != nil {
		return err
	}

	m, err := liveModel(cfg)
	if err != nil {
		return err
	}
	final, err := viz.Run(m)
	if err != nil {
		return err
	}
	if lm, ok := final.(viz.Model); ok {
		if lm.Err() != nil {
			return fmt.Errorf("simulation halted after %d ticks: %w", lm.Ticks(), lm.Err())
		}
		logger.Debug("live view closed", "ticks", lm.Ticks())
	}
	return nil
}

type compareRow struct {
	dt     float64
	result *dynamo.Result
}

func compareTimeSteps(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args[0])
	if err != nil {
		return err
	}

	dts := timeSteps
	if len(dts) == 0 {
		dts = []float64{cfg.TimeStep, cfg.TimeStep / 2, cfg.TimeStep / 4}
	}
	for _, dt := range dts {
		if dt <= 0 {
			return fmt.Errorf("%w: got %g", dynamo.ErrInvalidTimeStep, dt)
		}
	}
	total := span
	if total <= 0 {
		total = float64(cfg.Iterations) * cfg.TimeStep
	}

	runCfg := dynamo.DefaultConfig()
	runCfg.SampleEvery = cfg.SampleEvery
	runCfg.RecordEvery = math.MaxInt32

	sweep := dynamo.NewSweep(experiment.Factory(cfg), dts).WithMetrics(func() []dynamo.Metric {
		return []dynamo.Metric{metrics.NewKineticEnergy(), metrics.NewMomentum()}
	})

	logger.Info("comparing time steps", "scenario", cfg.Name, "span_s", total, "dts", dts)
	start := time.Now()
	results, err := sweep.Run(cmd.Context(), total, runCfg)
	if err != nil {
		return err
	}
	logger.Debug("sweep finished", "elapsed", time.Since(start))

	rows := make([]compareRow, len(dts))
	finest := 0
	for i := range dts {
		rows[i] = compareRow{dt: dts[i], result: results[i]}
		if dts[i] < dts[finest] {
			finest = i
		}
	}
	ref := rows[finest].result.Final

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tENERGY DRIFT\tFINAL KE (kJ)\tMOMENTUM DRIFT\tDIVERGENCE (m)")
	for _, row := range rows {
		fmt.Fprintf(w, "%g\t%d\t%.3e\t%.0f\t%.3e\t%.3e\n",
			row.dt,
			row.result.StepsTaken,
			row.result.EnergyDrift,
			row.result.Metrics["kinetic_energy"]/1000,
			row.result.Metrics["momentum_drift"],
			analysis.Divergence(row.result.Final, ref),
		)
	}
	return w.Flush()
}

func convertScenario(cmd *cobra.Command, args []string) error {
	cfg, err := experiment.Resolve(args[0])
	if err != nil {
		return err
	}

	switch format {
	case "yaml":
		return config.Encode(os.Stdout, cfg)
	case "text":
		return scenario.Write(os.Stdout, cfg)
	default:
		return fmt.Errorf("unknown format %q (yaml, text)", format)
	}
}
