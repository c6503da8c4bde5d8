package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	iterations  int
	timeStep    float64
	solverName  string
	theta       float64
	integrator  string
	reference   string
	sampleEvery int
	recordEvery int

	// live view
	speed       int
	trailLength int

	// run inspection
	bodyName   string
	aroundName string
	outputPath string
	svgWidth   int
	svgHeight  int

	// compare
	timeSteps []float64
	span      float64

	// convert
	format string

	logger *log.Logger
)

// main registers the gravsim commands and flags and executes the root
// command. With no subcommand it opens the scenario picker.
func main() {
	rootCmd := &cobra.Command{
		Use:           "gravsim",
		Short:         "gravitational n-body simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := viz.Run(newPicker())
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario file or preset and record it",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "animate a scenario in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&speed, "speed", 1, "engine ticks per frame")
	liveCmd.Flags().IntVar(&trailLength, "trail", 400, "trail length in points")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot kinetic energy and body tracks",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate orbital period and apsides",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&bodyName, "body", "", "orbiting body (default: second body)")
	analyzeCmd.Flags().StringVar(&aroundName, "around", "", "central body (default: run reference)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw run orbits to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")

	compareCmd := &cobra.Command{
		Use:   "compare [scenario]",
		Short: "run a scenario at several time steps and compare results",
		Args:  cobra.ExactArgs(1),
		RunE:  compareTimeSteps,
	}
	addScenarioFlags(compareCmd)
	compareCmd.Flags().Float64SliceVar(&timeSteps, "dts", nil, "time steps to compare (default: dt, dt/2, dt/4)")
	compareCmd.Flags().Float64Var(&span, "span", 0, "simulated seconds (default: iterations*dt)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-12s %s\n", name, experiment.Describe(name))
			}
			return nil
		},
	}

	convertCmd := &cobra.Command{
		Use:   "convert [scenario]",
		Short: "print a scenario as yaml or text",
		Args:  cobra.ExactArgs(1),
		RunE:  convertScenario,
	}
	convertCmd.Flags().StringVar(&format, "to", "yaml", "output format (yaml, text)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, compareCmd, presetsCmd, convertCmd)

	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = log.New(os.Stderr)
		}
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func setupLogger() error {
	level, err := log.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "gravsim",
	})
	return nil
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "number of ticks")
	cmd.Flags().Float64Var(&timeStep, "dt", config.DefaultTimeStep, "time step in seconds")
	cmd.Flags().StringVar(&solverName, "solver", config.DefaultSolver, "force solver (direct, parallel, barneshut)")
	cmd.Flags().Float64Var(&theta, "theta", config.DefaultTheta, "barnes-hut opening angle")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, leapfrog)")
	cmd.Flags().StringVar(&reference, "reference", "", "reference body for initial orbits (default: first body)")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "kinetic energy sampling interval in ticks")
	cmd.Flags().IntVar(&recordEvery, "record-every", config.DefaultRecordEvery, "frame recording interval in ticks")
}

// loadScenario resolves the scenario argument and applies flags the user set
// explicitly on top of it.
func loadScenario(cmd *cobra.Command, name string) (*config.Config, error) {
	cfg, err := experiment.Resolve(name)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("dt") {
		cfg.TimeStep = timeStep
	}
	if flags.Changed("solver") {
		cfg.Solver = solverName
	}
	if flags.Changed("theta") {
		cfg.Theta = theta
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("reference") {
		cfg.Reference = reference
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newPicker() viz.Picker {
	build := func(name string) (viz.Model, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return viz.Model{}, fmt.Errorf("unknown preset: %s", name)
		}
		return liveModel(cfg)
	}
	return viz.NewPicker(config.ListPresets(), experiment.Descriptions(), build)
}

func liveModel(cfg *config.Config) (viz.Model, error) {
	eng, err := experiment.Build(cfg, cfg.TimeStep)
	if err != nil {
		return viz.Model{}, err
	}

	opts := viz.DefaultOptions()
	opts.Title = cfg.Name
	opts.QuadrantSize = cfg.QuadrantSize
	opts.Iterations = cfg.Iterations
	opts.SampleEvery = cfg.SampleEvery
	if speed > 0 {
		opts.StepsPerTick = speed
	}
	if trailLength > 0 {
		opts.TrailLength = trailLength
	}
	return viz.NewModel(eng, opts), nil
}
