package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/inertia/internal/optim"
)

var (
	dataDir string
	verbose bool
	// Motion flags, shared by run, live and sweep
	keyframe     float64
	velocity     float64
	power        float64
	timeConstant float64
	restDelta    float64
	restSpeed    float64
	minBound     float64
	maxBound     float64
	modifyTarget string
	step         float64
	maxDuration  float64
	// Config file
	configFile string
	// Preset name
	preset  string
	runName string
	// Export
	svgOut       string
	keyframesOut string
	// Sweep
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepCount int
	workers    int
	// Monte Carlo
	perturbation float64
	trials       int
	seed         int64
	showTrials   bool
	// Tune
	gridSpecs []string
	minimize  string
	// Phase plot size
	phaseWidth  int
	phaseHeight int
)

// main registers the inertia commands and exits with status 1 if the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "inertia",
		Short:         "inertial decay and boundary bounce generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".inertia", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "pregenerate a trajectory and store it",
		Args:  cobra.NoArgs,
		RunE:  runInertia,
	}
	addMotionFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to preset or config name)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&svgOut, "svg", "", "write the trajectory as SVG to this path")
	exportCmd.Flags().StringVar(&keyframesOut, "keyframes", "", "write playback keyframes as JSON to this path")

	liveCmd := &cobra.Command{
		Use:   "live [run_id]",
		Short: "play a trajectory back in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addMotionFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "pregenerate a range of one parameter concurrently",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addMotionFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "velocity", "parameter to sweep (keyframe, velocity, power, time_constant, rest_delta, rest_speed, min, max)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", -1000, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1000, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 9, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent generators (0 = GOMAXPROCS)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "jitter one parameter and count boundary bounces",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addMotionFlags(monteCarloCmd)
	monteCarloCmd.Flags().StringVar(&sweepParam, "param", "velocity", "parameter to perturb")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 100, "maximum perturbation either side")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	monteCarloCmd.Flags().BoolVar(&showTrials, "show", false, "print every trial")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent generators (0 = GOMAXPROCS)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters minimizing a run metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addMotionFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "parameter grid as name=from:to:count (repeatable)")
	tuneCmd.Flags().StringVar(&minimize, "minimize", optim.DurationMetric, "metric to minimize (duration_ms, overshoot, peak_speed, travel, settle_ms)")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "concurrent generators (0 = GOMAXPROCS)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run and store every step of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "value/velocity phase plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&phaseWidth, "width", 70, "plot width")
	phaseCmd.Flags().IntVar(&phaseHeight, "height", 20, "plot height")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, liveCmd, presetsCmd, sweepCmd, monteCarloCmd, tuneCmd, batchCmd, phaseCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addMotionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&keyframe, "keyframe", 0, "starting value")
	f.Float64Var(&velocity, "velocity", 0, "initial velocity (units/s)")
	f.Float64Var(&power, "power", 0.8, "amplitude scale")
	f.Float64Var(&timeConstant, "time-constant", 350, "decay time constant (ms)")
	f.Float64Var(&restDelta, "rest-delta", 0.5, "rest displacement tolerance")
	f.Float64Var(&restSpeed, "rest-speed", 1, "rest speed tolerance for the bounce spring (units/s)")
	f.Float64Var(&minBound, "min", 0, "lower bound")
	f.Float64Var(&maxBound, "max", 0, "upper bound")
	f.StringVar(&modifyTarget, "modify-target", "", "target transform (none, snap:<grid>, scale:<k>)")
	f.Float64Var(&step, "step", 10, "sample step (ms)")
	f.Float64Var(&maxDuration, "max-duration", 20000, "sampling cap (ms)")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
