package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/inertia/internal/analysis"
	"github.com/san-kum/inertia/internal/automation"
	"github.com/san-kum/inertia/internal/config"
	"github.com/san-kum/inertia/internal/experiment"
	"github.com/san-kum/inertia/internal/export"
	"github.com/san-kum/inertia/internal/optim"
	"github.com/san-kum/inertia/internal/physics"
	"github.com/san-kum/inertia/internal/sim"
	"github.com/san-kum/inertia/internal/storage"
	"github.com/san-kum/inertia/internal/viz"
)

// resolveConfig layers preset, config file and explicitly set flags, in
// that order, and names the run after its source.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, name := config.DefaultConfig(), "inertia"

	if preset != "" {
		p, err := config.LookupPreset(preset)
		if err != nil {
			return nil, "", fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg, name = p, preset
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	// Flags are the YAML names with dashes.
	f := cmd.Flags()
	for _, flag := range []string{
		"keyframe", "velocity", "power", "time-constant", "rest-delta",
		"rest-speed", "min", "max", "step", "max-duration",
	} {
		if !f.Changed(flag) {
			continue
		}
		v, err := f.GetFloat64(flag)
		if err != nil {
			return nil, "", err
		}
		if err := cfg.Set(strings.ReplaceAll(flag, "-", "_"), v); err != nil {
			return nil, "", err
		}
	}
	if f.Changed("modify-target") {
		cfg.ModifyTarget = modifyTarget
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

// generate pregenerates cfg with the default run metrics attached.
func generate(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*physics.Inertia, *sim.Timeline, error) {
	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	tl, err := exp.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return exp.Model(), tl, nil
}

func guides(cfg *config.Config, rest float64) []float64 {
	var g []float64
	if cfg != nil && cfg.Min != nil {
		g = append(g, *cfg.Min)
	}
	if cfg != nil && cfg.Max != nil {
		g = append(g, *cfg.Max)
	}
	return append(g, rest)
}

func runInertia(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if runName != "" {
		name = runName
	}

	st := storage.New(dataDir, logger)
	if err := st.Init(); err != nil {
		return err
	}

	model, tl, err := generate(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	runID, err := st.Save(name, cfg, model.GetParams(), tl)
	if err != nil {
		return err
	}

	fmt.Println(summary(runID, model, tl))
	return nil
}

func summary(runID string, model *physics.Inertia, tl *sim.Timeline) string {
	var s strings.Builder
	s.WriteString(viz.Title.Render(runID) + "\n\n")
	s.WriteString(viz.Row("samples", tl.Len()) + "\n")
	s.WriteString(viz.Row("duration", fmt.Sprintf("%.2fs", tl.Seconds())) + "\n")
	s.WriteString(viz.Row("first", tl.Values[0]) + "\n")
	s.WriteString(viz.Row("final", tl.Final()) + "\n")
	s.WriteString(viz.Row("target", model.Target()) + "\n")
	if at, ok := model.CrossingTime(); ok {
		s.WriteString(viz.Row("handoff", fmt.Sprintf("%.1fms", at)) + "\n")
	}
	if !tl.Done {
		s.WriteString(viz.StatusPaused.Render("did not come to rest") + "\n")
	}

	names := make([]string, 0, len(tl.Metrics))
	for name := range tl.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	s.WriteString("\n")
	for _, name := range names {
		s.WriteString(viz.Row(name, tl.Metrics[name]) + "\n")
	}

	s.WriteString("\n" + viz.Sparkline(tl.Velocities, 40))
	return viz.GlassPanel.Render(s.String())
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, nil)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tSAMPLES\tFINAL\tREST")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%g\t%v\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seconds,
			run.Samples,
			run.Final,
			run.Done,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, nil)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	tl, err := st.LoadTimeline(runID)
	if err != nil {
		return err
	}

	if tl.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", tl.Len())

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{fmt.Sprintf("value over %.2fs", tl.Seconds()), tl.Values},
		{"velocity (units/s)", tl.Velocities},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, nil)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	if svgOut != "" || keyframesOut != "" {
		tl, err := st.LoadTimeline(runID)
		if err != nil {
			return err
		}
		if svgOut != "" {
			opts := export.DefaultSVGOptions()
			opts.Guides = guides(meta.Config, meta.Final)
			if err := writeFile(svgOut, func(f *os.File) error { return export.WriteSVG(f, tl, opts) }); err != nil {
				return err
			}
		}
		if keyframesOut != "" {
			if err := writeFile(keyframesOut, func(f *os.File) error { return export.WriteJSON(f, meta.Name, tl) }); err != nil {
				return err
			}
		}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}

func runLive(cmd *cobra.Command, args []string) error {
	var (
		name   string
		tl     *sim.Timeline
		marks  []float64
		logger = zap.NewNop()
	)

	if len(args) == 1 {
		st := storage.New(dataDir, logger)
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		if tl, err = st.LoadTimeline(args[0]); err != nil {
			return err
		}
		name, marks = meta.Name, guides(meta.Config, meta.Final)
	} else {
		cfg, n, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		model, t, err := generate(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		name, tl, marks = n, t, guides(cfg, model.Target())
	}

	if tl.Len() == 0 {
		return fmt.Errorf("no data to play")
	}

	p := tea.NewProgram(viz.NewPlayer(name, tl, marks), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err := p.Run()
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		line := fmt.Sprintf("  %-12s keyframe=%g velocity=%g power=%g time_constant=%g",
			name, p.Keyframe, p.Velocity, p.Power, p.TimeConstant)
		if p.Min != nil {
			line += fmt.Sprintf(" min=%g", *p.Min)
		}
		if p.Max != nil {
			line += fmt.Sprintf(" max=%g", *p.Max)
		}
		if p.ModifyTarget != "" {
			line += " modify_target=" + p.ModifyTarget
		}
		fmt.Println(line)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	base, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	out, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      base,
		ParamName: sweepParam,
		ParamMin:  sweepFrom,
		ParamMax:  sweepTo,
		NumSteps:  sweepCount,
		Workers:   workers,
	}, logger)
	if err != nil {
		return err
	}

	fmt.Printf("sweep %s over %s\n\n", sweepParam, name)
	return printOutcomes(strings.ToUpper(sweepParam), out)
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	base, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	out, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:         base,
		ParamName:    sweepParam,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         seed,
		Workers:      workers,
	}, logger)
	if err != nil {
		return err
	}

	bounced, unsettled := automation.MonteCarloStats(out)
	fmt.Printf("monte carlo %s ±%g over %s\n", sweepParam, perturbation, name)
	fmt.Printf("trials: %d  bounced: %d  unsettled: %d\n\n", len(out), bounced, unsettled)
	if !showTrials {
		return nil
	}
	return printOutcomes(strings.ToUpper(sweepParam), out)
}

func printOutcomes(header string, out []automation.Outcome) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTARGET\tHANDOFF\tDURATION\tSAMPLES\tFINAL\n", header)
	for _, o := range out {
		handoff := "-"
		if o.Bounced {
			handoff = fmt.Sprintf("%.1fms", o.HandoffMs)
		}
		fmt.Fprintf(w, "%g\t%g\t%s\t%.2fs\t%d\t%g\n",
			o.ParamValue, o.Target, handoff, o.Seconds, o.Samples, o.Final)
	}
	return w.Flush()
}

// parseGrid reads "name=from:to:count" into a parameter and its values.
func parseGrid(spec string) (string, []float64, error) {
	name, rng, ok := strings.Cut(spec, "=")
	if !ok {
		return "", nil, fmt.Errorf("grid %q: expected name=from:to:count", spec)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("grid %q: expected name=from:to:count", spec)
	}
	from, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", spec, err)
	}
	to, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", spec, err)
	}
	count, err := strconv.Atoi(parts[2])
	if err != nil || count < 1 {
		return "", nil, fmt.Errorf("grid %q: count must be a positive integer", spec)
	}
	sweep := automation.ParameterSweep{ParamMin: from, ParamMax: to, NumSteps: count}
	return name, sweep.Values(), nil
}

func runTune(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	base, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(gridSpecs) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}

	params := make([]string, len(gridSpecs))
	ranges := make([][]float64, len(gridSpecs))
	for i, spec := range gridSpecs {
		if params[i], ranges[i], err = parseGrid(spec); err != nil {
			return err
		}
	}

	best, all, err := optim.NewGridSearch(params, ranges, workers, logger).Search(cmd.Context(), base, minimize)
	if err != nil {
		return err
	}

	fmt.Printf("tuned %s over %d candidates, minimizing %s\n\n", name, len(all), minimize)
	for _, p := range params {
		fmt.Println(viz.Row(p, best.Params[p]))
	}
	fmt.Println(viz.Row(minimize, best.Value))
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir, logger)
	if err := st.Init(); err != nil {
		return err
	}

	ids, err := automation.RunScenario(cmd.Context(), sc, st, logger)
	for _, id := range ids {
		fmt.Printf("run id: %s\n", id)
	}
	return err
}

func phasePlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, nil)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tl, err := st.LoadTimeline(args[0])
	if err != nil {
		return err
	}
	if tl.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Println("value → / velocity ↑   S start, R rest")
	fmt.Println()
	fmt.Print(analysis.NewPhasePortrait(tl).ToASCII(phaseWidth, phaseHeight))

	crossings := analysis.Crossings(tl, meta.Final)
	fmt.Printf("\ncrossings of %g: %d\n", meta.Final, len(crossings))
	for _, at := range crossings {
		fmt.Printf("  %.1fms\n", at)
	}
	return nil
}
