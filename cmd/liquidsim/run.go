package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/liquidsim/internal/automation"
	"github.com/san-kum/liquidsim/internal/config"
	"github.com/san-kum/liquidsim/internal/experiment"
	"github.com/san-kum/liquidsim/internal/optim"
	"github.com/san-kum/liquidsim/internal/particle"
	"github.com/san-kum/liquidsim/internal/sim"
	"github.com/san-kum/liquidsim/internal/storage"
	"github.com/san-kum/liquidsim/internal/viz"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")).Width(18)
)

func sceneArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// resolveConfig layers defaults, a preset, a config file and finally any
// flags the user set explicitly.
func resolveConfig(cmd *cobra.Command, scene string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if scene != "" {
		cfg.Scene = scene
	}

	if preset != "" {
		p := config.GetPreset(cfg.Scene, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scene))
		}
		cfg = p
	}

	// Config file overrides preset
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		if scene != "" {
			cfg.Scene = scene
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("radius") {
		cfg.Particle.Radius = radius
	}
	if flags.Changed("max-count") {
		cfg.Particle.MaxCount = maxCount
	}
	if flags.Changed("sample-every") {
		cfg.Output.SampleEvery = sampleEvery
	}
	if flags.Changed("snapshot") {
		cfg.Output.Snapshot = snapshot
	}
	if flags.Changed("data") || cfg.Output.Dir == "" {
		cfg.Output.Dir = dataDir
	}

	return cfg, cfg.Validate()
}

// frameStreamer appends a frame to a FrameLog every n steps.
type frameStreamer struct {
	log    *storage.FrameLog
	sim    *sim.Simulator
	every  int
	logger *slog.Logger
	failed bool
}

func (f *frameStreamer) OnStep(_ *particle.System, _ float64) {
	if f.failed || f.sim.Steps()%f.every != 0 {
		return
	}
	if err := f.log.Write(f.sim.Frame()); err != nil {
		f.logger.Error("frame stream stopped", "error", err)
		f.failed = true
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, sceneArg(args))
	if err != nil {
		return err
	}
	logger := slog.Default()

	st := storage.New(cfg.Output.Dir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(experiment.NewRegistry(), nil); err != nil {
		return err
	}

	if streamPath != "" {
		frames, err := storage.NewFrameLog(streamPath)
		if err != nil {
			return err
		}
		defer frames.Close()
		exp.Simulator().AddObserver(&frameStreamer{
			log:    frames,
			sim:    exp.Simulator(),
			every:  max(cfg.Output.SampleEvery, 1),
			logger: logger,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Scene:    cfg.Scene,
		Preset:   preset,
		Seed:     cfg.Seed,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Radius:   cfg.Particle.Radius,
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}
	if cfg.Output.Snapshot {
		snap := storage.Capture(exp.Scene().System, exp.Simulator().Time())
		if err := st.SaveSnapshot(runID, snap); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(cfg.Scene))
	fmt.Fprintln(out, labelStyle.Render("run id")+runID)
	fmt.Fprintln(out, labelStyle.Render("completed in")+elapsed.Round(time.Millisecond).String())
	fmt.Fprintln(out, labelStyle.Render("steps")+fmt.Sprint(result.StepsTaken))
	fmt.Fprintln(out, labelStyle.Render("particles")+fmt.Sprint(exp.Scene().System.Count()))
	if result.Emitted > 0 {
		fmt.Fprintln(out, labelStyle.Render("emitted")+fmt.Sprint(result.Emitted))
	}
	if len(result.Errors) > 0 {
		fmt.Fprintln(out, labelStyle.Render("errors")+fmt.Sprint(len(result.Errors)))
	}

	fmt.Fprintln(out, "\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	if len(args) == 0 && preset == "" && configFile == "" {
		return viz.RunInteractive(registry, quietLogger(), theme)
	}

	cfg, err := resolveConfig(cmd, sceneArg(args))
	if err != nil {
		return err
	}
	load := func() (*experiment.Experiment, error) {
		exp := experiment.New(cfg, quietLogger())
		return exp, exp.Setup(registry, nil)
	}

	m, err := viz.NewModel(cfg.Scene, load, cfg.Dt)
	if err != nil {
		return err
	}
	m.SetTheme(theme)
	m.SetGIFPath(gifPath)
	return viz.RunLive(m)
}

func benchScene(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	logger := quietLogger()
	if verbose {
		logger = slog.Default()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %s\n\n", base.Scene)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RADIUS\tPARTICLES\tSTEPS\tTIME\tSTEPS/SEC")

	for _, scale := range []float64{1.5, 1, 0.75} {
		cfg := *base
		cfg.Particle.Radius = base.Particle.Radius * scale
		exp := experiment.New(&cfg, logger)
		if err := exp.Setup(registry, nil); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%.4f\t%d\t%d\t%v\t%.0f\n",
			cfg.Particle.Radius, exp.Scene().System.Count(), result.StepsTaken,
			elapsed.Round(time.Millisecond), float64(result.StepsTaken)/elapsed.Seconds())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	factory := func(seed int64) (*sim.Simulator, error) {
		cfg := *base
		cfg.Seed = seed
		exp := experiment.New(&cfg, logger)
		if err := exp.Setup(registry, nil); err != nil {
			return nil, err
		}
		return exp.Simulator(), nil
	}
	ensemble := sim.NewEnsemble(factory, benchRuns, base.Seed)
	if benchParallel > 0 {
		ensemble.SetLimit(benchParallel)
	}

	simCfg := experiment.New(base, logger).SimConfig()
	start := time.Now()
	results, err := ensemble.Run(cmd.Context(), simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	total := 0
	for _, r := range results {
		total += r.StepsTaken
	}
	fmt.Fprintf(out, "\nensemble: %d runs, %d steps in %v (%.0f steps/sec)\n",
		len(results), total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	return nil
}

// parseParamSpec parses "name=v1,v2,..." into a grid axis.
func parseParamSpec(spec string) (string, []float64, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("bad --param %q, want name=v1,v2", spec)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param %q: %w", spec, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func tuneScene(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param is required (tunable: %s)", strings.Join(config.ParamNames(), ", "))
	}

	names := make([]string, 0, len(tuneParams))
	ranges := make([][]float64, 0, len(tuneParams))
	for _, spec := range tuneParams {
		name, values, err := parseParamSpec(spec)
		if err != nil {
			return err
		}
		if _, err := base.Param(name); err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	objective := optim.MetricObjective(base, experiment.NewRegistry(), tuneMetric, quietLogger())
	best, val, trials, err := optim.NewGridSearch(names, ranges).Search(cmd.Context(), objective)

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(tuneMetric))
	for _, trial := range trials {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", trial.Params[name])
		}
		if trial.Err != nil {
			fmt.Fprintf(w, "error: %v\n", trial.Err)
			continue
		}
		fmt.Fprintf(w, "%.6f\n", trial.Value)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nbest %s = %.6f at", tuneMetric, val)
	for _, name := range names {
		fmt.Fprintf(out, " %s=%g", name, best[name])
	}
	fmt.Fprintln(out)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), st, slog.Default())

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tPRESET\tSTEPS\tRUN ID")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", i+1, r.Step.Scene, r.Step.Preset, r.Result.StepsTaken, r.RunID)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}
