package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/liquidsim/internal/config"
	"github.com/san-kum/liquidsim/internal/experiment"
	"github.com/san-kum/liquidsim/internal/viz"
)

var (
	dataDir   string
	verbose   bool
	logFormat string

	sceneName   string
	configFile  string
	preset      string
	dt          float64
	duration    float64
	seed        int64
	radius      float64
	maxCount    int
	sampleEvery int
	snapshot    bool
	streamPath  string

	theme   string
	gifPath string

	benchRuns     int
	benchParallel int

	tuneParams []string
	tuneMetric string

	plotField string
	outPath   string
	particles bool
	energy    bool
	svgScale  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "liquidsim",
		Short: "particle fluid simulation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(os.Stderr, verbose, logFormat))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the scene picker when no command given
			return viz.RunInteractive(experiment.NewRegistry(), quietLogger(), theme)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text|json)")
	rootCmd.Flags().StringVar(&theme, "theme", "ocean", "color theme")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store the results",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "record a frame every n steps")
	runCmd.Flags().BoolVar(&snapshot, "snapshot", false, "store the final particle state")
	runCmd.Flags().StringVar(&streamPath, "stream", "", "also append frames to this csv file while running")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "ocean", "color theme")
	liveCmd.Flags().StringVar(&gifPath, "gif", "liquidsim.gif", "recording output path")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark a scene",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchRuns, "runs", 4, "ensemble size")
	benchCmd.Flags().IntVar(&benchParallel, "parallel", 0, "concurrent runs (0 = no limit)")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search scene parameters to minimize a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneScene,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "grid axis as name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "max_speed", "metric to minimize")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every step of a scenario file and store the runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a run's kinetic energy",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "", "series to plot (default: all)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames or particles to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportCSVCmd.Flags().BoolVar(&particles, "particles", false, "export the final particle snapshot instead of frames")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final particle snapshot as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().BoolVar(&energy, "energy", false, "plot the kinetic energy series instead")
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 200, "pixels per world unit")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list available scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			out := cmd.OutOrStdout()
			for _, name := range registry.ListScenes() {
				fmt.Fprintf(out, "  %-16s %s\n", name, registry.Describe(name))
			}
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Fprintf(out, "no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file for a scene and preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, sceneName)
			if err != nil {
				return err
			}
			return config.Save(args[0], cfg)
		},
	}
	initConfigCmd.Flags().StringVar(&sceneName, "scene", config.DefaultScene, "scene")
	initConfigCmd.Flags().StringVar(&preset, "preset", "", "preset to start from")

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, tuneCmd, batchCmd, analyzeCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, scenesCmd, presetsCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addSceneFlags registers the flags that shape a scene's config.
func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "particle radius")
	cmd.Flags().IntVar(&maxCount, "max-count", 0, "particle limit (0 = unlimited)")
}

func newLogger(w io.Writer, verbose bool, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// quietLogger is used while a full screen view owns the terminal.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
