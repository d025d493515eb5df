package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/liquidsim/internal/analysis"
	"github.com/san-kum/liquidsim/internal/export"
	"github.com/san-kum/liquidsim/internal/sim"
	"github.com/san-kum/liquidsim/internal/storage"
)

// series are the frame columns plot and export-svg understand.
var series = []struct {
	name  string
	field func(sim.Frame) float64
}{
	{"kinetic_energy", func(f sim.Frame) float64 { return f.KineticEnergy }},
	{"collision_energy", func(f sim.Frame) float64 { return f.CollisionEnergy }},
	{"count", func(f sim.Frame) float64 { return float64(f.Count) }},
	{"contacts", func(f sim.Frame) float64 { return float64(f.Contacts) }},
	{"body_contacts", func(f sim.Frame) float64 { return float64(f.BodyContacts) }},
	{"groups", func(f sim.Frame) float64 { return float64(f.Groups) }},
}

func frameSeries(frames []sim.Frame, field func(sim.Frame) float64) []float64 {
	r := sim.Result{Frames: frames}
	return r.Series(field)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tPRESET\tTIME\tDURATION\tDT\tSTEPS\tPARTICLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
			run.Particles,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "scene: %s\n", meta.Scene)
	fmt.Fprintf(out, "samples: %d\n\n", len(frames))

	plotted := 0
	for _, s := range series {
		if plotField != "" && s.name != plotField {
			continue
		}
		graph := asciigraph.Plot(frameSeries(frames, s.field),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.name),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("unknown field: %s", plotField)
	}
	return nil
}

// output returns the file named by --out, or w when it is empty.
func output(w io.Writer) (io.Writer, func() error, error) {
	if outPath == "" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func loadSnapshot(st *storage.Store, runID string) (*storage.Snapshot, error) {
	snap, err := st.LoadSnapshot(runID)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return nil, fmt.Errorf("%w (rerun with --snapshot)", err)
	}
	return snap, err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	final, err := st.LoadSnapshot(runID)
	if err != nil && !errors.Is(err, storage.ErrNoSnapshot) {
		return err
	}

	result := &sim.Result{Frames: frames, Metrics: meta.Metrics, StepsTaken: meta.Steps}
	data := storage.NewExportData(meta.Scene, meta.Dt, meta.Duration, result, final)
	if outPath != "" {
		return storage.ExportJSONFile(outPath, data)
	}
	return storage.ExportJSON(cmd.OutOrStdout(), data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	w, closeOut, err := output(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	if particles {
		snap, err := loadSnapshot(st, runID)
		if err != nil {
			return err
		}
		return snap.WriteCSV(w)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	return storage.ExportFramesCSV(w, frames)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	if outPath == "" {
		outPath = runID + ".svg"
	}
	w, closeOut, err := output(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	if energy {
		frames, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		svg := export.SeriesToSVG(frameSeries(frames, series[0].field), 800, 300, "#00ff88")
		if svg == "" {
			return fmt.Errorf("not enough frames to plot")
		}
		_, err = io.WriteString(w, svg)
		return err
	}

	snap, err := loadSnapshot(st, runID)
	if err != nil {
		return err
	}
	opts := export.DefaultOptions()
	opts.Scale = svgScale
	if err := export.WriteSVG(w, snap, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) < 4 {
		return fmt.Errorf("not enough frames to analyze (have %d)", len(frames))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frequency analysis: %s\n", meta.ID)
	fmt.Fprintf(out, "scene: %s\n\n", meta.Scene)

	ke := frameSeries(frames, series[0].field)
	times := frameSeries(frames, func(f sim.Frame) float64 { return f.Time })
	sampleDt := times[1] - times[0]

	ps := analysis.PowerSpectrum(ke)
	graph := asciigraph.Plot(ps[1:],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (kinetic energy)"),
	)
	fmt.Fprintln(out, graph)
	fmt.Fprintln(out)

	freq, _, err := analysis.DominantFrequency(ke, sampleDt)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Fprintf(out, "period: %.3f s\n", 1.0/freq)
	}
	if t, ok := analysis.SettlingTime(times, ke, 0.05); ok {
		fmt.Fprintf(out, "settled (5%% of peak energy) at: %.3f s\n", t)
	} else {
		fmt.Fprintln(out, "kinetic energy did not settle")
	}
	return nil
}
