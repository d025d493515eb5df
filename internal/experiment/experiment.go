package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/liquidsim/internal/config"
	"github.com/san-kum/liquidsim/internal/sim"
)

// Experiment wires a configured scene to a simulator.
type Experiment struct {
	cfg       *config.Config
	scene     *Scene
	simulator *sim.Simulator
	logger    *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{cfg: cfg, logger: logger}
}

// Setup builds the scene and attaches metrics. A nil metrics slice uses the
// registry defaults.
func (e *Experiment) Setup(r *Registry, metrics []sim.Metric) error {
	scene, err := r.Build(e.cfg.Scene, e.cfg, e.logger)
	if err != nil {
		return err
	}
	if metrics == nil {
		metrics = r.DefaultMetrics(e.cfg.Scene)
	}

	e.scene = scene
	e.simulator = sim.New(scene.System, scene.World, scene.Source)
	e.simulator.SetLogger(e.logger)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		Seed:          e.cfg.Seed,
		SampleEvery:   e.cfg.Output.SampleEvery,
		ValidateState: true,
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Scene() *Scene { return e.scene }
