// Package automation runs scripted batches of scenes described in YAML.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/liquidsim/internal/config"
	"github.com/san-kum/liquidsim/internal/experiment"
	"github.com/san-kum/liquidsim/internal/sim"
	"github.com/san-kum/liquidsim/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Zero Duration and Dt keep the preset values.
type ScenarioStep struct {
	Scene    string             `yaml:"scene"`
	Preset   string             `yaml:"preset"`
	Duration float64            `yaml:"duration"`
	Dt       float64            `yaml:"dt"`
	Seed     int64              `yaml:"seed"`
	Params   map[string]float64 `yaml:"params"`
	Snapshot bool               `yaml:"snapshot"`
}

// StepResult pairs a finished step with its stored run ID. RunID is empty
// when no store was given.
type StepResult struct {
	Step   ScenarioStep
	RunID  string
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the run configuration for a step.
func (s ScenarioStep) Config() (*config.Config, error) {
	preset := s.Preset
	if preset == "" {
		preset = "default"
	}
	cfg := config.GetPreset(s.Scene, preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %s/%s", s.Scene, preset)
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	for k, v := range s.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	cfg.Output.Snapshot = s.Snapshot
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order, saving each run to st when st is
// not nil. It stops at the first failing step and returns what finished.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "scene", step.Scene)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg, logger)
		if err := exp.Setup(registry, nil); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if st != nil {
			meta := storage.RunMetadata{
				Scene:    cfg.Scene,
				Preset:   step.Preset,
				Seed:     cfg.Seed,
				Dt:       cfg.Dt,
				Duration: cfg.Duration,
				Radius:   cfg.Particle.Radius,
			}
			if sr.RunID, err = st.Save(meta, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			if cfg.Output.Snapshot {
				snap := storage.Capture(exp.Scene().System, exp.Simulator().Time())
				if err := st.SaveSnapshot(sr.RunID, snap); err != nil {
					return results, fmt.Errorf("step %d snapshot: %w", i+1, err)
				}
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
