package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/liquidsim/internal/particle"
)

// Simulator drives a particle system and the rigid world it collides with at
// a fixed step.
type Simulator struct {
	system    *particle.System
	world     Stepper
	source    Source
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger

	steps int
	time  float64
}

// New returns a simulator. world and source may be nil.
func New(system *particle.System, world Stepper, source Source) *Simulator {
	return &Simulator{
		system:    system,
		world:     world,
		source:    source,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric)       { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)   { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *slog.Logger) { s.logger = l }
func (s *Simulator) System() *particle.System { return s.system }
func (s *Simulator) Time() float64            { return s.time }
func (s *Simulator) Steps() int               { return s.steps }
func (s *Simulator) Metrics() []Metric        { return s.metrics }

// Step emits, solves particles, then steps the rigid world. It returns the
// number of particles emitted.
func (s *Simulator) Step(dt float64) (int, error) {
	emitted := 0
	if s.source != nil {
		emitted = s.source.Emit(s.system, dt)
	}
	if err := s.solve(dt); err != nil {
		return emitted, SimError{Step: s.steps, Time: s.time, Message: err.Error(), Wrapped: err}
	}
	if s.world != nil {
		s.world.Step(dt)
	}
	s.steps++
	s.time += dt
	for _, m := range s.metrics {
		m.Observe(s.system, s.time)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.system, s.time)
	}
	return emitted, nil
}

func (s *Simulator) solve(dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrSolverPanic, e)
				return
			}
			err = fmt.Errorf("%w: %v", ErrSolverPanic, r)
		}
	}()
	s.system.Solve(dt)
	return nil
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	if cfg.SampleEvery > 0 {
		result.Frames = make([]Frame, 0, steps/cfg.SampleEvery+1)
		result.Frames = append(result.Frames, s.frame())
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Info("run started", "steps", steps, "dt", cfg.Dt, "particles", s.system.Count())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		emitted, err := s.Step(cfg.Dt)
		result.Emitted += emitted
		if err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		result.StepsTaken++

		if cfg.ValidateState && !validState(s.system) {
			err := SimError{Step: s.steps, Time: s.time, Message: "invalid state (NaN/Inf)", Wrapped: ErrInvalidState}
			result.Errors = append(result.Errors, err)
			break
		}

		if cfg.SampleEvery > 0 && result.StepsTaken%cfg.SampleEvery == 0 {
			result.Frames = append(result.Frames, s.frame())
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Info("run finished", "steps", result.StepsTaken, "particles", s.system.Count(), "errors", len(result.Errors))
	return result, nil
}

// RunWithCallback steps until the duration elapses or callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(*particle.System, float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	end := s.time + cfg.Duration
	for s.time < end-cfg.Dt/2 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(s.system, s.time) {
			return nil
		}

		if _, err := s.Step(cfg.Dt); err != nil {
			return err
		}

		if cfg.ValidateState && !validState(s.system) {
			return SimError{Step: s.steps, Time: s.time, Message: "invalid state (NaN/Inf)", Wrapped: ErrInvalidState}
		}
	}

	return nil
}

// Frame summarizes the current state.
func (s *Simulator) Frame() Frame { return s.frame() }

func (s *Simulator) frame() Frame {
	sys := s.system
	return Frame{
		Step:            s.steps,
		Time:            s.time,
		Count:           sys.Count(),
		Groups:          sys.GroupCount(),
		Contacts:        len(sys.Contacts()),
		BodyContacts:    len(sys.BodyContacts()),
		Pairs:           len(sys.Pairs()),
		Triads:          len(sys.Triads()),
		KineticEnergy:   sys.KineticEnergy(),
		CollisionEnergy: sys.ComputeCollisionEnergy(),
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample interval cannot be negative", ErrInvalidConfig)
	}
	return nil
}

func validState(sys *particle.System) bool {
	for _, p := range sys.Positions() {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}
