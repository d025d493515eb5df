package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/san-kum/liquidsim/internal/particle"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSystem() *particle.System {
	def := particle.DefaultDef()
	def.Radius = 0.1
	def.Gravity = particle.Vec{Y: -10}
	def.Logger = quietLogger()
	s := particle.New(def, nil)
	for i := 0; i < 4; i++ {
		s.CreateParticle(particle.ParticleDef{Position: particle.Vec{X: float64(i) * 0.15}})
	}
	return s
}

func newTestSimulator(world Stepper, source Source) *Simulator {
	s := New(testSystem(), world, source)
	s.SetLogger(quietLogger())
	return s
}

type countingWorld struct{ steps int }

func (w *countingWorld) Step(float64) { w.steps++ }

type dripSource struct{}

func (dripSource) Emit(s *particle.System, _ float64) int {
	if s.CreateParticle(particle.ParticleDef{Position: particle.Vec{Y: 5}}) == particle.InvalidIndex {
		return 0
	}
	return 1
}

func TestSimulatorRun(t *testing.T) {
	world := &countingWorld{}
	sim := newTestSimulator(world, nil)

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0, SampleEvery: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 10 || world.steps != 10 {
		t.Errorf("expected 10 steps, got %d (world %d)", result.StepsTaken, world.steps)
	}
	if len(result.Frames) != 11 {
		t.Errorf("expected 11 frames, got %d", len(result.Frames))
	}
	final, _ := result.Final()
	if final.Step != 10 || final.Count != 4 {
		t.Errorf("unexpected final frame %+v", final)
	}
	if final.KineticEnergy <= 0 {
		t.Error("falling particles should have kinetic energy")
	}
}

func TestSimulatorSampling(t *testing.T) {
	sim := newTestSimulator(nil, nil)

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0, SampleEvery: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Frames) != 3 {
		t.Errorf("expected frames at steps 0, 5, 10, got %d", len(result.Frames))
	}
	times := result.Series(func(f Frame) float64 { return float64(f.Step) })
	if times[1] != 5 || times[2] != 10 {
		t.Errorf("unexpected sample steps %v", times)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := newTestSimulator(nil, nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative sampling", Config{Dt: 0.1, Duration: 1.0, SampleEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(s *particle.System, _ float64) {
	m.count++
	m.sum += float64(s.Count())
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := newTestSimulator(nil, nil)
	metric := &testMetric{count: 99}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Metrics["test"] != 4 {
		t.Errorf("expected mean count 4, got %v", result.Metrics["test"])
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
	if len(result.Frames) != 0 {
		t.Errorf("sampling disabled, got %d frames", len(result.Frames))
	}
}

func TestSimulatorSource(t *testing.T) {
	sim := newTestSimulator(nil, dripSource{})

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if result.Emitted != 5 || sim.System().Count() != 9 {
		t.Errorf("emitted %d, count %d", result.Emitted, sim.System().Count())
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := newTestSimulator(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Error("canceled run should return an empty partial result")
	}
}

func TestStepWrapsSolverErrors(t *testing.T) {
	sim := newTestSimulator(nil, nil)

	_, err := sim.Step(-1)
	if !errors.Is(err, ErrSolverPanic) || !errors.Is(err, particle.ErrNegativeStep) {
		t.Fatalf("expected wrapped ErrNegativeStep, got %v", err)
	}
	var simErr SimError
	if !errors.As(err, &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimError at step 0, got %v", err)
	}
}

func TestRunWithCallback(t *testing.T) {
	sim := newTestSimulator(nil, nil)
	calls := 0
	err := sim.RunWithCallback(context.Background(), Config{Dt: 0.1, Duration: 1.0}, func(s *particle.System, t float64) bool {
		calls++
		return calls < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 || sim.Steps() != 2 {
		t.Errorf("calls %d steps %d", calls, sim.Steps())
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 150, Message: "test error", Wrapped: ErrInvalidState}
	expected := "step 150 (t=1.5000): test error"
	if err.Error() != expected {
		t.Errorf("SimError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("SimError should unwrap to its cause")
	}
}

func TestPositionPool(t *testing.T) {
	pool := NewPositionPool()
	src := []particle.Vec{{X: 1}, {X: 2}, {X: 3}}

	cp := pool.GetAndCopy(src)
	if len(cp) != 3 || cp[2].X != 3 {
		t.Fatalf("GetAndCopy failed: got %v", cp)
	}
	cp[0].X = 99
	if src[0].X == 99 {
		t.Error("GetAndCopy did not create independent copy")
	}
	pool.Put(cp)

	if got := pool.Get(2000); len(got) != 0 || cap(got) < 2000 {
		t.Errorf("Get(2000) returned len %d cap %d", len(got), cap(got))
	}
}

func TestDefaultConfig(t *testing.T) {
	if err := validateConfig(DefaultConfig()); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
