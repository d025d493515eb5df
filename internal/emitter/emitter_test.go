package emitter

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/san-kum/liquidsim/internal/particle"
)

func newSystem(maxCount int) *particle.System {
	def := particle.DefaultDef()
	def.Radius = 0.05
	def.MaxCount = maxCount
	def.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return particle.New(def, nil)
}

func TestRadialRate(t *testing.T) {
	s := newSystem(0)
	e := NewRadial(particle.Vec{X: 1, Y: 2}, 30, 1)
	e.HalfSize = particle.Vec{X: 0.5, Y: 0.25}

	total := 0
	for i := 0; i < 60; i++ {
		total += e.Emit(s, 1.0/60)
	}

	if total < 29 || total > 30 {
		t.Errorf("expected about 30 particles in one second, got %d", total)
	}
	if s.Count() != total || e.Created() != total {
		t.Errorf("count %d created %d total %d", s.Count(), e.Created(), total)
	}
	for _, p := range s.Positions() {
		dx, dy := (p.X-1)/0.5, (p.Y-2)/0.25
		if dx*dx+dy*dy > 1+1e-9 {
			t.Fatalf("particle %v outside the emitter", p)
		}
	}
}

func TestRadialVelocity(t *testing.T) {
	s := newSystem(0)
	e := NewRadial(particle.Vec{}, 100, 7)
	e.HalfSize = particle.Vec{X: 1, Y: 1}
	e.Velocity = particle.Vec{Y: 3}
	e.Speed = 2

	e.Emit(s, 0.1)

	for i, v := range s.Velocities() {
		p := s.Positions()[i]
		radial := particle.Vec{X: v.X, Y: v.Y - 3}
		if math.Abs(math.Hypot(radial.X, radial.Y)-2) > 1e-9 {
			t.Fatalf("radial speed %v", radial)
		}
		if radial.X*p.X+radial.Y*p.Y < -1e-9 {
			t.Fatalf("particle %d moves inward", i)
		}
	}
}

func TestRadialDeterministic(t *testing.T) {
	a, b := newSystem(0), newSystem(0)
	ea, eb := NewRadial(particle.Vec{}, 50, 42), NewRadial(particle.Vec{}, 50, 42)
	ea.HalfSize, eb.HalfSize = particle.Vec{X: 1, Y: 1}, particle.Vec{X: 1, Y: 1}
	ea.Emit(a, 0.5)
	eb.Emit(b, 0.5)

	for i := range a.Positions() {
		if a.Positions()[i] != b.Positions()[i] {
			t.Fatal("same seed produced different particles")
		}
	}
}

func TestRadialDropsWhenFull(t *testing.T) {
	s := newSystem(10)
	e := NewRadial(particle.Vec{}, 100, 1)

	n := e.Emit(s, 0.25)

	if n != 10 || s.Count() != 10 {
		t.Errorf("expected 10 created, got %d (count %d)", n, s.Count())
	}
	if e.Dropped() != 15 {
		t.Errorf("expected 15 dropped, got %d", e.Dropped())
	}
}

func TestRadialFillsGroup(t *testing.T) {
	s := newSystem(0)
	g := s.CreateParticleGroup(particle.GroupDef{Positions: []particle.Vec{{X: 5}}})
	e := NewRadial(particle.Vec{}, 10, 1)
	e.Group = g
	e.Flags = particle.ViscousParticle

	e.Emit(s, 0.5)

	if g.Count() != 6 {
		t.Errorf("expected group of 6, got %d", g.Count())
	}
	if s.Flags()[g.Last()-1]&particle.ViscousParticle == 0 {
		t.Error("emitted particles should carry the emitter flags")
	}
}

func TestPID(t *testing.T) {
	tests := []struct {
		name     string
		measured float64
		wantSign float64
	}{
		{"below target", 0, 1},
		{"above target", 2, -1},
		{"on target", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewPID(10, 0, 0, 1)
			u := ctrl.Update(tt.measured, 0.1)
			if math.Copysign(1, u)*tt.wantSign < 0 || (tt.wantSign == 0 && u != 0) {
				t.Errorf("Update(%v) = %v, want sign %v", tt.measured, u, tt.wantSign)
			}
		})
	}
}

func TestPIDIntegralAndReset(t *testing.T) {
	ctrl := NewPID(0, 1, 0, 1)
	ctrl.Update(0, 0.5)
	if u := ctrl.Update(0, 0.5); math.Abs(u-1) > 1e-12 {
		t.Errorf("integral after 1s of unit error = %v, want 1", u)
	}
	ctrl.Unwind(0.5)
	if u := ctrl.Update(1, 0.5); math.Abs(u-0.5) > 1e-12 {
		t.Errorf("after unwind = %v, want 0.5", u)
	}
	ctrl.Reset()
	if u := ctrl.Update(1, 0.5); u != 0 {
		t.Errorf("after reset = %v, want 0", u)
	}
}

func TestRegulatedHoldsCount(t *testing.T) {
	s := newSystem(0)
	e := NewRadial(particle.Vec{}, 0, 3)
	e.HalfSize = particle.Vec{X: 2, Y: 2}
	r := NewRegulated(e, 40, 600)

	for i := 0; i < 120; i++ {
		r.Emit(s, 1.0/60)
	}

	if s.Count() < 30 || s.Count() > 60 {
		t.Errorf("expected count near 40, got %d", s.Count())
	}
}
