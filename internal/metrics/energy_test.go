package metrics

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/san-kum/liquidsim/internal/particle"
)

func newSystem() *particle.System {
	def := particle.DefaultDef()
	def.Radius = 0.5
	def.Gravity = particle.Vec{Y: -10}
	def.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return particle.New(def, nil)
}

func TestEnergy(t *testing.T) {
	s := newSystem()
	s.CreateParticle(particle.ParticleDef{Position: particle.Vec{Y: 0}, Velocity: particle.Vec{X: 2}})
	s.CreateParticle(particle.ParticleDef{Position: particle.Vec{X: 5, Y: 3}})
	m := s.ParticleMass()

	e := NewEnergy()
	e.Observe(s, 0)

	expected := 0.5*m*4 + m*10*3
	if math.Abs(e.Value()-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, e.Value())
	}

	e.Reset()
	if e.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestDissipation(t *testing.T) {
	s := newSystem()
	s.CreateParticle(particle.ParticleDef{Position: particle.Vec{}, Velocity: particle.Vec{X: 4}})
	s.CreateParticle(particle.ParticleDef{Position: particle.Vec{X: 0.5}, Velocity: particle.Vec{X: -4}})
	s.SetGravity(particle.Vec{})

	d := NewDissipation()
	d.Observe(s, 0)
	for i := 0; i < 5; i++ {
		s.Solve(1.0 / 60)
		d.Observe(s, float64(i+1)/60)
	}

	if d.Value() <= 0 || d.Value() > 1 {
		t.Errorf("colliding particles should lose energy, got %v", d.Value())
	}
}

func TestStability(t *testing.T) {
	s := newSystem()
	s.CreateParticle(particle.ParticleDef{Velocity: particle.Vec{X: 3}})
	m := NewStability(5)

	m.Observe(s, 0)
	s.ApplyLinearImpulse(0, particle.Vec{X: 10 * s.ParticleMass()})
	m.Observe(s, 1)

	if m.Value() != 0.5 {
		t.Errorf("expected half the samples stable, got %v", m.Value())
	}
	m.Reset()
	if m.Value() != 1 {
		t.Error("no samples should read as stable")
	}
}

func TestMaxSpeed(t *testing.T) {
	s := newSystem()
	m := NewMaxSpeed()
	m.Observe(s, 0)
	if m.Value() != 0 {
		t.Error("empty system should have no speed")
	}

	s.CreateParticle(particle.ParticleDef{Velocity: particle.Vec{X: 3, Y: 4}})
	s.CreateParticle(particle.ParticleDef{Position: particle.Vec{X: 5}, Velocity: particle.Vec{X: 1}})
	m.Observe(s, 0)
	if m.Value() != 5 {
		t.Errorf("expected 5, got %v", m.Value())
	}
}

func TestContactMetrics(t *testing.T) {
	s := newSystem()
	s.SetGravity(particle.Vec{})
	s.CreateParticle(particle.ParticleDef{Position: particle.Vec{}})
	s.CreateParticle(particle.ParticleDef{Position: particle.Vec{X: 0.5}})
	s.CreateParticle(particle.ParticleDef{Position: particle.Vec{X: 20}})
	s.Solve(0)

	load := NewContactLoad()
	load.Observe(s, 0)
	if math.Abs(load.Value()-2.0/3) > 1e-9 {
		t.Errorf("expected 2/3 contacts per particle, got %v", load.Value())
	}

	spread := NewDensitySpread()
	spread.Observe(s, 0)
	if spread.Value() <= 0 {
		t.Error("uneven weights should have a positive spread")
	}
}

func TestDefaultNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
