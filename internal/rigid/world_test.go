package rigid

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/san-kum/liquidsim/internal/particle"
)

func newSystem(w particle.World, gravity particle.Vec) *particle.System {
	def := particle.DefaultDef()
	def.Radius = 0.05
	def.Gravity = gravity
	def.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return particle.New(def, w)
}

func TestQueryAABBReportsFixtureOnce(t *testing.T) {
	w := NewWorld(particle.Vec{})
	w.CreateContainer(particle.Vec{X: -2, Y: 0}, particle.Vec{X: 2, Y: 4})

	calls := 0
	w.QueryAABB(func(f particle.Fixture) bool {
		calls++
		if f.ChildCount() != 3 {
			t.Errorf("children = %d, want 3", f.ChildCount())
		}
		return true
	}, particle.AABB{Lower: particle.Vec{X: -3, Y: -1}, Upper: particle.Vec{X: 3, Y: 5}})
	if calls != 1 {
		t.Errorf("fixture reported %d times", calls)
	}
}

func TestQueryAABBStops(t *testing.T) {
	w := NewWorld(particle.Vec{})
	w.CreateStaticBox(particle.Vec{X: -1}, 0.5, 0.5, 0)
	w.CreateStaticBox(particle.Vec{X: 1}, 0.5, 0.5, 0)

	calls := 0
	w.QueryAABB(func(particle.Fixture) bool {
		calls++
		return false
	}, particle.AABB{Lower: particle.Vec{X: -5, Y: -5}, Upper: particle.Vec{X: 5, Y: 5}})
	if calls != 1 {
		t.Errorf("callback ran %d times after returning false", calls)
	}
}

func TestBodiesAndFixtures(t *testing.T) {
	w := NewWorld(particle.Vec{})
	w.CreateContainer(particle.Vec{X: -2}, particle.Vec{X: 2, Y: 4})
	w.CreateDynamicBox(particle.Vec{Y: 1}, 0.5, 0.5, 1)
	ball := w.CreateDynamicCircle(particle.Vec{X: 1, Y: 2}, 0.25, 2)

	bodies := w.Bodies()
	if len(bodies) != 3 {
		t.Fatalf("bodies = %d, want 3", len(bodies))
	}
	dynamic := 0
	for _, b := range bodies {
		if len(b.Fixtures()) != 1 {
			t.Errorf("body at %v has %d fixtures", b.Position(), len(b.Fixtures()))
		}
		if b.Dynamic() {
			dynamic++
		}
	}
	if dynamic != 2 {
		t.Errorf("dynamic bodies = %d, want 2", dynamic)
	}

	if want := 2 * math.Pi * 0.25 * 0.25; math.Abs(ball.Mass()-want) > 1e-9 {
		t.Errorf("ball mass = %v, want %v", ball.Mass(), want)
	}
	f := ball.Fixtures()[0]
	if !f.TestPoint(particle.Vec{X: 1.1, Y: 2}) || f.TestPoint(particle.Vec{X: 1.3, Y: 2}) {
		t.Error("ball fixture does not cover its circle")
	}
	if d, n := f.ComputeDistance(particle.Vec{X: 2, Y: 2}, 0); math.Abs(d-0.75) > 1e-9 || math.Abs(n.X-1) > 1e-9 {
		t.Errorf("distance %v normal %v", d, n)
	}
}

func TestShapeSeedsGroup(t *testing.T) {
	s := newSystem(nil, particle.Vec{})
	g := s.CreateParticleGroup(particle.GroupDef{Shape: Box(0.5, 0.5), Position: particle.Vec{Y: 1}})
	if g.Count() == 0 {
		t.Fatal("box produced no particles")
	}
	for _, p := range s.Positions()[g.First():g.Last()] {
		if math.Abs(p.X) > 0.5+1e-9 || math.Abs(p.Y-1) > 0.5+1e-9 {
			t.Fatalf("particle %v outside box", p)
		}
	}

	line := s.CreateParticleGroup(particle.GroupDef{Shape: Edge(particle.Vec{}, particle.Vec{X: 1})})
	if line.Count() < 10 {
		t.Errorf("edge produced %d particles", line.Count())
	}
	for _, p := range s.Positions()[line.First():line.Last()] {
		if p.Y != 0 {
			t.Fatalf("edge particle %v off the segment", p)
		}
	}
}

func TestShapeChildEdge(t *testing.T) {
	chain := Chain(false, particle.Vec{}, particle.Vec{X: 1}, particle.Vec{X: 1, Y: 1})
	if chain.ChildCount() != 2 {
		t.Fatalf("children = %d", chain.ChildCount())
	}
	v1, v2, ok := chain.ChildEdge(1)
	if !ok || v1 != (particle.Vec{X: 1}) || v2 != (particle.Vec{X: 1, Y: 1}) {
		t.Errorf("child 1 = %v %v %v", v1, v2, ok)
	}
	if _, _, ok := Circle(particle.Vec{}, 1).ChildEdge(0); ok {
		t.Error("circle reported an edge")
	}
}

func TestParticlesSettleInContainer(t *testing.T) {
	gravity := particle.Vec{Y: -10}
	w := NewWorld(gravity)
	w.CreateContainer(particle.Vec{X: -1, Y: 0}, particle.Vec{X: 1, Y: 2})
	s := newSystem(w, gravity)
	s.CreateParticleGroup(particle.GroupDef{Shape: Box(0.3, 0.3), Position: particle.Vec{Y: 0.6}})
	n := s.Count()

	// Energy can only come from the drop, so the kinetic energy may never
	// exceed the potential energy the particles started with above the floor.
	var potential float64
	for _, p := range s.Positions() {
		potential += s.ParticleMass() * -gravity.Y * p.Y
	}

	peak := 0.0
	for i := 0; i < 180; i++ {
		w.Step(1.0 / 60)
		s.Solve(1.0 / 60)
		peak = math.Max(peak, s.KineticEnergy())
	}

	if s.Count() != n {
		t.Fatalf("count %d, want %d", s.Count(), n)
	}
	d := s.Diameter()
	for i, p := range s.Positions() {
		if p.Y < -d || math.Abs(p.X) > 1+d {
			t.Fatalf("particle %d escaped the container to %v", i, p)
		}
	}
	if len(s.BodyContacts()) == 0 {
		t.Error("no particle touches the container")
	}
	if peak > potential {
		t.Errorf("peak kinetic energy %v exceeds the released potential %v", peak, potential)
	}
	if ke := s.KineticEnergy(); ke > 0.25*potential {
		t.Errorf("kinetic energy %v after 3s, water should have settled (potential %v)", ke, potential)
	}
}

func TestParticlesPushDynamicBody(t *testing.T) {
	w := NewWorld(particle.Vec{})
	box := w.CreateDynamicBox(particle.Vec{}, 0.5, 0.5, 1)
	s := newSystem(w, particle.Vec{})
	for y := -0.4; y <= 0.4; y += 0.1 {
		s.CreateParticle(particle.ParticleDef{Position: particle.Vec{X: -0.55, Y: y}, Velocity: particle.Vec{X: 5}})
	}

	s.Solve(1.0 / 60)

	if v := box.LinearVelocity(); v.X <= 0 {
		t.Errorf("box velocity %v, want pushed along +x", v)
	}
}
