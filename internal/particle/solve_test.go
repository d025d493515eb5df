package particle

import (
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// damBreak builds a block of water resting on a row of wall particles.
func damBreak() *System {
	s := newTestSystem(0.25)
	s.SetGravity(Vec{Y: -10})
	s.CreateParticleGroup(GroupDef{Flags: WallParticle, Positions: lattice(1, 30, 0.375), Position: Vec{X: -5}})
	s.CreateParticleGroup(GroupDef{Shape: boxShape{hx: 1, hy: 1}, Position: Vec{X: -3, Y: 1.5}})
	return s
}

func TestSolveIsDeterministic(t *testing.T) {
	a, b := damBreak(), damBreak()
	for i := 0; i < 40; i++ {
		a.Solve(1.0 / 60)
		b.Solve(1.0 / 60)
	}
	if !slices.Equal(a.Positions(), b.Positions()) || !slices.Equal(a.Velocities(), b.Velocities()) {
		t.Fatal("identical systems diverged")
	}
	for i, p := range a.Positions() {
		if !finite(p) {
			t.Fatalf("particle %d at %v", i, p)
		}
	}
}

func TestWallParticlesStayPut(t *testing.T) {
	s := damBreak()
	walls := s.GroupList()
	before := append([]Vec(nil), s.Positions()[walls.First():walls.Last()]...)
	for i := 0; i < 20; i++ {
		s.Solve(1.0 / 60)
	}
	after := s.Positions()[walls.First():walls.Last()]
	if !slices.Equal(before, after) {
		t.Error("wall particles moved")
	}
}

func TestSolveZeroStepKeepsPositions(t *testing.T) {
	s := damBreak()
	for i := 0; i < 5; i++ {
		s.Solve(1.0 / 60)
	}
	before := append([]Vec(nil), s.Positions()...)
	s.Solve(0)
	if !slices.Equal(before, s.Positions()) {
		t.Error("Solve(0) moved particles")
	}
}

func TestGravityAndVelocityLimit(t *testing.T) {
	s := newTestSystem(0.5)
	s.SetGravity(Vec{Y: -10})
	s.SetGravityScale(2)
	s.CreateParticle(ParticleDef{})
	s.CreateParticle(ParticleDef{Position: Vec{X: 5}, Velocity: Vec{X: 1000}})
	dt := 0.1

	s.Solve(dt)

	if v := s.Velocities()[0]; !near(v.Y, -2, 1e-12) {
		t.Errorf("expected vy -2, got %v", v)
	}
	if speed := r2.Norm(s.Velocities()[1]); speed > s.Diameter()/dt+1e-9 {
		t.Errorf("speed %v above critical velocity", speed)
	}
}

func TestSpringRestoresDistance(t *testing.T) {
	s := newTestSystem(0.5)
	s.CreateParticleGroup(GroupDef{Flags: SpringParticle, Positions: []Vec{{X: 0}, {X: 0.75}}})
	s.Positions()[1].X = 0.9

	s.Solve(1.0 / 60)

	if rel := s.Velocities()[1].X - s.Velocities()[0].X; rel >= 0 {
		t.Errorf("stretched pair should close, relative velocity %v", rel)
	}
}

func TestPowderRepels(t *testing.T) {
	s := newTestSystem(0.5)
	s.CreateParticle(ParticleDef{Flags: PowderParticle})
	s.CreateParticle(ParticleDef{Flags: PowderParticle, Position: Vec{X: 0.5}})

	s.Solve(1.0 / 60)

	if rel := s.Velocities()[1].X - s.Velocities()[0].X; rel <= 0 {
		t.Errorf("overlapping powder should separate, relative velocity %v", rel)
	}
}

func TestViscositySmoothsVelocity(t *testing.T) {
	s := newTestSystem(0.5)
	s.SetDampingStrength(0)
	s.CreateParticle(ParticleDef{Flags: ViscousParticle, Velocity: Vec{Y: 1}})
	s.CreateParticle(ParticleDef{Flags: ViscousParticle, Position: Vec{X: 0.5}, Velocity: Vec{Y: -1}})

	s.Solve(0)

	if rel := s.Velocities()[0].Y - s.Velocities()[1].Y; rel >= 2 || rel <= 0 {
		t.Errorf("expected relative velocity between 0 and 2, got %v", rel)
	}
}

func TestDampingRemovesApproach(t *testing.T) {
	s := newTestSystem(0.5)
	s.CreateParticle(ParticleDef{Velocity: Vec{X: 1}})
	s.CreateParticle(ParticleDef{Position: Vec{X: 0.5}, Velocity: Vec{X: -1}})

	s.Solve(0)

	if rel := s.Velocities()[1].X - s.Velocities()[0].X; rel <= -2 {
		t.Errorf("damping should slow approach, relative velocity %v", rel)
	}
	if sum := s.Velocities()[0].X + s.Velocities()[1].X; !near(sum, 0, 1e-12) {
		t.Errorf("damping should conserve momentum, got %v", sum)
	}
}

func TestColorMixing(t *testing.T) {
	s := newTestSystem(0.5)
	s.CreateParticle(ParticleDef{Flags: ColorMixingParticle, Color: Color{R: 255, A: 255}})
	s.CreateParticle(ParticleDef{Flags: ColorMixingParticle, Position: Vec{X: 0.5}, Color: Color{B: 255, A: 255}})
	s.CreateParticle(ParticleDef{Position: Vec{X: -0.5}, Color: Color{G: 255}})

	s.Solve(1.0 / 60)

	c := s.Colors()
	if c[0].R == 255 || c[0].B == 0 || c[1].B == 255 || c[1].R == 0 {
		t.Errorf("colors did not mix: %v %v", c[0], c[1])
	}
	if c[2] != (Color{G: 255}) {
		t.Errorf("non-mixing particle changed color: %v", c[2])
	}
}

func TestSolidGroupsEject(t *testing.T) {
	separation := func(ejection float64) float64 {
		s := newTestSystem(0.5)
		s.SetEjectionStrength(ejection)
		a := s.CreateParticleGroup(GroupDef{GroupFlags: SolidGroup, Positions: lattice(3, 3, 0.75)})
		b := s.CreateParticleGroup(GroupDef{GroupFlags: SolidGroup, Positions: lattice(3, 3, 0.75), Position: Vec{X: 1.1, Y: 0.2}})
		s.Solve(1.0 / 60)
		return b.LinearVelocity().X - a.LinearVelocity().X
	}
	if with, without := separation(0.5), separation(0); with <= without {
		t.Errorf("ejection should add separation: %v <= %v", with, without)
	}
}

func TestPressurePushesCrowdedParticlesApart(t *testing.T) {
	s := newTestSystem(0.5)
	for _, p := range lattice(3, 3, 0.3) {
		s.CreateParticle(ParticleDef{Position: p})
	}
	s.Solve(1.0 / 60)
	center := s.Velocities()[4]
	corner := s.Velocities()[0]
	if corner.X >= 0 || corner.Y >= 0 {
		t.Errorf("corner should be pushed outward, got %v", corner)
	}
	if !near(center.X, 0, 1e-9) || !near(center.Y, 0, 1e-9) {
		t.Errorf("symmetric center should stay still, got %v", center)
	}
}

func TestTensileBlobStaysFinite(t *testing.T) {
	s := newTestSystem(0.25)
	s.CreateParticleGroup(GroupDef{Flags: TensileParticle | ViscousParticle, Shape: boxShape{hx: 1, hy: 0.5}})
	for i := 0; i < 30; i++ {
		s.Solve(1.0 / 60)
	}
	for i, p := range s.Positions() {
		if !finite(p) || !finite(s.Velocities()[i]) {
			t.Fatalf("particle %d diverged", i)
		}
	}
}

func TestElasticBodyKeepsShape(t *testing.T) {
	s := newTestSystem(0.5)
	s.CreateParticleGroup(GroupDef{Flags: ElasticParticle, Positions: lattice(3, 3, 0.75), AngularVelocity: 1})
	for i := 0; i < 30; i++ {
		s.Solve(1.0 / 60)
	}
	pos := s.Positions()
	d := r2.Norm(r2.Sub(pos[8], pos[0]))
	rest := 0.75 * 2 * 1.4142135623730951
	if !near(d, rest, 0.3) {
		t.Errorf("diagonal %v drifted from rest %v", d, rest)
	}
}

func TestCollisionEnergy(t *testing.T) {
	s := newTestSystem(0.5)
	s.CreateParticle(ParticleDef{Velocity: Vec{X: 1}})
	s.CreateParticle(ParticleDef{Position: Vec{X: 0.5}, Velocity: Vec{X: -1}})
	s.updateContacts(true)

	want := 0.5 * s.ParticleMass() * 4
	if got := s.ComputeCollisionEnergy(); !near(got, want, 1e-12) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
