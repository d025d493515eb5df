package particle

import (
	"errors"
	"testing"
)

func TestCreateParticle(t *testing.T) {
	s := newTestSystem(0.5)

	i := s.CreateParticle(ParticleDef{Position: Vec{X: 1, Y: 2}, Velocity: Vec{X: 3}})
	if i != 0 {
		t.Fatalf("expected index 0, got %d", i)
	}
	j := s.CreateParticle(ParticleDef{Flags: ViscousParticle, Position: Vec{X: 4}})
	if j != 1 {
		t.Fatalf("expected index 1, got %d", j)
	}
	if s.Count() != 2 {
		t.Errorf("expected count 2, got %d", s.Count())
	}
	if got := s.Positions()[0]; got != (Vec{X: 1, Y: 2}) {
		t.Errorf("position = %v", got)
	}
	if got := s.Velocities()[0]; got != (Vec{X: 3}) {
		t.Errorf("velocity = %v", got)
	}
	if s.Flags()[1] != ViscousParticle {
		t.Errorf("flags = %v", s.Flags()[1])
	}
	if s.colors.allocated() || s.userData.allocated() {
		t.Error("optional buffers should stay unallocated until used")
	}
}

func TestOptionalBuffersMaterializeLazily(t *testing.T) {
	s := newTestSystem(0.5)
	s.CreateParticle(ParticleDef{})
	s.CreateParticle(ParticleDef{Color: Color{R: 255, A: 255}, UserData: "tagged"})

	colors := s.Colors()
	if len(colors) != 2 {
		t.Fatalf("expected 2 colors, got %d", len(colors))
	}
	if !colors[0].IsZero() || colors[1].R != 255 {
		t.Errorf("colors = %v", colors)
	}
	if ud := s.UserData(); ud[0] != nil || ud[1] != "tagged" {
		t.Errorf("user data = %v", ud)
	}
}

func TestCapacityGrowth(t *testing.T) {
	s := newTestSystem(0.5)
	for i := 0; i < 300; i++ {
		if idx := s.CreateParticle(ParticleDef{Position: Vec{X: float64(i)}}); idx != i {
			t.Fatalf("expected index %d, got %d", i, idx)
		}
	}
	if s.Capacity() < s.Count() {
		t.Errorf("capacity %d below count %d", s.Capacity(), s.Count())
	}
	if s.Capacity() != 512 {
		t.Errorf("expected capacity 512 after doubling, got %d", s.Capacity())
	}
	for i, p := range s.Positions() {
		if p.X != float64(i) {
			t.Fatalf("position %d lost during growth: %v", i, p)
		}
	}
}

func TestMaxCount(t *testing.T) {
	def := newTestSystem(0.5).Def()
	def.MaxCount = 3
	s := New(def, nil)
	for i := 0; i < 3; i++ {
		if s.CreateParticle(ParticleDef{}) == InvalidIndex {
			t.Fatalf("particle %d rejected below max count", i)
		}
	}
	if got := s.CreateParticle(ParticleDef{}); got != InvalidIndex {
		t.Errorf("expected InvalidIndex, got %d", got)
	}
	if s.Count() != 3 {
		t.Errorf("expected count 3, got %d", s.Count())
	}
}

func TestUserSuppliedBuffer(t *testing.T) {
	s := newTestSystem(0.5)
	buf := make([]Vec, 10)
	if err := s.SetPositionBuffer(buf); err != nil {
		t.Fatalf("set buffer: %v", err)
	}
	for i := 0; i < 10; i++ {
		s.CreateParticle(ParticleDef{Position: Vec{X: float64(i)}})
	}
	if got := s.CreateParticle(ParticleDef{}); got != InvalidIndex {
		t.Errorf("supplied buffer should cap capacity, got index %d", got)
	}
	if buf[7].X != 7 {
		t.Errorf("positions not written to supplied buffer: %v", buf[7])
	}

	if err := s.SetPositionBuffer(make([]Vec, 5)); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("expected ErrBufferTooSmall, got %v", err)
	}

	if err := s.SetPositionBuffer(nil); err != nil {
		t.Fatalf("release buffer: %v", err)
	}
	if s.Positions()[7].X != 7 {
		t.Error("positions lost when storage was handed back")
	}
}

func TestBufferLengthsMatchCount(t *testing.T) {
	s := newTestSystem(0.5)
	s.CreateParticleGroup(GroupDef{Shape: boxShape{hx: 2, hy: 2}, Flags: ColorMixingParticle, Color: Color{G: 200}})
	s.DestroyParticle(3, false)
	s.Solve(1.0 / 60)

	n := s.Count()
	if len(s.Flags()) != n || len(s.Positions()) != n || len(s.Velocities()) != n ||
		len(s.Colors()) != n || len(s.Weights()) != n {
		t.Errorf("buffer lengths disagree with count %d", n)
	}
}

func TestDestroyParticlesInShape(t *testing.T) {
	s := newTestSystem(0.5)
	for _, p := range lattice(4, 4, 1) {
		s.CreateParticle(ParticleDef{Position: p})
	}
	n := s.DestroyParticlesInShape(boxShape{hx: 0.6, hy: 0.6}, NewTransform(Vec{X: 0.5, Y: 0.5}, 0), false)
	if n != 4 {
		t.Fatalf("expected 4 particles in shape, got %d", n)
	}
	s.Solve(0)
	if s.Count() != 12 {
		t.Errorf("expected 12 survivors, got %d", s.Count())
	}
}

func TestLockedSystemPanics(t *testing.T) {
	s := newTestSystem(0.5)
	s.CreateParticle(ParticleDef{Flags: DestructionListenerParticle})
	s.DestroyParticle(0, true)

	var recovered any
	s.SetDestructionListener(DestructionListener{
		Particle: func(int) {
			defer func() { recovered = recover() }()
			s.CreateParticle(ParticleDef{})
		},
	})
	s.Solve(1.0 / 60)

	err, ok := recovered.(error)
	if !ok || !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked panic, got %v", recovered)
	}
	if s.Locked() {
		t.Error("system still locked after solve")
	}
}

func TestNegativeStepPanics(t *testing.T) {
	s := newTestSystem(0.5)
	defer func() {
		err, _ := recover().(error)
		if !errors.Is(err, ErrNegativeStep) {
			t.Errorf("expected ErrNegativeStep, got %v", err)
		}
	}()
	s.Solve(-1)
}

func TestApplyLinearImpulse(t *testing.T) {
	s := newTestSystem(0.5)
	s.CreateParticle(ParticleDef{})
	s.ApplyLinearImpulse(0, Vec{X: s.ParticleMass()})
	if !near(s.Velocities()[0].X, 1, 1e-12) {
		t.Errorf("expected unit velocity, got %v", s.Velocities()[0])
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"viscous", " Tensile ", "water"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f != ViscousParticle|TensileParticle {
		t.Errorf("flags = %v", f)
	}
	if f.String() != "viscous|tensile" {
		t.Errorf("string = %q", f.String())
	}
	if _, err := ParseFlags([]string{"lava"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestRotate(t *testing.T) {
	s := []int{0, 1, 2, 3, 4, 5}
	rotate(s[1:5], 2)
	want := []int{0, 3, 4, 1, 2, 5}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("rotate = %v, want %v", s, want)
		}
	}
}
