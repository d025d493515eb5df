package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/liquidsim/internal/particle"
)

// Stability is the fraction of samples in which no particle exceeded the
// speed threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sys *particle.System, t float64) {
	s.samples++
	for _, v := range sys.Velocities() {
		if r2.Norm(v) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxSpeed is the highest particle speed seen during the run.
type MaxSpeed struct {
	speeds []float64
	max    float64
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(sys *particle.System, t float64) {
	vel := sys.Velocities()
	if len(vel) == 0 {
		return
	}
	m.speeds = m.speeds[:0]
	for _, v := range vel {
		m.speeds = append(m.speeds, r2.Norm(v))
	}
	m.max = max(m.max, floats.Max(m.speeds))
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }
