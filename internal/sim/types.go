package sim

import "github.com/san-kum/liquidsim/internal/particle"

// Stepper advances the rigid bodies particles collide with.
type Stepper interface {
	Step(dt float64)
}

// Source adds particles before each step and reports how many it created.
type Source interface {
	Emit(s *particle.System, dt float64) int
}

type Metric interface {
	Name() string
	Observe(s *particle.System, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *particle.System, t float64)
}

type Config struct {
	Dt       float64
	Duration float64
	Seed     int64
	// SampleEvery records a Frame every n steps. Zero records none.
	SampleEvery int
	// ValidateState stops the run when a particle leaves the finite plane.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      5,
		SampleEvery:   1,
		ValidateState: true,
	}
}

// Frame summarizes the system after one step.
type Frame struct {
	Step            int     `csv:"step" json:"step"`
	Time            float64 `csv:"time" json:"time"`
	Count           int     `csv:"count" json:"count"`
	Groups          int     `csv:"groups" json:"groups"`
	Contacts        int     `csv:"contacts" json:"contacts"`
	BodyContacts    int     `csv:"body_contacts" json:"body_contacts"`
	Pairs           int     `csv:"pairs" json:"pairs"`
	Triads          int     `csv:"triads" json:"triads"`
	KineticEnergy   float64 `csv:"kinetic_energy" json:"kinetic_energy"`
	CollisionEnergy float64 `csv:"collision_energy" json:"collision_energy"`
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	StepsTaken int
	Emitted    int
	Errors     []error
}

// Final returns the last recorded frame.
func (r *Result) Final() (Frame, bool) {
	if len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// Series extracts one column from the recorded frames.
func (r *Result) Series(field func(Frame) float64) []float64 {
	out := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = field(f)
	}
	return out
}
