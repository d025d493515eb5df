package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/liquidsim/internal/particle"
)

// Energy is the mean mechanical energy (kinetic plus gravitational) of the
// particles over the run.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s *particle.System, t float64) {
	e.totalEnergy += mechanicalEnergy(s)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// Dissipation is the largest fraction of the first observed mechanical
// energy lost by any later sample.
type Dissipation struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxLoss       float64
	samples       int
}

func NewDissipation() *Dissipation {
	return &Dissipation{name: "dissipation"}
}

func (d *Dissipation) Name() string { return d.name }

func (d *Dissipation) Observe(s *particle.System, t float64) {
	energy := mechanicalEnergy(s)

	if d.samples == 0 {
		d.initialEnergy = energy
	}

	d.currentEnergy = energy
	d.samples++

	if d.initialEnergy != 0 {
		loss := (d.initialEnergy - energy) / math.Abs(d.initialEnergy)
		d.maxLoss = math.Max(d.maxLoss, loss)
	}
}

func (d *Dissipation) Value() float64 {
	return d.maxLoss
}

func (d *Dissipation) Reset() {
	d.initialEnergy = 0
	d.currentEnergy = 0
	d.maxLoss = 0
	d.samples = 0
}

// mechanicalEnergy measures potential energy against the lowest particle so
// the value does not depend on where the scene sits.
func mechanicalEnergy(s *particle.System) float64 {
	pos := s.Positions()
	if len(pos) == 0 {
		return 0
	}
	g := r2.Scale(s.GravityScale(), s.Gravity())
	ref := math.Inf(1)
	for _, p := range pos {
		ref = math.Min(ref, -r2.Dot(g, p))
	}
	potential := 0.0
	for _, p := range pos {
		potential += -r2.Dot(g, p) - ref
	}
	return s.KineticEnergy() + s.ParticleMass()*potential
}
