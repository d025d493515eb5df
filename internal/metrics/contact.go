package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/liquidsim/internal/particle"
)

// ContactLoad is the mean number of particle contacts per particle.
type ContactLoad struct {
	name    string
	sum     float64
	samples int
}

func NewContactLoad() *ContactLoad {
	return &ContactLoad{
		name: "contact_load",
	}
}

func (c *ContactLoad) Name() string {
	return c.name
}

func (c *ContactLoad) Observe(s *particle.System, t float64) {
	if n := s.Count(); n > 0 {
		c.sum += 2 * float64(len(s.Contacts())) / float64(n)
	}
	c.samples++
}

func (c *ContactLoad) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ContactLoad) Reset() {
	c.sum = 0
	c.samples = 0
}

// DensitySpread is the mean standard deviation of particle weights. A packed,
// evenly compressed fluid has a small spread.
type DensitySpread struct {
	sum     float64
	samples int
}

func NewDensitySpread() *DensitySpread { return &DensitySpread{} }

func (d *DensitySpread) Name() string { return "density_spread" }

func (d *DensitySpread) Observe(s *particle.System, t float64) {
	w := s.Weights()
	if len(w) < 2 {
		return
	}
	d.sum += stat.StdDev(w, nil)
	d.samples++
}

func (d *DensitySpread) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.sum / float64(d.samples)
}

func (d *DensitySpread) Reset() {
	d.sum = 0
	d.samples = 0
}

// CollisionEnergy is the peak kinetic energy carried by approaching contacts.
type CollisionEnergy struct {
	peak float64
}

func NewCollisionEnergy() *CollisionEnergy { return &CollisionEnergy{} }

func (c *CollisionEnergy) Name() string { return "collision_energy" }

func (c *CollisionEnergy) Observe(s *particle.System, t float64) {
	c.peak = max(c.peak, s.ComputeCollisionEnergy())
}

func (c *CollisionEnergy) Value() float64 { return c.peak }
func (c *CollisionEnergy) Reset()         { c.peak = 0 }

// Default returns the metrics recorded for every run.
func Default() []Metric {
	return []Metric{
		NewEnergy(),
		NewDissipation(),
		NewMaxSpeed(),
		NewStability(10),
		NewContactLoad(),
		NewDensitySpread(),
		NewCollisionEnergy(),
	}
}
