// Package metrics provides run-level observables of a particle system. Each
// metric is fed the system after every step and reduces it to one number.
package metrics

import "github.com/san-kum/liquidsim/internal/particle"

// Metric matches sim.Metric without importing the driver.
type Metric interface {
	Name() string
	Observe(s *particle.System, t float64)
	Value() float64
	Reset()
}
