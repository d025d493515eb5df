// Package emitter adds particles to a running system.
package emitter

import (
	"math"
	"math/rand"

	"github.com/san-kum/liquidsim/internal/particle"
)

// Radial emits particles at random points inside an ellipse. Each particle
// starts with Velocity plus Speed along the direction from Origin to its
// spawn point.
type Radial struct {
	Origin   particle.Vec
	HalfSize particle.Vec
	Velocity particle.Vec
	Speed    float64
	// Rate is in particles per second.
	Rate  float64
	Flags particle.Flag
	Color particle.Color
	Group *particle.Group

	rng       *rand.Rand
	remainder float64
	created   int
	dropped   int
}

func NewRadial(origin particle.Vec, rate float64, seed int64) *Radial {
	return &Radial{
		Origin: origin,
		Rate:   rate,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Emit creates the particles owed for dt and returns how many were created.
// Particles refused by a full system are dropped, not retried.
func (r *Radial) Emit(s *particle.System, dt float64) int {
	r.remainder += r.Rate * dt
	if r.Group != nil && r.Group.Destroyed() {
		r.Group = nil
	}
	def := particle.ParticleDef{Flags: r.Flags, Color: r.Color, Group: r.Group}
	n := 0
	for r.remainder >= 1 {
		r.remainder--
		angle := r.rng.Float64() * 2 * math.Pi
		distance := r.rng.Float64()
		dir := particle.Vec{X: math.Sin(angle), Y: math.Cos(angle)}
		def.Position = particle.Vec{
			X: r.Origin.X + dir.X*distance*r.HalfSize.X,
			Y: r.Origin.Y + dir.Y*distance*r.HalfSize.Y,
		}
		def.Velocity = particle.Vec{X: r.Velocity.X + dir.X*r.Speed, Y: r.Velocity.Y + dir.Y*r.Speed}
		if s.CreateParticle(def) == particle.InvalidIndex {
			r.dropped++
			continue
		}
		n++
	}
	r.created += n
	return n
}

func (r *Radial) Created() int { return r.created }
func (r *Radial) Dropped() int { return r.dropped }
