package particle_test

import (
	"io"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/liquidsim/internal/particle"
	"github.com/san-kum/liquidsim/internal/rigid"
)

func row(n int, stride float64) []particle.Vec {
	points := make([]particle.Vec, n)
	for i := range points {
		points[i] = particle.Vec{X: float64(i) * stride}
	}
	return points
}

func grid(rows, cols int, stride float64) []particle.Vec {
	var points []particle.Vec
	for r := 0; r < rows; r++ {
		for _, p := range row(cols, stride) {
			points = append(points, particle.Vec{X: p.X, Y: float64(r) * stride})
		}
	}
	return points
}

// checkGroups asserts every particle's group owns its index and that group
// ranges are disjoint.
func checkGroups(s *particle.System) {
	owner := make([]*particle.Group, s.Count())
	for g := s.GroupList(); g != nil; g = g.Next() {
		Expect(g.First()).To(BeNumerically("<=", g.Last()))
		for i := g.First(); i < g.Last(); i++ {
			Expect(owner[i]).To(BeNil(), "index %d claimed twice", i)
			owner[i] = g
		}
	}
	for i := 0; i < s.Count(); i++ {
		Expect(s.ParticleGroup(i)).To(BeIdenticalTo(owner[i]), "particle %d", i)
	}
}

var _ = Describe("System", func() {
	var s *particle.System

	BeforeEach(func() {
		def := particle.DefaultDef()
		def.Radius = 0.5
		def.Gravity = particle.Vec{}
		def.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		s = particle.New(def, nil)
	})

	Describe("contacts", func() {
		It("finds one half-weight contact between overlapping particles", func() {
			s.CreateParticle(particle.ParticleDef{Position: particle.Vec{}})
			s.CreateParticle(particle.ParticleDef{Position: particle.Vec{X: 0.5}})
			s.Solve(0)

			Expect(s.Contacts()).To(HaveLen(1))
			c := s.Contacts()[0]
			Expect(c.Weight).To(BeNumerically("~", 0.5, 1e-9))
			Expect(c.Normal.X).To(BeNumerically("~", 1, 1e-9))
			Expect(c.Normal.Y).To(BeNumerically("~", 0, 1e-9))
		})

		It("ignores particles exactly one diameter apart", func() {
			s.CreateParticle(particle.ParticleDef{Position: particle.Vec{}})
			s.CreateParticle(particle.ParticleDef{Position: particle.Vec{X: 1}})
			s.Solve(0)

			Expect(s.Contacts()).To(BeEmpty())
		})
	})

	Describe("solid groups", func() {
		It("gives interior particles at least the depth of the surface", func() {
			g := s.CreateParticleGroup(particle.GroupDef{
				GroupFlags: particle.SolidGroup,
				Positions:  grid(5, 5, 0.75),
			})
			Expect(g.Count()).To(Equal(25))

			depth := s.Depths()
			surface := 0.0
			for i, d := range depth {
				Expect(math.IsInf(d, 0) || math.IsNaN(d)).To(BeFalse())
				Expect(d).To(BeNumerically(">=", 0))
				r, c := i/5, i%5
				if r == 0 || c == 0 || r == 4 || c == 4 {
					surface = math.Max(surface, d)
				}
			}
			for r := 1; r < 4; r++ {
				for c := 1; c < 4; c++ {
					Expect(depth[r*5+c]).To(BeNumerically(">=", surface))
				}
			}
		})
	})

	Describe("joining", func() {
		It("merges two groups into one contiguous range", func() {
			a := s.CreateParticleGroup(particle.GroupDef{Positions: row(3, 0.75)})
			b := s.CreateParticleGroup(particle.GroupDef{Positions: row(4, 0.75), Position: particle.Vec{Y: 5}})

			s.JoinParticleGroups(a, b)

			Expect(a.Count()).To(Equal(7))
			Expect(a.Last() - a.First()).To(Equal(7))
			Expect(b.Destroyed()).To(BeTrue())
			Expect(s.Groups()).To(ConsistOf(a))
			checkGroups(s)
		})
	})

	Describe("compaction", func() {
		It("remaps pairs around a destroyed chain link", func() {
			s.CreateParticleGroup(particle.GroupDef{Flags: particle.SpringParticle, Positions: row(5, 0.75)})
			Expect(s.Pairs()).To(HaveLen(4))

			s.DestroyParticle(2, false)
			s.Solve(1.0 / 60)

			Expect(s.Count()).To(Equal(4))
			Expect(s.Pairs()).To(HaveLen(2))
			for _, p := range s.Pairs() {
				Expect(p.IndexA).To(BeNumerically("<", s.Count()))
				Expect(p.IndexB).To(BeNumerically("<", s.Count()))
				Expect(p.IndexB - p.IndexA).To(Or(Equal(1), Equal(-1)))
			}
			checkGroups(s)
		})

		It("empties the system when every particle is destroyed", func() {
			s.CreateParticleGroup(particle.GroupDef{Positions: grid(3, 3, 0.75)})
			s.CreateParticle(particle.ParticleDef{Position: particle.Vec{X: 10}})
			for i := 0; i < s.Count(); i++ {
				s.DestroyParticle(i, false)
			}
			s.Solve(1.0 / 60)

			Expect(s.Count()).To(BeZero())
			Expect(s.GroupList()).To(BeNil())
		})

		It("keeps buffers aligned after mixed edits", func() {
			a := s.CreateParticleGroup(particle.GroupDef{Positions: grid(2, 4, 0.75)})
			s.CreateParticle(particle.ParticleDef{Position: particle.Vec{Y: 8}})
			b := s.CreateParticleGroup(particle.GroupDef{Positions: grid(2, 3, 0.75), Position: particle.Vec{X: 6}})
			s.JoinParticleGroups(a, b)
			s.DestroyParticle(a.First()+1, false)
			s.DestroyParticle(a.Last()-1, false)
			s.Solve(1.0 / 60)

			n := s.Count()
			Expect(n).To(Equal(13))
			Expect(s.Flags()).To(HaveLen(n))
			Expect(s.Positions()).To(HaveLen(n))
			Expect(s.Velocities()).To(HaveLen(n))
			checkGroups(s)
		})
	})

	Describe("rigid bodies", func() {
		It("keeps falling water above a Box2D floor", func() {
			gravity := particle.Vec{Y: -10}
			world := rigid.NewWorld(gravity)
			world.CreateStaticBox(particle.Vec{Y: -1}, 20, 1, 0)
			s.SetWorld(world)
			s.SetGravity(gravity)
			s.SetRadius(0.1)
			s.CreateParticleGroup(particle.GroupDef{Shape: rigid.Box(0.5, 0.5), Position: particle.Vec{Y: 1}})

			for i := 0; i < 120; i++ {
				world.Step(1.0 / 60)
				s.Solve(1.0 / 60)
			}

			for _, p := range s.Positions() {
				Expect(p.Y).To(BeNumerically(">", -s.Diameter()))
			}
			Expect(s.BodyContacts()).NotTo(BeEmpty())
		})
	})
})
