package particle

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Contact connects two particles closer than one diameter. Normal points
// from IndexA to IndexB and Weight grows from 0 at one diameter to 1 when the
// centers coincide.
type Contact struct {
	IndexA, IndexB int
	Flags          Flag
	Weight         float64
	Normal         Vec
}

// BodyContact connects a particle to a fixture closer than one diameter.
// Normal points from the particle toward the fixture and Mass is the
// effective mass of the pair along it.
type BodyContact struct {
	Index   int
	Body    Body
	Fixture Fixture
	Weight  float64
	Normal  Vec
	Mass    float64
}

// updateContacts rebuilds the particle contact list by sweeping the sorted
// proxies: for each proxy, the rest of its row up to one cell right, then the
// next row from one cell left to one cell right.
func (s *System) updateContacts(exceptZombie bool) {
	s.updateProxies()
	s.contacts = s.contacts[:0]
	ps := s.proxies
	c := 0
	for a := range ps {
		right := relativeTag(ps[a].tag, 1, 0)
		for b := a + 1; b < len(ps); b++ {
			if right < ps[b].tag {
				break
			}
			s.addContact(ps[a].index, ps[b].index)
		}
		bottomLeft := relativeTag(ps[a].tag, -1, 1)
		for ; c < len(ps); c++ {
			if bottomLeft <= ps[c].tag {
				break
			}
		}
		bottomRight := relativeTag(ps[a].tag, 1, 1)
		for b := c; b < len(ps); b++ {
			if bottomRight < ps[b].tag {
				break
			}
			s.addContact(ps[a].index, ps[b].index)
		}
	}
	if exceptZombie {
		s.contacts = slices.DeleteFunc(s.contacts, func(c Contact) bool {
			return c.Flags&ZombieParticle != 0
		})
	}
}

func (s *System) addContact(a, b int) {
	pos := s.positions.data
	d := r2.Sub(pos[b], pos[a])
	d2 := r2.Dot(d, d)
	if d2 >= s.squaredDiameter {
		return
	}
	inv := invSqrt(d2)
	s.contacts = append(s.contacts, Contact{
		IndexA: a,
		IndexB: b,
		Flags:  s.flags.data[a] | s.flags.data[b],
		Weight: 1 - d2*inv*s.inverseDiameter,
		Normal: r2.Scale(inv, d),
	})
}

// updateBodyContacts finds every particle within one diameter of a non-sensor
// fixture.
func (s *System) updateBodyContacts() {
	s.bodyContacts = s.bodyContacts[:0]
	if s.world == nil || s.count == 0 {
		return
	}
	aabb := s.Bounds().Expand(s.diameter)
	pos := s.positions.data
	flags := s.flags.data
	invMass := s.ParticleInvMass()
	s.world.QueryAABB(func(f Fixture) bool {
		if f.IsSensor() {
			return true
		}
		b := f.Body()
		bp := b.WorldCenter()
		invBm := 0.0
		if bm := b.Mass(); bm > 0 {
			invBm = 1 / bm
		}
		invBI := b.InvInertia()
		for child := 0; child < f.ChildCount(); child++ {
			box := f.AABB(child).Expand(s.diameter)
			for _, px := range s.proxyRange(box) {
				a := px.index
				ap := pos[a]
				if !box.Contains(ap) || flags[a]&ZombieParticle != 0 {
					continue
				}
				d, n := f.ComputeDistance(ap, child)
				if d >= s.diameter {
					continue
				}
				invAm := invMass
				if flags[a]&WallParticle != 0 {
					invAm = 0
				}
				rpn := r2.Cross(r2.Sub(ap, bp), n)
				m := invAm + invBm + invBI*rpn*rpn
				mass := 0.0
				if m > 0 {
					mass = 1 / m
				}
				s.bodyContacts = append(s.bodyContacts, BodyContact{
					Index:   a,
					Body:    b,
					Fixture: f,
					Weight:  1 - d*s.inverseDiameter,
					Normal:  r2.Scale(-1, n),
					Mass:    mass,
				})
			}
		}
		return true
	}, aabb)
}

func (s *System) computeWeight() {
	w := s.weights.data[:s.count]
	clear(w)
	for _, c := range s.bodyContacts {
		w[c.Index] += c.Weight
	}
	for _, c := range s.contacts {
		w[c.IndexA] += c.Weight
		w[c.IndexB] += c.Weight
	}
}

// bodyVelocityAt is the velocity of body b at world point p.
func bodyVelocityAt(b Body, p Vec) Vec {
	return r2.Add(b.LinearVelocity(), crossSV(b.AngularVelocity(), r2.Sub(p, b.WorldCenter())))
}
