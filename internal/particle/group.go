package particle

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Group is a set of particles occupying the contiguous index range
// [First, Last). Groups are owned by their System; a destroyed group must not
// be used again.
type Group struct {
	system    *System
	first     int
	last      int
	flags     GroupFlag
	strength  float64
	userData  any
	transform Transform
	destroyed bool

	prev, next *Group

	// statistics, valid while timestamp matches the system's
	timestamp       int
	mass            float64
	inertia         float64
	center          Vec
	linearVelocity  Vec
	angularVelocity float64
}

func (g *Group) System() *System      { return g.system }
func (g *Group) First() int           { return g.first }
func (g *Group) Last() int            { return g.last }
func (g *Group) Count() int           { return g.last - g.first }
func (g *Group) Flags() GroupFlag     { return g.flags & publicGroupFlags }
func (g *Group) Strength() float64    { return g.strength }
func (g *Group) UserData() any        { return g.userData }
func (g *Group) SetUserData(v any)    { g.userData = v }
func (g *Group) Transform() Transform { return g.transform }
func (g *Group) Position() Vec        { return g.transform.P }
func (g *Group) Angle() float64       { return g.transform.Q.Angle() }
func (g *Group) Next() *Group         { return g.next }
func (g *Group) Prev() *Group         { return g.prev }
func (g *Group) Destroyed() bool      { return g.destroyed }

// PendingSplit reports whether the group lost particles while rigid and will
// be split into connected pieces at the start of the next Solve.
func (g *Group) PendingSplit() bool {
	return g.flags&groupNeedsSplit != 0
}

// Contains reports whether particle index belongs to g.
func (g *Group) Contains(index int) bool {
	return g.first <= index && index < g.last
}

// SetFlags replaces the public group flags.
func (g *Group) SetFlags(f GroupFlag) {
	f &= publicGroupFlags
	if f&SolidGroup != 0 && g.flags&SolidGroup == 0 {
		f |= groupNeedsUpdateDepth
		g.system.depths.request(g.system.internalCapacity)
	}
	g.flags = f | g.flags&^publicGroupFlags
}

func (g *Group) Mass() float64 {
	g.updateStatistics()
	return g.mass
}

// Inertia is the rotational inertia about the center of mass.
func (g *Group) Inertia() float64 {
	g.updateStatistics()
	return g.inertia
}

func (g *Group) Center() Vec {
	g.updateStatistics()
	return g.center
}

func (g *Group) LinearVelocity() Vec {
	g.updateStatistics()
	return g.linearVelocity
}

func (g *Group) AngularVelocity() float64 {
	g.updateStatistics()
	return g.angularVelocity
}

// LinearVelocityFromWorldPoint returns the rigid velocity of the group at p.
func (g *Group) LinearVelocityFromWorldPoint(p Vec) Vec {
	g.updateStatistics()
	return r2.Add(g.linearVelocity, crossSV(g.angularVelocity, r2.Sub(p, g.center)))
}

// ApplyLinearImpulse spreads impulse evenly over the group's particles.
func (g *Group) ApplyLinearImpulse(impulse Vec) {
	n := g.Count()
	if n == 0 {
		return
	}
	s := g.system
	dv := r2.Scale(1/(float64(n)*s.ParticleMass()), impulse)
	vel := s.velocities.data
	for i := g.first; i < g.last; i++ {
		vel[i] = r2.Add(vel[i], dv)
	}
}

// updateStatistics recomputes mass, center, velocity and inertia once per
// step.
func (g *Group) updateStatistics() {
	s := g.system
	if g.timestamp == s.timestamp {
		return
	}
	m := s.ParticleMass()
	pos := s.positions.data
	vel := s.velocities.data
	g.mass = 0
	g.center = Vec{}
	g.linearVelocity = Vec{}
	for i := g.first; i < g.last; i++ {
		g.mass += m
		g.center = addScaled(g.center, m, pos[i])
		g.linearVelocity = addScaled(g.linearVelocity, m, vel[i])
	}
	if g.mass > 0 {
		g.center = r2.Scale(1/g.mass, g.center)
		g.linearVelocity = r2.Scale(1/g.mass, g.linearVelocity)
	}
	g.inertia = 0
	g.angularVelocity = 0
	for i := g.first; i < g.last; i++ {
		p := r2.Sub(pos[i], g.center)
		v := r2.Sub(vel[i], g.linearVelocity)
		g.inertia += m * r2.Dot(p, p)
		g.angularVelocity += m * r2.Cross(p, v)
	}
	if g.inertia > 0 {
		g.angularVelocity /= g.inertia
	}
	g.timestamp = s.timestamp
}

// Groups returns the live groups in creation order.
func (s *System) Groups() []*Group {
	groups := make([]*Group, 0, s.groupCount)
	for g := s.groupHead; g != nil; g = g.next {
		groups = append(groups, g)
	}
	return groups
}

func (s *System) GroupCount() int { return s.groupCount }

// GroupList returns the first group; follow Group.Next for the rest.
func (s *System) GroupList() *Group { return s.groupHead }

func (s *System) linkGroup(g *Group) {
	g.prev = s.groupTail
	g.next = nil
	if s.groupTail != nil {
		s.groupTail.next = g
	} else {
		s.groupHead = g
	}
	s.groupTail = g
	s.groupCount++
}

func (s *System) unlinkGroup(g *Group) {
	if g.prev != nil {
		g.prev.next = g.next
	} else {
		s.groupHead = g.next
	}
	if g.next != nil {
		g.next.prev = g.prev
	} else {
		s.groupTail = g.prev
	}
	g.prev, g.next = nil, nil
	s.groupCount--
}

func (s *System) newGroup(first, last int, flags GroupFlag, strength float64, userData any, xf Transform) *Group {
	if strength <= 0 {
		strength = 1
	}
	g := &Group{
		system:    s,
		first:     first,
		last:      last,
		flags:     flags & publicGroupFlags,
		strength:  strength,
		userData:  userData,
		transform: xf,
		timestamp: -1,
	}
	s.linkGroup(g)
	for i := first; i < last; i++ {
		s.groupOf.data[i] = g
	}
	return g
}

func (s *System) groupStrength(i int) float64 {
	if g := s.groupOf.data[i]; g != nil {
		return g.strength
	}
	return 1
}
