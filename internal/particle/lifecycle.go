package particle

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// CreateParticleGroup creates particles from def and collects them into a new
// group, or into def.Group when set. Bonds between the new particles are
// built immediately; solid groups also get their depths.
func (s *System) CreateParticleGroup(def GroupDef) *Group {
	must(!s.locked, ErrLocked, "create particle group")
	xf := NewTransform(def.Position, def.Angle)
	first := s.count
	if def.Shape != nil {
		s.createParticlesInShape(def, xf)
	}
	for _, p := range def.Positions {
		s.createGroupParticle(def, xf.Apply(p))
	}
	last := s.count
	g := s.newGroup(first, last, def.GroupFlags, def.Strength, def.UserData, xf)
	s.updateContacts(true)
	s.updatePairsAndTriads(first, last, groupFilter{})
	if g.flags&SolidGroup != 0 {
		s.depths.request(s.internalCapacity)
		g.flags |= groupNeedsUpdateDepth
		s.computeDepth()
	}
	if def.Group != nil {
		s.JoinParticleGroups(def.Group, g)
		g = def.Group
	}
	return g
}

func (s *System) createGroupParticle(def GroupDef, p Vec) int {
	v := r2.Add(def.LinearVelocity, crossSV(def.AngularVelocity, r2.Sub(p, def.Position)))
	return s.CreateParticle(ParticleDef{
		Flags:    def.Flags,
		Position: p,
		Velocity: v,
		Color:    def.Color,
		UserData: def.UserData,
	})
}

func (s *System) createParticlesInShape(def GroupDef, xf Transform) {
	stride := def.Stride
	if stride <= 0 {
		stride = s.particleStride()
	}
	shape := def.Shape
	if e, ok := shape.(Edger); ok {
		if _, _, stroke := e.ChildEdge(0); stroke {
			s.createParticlesOnEdges(def, xf, e, shape.ChildCount(), stride)
			return
		}
	}
	id := Identity()
	aabb := emptyAABB()
	for child := 0; child < shape.ChildCount(); child++ {
		aabb = aabb.Union(shape.ComputeAABB(id, child))
	}
	if !aabb.Valid() {
		return
	}
	for y := math.Floor(aabb.Lower.Y/stride) * stride; y < aabb.Upper.Y; y += stride {
		for x := math.Floor(aabb.Lower.X/stride) * stride; x < aabb.Upper.X; x += stride {
			p := Vec{X: x, Y: y}
			if shape.TestPoint(id, p) {
				s.createGroupParticle(def, xf.Apply(p))
			}
		}
	}
}

// createParticlesOnEdges walks the segments end to end, dropping a particle
// every stride.
func (s *System) createParticlesOnEdges(def GroupDef, xf Transform, e Edger, children int, stride float64) {
	along := 0.0
	for child := 0; child < children; child++ {
		v1, v2, _ := e.ChildEdge(child)
		d := r2.Sub(v2, v1)
		length := r2.Norm(d)
		for along < length {
			p := addScaled(v1, along/length, d)
			s.createGroupParticle(def, xf.Apply(p))
			along += stride
		}
		along -= length
	}
}

// JoinParticleGroups moves b's particles into a and destroys b. Bonds are
// added only between particles that came from different groups.
func (s *System) JoinParticleGroups(a, b *Group) {
	must(!s.locked, ErrLocked, "join particle groups")
	must(a != b, ErrSelfJoin, "join")
	must(!a.destroyed && !b.destroyed, ErrDestroyedGroup, "join")

	if b.first < b.last {
		s.rotateBuffer(b.first, b.last, s.count)
		if a.first == a.last {
			a.first, a.last = b.first, b.first
		}
		s.rotateBuffer(a.first, a.last, b.first)
	} else {
		b.first, b.last = a.last, a.last
	}
	// a now ends exactly where b begins.
	s.updateContacts(true)
	s.updatePairsAndTriads(a.first, b.last, joinFilter{threshold: b.first})

	for i := b.first; i < b.last; i++ {
		s.groupOf.data[i] = a
	}
	flags := a.flags | b.flags
	if flags&SolidGroup != 0 {
		s.depths.request(s.internalCapacity)
		flags |= groupNeedsUpdateDepth
	}
	a.flags = flags
	a.strength = math.Min(a.strength, b.strength)
	a.last = b.last
	a.timestamp = -1
	b.first = b.last
	s.destroyGroup(b)
}

// DestroyParticleGroup removes the group object. Its particles survive as
// ungrouped particles.
func (s *System) DestroyParticleGroup(g *Group) {
	must(!s.locked, ErrLocked, "destroy particle group")
	must(!g.destroyed, ErrDestroyedGroup, "destroy")
	s.destroyGroup(g)
}

func (s *System) destroyGroup(g *Group) {
	if s.listener.Group != nil {
		s.listener.Group(g)
	}
	for i := g.first; i < g.last; i++ {
		if s.groupOf.data[i] == g {
			s.groupOf.data[i] = nil
		}
	}
	s.unlinkGroup(g)
	g.destroyed = true
	g.first, g.last = 0, 0
	s.log.Debug("destroyed particle group", "remaining", s.groupCount)
}

// DestroyParticlesInGroup marks every particle of g for removal.
func (s *System) DestroyParticlesInGroup(g *Group, notify bool) {
	must(!g.destroyed, ErrDestroyedGroup, "destroy particles")
	for i := g.first; i < g.last; i++ {
		s.DestroyParticle(i, notify)
	}
}

// SplitParticleGroup re-creates every connected piece of g as its own group
// and removes g. Particles are connected when they touch or share a bond. The
// originals are destroyed silently and compacted away on the next Solve. It
// returns the new groups, or nil when g is already in one piece.
func (s *System) SplitParticleGroup(g *Group) []*Group {
	must(!s.locked, ErrLocked, "split particle group")
	must(!g.destroyed, ErrDestroyedGroup, "split")
	g.flags &^= groupNeedsSplit
	n := g.Count()
	if n < 2 {
		return nil
	}
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		if !g.Contains(a) || !g.Contains(b) {
			return
		}
		ra, rb := find(a-g.first), find(b-g.first)
		if ra != rb {
			parent[max(ra, rb)] = min(ra, rb)
		}
	}
	for _, c := range s.contacts {
		union(c.IndexA, c.IndexB)
	}
	for _, p := range s.pairs {
		union(p.IndexA, p.IndexB)
	}
	for _, t := range s.triads {
		union(t.IndexA, t.IndexB)
		union(t.IndexB, t.IndexC)
	}

	var roots []int
	members := make(map[int][]int)
	flags := s.flags.data
	for k := 0; k < n; k++ {
		if flags[g.first+k]&ZombieParticle != 0 {
			continue
		}
		r := find(k)
		if _, seen := members[r]; !seen {
			roots = append(roots, r)
		}
		members[r] = append(members[r], g.first+k)
	}
	if len(roots) < 2 {
		return nil
	}
	live := 0
	for _, r := range roots {
		live += len(members[r])
	}
	if !s.reserve(s.count + live) {
		s.log.Warn("not enough capacity to split particle group", "particles", live)
		return nil
	}

	pieces := make([]*Group, 0, len(roots))
	for _, r := range roots {
		first := s.count
		for _, i := range members[r] {
			def := ParticleDef{
				Flags:    s.flags.data[i],
				Position: s.positions.data[i],
				Velocity: s.velocities.data[i],
			}
			if s.colors.allocated() {
				def.Color = s.colors.data[i]
			}
			if s.userData.allocated() {
				def.UserData = s.userData.data[i]
			}
			s.CreateParticle(def)
		}
		piece := s.newGroup(first, s.count, g.flags, g.strength, g.userData, g.transform)
		s.updateContacts(true)
		s.updatePairsAndTriads(first, s.count, groupFilter{})
		if piece.flags&SolidGroup != 0 {
			piece.flags |= groupNeedsUpdateDepth
		}
		pieces = append(pieces, piece)
	}
	for i := g.first; i < g.last; i++ {
		s.flags.data[i] |= ZombieParticle
	}
	s.destroyGroup(g)
	s.log.Debug("split particle group", "pieces", len(pieces), "particles", live)
	return pieces
}

func (s *System) splitPendingGroups() {
	var pending []*Group
	for g := s.groupHead; g != nil; g = g.next {
		if g.flags&groupNeedsSplit != 0 {
			pending = append(pending, g)
		}
	}
	for _, g := range pending {
		s.SplitParticleGroup(g)
	}
}

// computeDepth relaxes distances from the surface of every solid group
// flagged for update. Surface particles are those whose in-group contact
// weight stays below depthSaturation.
func (s *System) computeDepth() {
	depth := s.depths.request(s.internalCapacity)
	accum := s.accum.data
	groupOf := s.groupOf.data

	var contacts []Contact
	for _, c := range s.contacts {
		g := groupOf[c.IndexA]
		if g != nil && g == groupOf[c.IndexB] && g.flags&groupNeedsUpdateDepth != 0 {
			contacts = append(contacts, c)
		}
	}
	var groups []*Group
	iterations := 0
	for g := s.groupHead; g != nil; g = g.next {
		if g.flags&groupNeedsUpdateDepth == 0 {
			continue
		}
		groups = append(groups, g)
		iterations = max(iterations, g.Count())
		for i := g.first; i < g.last; i++ {
			accum[i] = 0
		}
	}
	for _, c := range contacts {
		accum[c.IndexA] += c.Weight
		accum[c.IndexB] += c.Weight
	}
	inf := math.Inf(1)
	for _, g := range groups {
		for i := g.first; i < g.last; i++ {
			if accum[i] < depthSaturation {
				depth[i] = 0
			} else {
				depth[i] = inf
			}
		}
	}
	for t := 0; t < iterations; t++ {
		updated := false
		for _, c := range contacts {
			a, b := c.IndexA, c.IndexB
			r := 1 - c.Weight
			if d := depth[b] + r; depth[a] > d {
				depth[a] = d
				updated = true
			}
			if d := depth[a] + r; depth[b] > d {
				depth[b] = d
				updated = true
			}
		}
		if !updated {
			break
		}
	}
	for _, g := range groups {
		for i := g.first; i < g.last; i++ {
			if math.IsInf(depth[i], 1) {
				depth[i] = 0
			} else {
				depth[i] *= s.diameter
			}
		}
		g.flags &^= groupNeedsUpdateDepth
	}
}
