package particle

// removed marks an index dropped by a remap.
const removed = -1

// rotateBuffer moves [mid, end) in front of [start, mid) across every
// per-particle buffer and rewrites all stored indices to match.
func (s *System) rotateBuffer(start, mid, end int) {
	if start == mid || mid == end {
		return
	}
	must(0 <= start && start <= mid && mid <= end && end <= s.count, ErrIndexOutOfRange,
		"rotate [%d, %d, %d) with count %d", start, mid, end, s.count)
	s.forEachBuffer(func(b rotator) { b.rotate(start, mid, end) })
	s.remapIndices(func(i int) int {
		switch {
		case i < start:
			return i
		case i < mid:
			return i + end - mid
		case i < end:
			return i + start - mid
		}
		return i
	})
}

type rotator interface {
	rotate(start, mid, end int)
	move(dst, src int)
	reset(from, to int)
}

// forEachBuffer visits the buffers whose contents follow a particle when it
// moves. Scratch buffers are excluded.
func (s *System) forEachBuffer(fn func(rotator)) {
	fn(&s.flags)
	fn(&s.positions)
	fn(&s.velocities)
	fn(&s.colors)
	fn(&s.userData)
	fn(&s.groupOf)
	fn(&s.depths)
	fn(&s.weights)
}

// remapIndices rewrites every stored particle index through remap and drops
// entries that reference a removed particle. Group ranges become the span of
// their surviving members.
func (s *System) remapIndices(remap func(int) int) {
	k := 0
	for _, p := range s.proxies {
		if j := remap(p.index); j != removed {
			p.index = j
			s.proxies[k] = p
			k++
		}
	}
	s.proxies = s.proxies[:k]

	k = 0
	for _, c := range s.contacts {
		a, b := remap(c.IndexA), remap(c.IndexB)
		if a != removed && b != removed {
			c.IndexA, c.IndexB = a, b
			s.contacts[k] = c
			k++
		}
	}
	s.contacts = s.contacts[:k]

	k = 0
	for _, c := range s.bodyContacts {
		if j := remap(c.Index); j != removed {
			c.Index = j
			s.bodyContacts[k] = c
			k++
		}
	}
	clear(s.bodyContacts[k:])
	s.bodyContacts = s.bodyContacts[:k]

	k = 0
	for _, p := range s.pairs {
		a, b := remap(p.IndexA), remap(p.IndexB)
		if a != removed && b != removed {
			p.IndexA, p.IndexB = a, b
			s.pairs[k] = p
			k++
		}
	}
	s.pairs = s.pairs[:k]

	k = 0
	for _, t := range s.triads {
		a, b, c := remap(t.IndexA), remap(t.IndexB), remap(t.IndexC)
		if a != removed && b != removed && c != removed {
			t.IndexA, t.IndexB, t.IndexC = a, b, c
			s.triads[k] = t
			k++
		}
	}
	s.triads = s.triads[:k]

	for g := s.groupHead; g != nil; g = g.next {
		first, last := s.count, 0
		for i := g.first; i < g.last; i++ {
			if j := remap(i); j != removed {
				first = min(first, j)
				last = max(last, j+1)
			}
		}
		if first < last {
			g.first, g.last = first, last
		} else {
			g.first, g.last = 0, 0
		}
	}
}

// solveZombie compacts away particles flagged ZombieParticle, notifying the
// listener first. Groups that lose members are scheduled for a depth update
// when solid and a split when rigid; groups left empty are destroyed unless
// flagged GroupCanBeEmpty.
func (s *System) solveZombie() {
	if cap(s.remap) < s.count {
		s.remap = make([]int, s.count)
	}
	remap := s.remap[:s.count]
	flags := s.flags.data
	n := 0
	for i := 0; i < s.count; i++ {
		f := flags[i]
		if f&ZombieParticle != 0 {
			if f&DestructionListenerParticle != 0 && s.listener.Particle != nil {
				s.listener.Particle(i)
			}
			remap[i] = removed
			continue
		}
		remap[i] = n
		if i != n {
			s.forEachBuffer(func(b rotator) { b.move(n, i) })
		}
		n++
	}
	if n == s.count {
		return
	}

	sizes := make([]int, 0, s.groupCount)
	for g := s.groupHead; g != nil; g = g.next {
		sizes = append(sizes, g.Count())
	}
	s.remapIndices(func(i int) int { return remap[i] })
	old := s.count
	s.count = n
	s.userData.reset(n, old)
	s.groupOf.reset(n, old)

	var empty []*Group
	k := 0
	for g := s.groupHead; g != nil; g, k = g.next, k+1 {
		if g.Count() == sizes[k] {
			continue
		}
		g.timestamp = -1
		if g.Count() == 0 {
			if g.flags&GroupCanBeEmpty == 0 {
				empty = append(empty, g)
			}
			continue
		}
		if g.flags&RigidGroup != 0 {
			g.flags |= groupNeedsSplit
		}
		if g.flags&SolidGroup != 0 {
			g.flags |= groupNeedsUpdateDepth
		}
	}
	for _, g := range empty {
		s.destroyGroup(g)
	}
	s.log.Debug("compacted particles", "removed", old-n, "count", n)
}
