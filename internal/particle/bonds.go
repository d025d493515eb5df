package particle

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pair is a spring bond holding two particles at their creation distance.
type Pair struct {
	IndexA, IndexB int
	Flags          Flag
	Strength       float64
	Distance       float64
}

// Triad is an elastic bond between three particles. PA, PB and PC are the
// rest offsets from the triangle's centroid.
type Triad struct {
	IndexA, IndexB, IndexC int
	Flags                  Flag
	Strength               float64
	PA, PB, PC             Vec
	KA, KB, KC, S          float64
}

// connectionFilter decides which bonds updatePairsAndTriads may create.
type connectionFilter interface {
	isNecessary(index int) bool
	shouldCreatePair(a, b int) bool
	shouldCreateTriad(a, b, c int) bool
}

type groupFilter struct{}

func (groupFilter) isNecessary(int) bool                 { return true }
func (groupFilter) shouldCreatePair(int, int) bool       { return true }
func (groupFilter) shouldCreateTriad(int, int, int) bool { return true }

// joinFilter only admits bonds spanning the boundary between two groups
// being joined; particles below threshold came from the first group.
type joinFilter struct {
	threshold int
}

func (f joinFilter) isNecessary(index int) bool {
	return index >= f.threshold
}

func (f joinFilter) shouldCreatePair(a, b int) bool {
	return (a < f.threshold && f.threshold <= b) || (b < f.threshold && f.threshold <= a)
}

func (f joinFilter) shouldCreateTriad(a, b, c int) bool {
	return (a < f.threshold || b < f.threshold || c < f.threshold) &&
		(f.threshold <= a || f.threshold <= b || f.threshold <= c)
}

// updatePairsAndTriads adds bonds among particles in [first, last) using the
// current contacts for pairs and a Voronoi triangulation for triads.
func (s *System) updatePairsAndTriads(first, last int, filter connectionFilter) {
	flags := s.flags.data
	pos := s.positions.data
	var union Flag
	for i := first; i < last; i++ {
		union |= flags[i]
	}
	if union&pairFlags != 0 {
		for _, c := range s.contacts {
			a, b := c.IndexA, c.IndexB
			if a < first || a >= last || b < first || b >= last {
				continue
			}
			f := flags[a] | flags[b]
			if f&pairFlags == 0 || f&ZombieParticle != 0 {
				continue
			}
			if (!filter.isNecessary(a) && !filter.isNecessary(b)) || !filter.shouldCreatePair(a, b) {
				continue
			}
			s.pairs = append(s.pairs, Pair{
				IndexA:   a,
				IndexB:   b,
				Flags:    c.Flags,
				Strength: math.Min(s.groupStrength(a), s.groupStrength(b)),
				Distance: r2.Norm(r2.Sub(pos[a], pos[b])),
			})
		}
	}
	if union&triadFlags != 0 {
		d := newVoronoiDiagram(last - first)
		for i := first; i < last; i++ {
			if flags[i]&ZombieParticle == 0 {
				d.addGenerator(pos[i], i, filter.isNecessary(i))
			}
		}
		stride := s.particleStride()
		d.generate(stride/2, stride*2)
		maxDistance2 := maxTriadDistanceSquared * s.squaredDiameter
		d.nodes(func(a, b, c int) {
			f := flags[a] | flags[b] | flags[c]
			if f&triadFlags == 0 || !filter.shouldCreateTriad(a, b, c) {
				return
			}
			pa, pb, pc := pos[a], pos[b], pos[c]
			dab, dbc, dca := r2.Sub(pa, pb), r2.Sub(pb, pc), r2.Sub(pc, pa)
			if r2.Norm2(dab) >= maxDistance2 || r2.Norm2(dbc) >= maxDistance2 || r2.Norm2(dca) >= maxDistance2 {
				return
			}
			mid := r2.Scale(1.0/3, r2.Add(r2.Add(pa, pb), pc))
			s.triads = append(s.triads, Triad{
				IndexA:   a,
				IndexB:   b,
				IndexC:   c,
				Flags:    f,
				Strength: math.Min(s.groupStrength(a), math.Min(s.groupStrength(b), s.groupStrength(c))),
				PA:       r2.Sub(pa, mid),
				PB:       r2.Sub(pb, mid),
				PC:       r2.Sub(pc, mid),
				KA:       -r2.Dot(dca, dab),
				KB:       -r2.Dot(dab, dbc),
				KC:       -r2.Dot(dbc, dca),
				S:        r2.Cross(pa, pb) + r2.Cross(pb, pc) + r2.Cross(pc, pa),
			})
		})
	}
}
