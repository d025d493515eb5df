package particle

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	xTruncBits = 12
	yTruncBits = 12
	tagBits    = 32
	yOffset    = 1 << (yTruncBits - 1)
	yShift     = tagBits - yTruncBits
	xShift     = tagBits - yTruncBits - xTruncBits
	xScale     = 1 << xShift
	xOffset    = xScale * (1 << (xTruncBits - 1))
)

// proxy pairs a particle with its spatial tag.
type proxy struct {
	index int
	tag   uint32
}

// computeTag packs a position measured in diameters into a tag ordered by
// row, then by column.
func computeTag(x, y float64) uint32 {
	return uint32(int64(y+yOffset))<<yShift + uint32(int64(xScale*x+xOffset))
}

// relativeTag offsets tag by x columns and y rows.
func relativeTag(tag uint32, x, y int) uint32 {
	return tag + uint32(int32(y<<yShift)) + uint32(int32(x<<xShift))
}

func (s *System) tagOf(p Vec) uint32 {
	return computeTag(s.inverseDiameter*p.X, s.inverseDiameter*p.Y)
}

func compareProxies(a, b proxy) int {
	if c := cmp.Compare(a.tag, b.tag); c != 0 {
		return c
	}
	return cmp.Compare(a.index, b.index)
}

func (s *System) updateProxies() {
	pos := s.positions.data
	for k := range s.proxies {
		p := &s.proxies[k]
		p.tag = s.tagOf(pos[p.index])
	}
	slices.SortFunc(s.proxies, compareProxies)
	s.proxiesDirty = false
}

func (s *System) ensureProxies() {
	if s.proxiesDirty {
		s.updateProxies()
	}
}

// proxyRange returns the proxies whose tags fall between the corners of
// aabb. Every particle inside aabb is in the range; the converse does not
// hold.
func (s *System) proxyRange(aabb AABB) []proxy {
	lower := s.tagOf(aabb.Lower)
	upper := s.tagOf(aabb.Upper)
	first := sort.Search(len(s.proxies), func(k int) bool { return s.proxies[k].tag >= lower })
	last := sort.Search(len(s.proxies), func(k int) bool { return s.proxies[k].tag > upper })
	if last < first {
		return nil
	}
	return s.proxies[first:last]
}

// QueryAABB calls fn for every particle inside aabb until fn returns false.
func (s *System) QueryAABB(fn QueryFunc, aabb AABB) {
	if s.count == 0 {
		return
	}
	s.ensureProxies()
	pos := s.positions.data
	for _, p := range s.proxyRange(aabb) {
		if aabb.Contains(pos[p.index]) && !fn(p.index) {
			return
		}
	}
}

// QueryShape calls fn for every particle inside shape.
func (s *System) QueryShape(fn QueryFunc, shape Shape, xf Transform) {
	aabb := emptyAABB()
	for child := 0; child < shape.ChildCount(); child++ {
		aabb = aabb.Union(shape.ComputeAABB(xf, child))
	}
	s.QueryAABB(func(i int) bool {
		if !shape.TestPoint(xf, s.positions.data[i]) {
			return true
		}
		return fn(i)
	}, aabb)
}

// RayCast reports particles crossed by the segment p1-p2. Hits arrive in
// spatial order; the fraction returned by fn clips later hits.
func (s *System) RayCast(fn RayCastFunc, p1, p2 Vec) {
	if s.count == 0 {
		return
	}
	s.ensureProxies()
	v := r2.Sub(p2, p1)
	v2 := r2.Dot(v, v)
	if v2 == 0 {
		return
	}
	aabb := emptyAABB().Include(p1).Include(p2).Expand(s.diameter)
	pos := s.positions.data
	flags := s.flags.data
	fraction := 1.0
	for _, px := range s.proxyRange(aabb) {
		i := px.index
		pi := pos[i]
		if !aabb.Contains(pi) || flags[i]&ZombieParticle != 0 {
			continue
		}
		n := r2.Sub(p1, pi)
		p := r2.Dot(n, v)
		q := r2.Dot(n, n) - s.squaredDiameter
		det := p*p - v2*q
		if det < 0 {
			continue
		}
		sq := math.Sqrt(det)
		t := (-p - sq) / v2
		if t > fraction {
			continue
		}
		if t < 0 {
			t = (-p + sq) / v2
			if t < 0 || t > fraction {
				continue
			}
		}
		hit := addScaled(p1, t, v)
		normal := r2.Sub(hit, pi)
		normal = r2.Scale(invSqrt(r2.Norm2(normal)), normal)
		fraction = math.Min(fraction, fn(i, hit, normal, t))
		if fraction <= 0 {
			return
		}
	}
}
