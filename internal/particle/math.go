package particle

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a point or direction in world space.
type Vec = r2.Vec

// Rot is a planar rotation stored as its sine and cosine.
type Rot struct {
	S, C float64
}

// NewRot returns the rotation by angle radians.
func NewRot(angle float64) Rot {
	s, c := math.Sincos(angle)
	return Rot{S: s, C: c}
}

func (q Rot) Angle() float64 {
	return math.Atan2(q.S, q.C)
}

// Apply rotates v.
func (q Rot) Apply(v Vec) Vec {
	return Vec{X: q.C*v.X - q.S*v.Y, Y: q.S*v.X + q.C*v.Y}
}

// ApplyInverse rotates v by the inverse of q.
func (q Rot) ApplyInverse(v Vec) Vec {
	return Vec{X: q.C*v.X + q.S*v.Y, Y: -q.S*v.X + q.C*v.Y}
}

// Mul composes q after r.
func (q Rot) Mul(r Rot) Rot {
	return Rot{S: q.S*r.C + q.C*r.S, C: q.C*r.C - q.S*r.S}
}

// Transform is a rotation followed by a translation.
type Transform struct {
	P Vec
	Q Rot
}

func Identity() Transform {
	return Transform{Q: Rot{C: 1}}
}

func NewTransform(p Vec, angle float64) Transform {
	return Transform{P: p, Q: NewRot(angle)}
}

func (t Transform) Apply(v Vec) Vec {
	return r2.Add(t.Q.Apply(v), t.P)
}

func (t Transform) ApplyInverse(v Vec) Vec {
	return t.Q.ApplyInverse(r2.Sub(v, t.P))
}

// Mul returns the transform that applies b first and then t.
func (t Transform) Mul(b Transform) Transform {
	return Transform{P: r2.Add(t.Q.Apply(b.P), t.P), Q: t.Q.Mul(b.Q)}
}

// AABB is an axis-aligned box.
type AABB struct {
	Lower, Upper Vec
}

func emptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Lower: Vec{X: inf, Y: inf}, Upper: Vec{X: -inf, Y: -inf}}
}

// Contains reports whether p lies inside a, bounds included.
func (a AABB) Contains(p Vec) bool {
	return a.Lower.X <= p.X && p.X <= a.Upper.X && a.Lower.Y <= p.Y && p.Y <= a.Upper.Y
}

// Expand grows a by d on every side.
func (a AABB) Expand(d float64) AABB {
	return AABB{
		Lower: Vec{X: a.Lower.X - d, Y: a.Lower.Y - d},
		Upper: Vec{X: a.Upper.X + d, Y: a.Upper.Y + d},
	}
}

// Include returns the smallest box containing a and p.
func (a AABB) Include(p Vec) AABB {
	return AABB{
		Lower: Vec{X: math.Min(a.Lower.X, p.X), Y: math.Min(a.Lower.Y, p.Y)},
		Upper: Vec{X: math.Max(a.Upper.X, p.X), Y: math.Max(a.Upper.Y, p.Y)},
	}
}

// Union returns the smallest box containing a and b.
func (a AABB) Union(b AABB) AABB {
	return a.Include(b.Lower).Include(b.Upper)
}

func (a AABB) Center() Vec {
	return r2.Scale(0.5, r2.Add(a.Lower, a.Upper))
}

func (a AABB) Valid() bool {
	return a.Lower.X <= a.Upper.X && a.Lower.Y <= a.Upper.Y
}

// crossSV is the cross product of a scalar angular rate with v.
func crossSV(s float64, v Vec) Vec {
	return Vec{X: -s * v.Y, Y: s * v.X}
}

// maxInverse stands in for 1/sqrt(0) so coincident particles yield a zero
// normal and full weight instead of NaN.
const maxInverse = 1e30

func invSqrt(x float64) float64 {
	if x <= 0 {
		return maxInverse
	}
	return 1 / math.Sqrt(x)
}

func addScaled(v Vec, s float64, d Vec) Vec {
	return Vec{X: v.X + s*d.X, Y: v.Y + s*d.Y}
}
