package particle

import (
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func newTestSystem(radius float64) *System {
	def := DefaultDef()
	def.Radius = radius
	def.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(def, nil)
}

// lattice returns rows*cols points spaced by stride, row-major from the origin.
func lattice(rows, cols int, stride float64) []Vec {
	points := make([]Vec, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			points = append(points, Vec{X: float64(c) * stride, Y: float64(r) * stride})
		}
	}
	return points
}

type boxShape struct {
	hx, hy float64
}

func (b boxShape) ChildCount() int { return 1 }

func (b boxShape) ComputeAABB(xf Transform, _ int) AABB {
	aabb := emptyAABB()
	for _, c := range []Vec{{X: -b.hx, Y: -b.hy}, {X: b.hx, Y: -b.hy}, {X: b.hx, Y: b.hy}, {X: -b.hx, Y: b.hy}} {
		aabb = aabb.Include(xf.Apply(c))
	}
	return aabb
}

func (b boxShape) TestPoint(xf Transform, p Vec) bool {
	l := xf.ApplyInverse(p)
	return math.Abs(l.X) <= b.hx && math.Abs(l.Y) <= b.hy
}

type segmentShape struct {
	v1, v2 Vec
}

func (s segmentShape) ChildCount() int { return 1 }

func (s segmentShape) ComputeAABB(xf Transform, _ int) AABB {
	return emptyAABB().Include(xf.Apply(s.v1)).Include(xf.Apply(s.v2))
}

func (s segmentShape) TestPoint(Transform, Vec) bool { return false }

func (s segmentShape) ChildEdge(int) (Vec, Vec, bool) { return s.v1, s.v2, true }

// floorBody records impulses pushed into it.
type floorBody struct {
	mass     float64
	impulses []Vec
}

func (b *floorBody) WorldCenter() Vec         { return Vec{Y: -0.5} }
func (b *floorBody) Mass() float64            { return b.mass }
func (b *floorBody) InvInertia() float64      { return 0 }
func (b *floorBody) LinearVelocity() Vec      { return Vec{} }
func (b *floorBody) AngularVelocity() float64 { return 0 }

func (b *floorBody) ApplyLinearImpulse(impulse, _ Vec) {
	b.impulses = append(b.impulses, impulse)
}

func (b *floorBody) totalImpulse() Vec {
	var sum Vec
	for _, i := range b.impulses {
		sum = r2.Add(sum, i)
	}
	return sum
}

// floorFixture is the half plane y <= 0 clipped to |x| <= 10.
type floorFixture struct {
	body *floorBody
}

func (f floorFixture) Body() Body           { return f.body }
func (f floorFixture) IsSensor() bool       { return false }
func (f floorFixture) ChildCount() int      { return 1 }
func (f floorFixture) TestPoint(p Vec) bool { return p.Y <= 0 && math.Abs(p.X) <= 10 }

func (f floorFixture) AABB(int) AABB {
	return AABB{Lower: Vec{X: -10, Y: -1}, Upper: Vec{X: 10, Y: 0}}
}

func (f floorFixture) ComputeDistance(p Vec, _ int) (float64, Vec) {
	return p.Y, Vec{Y: 1}
}

func (f floorFixture) RayCast(p1, p2 Vec, maxFraction float64, _ int) (RayCastOutput, bool) {
	if p1.Y < 0 || p2.Y >= 0 {
		return RayCastOutput{}, false
	}
	t := p1.Y / (p1.Y - p2.Y)
	if t > maxFraction {
		return RayCastOutput{}, false
	}
	return RayCastOutput{Normal: Vec{Y: 1}, Fraction: t}, true
}

type floorWorld struct {
	fixture floorFixture
}

func (w floorWorld) QueryAABB(fn func(Fixture) bool, aabb AABB) {
	box := w.fixture.AABB(0)
	if aabb.Lower.X <= box.Upper.X && box.Lower.X <= aabb.Upper.X &&
		aabb.Lower.Y <= box.Upper.Y && box.Lower.Y <= aabb.Upper.Y {
		fn(w.fixture)
	}
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
