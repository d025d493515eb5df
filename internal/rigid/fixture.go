package rigid

import (
	"github.com/ByteArena/box2d"

	"github.com/san-kum/liquidsim/internal/particle"
)

// Fixture adapts a Box2D fixture to particle.Fixture.
type Fixture struct {
	f *box2d.B2Fixture
}

func (f Fixture) B2() *box2d.B2Fixture { return f.f }
func (f Fixture) Body() particle.Body  { return Body{b: f.f.GetBody()} }
func (f Fixture) IsSensor() bool       { return f.f.IsSensor() }
func (f Fixture) ChildCount() int      { return f.f.GetShape().GetChildCount() }

func (f Fixture) TestPoint(p particle.Vec) bool {
	return f.f.TestPoint(toB2(p))
}

func (f Fixture) AABB(childIndex int) particle.AABB {
	return fromB2AABB(f.f.GetAABB(childIndex))
}

func (f Fixture) ComputeDistance(p particle.Vec, childIndex int) (float64, particle.Vec) {
	xf := f.f.GetBody().GetTransform()
	return computeDistance(f.f.GetShape(), xf, toB2(p), childIndex)
}

func (f Fixture) RayCast(p1, p2 particle.Vec, maxFraction float64, childIndex int) (particle.RayCastOutput, bool) {
	var out box2d.B2RayCastOutput
	in := box2d.B2RayCastInput{P1: toB2(p1), P2: toB2(p2), MaxFraction: maxFraction}
	if !f.f.RayCast(&out, in, childIndex) {
		return particle.RayCastOutput{}, false
	}
	return particle.RayCastOutput{Normal: fromB2(out.Normal), Fraction: out.Fraction}, true
}

var (
	_ particle.Fixture = Fixture{}
	_ particle.Body    = Body{}
	_ particle.World   = (*World)(nil)
	_ particle.Shape   = Shape{}
	_ particle.Edger   = Shape{}
)
