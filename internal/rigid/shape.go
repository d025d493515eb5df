package rigid

import (
	"github.com/ByteArena/box2d"

	"github.com/san-kum/liquidsim/internal/particle"
)

// Shape wraps a Box2D shape so it can seed or clear particles. It satisfies
// particle.Shape and, for edges and chains, particle.Edger.
type Shape struct {
	s box2d.B2ShapeInterface
}

// Box is an axis-aligned box centered on the origin.
func Box(hx, hy float64) Shape {
	poly := box2d.MakeB2PolygonShape()
	poly.SetAsBox(hx, hy)
	return Shape{s: &poly}
}

// BoxAt is a box with its own center and rotation.
func BoxAt(hx, hy float64, center particle.Vec, angle float64) Shape {
	poly := box2d.MakeB2PolygonShape()
	poly.SetAsBoxFromCenterAndAngle(hx, hy, toB2(center), angle)
	return Shape{s: &poly}
}

func Circle(center particle.Vec, radius float64) Shape {
	circle := box2d.MakeB2CircleShape()
	circle.M_p = toB2(center)
	circle.M_radius = radius
	return Shape{s: &circle}
}

// Polygon takes the convex hull of vertices. At least three are required.
func Polygon(vertices ...particle.Vec) Shape {
	poly := box2d.MakeB2PolygonShape()
	poly.Set(toB2Slice(vertices), len(vertices))
	return Shape{s: &poly}
}

func Edge(v1, v2 particle.Vec) Shape {
	edge := box2d.MakeB2EdgeShape()
	edge.Set(toB2(v1), toB2(v2))
	return Shape{s: &edge}
}

// Chain is an open polyline. Loop closes it back to the first vertex.
func Chain(loop bool, vertices ...particle.Vec) Shape {
	chain := box2d.MakeB2ChainShape()
	if loop {
		chain.CreateLoop(toB2Slice(vertices), len(vertices))
	} else {
		chain.CreateChain(toB2Slice(vertices), len(vertices))
	}
	return Shape{s: &chain}
}

func (s Shape) B2() box2d.B2ShapeInterface { return s.s }
func (s Shape) ChildCount() int            { return s.s.GetChildCount() }

func (s Shape) ComputeAABB(xf particle.Transform, childIndex int) particle.AABB {
	var aabb box2d.B2AABB
	s.s.ComputeAABB(&aabb, toB2Transform(xf), childIndex)
	return fromB2AABB(aabb)
}

// TestPoint is always false for edges and chains.
func (s Shape) TestPoint(xf particle.Transform, p particle.Vec) bool {
	return s.s.TestPoint(toB2Transform(xf), toB2(p))
}

func (s Shape) ChildEdge(childIndex int) (v1, v2 particle.Vec, ok bool) {
	switch shape := s.s.(type) {
	case *box2d.B2EdgeShape:
		return fromB2(shape.M_vertex1), fromB2(shape.M_vertex2), true
	case *box2d.B2ChainShape:
		edge := box2d.MakeB2EdgeShape()
		shape.GetChildEdge(&edge, childIndex)
		return fromB2(edge.M_vertex1), fromB2(edge.M_vertex2), true
	}
	return particle.Vec{}, particle.Vec{}, false
}

func toB2Slice(vs []particle.Vec) []box2d.B2Vec2 {
	out := make([]box2d.B2Vec2, len(vs))
	for i, v := range vs {
		out[i] = toB2(v)
	}
	return out
}
