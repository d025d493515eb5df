package rigid

import (
	"math"

	"github.com/ByteArena/box2d"

	"github.com/san-kum/liquidsim/internal/particle"
)

// computeDistance returns the signed distance from p to one child of shape
// placed at xf, and the unit direction from the shape toward p. Points inside
// a polygon get a negative distance. Unknown shapes report infinity.
func computeDistance(shape box2d.B2ShapeInterface, xf box2d.B2Transform, p box2d.B2Vec2, childIndex int) (float64, particle.Vec) {
	switch s := shape.(type) {
	case *box2d.B2CircleShape:
		return circleDistance(s, xf, p)
	case box2d.B2CircleShape:
		return circleDistance(&s, xf, p)
	case *box2d.B2PolygonShape:
		return polygonDistance(s, xf, p)
	case *box2d.B2EdgeShape:
		return edgeDistance(xf, s.M_vertex1, s.M_vertex2, p)
	case *box2d.B2ChainShape:
		return chainDistance(s, xf, p, childIndex)
	}
	return math.Inf(1), particle.Vec{}
}

func circleDistance(s *box2d.B2CircleShape, xf box2d.B2Transform, p box2d.B2Vec2) (float64, particle.Vec) {
	center := box2d.B2TransformVec2Mul(xf, s.M_p)
	d := box2d.B2Vec2Sub(p, center)
	length := d.Normalize()
	return length - s.M_radius, fromB2(d)
}

func polygonDistance(s *box2d.B2PolygonShape, xf box2d.B2Transform, p box2d.B2Vec2) (float64, particle.Vec) {
	local := box2d.B2RotVec2MulT(xf.Q, box2d.B2Vec2Sub(p, xf.P))
	maxDistance := -math.MaxFloat64
	normal := local
	for i := 0; i < s.M_count; i++ {
		dot := box2d.B2Vec2Dot(s.M_normals[i], box2d.B2Vec2Sub(local, s.M_vertices[i]))
		if dot > maxDistance {
			maxDistance = dot
			normal = s.M_normals[i]
		}
	}
	// Outside near a corner this is the face separation, not the corner
	// distance. Contacts only need it within one diameter.
	return maxDistance, fromB2(box2d.B2RotVec2Mul(xf.Q, normal))
}

func edgeDistance(xf box2d.B2Transform, v1, v2, p box2d.B2Vec2) (float64, particle.Vec) {
	a := box2d.B2TransformVec2Mul(xf, v1)
	b := box2d.B2TransformVec2Mul(xf, v2)
	d := box2d.B2Vec2Sub(p, a)
	s := box2d.B2Vec2Sub(b, a)
	if ds := box2d.B2Vec2Dot(d, s); ds > 0 {
		s2 := box2d.B2Vec2Dot(s, s)
		if ds > s2 {
			d = box2d.B2Vec2Sub(p, b)
		} else {
			d = box2d.B2Vec2Sub(d, box2d.B2Vec2MulScalar(ds/s2, s))
		}
	}
	length := d.Normalize()
	return length, fromB2(d)
}

func chainDistance(s *box2d.B2ChainShape, xf box2d.B2Transform, p box2d.B2Vec2, childIndex int) (float64, particle.Vec) {
	edge := box2d.MakeB2EdgeShape()
	s.GetChildEdge(&edge, childIndex)
	return edgeDistance(xf, edge.M_vertex1, edge.M_vertex2, p)
}
