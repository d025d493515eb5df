package rigid

import (
	"math"
	"testing"

	"github.com/ByteArena/box2d"

	"github.com/san-kum/liquidsim/internal/particle"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeDistance(t *testing.T) {
	identity := box2d.MakeB2Transform()
	identity.SetIdentity()

	box := box2d.MakeB2PolygonShape()
	box.SetAsBox(1, 1)
	circle := box2d.MakeB2CircleShape()
	circle.M_radius = 1
	edge := box2d.MakeB2EdgeShape()
	edge.Set(box2d.MakeB2Vec2(-1, 0), box2d.MakeB2Vec2(1, 0))

	tests := []struct {
		name     string
		shape    box2d.B2ShapeInterface
		p        particle.Vec
		distance float64
		normal   particle.Vec
	}{
		{"circle outside", &circle, particle.Vec{X: 3}, 2, particle.Vec{X: 1}},
		{"circle inside", &circle, particle.Vec{Y: -0.25}, -0.75, particle.Vec{Y: -1}},
		{"box above face", &box, particle.Vec{Y: 3}, 2, particle.Vec{Y: 1}},
		{"box inside", &box, particle.Vec{Y: 0.5}, -0.5, particle.Vec{Y: 1}},
		{"edge interior", &edge, particle.Vec{Y: 2}, 2, particle.Vec{Y: 1}},
		{"edge past end", &edge, particle.Vec{X: 3}, 2, particle.Vec{X: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, n := computeDistance(tt.shape, identity, toB2(tt.p), 0)
			if !near(d, tt.distance) {
				t.Errorf("distance = %v, want %v", d, tt.distance)
			}
			if !near(n.X, tt.normal.X) || !near(n.Y, tt.normal.Y) {
				t.Errorf("normal = %v, want %v", n, tt.normal)
			}
		})
	}
}

func TestComputeDistanceTransformed(t *testing.T) {
	box := box2d.MakeB2PolygonShape()
	box.SetAsBox(1, 1)
	xf := box2d.MakeB2TransformByPositionAndRotation(box2d.MakeB2Vec2(5, 0), box2d.MakeB2RotFromAngle(math.Pi/2))

	d, n := computeDistance(&box, xf, box2d.MakeB2Vec2(5, 4), 0)
	if !near(d, 3) {
		t.Errorf("distance = %v, want 3", d)
	}
	if !near(n.X, 0) || !near(n.Y, 1) {
		t.Errorf("normal = %v, want (0, 1)", n)
	}
}

func TestComputeDistanceChainChild(t *testing.T) {
	chain := box2d.MakeB2ChainShape()
	chain.CreateChain([]box2d.B2Vec2{
		box2d.MakeB2Vec2(0, 0),
		box2d.MakeB2Vec2(4, 0),
		box2d.MakeB2Vec2(4, 4),
	}, 3)
	identity := box2d.MakeB2Transform()
	identity.SetIdentity()

	d, n := computeDistance(&chain, identity, box2d.MakeB2Vec2(5, 2), 1)
	if !near(d, 1) || !near(n.X, 1) {
		t.Errorf("child 1: distance %v normal %v", d, n)
	}
	d, _ = computeDistance(&chain, identity, box2d.MakeB2Vec2(5, 2), 0)
	if !near(d, math.Hypot(1, 2)) {
		t.Errorf("child 0: distance %v", d)
	}
}

func TestUnknownShapeIsFar(t *testing.T) {
	identity := box2d.MakeB2Transform()
	d, _ := computeDistance(nil, identity, box2d.MakeB2Vec2(0, 0), 0)
	if !math.IsInf(d, 1) {
		t.Errorf("distance = %v, want +Inf", d)
	}
}
