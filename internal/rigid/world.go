package rigid

import (
	"github.com/ByteArena/box2d"

	"github.com/san-kum/liquidsim/internal/particle"
)

const (
	DefaultVelocityIterations = 8
	DefaultPositionIterations = 3
)

// World is a Box2D world usable as a particle.World.
type World struct {
	b2                 *box2d.B2World
	VelocityIterations int
	PositionIterations int
}

func NewWorld(gravity particle.Vec) *World {
	w := box2d.MakeB2World(toB2(gravity))
	return &World{
		b2:                 &w,
		VelocityIterations: DefaultVelocityIterations,
		PositionIterations: DefaultPositionIterations,
	}
}

// B2 exposes the underlying Box2D world.
func (w *World) B2() *box2d.B2World {
	return w.b2
}

func (w *World) Gravity() particle.Vec {
	return fromB2(w.b2.GetGravity())
}

// Step advances every body by dt.
func (w *World) Step(dt float64) {
	w.b2.Step(dt, w.VelocityIterations, w.PositionIterations)
}

// QueryAABB reports each fixture overlapping aabb once, even when several of
// its children overlap.
func (w *World) QueryAABB(fn func(particle.Fixture) bool, aabb particle.AABB) {
	seen := make(map[*box2d.B2Fixture]struct{})
	w.b2.QueryAABB(func(f *box2d.B2Fixture) bool {
		if _, dup := seen[f]; dup {
			return true
		}
		seen[f] = struct{}{}
		return fn(Fixture{f: f})
	}, toB2AABB(aabb))
}

// Bodies returns every body in the world.
func (w *World) Bodies() []Body {
	var bodies []Body
	for b := w.b2.GetBodyList(); b != nil; b = b.GetNext() {
		bodies = append(bodies, Body{b: b})
	}
	return bodies
}

func (w *World) createBody(typ uint8, position particle.Vec, angle float64) *box2d.B2Body {
	def := box2d.MakeB2BodyDef()
	def.Type = typ
	def.Position = toB2(position)
	def.Angle = angle
	return w.b2.CreateBody(&def)
}

// CreateStaticBox adds an immovable box with half extents hx, hy.
func (w *World) CreateStaticBox(center particle.Vec, hx, hy, angle float64) Body {
	b := w.createBody(box2d.B2BodyType.B2_staticBody, center, angle)
	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(hx, hy)
	b.CreateFixture(&shape, 0)
	return Body{b: b}
}

// CreateDynamicBox adds a box that falls and floats.
func (w *World) CreateDynamicBox(center particle.Vec, hx, hy, density float64) Body {
	b := w.createBody(box2d.B2BodyType.B2_dynamicBody, center, 0)
	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(hx, hy)
	b.CreateFixture(&shape, density)
	return Body{b: b}
}

func (w *World) CreateDynamicCircle(center particle.Vec, radius, density float64) Body {
	b := w.createBody(box2d.B2BodyType.B2_dynamicBody, center, 0)
	shape := box2d.MakeB2CircleShape()
	shape.M_radius = radius
	b.CreateFixture(&shape, density)
	return Body{b: b}
}

// CreateContainer adds an open-topped static box spanning lower to upper,
// built from one chain so particles see no seams at the corners.
func (w *World) CreateContainer(lower, upper particle.Vec) Body {
	b := w.createBody(box2d.B2BodyType.B2_staticBody, particle.Vec{}, 0)
	vertices := []box2d.B2Vec2{
		box2d.MakeB2Vec2(lower.X, upper.Y),
		box2d.MakeB2Vec2(lower.X, lower.Y),
		box2d.MakeB2Vec2(upper.X, lower.Y),
		box2d.MakeB2Vec2(upper.X, upper.Y),
	}
	chain := box2d.MakeB2ChainShape()
	chain.CreateChain(vertices, len(vertices))
	b.CreateFixture(&chain, 0)
	return Body{b: b}
}

// CreateEdge adds a static segment.
func (w *World) CreateEdge(v1, v2 particle.Vec) Body {
	b := w.createBody(box2d.B2BodyType.B2_staticBody, particle.Vec{}, 0)
	edge := box2d.MakeB2EdgeShape()
	edge.Set(toB2(v1), toB2(v2))
	b.CreateFixture(&edge, 0)
	return Body{b: b}
}
