package particle

// Body is a rigid body particles can push against.
type Body interface {
	WorldCenter() Vec
	Mass() float64
	// InvInertia is the inverse rotational inertia about the center of mass.
	InvInertia() float64
	LinearVelocity() Vec
	AngularVelocity() float64
	ApplyLinearImpulse(impulse, point Vec)
}

// RayCastOutput is a hit reported by Fixture.RayCast at
// p1 + Fraction*(p2-p1).
type RayCastOutput struct {
	Normal   Vec
	Fraction float64
}

// Fixture is one collision shape attached to a Body.
type Fixture interface {
	Body() Body
	IsSensor() bool
	ChildCount() int
	AABB(childIndex int) AABB
	// ComputeDistance returns the signed distance from p to the child and the
	// unit direction pointing away from it.
	ComputeDistance(p Vec, childIndex int) (float64, Vec)
	TestPoint(p Vec) bool
	RayCast(p1, p2 Vec, maxFraction float64, childIndex int) (RayCastOutput, bool)
}

// World finds fixtures overlapping a box. The callback returns false to stop.
type World interface {
	QueryAABB(fn func(Fixture) bool, aabb AABB)
}

// Shape is the geometry used to fill or clear a region with particles.
type Shape interface {
	ChildCount() int
	ComputeAABB(xf Transform, childIndex int) AABB
	TestPoint(xf Transform, p Vec) bool
}

// Edger is implemented by shapes that may be made of segments. ok is false
// when the child has area.
type Edger interface {
	ChildEdge(childIndex int) (v1, v2 Vec, ok bool)
}

// DestructionListener observes particles and groups as they are removed.
// Particle is only called for particles flagged DestructionListenerParticle,
// before their slot is reused.
type DestructionListener struct {
	Particle func(index int)
	Group    func(g *Group)
}

// QueryFunc receives a particle index. Return false to stop the query.
type QueryFunc func(index int) bool

// RayCastFunc receives a particle hit and returns the fraction to clip the
// ray to. Returning 0 or less stops the cast.
type RayCastFunc func(index int, point, normal Vec, fraction float64) float64
