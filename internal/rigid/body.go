package rigid

import (
	"github.com/ByteArena/box2d"

	"github.com/san-kum/liquidsim/internal/particle"
)

// Body adapts a Box2D body to particle.Body.
type Body struct {
	b *box2d.B2Body
}

func (b Body) B2() *box2d.B2Body            { return b.b }
func (b Body) WorldCenter() particle.Vec    { return fromB2(b.b.GetWorldCenter()) }
func (b Body) Position() particle.Vec       { return fromB2(b.b.GetPosition()) }
func (b Body) Angle() float64               { return b.b.GetAngle() }
func (b Body) Mass() float64                { return b.b.GetMass() }
func (b Body) LinearVelocity() particle.Vec { return fromB2(b.b.GetLinearVelocity()) }
func (b Body) AngularVelocity() float64     { return b.b.GetAngularVelocity() }
func (b Body) Dynamic() bool                { return b.b.GetType() == box2d.B2BodyType.B2_dynamicBody }

// InvInertia is zero for static bodies and bodies with fixed rotation.
func (b Body) InvInertia() float64 {
	return b.b.M_invI
}

// ApplyLinearImpulse wakes the body. Static bodies ignore it.
func (b Body) ApplyLinearImpulse(impulse, point particle.Vec) {
	b.b.ApplyLinearImpulse(toB2(impulse), toB2(point), true)
}

// Fixtures returns the body's fixtures.
func (b Body) Fixtures() []Fixture {
	var fixtures []Fixture
	for f := b.b.GetFixtureList(); f != nil; f = f.GetNext() {
		fixtures = append(fixtures, Fixture{f: f})
	}
	return fixtures
}
