package rigid

import (
	"github.com/ByteArena/box2d"

	"github.com/san-kum/liquidsim/internal/particle"
)

func toB2(v particle.Vec) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v.X, v.Y)
}

func fromB2(v box2d.B2Vec2) particle.Vec {
	return particle.Vec{X: v.X, Y: v.Y}
}

func toB2Transform(xf particle.Transform) box2d.B2Transform {
	return box2d.B2Transform{P: toB2(xf.P), Q: box2d.B2Rot{S: xf.Q.S, C: xf.Q.C}}
}

func toB2AABB(a particle.AABB) box2d.B2AABB {
	return box2d.B2AABB{LowerBound: toB2(a.Lower), UpperBound: toB2(a.Upper)}
}

func fromB2AABB(a box2d.B2AABB) particle.AABB {
	return particle.AABB{Lower: fromB2(a.LowerBound), Upper: fromB2(a.UpperBound)}
}
