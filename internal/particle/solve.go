package particle

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

type step struct {
	dt    float64
	invDt float64
}

// Solve advances the system by dt. Structural changes are rejected while it
// runs. Particles destroyed before or during the step are compacted away at
// the end, so indices change only across Solve calls.
func (s *System) Solve(dt float64) {
	must(dt >= 0, ErrNegativeStep, "dt %v", dt)
	must(!s.locked, ErrLocked, "solve")
	s.splitPendingGroups()
	if s.count == 0 {
		return
	}
	s.locked = true
	defer func() { s.locked = false }()
	s.timestamp++

	st := step{dt: dt}
	if dt > 0 {
		st.invDt = 1 / dt
	}
	s.updateAllFlags()

	s.applyGravity(st)
	s.limitVelocity(st)
	if s.world != nil && dt > 0 {
		s.solveCollision(st)
	}
	if s.allGroupFlags&RigidGroup != 0 && dt > 0 {
		s.solveRigid(st)
	}
	if s.allFlags&WallParticle != 0 {
		s.solveWall()
	}
	s.integrate(st)

	s.updateContacts(true)
	s.updateBodyContacts()
	s.computeWeight()
	if s.allGroupFlags&groupNeedsUpdateDepth != 0 {
		s.computeDepth()
	}
	if s.allFlags&ViscousParticle != 0 {
		s.solveViscous()
	}
	if s.allFlags&PowderParticle != 0 {
		s.solvePowder(st)
	}
	if s.allFlags&TensileParticle != 0 {
		s.solveTensile(st)
	}
	if s.allFlags&ElasticParticle != 0 {
		s.solveElastic(st)
	}
	if s.allFlags&SpringParticle != 0 {
		s.solveSpring(st)
	}
	if s.allGroupFlags&SolidGroup != 0 {
		s.solveSolid(st)
	}
	if s.allFlags&ColorMixingParticle != 0 {
		s.solveColorMixing()
	}
	s.solvePressure(st)
	s.solveDamping()
	s.solveZombie()
}

func (s *System) updateAllFlags() {
	s.allFlags = 0
	for _, f := range s.Flags() {
		s.allFlags |= f
	}
	s.allGroupFlags = 0
	for g := s.groupHead; g != nil; g = g.next {
		s.allGroupFlags |= g.flags
	}
}

// deltas returns the zeroed velocity accumulator. Passes add their changes to
// it and commit with applyDeltas so results do not depend on contact order.
func (s *System) deltas() []Vec {
	dv := s.deltaV.data[:s.count]
	clear(dv)
	return dv
}

func (s *System) applyDeltas(dv []Vec) {
	vel := s.velocities.data
	for i, d := range dv {
		vel[i].X += d.X
		vel[i].Y += d.Y
	}
}

func (s *System) applyGravity(st step) {
	g := r2.Scale(st.dt*s.def.GravityScale, s.def.Gravity)
	if g == (Vec{}) {
		return
	}
	vel := s.Velocities()
	for i := range vel {
		vel[i] = r2.Add(vel[i], g)
	}
}

// limitVelocity caps speed at one diameter per step.
func (s *System) limitVelocity(st step) {
	if st.dt == 0 {
		return
	}
	crit2 := s.criticalVelocitySquared(st)
	vel := s.Velocities()
	for i, v := range vel {
		if v2 := r2.Norm2(v); v2 > crit2 {
			vel[i] = r2.Scale(math.Sqrt(crit2/v2), v)
		}
	}
}

// solveCollision stops particles whose path this step would cross a fixture,
// placing them just outside the surface and handing the lost momentum to the
// body.
func (s *System) solveCollision(st step) {
	pos := s.positions.data
	vel := s.velocities.data
	flags := s.flags.data
	aabb := emptyAABB()
	for i := 0; i < s.count; i++ {
		aabb = aabb.Include(pos[i]).Include(addScaled(pos[i], st.dt, vel[i]))
	}
	s.ensureProxies()
	mass := s.ParticleMass()
	s.world.QueryAABB(func(f Fixture) bool {
		if f.IsSensor() {
			return true
		}
		body := f.Body()
		for child := 0; child < f.ChildCount(); child++ {
			box := f.AABB(child).Expand(s.diameter)
			for _, px := range s.proxyRange(box) {
				a := px.index
				ap := pos[a]
				if !box.Contains(ap) || flags[a]&(ZombieParticle|WallParticle) != 0 {
					continue
				}
				av := vel[a]
				p2 := addScaled(ap, st.dt, av)
				out, hit := f.RayCast(ap, p2, 1, child)
				if !hit {
					continue
				}
				p := addScaled(addScaled(ap, out.Fraction, r2.Sub(p2, ap)), linearSlop, out.Normal)
				v := r2.Scale(st.invDt, r2.Sub(p, ap))
				vel[a] = v
				body.ApplyLinearImpulse(r2.Scale(mass, r2.Sub(av, v)), p)
			}
		}
		return true
	}, aabb.Expand(s.diameter))
}

// solveRigid sets the velocity of every rigid group's particles to the rigid
// motion implied by the group's mean linear and angular velocity.
func (s *System) solveRigid(st step) {
	pos := s.positions.data
	vel := s.velocities.data
	for g := s.groupHead; g != nil; g = g.next {
		if g.flags&RigidGroup == 0 || g.Count() == 0 {
			continue
		}
		g.updateStatistics()
		rot := NewRot(st.dt * g.angularVelocity)
		xf := Transform{
			P: r2.Sub(addScaled(g.center, st.dt, g.linearVelocity), rot.Apply(g.center)),
			Q: rot,
		}
		g.transform = xf.Mul(g.transform)
		vx := Transform{
			P: r2.Scale(st.invDt, xf.P),
			Q: Rot{S: st.invDt * rot.S, C: st.invDt * (rot.C - 1)},
		}
		for i := g.first; i < g.last; i++ {
			vel[i] = vx.Apply(pos[i])
		}
	}
}

func (s *System) solveWall() {
	flags := s.flags.data
	vel := s.velocities.data
	for i := 0; i < s.count; i++ {
		if flags[i]&WallParticle != 0 {
			vel[i] = Vec{}
		}
	}
}

func (s *System) integrate(st step) {
	pos := s.positions.data
	vel := s.velocities.data
	for i := 0; i < s.count; i++ {
		pos[i] = addScaled(pos[i], st.dt, vel[i])
	}
}
