package particle

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func (s *System) solveViscous() {
	strength := s.def.ViscousStrength
	invMass := s.ParticleInvMass()
	pos := s.positions.data
	vel := s.velocities.data
	flags := s.flags.data
	dv := s.deltas()
	for _, c := range s.bodyContacts {
		a := c.Index
		if flags[a]&ViscousParticle == 0 {
			continue
		}
		p := pos[a]
		v := r2.Sub(bodyVelocityAt(c.Body, p), vel[a])
		f := r2.Scale(strength*c.Mass*c.Weight, v)
		dv[a] = addScaled(dv[a], invMass, f)
		c.Body.ApplyLinearImpulse(r2.Scale(-1, f), p)
	}
	for _, c := range s.contacts {
		if c.Flags&ViscousParticle == 0 {
			continue
		}
		a, b := c.IndexA, c.IndexB
		f := r2.Scale(strength*c.Weight, r2.Sub(vel[b], vel[a]))
		dv[a] = r2.Add(dv[a], f)
		dv[b] = r2.Sub(dv[b], f)
	}
	s.applyDeltas(dv)
}

// solvePowder pushes overlapping powder particles apart once they are closer
// than the generation stride.
func (s *System) solvePowder(st step) {
	strength := s.def.PowderStrength * s.criticalVelocity(st)
	minWeight := 1 - particleStride
	invMass := s.ParticleInvMass()
	pos := s.positions.data
	flags := s.flags.data
	dv := s.deltas()
	for _, c := range s.bodyContacts {
		a := c.Index
		if flags[a]&PowderParticle == 0 || c.Weight <= minWeight {
			continue
		}
		f := r2.Scale(strength*c.Mass*(c.Weight-minWeight), c.Normal)
		dv[a] = addScaled(dv[a], -invMass, f)
		c.Body.ApplyLinearImpulse(f, pos[a])
	}
	for _, c := range s.contacts {
		if c.Flags&PowderParticle == 0 || c.Weight <= minWeight {
			continue
		}
		f := r2.Scale(strength*(c.Weight-minWeight), c.Normal)
		dv[c.IndexA] = r2.Sub(dv[c.IndexA], f)
		dv[c.IndexB] = r2.Add(dv[c.IndexB], f)
	}
	s.applyDeltas(dv)
}

// solveTensile applies surface tension in two passes: the first sums a
// weighted normal per particle, which is large at the surface and cancels in
// the interior; the second pushes pairs along it.
func (s *System) solveTensile(st step) {
	acc2 := s.accum2.data[:s.count]
	clear(acc2)
	for _, c := range s.contacts {
		if c.Flags&TensileParticle == 0 {
			continue
		}
		wn := r2.Scale((1-c.Weight)*c.Weight, c.Normal)
		acc2[c.IndexA] = r2.Sub(acc2[c.IndexA], wn)
		acc2[c.IndexB] = r2.Add(acc2[c.IndexB], wn)
	}
	crit := s.criticalVelocity(st)
	pressureStrength := s.def.SurfaceTensionPressureStrength * crit
	normalStrength := s.def.SurfaceTensionNormalStrength * crit
	maxVariation := maxParticleForce * crit
	weights := s.weights.data
	dv := s.deltas()
	for _, c := range s.contacts {
		if c.Flags&TensileParticle == 0 {
			continue
		}
		a, b := c.IndexA, c.IndexB
		h := weights[a] + weights[b]
		sv := r2.Sub(acc2[b], acc2[a])
		fn := math.Min(pressureStrength*(h-2)+normalStrength*r2.Dot(sv, c.Normal), maxVariation) * c.Weight
		f := r2.Scale(fn, c.Normal)
		dv[a] = r2.Sub(dv[a], f)
		dv[b] = r2.Add(dv[b], f)
	}
	s.applyDeltas(dv)
}

// solveElastic pulls each triad toward its rest shape, rotated to best fit
// the predicted positions.
func (s *System) solveElastic(st step) {
	strength := st.invDt * s.def.ElasticStrength
	pos := s.positions.data
	vel := s.velocities.data
	dv := s.deltas()
	for _, t := range s.triads {
		if t.Flags&ElasticParticle == 0 {
			continue
		}
		a, b, c := t.IndexA, t.IndexB, t.IndexC
		pa := addScaled(pos[a], st.dt, vel[a])
		pb := addScaled(pos[b], st.dt, vel[b])
		pc := addScaled(pos[c], st.dt, vel[c])
		mid := r2.Scale(1.0/3, r2.Add(r2.Add(pa, pb), pc))
		pa, pb, pc = r2.Sub(pa, mid), r2.Sub(pb, mid), r2.Sub(pc, mid)
		rs := r2.Cross(t.PA, pa) + r2.Cross(t.PB, pb) + r2.Cross(t.PC, pc)
		rc := r2.Dot(t.PA, pa) + r2.Dot(t.PB, pb) + r2.Dot(t.PC, pc)
		inv := invSqrt(rs*rs + rc*rc)
		r := Rot{S: rs * inv, C: rc * inv}
		k := strength * t.Strength
		dv[a] = addScaled(dv[a], k, r2.Sub(r.Apply(t.PA), pa))
		dv[b] = addScaled(dv[b], k, r2.Sub(r.Apply(t.PB), pb))
		dv[c] = addScaled(dv[c], k, r2.Sub(r.Apply(t.PC), pc))
	}
	s.applyDeltas(dv)
}

// solveSpring drives each pair back toward its rest distance.
func (s *System) solveSpring(st step) {
	strength := st.invDt * s.def.SpringStrength
	pos := s.positions.data
	vel := s.velocities.data
	dv := s.deltas()
	for _, p := range s.pairs {
		if p.Flags&SpringParticle == 0 {
			continue
		}
		a, b := p.IndexA, p.IndexB
		d := r2.Sub(addScaled(pos[b], st.dt, vel[b]), addScaled(pos[a], st.dt, vel[a]))
		r1 := r2.Norm(d)
		f := r2.Scale(strength*p.Strength*(p.Distance-r1)*invSqrt(r1*r1), d)
		dv[a] = r2.Sub(dv[a], f)
		dv[b] = r2.Add(dv[b], f)
	}
	s.applyDeltas(dv)
}

// solveSolid separates particles of different groups in proportion to how
// deep they sit inside their solids.
func (s *System) solveSolid(st step) {
	depth := s.depths.data
	if depth == nil {
		return
	}
	strength := st.invDt * s.def.EjectionStrength
	groupOf := s.groupOf.data
	dv := s.deltas()
	for _, c := range s.contacts {
		a, b := c.IndexA, c.IndexB
		if groupOf[a] == groupOf[b] {
			continue
		}
		h := depth[a] + depth[b]
		f := r2.Scale(strength*h*c.Weight, c.Normal)
		dv[a] = r2.Sub(dv[a], f)
		dv[b] = r2.Add(dv[b], f)
	}
	s.applyDeltas(dv)
}

type colorDelta [4]int32

func (s *System) solveColorMixing() {
	if !s.colors.allocated() {
		return
	}
	colors := s.colors.data
	flags := s.flags.data
	deltas := s.colorDeltas.request(s.internalCapacity)[:s.count]
	clear(deltas)
	k := int32(256 * s.def.ColorMixingStrength)
	for _, c := range s.contacts {
		a, b := c.IndexA, c.IndexB
		if flags[a]&flags[b]&ColorMixingParticle == 0 {
			continue
		}
		ca, cb := colors[a], colors[b]
		d := colorDelta{
			k * (int32(cb.R) - int32(ca.R)) >> 8,
			k * (int32(cb.G) - int32(ca.G)) >> 8,
			k * (int32(cb.B) - int32(ca.B)) >> 8,
			k * (int32(cb.A) - int32(ca.A)) >> 8,
		}
		for ch := range d {
			deltas[a][ch] += d[ch]
			deltas[b][ch] -= d[ch]
		}
	}
	for i, d := range deltas {
		if d == (colorDelta{}) {
			continue
		}
		c := &colors[i]
		c.R = clampChannel(int32(c.R) + d[0])
		c.G = clampChannel(int32(c.G) + d[1])
		c.B = clampChannel(int32(c.B) + d[2])
		c.A = clampChannel(int32(c.A) + d[3])
	}
}

func clampChannel(v int32) uint8 {
	return uint8(min(max(v, 0), 255))
}

// solvePressure pushes particles apart in proportion to their local density
// above the rest density of one.
func (s *System) solvePressure(st step) {
	critPressure := s.criticalPressure(st)
	pressurePerWeight := s.def.PressureStrength * critPressure
	maxPressure := maxParticlePressure * critPressure
	weights := s.weights.data
	flags := s.flags.data
	pos := s.positions.data
	acc := s.accum.data[:s.count]
	for i := range acc {
		w := weights[i]
		h := pressurePerWeight * math.Max(0, math.Min(w, maxParticleWeight)-minParticleWeight)
		acc[i] = math.Min(h, maxPressure)
	}
	if s.allFlags&PowderParticle != 0 {
		for i := range acc {
			if flags[i]&PowderParticle != 0 {
				acc[i] = 0
			}
		}
	}
	velocityPerPressure := st.dt / (s.def.Density * s.diameter)
	invMass := s.ParticleInvMass()
	dv := s.deltas()
	for _, c := range s.bodyContacts {
		a := c.Index
		h := acc[a] + pressurePerWeight*c.Weight
		f := r2.Scale(velocityPerPressure*c.Weight*c.Mass*h, c.Normal)
		dv[a] = addScaled(dv[a], -invMass, f)
		c.Body.ApplyLinearImpulse(f, pos[a])
	}
	for _, c := range s.contacts {
		a, b := c.IndexA, c.IndexB
		h := acc[a] + acc[b]
		f := r2.Scale(velocityPerPressure*c.Weight*h, c.Normal)
		dv[a] = r2.Sub(dv[a], f)
		dv[b] = r2.Add(dv[b], f)
	}
	s.applyDeltas(dv)
}

// solveDamping removes the approaching component of relative velocity.
func (s *System) solveDamping() {
	damping := s.def.DampingStrength
	invMass := s.ParticleInvMass()
	pos := s.positions.data
	vel := s.velocities.data
	dv := s.deltas()
	for _, c := range s.bodyContacts {
		a := c.Index
		p := pos[a]
		v := r2.Sub(bodyVelocityAt(c.Body, p), vel[a])
		vn := r2.Dot(v, c.Normal)
		if vn < 0 {
			f := r2.Scale(damping*c.Weight*c.Mass*vn, c.Normal)
			dv[a] = addScaled(dv[a], invMass, f)
			c.Body.ApplyLinearImpulse(r2.Scale(-1, f), p)
		}
	}
	for _, c := range s.contacts {
		a, b := c.IndexA, c.IndexB
		vn := r2.Dot(r2.Sub(vel[b], vel[a]), c.Normal)
		if vn < 0 {
			f := r2.Scale(damping*c.Weight*vn, c.Normal)
			dv[a] = r2.Add(dv[a], f)
			dv[b] = r2.Sub(dv[b], f)
		}
	}
	s.applyDeltas(dv)
}
