package particle

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// System owns a set of particles and the bonds between them. It is not safe
// for concurrent use.
type System struct {
	def   Def
	world World
	log   *slog.Logger

	count            int
	internalCapacity int
	timestamp        int
	locked           bool
	warnedFull       bool

	allFlags      Flag
	allGroupFlags GroupFlag

	diameter        float64
	inverseDiameter float64
	squaredDiameter float64

	flags       Buffer[Flag]
	positions   Buffer[Vec]
	velocities  Buffer[Vec]
	colors      Buffer[Color]
	userData    Buffer[any]
	groupOf     Buffer[*Group]
	depths      Buffer[float64]
	weights     Buffer[float64]
	accum       Buffer[float64]
	accum2      Buffer[Vec]
	deltaV      Buffer[Vec]
	colorDeltas Buffer[colorDelta]
	remap       []int

	proxies      []proxy
	proxiesDirty bool
	contacts     []Contact
	bodyContacts []BodyContact
	pairs        []Pair
	triads       []Triad

	groupHead  *Group
	groupTail  *Group
	groupCount int

	listener DestructionListener
}

// New creates an empty System. world may be nil when no rigid bodies are
// involved.
func New(def Def, world World) *System {
	must(def.Radius > 0, ErrInvalidDef, "radius %v", def.Radius)
	must(def.Density > 0, ErrInvalidDef, "density %v", def.Density)
	must(def.MaxCount >= 0, ErrInvalidDef, "max count %d", def.MaxCount)
	if def.Logger == nil {
		def.Logger = slog.Default()
	}
	s := &System{
		def:   def,
		world: world,
		log:   def.Logger.With("component", "particle"),
	}
	s.colors.deferred = true
	s.userData.deferred = true
	s.depths.deferred = true
	s.colorDeltas.deferred = true
	s.SetRadius(def.Radius)
	return s
}

func (s *System) Def() Def                 { return s.def }
func (s *System) World() World             { return s.world }
func (s *System) Count() int               { return s.count }
func (s *System) Locked() bool             { return s.locked }
func (s *System) Timestamp() int           { return s.timestamp }
func (s *System) Radius() float64          { return s.diameter / 2 }
func (s *System) Diameter() float64        { return s.diameter }
func (s *System) Density() float64         { return s.def.Density }
func (s *System) GravityScale() float64    { return s.def.GravityScale }
func (s *System) Gravity() Vec             { return s.def.Gravity }
func (s *System) DampingStrength() float64 { return s.def.DampingStrength }
func (s *System) MaxCount() int            { return s.def.MaxCount }

// SetWorld replaces the rigid-body world queried during Solve.
func (s *System) SetWorld(w World) {
	must(!s.locked, ErrLocked, "set world")
	s.world = w
}

func (s *System) SetDestructionListener(l DestructionListener) {
	s.listener = l
}

// SetRadius changes the particle radius. Existing bonds keep their rest
// lengths.
func (s *System) SetRadius(r float64) {
	must(r > 0, ErrInvalidDef, "radius %v", r)
	s.def.Radius = r
	s.diameter = 2 * r
	s.squaredDiameter = s.diameter * s.diameter
	s.inverseDiameter = 1 / s.diameter
	s.proxiesDirty = true
}

func (s *System) SetDensity(d float64) {
	must(d > 0, ErrInvalidDef, "density %v", d)
	s.def.Density = d
}

func (s *System) SetGravity(g Vec)                 { s.def.Gravity = g }
func (s *System) SetGravityScale(scale float64)    { s.def.GravityScale = scale }
func (s *System) SetDampingStrength(d float64)     { s.def.DampingStrength = d }
func (s *System) SetPressureStrength(p float64)    { s.def.PressureStrength = p }
func (s *System) SetViscousStrength(v float64)     { s.def.ViscousStrength = v }
func (s *System) SetPowderStrength(p float64)      { s.def.PowderStrength = p }
func (s *System) SetEjectionStrength(e float64)    { s.def.EjectionStrength = e }
func (s *System) SetElasticStrength(e float64)     { s.def.ElasticStrength = e }
func (s *System) SetSpringStrength(k float64)      { s.def.SpringStrength = k }
func (s *System) SetColorMixingStrength(c float64) { s.def.ColorMixingStrength = c }

// SetMaxCount caps the live particle count. Zero removes the cap.
func (s *System) SetMaxCount(n int) {
	must(n == 0 || n >= s.count, ErrInvalidDef, "max count %d below count %d", n, s.count)
	s.def.MaxCount = n
}

func (s *System) particleStride() float64 {
	return particleStride * s.diameter
}

// ParticleMass is the mass of a single particle.
func (s *System) ParticleMass() float64 {
	stride := s.particleStride()
	return s.def.Density * stride * stride
}

func (s *System) ParticleInvMass() float64 {
	return 1 / s.ParticleMass()
}

// Capacity is the number of particles that fit before the next growth.
func (s *System) Capacity() int {
	c := s.internalCapacity
	c = s.flags.limit(c)
	c = s.positions.limit(c)
	c = s.velocities.limit(c)
	c = s.colors.limit(c)
	c = s.userData.limit(c)
	return c
}

func limitCapacity(capacity, maxCount int) int {
	if maxCount > 0 && capacity > maxCount {
		return maxCount
	}
	return capacity
}

// reserve grows storage so at least n particles fit, if limits allow.
func (s *System) reserve(n int) bool {
	if n <= s.Capacity() {
		return true
	}
	c := max(minBufferCapacity, s.internalCapacity)
	for c < n {
		c *= 2
	}
	c = limitCapacity(c, s.def.MaxCount)
	c = s.flags.limit(c)
	c = s.positions.limit(c)
	c = s.velocities.limit(c)
	c = s.colors.limit(c)
	c = s.userData.limit(c)
	if c > s.internalCapacity {
		s.reallocate(c)
	}
	return n <= s.Capacity()
}

func (s *System) reallocate(capacity int) {
	s.log.Debug("growing particle buffers", "from", s.internalCapacity, "to", capacity)
	n := s.count
	s.flags.reallocate(n, capacity)
	s.positions.reallocate(n, capacity)
	s.velocities.reallocate(n, capacity)
	s.colors.reallocate(n, capacity)
	s.userData.reallocate(n, capacity)
	s.groupOf.reallocate(n, capacity)
	s.depths.reallocate(n, capacity)
	s.weights.reallocate(n, capacity)
	s.accum.reallocate(n, capacity)
	s.accum2.reallocate(n, capacity)
	s.deltaV.reallocate(n, capacity)
	s.colorDeltas.reallocate(n, capacity)
	s.internalCapacity = capacity
}

// CreateParticle appends a particle and returns its index, or InvalidIndex
// when the system is full.
func (s *System) CreateParticle(def ParticleDef) int {
	must(!s.locked, ErrLocked, "create particle")
	if s.count >= s.Capacity() {
		c := minBufferCapacity
		if s.count > 0 {
			c = 2 * s.count
		}
		s.reserve(limitCapacity(c, s.def.MaxCount))
	}
	if s.count >= s.Capacity() {
		if !s.warnedFull {
			s.log.Warn("particle capacity exhausted", "count", s.count, "max", s.def.MaxCount)
			s.warnedFull = true
		}
		return InvalidIndex
	}
	i := s.count
	s.count++
	s.flags.data[i] = def.Flags
	s.positions.data[i] = def.Position
	s.velocities.data[i] = def.Velocity
	s.groupOf.data[i] = nil
	s.weights.data[i] = 0
	if s.depths.allocated() {
		s.depths.data[i] = 0
	}
	if s.colors.allocated() || !def.Color.IsZero() {
		s.colors.request(s.internalCapacity)[i] = def.Color
	}
	if s.userData.allocated() || def.UserData != nil {
		s.userData.request(s.internalCapacity)[i] = def.UserData
	}
	s.proxies = append(s.proxies, proxy{index: i, tag: s.tagOf(def.Position)})
	s.proxiesDirty = true

	if g := def.Group; g != nil {
		must(!g.destroyed, ErrDestroyedGroup, "create particle")
		if g.first < g.last {
			s.rotateBuffer(g.first, g.last, i)
			g.last = i + 1
		} else {
			g.first, g.last = i, i+1
		}
		s.groupOf.data[i] = g
		g.timestamp = -1
	}
	return i
}

// DestroyParticle marks a particle for removal at the end of the next Solve.
// Indices stay stable until then.
func (s *System) DestroyParticle(index int, notify bool) {
	s.checkIndex(index)
	f := ZombieParticle
	if notify {
		f |= DestructionListenerParticle
	}
	s.flags.data[index] |= f
}

// DestroyParticlesInShape marks every live particle inside shape for removal
// and returns how many were marked.
func (s *System) DestroyParticlesInShape(shape Shape, xf Transform, notify bool) int {
	must(!s.locked, ErrLocked, "destroy particles in shape")
	aabb := emptyAABB()
	for child := 0; child < shape.ChildCount(); child++ {
		aabb = aabb.Union(shape.ComputeAABB(xf, child))
	}
	n := 0
	s.QueryAABB(func(i int) bool {
		if s.flags.data[i]&ZombieParticle == 0 && shape.TestPoint(xf, s.positions.data[i]) {
			s.DestroyParticle(i, notify)
			n++
		}
		return true
	}, aabb)
	return n
}

func (s *System) Flags() []Flag      { return s.flags.slice(s.count) }
func (s *System) Positions() []Vec   { return s.positions.slice(s.count) }
func (s *System) Velocities() []Vec  { return s.velocities.slice(s.count) }
func (s *System) Weights() []float64 { return s.weights.slice(s.count) }

// Colors returns the color buffer, allocating it on first use.
func (s *System) Colors() []Color {
	return s.colors.request(s.internalCapacity)[:s.count]
}

// UserData returns the user data buffer, allocating it on first use.
func (s *System) UserData() []any {
	return s.userData.request(s.internalCapacity)[:s.count]
}

// Depths returns penetration depths of particles in solid groups, or nil when
// no solid group has been created.
func (s *System) Depths() []float64 {
	return s.depths.slice(s.count)
}

func (s *System) Contacts() []Contact         { return s.contacts }
func (s *System) BodyContacts() []BodyContact { return s.bodyContacts }
func (s *System) Pairs() []Pair               { return s.pairs }
func (s *System) Triads() []Triad             { return s.triads }

// ParticleGroup returns the group owning a particle, or nil.
func (s *System) ParticleGroup(index int) *Group {
	s.checkIndex(index)
	return s.groupOf.data[index]
}

func (s *System) SetParticleFlags(index int, f Flag) {
	s.checkIndex(index)
	s.flags.data[index] = f
}

// ApplyLinearImpulse changes a particle's velocity by impulse / mass.
func (s *System) ApplyLinearImpulse(index int, impulse Vec) {
	s.checkIndex(index)
	s.velocities.data[index] = addScaled(s.velocities.data[index], s.ParticleInvMass(), impulse)
}

// SetFlagsBuffer replaces flag storage with buf, which must hold at least
// Count elements. Its length then caps the capacity. Passing nil returns the
// storage to the System.
func (s *System) SetFlagsBuffer(buf []Flag) error {
	return s.flags.set(buf, s.count, s.internalCapacity)
}

func (s *System) SetPositionBuffer(buf []Vec) error {
	return s.positions.set(buf, s.count, s.internalCapacity)
}

func (s *System) SetVelocityBuffer(buf []Vec) error {
	return s.velocities.set(buf, s.count, s.internalCapacity)
}

func (s *System) SetColorBuffer(buf []Color) error {
	return s.colors.set(buf, s.count, s.internalCapacity)
}

func (s *System) SetUserDataBuffer(buf []any) error {
	return s.userData.set(buf, s.count, s.internalCapacity)
}

// ComputeCollisionEnergy returns the kinetic energy lost to particles that
// are currently approaching each other.
func (s *System) ComputeCollisionEnergy() float64 {
	vel := s.velocities.data
	sum := 0.0
	for _, c := range s.contacts {
		vn := r2.Dot(r2.Sub(vel[c.IndexB], vel[c.IndexA]), c.Normal)
		if vn < 0 {
			sum += vn * vn
		}
	}
	return 0.5 * s.ParticleMass() * sum
}

// Bounds returns the box enclosing all particle centers.
func (s *System) Bounds() AABB {
	aabb := emptyAABB()
	for _, p := range s.Positions() {
		aabb = aabb.Include(p)
	}
	return aabb
}

// KineticEnergy returns the total kinetic energy of live particles.
func (s *System) KineticEnergy() float64 {
	sum := 0.0
	flags := s.flags.data
	for i, v := range s.Velocities() {
		if flags[i]&ZombieParticle == 0 {
			sum += r2.Norm2(v)
		}
	}
	return 0.5 * s.ParticleMass() * sum
}

func (s *System) criticalVelocity(st step) float64 {
	return s.diameter * st.invDt
}

func (s *System) criticalVelocitySquared(st step) float64 {
	v := s.criticalVelocity(st)
	return v * v
}

func (s *System) criticalPressure(st step) float64 {
	return s.def.Density * s.criticalVelocitySquared(st)
}

func finite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
