package particle

import "log/slog"

const (
	// InvalidIndex is returned by CreateParticle when the system is full.
	InvalidIndex = -1

	minBufferCapacity = 256

	// particleStride is the lattice spacing of generated groups in diameters.
	particleStride = 0.75

	minParticleWeight   = 1.0
	maxParticleWeight   = 5.0
	maxParticlePressure = 0.25
	maxParticleForce    = 0.5

	// maxTriadDistance bounds each triad edge in diameters.
	maxTriadDistance        = 2.0
	maxTriadDistanceSquared = maxTriadDistance * maxTriadDistance

	// Particles whose accumulated in-group weight reaches this are interior.
	depthSaturation = 0.8

	linearSlop = 0.005
)

// Def configures a System. Start from DefaultDef and override fields.
type Def struct {
	Radius  float64
	Density float64

	// Gravity is the acceleration applied to every particle, scaled by
	// GravityScale.
	Gravity      Vec
	GravityScale float64

	// MaxCount caps the number of live particles. Zero means unlimited.
	MaxCount int

	PressureStrength               float64
	DampingStrength                float64
	ElasticStrength                float64
	SpringStrength                 float64
	ViscousStrength                float64
	SurfaceTensionPressureStrength float64
	SurfaceTensionNormalStrength   float64
	PowderStrength                 float64
	EjectionStrength               float64
	ColorMixingStrength            float64

	Logger *slog.Logger
}

func DefaultDef() Def {
	return Def{
		Radius:                         1,
		Density:                        1,
		GravityScale:                   1,
		PressureStrength:               0.05,
		DampingStrength:                1,
		ElasticStrength:                0.25,
		SpringStrength:                 0.25,
		ViscousStrength:                0.25,
		SurfaceTensionPressureStrength: 0.2,
		SurfaceTensionNormalStrength:   0.2,
		PowderStrength:                 0.5,
		EjectionStrength:               0.5,
		ColorMixingStrength:            0.5,
	}
}

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

func (c Color) IsZero() bool {
	return c == Color{}
}

// ParticleDef describes one particle to create.
type ParticleDef struct {
	Flags    Flag
	Position Vec
	Velocity Vec
	Color    Color
	UserData any
	// Group, when set, receives the new particle at the end of its range.
	Group *Group
}

// GroupDef describes a group of particles to create. Particles are generated
// by filling Shape on a square lattice, by sampling it along its edges when it
// has no area, and from Positions. All of them are placed in the frame given
// by Position and Angle.
type GroupDef struct {
	Flags      Flag
	GroupFlags GroupFlag

	Position        Vec
	Angle           float64
	LinearVelocity  Vec
	AngularVelocity float64

	Color Color
	// Strength scales spring and elastic forces. Zero means 1.
	Strength float64
	// Stride is the lattice spacing used to fill Shape. Zero means
	// 0.75 particle diameters.
	Stride float64

	Shape     Shape
	Positions []Vec

	UserData any
	// Group, when set, absorbs the new particles instead of creating a group.
	Group *Group
}
