package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/liquidsim/internal/particle"
	"github.com/san-kum/liquidsim/internal/rigid"
)

const (
	DefaultScene       = "dam_break"
	DefaultDt          = 1.0 / 60
	DefaultDuration    = 5.0
	DefaultRadius      = 0.05
	DefaultGravity     = -10.0
	DefaultSampleEvery = 6
	DefaultDataDir     = ".liquidsim"
)

var ErrInvalidConfig = errors.New("config: invalid value")

type Config struct {
	Scene              string        `yaml:"scene"`
	Dt                 float64       `yaml:"dt"`
	Duration           float64       `yaml:"duration"`
	Seed               int64         `yaml:"seed"`
	VelocityIterations int           `yaml:"velocity_iterations"`
	PositionIterations int           `yaml:"position_iterations"`
	Particle           SystemConfig  `yaml:"particle"`
	Emitter            EmitterConfig `yaml:"emitter"`
	Output             OutputConfig  `yaml:"output"`
}

// SystemConfig mirrors particle.Def. DefaultConfig fills every strength with
// the solver default, so a zero here really is zero.
type SystemConfig struct {
	Radius       float64    `yaml:"radius"`
	Density      float64    `yaml:"density"`
	Gravity      [2]float64 `yaml:"gravity"`
	GravityScale float64    `yaml:"gravity_scale"`
	MaxCount     int        `yaml:"max_count"`

	Pressure               float64 `yaml:"pressure"`
	Damping                float64 `yaml:"damping"`
	Elastic                float64 `yaml:"elastic"`
	Spring                 float64 `yaml:"spring"`
	Viscous                float64 `yaml:"viscous"`
	SurfaceTensionPressure float64 `yaml:"surface_tension_pressure"`
	SurfaceTensionNormal   float64 `yaml:"surface_tension_normal"`
	Powder                 float64 `yaml:"powder"`
	Ejection               float64 `yaml:"ejection"`
	ColorMixing            float64 `yaml:"color_mixing"`
}

type EmitterConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Rate     float64    `yaml:"rate"`
	Speed    float64    `yaml:"speed"`
	Width    float64    `yaml:"width"`
	Angle    float64    `yaml:"angle"`
	Position [2]float64 `yaml:"position"`
	Flags    []string   `yaml:"flags"`
	// TargetCount, when positive, makes Rate a ceiling and lets a PID
	// controller pick the rate that holds this many particles.
	TargetCount int `yaml:"target_count"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir"`
	SampleEvery int    `yaml:"sample_every"`
	Snapshot    bool   `yaml:"snapshot"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:              DefaultScene,
		Dt:                 DefaultDt,
		Duration:           DefaultDuration,
		VelocityIterations: rigid.DefaultVelocityIterations,
		PositionIterations: rigid.DefaultPositionIterations,
		Particle: defaultSystemConfig(),
		Emitter: EmitterConfig{
			Rate:  120,
			Speed: 3,
			Width: 0.3,
		},
		Output: OutputConfig{
			Dir:         DefaultDataDir,
			SampleEvery: DefaultSampleEvery,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidConfig, c.Duration)
	case c.Particle.Radius <= 0:
		return fmt.Errorf("%w: particle radius must be positive, got %v", ErrInvalidConfig, c.Particle.Radius)
	case c.Particle.Density <= 0:
		return fmt.Errorf("%w: particle density must be positive, got %v", ErrInvalidConfig, c.Particle.Density)
	case c.Particle.MaxCount < 0:
		return fmt.Errorf("%w: max_count cannot be negative", ErrInvalidConfig)
	case c.Emitter.Enabled && c.Emitter.Rate <= 0:
		return fmt.Errorf("%w: emitter rate must be positive", ErrInvalidConfig)
	case c.Emitter.TargetCount < 0:
		return fmt.Errorf("%w: emitter target_count cannot be negative", ErrInvalidConfig)
	case c.Output.SampleEvery < 0:
		return fmt.Errorf("%w: sample_every cannot be negative", ErrInvalidConfig)
	}
	if _, err := particle.ParseFlags(c.Emitter.Flags); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func defaultSystemConfig() SystemConfig {
	def := particle.DefaultDef()
	return SystemConfig{
		Radius:                 DefaultRadius,
		Density:                def.Density,
		Gravity:                [2]float64{0, DefaultGravity},
		GravityScale:           def.GravityScale,
		Pressure:               def.PressureStrength,
		Damping:                def.DampingStrength,
		Elastic:                def.ElasticStrength,
		Spring:                 def.SpringStrength,
		Viscous:                def.ViscousStrength,
		SurfaceTensionPressure: def.SurfaceTensionPressureStrength,
		SurfaceTensionNormal:   def.SurfaceTensionNormalStrength,
		Powder:                 def.PowderStrength,
		Ejection:               def.EjectionStrength,
		ColorMixing:            def.ColorMixingStrength,
	}
}

// SystemDef builds the solver definition described by c.
func (c *Config) SystemDef(logger *slog.Logger) particle.Def {
	p := c.Particle
	return particle.Def{
		Radius:                         p.Radius,
		Density:                        p.Density,
		Gravity:                        particle.Vec{X: p.Gravity[0], Y: p.Gravity[1]},
		GravityScale:                   p.GravityScale,
		MaxCount:                       p.MaxCount,
		PressureStrength:               p.Pressure,
		DampingStrength:                p.Damping,
		ElasticStrength:                p.Elastic,
		SpringStrength:                 p.Spring,
		ViscousStrength:                p.Viscous,
		SurfaceTensionPressureStrength: p.SurfaceTensionPressure,
		SurfaceTensionNormalStrength:   p.SurfaceTensionNormal,
		PowderStrength:                 p.Powder,
		EjectionStrength:               p.Ejection,
		ColorMixingStrength:            p.ColorMixing,
		Logger:                         logger,
	}
}

func (c *Config) Gravity() particle.Vec {
	return particle.Vec{X: c.Particle.Gravity[0], Y: c.Particle.Gravity[1]}
}
