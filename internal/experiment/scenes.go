package experiment

import (
	"math"

	"github.com/san-kum/liquidsim/internal/config"
	"github.com/san-kum/liquidsim/internal/emitter"
	"github.com/san-kum/liquidsim/internal/particle"
	"github.com/san-kum/liquidsim/internal/rigid"
)

var (
	blue   = particle.Color{R: 40, G: 110, B: 230, A: 255}
	red    = particle.Color{R: 220, G: 60, B: 50, A: 255}
	yellow = particle.Color{R: 235, G: 200, B: 60, A: 255}
	green  = particle.Color{R: 70, G: 190, B: 90, A: 255}
	grey   = particle.Color{R: 150, G: 150, B: 150, A: 255}
)

var (
	tankLower = particle.Vec{X: -2, Y: 0}
	tankUpper = particle.Vec{X: 2, Y: 3}
)

func tank(sc *Scene) {
	sc.World.CreateContainer(tankLower, tankUpper)
}

// sourceFromConfig returns nil when the emitter is disabled.
func sourceFromConfig(cfg *config.Config, color particle.Color) (*emitter.Radial, error) {
	ec := cfg.Emitter
	if !ec.Enabled {
		return nil, nil
	}
	flags, err := particle.ParseFlags(ec.Flags)
	if err != nil {
		return nil, err
	}
	e := emitter.NewRadial(particle.Vec{X: ec.Position[0], Y: ec.Position[1]}, ec.Rate, cfg.Seed)
	e.HalfSize = particle.Vec{X: ec.Width, Y: ec.Width}
	e.Velocity = particle.Vec{X: ec.Speed * math.Cos(ec.Angle), Y: ec.Speed * math.Sin(ec.Angle)}
	e.Flags = flags
	e.Color = color
	return e, nil
}

func buildDamBreak(sc *Scene, cfg *config.Config) error {
	tank(sc)
	sc.System.CreateParticleGroup(particle.GroupDef{
		Shape:    rigid.Box(0.6, 0.9),
		Position: particle.Vec{X: -1.35, Y: 0.95},
		Color:    blue,
	})
	return nil
}

func buildElasticDrop(sc *Scene, cfg *config.Config) error {
	tank(sc)
	sc.System.CreateParticleGroup(particle.GroupDef{
		Shape:    rigid.Box(1.95, 0.3),
		Position: particle.Vec{Y: 0.35},
		Color:    blue,
	})
	sc.System.CreateParticleGroup(particle.GroupDef{
		Flags:    particle.ElasticParticle,
		Shape:    rigid.Circle(particle.Vec{}, 0.35),
		Position: particle.Vec{Y: 2},
		Color:    red,
	})
	return nil
}

func buildSolidCollision(sc *Scene, cfg *config.Config) error {
	sc.View = particle.AABB{Lower: particle.Vec{X: -2.5, Y: -1.5}, Upper: particle.Vec{X: 2.5, Y: 1.5}}
	sc.System.CreateParticleGroup(particle.GroupDef{
		GroupFlags:     particle.SolidGroup,
		Shape:          rigid.Box(0.4, 0.4),
		Position:       particle.Vec{X: -1},
		LinearVelocity: particle.Vec{X: 2},
		Color:          red,
	})
	sc.System.CreateParticleGroup(particle.GroupDef{
		GroupFlags:     particle.SolidGroup,
		Shape:          rigid.Box(0.4, 0.4),
		Position:       particle.Vec{X: 1, Y: 0.2},
		LinearVelocity: particle.Vec{X: -2},
		Color:          green,
	})
	return nil
}

func buildSpringChain(sc *Scene, cfg *config.Config) error {
	tank(sc)
	rope := sc.System.CreateParticleGroup(particle.GroupDef{
		Flags: particle.SpringParticle,
		Shape: rigid.Edge(particle.Vec{X: -1.5, Y: 2.5}, particle.Vec{X: 1.5, Y: 2.5}),
		Color: yellow,
	})
	if rope.Count() < 2 {
		return nil
	}
	sc.System.SetParticleFlags(rope.First(), particle.SpringParticle|particle.WallParticle)
	sc.System.SetParticleFlags(rope.Last()-1, particle.SpringParticle|particle.WallParticle)
	return nil
}

func buildPowderPile(sc *Scene, cfg *config.Config) error {
	tank(sc)
	sc.System.CreateParticleGroup(particle.GroupDef{
		Flags: particle.PowderParticle,
		Shape: rigid.Polygon(particle.Vec{X: -0.4, Y: 2}, particle.Vec{X: 0.4, Y: 2}, particle.Vec{Y: 1.2}),
		Color: yellow,
	})
	return nil
}

func buildViscousPour(sc *Scene, cfg *config.Config) error {
	tank(sc)
	sc.System.CreateParticleGroup(particle.GroupDef{
		Flags:    particle.ColorMixingParticle,
		Shape:    rigid.Box(1.95, 0.25),
		Position: particle.Vec{Y: 0.3},
		Color:    blue,
	})
	src, err := sourceFromConfig(cfg, red)
	if err != nil || src == nil {
		return err
	}
	sc.Source = src
	return nil
}

func buildRigidFloat(sc *Scene, cfg *config.Config) error {
	tank(sc)
	sc.System.CreateParticleGroup(particle.GroupDef{
		Shape:    rigid.Box(1.95, 0.6),
		Position: particle.Vec{Y: 0.65},
		Color:    blue,
	})
	sc.World.CreateDynamicBox(particle.Vec{X: -0.8, Y: 2.2}, 0.25, 0.25, 0.5)
	sc.World.CreateDynamicCircle(particle.Vec{Y: 2.6}, 0.15, 0.3)
	sc.System.CreateParticleGroup(particle.GroupDef{
		GroupFlags: particle.RigidGroup | particle.SolidGroup,
		Shape:      rigid.Box(0.3, 0.15),
		Position:   particle.Vec{X: 0.8, Y: 2.2},
		Angle:      0.3,
		Color:      grey,
	})
	return nil
}

func buildFountain(sc *Scene, cfg *config.Config) error {
	tank(sc)
	src, err := sourceFromConfig(cfg, blue)
	if err != nil {
		return err
	}
	if src == nil {
		src = emitter.NewRadial(particle.Vec{Y: 0.3}, cfg.Emitter.Rate, cfg.Seed)
		src.HalfSize = particle.Vec{X: 0.1, Y: 0.1}
		src.Velocity = particle.Vec{Y: 5}
		src.Color = blue
	}
	if src.Origin == (particle.Vec{}) {
		src.Origin = particle.Vec{Y: 0.3}
	}
	if n := cfg.Emitter.TargetCount; n > 0 {
		sc.Source = emitter.NewRegulated(src, n, cfg.Emitter.Rate)
		return nil
	}
	sc.Source = src
	return nil
}
