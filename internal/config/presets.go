package config

import "slices"

func preset(scene string, tweak func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Scene = scene
	if tweak != nil {
		tweak(cfg)
	}
	return cfg
}

var Presets = map[string]map[string]*Config{
	"dam_break": {
		"default": preset("dam_break", nil),
		"fine": preset("dam_break", func(c *Config) {
			c.Particle.Radius = 0.035
			c.Duration = 4
		}),
		"sticky": preset("dam_break", func(c *Config) {
			c.Particle.Viscous = 0.8
			c.Particle.Damping = 0.5
		}),
	},
	"elastic_drop": {
		"default": preset("elastic_drop", nil),
		"soft": preset("elastic_drop", func(c *Config) { c.Particle.Elastic = 0.1 }),
	},
	"solid_collision": {
		"default": preset("solid_collision", func(c *Config) { c.Particle.Gravity = [2]float64{} }),
		"hard": preset("solid_collision", func(c *Config) {
			c.Particle.Gravity = [2]float64{}
			c.Particle.Ejection = 1
		}),
	},
	"spring_chain": {
		"default": preset("spring_chain", nil),
		"stiff":   preset("spring_chain", func(c *Config) { c.Particle.Spring = 0.8 }),
	},
	"powder_pile": {
		"default": preset("powder_pile", nil),
	},
	"viscous_pour": {
		"default": preset("viscous_pour", func(c *Config) {
			c.Emitter.Enabled = true
			c.Emitter.Flags = []string{"viscous", "color_mixing"}
			c.Emitter.Position = [2]float64{-0.5, 1.5}
			c.Emitter.Angle = -0.3
		}),
	},
	"rigid_float": {
		"default": preset("rigid_float", func(c *Config) { c.Duration = 6 }),
	},
	"fountain": {
		"default": preset("fountain", func(c *Config) {
			c.Emitter.Enabled = true
			c.Emitter.Speed = 5
			c.Emitter.Angle = 1.5707963267948966
			c.Particle.MaxCount = 3000
		}),
		"capped": preset("fountain", func(c *Config) {
			c.Emitter.Enabled = true
			c.Emitter.Speed = 5
			c.Emitter.Angle = 1.5707963267948966
			c.Particle.MaxCount = 500
		}),
		"regulated": preset("fountain", func(c *Config) {
			c.Emitter.Enabled = true
			c.Emitter.Speed = 5
			c.Emitter.Angle = 1.5707963267948966
			c.Emitter.Rate = 600
			c.Emitter.TargetCount = 400
			c.Particle.MaxCount = 3000
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, name string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Emitter.Flags = slices.Clone(cfg.Emitter.Flags)
	return &c
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
