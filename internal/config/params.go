package config

import (
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownParam = errors.New("config: unknown parameter")

// params maps tunable names, as used in YAML, to their fields.
var params = map[string]func(*Config) *float64{
	"dt":                       func(c *Config) *float64 { return &c.Dt },
	"radius":                   func(c *Config) *float64 { return &c.Particle.Radius },
	"density":                  func(c *Config) *float64 { return &c.Particle.Density },
	"gravity_scale":            func(c *Config) *float64 { return &c.Particle.GravityScale },
	"pressure":                 func(c *Config) *float64 { return &c.Particle.Pressure },
	"damping":                  func(c *Config) *float64 { return &c.Particle.Damping },
	"elastic":                  func(c *Config) *float64 { return &c.Particle.Elastic },
	"spring":                   func(c *Config) *float64 { return &c.Particle.Spring },
	"viscous":                  func(c *Config) *float64 { return &c.Particle.Viscous },
	"surface_tension_pressure": func(c *Config) *float64 { return &c.Particle.SurfaceTensionPressure },
	"surface_tension_normal":   func(c *Config) *float64 { return &c.Particle.SurfaceTensionNormal },
	"powder":                   func(c *Config) *float64 { return &c.Particle.Powder },
	"ejection":                 func(c *Config) *float64 { return &c.Particle.Ejection },
	"color_mixing":             func(c *Config) *float64 { return &c.Particle.ColorMixing },
	"emitter_rate":             func(c *Config) *float64 { return &c.Emitter.Rate },
}

// SetParam sets one tunable by name.
func (c *Config) SetParam(name string, v float64) error {
	field, ok := params[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	*field(c) = v
	return nil
}

func (c *Config) Param(name string) (float64, error) {
	field, ok := params[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return *field(c), nil
}

func ParamNames() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
