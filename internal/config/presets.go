package config

import "sort"

// presets are named vehicle setups layered over the defaults.
var presets = map[string]func(*Config){
	"default": func(*Config) {},
	"sport": func(c *Config) {
		c.Vehicle.MaxForce = 7800
		c.Vehicle.MaxSpeedApprox = 42
		c.Vehicle.SteerSpeed = 0.45
		c.Vehicle.SteerFalloff = 0.65
		c.Body.Mass = 980
		c.Body.Inertia = 720
		c.Body.LateralGrip = 6.0
	},
	"bus": func(c *Config) {
		c.Vehicle.MaxForce = 9500
		c.Vehicle.MaxSpeedApprox = 18
		c.Vehicle.MaxSteer = 0.45
		c.Vehicle.SteerSpeed = 0.15
		c.Vehicle.SteerReturnSpeed = 0.08
		c.Body.Mass = 6500
		c.Body.Inertia = 9000
		c.Stability.MaxAngVel = 2.0
	},
	"moon": func(c *Config) {
		c.Body.Gravity = 1.62
		c.Stability.CorrectionStrength = 9000
	},
}

// GetPreset returns a fresh config for the named preset, or nil when the
// name is unknown.
func GetPreset(name string) *Config {
	mutate, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	mutate(cfg)
	cfg.Stability.MaxVel = cfg.Vehicle.MaxSpeedApprox * maxSpeedHeadroom
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
