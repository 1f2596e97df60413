// Package vehicle maps discrete driving directives onto the continuous
// control channels of a rigid body: steering angle, engine force, brake
// force.
package vehicle

import (
	"fmt"
	"math"

	"github.com/san-kum/drivesim/internal/input"
)

type Config struct {
	// MaxSteer is the base steering angle limit in radians. The effective
	// limit shrinks with speed (see SteerFalloff).
	MaxSteer float64 `yaml:"max_steer"`
	// SteerSpeed is the per-step interpolation rate toward a requested
	// steering target; SteerReturnSpeed the slower rate back to center.
	SteerSpeed       float64 `yaml:"steer_speed"`
	SteerReturnSpeed float64 `yaml:"steer_return_speed"`
	// SteerFalloff scales how much steering authority is lost at top speed:
	// effectiveMax = MaxSteer * (1 - speedRatio*SteerFalloff).
	SteerFalloff float64 `yaml:"steer_falloff"`

	// MaxForce is the forward engine force magnitude. Forward thrust is
	// applied as a negative force; the body's solver defines that
	// convention and it must be preserved.
	MaxForce          float64 `yaml:"max_force"`
	ReverseForceRatio float64 `yaml:"reverse_force_ratio"`
	BrakeForce        float64 `yaml:"brake_force"`

	// MaxSpeedApprox is the speed the limiter tapers toward. Above 70% of
	// it, forward force falls off linearly to zero.
	MaxSpeedApprox float64 `yaml:"max_speed_approx"`
}

func DefaultConfig() Config {
	return Config{
		MaxSteer:          0.6,
		SteerSpeed:        0.3,
		SteerReturnSpeed:  0.15,
		SteerFalloff:      0.5,
		MaxForce:          5200,
		ReverseForceRatio: 0.5,
		BrakeForce:        9000,
		MaxSpeedApprox:    30,
	}
}

func (c Config) Validate() error {
	if c.MaxSpeedApprox <= 0 {
		return fmt.Errorf("max speed must be positive, got %f", c.MaxSpeedApprox)
	}
	if c.MaxSteer < 0 || c.MaxForce < 0 || c.BrakeForce < 0 {
		return fmt.Errorf("steering and force limits must be non-negative")
	}
	if c.SteerFalloff < 0 || c.SteerFalloff > 1 {
		return fmt.Errorf("steer falloff must be in [0,1], got %f", c.SteerFalloff)
	}
	return nil
}

// Controls is the triple applied to the body's control channels each step.
type Controls struct {
	EngineForce float64
	Steering    float64
	BrakeForce  float64
}

// speedTaperStart is the fraction of MaxSpeedApprox where the forward force
// begins its linear taper. A hard cutoff would cause a force discontinuity
// and visible jitter at the speed limit.
const speedTaperStart = 0.7

// Mapper converts directive snapshots into Controls, once per fixed update.
// The only state carried across steps is the smoothed steering value.
type Mapper struct {
	cfg          *Config
	currentSteer float64
}

func NewMapper(cfg *Config) *Mapper {
	return &Mapper{cfg: cfg}
}

// CurrentSteer reports the smoothed steering value.
func (m *Mapper) CurrentSteer() float64 { return m.currentSteer }

// Reset clears the smoothing state.
func (m *Mapper) Reset() { m.currentSteer = 0 }

// Update computes the control triple for one fixed step from the directive
// snapshot and the vehicle's current scalar speed.
func (m *Mapper) Update(d input.Directives, speed float64) Controls {
	cfg := m.cfg

	speedRatio := math.Min(speed/cfg.MaxSpeedApprox, 1)
	if speedRatio < 0 {
		speedRatio = 0
	}
	effectiveMax := cfg.MaxSteer * (1 - speedRatio*cfg.SteerFalloff)

	target := 0.0
	switch {
	case d.Left:
		target = effectiveMax
	case d.Right:
		target = -effectiveMax
	}

	// Quick response toward a requested angle, looser return to center.
	rate := cfg.SteerReturnSpeed
	if target != 0 {
		rate = cfg.SteerSpeed
	}
	m.currentSteer += (target - m.currentSteer) * rate
	m.currentSteer = clamp(m.currentSteer, -effectiveMax, effectiveMax)

	engine := 0.0
	switch {
	case d.Forward:
		engine = -cfg.MaxForce
		if taperStart := speedTaperStart * cfg.MaxSpeedApprox; speed > taperStart {
			f := (cfg.MaxSpeedApprox - speed) / (cfg.MaxSpeedApprox - taperStart)
			engine *= clamp(f, 0, 1)
		}
	case d.Backward:
		engine = cfg.MaxForce * cfg.ReverseForceRatio
	}

	brake := 0.0
	if d.Brake {
		brake = cfg.BrakeForce
	}

	return Controls{EngineForce: engine, Steering: m.currentSteer, BrakeForce: brake}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
