// Package stability keeps a free rigid-body vehicle drivable. A generic
// solver happily lets a car spin up unbounded angular velocity or settle on
// its roof; the corrector clamps velocities and steers the chassis back
// upright after every fixed update's substeps.
package stability

import (
	"fmt"

	"github.com/san-kum/drivesim/internal/body"
	"github.com/san-kum/drivesim/internal/geom"
)

type Config struct {
	// MaxVel is the hard linear speed cap. Wired from the vehicle's
	// approximate top speed with 10% headroom so the limiter, not the
	// clamp, is what the driver normally feels.
	MaxVel float64 `yaml:"max_vel"`
	// MaxAngVel caps angular speed in rad/s.
	MaxAngVel float64 `yaml:"max_ang_vel"`

	// TiltThreshold is the upDot below which proportional tilt correction
	// engages; EmergencyThreshold the upDot below which the orientation is
	// snapped level.
	TiltThreshold      float64 `yaml:"tilt_threshold"`
	EmergencyThreshold float64 `yaml:"emergency_threshold"`

	// TiltDamping scales roll/pitch angular velocity each corrected cycle.
	// EmergencyDamping applies on top during a recovery.
	TiltDamping      float64 `yaml:"tilt_damping"`
	EmergencyDamping float64 `yaml:"emergency_damping"`

	// CorrectionStrength is the gain of the proportional righting torque.
	CorrectionStrength float64 `yaml:"correction_strength"`
}

func DefaultConfig() Config {
	return Config{
		MaxVel:             33,
		MaxAngVel:          3.5,
		TiltThreshold:      0.85,
		EmergencyThreshold: 0.1,
		TiltDamping:        0.8,
		EmergencyDamping:   0.3,
		CorrectionStrength: 4000,
	}
}

func (c Config) Validate() error {
	if c.MaxVel <= 0 || c.MaxAngVel <= 0 {
		return fmt.Errorf("velocity caps must be positive")
	}
	if c.EmergencyThreshold > c.TiltThreshold {
		return fmt.Errorf("emergency threshold %f above tilt threshold %f",
			c.EmergencyThreshold, c.TiltThreshold)
	}
	if c.TiltDamping < 0 || c.TiltDamping > 1 || c.EmergencyDamping < 0 || c.EmergencyDamping > 1 {
		return fmt.Errorf("damping factors must be in [0,1]")
	}
	return nil
}

// Stats counts interventions since the last Reset.
type Stats struct {
	LinearClamps        int
	AngularClamps       int
	TiltCorrections     int
	EmergencyRecoveries int
}

// Corrector runs once per fixed-update cycle, after the physics substeps.
// It is the only component allowed to write the body's velocity, angular
// velocity and orientation during that cycle.
type Corrector struct {
	cfg   *Config
	stats Stats
	upDot float64
}

func NewCorrector(cfg *Config) *Corrector {
	return &Corrector{cfg: cfg, upDot: 1}
}

func (c *Corrector) Stats() Stats { return c.stats }
func (c *Corrector) ResetStats() { c.stats = Stats{} }

// UpDot reports the last measured uprightness: 1 upright, 0 on its side,
// -1 inverted.
func (c *Corrector) UpDot() float64 { return c.upDot }

// Apply inspects and adjusts the body state for one fixed-update cycle.
func (c *Corrector) Apply(b body.Body) {
	cfg := c.cfg

	if v := b.Velocity(); v.Length() > cfg.MaxVel {
		b.SetVelocity(v.ClampLength(cfg.MaxVel))
		c.stats.LinearClamps++
	}
	if w := b.AngularVelocity(); w.Length() > cfg.MaxAngVel {
		b.SetAngularVelocity(w.ClampLength(cfg.MaxAngVel))
		c.stats.AngularClamps++
	}

	up := b.Orientation().Rotate(geom.Vec3{X: 0, Y: 1, Z: 0})
	c.upDot = up.Y

	if c.upDot >= cfg.TiltThreshold {
		return
	}
	c.correctTilt(b, up)

	if c.upDot < cfg.EmergencyThreshold {
		c.recover(b)
	}
}

// correctTilt is a continuous proportional controller: it damps roll/pitch
// spin and pushes the chassis toward upright every cycle the tilt persists.
func (c *Corrector) correctTilt(b body.Body, up geom.Vec3) {
	cfg := c.cfg
	c.stats.TiltCorrections++

	w := b.AngularVelocity()
	w.X *= cfg.TiltDamping
	w.Z *= cfg.TiltDamping
	b.SetAngularVelocity(w)

	// The righting axis is up × worldUp; its components are the horizontal
	// parts of the rotated up vector. Degenerate when exactly inverted, in
	// which case only the emergency path can act.
	axis := geom.Vec3{X: -up.Z, Z: up.X}.Normalize()
	if axis == (geom.Vec3{}) {
		return
	}
	b.ApplyTorque(axis.Scale((1 - c.upDot) * cfg.CorrectionStrength))
}

// recover is the terminal corrective action for a nearly flipped body:
// gradual torque cannot right it, so the orientation is replaced with a
// level quaternion keeping only the heading, and horizontal momentum is
// halved so it does not immediately re-flip.
func (c *Corrector) recover(b body.Body) {
	cfg := c.cfg
	c.stats.EmergencyRecoveries++

	w := b.AngularVelocity()
	w.X *= cfg.EmergencyDamping
	w.Z *= cfg.EmergencyDamping
	b.SetAngularVelocity(w)

	b.SetOrientation(geom.QuatFromYaw(b.Orientation().Yaw()))

	v := b.Velocity()
	v.X *= 0.5
	v.Z *= 0.5
	b.SetVelocity(v)
}
