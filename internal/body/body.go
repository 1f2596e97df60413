package body

import "github.com/san-kum/drivesim/internal/geom"

// Body is the rigid-body handle the simulation core drives. The solver
// behind it is replaceable: the core only reads and writes through this
// surface. Force and torque accumulate until the next Advance, which
// consumes them along with the control channels.
type Body interface {
	Position() geom.Vec3
	SetPosition(p geom.Vec3)
	Orientation() geom.Quat
	SetOrientation(q geom.Quat)
	Velocity() geom.Vec3
	SetVelocity(v geom.Vec3)
	AngularVelocity() geom.Vec3
	SetAngularVelocity(w geom.Vec3)

	// ApplyTorque adds to the torque accumulator for the next substep.
	ApplyTorque(t geom.Vec3)
	// ApplyForce adds to the force accumulator for the next substep.
	ApplyForce(f geom.Vec3)

	// SetControls sets the drive channels consumed by the next substep:
	// engine force (negative drives forward), steering angle, brake force.
	SetControls(engineForce, steering, brakeForce float64)

	// Speed is the magnitude of linear velocity.
	Speed() float64

	// Advance runs one fixed-size physics substep.
	Advance(dt float64)
}
