package body

import (
	"math"

	"github.com/san-kum/drivesim/internal/geom"
)

type Params struct {
	Mass           float64 `yaml:"mass"`
	Inertia        float64 `yaml:"inertia"`
	LinearDamping  float64 `yaml:"linear_damping"`
	AngularDamping float64 `yaml:"angular_damping"`
	Gravity        float64 `yaml:"gravity"`
	RideHeight     float64 `yaml:"ride_height"`
	LateralGrip    float64 `yaml:"lateral_grip"`
	SteerResponse  float64 `yaml:"steer_response"`
}

func DefaultParams() Params {
	return Params{
		Mass:           1200,
		Inertia:        900,
		LinearDamping:  0.12,
		AngularDamping: 1.5,
		Gravity:        9.81,
		RideHeight:     0.5,
		LateralGrip:    4.0,
		SteerResponse:  2.2,
	}
}

// RigidBody is the reference solver behind the Body interface: semi-implicit
// Euler substeps over a flat ground plane, with damping and lateral tire
// grip. It has no broadphase and no contacts beyond the plane; anything more
// belongs to an external solver.
type RigidBody struct {
	params Params

	pos    geom.Vec3
	orient geom.Quat
	vel    geom.Vec3
	angVel geom.Vec3

	force  geom.Vec3
	torque geom.Vec3

	engineForce float64
	steering    float64
	brakeForce  float64
}

func NewRigidBody(params Params) *RigidBody {
	return &RigidBody{
		params: params,
		pos:    geom.Vec3{Y: params.RideHeight},
		orient: geom.QuatIdentity(),
	}
}

func (b *RigidBody) Position() geom.Vec3            { return b.pos }
func (b *RigidBody) SetPosition(p geom.Vec3)        { b.pos = p }
func (b *RigidBody) Orientation() geom.Quat         { return b.orient }
func (b *RigidBody) SetOrientation(q geom.Quat)     { b.orient = q.Normalize() }
func (b *RigidBody) Velocity() geom.Vec3            { return b.vel }
func (b *RigidBody) SetVelocity(v geom.Vec3)        { b.vel = v }
func (b *RigidBody) AngularVelocity() geom.Vec3     { return b.angVel }
func (b *RigidBody) SetAngularVelocity(w geom.Vec3) { b.angVel = w }
func (b *RigidBody) ApplyForce(f geom.Vec3)         { b.force = b.force.Add(f) }
func (b *RigidBody) ApplyTorque(t geom.Vec3)        { b.torque = b.torque.Add(t) }
func (b *RigidBody) Speed() float64                 { return b.vel.Length() }

func (b *RigidBody) SetControls(engineForce, steering, brakeForce float64) {
	b.engineForce = engineForce
	b.steering = steering
	b.brakeForce = brakeForce
}

func (b *RigidBody) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	p := b.params

	forward := b.orient.Rotate(geom.Vec3{X: 0, Y: 0, Z: 1})
	right := b.orient.Rotate(geom.Vec3{X: 1, Y: 0, Z: 0})

	// Negative engine force drives forward along local +Z.
	b.force = b.force.Add(forward.Scale(-b.engineForce))
	b.force = b.force.Add(geom.Vec3{Y: -p.Gravity * p.Mass})

	grounded := b.pos.Y <= p.RideHeight+1e-3

	if grounded {
		// Steering commands a yaw moment that scales with forward speed.
		fwdSpeed := b.vel.Dot(forward)
		b.torque = b.torque.Add(geom.Vec3{Y: b.steering * fwdSpeed * p.SteerResponse * p.Inertia / 10})

		if b.brakeForce > 0 && b.vel.LengthSq() > 1e-6 {
			decel := b.vel.Normalize().Scale(-b.brakeForce)
			b.force = b.force.Add(decel)
		}
	}

	b.vel = b.vel.Add(b.force.Scale(dt / p.Mass))
	b.vel = b.vel.Scale(1 / (1 + p.LinearDamping*dt))

	if grounded {
		// Bleed off sideways velocity so the body tracks its heading.
		lat := b.vel.Dot(right)
		b.vel = b.vel.Sub(right.Scale(lat * math.Min(p.LateralGrip*dt, 1)))
	}

	b.angVel = b.angVel.Add(b.torque.Scale(dt / p.Inertia))
	b.angVel = b.angVel.Scale(1 / (1 + p.AngularDamping*dt))

	b.pos = b.pos.Add(b.vel.Scale(dt))

	// Flat ground plane keeps the reference body from tunnelling.
	if b.pos.Y < p.RideHeight {
		b.pos.Y = p.RideHeight
		if b.vel.Y < 0 {
			b.vel.Y = 0
		}
	}

	// dq/dt = ½ ω q, integrated explicitly then renormalized.
	w := geom.Quat{X: b.angVel.X, Y: b.angVel.Y, Z: b.angVel.Z, W: 0}
	dq := w.Mul(b.orient)
	b.orient = geom.Quat{
		X: b.orient.X + 0.5*dq.X*dt,
		Y: b.orient.Y + 0.5*dq.Y*dt,
		Z: b.orient.Z + 0.5*dq.Z*dt,
		W: b.orient.W + 0.5*dq.W*dt,
	}.Normalize()

	b.force = geom.Vec3{}
	b.torque = geom.Vec3{}
	b.engineForce = 0
	b.brakeForce = 0
}
