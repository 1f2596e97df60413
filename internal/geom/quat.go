package geom

import "math"

// Quat is a rotation quaternion. All constructors and methods keep it unit
// length; a zero quaternion normalizes to identity rather than NaN.
type Quat struct {
	X, Y, Z, W float64
}

func QuatIdentity() Quat { return Quat{0, 0, 0, 1} }

// QuatFromAxisAngle builds a rotation of angle radians about axis. A
// degenerate axis yields identity.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	if axis == (Vec3{}) {
		return QuatIdentity()
	}
	s := math.Sin(angle / 2)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, math.Cos(angle / 2)}
}

// QuatFromYaw builds a level orientation with the given heading about world
// up (+Y). Roll and pitch are zero.
func QuatFromYaw(yaw float64) Quat {
	return Quat{0, math.Sin(yaw / 2), 0, math.Cos(yaw / 2)}
}

func (q Quat) Mul(o Quat) Quat {
	return Quat{
		q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return QuatIdentity()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Rotate applies the rotation to v (q * v * q⁻¹ expanded to avoid the
// intermediate quaternion products).
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	uv := u.Cross(v)
	uuv := u.Cross(uv)
	return v.Add(uv.Scale(2 * q.W)).Add(uuv.Scale(2))
}

// Yaw extracts the heading about world up from the rotated local forward
// axis (+Z). When forward points nearly straight up or down, the local right
// axis is used instead so the heading stays defined for a pitched-over body.
func (q Quat) Yaw() float64 {
	f := q.Rotate(Vec3{0, 0, 1})
	if f.X*f.X+f.Z*f.Z > 1e-12 {
		return math.Atan2(f.X, f.Z)
	}
	r := q.Rotate(Vec3{1, 0, 0})
	return math.Atan2(-r.Z, r.X)
}

func (q Quat) IsValid() bool {
	return !math.IsNaN(q.X) && !math.IsNaN(q.Y) && !math.IsNaN(q.Z) && !math.IsNaN(q.W)
}
