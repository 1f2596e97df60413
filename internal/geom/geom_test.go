package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestNormalizeZeroVector(t *testing.T) {
	v := Vec3{}.Normalize()
	if v != (Vec3{}) {
		t.Errorf("expected zero vector, got %+v", v)
	}
	if !v.IsValid() {
		t.Error("normalized zero vector should not contain NaN")
	}
}

func TestClampLength(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		max  float64
		want float64
	}{
		{"under limit", Vec3{3, 0, 0}, 5, 3},
		{"at limit", Vec3{0, 5, 0}, 5, 5},
		{"over limit", Vec3{0, 0, 10}, 5, 5},
		{"zero vector", Vec3{}, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.ClampLength(tt.max)
			if math.Abs(got.Length()-tt.want) > eps {
				t.Errorf("length = %f, want %f", got.Length(), tt.want)
			}
			if dir := tt.v.Normalize(); dir != (Vec3{}) {
				if got.Normalize().Sub(dir).Length() > eps {
					t.Error("clamping changed direction")
				}
			}
		})
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	got := q.Rotate(Vec3{0, 1, 0})
	if !vecNear(got, Vec3{-1, 0, 0}, 1e-9) {
		t.Errorf("90° roll of up = %+v, want (-1,0,0)", got)
	}
}

func TestQuatFromDegenerateAxis(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{}, 1.0)
	if q != QuatIdentity() {
		t.Errorf("expected identity, got %+v", q)
	}
}

func TestYawRoundTrip(t *testing.T) {
	for _, yaw := range []float64{0, 0.5, -0.5, math.Pi / 2, -math.Pi / 2, 3.0, -3.0} {
		got := QuatFromYaw(yaw).Yaw()
		if math.Abs(got-yaw) > 1e-9 {
			t.Errorf("yaw %f round-tripped to %f", yaw, got)
		}
	}
}

func TestYawSurvivesRoll(t *testing.T) {
	// A rolled body keeps its heading.
	yaw := 1.2
	q := QuatFromYaw(yaw).Mul(QuatFromAxisAngle(Vec3{0, 0, 1}, 2.5)).Normalize()
	if got := q.Yaw(); math.Abs(got-yaw) > 1e-6 {
		t.Errorf("yaw after roll = %f, want %f", got, yaw)
	}
}

func TestYawPitchedStraightUp(t *testing.T) {
	// Forward points straight up; the right-axis fallback keeps yaw defined.
	yaw := 0.7
	q := QuatFromYaw(yaw).Mul(QuatFromAxisAngle(Vec3{1, 0, 0}, -math.Pi/2)).Normalize()
	got := q.Yaw()
	if math.IsNaN(got) {
		t.Fatal("yaw is NaN for vertical forward axis")
	}
	if math.Abs(got-yaw) > 1e-6 {
		t.Errorf("yaw for pitched-up body = %f, want %f", got, yaw)
	}
}

func TestNormalizeZeroQuat(t *testing.T) {
	if q := (Quat{}).Normalize(); q != QuatIdentity() {
		t.Errorf("expected identity, got %+v", q)
	}
}
