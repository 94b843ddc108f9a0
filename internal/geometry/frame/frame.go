// Package frame converts vectors between the body frame and the earth frame.
//
// The earth frame is Y-up: X points east, Y up and Z south. The body frame
// has x along the nose (or thrust axis), y toward the body top and z to the
// right. Orientations are unit quaternions rotating body vectors into the
// earth frame. Quaternions are not checked for unit norm; a denormalized
// quaternion silently produces a non-orthonormal transform, so callers must
// renormalize their state every step.
package frame

import (
	"math"

	"flight-dynamics/internal/geometry/vector"
)

// Up is the earth-frame up direction.
var Up = vector.Vec3{Y: 1}

// Body axes.
var (
	Nose  = vector.Vec3{X: 1}
	Top   = vector.Vec3{Y: 1}
	Right = vector.Vec3{Z: 1}
)

// BodyToEarth rotates a body-frame vector into the earth frame.
func BodyToEarth(q vector.Quat, v vector.Vec3) vector.Vec3 {
	return q.Matrix().MulVec(v)
}

// EarthToBody rotates an earth-frame vector into the body frame using the
// conjugate quaternion.
func EarthToBody(q vector.Quat, v vector.Vec3) vector.Vec3 {
	return BodyToEarth(q.Conjugate(), v)
}

// Altitude returns the height component of an earth-frame position.
func Altitude(p vector.Vec3) float64 { return p.Y }

// Horizontal drops the vertical component.
func Horizontal(v vector.Vec3) vector.Vec3 { return vector.Vec3{X: v.X, Z: v.Z} }

// HorizontalDistance returns the ground-plane distance between two points.
func HorizontalDistance(a, b vector.Vec3) float64 {
	return Horizontal(b.Sub(a)).Norm()
}

// BearingTo returns the yaw angle that points the nose from a toward b.
func BearingTo(a, b vector.Vec3) float64 {
	d := b.Sub(a)
	return math.Atan2(-d.Z, d.X)
}

// Attitude extracts pitch, yaw and roll (radians) such that
// q = R_y(yaw)·R_z(pitch)·R_x(roll).
func Attitude(q vector.Quat) (pitch, yaw, roll float64) {
	m := q.Matrix()
	nose := m.MulVec(Nose)
	top := m.MulVec(Top)
	right := m.MulVec(Right)

	pitch = math.Asin(clamp(nose.Y, -1, 1))
	yaw = math.Atan2(-nose.Z, nose.X)
	roll = math.Atan2(-right.Y, top.Y)
	return pitch, yaw, roll
}

// Heading returns the compass heading of the nose in degrees, 0=north, 90=east.
func Heading(q vector.Quat) float64 {
	nose := BodyToEarth(q, Nose)
	if math.Abs(nose.X) < 1e-9 && math.Abs(nose.Z) < 1e-9 {
		return 0
	}
	deg := math.Atan2(nose.X, -nose.Z) * 180.0 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
