package vector

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat is a scalar-first quaternion. Used as an orientation it rotates
// body-frame vectors into the earth frame.
type Quat struct {
	W float64 `json:"w" yaml:"w"`
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// IdentityQuat returns the zero rotation.
func IdentityQuat() Quat { return Quat{W: 1} }

// FromEuler builds an orientation from yaw about the earth up axis, then pitch
// about the body z axis, then roll about the body x axis (radians).
func FromEuler(yaw, pitch, roll float64) Quat {
	q := mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0}).
		Mul(mgl64.QuatRotate(pitch, mgl64.Vec3{0, 0, 1})).
		Mul(mgl64.QuatRotate(roll, mgl64.Vec3{1, 0, 0}))
	return Quat{W: q.W, X: q.V[0], Y: q.V[1], Z: q.V[2]}
}

// Add returns the component-wise sum.
func (q Quat) Add(o Quat) Quat { return Quat{q.W + o.W, q.X + o.X, q.Y + o.Y, q.Z + o.Z} }

// Mul scales every component by k.
func (q Quat) Mul(k float64) Quat { return Quat{q.W * k, q.X * k, q.Y * k, q.Z * k} }

// Conjugate negates the vector part. For a unit quaternion this is the inverse rotation.
func (q Quat) Conjugate() Quat { return Quat{q.W, -q.X, -q.Y, -q.Z} }

// Norm returns the quaternion magnitude.
func (q Quat) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize divides all four components by the current norm. A zero
// quaternion normalizes to identity.
func (q Quat) Normalize() Quat {
	n := q.Norm()
	if n == 0 {
		return IdentityQuat()
	}
	return q.Mul(1 / n)
}

// Rate returns dq/dt for body angular rate w = (p, q, r).
func (q Quat) Rate(w Vec3) Quat {
	p, qq, r := w.X, w.Y, w.Z
	return Quat{
		W: -0.5 * (q.X*p + q.Y*qq + q.Z*r),
		X: 0.5 * (q.W*p + q.Y*r - q.Z*qq),
		Y: 0.5 * (q.W*qq - q.X*r + q.Z*p),
		Z: 0.5 * (q.W*r + q.X*qq - q.Y*p),
	}
}

// Matrix returns the rotation matrix of q using the standard
// quaternion-to-matrix formulas. q is assumed to be unit length.
func (q Quat) Matrix() Mat3 {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	ww, xx, yy, zz := w*w, x*x, y*y, z*z
	return Mat3{
		{ww + xx - yy - zz, 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), ww - xx + yy - zz, 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), ww - xx - yy + zz},
	}
}

// IsFinite reports whether every component is finite.
func (q Quat) IsFinite() bool {
	return isFinite(q.W) && isFinite(q.X) && isFinite(q.Y) && isFinite(q.Z)
}

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// MulVec returns m·v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	var t Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}
