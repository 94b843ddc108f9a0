package env

import (
	"flight-dynamics/internal/geometry/frame"
	"flight-dynamics/internal/geometry/vector"
)

// StandardGravity is the gravitational acceleration at sea level in m/s².
const StandardGravity = 9.81

// Gravity is a uniform gravitational field pulling along -frame.Up.
type Gravity struct {
	// G is the gravitational acceleration in m/s²
	G float64
}

var _ ForceSource = Gravity{}

// Standard returns sea-level gravity.
func Standard() Gravity {
	return Gravity{G: StandardGravity}
}

// Force returns the weight of a vehicle of the given mass.
func (g Gravity) Force(mass float64) vector.Vec3 {
	return frame.Up.Mul(-mass * g.G)
}
