// Package aero holds the analytic force models. Each model turns a vehicle
// state and its inputs into body-frame forces and moments with linearized
// coefficients; none of them use lookup tables.
//
// Sign convention shared by every model: a positive pitch command produces a
// nose-up moment (+z), a positive yaw command a nose-left moment (+y) and a
// positive roll command a right-wing-down moment (+x).
package aero

import (
	"errors"
	"math"

	"flight-dynamics/internal/geometry/vector"
)

// ErrInvalidCoefficients is returned when a coefficient set is unusable.
var ErrInvalidCoefficients = errors.New("invalid aerodynamic coefficients")

// SeaLevelDensity is the ISA air density at sea level, kg/m³.
const SeaLevelDensity = 1.225

// Below this speed, in m/s, velocity directions are treated as undefined and
// the forces built on them are zero.
const minSpeed = 1e-3

func dynamicPressure(rho, speed float64) float64 {
	return 0.5 * rho * speed * speed
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finiteVecs(vs ...vector.Vec3) bool {
	for _, v := range vs {
		if !v.IsFinite() {
			return false
		}
	}
	return true
}
