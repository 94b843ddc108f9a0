// Package env provides the environmental sources acting on a vehicle:
// gravity, wind and the ground plane. All vectors are in the earth frame.
package env

import (
	"flight-dynamics/internal/geometry/vector"
)

// ForceSource produces an earth-frame force on a vehicle of the given mass.
type ForceSource interface {
	// Force returns the force in newtons for a vehicle of mass kg.
	Force(mass float64) vector.Vec3
}

// WindSource produces an earth-frame wind vector each time it is sampled.
// Consecutive samples are independent.
type WindSource interface {
	Sample() vector.Vec3
}

// NoWind is a wind source that always returns still air.
var NoWind WindSource = noWind{}

type noWind struct{}

func (noWind) Sample() vector.Vec3 { return vector.Vec3{} }
