package env

import (
	"flight-dynamics/internal/geometry/vector"
)

// Ground is a flat no-penetration floor at a fixed altitude.
type Ground struct {
	// Level is the altitude of the ground plane in meters
	Level float64
}

// Clamp enforces the floor. If the position is below the ground it is moved
// up to the ground and a descending vertical velocity is zeroed. The returned
// flag reports whether contact occurred.
func (g Ground) Clamp(pos, vel vector.Vec3) (vector.Vec3, vector.Vec3, bool) {
	if pos.Y >= g.Level {
		return pos, vel, false
	}

	pos.Y = g.Level
	if vel.Y < 0 {
		vel.Y = 0
	}
	return pos, vel, true
}
