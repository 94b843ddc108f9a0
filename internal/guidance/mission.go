package guidance

import (
	"flight-dynamics/internal/geometry/frame"
	"flight-dynamics/internal/geometry/vector"
	"flight-dynamics/internal/sim"
)

// Destination is where the vehicle should go and how fast it should be
// moving on the way, both in the earth frame.
type Destination struct {
	Position vector.Vec3 `json:"position"`
	Velocity vector.Vec3 `json:"velocity"`
}

// TargetSpeed is the cruise speed toward the destination.
func (d Destination) TargetSpeed() float64 { return d.Velocity.Norm() }

// Mission is a destination plus the thresholds that define arrival.
type Mission struct {
	Destination Destination `json:"destination"`
	// HorizontalThreshold is the ground-plane radius around the target, m
	HorizontalThreshold float64 `json:"horizontalThreshold"`
	// AltitudeThreshold is the maximum height above the target, m
	AltitudeThreshold float64 `json:"altitudeThreshold"`
}

// DefaultMission flies to a pad 300 m east and 300 m south at 20 m/s.
func DefaultMission() Mission {
	return Mission{
		Destination: Destination{
			Position: vector.Vec3{X: 300, Y: 1, Z: 300},
			Velocity: vector.Vec3{X: 20},
		},
		HorizontalThreshold: 100,
		AltitudeThreshold:   4,
	}
}

// HorizontalDistance is the ground-plane distance from s to the target.
func (m Mission) HorizontalDistance(s sim.State) float64 {
	return frame.HorizontalDistance(s.Position, m.Destination.Position)
}

// Arrived reports whether s is inside the horizontal radius and below the
// altitude threshold above the target.
func (m Mission) Arrived(s sim.State) bool {
	above := frame.Altitude(s.Position) - frame.Altitude(m.Destination.Position)
	return m.HorizontalDistance(s) < m.HorizontalThreshold && above < m.AltitudeThreshold
}
