package env

import (
	"math"
	"math/rand/v2"

	"flight-dynamics/internal/geometry/vector"
)

// Wind is a constant mean wind with uncorrelated turbulence.
// Each Sample draws an independent uniform perturbation per axis, so the
// wind may jump from one call to the next.
type Wind struct {
	// Mean is the steady wind in m/s (earth frame)
	Mean vector.Vec3
	// Turbulence scales the per-axis perturbation, which lies in
	// [-Turbulence/2, Turbulence/2)
	Turbulence float64

	rng *rand.Rand
}

// NewWind creates a wind source seeded for reproducible turbulence.
func NewWind(mean vector.Vec3, turbulence float64, seed uint64) *Wind {
	return NewWindWithRand(mean, turbulence, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewWindWithRand creates a wind source drawing turbulence from rng.
func NewWindWithRand(mean vector.Vec3, turbulence float64, rng *rand.Rand) *Wind {
	return &Wind{Mean: mean, Turbulence: turbulence, rng: rng}
}

// Sample returns the mean wind plus one turbulence draw.
func (w *Wind) Sample() vector.Vec3 {
	if w.Turbulence == 0 || w.rng == nil {
		return w.Mean
	}
	return vector.Vec3{
		X: w.Mean.X + w.Turbulence*(w.rng.Float64()-0.5),
		Y: w.Mean.Y + w.Turbulence*(w.rng.Float64()-0.5),
		Z: w.Mean.Z + w.Turbulence*(w.rng.Float64()-0.5),
	}
}

// Calm returns a Wind with zero velocity (no wind).
func Calm() *Wind {
	return &Wind{}
}

// FromSpeedAndDir creates a horizontal Wind from a speed (m/s) and direction (degrees).
// Direction is the heading the air moves toward, clockwise from north (0° = north, 90° = east).
func FromSpeedAndDir(speed, directionDeg float64) vector.Vec3 {
	rad := directionDeg * math.Pi / 180
	return vector.Vec3{
		X: speed * math.Sin(rad),  // east
		Z: -speed * math.Cos(rad), // north is -Z
	}
}
