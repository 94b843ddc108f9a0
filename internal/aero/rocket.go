package aero

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"flight-dynamics/internal/geometry/vector"
	"flight-dynamics/internal/sim"
)

// RocketConfig describes a thrust-vectored booster with two pairs of grid
// fins. Offsets are measured in the body frame from the centre of mass.
type RocketConfig struct {
	AirDensity float64 `yaml:"airDensity"`
	// ReferenceArea is the body cross-section, m²
	ReferenceArea float64 `yaml:"referenceArea"`
	// AxialDrag is the drag coefficient along the velocity
	AxialDrag float64 `yaml:"axialDrag"`
	// NormalForceSlope scales the force opposing cross-flow
	NormalForceSlope float64     `yaml:"normalForceSlope"`
	CenterOfPressure vector.Vec3 `yaml:"centerOfPressure"`

	MaxThrust    float64     `yaml:"maxThrust"`
	ThrustOffset vector.Vec3 `yaml:"thrustOffset"`

	FinArea float64 `yaml:"finArea"`
	// FinNormalSlope is the fin normal-force coefficient per radian
	FinNormalSlope float64     `yaml:"finNormalSlope"`
	FinOffset      vector.Vec3 `yaml:"finOffset"`
}

// DefaultRocket is a first-stage booster with the engines 20 m aft of the
// centre of mass and grid fins 20 m forward.
func DefaultRocket() RocketConfig {
	return RocketConfig{
		AirDensity:       SeaLevelDensity,
		ReferenceArea:    10.5,
		AxialDrag:        0.3,
		NormalForceSlope: 2,
		CenterOfPressure: vector.Vec3{X: -5},

		MaxThrust:    3.5e6,
		ThrustOffset: vector.Vec3{X: -20},

		FinArea:        4,
		FinNormalSlope: 3,
		FinOffset:      vector.Vec3{X: 20},
	}
}

// Validate checks areas, density and thrust are usable and everything is finite.
func (c RocketConfig) Validate() error {
	if !finite(c.AirDensity, c.ReferenceArea, c.AxialDrag, c.NormalForceSlope,
		c.MaxThrust, c.FinArea, c.FinNormalSlope) ||
		!finiteVecs(c.CenterOfPressure, c.ThrustOffset, c.FinOffset) {
		return fmt.Errorf("%w: rocket parameters must be finite", ErrInvalidCoefficients)
	}
	if c.AirDensity < 0 || c.ReferenceArea < 0 || c.FinArea < 0 || c.MaxThrust < 0 {
		return fmt.Errorf("%w: density, areas and thrust must not be negative", ErrInvalidCoefficients)
	}
	return nil
}

// Rocket is a thrust-vectored vehicle steered by engine gimbal and grid fins.
type Rocket struct {
	c RocketConfig
}

// NewRocket validates c and returns the model.
func NewRocket(c RocketConfig) (*Rocket, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Rocket{c: c}, nil
}

// Config returns the model's parameters.
func (r *Rocket) Config() RocketConfig { return r.c }

// ThrustDirection returns the body-frame unit thrust vector for the given
// gimbal angles. The pitch deflection is applied first, then yaw.
func ThrustDirection(pitch, yaw float64) vector.Vec3 {
	d := mgl64.Rotate3DY(-yaw).Mul3(mgl64.Rotate3DZ(-pitch)).Mul3x1(mgl64.Vec3{1, 0, 0})
	return vector.Vec3{X: d[0], Y: d[1], Z: d[2]}
}

// ComputeForces implements sim.ForceModel.
func (r *Rocket) ComputeForces(s sim.State, in sim.Inputs) sim.ForcesMoments {
	c := r.c

	thrust := ThrustDirection(in.ThrustPitch, in.ThrustYaw).Mul(in.Throttle * c.MaxThrust)
	out := sim.ForcesMoments{
		Force:  thrust,
		Moment: c.ThrustOffset.Cross(thrust),
	}

	vel := s.VelocityBody
	speed := vel.Norm()
	if speed < minSpeed {
		return out
	}
	q := dynamicPressure(c.AirDensity, speed)

	fins := q * c.FinArea * c.FinNormalSlope
	finForce := vector.Vec3{Y: fins * in.GridFinPitch, Z: -fins * in.GridFinYaw}
	out = out.Add(sim.ForcesMoments{Force: finForce, Moment: c.FinOffset.Cross(finForce)})

	drag := vel.Mul(-q * c.ReferenceArea * c.AxialDrag / speed)
	out.Force = out.Force.Add(drag)

	// cross-flow opposes the velocity component perpendicular to the body axis
	cross := vector.Vec3{Y: vel.Y, Z: vel.Z}
	crossSpeed := cross.Norm()
	if crossSpeed >= minSpeed {
		normal := cross.Mul(-q * c.ReferenceArea * c.NormalForceSlope / speed)
		out = out.Add(sim.ForcesMoments{Force: normal, Moment: c.CenterOfPressure.Cross(normal)})
	}

	return out
}
