package aero

import (
	"fmt"
	"math"

	"flight-dynamics/internal/geometry/vector"
	"flight-dynamics/internal/sim"
)

// FixedWingCoefficients is the stability-derivative set of a conventional
// aircraft. Angles are in radians; rate derivatives use rates
// non-dimensionalized by span or chord over 2V.
type FixedWingCoefficients struct {
	AirDensity float64 `yaml:"airDensity"`
	WingArea   float64 `yaml:"wingArea"`
	Span       float64 `yaml:"span"`
	Chord      float64 `yaml:"chord"`
	MaxThrust  float64 `yaml:"maxThrust"`

	CL0      float64 `yaml:"cl0"`
	CLAlpha  float64 `yaml:"clAlpha"`
	CLDeltaE float64 `yaml:"clDeltaE"`

	CD0     float64 `yaml:"cd0"`
	CDAlpha float64 `yaml:"cdAlpha"`

	CYBeta   float64 `yaml:"cyBeta"`
	CYDeltaR float64 `yaml:"cyDeltaR"`

	ClDeltaA float64 `yaml:"rollDeltaA"`
	ClP      float64 `yaml:"rollP"`

	Cm0      float64 `yaml:"cm0"`
	CmAlpha  float64 `yaml:"cmAlpha"`
	CmDeltaE float64 `yaml:"cmDeltaE"`
	CmQ      float64 `yaml:"cmQ"`

	CnBeta   float64 `yaml:"cnBeta"`
	CnDeltaR float64 `yaml:"cnDeltaR"`
	CnR      float64 `yaml:"cnR"`
}

// DefaultFixedWing is a light single-engine aircraft.
func DefaultFixedWing() FixedWingCoefficients {
	return FixedWingCoefficients{
		AirDensity: SeaLevelDensity,
		WingArea:   16.2,
		Span:       11,
		Chord:      1.5,
		MaxThrust:  4000,

		CL0:      0.2,
		CLAlpha:  5.5,
		CLDeltaE: 0.4,

		CD0:     0.02,
		CDAlpha: 0.04,

		CYBeta:   -0.3,
		CYDeltaR: 0.15,

		ClDeltaA: 0.08,
		ClP:      -0.5,

		Cm0:      0,
		CmAlpha:  -1.2,
		CmDeltaE: 0.5,
		CmQ:      -12,

		CnBeta:   -0.07,
		CnDeltaR: 0.06,
		CnR:      -0.1,
	}
}

// Validate checks the geometry is usable and every coefficient is finite.
func (c FixedWingCoefficients) Validate() error {
	if !finite(c.AirDensity, c.WingArea, c.Span, c.Chord, c.MaxThrust,
		c.CL0, c.CLAlpha, c.CLDeltaE, c.CD0, c.CDAlpha, c.CYBeta, c.CYDeltaR,
		c.ClDeltaA, c.ClP, c.Cm0, c.CmAlpha, c.CmDeltaE, c.CmQ,
		c.CnBeta, c.CnDeltaR, c.CnR) {
		return fmt.Errorf("%w: fixed-wing coefficients must be finite", ErrInvalidCoefficients)
	}
	if c.AirDensity < 0 || c.WingArea < 0 || c.MaxThrust < 0 {
		return fmt.Errorf("%w: density, wing area and thrust must not be negative", ErrInvalidCoefficients)
	}
	if c.Span <= 0 || c.Chord <= 0 {
		return fmt.Errorf("%w: span and chord must be positive, got %v and %v", ErrInvalidCoefficients, c.Span, c.Chord)
	}
	return nil
}

// FixedWing is a conventional aircraft flown with aileron, elevator, rudder
// and throttle.
type FixedWing struct {
	c FixedWingCoefficients
}

// NewFixedWing validates c and returns the model.
func NewFixedWing(c FixedWingCoefficients) (*FixedWing, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &FixedWing{c: c}, nil
}

// Coefficients returns the model's coefficient set.
func (f *FixedWing) Coefficients() FixedWingCoefficients { return f.c }

// ComputeForces implements sim.ForceModel.
func (f *FixedWing) ComputeForces(s sim.State, in sim.Inputs) sim.ForcesMoments {
	c := f.c
	vel := s.VelocityBody
	u, v, w := vel.X, vel.Y, vel.Z
	speed := vel.Norm()

	thrust := vector.Vec3{X: in.Throttle * c.MaxThrust}
	if speed < minSpeed {
		return sim.ForcesMoments{Force: thrust}
	}

	alpha := math.Atan2(-v, u)
	beta := math.Atan2(w, math.Hypot(u, v))
	qS := dynamicPressure(c.AirDensity, speed) * c.WingArea

	rates := s.AngularVelocityBody
	pHat := rates.X * c.Span / (2 * speed)
	rHat := rates.Y * c.Span / (2 * speed)
	qHat := rates.Z * c.Chord / (2 * speed)

	cl := c.CL0 + c.CLAlpha*alpha + c.CLDeltaE*in.Elevator
	cd := c.CD0 + c.CDAlpha*math.Abs(alpha)
	cy := c.CYBeta*beta + c.CYDeltaR*in.Rudder

	// lift and drag live in the plane of the longitudinal velocity
	var liftDir, dragDir vector.Vec3
	if math.Hypot(u, v) >= minSpeed {
		sa, ca := math.Sin(alpha), math.Cos(alpha)
		liftDir = vector.Vec3{X: sa, Y: ca}
		dragDir = vector.Vec3{X: -ca, Y: sa}
	}

	force := liftDir.Mul(qS * cl).
		Add(dragDir.Mul(qS * cd)).
		Add(vector.Vec3{Z: qS * cy}).
		Add(thrust)

	moment := vector.Vec3{
		X: qS * c.Span * (c.ClDeltaA*in.Aileron + c.ClP*pHat),
		Y: qS * c.Span * (c.CnBeta*beta + c.CnDeltaR*in.Rudder + c.CnR*rHat),
		Z: qS * c.Chord * (c.Cm0 + c.CmAlpha*alpha + c.CmDeltaE*in.Elevator + c.CmQ*qHat),
	}

	return sim.ForcesMoments{Force: force, Moment: moment}
}
