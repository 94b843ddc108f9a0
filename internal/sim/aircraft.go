package sim

import (
	"fmt"
	"math"

	"flight-dynamics/internal/env"
	"flight-dynamics/internal/geometry/frame"
	"flight-dynamics/internal/geometry/vector"
)

// AircraftConfig is everything needed to build an Aircraft.
type AircraftConfig struct {
	Vehicle VehicleConfig
	Model   ForceModel

	Gravity env.Gravity
	// Wind is sampled once per derivative evaluation. Nil means still air.
	Wind   env.WindSource
	Ground env.Ground

	// Initial is the starting state. A zero Orientation is treated as identity.
	Initial State
}

// Derivative is the time rate of change of every State component.
type Derivative struct {
	PositionRate        vector.Vec3 // earth frame
	OrientationRate     vector.Quat
	Acceleration        vector.Vec3 // body frame
	AngularAcceleration vector.Vec3 // body frame
}

// Aircraft is a rigid body advanced by explicit Euler integration.
// It is not safe for concurrent use.
type Aircraft struct {
	vehicle VehicleConfig
	model   ForceModel
	gravity env.Gravity
	wind    env.WindSource
	ground  env.Ground

	initial State
	state   State
	contact bool
}

// NewAircraft validates the configuration and returns an aircraft at its
// initial state.
func NewAircraft(cfg AircraftConfig) (*Aircraft, error) {
	if err := cfg.Vehicle.Validate(); err != nil {
		return nil, err
	}
	if cfg.Model == nil {
		return nil, fmt.Errorf("%w: force model is required", ErrInvalidConfig)
	}
	if cfg.Gravity.G < 0 || math.IsNaN(cfg.Gravity.G) || math.IsInf(cfg.Gravity.G, 0) {
		return nil, fmt.Errorf("%w: gravity must be finite and not negative, got %v", ErrInvalidConfig, cfg.Gravity.G)
	}
	if !cfg.Initial.IsFinite() {
		return nil, fmt.Errorf("%w: initial state must be finite", ErrInvalidConfig)
	}

	wind := cfg.Wind
	if wind == nil {
		wind = env.NoWind
	}

	initial := cfg.Initial
	if initial.Orientation == (vector.Quat{}) {
		initial.Orientation = vector.IdentityQuat()
	}
	initial.Orientation = initial.Orientation.Normalize()

	return &Aircraft{
		vehicle: cfg.Vehicle,
		model:   cfg.Model,
		gravity: cfg.Gravity,
		wind:    wind,
		ground:  cfg.Ground,
		initial: initial,
		state:   initial,
	}, nil
}

// State returns a copy of the current state.
func (a *Aircraft) State() State { return a.state }

// Vehicle returns the static mass properties.
func (a *Aircraft) Vehicle() VehicleConfig { return a.vehicle }

// Contact reports whether the last step touched the ground.
func (a *Aircraft) Contact() bool { return a.contact }

// Reset restores the initial state.
func (a *Aircraft) Reset() {
	a.state = a.initial
	a.contact = false
}

// Derivative evaluates the equations of motion at s. Inputs are used as
// given; Step bounds them first.
func (a *Aircraft) Derivative(s State, in Inputs) Derivative {
	loads := a.model.ComputeForces(s, in)

	wind := a.sampleWind(in)
	external := a.gravity.Force(a.vehicle.Mass).Add(wind)
	force := loads.Force.Add(frame.EarthToBody(s.Orientation, external))

	w := s.AngularVelocityBody
	I := a.vehicle.Inertia
	M := loads.Moment

	return Derivative{
		PositionRate:    frame.BodyToEarth(s.Orientation, s.VelocityBody),
		OrientationRate: s.Orientation.Rate(w),
		Acceleration:    force.Mul(1 / a.vehicle.Mass),
		AngularAcceleration: vector.Vec3{
			X: (M.X - w.Y*w.Z*(I.Z-I.Y)) / I.X,
			Y: (M.Y - w.Z*w.X*(I.X-I.Z)) / I.Y,
			Z: (M.Z - w.X*w.Y*(I.Y-I.X)) / I.Z,
		},
	}
}

// Step advances the state by dt and returns the new state. The new state
// replaces the old one only once it is complete.
func (a *Aircraft) Step(in Inputs, dt float64) State {
	in = in.Bounded(a.vehicle.MaxDeflection)
	s := a.state
	d := a.Derivative(s, in)

	next := State{
		Position:            s.Position.Add(d.PositionRate.Mul(dt)),
		Orientation:         s.Orientation.Add(d.OrientationRate.Mul(dt)),
		VelocityBody:        s.VelocityBody.Add(d.Acceleration.Mul(dt)),
		AngularVelocityBody: s.AngularVelocityBody.Add(d.AngularAcceleration.Mul(dt)),
	}

	next, a.contact = a.applyGround(next)
	next.Orientation = next.Orientation.Normalize()

	a.state = next
	return next
}

// applyGround keeps the vehicle on or above the ground plane. The vertical
// velocity is judged in the earth frame, so the body velocity is rotated out
// and back with a unit copy of the orientation.
func (a *Aircraft) applyGround(s State) (State, bool) {
	if s.Position.Y >= a.ground.Level {
		return s, false
	}

	q := s.Orientation.Normalize()
	vel := frame.BodyToEarth(q, s.VelocityBody)

	pos, vel, contact := a.ground.Clamp(s.Position, vel)
	s.Position = pos
	s.VelocityBody = frame.EarthToBody(q, vel)
	return s, contact
}

func (a *Aircraft) sampleWind(in Inputs) vector.Vec3 {
	if in.Wind != nil {
		return *in.Wind
	}
	return a.wind.Sample()
}
