package sim

import (
	"errors"
	"fmt"
	"math"

	"flight-dynamics/internal/geometry/frame"
	"flight-dynamics/internal/geometry/vector"
)

// ErrInvalidConfig is returned when a vehicle or simulation is constructed
// with parameters that would make a step divide by zero or diverge.
var ErrInvalidConfig = errors.New("invalid simulation config")

// State is the full dynamical state of the vehicle at one instant.
type State struct {
	// Position in the earth frame, meters
	Position vector.Vec3 `json:"position"`
	// Orientation rotates body vectors into the earth frame
	Orientation vector.Quat `json:"orientation"`
	// VelocityBody is the linear velocity in the body frame, m/s
	VelocityBody vector.Vec3 `json:"velocityBody"`
	// AngularVelocityBody is (p, q, r) in the body frame, rad/s
	AngularVelocityBody vector.Vec3 `json:"angularVelocityBody"`
}

// InitialState returns a vehicle at the origin, level and at rest.
func InitialState() State {
	return State{Orientation: vector.IdentityQuat()}
}

// Airspeed is the magnitude of the body velocity.
func (s State) Airspeed() float64 { return s.VelocityBody.Norm() }

// AngleOfAttack is the angle between the nose and the velocity in the
// body x-y plane. Positive when the air comes from below the nose.
func (s State) AngleOfAttack() float64 {
	return math.Atan2(-s.VelocityBody.Y, s.VelocityBody.X)
}

// VelocityEarth returns the body velocity expressed in the earth frame.
func (s State) VelocityEarth() vector.Vec3 {
	return frame.BodyToEarth(s.Orientation, s.VelocityBody)
}

// IsFinite reports whether every component of the state is finite.
func (s State) IsFinite() bool {
	return s.Position.IsFinite() && s.Orientation.IsFinite() &&
		s.VelocityBody.IsFinite() && s.AngularVelocityBody.IsFinite()
}

// Inputs is the per-tick command vector. Fixed-wing models read the
// aerodynamic surfaces, thrust-vectored models read the gimbal and grid-fin
// angles; both read Throttle. Angles are in radians.
type Inputs struct {
	Aileron  float64 `json:"aileron"`
	Elevator float64 `json:"elevator"`
	Rudder   float64 `json:"rudder"`

	ThrustPitch  float64 `json:"thrustPitch"`
	ThrustYaw    float64 `json:"thrustYaw"`
	GridFinPitch float64 `json:"gridFinPitch"`
	GridFinYaw   float64 `json:"gridFinYaw"`

	// Throttle in [0, 1]
	Throttle float64 `json:"throttle"`

	// Wind, when set, replaces the sampled earth-frame wind for this tick
	Wind *vector.Vec3 `json:"wind,omitempty"`
}

// Bounded returns a copy with throttle clamped to [0, 1] and every angular
// effector clamped to ±maxDeflection.
func (in Inputs) Bounded(maxDeflection float64) Inputs {
	in.Aileron = clamp(in.Aileron, -maxDeflection, maxDeflection)
	in.Elevator = clamp(in.Elevator, -maxDeflection, maxDeflection)
	in.Rudder = clamp(in.Rudder, -maxDeflection, maxDeflection)
	in.ThrustPitch = clamp(in.ThrustPitch, -maxDeflection, maxDeflection)
	in.ThrustYaw = clamp(in.ThrustYaw, -maxDeflection, maxDeflection)
	in.GridFinPitch = clamp(in.GridFinPitch, -maxDeflection, maxDeflection)
	in.GridFinYaw = clamp(in.GridFinYaw, -maxDeflection, maxDeflection)
	in.Throttle = clamp(in.Throttle, 0, 1)
	return in
}

// ForcesMoments is a body-frame force (N) and moment (N·m) pair.
type ForcesMoments struct {
	Force  vector.Vec3
	Moment vector.Vec3
}

// Add sums two force/moment pairs.
func (fm ForcesMoments) Add(o ForcesMoments) ForcesMoments {
	return ForcesMoments{Force: fm.Force.Add(o.Force), Moment: fm.Moment.Add(o.Moment)}
}

// VehicleConfig holds the static mass properties of a vehicle.
type VehicleConfig struct {
	Name string
	// Mass in kg
	Mass float64
	// Inertia is the diagonal of the inertia tensor (Ix, Iy, Iz), kg·m²
	Inertia vector.Vec3
	// MaxDeflection bounds every angular effector, radians
	MaxDeflection float64
}

// Validate rejects mass properties that would produce a division by zero.
func (c VehicleConfig) Validate() error {
	if !(c.Mass > 0) || math.IsInf(c.Mass, 0) {
		return fmt.Errorf("%w: mass must be positive and finite, got %v", ErrInvalidConfig, c.Mass)
	}
	if !c.Inertia.IsFinite() {
		return fmt.Errorf("%w: inertia must be finite, got %+v", ErrInvalidConfig, c.Inertia)
	}
	if !(c.Inertia.X > 0) || !(c.Inertia.Y > 0) || !(c.Inertia.Z > 0) {
		return fmt.Errorf("%w: every inertia component must be positive, got %+v", ErrInvalidConfig, c.Inertia)
	}
	if c.MaxDeflection < 0 || math.IsNaN(c.MaxDeflection) {
		return fmt.Errorf("%w: max deflection must not be negative, got %v", ErrInvalidConfig, c.MaxDeflection)
	}
	return nil
}

// Sample is one time-series record.
type Sample struct {
	Time     float64     `json:"time"`
	Position vector.Vec3 `json:"position"`
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
