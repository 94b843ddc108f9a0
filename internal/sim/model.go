package sim

// ForceModel computes the aerodynamic and propulsive loads on a vehicle.
// Implementations are pure: the same state and inputs always produce the
// same body-frame forces and moments, and finite inputs produce finite
// outputs. Gravity and wind are added by the integrator, not the model.
type ForceModel interface {
	ComputeForces(state State, in Inputs) ForcesMoments
}

// ForceModelFunc adapts a plain function to ForceModel.
type ForceModelFunc func(state State, in Inputs) ForcesMoments

func (f ForceModelFunc) ComputeForces(state State, in Inputs) ForcesMoments {
	return f(state, in)
}

// NoLoads is a force model producing nothing. A vehicle flown with it is a
// free body under gravity and wind only.
var NoLoads ForceModel = ForceModelFunc(func(State, Inputs) ForcesMoments { return ForcesMoments{} })
