package sim

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-dynamics/internal/env"
	"flight-dynamics/internal/geometry/frame"
	"flight-dynamics/internal/geometry/vector"
)

func testVehicle() VehicleConfig {
	return VehicleConfig{
		Name:          "test",
		Mass:          1000,
		Inertia:       vector.Vec3{X: 1000, Y: 1000, Z: 1000},
		MaxDeflection: 0.3,
	}
}

func newTestAircraft(t *testing.T, cfg AircraftConfig) *Aircraft {
	t.Helper()
	if cfg.Vehicle == (VehicleConfig{}) {
		cfg.Vehicle = testVehicle()
	}
	if cfg.Model == nil {
		cfg.Model = NoLoads
	}
	a, err := NewAircraft(cfg)
	require.NoError(t, err)
	return a
}

func TestVehicleConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*VehicleConfig)
	}{
		{"zero mass", func(c *VehicleConfig) { c.Mass = 0 }},
		{"negative mass", func(c *VehicleConfig) { c.Mass = -5 }},
		{"nan mass", func(c *VehicleConfig) { c.Mass = math.NaN() }},
		{"zero ix", func(c *VehicleConfig) { c.Inertia.X = 0 }},
		{"zero iy", func(c *VehicleConfig) { c.Inertia.Y = 0 }},
		{"negative iz", func(c *VehicleConfig) { c.Inertia.Z = -1 }},
		{"infinite inertia", func(c *VehicleConfig) { c.Inertia.Y = math.Inf(1) }},
		{"negative deflection", func(c *VehicleConfig) { c.MaxDeflection = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testVehicle()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	assert.NoError(t, testVehicle().Validate())
}

func TestNewAircraftRejectsBadConfig(t *testing.T) {
	_, err := NewAircraft(AircraftConfig{Vehicle: testVehicle()})
	assert.ErrorIs(t, err, ErrInvalidConfig, "missing model")

	_, err = NewAircraft(AircraftConfig{Vehicle: testVehicle(), Model: NoLoads, Gravity: env.Gravity{G: -1}})
	assert.ErrorIs(t, err, ErrInvalidConfig, "negative gravity")

	_, err = NewAircraft(AircraftConfig{Vehicle: VehicleConfig{Mass: 1}, Model: NoLoads})
	assert.ErrorIs(t, err, ErrInvalidConfig, "zero inertia")

	bad := InitialState()
	bad.VelocityBody.X = math.NaN()
	_, err = NewAircraft(AircraftConfig{Vehicle: testVehicle(), Model: NoLoads, Initial: bad})
	assert.ErrorIs(t, err, ErrInvalidConfig, "non-finite initial state")
}

func TestNewAircraftNormalizesInitialOrientation(t *testing.T) {
	a := newTestAircraft(t, AircraftConfig{Initial: State{Orientation: vector.Quat{W: 2}}})
	assert.Equal(t, vector.IdentityQuat(), a.State().Orientation)

	a = newTestAircraft(t, AircraftConfig{})
	assert.Equal(t, vector.IdentityQuat(), a.State().Orientation, "zero orientation becomes identity")
}

func TestOneTickUnderGravity(t *testing.T) {
	a := newTestAircraft(t, AircraftConfig{Gravity: env.Standard()})

	st := a.Step(Inputs{}, 0.01)

	assert.InDelta(t, -0.0981, st.VelocityBody.Y, 1e-12)
	assert.InDelta(t, 0, st.VelocityBody.X, 1e-12)
	assert.InDelta(t, 0, st.VelocityBody.Z, 1e-12)
	assert.InDelta(t, 0, st.Position.Norm(), 1e-6)
	assert.Equal(t, vector.IdentityQuat(), st.Orientation)
	assert.Equal(t, vector.Vec3{}, st.AngularVelocityBody)
	assert.False(t, a.Contact())
}

func TestFreeFallRate(t *testing.T) {
	for _, dt := range []float64{0.05, 0.01, 0.001} {
		a := newTestAircraft(t, AircraftConfig{
			Gravity: env.Standard(),
			Ground:  env.Ground{Level: -1e9},
		})
		steps := int(math.Round(1 / dt))
		prev := 0.0
		for i := 0; i < steps; i++ {
			vy := a.Step(Inputs{}, dt).VelocityBody.Y
			require.Less(t, vy, prev, "vertical speed must keep growing downward")
			prev = vy
		}
		// constant acceleration integrates exactly
		assert.InDelta(t, -env.StandardGravity, prev, 1e-9, "dt=%v", dt)
	}
}

func TestQuaternionStaysUnit(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	model := ForceModelFunc(func(State, Inputs) ForcesMoments {
		return ForcesMoments{Moment: vector.Vec3{X: r.NormFloat64() * 5, Y: r.NormFloat64() * 5, Z: r.NormFloat64() * 5}}
	})
	a := newTestAircraft(t, AircraftConfig{
		Vehicle: VehicleConfig{Mass: 10, Inertia: vector.Vec3{X: 5, Y: 20, Z: 30}},
		Model:   model,
		Gravity: env.Standard(),
		Ground:  env.Ground{Level: -1e9},
		Initial: State{
			Orientation:         vector.FromEuler(0.3, 0.2, -0.1),
			AngularVelocityBody: vector.Vec3{X: 2, Y: -1, Z: 0.5},
		},
	})

	for i := 0; i < 2000; i++ {
		st := a.Step(Inputs{}, 0.01)
		require.InDelta(t, 1.0, st.Orientation.Norm(), 1e-9, "tick %d", i)
		require.True(t, st.IsFinite(), "tick %d", i)
	}
}

func TestGroundConstraint(t *testing.T) {
	a := newTestAircraft(t, AircraftConfig{
		Gravity: env.Standard(),
		Ground:  env.Ground{Level: 0},
		Initial: State{
			Position:     vector.Vec3{X: 5, Y: 10, Z: -3},
			Orientation:  vector.FromEuler(0.4, -0.3, 0.2),
			VelocityBody: vector.Vec3{X: 15, Y: -8, Z: 2},
		},
	})

	touched := false
	for i := 0; i < 500; i++ {
		st := a.Step(Inputs{}, 0.02)
		require.GreaterOrEqual(t, st.Position.Y, 0.0, "tick %d", i)
		if a.Contact() {
			touched = true
			assert.GreaterOrEqual(t, st.VelocityEarth().Y, -1e-9, "tick %d", i)
		}
	}
	assert.True(t, touched)
}

func TestEulerEquations(t *testing.T) {
	a := newTestAircraft(t, AircraftConfig{
		Vehicle: VehicleConfig{Mass: 1, Inertia: vector.Vec3{X: 1, Y: 2, Z: 3}},
	})
	s := InitialState()
	s.AngularVelocityBody = vector.Vec3{X: 1, Y: 2, Z: 3}

	d := a.Derivative(s, Inputs{})
	assert.InDelta(t, -6, d.AngularAcceleration.X, 1e-12)
	assert.InDelta(t, 3, d.AngularAcceleration.Y, 1e-12)
	assert.InDelta(t, -2.0/3.0, d.AngularAcceleration.Z, 1e-12)

	// the applied moment divides by the matching inertia
	moment := ForceModelFunc(func(State, Inputs) ForcesMoments {
		return ForcesMoments{Moment: vector.Vec3{X: 4, Y: 4, Z: 4}}
	})
	a = newTestAircraft(t, AircraftConfig{
		Vehicle: VehicleConfig{Mass: 1, Inertia: vector.Vec3{X: 1, Y: 2, Z: 4}},
		Model:   moment,
	})
	d = a.Derivative(InitialState(), Inputs{})
	assert.Equal(t, vector.Vec3{X: 4, Y: 2, Z: 1}, d.AngularAcceleration)
}

func TestDerivativeTransformsEnvironmentIntoBody(t *testing.T) {
	a := newTestAircraft(t, AircraftConfig{Gravity: env.Standard()})
	s := InitialState()
	s.Orientation = vector.FromEuler(0, math.Pi/2, 0)
	s.VelocityBody = vector.Vec3{X: 10}

	d := a.Derivative(s, Inputs{})
	// nose up: gravity decelerates along body x and velocity maps to climb
	assert.InDelta(t, -env.StandardGravity, d.Acceleration.X, 1e-9)
	assert.InDelta(t, 0, d.Acceleration.Y, 1e-9)
	assert.InDelta(t, 10, d.PositionRate.Y, 1e-9)
	assert.InDelta(t, 0, d.PositionRate.X, 1e-9)
}

func TestWindOverrideReplacesSampledWind(t *testing.T) {
	a := newTestAircraft(t, AircraftConfig{Wind: env.NewWind(vector.Vec3{Z: 500}, 0, 1)})

	d := a.Derivative(InitialState(), Inputs{})
	assert.InDelta(t, 0.5, d.Acceleration.Z, 1e-12)

	d = a.Derivative(InitialState(), Inputs{Wind: &vector.Vec3{X: 100}})
	assert.InDelta(t, 0.1, d.Acceleration.X, 1e-12)
	assert.InDelta(t, 0, d.Acceleration.Z, 1e-12)
}

func TestStepBoundsInputs(t *testing.T) {
	var seen Inputs
	spy := ForceModelFunc(func(_ State, in Inputs) ForcesMoments {
		seen = in
		return ForcesMoments{}
	})
	a := newTestAircraft(t, AircraftConfig{Model: spy})

	a.Step(Inputs{Elevator: 2, Rudder: -2, ThrustYaw: 0.1, GridFinPitch: -9, Throttle: 3}, 0.01)
	assert.Equal(t, 0.3, seen.Elevator)
	assert.Equal(t, -0.3, seen.Rudder)
	assert.Equal(t, 0.1, seen.ThrustYaw)
	assert.Equal(t, -0.3, seen.GridFinPitch)
	assert.Equal(t, 1.0, seen.Throttle)

	a.Step(Inputs{Throttle: -1}, 0.01)
	assert.Equal(t, 0.0, seen.Throttle)
}

func TestStateDerivedQuantities(t *testing.T) {
	s := State{Orientation: vector.IdentityQuat(), VelocityBody: vector.Vec3{X: 3, Y: -4}}
	assert.InDelta(t, 5, s.Airspeed(), 1e-12)
	assert.InDelta(t, math.Atan2(4, 3), s.AngleOfAttack(), 1e-12)
	assert.Equal(t, 0.0, InitialState().AngleOfAttack())

	s.Orientation = vector.FromEuler(math.Pi/2, 0, 0)
	v := s.VelocityEarth()
	assert.InDelta(t, frame.BodyToEarth(s.Orientation, s.VelocityBody).Z, v.Z, 1e-12)
	assert.InDelta(t, -3, v.Z, 1e-12)
}

func TestResetRestoresInitialState(t *testing.T) {
	initial := State{Position: vector.Vec3{Y: 100}, Orientation: vector.IdentityQuat(), VelocityBody: vector.Vec3{X: 20}}
	a := newTestAircraft(t, AircraftConfig{Gravity: env.Standard(), Initial: initial})
	for i := 0; i < 10; i++ {
		a.Step(Inputs{}, 0.05)
	}
	require.NotEqual(t, initial, a.State())

	a.Reset()
	assert.Equal(t, initial, a.State())
	assert.False(t, a.Contact())
}
