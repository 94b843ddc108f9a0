package config

import (
	"math"

	"flight-dynamics/internal/env"
	"flight-dynamics/internal/geometry/vector"
	"flight-dynamics/internal/guidance"
	"flight-dynamics/internal/sim"
)

// Setup is a simulation assembled from configuration.
type Setup struct {
	Simulation *sim.Simulation
	Controller *guidance.Controller
	Mission    guidance.Mission
	Autopilot  bool
	Geo        GeoConfig
}

// Build assembles the configured vehicle, environment, guidance and mission.
func Build() (*Setup, error) {
	sc := GetSimConfig()

	catalog, err := LoadCatalog(sc.VehiclesFile)
	if err != nil {
		return nil, err
	}
	spec, err := catalog.Lookup(sc.Vehicle)
	if err != nil {
		return nil, err
	}
	vehicle, model, err := spec.Build(sc.Vehicle)
	if err != nil {
		return nil, err
	}

	wc := GetWindConfig()
	mean := wc.Mean.Add(env.FromSpeedAndDir(wc.Speed, wc.DirectionDeg))
	aircraft, err := sim.NewAircraft(sim.AircraftConfig{
		Vehicle: vehicle,
		Model:   model,
		Gravity: env.Gravity{G: sc.Gravity},
		Wind:    env.NewWind(mean, wc.Turbulence, sc.Seed),
		Ground:  env.Ground{Level: sc.GroundLevel},
		Initial: InitialState(sc.Initial),
	})
	if err != nil {
		return nil, err
	}

	simulation, err := sim.NewSimulation(aircraft, sc.DT)
	if err != nil {
		return nil, err
	}

	gc := GetGuidanceConfig()
	controller := guidance.NewController(guidance.DefaultGains(), guidance.Limits{
		CloseThreshold:   gc.CloseThreshold,
		MaxPitchCommand:  gc.MaxPitchCommand,
		MaxControlAngle:  gc.MaxControlAngle,
		TerminalYawScale: gc.TerminalYawScale,
	})

	mc := GetMissionConfig()
	return &Setup{
		Simulation: simulation,
		Controller: controller,
		Mission: guidance.Mission{
			Destination: guidance.Destination{
				Position: mc.Target,
				Velocity: mc.Velocity,
			},
			HorizontalThreshold: mc.HorizontalThreshold,
			AltitudeThreshold:   mc.AltitudeThreshold,
		},
		Autopilot: gc.Autopilot,
		Geo:       GetGeoConfig(),
	}, nil
}

// InitialState converts a compass pose into a vehicle state. Heading is
// clockwise from north, so 90° points the nose east.
func InitialState(ic InitialConfig) sim.State {
	yaw := (90 - ic.HeadingDeg) * math.Pi / 180
	pitch := ic.PitchDeg * math.Pi / 180
	roll := ic.RollDeg * math.Pi / 180
	return sim.State{
		Position:     ic.Position,
		Orientation:  vector.FromEuler(yaw, pitch, roll),
		VelocityBody: vector.Vec3{X: ic.Speed},
	}
}
