package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"flight-dynamics/internal/geometry/vector"
)

// ConfigName is the config file looked up in the config directory, with
// any extension viper can decode (.json, .yaml, .yml, .toml).
const ConfigName = "flightsim.cfg"

// FileName is the JSON form of the config file.
const FileName = ConfigName + ".json"

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Port int
}

// InitialConfig is the vehicle's starting pose
type InitialConfig struct {
	Position   vector.Vec3
	HeadingDeg float64
	PitchDeg   float64
	RollDeg    float64
	// Speed along the nose, m/s
	Speed float64
}

// SimConfig holds the integrator and vehicle selection
type SimConfig struct {
	DT           float64
	Vehicle      string
	VehiclesFile string
	Gravity      float64
	GroundLevel  float64
	Seed         uint64
	Initial      InitialConfig
}

// WindConfig is the mean wind and turbulence intensity
type WindConfig struct {
	Mean       vector.Vec3
	Turbulence float64
	// Speed and DirectionDeg describe an additional horizontal wind,
	// direction clockwise from north
	Speed        float64
	DirectionDeg float64
}

// MissionConfig is the guidance destination and arrival thresholds
type MissionConfig struct {
	Target              vector.Vec3
	Velocity            vector.Vec3
	HorizontalThreshold float64
	AltitudeThreshold   float64
}

// GuidanceConfig bounds the autopilot
type GuidanceConfig struct {
	CloseThreshold   float64
	MaxPitchCommand  float64
	MaxControlAngle  float64
	TerminalYawScale float64
	// Autopilot engages guidance from the first tick
	Autopilot bool
}

// GeoConfig anchors the local frame on the globe
type GeoConfig struct {
	OriginLat float64
	OriginLon float64
}

// Load reads configuration from configDir and sets default values.
// A missing config file is not an error; the defaults apply.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(ConfigName)
	viper.AddConfigPath(configDir)

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logPretty", true)

	viper.SetDefault("server.port", 8080)

	viper.SetDefault("sim.dt", 0.05)
	viper.SetDefault("sim.vehicle", "fixedwing")
	viper.SetDefault("sim.vehiclesFile", "")
	viper.SetDefault("sim.gravity", 9.81)
	viper.SetDefault("sim.groundLevel", 0.0)
	viper.SetDefault("sim.seed", 1)
	viper.SetDefault("sim.initial.x", 0.0)
	viper.SetDefault("sim.initial.y", 0.0)
	viper.SetDefault("sim.initial.z", 0.0)
	viper.SetDefault("sim.initial.headingDeg", 90.0)
	viper.SetDefault("sim.initial.pitchDeg", 0.0)
	viper.SetDefault("sim.initial.rollDeg", 0.0)
	viper.SetDefault("sim.initial.speed", 0.0)

	viper.SetDefault("wind.x", 0.0)
	viper.SetDefault("wind.y", 0.0)
	viper.SetDefault("wind.z", 0.0)
	viper.SetDefault("wind.turbulence", 0.0)
	viper.SetDefault("wind.speed", 0.0)
	viper.SetDefault("wind.directionDeg", 0.0)

	viper.SetDefault("mission.target.x", 300.0)
	viper.SetDefault("mission.target.y", 1.0)
	viper.SetDefault("mission.target.z", 300.0)
	viper.SetDefault("mission.velocity.x", 20.0)
	viper.SetDefault("mission.velocity.y", 0.0)
	viper.SetDefault("mission.velocity.z", 0.0)
	viper.SetDefault("mission.horizontalThreshold", 100.0)
	viper.SetDefault("mission.altitudeThreshold", 4.0)

	viper.SetDefault("guidance.closeThreshold", 10.0)
	viper.SetDefault("guidance.maxPitchCommand", 0.1)
	viper.SetDefault("guidance.maxControlAngle", 0.1)
	viper.SetDefault("guidance.terminalYawScale", 0.1)
	viper.SetDefault("guidance.autopilot", false)

	viper.SetDefault("geo.originLat", 32.0853)
	viper.SetDefault("geo.originLon", 34.7818)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetServerConfig returns the HTTP listener settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{Port: viper.GetInt("server.port")}
}

// GetSimConfig returns the simulation settings.
func GetSimConfig() SimConfig {
	return SimConfig{
		DT:           viper.GetFloat64("sim.dt"),
		Vehicle:      viper.GetString("sim.vehicle"),
		VehiclesFile: viper.GetString("sim.vehiclesFile"),
		Gravity:      viper.GetFloat64("sim.gravity"),
		GroundLevel:  viper.GetFloat64("sim.groundLevel"),
		Seed:         viper.GetUint64("sim.seed"),
		Initial: InitialConfig{
			Position:   getVec3("sim.initial"),
			HeadingDeg: viper.GetFloat64("sim.initial.headingDeg"),
			PitchDeg:   viper.GetFloat64("sim.initial.pitchDeg"),
			RollDeg:    viper.GetFloat64("sim.initial.rollDeg"),
			Speed:      viper.GetFloat64("sim.initial.speed"),
		},
	}
}

// GetWindConfig returns the wind settings.
func GetWindConfig() WindConfig {
	return WindConfig{
		Mean:         getVec3("wind"),
		Turbulence:   viper.GetFloat64("wind.turbulence"),
		Speed:        viper.GetFloat64("wind.speed"),
		DirectionDeg: viper.GetFloat64("wind.directionDeg"),
	}
}

// GetMissionConfig returns the guidance destination.
func GetMissionConfig() MissionConfig {
	return MissionConfig{
		Target:              getVec3("mission.target"),
		Velocity:            getVec3("mission.velocity"),
		HorizontalThreshold: viper.GetFloat64("mission.horizontalThreshold"),
		AltitudeThreshold:   viper.GetFloat64("mission.altitudeThreshold"),
	}
}

// GetGuidanceConfig returns the autopilot limits.
func GetGuidanceConfig() GuidanceConfig {
	return GuidanceConfig{
		CloseThreshold:   viper.GetFloat64("guidance.closeThreshold"),
		MaxPitchCommand:  viper.GetFloat64("guidance.maxPitchCommand"),
		MaxControlAngle:  viper.GetFloat64("guidance.maxControlAngle"),
		TerminalYawScale: viper.GetFloat64("guidance.terminalYawScale"),
		Autopilot:        viper.GetBool("guidance.autopilot"),
	}
}

// GetGeoConfig returns the local frame origin.
func GetGeoConfig() GeoConfig {
	return GeoConfig{
		OriginLat: viper.GetFloat64("geo.originLat"),
		OriginLon: viper.GetFloat64("geo.originLon"),
	}
}

func getVec3(prefix string) vector.Vec3 {
	return vector.Vec3{
		X: viper.GetFloat64(prefix + ".x"),
		Y: viper.GetFloat64(prefix + ".y"),
		Z: viper.GetFloat64(prefix + ".z"),
	}
}
