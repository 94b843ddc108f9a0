package engine

import (
	"time"

	"flight-dynamics/internal/geometry/vector"
	"flight-dynamics/internal/sim"
)

// MissionStatus is where the autopilot stands relative to its destination.
type MissionStatus string

const (
	StatusIdle    MissionStatus = "idle"
	StatusEnroute MissionStatus = "enroute"
	StatusArrived MissionStatus = "arrived"
)

// Snapshot is one published frame of vehicle telemetry.
type Snapshot struct {
	RunID string  `json:"runId"`
	Tick  uint64  `json:"tick"`
	Time  float64 `json:"time"` // simulated seconds

	Position vector.Vec3 `json:"position"`
	Lat      float64     `json:"lat"`
	Lon      float64     `json:"lon"`
	Alt      float64     `json:"alt"` // meters

	Orientation     vector.Quat `json:"orientation"`
	VelocityBody    vector.Vec3 `json:"velocityBody"`
	AngularVelocity vector.Vec3 `json:"angularVelocity"`
	VelocityEarth   vector.Vec3 `json:"velocityEarth"`

	Airspeed      float64 `json:"airspeed"`
	AngleOfAttack float64 `json:"angleOfAttack"` // radians

	PitchDeg   float64 `json:"pitchDeg"`
	YawDeg     float64 `json:"yawDeg"`
	RollDeg    float64 `json:"rollDeg"`
	HeadingDeg float64 `json:"headingDeg"`
	TrackDeg   float64 `json:"trackDeg"`

	Inputs    sim.Inputs    `json:"inputs"`
	Autopilot bool          `json:"autopilot"`
	Mode      string        `json:"mode"`
	Mission   MissionStatus `json:"mission"`
	Held      bool          `json:"held,omitempty"`

	Target      vector.Vec3 `json:"target"`
	Distance    float64     `json:"distance"` // horizontal, meters
	TargetIndex int         `json:"targetIndex,omitempty"`

	Warning string    `json:"warning,omitempty"`
	TS      time.Time `json:"ts"`
}
