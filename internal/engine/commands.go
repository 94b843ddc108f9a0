package engine

import (
	"time"

	"flight-dynamics/internal/sim"
)

type CommandType string

const (
	CmdControl    CommandType = "control"
	CmdAutopilot  CommandType = "autopilot"
	CmdGoTo       CommandType = "goto"
	CmdTrajectory CommandType = "trajectory"
	CmdHold       CommandType = "hold"
	CmdResume     CommandType = "resume"
	CmdReset      CommandType = "reset"
)

type Command interface {
	Type() CommandType
	ReceivedAt() time.Time
}

// ControlCommand sets the manual inputs. They drive the vehicle whenever
// the autopilot is off.
type ControlCommand struct {
	At     time.Time  `json:"-"`
	Inputs sim.Inputs `json:"inputs"`
}

func (c ControlCommand) Type() CommandType     { return CmdControl }
func (c ControlCommand) ReceivedAt() time.Time { return c.At }

// AutopilotCommand engages or disengages guidance toward the current
// destination.
type AutopilotCommand struct {
	At      time.Time `json:"-"`
	Enabled bool      `json:"enabled"`
}

func (c AutopilotCommand) Type() CommandType     { return CmdAutopilot }
func (c AutopilotCommand) ReceivedAt() time.Time { return c.At }

// Waypoint is a destination given either in the local frame or, when Geo
// is set, as latitude/longitude/altitude.
type Waypoint struct {
	Geo bool `json:"geo,omitempty"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	Z float64 `json:"z,omitempty"`

	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
	Alt float64 `json:"alt,omitempty"`

	Speed float64 `json:"speed,omitempty"` // m/s, mission default when zero
}

// GoToCommand flies the autopilot to a single waypoint.
type GoToCommand struct {
	At time.Time `json:"-"`
	Waypoint
}

func (c GoToCommand) Type() CommandType     { return CmdGoTo }
func (c GoToCommand) ReceivedAt() time.Time { return c.At }

// TrajectoryCommand flies the waypoints in order, moving on each time the
// current one is reached.
type TrajectoryCommand struct {
	At        time.Time  `json:"-"`
	Waypoints []Waypoint `json:"waypoints"`
	Loop      bool       `json:"loop,omitempty"`
}

func (c TrajectoryCommand) Type() CommandType     { return CmdTrajectory }
func (c TrajectoryCommand) ReceivedAt() time.Time { return c.At }

// HoldCommand freezes the simulation clock.
type HoldCommand struct{ At time.Time }

func (c HoldCommand) Type() CommandType     { return CmdHold }
func (c HoldCommand) ReceivedAt() time.Time { return c.At }

// ResumeCommand restarts a held clock.
type ResumeCommand struct{ At time.Time }

func (c ResumeCommand) Type() CommandType     { return CmdResume }
func (c ResumeCommand) ReceivedAt() time.Time { return c.At }

// ResetCommand restores the initial state and starts a new run.
type ResetCommand struct{ At time.Time }

func (c ResetCommand) Type() CommandType     { return CmdReset }
func (c ResetCommand) ReceivedAt() time.Time { return c.At }
