// Package guidance flies a vehicle toward a destination with four PID
// loops: altitude to pitch, pitch attitude, yaw toward the target and speed
// to throttle. It knows nothing about force models; the commands it produces
// drive every pitch and yaw effector at once.
package guidance

import (
	"math"

	"flight-dynamics/internal/geometry/frame"
	"flight-dynamics/internal/sim"
)

// Mode is the controller's guidance phase.
type Mode int

const (
	// Cruise flies toward the target holding its altitude and speed.
	Cruise Mode = iota
	// Terminal levels off and brings the vehicle to rest near the target.
	Terminal
)

func (m Mode) String() string {
	switch m {
	case Cruise:
		return "cruise"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Gains holds the four loop tunings.
type Gains struct {
	Altitude PID
	Pitch    PID
	Yaw      PID
	Speed    PID
}

// DefaultGains returns a conservative tuning with an integral limit of 1000.
func DefaultGains() Gains {
	return Gains{
		Altitude: *NewPID(0.1, 0.0001, 0.005, 1000),
		Pitch:    *NewPID(0.15, 0.0001, 0.05, 1000),
		Yaw:      *NewPID(0.15, 0.0001, 0.05, 1000),
		Speed:    *NewPID(0.05, 0.0001, 0.01, 1000),
	}
}

// Limits bounds the controller's authority.
type Limits struct {
	// CloseThreshold is the horizontal distance, m, below which the
	// controller switches to Terminal
	CloseThreshold float64
	// MaxPitchCommand bounds the desired pitch from the altitude loop, rad
	MaxPitchCommand float64
	// MaxControlAngle bounds the pitch and yaw effector commands, rad
	MaxControlAngle float64
	// TerminalYawScale scales the yaw error in Terminal
	TerminalYawScale float64
}

// DefaultLimits returns the standard authority limits.
func DefaultLimits() Limits {
	return Limits{
		CloseThreshold:   10,
		MaxPitchCommand:  0.1,
		MaxControlAngle:  0.1,
		TerminalYawScale: 0.1,
	}
}

// Controller is the autopilot. It is not safe for concurrent use.
type Controller struct {
	altitude PID
	pitch    PID
	yaw      PID
	speed    PID

	limits Limits
	mode   Mode
}

// NewController builds a controller; each loop starts from a clean history.
func NewController(g Gains, l Limits) *Controller {
	c := &Controller{
		altitude: g.Altitude,
		pitch:    g.Pitch,
		yaw:      g.Yaw,
		speed:    g.Speed,
		limits:   l,
	}
	c.Reset()
	return c
}

// Mode returns the phase chosen by the last Update.
func (c *Controller) Mode() Mode { return c.mode }

// Limits returns the controller's authority limits.
func (c *Controller) Limits() Limits { return c.limits }

// Reset clears every loop and returns to Cruise.
func (c *Controller) Reset() {
	c.altitude.Reset()
	c.pitch.Reset()
	c.yaw.Reset()
	c.speed.Reset()
	c.mode = Cruise
}

// Update produces the commands for the next tick. dt is the time since the
// previous call.
func (c *Controller) Update(s sim.State, dest Destination, dt float64) sim.Inputs {
	pos := s.Position
	dist := frame.HorizontalDistance(pos, dest.Position)
	pitch, yaw, _ := frame.Attitude(s.Orientation)
	speed := s.VelocityEarth().Norm()

	yawErr := WrapAngle(frame.BearingTo(pos, dest.Position) - yaw)

	// the altitude loop runs in both modes so its history is current when
	// Cruise resumes
	altErr := frame.Altitude(dest.Position) - frame.Altitude(pos)
	altCmd := c.altitude.Update(altErr, dt)

	var desiredPitch, targetSpeed float64
	if dist < c.limits.CloseThreshold {
		if c.mode != Terminal {
			// integral built up while cruising must not hold the throttle open
			c.speed.Reset()
		}
		c.mode = Terminal
		yawErr *= c.limits.TerminalYawScale
	} else {
		c.mode = Cruise
		desiredPitch = clampAbs(altCmd, c.limits.MaxPitchCommand)
		targetSpeed = dest.TargetSpeed()
	}

	pitchCmd := clampAbs(c.pitch.Update(desiredPitch-pitch, dt), c.limits.MaxControlAngle)
	yawCmd := clampAbs(c.yaw.Update(yawErr, dt), c.limits.MaxControlAngle)
	throttle := math.Max(0, math.Min(1, c.speed.Update(targetSpeed-speed, dt)))
	if c.mode == Terminal {
		throttle = 0
	}

	return sim.Inputs{
		Elevator:     pitchCmd,
		ThrustPitch:  pitchCmd,
		GridFinPitch: pitchCmd,
		Rudder:       yawCmd,
		ThrustYaw:    yawCmd,
		GridFinYaw:   yawCmd,
		Throttle:     throttle,
	}
}

// WrapAngle maps a into (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

func clampAbs(x, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, x))
}
