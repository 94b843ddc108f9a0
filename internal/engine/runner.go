package engine

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"flight-dynamics/internal/config"
	"flight-dynamics/internal/geometry/frame"
	"flight-dynamics/internal/geometry/vector"
	"flight-dynamics/internal/guidance"
	"flight-dynamics/internal/sim"
)

const warnGroundContact = "ground contact"

// runner is the state owned by the engine goroutine. It is not safe for
// concurrent use.
type runner struct {
	sim  *sim.Simulation
	ctrl *guidance.Controller
	geo  GeoRef
	log  zerolog.Logger
	mt   *metrics

	runID uuid.UUID

	initialMission   guidance.Mission
	initialAutopilot bool

	mission   guidance.Mission
	autopilot bool
	status    MissionStatus
	held      bool

	manual sim.Inputs
	last   sim.Inputs

	traj     []Waypoint
	trajIdx  int
	trajLoop bool

	warning string
}

func newRunner(setup *config.Setup, log zerolog.Logger, mt *metrics) *runner {
	r := &runner{
		sim:              setup.Simulation,
		ctrl:             setup.Controller,
		geo:              NewGeoRef(setup.Geo.OriginLat, setup.Geo.OriginLon),
		log:              log,
		mt:               mt,
		initialMission:   setup.Mission,
		initialAutopilot: setup.Autopilot,
	}
	r.restart()
	return r
}

// restart puts the run back to its configured starting point under a new
// run ID.
func (r *runner) restart() {
	r.runID = uuid.New()
	r.mission = r.initialMission
	r.autopilot = r.initialAutopilot
	r.status = StatusIdle
	if r.autopilot {
		r.status = StatusEnroute
	}
	r.held = false
	r.manual = sim.Inputs{}
	r.last = sim.Inputs{}
	r.traj = nil
	r.trajIdx = 0
	r.trajLoop = false
	r.warning = ""
	r.ctrl.Reset()
}

func (r *runner) handle(cmd Command) {
	r.log.Debug().Str("command", string(cmd.Type())).Msg("command received")

	switch c := cmd.(type) {
	case ControlCommand:
		r.manual = c.Inputs

	case AutopilotCommand:
		r.setAutopilot(c.Enabled)

	case GoToCommand:
		r.traj = nil
		r.trajIdx = 0
		r.trajLoop = false
		r.flyTo(c.Waypoint)

	case TrajectoryCommand:
		if len(c.Waypoints) == 0 {
			r.log.Warn().Msg("ignoring trajectory without waypoints")
			return
		}
		r.traj = append([]Waypoint(nil), c.Waypoints...)
		r.trajIdx = 0
		r.trajLoop = c.Loop
		r.flyTo(r.traj[0])

	case HoldCommand:
		r.held = true

	case ResumeCommand:
		r.held = false

	case ResetCommand:
		r.sim.Reset()
		r.restart()
		r.log.Info().Str("runId", r.runID.String()).Msg("simulation reset")
	}
}

func (r *runner) setAutopilot(enabled bool) {
	if enabled == r.autopilot {
		return
	}
	r.autopilot = enabled
	r.ctrl.Reset()
	switch {
	case enabled:
		r.status = StatusEnroute
	case r.status != StatusArrived:
		r.status = StatusIdle
	}
	r.log.Info().Bool("enabled", enabled).Msg("autopilot toggled")
}

// flyTo points the mission at wp and engages the autopilot.
func (r *runner) flyTo(wp Waypoint) {
	r.mission.Destination = r.destination(wp)
	r.autopilot = true
	r.status = StatusEnroute
	r.ctrl.Reset()
	r.log.Info().
		Float64("x", r.mission.Destination.Position.X).
		Float64("y", r.mission.Destination.Position.Y).
		Float64("z", r.mission.Destination.Position.Z).
		Int("targetIndex", r.trajIdx).
		Msg("destination set")
}

func (r *runner) destination(wp Waypoint) guidance.Destination {
	pos := r.geo.GeoToLocal(wp.Lat, wp.Lon, wp.Alt)
	if !wp.Geo {
		pos.X, pos.Y, pos.Z = wp.X, wp.Y, wp.Z
	}
	speed := wp.Speed
	if speed <= 0 {
		speed = r.initialMission.Destination.TargetSpeed()
	}
	dir := frame.Horizontal(pos.Sub(r.sim.State().Position)).NormalizeSafe(1e-9)
	if dir == (vector.Vec3{}) {
		dir = vector.Vec3{X: 1}
	}
	return guidance.Destination{Position: pos, Velocity: dir.Mul(speed)}
}

// tick advances the simulation by one step unless held. wallDt is the real
// time since the previous tick and paces the guidance loops.
func (r *runner) tick(wallDt float64, now time.Time) Snapshot {
	if r.held {
		return r.snapshot(now)
	}

	in := r.manual
	if r.autopilot {
		in = r.ctrl.Update(r.sim.State(), r.mission.Destination, wallDt)
	}

	start := time.Now()
	st := r.sim.Step(in)
	r.last = in.Bounded(r.sim.Vehicle().MaxDeflection)

	contact := r.sim.Contact()
	r.mt.step(time.Since(start), contact)

	r.warning = ""
	if contact {
		r.warning = warnGroundContact
	}
	if !st.IsFinite() {
		r.log.Error().Uint64("tick", r.sim.Ticks()).Msg("state is no longer finite")
	}

	if r.autopilot && r.mission.Arrived(st) {
		r.arrive()
	}

	return r.snapshot(now)
}

// arrive moves to the next waypoint or ends the mission.
func (r *runner) arrive() {
	r.mt.arrived()

	if len(r.traj) > 0 {
		next := r.trajIdx + 1
		if next >= len(r.traj) && r.trajLoop {
			next = 0
		}
		if next < len(r.traj) {
			r.trajIdx = next
			r.flyTo(r.traj[next])
			return
		}
	}

	r.autopilot = false
	r.manual.Throttle = 0
	r.status = StatusArrived
	r.log.Info().
		Float64("time", r.sim.Time()).
		Float64("distance", r.mission.HorizontalDistance(r.sim.State())).
		Msg("destination reached, autopilot disengaged")
}

func (r *runner) snapshot(now time.Time) Snapshot {
	st := r.sim.State()
	lat, lon, alt := r.geo.LocalToGeo(st.Position)
	pitch, yaw, roll := frame.Attitude(st.Orientation)
	vEarth := st.VelocityEarth()

	return Snapshot{
		RunID: r.runID.String(),
		Tick:  r.sim.Ticks(),
		Time:  r.sim.Time(),

		Position: st.Position,
		Lat:      lat,
		Lon:      lon,
		Alt:      alt,

		Orientation:     st.Orientation,
		VelocityBody:    st.VelocityBody,
		AngularVelocity: st.AngularVelocityBody,
		VelocityEarth:   vEarth,

		Airspeed:      st.Airspeed(),
		AngleOfAttack: st.AngleOfAttack(),

		PitchDeg:   degrees(pitch),
		YawDeg:     degrees(yaw),
		RollDeg:    degrees(roll),
		HeadingDeg: frame.Heading(st.Orientation),
		TrackDeg:   TrackDeg(vEarth),

		Inputs:    r.last,
		Autopilot: r.autopilot,
		Mode:      r.ctrl.Mode().String(),
		Mission:   r.status,
		Held:      r.held,

		Target:      r.mission.Destination.Position,
		Distance:    r.mission.HorizontalDistance(st),
		TargetIndex: r.trajIdx,

		Warning: r.warning,
		TS:      now,
	}
}

func degrees(rad float64) float64 { return rad * 180.0 / math.Pi }
