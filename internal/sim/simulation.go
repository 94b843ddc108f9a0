package sim

import (
	"fmt"
	"math"
)

// Simulation owns an Aircraft, the simulation clock and the recorded time
// series. Exactly one goroutine may call its methods.
type Simulation struct {
	aircraft *Aircraft
	dt       float64

	time   float64
	ticks  uint64
	series []Sample
}

// NewSimulation creates a simulation stepping aircraft by a fixed dt seconds.
func NewSimulation(aircraft *Aircraft, dt float64) (*Simulation, error) {
	if aircraft == nil {
		return nil, fmt.Errorf("%w: aircraft is required", ErrInvalidConfig)
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: dt must be positive and finite, got %v", ErrInvalidConfig, dt)
	}
	return &Simulation{aircraft: aircraft, dt: dt}, nil
}

// Step advances the vehicle by one tick, moves the clock forward and records
// the new position. It returns the new state.
func (s *Simulation) Step(in Inputs) State {
	st := s.aircraft.Step(in, s.dt)
	s.ticks++
	s.time = float64(s.ticks) * s.dt
	s.series = append(s.series, Sample{Time: s.time, Position: st.Position})
	return st
}

// State returns a copy of the current vehicle state.
func (s *Simulation) State() State { return s.aircraft.State() }

// Vehicle returns the simulated vehicle's mass properties.
func (s *Simulation) Vehicle() VehicleConfig { return s.aircraft.Vehicle() }

// Time is the simulated time in seconds.
func (s *Simulation) Time() float64 { return s.time }

// DT is the fixed integration step in seconds.
func (s *Simulation) DT() float64 { return s.dt }

// Ticks is the number of steps taken since construction or the last Reset.
func (s *Simulation) Ticks() uint64 { return s.ticks }

// Contact reports whether the last tick touched the ground.
func (s *Simulation) Contact() bool { return s.aircraft.Contact() }

// Series returns a copy of every recorded sample, oldest first.
func (s *Simulation) Series() []Sample {
	out := make([]Sample, len(s.series))
	copy(out, s.series)
	return out
}

// Latest returns the most recent sample. ok is false before the first tick.
func (s *Simulation) Latest() (Sample, bool) {
	if len(s.series) == 0 {
		return Sample{}, false
	}
	return s.series[len(s.series)-1], true
}

// Reset returns the vehicle to its initial state and clears the clock and
// the series.
func (s *Simulation) Reset() {
	s.aircraft.Reset()
	s.time = 0
	s.ticks = 0
	s.series = nil
}
