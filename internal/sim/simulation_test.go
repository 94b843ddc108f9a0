package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-dynamics/internal/env"
	"flight-dynamics/internal/geometry/vector"
)

func newTestSimulation(t *testing.T, dt float64) *Simulation {
	t.Helper()
	a := newTestAircraft(t, AircraftConfig{
		Gravity: env.Standard(),
		Ground:  env.Ground{Level: -1e6},
		Initial: State{Position: vector.Vec3{Y: 500}, VelocityBody: vector.Vec3{X: 30}},
	})
	s, err := NewSimulation(a, dt)
	require.NoError(t, err)
	return s
}

func TestNewSimulationValidates(t *testing.T) {
	a := newTestAircraft(t, AircraftConfig{})

	for _, dt := range []float64{0, -0.01} {
		_, err := NewSimulation(a, dt)
		assert.ErrorIs(t, err, ErrInvalidConfig, "dt=%v", dt)
	}
	_, err := NewSimulation(nil, 0.01)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSimulationRecordsSeries(t *testing.T) {
	s := newTestSimulation(t, 0.05)

	_, ok := s.Latest()
	assert.False(t, ok)
	assert.Empty(t, s.Series())

	for i := 0; i < 40; i++ {
		st := s.Step(Inputs{})
		latest, ok := s.Latest()
		require.True(t, ok)
		assert.Equal(t, st.Position, latest.Position)
		assert.Equal(t, s.Time(), latest.Time)
	}

	series := s.Series()
	require.Len(t, series, 40)
	assert.Equal(t, uint64(40), s.Ticks())
	assert.InDelta(t, 2.0, s.Time(), 1e-12)
	for i := 1; i < len(series); i++ {
		assert.Greater(t, series[i].Time, series[i-1].Time)
		assert.InDelta(t, float64(i+1)*0.05, series[i].Time, 1e-12)
	}
	assert.Greater(t, series[39].Position.X, series[0].Position.X)
}

func TestSeriesIsACopy(t *testing.T) {
	s := newTestSimulation(t, 0.01)
	s.Step(Inputs{})

	series := s.Series()
	series[0].Time = 99

	latest, _ := s.Latest()
	assert.InDelta(t, 0.01, latest.Time, 1e-12)
}

func TestSimulationReset(t *testing.T) {
	s := newTestSimulation(t, 0.01)
	initial := s.State()
	for i := 0; i < 5; i++ {
		s.Step(Inputs{Throttle: 1})
	}

	s.Reset()
	assert.Equal(t, 0.0, s.Time())
	assert.Equal(t, uint64(0), s.Ticks())
	assert.Empty(t, s.Series())
	assert.Equal(t, initial, s.State())
	assert.Equal(t, 0.01, s.DT())
}
