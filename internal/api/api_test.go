package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-dynamics/internal/config"
	"flight-dynamics/internal/engine"
	"flight-dynamics/internal/env"
	"flight-dynamics/internal/geometry/vector"
	"flight-dynamics/internal/guidance"
	"flight-dynamics/internal/sim"
)

// testServer runs an engine over a free body at 1 km and serves the API.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	a, err := sim.NewAircraft(sim.AircraftConfig{
		Vehicle: sim.VehicleConfig{
			Name:          "test",
			Mass:          1000,
			Inertia:       vector.Vec3{X: 1000, Y: 1000, Z: 1000},
			MaxDeflection: 0.1,
		},
		Model:   sim.NoLoads,
		Gravity: env.Standard(),
		Initial: sim.State{Position: vector.Vec3{Y: 1000}},
	})
	require.NoError(t, err)
	s, err := sim.NewSimulation(a, 0.01)
	require.NoError(t, err)

	eng, err := engine.New(&config.Setup{
		Simulation: s,
		Controller: guidance.NewController(guidance.DefaultGains(), guidance.DefaultLimits()),
		Mission:    guidance.DefaultMission(),
		Geo:        config.GeoConfig{OriginLat: 32.0853, OriginLon: 34.7818},
	}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = eng.Run(ctx)
	}()

	srv := httptest.NewServer(NewServer(eng, zerolog.Nop()).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return srv
}

func getState(t *testing.T, srv *httptest.Server) engine.Snapshot {
	t.Helper()
	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st engine.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	return st
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestState(t *testing.T) {
	srv := testServer(t)
	st := getState(t, srv)
	assert.NotEmpty(t, st.RunID)
	assert.Equal(t, "cruise", st.Mode)
	assert.Equal(t, engine.StatusIdle, st.Mission)
	assert.False(t, st.Autopilot)
}

func TestCommands_RejectWrongMethod(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{
		"/command/control", "/command/autopilot", "/command/goto",
		"/command/trajectory", "/command/hold", "/command/resume", "/command/reset",
	} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/series", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCommands_BadBodies(t *testing.T) {
	srv := testServer(t)

	assert.Equal(t, http.StatusBadRequest, post(t, srv, "/command/control", "{ nope").StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv, "/command/goto", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv, "/command/trajectory", `{"waypoints": []}`).StatusCode)
}

func TestControlCommand(t *testing.T) {
	srv := testServer(t)

	resp := post(t, srv, "/command/control", `{"throttle": 0.75, "elevator": 1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ack map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.Equal(t, "accepted", ack["status"])
	assert.Equal(t, "control", ack["type"])

	require.Eventually(t, func() bool {
		st := getState(t, srv)
		return st.Inputs.Throttle == 0.75 && st.Inputs.Elevator == 0.1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGoToAndHold(t *testing.T) {
	srv := testServer(t)

	require.Equal(t, http.StatusOK, post(t, srv, "/command/goto", `{"x": 2000, "y": 500, "z": -100, "speed": 40}`).StatusCode)
	require.Eventually(t, func() bool {
		st := getState(t, srv)
		return st.Autopilot && st.Target == vector.Vec3{X: 2000, Y: 500, Z: -100}
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, post(t, srv, "/command/hold", "").StatusCode)
	require.Eventually(t, func() bool { return getState(t, srv).Held }, 2*time.Second, 10*time.Millisecond)

	tick := getState(t, srv).Tick
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, tick, getState(t, srv).Tick)

	require.Equal(t, http.StatusOK, post(t, srv, "/command/resume", "").StatusCode)
	require.Eventually(t, func() bool { return getState(t, srv).Tick > tick }, 2*time.Second, 10*time.Millisecond)
}

func TestResetCommand(t *testing.T) {
	srv := testServer(t)
	before := getState(t, srv).RunID

	require.Equal(t, http.StatusOK, post(t, srv, "/command/reset", "").StatusCode)
	require.Eventually(t, func() bool { return getState(t, srv).RunID != before }, 2*time.Second, 10*time.Millisecond)
}

func TestSeries(t *testing.T) {
	srv := testServer(t)
	require.Eventually(t, func() bool { return getState(t, srv).Tick > 3 }, 2*time.Second, 10*time.Millisecond)

	var body struct {
		Count   int          `json:"count"`
		Samples []sim.Sample `json:"samples"`
	}

	resp, err := http.Get(srv.URL + "/series")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.GreaterOrEqual(t, body.Count, 3)
	assert.Len(t, body.Samples, body.Count)

	resp, err = http.Get(srv.URL + "/series?last=1")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, 1, body.Count)
}

func TestStreamSSE(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	var sawEvent bool
	for sc.Scan() {
		line := sc.Text()
		if line == "event: state" {
			sawEvent = true
			continue
		}
		if sawEvent && strings.HasPrefix(line, "data: ") {
			var st engine.Snapshot
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &st))
			assert.NotEmpty(t, st.RunID)
			return
		}
	}
	t.Fatal("stream ended without a state event")
}

func dialWS(t *testing.T, srv *httptest.Server) *ws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads envelopes until one of type typ arrives.
func readUntil(t *testing.T, conn *ws.Conn, typ string) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ {
			return msg
		}
	}
}

func TestWebSocket_StreamsState(t *testing.T) {
	srv := testServer(t)
	conn := dialWS(t, srv)

	msg := readUntil(t, conn, MsgState)
	var st engine.Snapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &st))
	assert.NotEmpty(t, st.RunID)
}

func TestWebSocket_Commands(t *testing.T) {
	srv := testServer(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(Message{Type: MsgAutopilot, Payload: json.RawMessage(`{"enabled": true}`)}))
	ack := readUntil(t, conn, MsgAck)
	assert.JSONEq(t, `{"type": "autopilot"}`, string(ack.Payload))

	require.Eventually(t, func() bool { return getState(t, srv).Autopilot }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Message{Type: MsgControl, Payload: json.RawMessage(`{"throttle": 0.2}`)}))
	readUntil(t, conn, MsgAck)

	require.NoError(t, conn.WriteJSON(Message{Type: "warp"}))
	errMsg := readUntil(t, conn, MsgError)
	var text string
	require.NoError(t, json.Unmarshal(errMsg.Payload, &text))
	assert.Contains(t, text, "unknown message type")

	require.NoError(t, conn.WriteJSON(Message{Type: MsgControl, Payload: json.RawMessage(`"not an object"`)}))
	readUntil(t, conn, MsgError)
}
