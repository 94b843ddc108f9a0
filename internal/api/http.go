// Package api exposes the engine over HTTP: JSON commands, state and series
// queries, an SSE telemetry stream and a WebSocket channel.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"flight-dynamics/internal/engine"
	"flight-dynamics/internal/sim"
)

type Server struct {
	eng *engine.Engine
	mux *http.ServeMux
	log zerolog.Logger
}

func NewServer(eng *engine.Engine, log zerolog.Logger) *Server {
	s := &Server{
		eng: eng,
		mux: http.NewServeMux(),
		log: log.With().Str("component", "api").Logger(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.health)
	s.mux.HandleFunc("/state", s.state)
	s.mux.HandleFunc("/series", s.series)

	s.mux.HandleFunc("/command/control", s.controlCmd)
	s.mux.HandleFunc("/command/autopilot", s.autopilotCmd)
	s.mux.HandleFunc("/command/goto", s.gotoCmd)
	s.mux.HandleFunc("/command/trajectory", s.trajectoryCmd)

	s.mux.HandleFunc("/command/hold", s.simpleCmd(func(at time.Time) engine.Command { return engine.HoldCommand{At: at} }))
	s.mux.HandleFunc("/command/resume", s.simpleCmd(func(at time.Time) engine.Command { return engine.ResumeCommand{At: at} }))
	s.mux.HandleFunc("/command/reset", s.simpleCmd(func(at time.Time) engine.Command { return engine.ResetCommand{At: at} }))

	s.mux.HandleFunc("/stream", s.streamSSE)
	s.mux.HandleFunc("/ws", s.serveWS)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	st, err := s.eng.GetState(ctx)
	if err != nil {
		s.engineError(w, err)
		return
	}
	writeJSON(w, st)
}

func (s *Server) series(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	last := r.URL.Query().Get("last") == "1"
	samples, err := s.eng.Series(ctx, last)
	if err != nil {
		s.engineError(w, err)
		return
	}
	if samples == nil {
		samples = []sim.Sample{}
	}
	writeJSON(w, map[string]any{"count": len(samples), "samples": samples})
}

func (s *Server) controlCmd(w http.ResponseWriter, r *http.Request) {
	var in sim.Inputs
	if !decodePost(w, r, &in) {
		return
	}
	s.submit(w, engine.ControlCommand{At: time.Now(), Inputs: in})
}

func (s *Server) autopilotCmd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if !decodePost(w, r, &body) {
		return
	}
	s.submit(w, engine.AutopilotCommand{At: time.Now(), Enabled: body.Enabled})
}

func (s *Server) gotoCmd(w http.ResponseWriter, r *http.Request) {
	var wp engine.Waypoint
	if !decodePost(w, r, &wp) {
		return
	}
	s.submit(w, engine.GoToCommand{At: time.Now(), Waypoint: wp})
}

func (s *Server) trajectoryCmd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Waypoints []engine.Waypoint `json:"waypoints"`
		Loop      bool              `json:"loop,omitempty"`
	}
	if !decodePost(w, r, &body) {
		return
	}
	if len(body.Waypoints) == 0 {
		http.Error(w, "waypoints required", http.StatusBadRequest)
		return
	}

	s.submit(w, engine.TrajectoryCommand{
		At:        time.Now(),
		Waypoints: body.Waypoints,
		Loop:      body.Loop,
	})
}

func (s *Server) simpleCmd(build func(time.Time) engine.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		s.submit(w, build(time.Now()))
	}
}

func (s *Server) submit(w http.ResponseWriter, cmd engine.Command) {
	if !s.eng.Submit(cmd) {
		http.Error(w, "engine busy", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{"status": "accepted", "type": cmd.Type()})
}

func (s *Server) engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrStopped):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusRequestTimeout)
	}
}

func (s *Server) streamSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	ch, unsub := s.eng.Subscribe(ctx)
	defer unsub()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-ch:
			if !ok {
				return
			}
			b, err := json.Marshal(st)
			if err != nil {
				s.log.Error().Err(err).Msg("encoding snapshot")
				continue
			}
			fmt.Fprintf(w, "event: state\n")
			fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
		}
	}
}

// decodePost rejects non-POST requests and decodes the JSON body into v.
func decodePost(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
