package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"flight-dynamics/internal/engine"
	"flight-dynamics/internal/sim"
)

// Message is the JSON envelope for every WebSocket frame in both
// directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message types.
const (
	MsgState     = "state"
	MsgError     = "error"
	MsgAck       = "ack"
	MsgControl   = "control"
	MsgAutopilot = "autopilot"
	MsgGoTo      = "goto"
	MsgHold      = "hold"
	MsgResume    = "resume"
	MsgReset     = "reset"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveWS streams snapshots to the client and turns inbound envelopes into
// engine commands. All writes go through one goroutine.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket connected")

	ctx := r.Context()
	states, unsub := s.eng.Subscribe(ctx)
	replies := make(chan Message, sendBuffer)
	closed := make(chan struct{})

	go s.readPump(conn, replies, closed)

	defer func() {
		unsub()
		conn.Close()
		s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket disconnected")
	}()

	for {
		var out Message
		select {
		case <-closed:
			return
		case st, ok := <-states:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "engine stopped"),
					time.Now().Add(writeWait))
				return
			}
			out, err = envelope(MsgState, st)
			if err != nil {
				s.log.Error().Err(err).Msg("encoding snapshot")
				continue
			}
		case out = <-replies:
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(out); err != nil {
			return
		}
	}
}

func (s *Server) readPump(conn *websocket.Conn, replies chan<- Message, closed chan<- struct{}) {
	defer close(closed)
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("websocket read")
			}
			return
		}

		reply := s.dispatch(msg)
		select {
		case replies <- reply:
		default:
		}
	}
}

// dispatch converts one inbound envelope into an engine command and returns
// the reply for the client.
func (s *Server) dispatch(msg Message) Message {
	now := time.Now()
	var cmd engine.Command

	switch msg.Type {
	case MsgControl:
		var in sim.Inputs
		if err := json.Unmarshal(msg.Payload, &in); err != nil {
			return errorMessage("invalid control payload")
		}
		cmd = engine.ControlCommand{At: now, Inputs: in}
	case MsgAutopilot:
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.Unmarshal(msg.Payload, &body); err != nil {
			return errorMessage("invalid autopilot payload")
		}
		cmd = engine.AutopilotCommand{At: now, Enabled: body.Enabled}
	case MsgGoTo:
		var wp engine.Waypoint
		if err := json.Unmarshal(msg.Payload, &wp); err != nil {
			return errorMessage("invalid goto payload")
		}
		cmd = engine.GoToCommand{At: now, Waypoint: wp}
	case MsgHold:
		cmd = engine.HoldCommand{At: now}
	case MsgResume:
		cmd = engine.ResumeCommand{At: now}
	case MsgReset:
		cmd = engine.ResetCommand{At: now}
	default:
		return errorMessage("unknown message type " + msg.Type)
	}

	if !s.eng.Submit(cmd) {
		return errorMessage("engine busy")
	}
	ack, _ := envelope(MsgAck, map[string]any{"type": cmd.Type()})
	return ack
}

func envelope(typ string, payload any) (Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: typ, Payload: b}, nil
}

func errorMessage(text string) Message {
	m, _ := envelope(MsgError, text)
	return m
}
