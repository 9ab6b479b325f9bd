package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"liftlab/pkg/engine"
	"liftlab/pkg/flight"
	"liftlab/pkg/tracker"
)

const (
	defaultStreamInterval = 100 * time.Millisecond

	// A client that cannot take a frame within its own interval is
	// disconnected rather than allowed to stall the pump.
	streamWriteGrace = 2
)

// StreamHandler pushes snapshot and event frames over a websocket.
type StreamHandler struct {
	sim      Simulation
	tracker  *tracker.Tracker
	interval time.Duration
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a StreamHandler publishing at the given
// interval.
func NewStreamHandler(sim Simulation, t *tracker.Tracker, interval time.Duration) *StreamHandler {
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	return &StreamHandler{
		sim:      sim,
		tracker:  t,
		interval: interval,
		upgrader: websocket.Upgrader{
			// The server binds to localhost; the GUI shell and browser
			// tabs are the only expected origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// StreamFrame is one websocket message: a state snapshot at the stream
// rate, or an event the moment it happens.
type StreamFrame struct {
	Type     string           `json:"type"` // "snapshot" or "event"
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
	Event    *StreamEvent     `json:"event,omitempty"`
}

// StreamEvent mirrors the session event kinds.
type StreamEvent struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// HandleStream upgrades the connection and runs the pump until the client
// goes away. GET /api/stream
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		slog.Warn("Stream: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	client := uuid.NewString()
	slog.Info("Stream: client connected", "client", client, "remote", r.RemoteAddr)
	defer slog.Info("Stream: client disconnected", "client", client)

	snapshots, unsubscribe := h.sim.Subscribe(r.Context())
	defer unsubscribe()

	// Reader only detects close; clients send nothing.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	h.pump(client, conn, snapshots)
}

// pump forwards the latest snapshot at the stream rate and derived events
// immediately. The engine publishes at the render rate; of the frames that
// arrive between two stream ticks only the newest is sent.
func (h *StreamHandler) pump(client string, conn *websocket.Conn, snapshots <-chan engine.Snapshot) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var latest *engine.Snapshot
	var last *engine.Snapshot

	send := func(frame StreamFrame) bool {
		deadline := time.Now().Add(streamWriteGrace * h.interval)
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return false
		}
		if err := conn.WriteJSON(frame); err != nil {
			if h.tracker != nil {
				h.tracker.TrackStreamDrop("stream")
			}
			slog.Debug("Stream: client write failed, closing", "client", client, "error", err)
			return false
		}
		return true
	}

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			for _, ev := range deriveEvents(last, &snap) {
				if !send(StreamFrame{Type: "event", Event: &ev}) {
					return
				}
			}
			s := snap
			last = &s
			latest = &s

		case <-ticker.C:
			if latest == nil {
				continue
			}
			if !send(StreamFrame{Type: "snapshot", Snapshot: latest}) {
				return
			}
			latest = nil
		}
	}
}

// deriveEvents compares consecutive snapshots and emits the transitions
// the UI announces: stage changes, mode flips, mission phases, stall
// onsets and pause state.
func deriveEvents(prev, cur *engine.Snapshot) []StreamEvent {
	if prev == nil {
		return nil
	}

	var out []StreamEvent

	if cur.Stage != prev.Stage {
		out = append(out, StreamEvent{Kind: "stage", Message: cur.StageTitle})
	}

	modes := []struct {
		name string
		was  bool
		is   bool
	}{
		{string(flight.ModeAltitudeHold), prev.State.AltitudeHold, cur.State.AltitudeHold},
		{string(flight.ModeAutoland), prev.State.Autoland, cur.State.Autoland},
		{string(flight.ModeMission), prev.State.AutoMission, cur.State.AutoMission},
	}
	for _, m := range modes {
		if m.was != m.is {
			verb := "disengaged"
			if m.is {
				verb = "engaged"
			}
			out = append(out, StreamEvent{Kind: "mode", Message: m.name + " " + verb})
		}
	}

	if cur.MissionPhase != prev.MissionPhase && cur.MissionPhase != "" {
		out = append(out, StreamEvent{Kind: "mission", Message: string(cur.MissionPhase)})
	}

	if cur.StallWarning && !prev.StallWarning {
		out = append(out, StreamEvent{Kind: "stall", Message: "stall warning"})
	}

	if cur.Paused != prev.Paused {
		msg := "resumed"
		if cur.Paused {
			msg = "paused"
		}
		out = append(out, StreamEvent{Kind: "sim", Message: msg})
	}

	return out
}
