package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"liftlab/pkg/engine"
	"liftlab/pkg/tracker"
)

func TestDeriveEvents(t *testing.T) {
	base := testSnapshot()

	t.Run("First snapshot emits nothing", func(t *testing.T) {
		if got := deriveEvents(nil, &base); got != nil {
			t.Errorf("Expected no events, got %v", got)
		}
	})

	t.Run("Stage change", func(t *testing.T) {
		next := base
		next.Stage = "descent"
		next.StageTitle = "Descent"

		events := deriveEvents(&base, &next)
		if len(events) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(events))
		}
		if events[0].Kind != "stage" || events[0].Message != "Descent" {
			t.Errorf("Unexpected event: %+v", events[0])
		}
	})

	t.Run("Mode engage and disengage", func(t *testing.T) {
		next := base
		next.State.AltitudeHold = true

		events := deriveEvents(&base, &next)
		if len(events) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(events))
		}
		if events[0].Kind != "mode" || events[0].Message != "altitude-hold engaged" {
			t.Errorf("Unexpected event: %+v", events[0])
		}

		events = deriveEvents(&next, &base)
		if len(events) != 1 || events[0].Message != "altitude-hold disengaged" {
			t.Errorf("Unexpected disengage event: %v", events)
		}
	})

	t.Run("Stall rising edge only", func(t *testing.T) {
		stalled := base
		stalled.StallWarning = true

		if events := deriveEvents(&base, &stalled); len(events) != 1 || events[0].Kind != "stall" {
			t.Errorf("Expected stall event, got %v", events)
		}
		// Recovery is not an event.
		if events := deriveEvents(&stalled, &base); len(events) != 0 {
			t.Errorf("Expected no event on recovery, got %v", events)
		}
	})

	t.Run("Pause and resume", func(t *testing.T) {
		paused := base
		paused.Paused = true

		events := deriveEvents(&base, &paused)
		if len(events) != 1 || events[0].Kind != "sim" || events[0].Message != "paused" {
			t.Errorf("Expected pause event, got %v", events)
		}
	})

	t.Run("Mission phase", func(t *testing.T) {
		next := base
		next.MissionPhase = "climb"

		events := deriveEvents(&base, &next)
		if len(events) != 1 || events[0].Kind != "mission" {
			t.Errorf("Expected mission event, got %v", events)
		}
	})
}

func dialStream(t *testing.T, handler *StreamHandler) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler.HandleStream))
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/stream"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("Failed to dial stream: %v", err)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) StreamFrame {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	var frame StreamFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	return frame
}

func TestStreamHandler_SnapshotFrames(t *testing.T) {
	mockSim := &mockSimulation{snap: testSnapshot()}
	mockSim.Subscribe(nil) // pre-create the feed channel

	handler := NewStreamHandler(mockSim, tracker.New(), 10*time.Millisecond)
	conn, done := dialStream(t, handler)
	defer done()

	mockSim.subCh <- testSnapshot()

	frame := readFrame(t, conn)
	if frame.Type != "snapshot" {
		t.Fatalf("Expected snapshot frame, got %q", frame.Type)
	}
	if frame.Snapshot == nil || frame.Snapshot.Seq != 42 {
		t.Errorf("Snapshot payload missing or wrong: %+v", frame.Snapshot)
	}
}

func TestStreamHandler_EventFrames(t *testing.T) {
	mockSim := &mockSimulation{snap: testSnapshot()}
	mockSim.Subscribe(nil)

	handler := NewStreamHandler(mockSim, tracker.New(), 10*time.Millisecond)
	conn, done := dialStream(t, handler)
	defer done()

	first := testSnapshot()
	mockSim.subCh <- first

	second := first
	second.Seq = 43
	second.Stage = "descent"
	second.StageTitle = "Descent"
	mockSim.subCh <- second

	// The stage change must arrive as an event frame; snapshots tick along
	// at the stream interval.
	sawEvent := false
	for i := 0; i < 4 && !sawEvent; i++ {
		frame := readFrame(t, conn)
		if frame.Type == "event" {
			sawEvent = true
			if frame.Event.Kind != "stage" || frame.Event.Message != "Descent" {
				t.Errorf("Unexpected event payload: %+v", frame.Event)
			}
		}
	}
	if !sawEvent {
		t.Error("Never saw the stage-change event frame")
	}
}
