package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"liftlab/pkg/session"
)

func TestEventsHandler_HandleEvents(t *testing.T) {
	t.Run("Populated log", func(t *testing.T) {
		sessions := session.NewManager(32)
		sessions.Record("stage", "takeoff")
		sessions.Record("mode", "altitude-hold engaged")
		handler := NewEventsHandler(sessions)

		req := httptest.NewRequest("GET", "/api/events", nil)
		rr := httptest.NewRecorder()
		handler.HandleEvents(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}

		var events []session.Event
		if err := json.NewDecoder(rr.Body).Decode(&events); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(events))
		}
		if events[0].Kind != "stage" || events[0].Message != "takeoff" {
			t.Errorf("Unexpected first event: %+v", events[0])
		}
	})

	t.Run("Empty log is an array", func(t *testing.T) {
		handler := NewEventsHandler(session.NewManager(32))

		req := httptest.NewRequest("GET", "/api/events", nil)
		rr := httptest.NewRecorder()
		handler.HandleEvents(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
			t.Errorf("Expected empty array, got %q", body)
		}
	})
}
