package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"liftlab/pkg/engine"
	"liftlab/pkg/flight"
)

func postMode(t *testing.T, handler *ModesHandler, mode, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body == "" {
		buf = bytes.NewBuffer(nil)
	} else {
		buf = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest("POST", "/api/modes/"+mode, buf)
	req.SetPathValue("mode", mode)
	rr := httptest.NewRecorder()
	handler.HandleToggle(rr, req)
	return rr
}

func TestModesHandler_HandleToggle(t *testing.T) {
	t.Run("Empty body toggles on", func(t *testing.T) {
		mockSim := &mockSimulation{snap: testSnapshot()}
		handler := NewModesHandler(mockSim)

		rr := postMode(t, handler, "altitude-hold", "")

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		cmd, ok := mockSim.cmds[0].(engine.SetModeCommand)
		if !ok {
			t.Fatalf("Expected SetModeCommand, got %T", mockSim.cmds[0])
		}
		if cmd.Mode != flight.ModeAltitudeHold || !cmd.On {
			t.Errorf("Expected altitude-hold on, got %v on=%v", cmd.Mode, cmd.On)
		}

		var resp ModeResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !resp.AltitudeHold {
			t.Error("Response should report altitude hold engaged")
		}
	})

	t.Run("Empty body toggles off", func(t *testing.T) {
		snap := testSnapshot()
		snap.State.AltitudeHold = true
		mockSim := &mockSimulation{snap: snap}
		handler := NewModesHandler(mockSim)

		rr := postMode(t, handler, "altitude-hold", "")

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		cmd := mockSim.cmds[0].(engine.SetModeCommand)
		if cmd.On {
			t.Error("Toggle on an engaged mode should disengage it")
		}
	})

	t.Run("Explicit enabled", func(t *testing.T) {
		snap := testSnapshot()
		snap.State.AutoMission = true
		mockSim := &mockSimulation{snap: snap}
		handler := NewModesHandler(mockSim)

		// Already on; explicit true must not toggle it off.
		rr := postMode(t, handler, "mission", `{"enabled": true}`)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		cmd := mockSim.cmds[0].(engine.SetModeCommand)
		if cmd.Mode != flight.ModeMission || !cmd.On {
			t.Errorf("Expected mission on, got %v on=%v", cmd.Mode, cmd.On)
		}
	})

	t.Run("Unknown mode", func(t *testing.T) {
		mockSim := &mockSimulation{snap: testSnapshot()}
		handler := NewModesHandler(mockSim)

		rr := postMode(t, handler, "hover", "")

		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rr.Code)
		}
		if len(mockSim.cmds) != 0 {
			t.Error("No command should run for an unknown mode")
		}
	})

	t.Run("Engine rejects", func(t *testing.T) {
		mockSim := &mockSimulation{
			snap:  testSnapshot(),
			doErr: errors.New("autoland requires the aircraft to be flying or above the surface"),
		}
		handler := NewModesHandler(mockSim)

		rr := postMode(t, handler, "autoland", "")

		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		mockSim := &mockSimulation{snap: testSnapshot()}
		handler := NewModesHandler(mockSim)

		rr := postMode(t, handler, "mission", "{invalid}")

		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
	})
}
