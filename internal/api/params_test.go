package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"liftlab/pkg/engine"
)

func TestParamsHandler_HandleGet(t *testing.T) {
	t.Run("Default params", func(t *testing.T) {
		mockSim := &mockSimulation{snap: testSnapshot()}
		handler := NewParamsHandler(mockSim)

		req := httptest.NewRequest("GET", "/api/params", nil)
		rr := httptest.NewRecorder()
		handler.HandleGet(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}

		var resp ParamsResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Weight != 575000 {
			t.Errorf("Expected default preset weight 575000, got %v", resp.Weight)
		}
		if len(resp.WingTypes) == 0 {
			t.Error("Expected wing type list to be populated")
		}
		if len(resp.Locked) != 0 {
			t.Errorf("Expected no locked params without autopilot, got %v", resp.Locked)
		}
	})

	t.Run("Locked under autopilot", func(t *testing.T) {
		snap := testSnapshot()
		snap.State.Autoland = true
		mockSim := &mockSimulation{snap: snap}
		handler := NewParamsHandler(mockSim)

		req := httptest.NewRequest("GET", "/api/params", nil)
		rr := httptest.NewRecorder()
		handler.HandleGet(rr, req)

		var resp ParamsResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		want := map[string]bool{"angleOfAttack": true, "velocity": true}
		if len(resp.Locked) != len(want) {
			t.Fatalf("Expected %d locked params, got %v", len(want), resp.Locked)
		}
		for _, name := range resp.Locked {
			if !want[name] {
				t.Errorf("Unexpected locked param %q", name)
			}
		}
	})
}

func TestParamsHandler_HandlePatch(t *testing.T) {
	t.Run("Valid patch", func(t *testing.T) {
		mockSim := &mockSimulation{snap: testSnapshot()}
		handler := NewParamsHandler(mockSim)

		req := httptest.NewRequest("PATCH", "/api/params", bytes.NewBufferString(`{"velocity": 120, "angleOfAttack": 8}`))
		rr := httptest.NewRecorder()
		handler.HandlePatch(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		if len(mockSim.cmds) != 1 {
			t.Fatalf("Expected 1 command, got %d", len(mockSim.cmds))
		}
		cmd, ok := mockSim.cmds[0].(engine.SetParamsCommand)
		if !ok {
			t.Fatalf("Expected SetParamsCommand, got %T", mockSim.cmds[0])
		}
		if cmd.Patch.Velocity == nil || *cmd.Patch.Velocity != 120 {
			t.Error("Velocity not carried in patch")
		}
		if cmd.Patch.AngleOfAttack == nil || *cmd.Patch.AngleOfAttack != 8 {
			t.Error("AngleOfAttack not carried in patch")
		}
		if cmd.Patch.Weight != nil {
			t.Error("Absent field must stay nil")
		}
	})

	t.Run("Wing type patch", func(t *testing.T) {
		mockSim := &mockSimulation{snap: testSnapshot()}
		handler := NewParamsHandler(mockSim)

		req := httptest.NewRequest("PATCH", "/api/params", bytes.NewBufferString(`{"wingType": "symmetric"}`))
		rr := httptest.NewRecorder()
		handler.HandlePatch(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		cmd := mockSim.cmds[0].(engine.SetParamsCommand)
		if cmd.Patch.WingType == nil || string(*cmd.Patch.WingType) != "symmetric" {
			t.Error("WingType not carried in patch")
		}
	})

	t.Run("Ownership conflict", func(t *testing.T) {
		mockSim := &mockSimulation{
			snap:  testSnapshot(),
			doErr: fmt.Errorf("angleOfAttack: %w", engine.ErrParamOwned),
		}
		handler := NewParamsHandler(mockSim)

		req := httptest.NewRequest("PATCH", "/api/params", bytes.NewBufferString(`{"angleOfAttack": 5}`))
		rr := httptest.NewRecorder()
		handler.HandlePatch(rr, req)

		if rr.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", rr.Code)
		}
	})

	t.Run("Validation failure", func(t *testing.T) {
		mockSim := &mockSimulation{
			snap:  testSnapshot(),
			doErr: fmt.Errorf("angleOfAttack 99 out of range"),
		}
		handler := NewParamsHandler(mockSim)

		req := httptest.NewRequest("PATCH", "/api/params", bytes.NewBufferString(`{"angleOfAttack": 99}`))
		rr := httptest.NewRecorder()
		handler.HandlePatch(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		mockSim := &mockSimulation{snap: testSnapshot()}
		handler := NewParamsHandler(mockSim)

		req := httptest.NewRequest("PATCH", "/api/params", bytes.NewBufferString("{invalid}"))
		rr := httptest.NewRecorder()
		handler.HandlePatch(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
		if len(mockSim.cmds) != 0 {
			t.Error("No command should run on a malformed body")
		}
	})
}
