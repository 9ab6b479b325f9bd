package api

import (
	"encoding/json"
	"io"
	"net/http"

	"liftlab/pkg/engine"
	"liftlab/pkg/flight"
)

// ModesHandler toggles the autopilot modes.
type ModesHandler struct {
	sim Simulation
}

// NewModesHandler creates a ModesHandler.
func NewModesHandler(sim Simulation) *ModesHandler {
	return &ModesHandler{sim: sim}
}

// ModeRequest selects the target state. An empty body toggles.
type ModeRequest struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// ModeResponse reports the resulting three-flag state.
type ModeResponse struct {
	AltitudeHold bool                `json:"altitudeHold"`
	Autoland     bool                `json:"autoland"`
	AutoMission  bool                `json:"autoMission"`
	MissionPhase flight.MissionPhase `json:"missionPhase,omitempty"`
}

// HandleToggle flips one autopilot mode. POST /api/modes/{mode}
func (h *ModesHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	mode, err := flight.ParseMode(r.PathValue("mode"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.sim.GetState(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation unavailable")
		return
	}

	on := !snap.State.Active(mode)
	if req.Enabled != nil {
		on = *req.Enabled
	}

	if err := h.sim.Do(r.Context(), engine.SetModeCommand{Mode: mode, On: on}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err = h.sim.GetState(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation unavailable")
		return
	}

	writeJSON(w, http.StatusOK, ModeResponse{
		AltitudeHold: snap.State.AltitudeHold,
		Autoland:     snap.State.Autoland,
		AutoMission:  snap.State.AutoMission,
		MissionPhase: snap.MissionPhase,
	})
}
