package api

import (
	"encoding/json"
	"net/http"

	"liftlab/pkg/engine"
)

// SimHandler exposes the session-level simulation controls.
type SimHandler struct {
	sim Simulation
}

// NewSimHandler creates a SimHandler.
func NewSimHandler(sim Simulation) *SimHandler {
	return &SimHandler{sim: sim}
}

// HandlePause freezes the simulation clock. POST /api/sim/pause
func (h *SimHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, engine.PauseCommand{})
}

// HandleResume releases a pause. POST /api/sim/resume
func (h *SimHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, engine.ResumeCommand{})
}

// HandleReset restores the default session. POST /api/sim/reset
func (h *SimHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, engine.ResetCommand{})
}

// ZoomRequest carries the view zoom factor.
type ZoomRequest struct {
	Factor float64 `json:"factor"`
}

// HandleZoom adjusts the flow-rendering zoom. POST /api/sim/zoom
func (h *SimHandler) HandleZoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.run(w, r, engine.SetZoomCommand{Factor: req.Factor})
}

func (h *SimHandler) run(w http.ResponseWriter, r *http.Request, cmd engine.Command) {
	if err := h.sim.Do(r.Context(), cmd); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.sim.GetState(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation unavailable")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
