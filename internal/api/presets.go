package api

import (
	"net/http"

	"liftlab/pkg/engine"
	"liftlab/pkg/flight"
)

// PresetsHandler lists and applies the aircraft presets.
type PresetsHandler struct {
	sim Simulation
}

// NewPresetsHandler creates a PresetsHandler.
func NewPresetsHandler(sim Simulation) *PresetsHandler {
	return &PresetsHandler{sim: sim}
}

// HandleList returns all presets, default first. GET /api/presets
func (h *PresetsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, flight.Presets())
}

// HandleApply loads a named preset and returns the resulting snapshot.
// POST /api/presets/{name}
func (h *PresetsHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := h.sim.Do(r.Context(), engine.ApplyPresetCommand{Name: name}); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	snap, err := h.sim.GetState(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation unavailable")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
