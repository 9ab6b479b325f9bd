package api

import (
	"context"
	"net/http"

	"liftlab/pkg/engine"
)

// Simulation is the engine surface the API needs: serialized state queries
// and commands, plus the snapshot feed for streaming.
type Simulation interface {
	GetState(ctx context.Context) (engine.Snapshot, error)
	Do(ctx context.Context, cmd engine.Command) error
	Subscribe(ctx context.Context) (<-chan engine.Snapshot, func())
}

// StateHandler serves the current simulation snapshot.
type StateHandler struct {
	sim Simulation
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(sim Simulation) *StateHandler {
	return &StateHandler{sim: sim}
}

// HandleState returns the full snapshot: state, model results, stage and
// mode flags. GET /api/state
func (h *StateHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sim.GetState(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation unavailable")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
