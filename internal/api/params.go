package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"liftlab/pkg/aero"
	"liftlab/pkg/engine"
)

// ParamsHandler reads and patches the user-adjustable aircraft parameters.
type ParamsHandler struct {
	sim Simulation
}

// NewParamsHandler creates a ParamsHandler.
func NewParamsHandler(sim Simulation) *ParamsHandler {
	return &ParamsHandler{sim: sim}
}

// ParamsResponse is the GET payload: the adjustable parameters plus which
// of them are currently owned by an autopilot mode.
type ParamsResponse struct {
	Weight        float64       `json:"weight"`
	WingSpan      float64       `json:"wingSpan"`
	ChordLength   float64       `json:"chordLength"`
	Velocity      float64       `json:"velocity"`
	HeadWind      float64       `json:"headWind"`
	AngleOfAttack float64       `json:"angleOfAttack"`
	WingType      aero.WingType `json:"wingType"`
	WingTypes     []string      `json:"wingTypes"`
	Locked        []string      `json:"locked"`
}

// ParamsRequest is the PATCH payload. Pointer fields distinguish "absent"
// from zero values.
type ParamsRequest struct {
	Weight        *float64 `json:"weight,omitempty"`
	WingSpan      *float64 `json:"wingSpan,omitempty"`
	ChordLength   *float64 `json:"chordLength,omitempty"`
	Velocity      *float64 `json:"velocity,omitempty"`
	HeadWind      *float64 `json:"headWind,omitempty"`
	AngleOfAttack *float64 `json:"angleOfAttack,omitempty"`
	WingType      *string  `json:"wingType,omitempty"`
}

// HandleGet returns the current parameters. GET /api/params
func (h *ParamsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sim.GetState(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation unavailable")
		return
	}

	st := snap.State
	wingTypes := make([]string, 0, len(aero.WingTypes()))
	for _, wt := range aero.WingTypes() {
		wingTypes = append(wingTypes, string(wt))
	}

	var locked []string
	if st.AltitudeHold || st.Autoland || st.AutoMission {
		locked = append(locked, "angleOfAttack")
	}
	if st.Autoland || st.AutoMission {
		locked = append(locked, "velocity")
	}

	writeJSON(w, http.StatusOK, ParamsResponse{
		Weight:        st.Weight,
		WingSpan:      st.WingSpan,
		ChordLength:   st.ChordLength,
		Velocity:      st.Velocity,
		HeadWind:      st.HeadWind,
		AngleOfAttack: st.AngleOfAttack,
		WingType:      st.WingType,
		WingTypes:     wingTypes,
		Locked:        locked,
	})
}

// HandlePatch applies a partial parameter update. Validation failures map
// to 400, autopilot ownership conflicts to 409, and a rejected patch never
// half-applies. PATCH /api/params
func (h *ParamsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	var req ParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := engine.ParamPatch{
		Weight:        req.Weight,
		WingSpan:      req.WingSpan,
		ChordLength:   req.ChordLength,
		Velocity:      req.Velocity,
		HeadWind:      req.HeadWind,
		AngleOfAttack: req.AngleOfAttack,
	}
	if req.WingType != nil {
		wt := aero.WingType(*req.WingType)
		patch.WingType = &wt
	}

	if err := h.sim.Do(r.Context(), engine.SetParamsCommand{Patch: patch}); err != nil {
		if errors.Is(err, engine.ErrParamOwned) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
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
