package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"

	"liftlab/pkg/analysis"
	"liftlab/pkg/engine"
)

// Analyzer is the commentary surface the API needs.
type Analyzer interface {
	Analyze(ctx context.Context, snap engine.Snapshot) analysis.Result
	AnalyzeChart(ctx context.Context, snap engine.Snapshot, chartPath string) analysis.Result
	Briefing(ctx context.Context, snap engine.Snapshot) analysis.Result
}

// AnalysisHandler runs LLM commentary requests against the current
// snapshot. Returns nil when the feature is disabled so the server skips
// the routes.
type AnalysisHandler struct {
	sim      Simulation
	analyzer Analyzer
	enabled  func() bool
}

// NewAnalysisHandler creates an AnalysisHandler, or nil without an
// analyzer. enabled is consulted per request so the config toggle works
// without a restart; nil means always on.
func NewAnalysisHandler(sim Simulation, analyzer Analyzer, enabled func() bool) *AnalysisHandler {
	if analyzer == nil {
		return nil
	}
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &AnalysisHandler{sim: sim, analyzer: analyzer, enabled: enabled}
}

// AnalysisRequest selects the analysis variant.
type AnalysisRequest struct {
	// Chart grounds the analysis on the rendered lift-curve image.
	Chart bool `json:"chart,omitempty"`
}

// HandleAnalyze returns commentary on the current state. The reply always
// carries text; degraded modes are reported through the source field.
// POST /api/analysis
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !h.enabled() {
		writeError(w, http.StatusServiceUnavailable, "analysis is disabled")
		return
	}

	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.sim.GetState(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation unavailable")
		return
	}

	var res analysis.Result
	if req.Chart {
		res = h.analyzeWithChart(r.Context(), snap)
	} else {
		res = h.analyzer.Analyze(r.Context(), snap)
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleBriefing returns a pre-flight briefing for the configured
// aircraft. POST /api/briefing
func (h *AnalysisHandler) HandleBriefing(w http.ResponseWriter, r *http.Request) {
	if !h.enabled() {
		writeError(w, http.StatusServiceUnavailable, "analysis is disabled")
		return
	}

	snap, err := h.sim.GetState(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation unavailable")
		return
	}
	writeJSON(w, http.StatusOK, h.analyzer.Briefing(r.Context(), snap))
}

// analyzeWithChart renders the lift curve and runs the vision variant.
// Chart failures fall back to the text-only analysis rather than erroring.
func (h *AnalysisHandler) analyzeWithChart(ctx context.Context, snap engine.Snapshot) analysis.Result {
	path, err := WriteLiftCurvePNG(snap)
	if err != nil {
		slog.Warn("API: chart rendering failed, using text analysis", "error", err)
		return h.analyzer.Analyze(ctx, snap)
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			slog.Debug("API: failed to remove chart temp file", "path", path, "error", err)
		}
	}()

	return h.analyzer.AnalyzeChart(ctx, snap, path)
}
