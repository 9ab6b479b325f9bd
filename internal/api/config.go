package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"liftlab/pkg/config"
	"liftlab/pkg/logging"
)

// AnalysisSettings is the live-tunable surface of the analysis service.
type AnalysisSettings interface {
	UpdateSettings(language string, maxWords int)
}

// ConfigHandler serves the runtime-adjustable settings. Loop rates and
// provider credentials are fixed at startup; what can change live is the
// analysis behavior and log verbosity.
type ConfigHandler struct {
	mu       sync.Mutex
	cfg      *config.Config
	analysis AnalysisSettings
}

// NewConfigHandler creates a ConfigHandler around the live configuration.
// analysis may be nil when the feature is disabled.
func NewConfigHandler(cfg *config.Config, analysis AnalysisSettings) *ConfigHandler {
	return &ConfigHandler{cfg: cfg, analysis: analysis}
}

// ConfigResponse is the GET payload: adjustable settings plus the
// read-only values the UI displays.
type ConfigResponse struct {
	AnalysisEnabled  bool     `json:"analysis_enabled"`
	AnalysisLanguage string   `json:"analysis_language"`
	AnalysisMaxWords int      `json:"analysis_max_words"`
	TraceLogging     bool     `json:"trace_logging"`
	TickRateHz       float64  `json:"tick_rate_hz"`
	StreamIntervalMS int64    `json:"stream_interval_ms"`
	LLMFallback      []string `json:"llm_fallback"`
	DefaultPreset    string   `json:"default_preset"`
}

// ConfigRequest is the PATCH payload. Pointer fields distinguish "absent"
// from zero values.
type ConfigRequest struct {
	AnalysisEnabled  *bool   `json:"analysis_enabled,omitempty"`
	AnalysisLanguage *string `json:"analysis_language,omitempty"`
	AnalysisMaxWords *int    `json:"analysis_max_words,omitempty"`
	TraceLogging     *bool   `json:"trace_logging,omitempty"`
}

// HandleGet returns the current settings. GET /api/config
func (h *ConfigHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := h.response()
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

// HandlePatch applies a partial settings update. PATCH /api/config
func (h *ConfigHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AnalysisMaxWords != nil && *req.AnalysisMaxWords <= 0 {
		writeError(w, http.StatusBadRequest, "analysis_max_words must be positive")
		return
	}

	h.mu.Lock()
	if req.AnalysisEnabled != nil {
		h.cfg.Analysis.Enabled = *req.AnalysisEnabled
	}
	if req.AnalysisLanguage != nil {
		h.cfg.Analysis.Language = *req.AnalysisLanguage
	}
	if req.AnalysisMaxWords != nil {
		h.cfg.Analysis.MaxWords = *req.AnalysisMaxWords
	}
	if req.TraceLogging != nil {
		logging.EnableTrace = *req.TraceLogging
	}
	if h.analysis != nil && (req.AnalysisLanguage != nil || req.AnalysisMaxWords != nil) {
		h.analysis.UpdateSettings(h.cfg.Analysis.Language, h.cfg.Analysis.MaxWords)
	}
	resp := h.response()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// AnalysisEnabled reports the live toggle; the analysis routes consult it
// per request.
func (h *ConfigHandler) AnalysisEnabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cfg.Analysis.Enabled
}

func (h *ConfigHandler) response() ConfigResponse {
	return ConfigResponse{
		AnalysisEnabled:  h.cfg.Analysis.Enabled,
		AnalysisLanguage: h.cfg.Analysis.Language,
		AnalysisMaxWords: h.cfg.Analysis.MaxWords,
		TraceLogging:     logging.EnableTrace,
		TickRateHz:       h.cfg.Engine.TickRateHz,
		StreamIntervalMS: time.Duration(h.cfg.Engine.StreamInterval).Milliseconds(),
		LLMFallback:      h.cfg.LLM.Fallback,
		DefaultPreset:    h.cfg.Sim.Preset,
	}
}
