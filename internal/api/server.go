package api

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"liftlab/internal/web"
	"liftlab/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, state *StateHandler, params *ParamsHandler, modes *ModesHandler, sim *SimHandler, presets *PresetsHandler, dash *DashboardHandler, analysisH *AnalysisHandler, stats *StatsHandler, eventsH *EventsHandler, cfg *ConfigHandler, stream *StreamHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 1b. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Simulation State
	mux.HandleFunc("GET /api/state", state.HandleState)
	mux.HandleFunc("GET /api/params", params.HandleGet)
	mux.HandleFunc("PATCH /api/params", params.HandlePatch)

	// 2b. Autopilot Modes
	mux.HandleFunc("POST /api/modes/{mode}", modes.HandleToggle)

	// 2c. Simulation Control
	mux.HandleFunc("POST /api/sim/pause", sim.HandlePause)
	mux.HandleFunc("POST /api/sim/resume", sim.HandleResume)
	mux.HandleFunc("POST /api/sim/reset", sim.HandleReset)
	mux.HandleFunc("POST /api/sim/zoom", sim.HandleZoom)

	// 2d. Presets
	mux.HandleFunc("GET /api/presets", presets.HandleList)
	mux.HandleFunc("POST /api/presets/{name}", presets.HandleApply)

	// 2e. Dashboard Curves
	mux.HandleFunc("GET /api/dashboard/liftcurve", dash.HandleCurve)
	mux.HandleFunc("GET /api/dashboard/liftcurve.png", dash.HandleCurvePNG)

	// 2f. Analysis Endpoints
	if analysisH != nil {
		mux.HandleFunc("POST /api/analysis", analysisH.HandleAnalyze)
		mux.HandleFunc("POST /api/briefing", analysisH.HandleBriefing)
	}

	// 2g. Stats Endpoint
	mux.Handle("GET /api/stats", stats)

	// 2h. Session Events
	mux.HandleFunc("GET /api/events", eventsH.HandleEvents)

	// 2i. Config Endpoints
	mux.HandleFunc("GET /api/config", cfg.HandleGet)
	mux.HandleFunc("PATCH /api/config", cfg.HandlePatch)

	// 2j. Logs Endpoint
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 2k. Live Stream
	mux.HandleFunc("GET /api/stream", stream.HandleStream)

	// 3. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// 4. Static Frontend Serving (SPA)
	// We need to serve from the "dist" subdirectory of the embedded FS
	distFS, err := fs.Sub(web.DistFS, "dist")
	if err != nil {
		panic(fmt.Sprintf("Failed to subtree dist from embedded assets: %v", err))
	}

	spaFS := &spaFileSystem{root: http.FS(distFS)}
	mux.Handle("/", http.FileServer(spaFS))

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
