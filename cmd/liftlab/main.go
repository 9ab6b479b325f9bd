package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"liftlab/internal/api"
	"liftlab/internal/web"
	"liftlab/pkg/analysis"
	"liftlab/pkg/cache"
	"liftlab/pkg/config"
	"liftlab/pkg/engine"
	"liftlab/pkg/logging"
	"liftlab/pkg/probe"
	"liftlab/pkg/request"
	"liftlab/pkg/session"
	"liftlab/pkg/tracker"
	"liftlab/pkg/version"
)

const maxSessionEvents = 512

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/liftlab.yaml", "Path to the config file")
)

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// API keys live in .env next to the binary; config loading falls back
	// to the environment for empty key fields, so this must happen first.
	loadDotenv()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("LiftLab started", "version", version.Version)

	tr := tracker.New()
	sessionMgr := session.NewManager(maxSessionEvents)

	// Engine
	eng := engine.New(engine.Config{
		TickHz:          appCfg.Engine.TickRateHz,
		MissionInterval: time.Duration(appCfg.Engine.MissionTick),
		VSIWindow:       time.Duration(appCfg.Engine.VSIWindow),
		Recorder:        sessionMgr,
	})
	engineErr := make(chan error, 1)
	go func() {
		engineErr <- eng.Run(ctx)
	}()

	if err := applyInitialState(ctx, eng, &appCfg.Sim); err != nil {
		return fmt.Errorf("failed to apply initial sim settings: %w", err)
	}

	// Analysis (optional; the server runs without it)
	analysisSvc, err := initAnalysis(appCfg, tr, sessionMgr)
	if err != nil {
		return err
	}

	// Startup Probes
	probes := []probe.Probe{
		{
			Name: "Web Assets",
			Check: func(context.Context) error {
				_, err := web.DistFS.Open("dist/index.html")
				return err
			},
			Critical: true,
		},
	}
	if analysisSvc != nil {
		probes = append(probes, probe.Probe{
			Name:  "LLM Providers",
			Check: analysisSvc.HealthCheck,
			// Analysis degrades to canned text, so a dead provider is
			// not fatal.
			Critical: false,
		})
	}
	if err := probe.AnalyzeResults(probe.Run(ctx, probes)); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	return runServer(ctx, appCfg, eng, analysisSvc, tr, sessionMgr, engineErr)
}

// loadDotenv loads .env and .env.local when present. Missing files are
// fine; explicit environment always wins.
func loadDotenv() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", "file", name, "error", err)
		}
	}
}

// applyInitialState pushes the configured session start into the engine:
// preset, headwind, zoom and the paused flag.
func applyInitialState(ctx context.Context, eng *engine.Engine, sim *config.SimConfig) error {
	if sim.Preset != "" {
		if err := eng.Do(ctx, engine.ApplyPresetCommand{Name: sim.Preset}); err != nil {
			return err
		}
	}
	if hw := float64(sim.HeadWind); hw != 0 {
		if err := eng.Do(ctx, engine.SetParamsCommand{Patch: engine.ParamPatch{HeadWind: &hw}}); err != nil {
			return err
		}
	}
	if sim.Zoom > 0 && sim.Zoom != engine.DefaultZoom {
		if err := eng.Do(ctx, engine.SetZoomCommand{Factor: sim.Zoom}); err != nil {
			return err
		}
	}
	if sim.StartPaused {
		if err := eng.Do(ctx, engine.PauseCommand{}); err != nil {
			return err
		}
	}
	return nil
}

func initAnalysis(cfg *config.Config, tr *tracker.Tracker, sessionMgr *session.Manager) (*analysis.Service, error) {
	if !cfg.Analysis.Enabled {
		slog.Info("Analysis disabled by config")
		return nil, nil
	}
	if len(cfg.LLM.Fallback) == 0 {
		slog.Warn("Analysis enabled but no LLM providers configured, disabling")
		return nil, nil
	}

	reqClient := request.New(
		cache.NewLRU(256, 30*time.Minute),
		tr,
		request.ClientConfig{
			Retries:   cfg.Request.Retries,
			Timeout:   time.Duration(cfg.Request.Timeout),
			BaseDelay: time.Duration(cfg.Request.Backoff.BaseDelay),
			MaxDelay:  time.Duration(cfg.Request.Backoff.MaxDelay),
		},
	)

	logPath := ""
	if cfg.LLM.LogRequests {
		logPath = cfg.Log.LLM.Path
	}
	llmProv, err := analysis.NewProvider(cfg.LLM, logPath, reqClient, tr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	svc, err := analysis.New(llmProv, cfg.Analysis, sessionMgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analysis service: %w", err)
	}
	return svc, nil
}

func runServer(ctx context.Context, cfg *config.Config, eng *engine.Engine, analysisSvc *analysis.Service, tr *tracker.Tracker, sessionMgr *session.Manager, engineErr chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	// The config handler feeds live settings back into the analysis
	// service and gates the analysis routes.
	var analysisSettings api.AnalysisSettings
	var analyzer api.Analyzer
	if analysisSvc != nil {
		analysisSettings = analysisSvc
		analyzer = analysisSvc
	}
	configH := api.NewConfigHandler(cfg, analysisSettings)

	srv := api.NewServer(cfg.Server.Address,
		api.NewStateHandler(eng),
		api.NewParamsHandler(eng),
		api.NewModesHandler(eng),
		api.NewSimHandler(eng),
		api.NewPresetsHandler(eng),
		api.NewDashboardHandler(eng),
		api.NewAnalysisHandler(eng, analyzer, configH.AnalysisEnabled),
		api.NewStatsHandler(tr, sessionMgr, cfg.LLM.Fallback),
		api.NewEventsHandler(sessionMgr),
		configH,
		api.NewStreamHandler(eng, tr, time.Duration(cfg.Engine.StreamInterval)),
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit, engineErr)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal, engineErr chan error) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	case err := <-engineErr:
		return fmt.Errorf("engine stopped unexpectedly: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
