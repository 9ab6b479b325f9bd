package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"liftlab/pkg/config"
	"liftlab/pkg/logging"
)

type mockAnalysisSettings struct {
	language string
	maxWords int
	calls    int
}

func (m *mockAnalysisSettings) UpdateSettings(language string, maxWords int) {
	m.language = language
	m.maxWords = maxWords
	m.calls++
}

func TestConfigHandler_HandleGet(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := NewConfigHandler(cfg, nil)

	req := httptest.NewRequest("GET", "/api/config", nil)
	rr := httptest.NewRecorder()
	handler.HandleGet(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp ConfigResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.TickRateHz != 60 {
		t.Errorf("Expected tick rate 60, got %v", resp.TickRateHz)
	}
	if resp.StreamIntervalMS != 100 {
		t.Errorf("Expected stream interval 100ms, got %v", resp.StreamIntervalMS)
	}
	if resp.DefaultPreset != "airbus" {
		t.Errorf("Expected default preset airbus, got %q", resp.DefaultPreset)
	}
}

func TestConfigHandler_HandlePatch(t *testing.T) {
	t.Run("Analysis settings propagate", func(t *testing.T) {
		cfg := config.DefaultConfig()
		settings := &mockAnalysisSettings{}
		handler := NewConfigHandler(cfg, settings)

		body := `{"analysis_language": "de-DE", "analysis_max_words": 80}`
		req := httptest.NewRequest("PATCH", "/api/config", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		handler.HandlePatch(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		if cfg.Analysis.Language != "de-DE" || cfg.Analysis.MaxWords != 80 {
			t.Errorf("Config not updated: %q %d", cfg.Analysis.Language, cfg.Analysis.MaxWords)
		}
		if settings.calls != 1 || settings.language != "de-DE" || settings.maxWords != 80 {
			t.Errorf("Settings not pushed to analysis service: %+v", settings)
		}
	})

	t.Run("Enable toggle", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Analysis.Enabled = true
		handler := NewConfigHandler(cfg, nil)

		req := httptest.NewRequest("PATCH", "/api/config", bytes.NewBufferString(`{"analysis_enabled": false}`))
		rr := httptest.NewRecorder()
		handler.HandlePatch(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		if handler.AnalysisEnabled() {
			t.Error("Analysis should be disabled after the patch")
		}
	})

	t.Run("Trace logging toggle", func(t *testing.T) {
		prev := logging.EnableTrace
		defer func() { logging.EnableTrace = prev }()

		cfg := config.DefaultConfig()
		handler := NewConfigHandler(cfg, nil)

		req := httptest.NewRequest("PATCH", "/api/config", bytes.NewBufferString(`{"trace_logging": true}`))
		rr := httptest.NewRecorder()
		handler.HandlePatch(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		if !logging.EnableTrace {
			t.Error("Trace logging should be enabled after the patch")
		}
	})

	t.Run("Rejects non-positive word budget", func(t *testing.T) {
		cfg := config.DefaultConfig()
		settings := &mockAnalysisSettings{}
		handler := NewConfigHandler(cfg, settings)

		req := httptest.NewRequest("PATCH", "/api/config", bytes.NewBufferString(`{"analysis_max_words": 0}`))
		rr := httptest.NewRecorder()
		handler.HandlePatch(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
		if settings.calls != 0 {
			t.Error("Rejected patch must not reach the analysis service")
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		handler := NewConfigHandler(config.DefaultConfig(), nil)

		req := httptest.NewRequest("PATCH", "/api/config", bytes.NewBufferString("{invalid}"))
		rr := httptest.NewRecorder()
		handler.HandlePatch(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
	})
}
