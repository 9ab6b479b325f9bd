package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Sim      SimConfig      `yaml:"sim"`
	Request  RequestConfig  `yaml:"request"`
	Log      LogConfig      `yaml:"log"`
	Analysis AnalysisConfig `yaml:"analysis"`
	LLM      LLMConfig      `yaml:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// EngineConfig holds simulation loop settings.
type EngineConfig struct {
	// TickRateHz is the integration rate of the render loop.
	TickRateHz float64 `yaml:"tick_rate_hz"`
	// MissionTick is the fixed period of the auto-mission law.
	MissionTick Duration `yaml:"mission_tick"`
	// StreamInterval throttles snapshot publishing to websocket clients.
	StreamInterval Duration `yaml:"stream_interval"`
	// VSIWindow is the averaging window of the vertical speed indicator.
	VSIWindow Duration `yaml:"vsi_window"`
}

// SimConfig holds the initial state of a new session.
type SimConfig struct {
	Preset      string  `yaml:"preset"` // "airbus", "trainer", ...
	Zoom        float64 `yaml:"zoom"`
	HeadWind    Speed   `yaml:"headwind"`
	StartPaused bool    `yaml:"start_paused"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	LLM      LogSettings `yaml:"llm"`
	Events   LogSettings `yaml:"events"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// AnalysisConfig holds settings for the AI flight analysis.
type AnalysisConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Cooldown Duration `yaml:"cooldown"`
	CacheTTL Duration `yaml:"cache_ttl"`
	// CacheSize is the number of analysis responses kept for reuse.
	CacheSize int `yaml:"cache_size"`
	// Language is the response locale, "xx-YY".
	Language string `yaml:"language"`
	// MaxWords caps the length of a generated analysis.
	MaxWords int `yaml:"max_words"`
}

// LLMConfig holds settings for the Large Language Model providers.
type LLMConfig struct {
	// Fallback is the ordered provider chain. The first healthy provider
	// that supports the requested profile wins.
	Fallback []string `yaml:"fallback"`
	// Providers maps a provider name to its settings.
	Providers map[string]ProviderConfig `yaml:"providers"`
	// LogRequests enables prompt/response logging to the llm log.
	LogRequests bool `yaml:"log_requests"`
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	Type     string            `yaml:"type"`  // "gemini", "groq", "deepseek", "openai"
	Model    string            `yaml:"model"` // default model
	Key      string            `yaml:"key"`   // API key, env var fallback when empty
	BaseURL  string            `yaml:"base_url,omitempty"`
	Profiles map[string]string `yaml:"profiles"` // map of intent -> model
}

// keyEnvVars maps a provider type to the environment variable consulted
// when the config carries no API key.
var keyEnvVars = map[string]string{
	"gemini":   "GEMINI_API_KEY",
	"groq":     "GROQ_API_KEY",
	"deepseek": "DEEPSEEK_API_KEY",
	"openai":   "OPENAI_API_KEY",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:1903",
		},
		Engine: EngineConfig{
			TickRateHz:     60,
			MissionTick:    Duration(50 * time.Millisecond),
			StreamInterval: Duration(100 * time.Millisecond),
			VSIWindow:      Duration(3 * time.Second),
		},
		Sim: SimConfig{
			Preset:      "airbus",
			Zoom:        1.0,
			HeadWind:    Speed(0),
			StartPaused: false,
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(60 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(1 * time.Second),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
			LLM: LogSettings{
				Path:  "./logs/llm.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "./logs/events.log",
				Level: "INFO",
			},
		},
		Analysis: AnalysisConfig{
			Enabled:   true,
			Cooldown:  Duration(15 * time.Second),
			CacheTTL:  Duration(10 * time.Minute),
			CacheSize: 64,
			Language:  "en-US",
			MaxWords:  120,
		},
		LLM: LLMConfig{
			Fallback: []string{"gemini"},
			Providers: map[string]ProviderConfig{
				"gemini": {
					Type:  "gemini",
					Model: "gemini-2.5-flash-lite",
					Profiles: map[string]string{
						"analysis": "gemini-2.5-flash-lite",
						"briefing": "gemini-2.5-flash",
					},
				},
				"groq": {
					Type:  "groq",
					Model: "llama-3.3-70b-versatile",
					Profiles: map[string]string{
						"analysis": "llama-3.3-70b-versatile",
					},
				},
				"deepseek": {
					Type:  "deepseek",
					Model: "deepseek-chat",
					Profiles: map[string]string{
						"analysis": "deepseek-chat",
					},
				},
			},
			LogRequests: true,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		// If file does not exist, save defaults
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	}

	// Load API keys from env if empty (as a fallback, never saved to disk)
	for name, p := range cfg.LLM.Providers {
		if p.Key != "" {
			continue
		}
		envVar, ok := keyEnvVars[p.Type]
		if !ok {
			continue
		}
		if key := os.Getenv(envVar); key != "" {
			p.Key = key
			cfg.LLM.Providers[name] = p
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks constraints the YAML schema cannot express.
func (c *Config) Validate() error {
	if c.Engine.TickRateHz <= 0 {
		return fmt.Errorf("engine.tick_rate_hz must be positive, got %v", c.Engine.TickRateHz)
	}
	if time.Duration(c.Engine.MissionTick) <= 0 {
		return fmt.Errorf("engine.mission_tick must be positive, got %v", time.Duration(c.Engine.MissionTick))
	}
	if time.Duration(c.Engine.StreamInterval) <= 0 {
		return fmt.Errorf("engine.stream_interval must be positive, got %v", time.Duration(c.Engine.StreamInterval))
	}
	if c.Sim.HeadWind < 0 {
		return fmt.Errorf("sim.headwind must be non-negative, got %v", float64(c.Sim.HeadWind))
	}
	if !isValidLocale(c.Analysis.Language) {
		return fmt.Errorf("invalid analysis.language format %q: must be 'xx-YY' (e.g. 'en-US', 'de-DE')", c.Analysis.Language)
	}
	for _, name := range c.LLM.Fallback {
		if _, ok := c.LLM.Providers[name]; !ok {
			return fmt.Errorf("llm.fallback names %q but llm.providers does not define it", name)
		}
	}
	return nil
}

func isValidLocale(s string) bool {
	matched, _ := regexp.MatchString(`^[a-z]{2}-[A-Z]{2}$`, s)
	return matched
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# LiftLab Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Speed: m/s (meters per second), km/h, kt (knots)

`)
	data = append(header, data...)

	// Inject comments for Enum fields
	// We use regex to find the keys with indentation to ensure we place comments correctly.

	// Preset Options
	rePreset := regexp.MustCompile(`(?m)^(\s+)preset:`)
	data = rePreset.ReplaceAll(data, []byte("${1}# Options: airbus, trainer, fighter, glider, stealth\n${1}preset:"))

	// Provider Type Options
	reType := regexp.MustCompile(`(?m)^(\s+)type:`)
	data = reType.ReplaceAll(data, []byte("${1}# Options: gemini, groq, deepseek, openai\n${1}type:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write default config
	return Save(path, DefaultConfig())
}
