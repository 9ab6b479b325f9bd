// Package analysis turns simulation snapshots into LLM commentary. It owns
// the prompt templates, the provider chain built from configuration, reply
// sanitation and caching. The service never surfaces provider errors to
// callers: a failed generation degrades to a static message so the
// commentary panel always has something to show.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"liftlab/pkg/config"
	"liftlab/pkg/engine"
	"liftlab/pkg/flight"
	"liftlab/pkg/llm"
	"liftlab/pkg/llm/prompts"
	"liftlab/pkg/session"
)

// Profile names passed to the provider's generation calls; each selects
// the model settings configured for that kind of request.
const (
	profileAnalysis = "analysis"
	profileBriefing = "briefing"
)

// Result sources, reported to the UI so it can style cached and degraded
// replies differently.
const (
	SourceLLM      = "llm"
	SourceCache    = "cache"
	SourceFallback = "fallback"
	SourceCooldown = "cooldown"
)

const (
	fallbackText = "Analysis is unavailable right now. The instruments still tell the story: compare the lift readout against the weight force, and watch the required takeoff speed."
	cooldownText = "The analyst is still thinking about the last request. Give it a few seconds and ask again."

	// Replies below this word count are treated as a failed generation.
	minReplyWords = 3

	// Briefings run longer than analyses.
	briefingWordFactor = 3
)

// Result is a finished commentary with its provenance.
type Result struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Service renders prompts from snapshots and runs them through the
// provider chain. Safe for concurrent use.
type Service struct {
	provider llm.Provider
	prompts  *prompts.Manager
	cfg      config.AnalysisConfig
	events   *session.Manager
	cache    *expirable.LRU[string, string]

	mu       sync.Mutex
	lastCall time.Time

	now func() time.Time
}

// New creates the analysis service on top of an already-built provider
// chain. events may be nil; replies are then not recorded as session
// events.
func New(provider llm.Provider, cfg config.AnalysisConfig, events *session.Manager) (*Service, error) {
	pm, err := prompts.NewManager(templatesFS())
	if err != nil {
		return nil, fmt.Errorf("loading analysis templates: %w", err)
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = 64
	}

	return &Service{
		provider: provider,
		prompts:  pm,
		cfg:      cfg,
		events:   events,
		cache:    expirable.NewLRU[string, string](size, nil, time.Duration(cfg.CacheTTL)),
		now:      time.Now,
	}, nil
}

// Analyze returns commentary on the snapshot. Nearby states share a cache
// entry through the rounded fingerprint, so nudging a slider does not buy
// a fresh generation. Provider failures degrade to the static fallback.
func (s *Service) Analyze(ctx context.Context, snap engine.Snapshot) Result {
	key := fingerprint(snap)
	if text, ok := s.cache.Get(key); ok {
		return Result{Text: text, Source: SourceCache}
	}

	if !s.takeSlot() {
		return Result{Text: cooldownText, Source: SourceCooldown}
	}

	prompt, err := s.prompts.Render("analysis.tmpl", s.promptData(snap))
	if err != nil {
		return s.degrade("analysis prompt", err)
	}

	reply, err := s.provider.GenerateText(ctx, profileAnalysis, prompt)
	if err != nil {
		return s.degrade("analysis generation", err)
	}

	text, err := s.polish(reply)
	if err != nil {
		return s.degrade("analysis reply", err)
	}

	s.cache.Add(key, text)
	s.record("analysis", snap)
	return Result{Text: text, Source: SourceLLM}
}

// AnalyzeChart is Analyze grounded on the rendered lift-curve chart: the
// model reads the plot image alongside the telemetry. Cached separately
// from the text-only analysis.
func (s *Service) AnalyzeChart(ctx context.Context, snap engine.Snapshot, chartPath string) Result {
	key := "chart|" + fingerprint(snap)
	if text, ok := s.cache.Get(key); ok {
		return Result{Text: text, Source: SourceCache}
	}

	if !s.takeSlot() {
		return Result{Text: cooldownText, Source: SourceCooldown}
	}

	prompt, err := s.prompts.Render("analysis_chart.tmpl", s.promptData(snap))
	if err != nil {
		return s.degrade("chart analysis prompt", err)
	}

	reply, err := s.provider.GenerateImageText(ctx, profileAnalysis, prompt, chartPath)
	if err != nil {
		return s.degrade("chart analysis generation", err)
	}

	text, err := s.polish(reply)
	if err != nil {
		return s.degrade("chart analysis reply", err)
	}

	s.cache.Add(key, text)
	s.record("analysis", snap)
	return Result{Text: text, Source: SourceLLM}
}

// Briefing returns a pre-flight briefing for the current configuration.
// Briefings are deliberately not cached: the prompt rolls its own variety
// on each render. The shared cooldown still applies.
func (s *Service) Briefing(ctx context.Context, snap engine.Snapshot) Result {
	if !s.takeSlot() {
		return Result{Text: cooldownText, Source: SourceCooldown}
	}

	data := s.promptData(snap)
	data["MaxWords"] = s.maxWords() * briefingWordFactor

	prompt, err := s.prompts.Render("briefing.tmpl", data)
	if err != nil {
		return s.degrade("briefing prompt", err)
	}

	reply, err := s.provider.GenerateText(ctx, profileBriefing, prompt)
	if err != nil {
		return s.degrade("briefing generation", err)
	}

	text := sanitizeProse(reply)
	text = clampWords(text, s.maxWords()*briefingWordFactor)
	if countWords(text) < minReplyWords {
		return s.degrade("briefing reply", fmt.Errorf("reply too short: %d words", countWords(text)))
	}

	s.record("briefing", snap)
	return Result{Text: text, Source: SourceLLM}
}

// HealthCheck pings the provider chain. Used by the startup probes.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.provider.HealthCheck(ctx)
}

// UpdateSettings changes the reply language and word budget at runtime.
// Empty or non-positive values leave the current setting alone. Cached
// replies in the old language age out through the TTL.
func (s *Service) UpdateSettings(language string, maxWords int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if language != "" {
		s.cfg.Language = language
	}
	if maxWords > 0 {
		s.cfg.MaxWords = maxWords
	}
}

// polish sanitizes a raw reply and enforces the word budget. An empty or
// near-empty reply after sanitation counts as a failure.
func (s *Service) polish(reply string) (string, error) {
	text := sanitizeProse(reply)
	text = clampWords(text, s.maxWords())
	if countWords(text) < minReplyWords {
		return "", fmt.Errorf("reply too short: %d words", countWords(text))
	}
	return text, nil
}

func (s *Service) degrade(what string, err error) Result {
	slog.Warn("Analysis: degrading to fallback", "step", what, "error", err)
	return Result{Text: fallbackText, Source: SourceFallback}
}

// takeSlot enforces the cooldown between provider calls. Cache hits never
// reach it.
func (s *Service) takeSlot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cd := time.Duration(s.cfg.Cooldown)
	if cd > 0 && s.now().Sub(s.lastCall) < cd {
		return false
	}
	s.lastCall = s.now()
	return true
}

func (s *Service) record(kind string, snap engine.Snapshot) {
	if s.events == nil {
		return
	}
	s.events.Record(kind, fmt.Sprintf("%s requested during %s at %.0f m, %.0f m/s",
		kind, snap.Stage, snap.State.Altitude, snap.State.Velocity))
}

func (s *Service) maxWords() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.MaxWords > 0 {
		return s.cfg.MaxWords
	}
	return 120
}

func (s *Service) language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.Language != "" {
		return s.cfg.Language
	}
	return "en-US"
}

// promptData flattens a snapshot into the template namespace with display
// precision. Numbers are formatted here, not in the templates.
func (s *Service) promptData(snap engine.Snapshot) map[string]any {
	st := snap.State
	r := snap.Results

	presetName, _ := flight.MatchPreset(&st)

	return map[string]any{
		"Stage":                snap.Stage,
		"StageTitle":           snap.StageTitle,
		"WingType":             string(st.WingType),
		"WingSpan":             fmt.Sprintf("%.1f", st.WingSpan),
		"ChordLength":          fmt.Sprintf("%.1f", st.ChordLength),
		"WingArea":             fmt.Sprintf("%.1f", r.WingArea),
		"Weight":               fmt.Sprintf("%.0f", st.Weight),
		"AngleOfAttack":        fmt.Sprintf("%.1f", st.AngleOfAttack),
		"Velocity":             fmt.Sprintf("%.1f", st.Velocity),
		"HeadWind":             fmt.Sprintf("%.1f", st.HeadWind),
		"TotalAirspeed":        fmt.Sprintf("%.1f", r.TotalAirspeed),
		"Altitude":             fmt.Sprintf("%.0f", st.Altitude),
		"VerticalSpeed":        fmt.Sprintf("%.1f", snap.VerticalSpeed),
		"AirDensity":           fmt.Sprintf("%.3f", snap.AirDensity),
		"LiftForce":            fmt.Sprintf("%.0f", r.LiftForce),
		"DragForce":            fmt.Sprintf("%.0f", r.DragForce),
		"WeightForce":          fmt.Sprintf("%.0f", r.WeightForce),
		"LiftCoefficient":      fmt.Sprintf("%.2f", r.LiftCoefficient),
		"RequiredTakeoffSpeed": fmt.Sprintf("%.1f", math.Max(r.RequiredTakeoffSpeed, 0)),
		"IsFlying":             r.IsFlying,
		"StallWarning":         snap.StallWarning,
		"AltitudeHold":         st.AltitudeHold,
		"Autoland":             st.Autoland,
		"AutoMission":          st.AutoMission,
		"FlightTime":           fmt.Sprintf("%.0f", st.FlightTime),
		"Distance":             fmt.Sprintf("%.1f", st.DistanceTraveled/1000),
		"Preset":               presetName,
		"Language":             s.language(),
		"MaxWords":             s.maxWords(),
	}
}

// fingerprint buckets a snapshot for cache lookup. Continuous inputs are
// rounded so that visually identical states map to the same key; anything
// that changes the story (stage, stall, airborne flag, wing) is exact.
func fingerprint(snap engine.Snapshot) string {
	st := snap.State
	return fmt.Sprintf("%s|%s|%.0f|%.1f|%.1f|%.1f|%.0f|%.0f|%.0f|%t|%t",
		snap.Stage,
		st.WingType,
		math.Round(st.Weight/100)*100,
		st.WingSpan,
		st.ChordLength,
		math.Round(st.AngleOfAttack*2)/2,
		math.Round(st.Velocity/5)*5,
		math.Round(st.HeadWind/5)*5,
		math.Round(st.Altitude/100)*100,
		snap.Results.IsFlying,
		snap.StallWarning,
	)
}
