package api

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"liftlab/pkg/session"
	"liftlab/pkg/tracker"
)

// StatsHandler serves provider usage counters, session event totals and
// basic process diagnostics.
type StatsHandler struct {
	tracker     *tracker.Tracker
	sessions    *session.Manager
	llmFallback []string

	mu      sync.Mutex
	started time.Time
	maxMem  uint64
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(t *tracker.Tracker, sessions *session.Manager, fallback []string) *StatsHandler {
	return &StatsHandler{
		tracker:     t,
		sessions:    sessions,
		llmFallback: fallback,
		started:     time.Now(),
	}
}

// ProviderStatsDTO is the per-provider counter block.
type ProviderStatsDTO struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APISuccess  int64 `json:"api_success"`
	APIFailures int64 `json:"api_errors"`
	StreamDrops int64 `json:"stream_drops"`
	HitRate     int64 `json:"hit_rate"`
}

// ProcessStats is the portable runtime diagnostics block.
type ProcessStats struct {
	UptimeSec   int64  `json:"uptime_sec"`
	Goroutines  int    `json:"goroutines"`
	HeapMB      uint64 `json:"heap_mb"`
	HeapMaxMB   uint64 `json:"heap_max_mb"`
	NumGC       uint32 `json:"num_gc"`
	EventsTotal int    `json:"events_total"`
}

// StatsResponse is the GET /api/stats payload.
type StatsResponse struct {
	Process     ProcessStats                `json:"process"`
	Events      map[string]int              `json:"events"`
	Providers   map[string]ProviderStatsDTO `json:"providers"`
	LLMFallback []string                    `json:"llm_fallback"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := StatsResponse{
		Process:     h.gatherProcess(),
		Events:      map[string]int{},
		Providers:   make(map[string]ProviderStatsDTO),
		LLMFallback: h.llmFallback,
	}

	if h.sessions != nil {
		resp.Events = h.sessions.CountByKind()
		resp.Process.EventsTotal = h.sessions.Count()
	}

	for provider, stats := range snapshot {
		totalCache := stats.CacheHits + stats.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (stats.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = ProviderStatsDTO{
			CacheHits:   stats.CacheHits,
			CacheMisses: stats.CacheMisses,
			APISuccess:  stats.APISuccess,
			APIFailures: stats.APIFailures,
			StreamDrops: stats.StreamDrops,
			HitRate:     hitRate,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *StatsHandler) gatherProcess() ProcessStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	h.mu.Lock()
	heap := ms.HeapAlloc
	if heap > h.maxMem {
		h.maxMem = heap
	}
	maxMem := h.maxMem
	started := h.started
	h.mu.Unlock()

	return ProcessStats{
		UptimeSec:  int64(time.Since(started).Seconds()),
		Goroutines: runtime.NumGoroutine(),
		HeapMB:     bToMb(heap),
		HeapMaxMB:  bToMb(maxMem),
		NumGC:      ms.NumGC,
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
