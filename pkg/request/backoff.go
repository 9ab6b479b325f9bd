package request

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// ProviderBackoff tracks consecutive failures per provider and derives a
// wait deadline from them. It gates the per-provider worker between
// requests; retries within a single request are the client's own job.
type ProviderBackoff struct {
	mu        sync.RWMutex
	providers map[string]*providerState
	baseDelay time.Duration
	maxDelay  time.Duration
}

type providerState struct {
	failureCount int
	nextAllowed  time.Time
}

// NewProviderBackoff creates a backoff manager with the given delay bounds.
func NewProviderBackoff(baseDelay, maxDelay time.Duration) *ProviderBackoff {
	return &ProviderBackoff{
		providers: make(map[string]*providerState),
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
	}
}

// Wait blocks until the provider's deadline has passed. Providers with no
// recorded failures pass straight through.
func (b *ProviderBackoff) Wait(provider string) {
	b.mu.RLock()
	state, ok := b.providers[provider]
	b.mu.RUnlock()

	if !ok {
		return
	}
	if wait := time.Until(state.nextAllowed); wait > 0 {
		time.Sleep(wait)
	}
}

// RecordFailure bumps the failure count and pushes the deadline out
// exponentially.
func (b *ProviderBackoff) RecordFailure(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.providers[provider]
	if !ok {
		state = &providerState{}
		b.providers[provider] = state
	}

	state.failureCount++
	state.nextAllowed = time.Now().Add(b.delayFor(state.failureCount))
}

// RecordSuccess walks the failure count back one step. The deadline
// clears only once the count reaches zero.
func (b *ProviderBackoff) RecordSuccess(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.providers[provider]
	if !ok {
		return
	}

	if state.failureCount > 0 {
		state.failureCount--
	}
	if state.failureCount == 0 {
		state.nextAllowed = time.Time{}
	}
}

// delayFor returns baseDelay * 2^(failures-1), capped at maxDelay, plus
// up to 10% jitter.
func (b *ProviderBackoff) delayFor(failures int) time.Duration {
	delay := time.Duration(float64(b.baseDelay) * math.Pow(2, float64(failures-1)))
	if delay > b.maxDelay {
		delay = b.maxDelay
	}
	jitter := time.Duration(rand.Float64() * 0.1 * float64(delay))
	return delay + jitter
}

// GetState returns the failure count and deadline for a provider.
func (b *ProviderBackoff) GetState(provider string) (failureCount int, nextAllowed time.Time) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if state, ok := b.providers[provider]; ok {
		return state.failureCount, state.nextAllowed
	}
	return 0, time.Time{}
}
