package flight

import (
	"sync"
	"time"
)

// VerticalSpeedBuffer maintains a rolling window of altitude samples and
// reports a smoothed vertical speed in m/s. The raw per-tick climb rate is
// too jittery for the stage machine and the dashboard readout.
type VerticalSpeedBuffer struct {
	mu      sync.RWMutex
	samples []altSample
	window  time.Duration
}

type altSample struct {
	time time.Time
	alt  float64
}

// NewVerticalSpeedBuffer creates a buffer with the given time window.
func NewVerticalSpeedBuffer(window time.Duration) *VerticalSpeedBuffer {
	return &VerticalSpeedBuffer{window: window}
}

// Update adds an altitude sample and returns the vertical speed over the
// window (m/s). Returns 0 until two samples span a positive interval.
func (b *VerticalSpeedBuffer) Update(now time.Time, alt float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, altSample{time: now, alt: alt})

	cutoff := now.Add(-b.window)
	for len(b.samples) > 2 && b.samples[1].time.Before(cutoff) {
		b.samples = b.samples[1:]
	}

	if len(b.samples) < 2 {
		return 0
	}

	first := b.samples[0]
	last := b.samples[len(b.samples)-1]

	dt := last.time.Sub(first.time).Seconds()
	if dt <= 0 {
		return 0
	}
	return (last.alt - first.alt) / dt
}

// Reset clears the buffer.
func (b *VerticalSpeedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
}
