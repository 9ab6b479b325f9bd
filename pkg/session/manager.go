// Package session keeps the transient history of a simulation run: the
// flight events emitted by the engine, capped to a fixed window. It is
// the sink behind the events API and the events log file.
package session

import (
	"sync"
	"time"

	"liftlab/pkg/logging"
)

// DefaultMaxEvents caps the in-memory event history.
const DefaultMaxEvents = 256

// Event is a single entry in the flight log.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"` // "stage", "mode", "mission", "sim", "analysis"
	Message   string    `json:"message"`
}

// Manager handles transient flight session context.
type Manager struct {
	mu     sync.RWMutex
	events []Event
	max    int
}

// NewManager creates a new session manager.
func NewManager(maxEvents int) *Manager {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return &Manager{max: maxEvents}
}

// Record implements the engine's event sink. Events carry the wall clock
// of the moment they were recorded.
func (m *Manager) Record(kind, message string) {
	m.AddEvent(Event{Kind: kind, Message: message})
}

// AddEvent adds a structured event to the session history.
func (m *Manager) AddEvent(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	m.events = append(m.events, event)
	if len(m.events) > m.max {
		m.events = m.events[len(m.events)-m.max:]
	}

	// Log to events.log
	logging.LogEvent(event.Timestamp, event.Kind, event.Message)
}

// Events returns a copy of the history, oldest first.
func (m *Manager) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Count returns the total number of retained events.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// CountByKind returns the number of retained events per kind.
func (m *Manager) CountByKind() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range m.events {
		counts[e.Kind]++
	}
	return counts
}

// Last returns the most recent event and true, or false when empty.
func (m *Manager) Last() (Event, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.events) == 0 {
		return Event{}, false
	}
	return m.events[len(m.events)-1], true
}

// Reset clears the session state.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
