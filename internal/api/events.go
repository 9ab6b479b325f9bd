package api

import (
	"net/http"

	"liftlab/pkg/session"
)

// EventsProvider exposes the session event history.
type EventsProvider interface {
	Events() []session.Event
}

// EventsHandler serves the flight event log.
type EventsHandler struct {
	sessions EventsProvider
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(sessions EventsProvider) *EventsHandler {
	return &EventsHandler{sessions: sessions}
}

// HandleEvents returns the session events, oldest first. GET /api/events
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	events := h.sessions.Events()
	if events == nil {
		events = []session.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
