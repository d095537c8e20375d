package handlers

import (
	"net/http"

	"github.com/isdelr/taskapi/internal/auth"
	"github.com/isdelr/taskapi/internal/common"
	"github.com/isdelr/taskapi/internal/services"
)

const defaultEventLimit = 20

// EventHandler handles HTTP requests for the caller's activity log.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get the caller's recent activity.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, r, common.ErrNotAuthenticated)
		return
	}
	limit, err := queryInt(r, "limit", defaultEventLimit)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	events, err := h.service.GetRecentEvents(r.Context(), identity, limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
