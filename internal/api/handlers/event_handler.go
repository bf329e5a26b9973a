package handlers

import (
	"net/http"

	"github.com/dancescene/discovery/internal/domain/repositories"
)

// EventHandler handles single-event HTTP requests
type EventHandler struct {
	eventRepo repositories.EventRepository
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventRepo repositories.EventRepository) *EventHandler {
	return &EventHandler{
		eventRepo: eventRepo,
	}
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		respondWithError(w, http.StatusBadRequest, "event ID is required")
		return
	}

	detail, err := h.eventRepo.GetByID(r.Context(), eventID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}
