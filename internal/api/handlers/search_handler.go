package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dancescene/discovery/internal/application/services"
	"github.com/dancescene/discovery/internal/domain/repositories"
	apperrors "github.com/dancescene/discovery/pkg/errors"
)

// SearchHandler handles event search and suggestion HTTP requests
type SearchHandler struct {
	searchService     *services.SearchService
	suggestionService *services.SuggestionService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *services.SearchService, suggestionService *services.SuggestionService) *SearchHandler {
	return &SearchHandler{
		searchService:     searchService,
		suggestionService: suggestionService,
	}
}

// SearchEvents handles GET /api/events/search
func (h *SearchHandler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.searchService.Search(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, response)
}

// SuggestEvents handles GET /api/events/suggest
func (h *SearchHandler) SuggestEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	suggestions, err := h.suggestionService.Suggest(r.Context(), query, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, suggestions)
}

// parseEventFilter builds an EventFilter from query parameters. Unparseable
// values are rejected rather than silently dropped.
func parseEventFilter(r *http.Request) (repositories.EventFilter, error) {
	q := r.URL.Query()

	filter := repositories.EventFilter{
		Query:        q.Get("q"),
		TeacherName:  q.Get("teacher"),
		MusicianName: q.Get("musician"),
		TeacherIDs:   splitParam(q.Get("teacher_ids")),
		MusicianIDs:  splitParam(q.Get("musician_ids")),
		EventTypes:   splitParam(q.Get("event_types")),
		SkillLevels:  splitParam(q.Get("skill_levels")),
		SortBy:       q.Get("sort_by"),
		SortOrder:    q.Get("sort_order"),
	}

	var err error
	if filter.Latitude, err = floatParam(q.Get("lat"), "lat"); err != nil {
		return filter, err
	}
	if filter.Longitude, err = floatParam(q.Get("lon"), "lon"); err != nil {
		return filter, err
	}
	if radius, err := floatParam(q.Get("radius_km"), "radius_km"); err != nil {
		return filter, err
	} else if radius != nil {
		filter.RadiusKm = *radius
	}

	if filter.MinPrice, err = floatParam(q.Get("min_price"), "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = floatParam(q.Get("max_price"), "max_price"); err != nil {
		return filter, err
	}

	if filter.StartsAfter, err = timeParam(q.Get("starts_after"), "starts_after"); err != nil {
		return filter, err
	}
	if filter.EndsBefore, err = timeParam(q.Get("ends_before"), "ends_before"); err != nil {
		return filter, err
	}

	if filter.Page, err = intParam(q.Get("page"), "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = intParam(q.Get("page_size"), "page_size"); err != nil {
		return filter, err
	}

	return filter, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func floatParam(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(name + " must be a number")
	}
	return &value, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return value, nil
}

// timeParam accepts RFC 3339 timestamps and bare dates
func timeParam(raw, name string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if value, err := time.Parse(time.RFC3339, raw); err == nil {
		return &value, nil
	}
	if value, err := time.Parse("2006-01-02", raw); err == nil {
		return &value, nil
	}
	return nil, errors.New(name + " must be an RFC 3339 timestamp or YYYY-MM-DD date")
}

// respondWithAppError maps the error taxonomy to HTTP statuses
func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeTimeout:
		respondWithRetryableError(w, http.StatusGatewayTimeout, appErr.Message)
	case apperrors.ErrorTypeStore:
		respondWithRetryableError(w, http.StatusBadGateway, appErr.Message)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

func respondWithRetryableError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]interface{}{
		"error":     message,
		"retryable": true,
	})
}
