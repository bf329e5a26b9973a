package routes

import (
	"net/http"

	"github.com/dancescene/discovery/internal/api/handlers"
	"github.com/dancescene/discovery/internal/api/middleware"
	"github.com/dancescene/discovery/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler *handlers.SearchHandler
	eventHandler  *handlers.EventHandler
	metrics       *observability.Metrics
}

// NewRouter creates a new router. metrics may be nil when telemetry is
// disabled; the observability middleware is skipped in that case.
func NewRouter(searchHandler *handlers.SearchHandler, eventHandler *handlers.EventHandler, metrics *observability.Metrics) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		searchHandler: searchHandler,
		eventHandler:  eventHandler,
		metrics:       metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	r.mux.HandleFunc("GET /api/events/search", r.searchHandler.SearchEvents)
	r.mux.HandleFunc("GET /api/events/suggest", r.searchHandler.SuggestEvents)
	r.mux.HandleFunc("GET /api/events/{id}", r.eventHandler.GetEvent)

	// Middleware applies in reverse order (last middleware wraps first).
	// CORS is outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}
	handler = middleware.CORSMiddleware(handler)

	return handler
}
