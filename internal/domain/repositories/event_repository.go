package repositories

import (
	"context"
	"time"

	"github.com/dancescene/discovery/internal/domain/entities"
)

// Sort modes supported by the result assembler
const (
	SortRelevance  = "relevance"
	SortDate       = "date"
	SortPopularity = "popularity"
	SortDistance   = "distance"
	SortPrice      = "price"
)

// Sort directions
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// EventFilter is the structured representation of a search request. Built
// per request, never persisted. Absent/empty fields impose no constraint.
type EventFilter struct {
	Query string

	// Geographic radius filter. RadiusKm without a center point is a
	// validation error.
	Latitude  *float64
	Longitude *float64
	RadiusKm  float64

	// StartsAfter constrains the event start date (>=); EndsBefore
	// constrains the event end date (<=).
	StartsAfter *time.Time
	EndsBefore  *time.Time

	// Teacher/musician filters are existential: the event matches if at
	// least one related record is in the id set or its name contains the
	// given text, case-insensitive.
	TeacherIDs   []string
	TeacherName  string
	MusicianIDs  []string
	MusicianName string

	// Faceted filters: OR within a facet's value list, AND across facets.
	EventTypes  []string
	SkillLevels []string

	// Price filter is existential over the event's available price rows.
	MinPrice *float64
	MaxPrice *float64

	SortBy    string
	SortOrder string

	Page     int
	PageSize int
}

// HasGeo reports whether a complete geo filter is present
func (f *EventFilter) HasGeo() bool {
	return f.Latitude != nil && f.Longitude != nil && f.RadiusKm > 0
}

// EventSearchRepository executes the compiled search against the store.
// The total count reflects the filtered set without pagination bounds.
type EventSearchRepository interface {
	SearchWithCount(ctx context.Context, filter EventFilter, proximity *entities.ProximitySet) ([]*entities.SearchResultRow, int, error)
}

// VenueProximityRepository resolves the set of venues within a radius of a
// center point, independent of all other filters.
type VenueProximityRepository interface {
	ResolveProximity(ctx context.Context, lat, lon, radiusKm float64) (*entities.ProximitySet, error)
}

// EventRepository loads single events with their related records
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*entities.EventDetail, error)
}

// SuggestionRepository provides the per-entity-type autocomplete lookups
type SuggestionRepository interface {
	SuggestEvents(ctx context.Context, query string, limit int) ([]entities.EventSuggestion, error)
	SuggestTeachers(ctx context.Context, query string, limit int) ([]string, error)
	SuggestMusicians(ctx context.Context, query string, limit int) ([]string, error)
}
