package entities

import "time"

// SearchResultRow is an event projected with its computed relevance score
// and, when a geo filter is active, the distance to the search center.
// Exists only for the duration of a request/response cycle.
type SearchResultRow struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	VenueID         string    `json:"venue_id"`
	VenueName       string    `json:"venue_name"`
	City            string    `json:"city"`
	Country         string    `json:"country"`
	Styles          []string  `json:"styles"`
	EventTypes      []string  `json:"event_types"`
	SkillLevels     []string  `json:"skill_levels"`
	Featured        bool      `json:"featured"`
	SaveCount       int       `json:"save_count"`
	AttendanceCount int       `json:"attendance_count"`
	RelevanceScore  int       `json:"relevance_score"`
	DistanceKm      *float64  `json:"distance_km,omitempty"`
}

// SearchResponse is the paginated envelope returned by the search core.
// TotalCount always reflects the fully filtered set, independent of the
// pagination window.
type SearchResponse struct {
	Rows       []*SearchResultRow `json:"rows"`
	TotalCount int                `json:"total_count"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
	HasNext    bool               `json:"has_next"`
	HasPrev    bool               `json:"has_prev"`
}
