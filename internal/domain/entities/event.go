package entities

import "time"

// Event represents a discoverable event. Events are owned by the storage
// layer and are read-only to the search core.
type Event struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	StartDate       time.Time `json:"start_date" db:"start_date"`
	EndDate         time.Time `json:"end_date" db:"end_date"`
	VenueID         string    `json:"venue_id" db:"venue_id"`
	Styles          []string  `json:"styles" db:"-"`
	EventTypes      []string  `json:"event_types" db:"-"`
	SkillLevels     []string  `json:"skill_levels" db:"-"`
	Featured        bool      `json:"featured" db:"featured"`
	SaveCount       int       `json:"save_count" db:"save_count"`
	AttendanceCount int       `json:"attendance_count" db:"attendance_count"`
	ReviewCount     int       `json:"review_count" db:"review_count"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// EventDetail is an event with its related records resolved, served by the
// detail endpoint.
type EventDetail struct {
	Event     Event      `json:"event"`
	Venue     Venue      `json:"venue"`
	Teachers  []Teacher  `json:"teachers"`
	Musicians []Musician `json:"musicians"`
	Prices    []Price    `json:"prices"`
}
