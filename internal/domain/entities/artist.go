package entities

// Teacher represents an event teacher. Related to events through the
// event_teachers association; an event matches a teacher-based search via
// its related teachers even though the event record carries no such text.
type Teacher struct {
	ID          string   `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Bio         string   `json:"bio" db:"bio"`
	Specialties []string `json:"specialties" db:"-"`
}

// Musician represents an event musician, related through event_musicians.
type Musician struct {
	ID     string   `json:"id" db:"id"`
	Name   string   `json:"name" db:"name"`
	Bio    string   `json:"bio" db:"bio"`
	Genres []string `json:"genres" db:"-"`
}
