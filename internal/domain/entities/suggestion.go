package entities

// EventSuggestion is one autocomplete hit from the event branch. City and
// country also feed the derived location suggestions.
type EventSuggestion struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Suggestions holds the four bounded autocomplete lists. No total count,
// no pagination; a degraded branch contributes an empty list.
type Suggestions struct {
	Events    []EventSuggestion `json:"events"`
	Teachers  []string          `json:"teachers"`
	Musicians []string          `json:"musicians"`
	Locations []string          `json:"locations"`
}

// EmptySuggestions returns a response with all four lists present but empty
func EmptySuggestions() *Suggestions {
	return &Suggestions{
		Events:    []EventSuggestion{},
		Teachers:  []string{},
		Musicians: []string{},
		Locations: []string{},
	}
}
