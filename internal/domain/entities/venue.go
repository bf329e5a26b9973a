package entities

// Venue represents a physical location hosting events. Many events reference
// one venue.
type Venue struct {
	ID       string   `json:"id" db:"id"`
	Name     string   `json:"name" db:"name"`
	Address  string   `json:"address" db:"address"`
	City     string   `json:"city" db:"city"`
	Country  string   `json:"country" db:"country"`
	Location Location `json:"location" db:"-"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// ProximitySet is the set of venues within a radius of a center point,
// with the geodesic distance to each.
type ProximitySet struct {
	VenueIDs   []string           `json:"venue_ids"`
	DistanceKm map[string]float64 `json:"distance_km"`
}

// Contains reports whether the venue is within the resolved radius
func (p *ProximitySet) Contains(venueID string) bool {
	_, ok := p.DistanceKm[venueID]
	return ok
}

// Distance returns the resolved distance for a venue, if known
func (p *ProximitySet) Distance(venueID string) (float64, bool) {
	d, ok := p.DistanceKm[venueID]
	return d, ok
}
