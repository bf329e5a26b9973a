package entities

// Price represents a priced admission option for an event. Used only for
// price-range filtering and the price sort, never for ranking.
type Price struct {
	ID        string  `json:"id" db:"id"`
	EventID   string  `json:"event_id" db:"event_id"`
	Amount    float64 `json:"amount" db:"amount"`
	Currency  string  `json:"currency" db:"currency"`
	Available bool    `json:"available" db:"available"`
}
