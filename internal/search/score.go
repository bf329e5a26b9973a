package search

// Relevance weights. A candidate's score is the MAXIMUM weight among its
// matched conditions, not a sum: an event matching both name-contains (60)
// and city-contains (30) scores 60, so exact and prefix name matches stay
// dominant no matter how many weaker fields also happen to match.
const (
	WeightNameExact       = 100
	WeightTeacherExact    = 90
	WeightMusicianExact   = 85
	WeightNamePrefix      = 80
	WeightTeacherPartial  = 70
	WeightMusicianPartial = 65
	WeightNameContains    = 60
	WeightDescription     = 40
	WeightCity            = 30
	WeightStyle           = 25
	WeightCountry         = 20
)

// ScoreCondition pairs one match condition with its weight
type ScoreCondition struct {
	Weight int
	Cond   Predicate
}

// ScoreExpr is the single authoritative relevance expression for a query.
// The store adapter lowers it exactly once and reuses the result for both
// the selection filter (score > 0) and the ordering clause, so scores
// shown to the caller always match the ordering applied.
type ScoreExpr struct {
	Query      string
	Conditions []ScoreCondition
}

func teacherNameMatch(query string, mode MatchMode) Predicate {
	return ExistsIn{
		Table:     "event_teachers",
		Link:      "event_id",
		Parent:    "events.id",
		JoinTable: "teachers",
		JoinOn:    [2]string{"event_teachers.teacher_id", "teachers.id"},
		Where:     TextMatch{Column: "teachers.name", Query: query, Mode: mode},
	}
}

func musicianNameMatch(query string, mode MatchMode) Predicate {
	return ExistsIn{
		Table:     "event_musicians",
		Link:      "event_id",
		Parent:    "events.id",
		JoinTable: "musicians",
		JoinOn:    [2]string{"event_musicians.musician_id", "musicians.id"},
		Where:     TextMatch{Column: "musicians.name", Query: query, Mode: mode},
	}
}

// ScoreFor builds the weighted-match hierarchy for a free-text query.
// Returns nil for an empty query: relevance ordering then falls back to
// featured-first, soonest start date.
func ScoreFor(query string) *ScoreExpr {
	if query == "" {
		return nil
	}

	return &ScoreExpr{
		Query: query,
		Conditions: []ScoreCondition{
			{WeightNameExact, TextMatch{Column: "events.name", Query: query, Mode: MatchExact}},
			{WeightNamePrefix, TextMatch{Column: "events.name", Query: query, Mode: MatchPrefix}},
			{WeightNameContains, TextMatch{Column: "events.name", Query: query, Mode: MatchContains}},
			{WeightTeacherExact, teacherNameMatch(query, MatchExact)},
			{WeightTeacherPartial, teacherNameMatch(query, MatchContains)},
			{WeightMusicianExact, musicianNameMatch(query, MatchExact)},
			{WeightMusicianPartial, musicianNameMatch(query, MatchContains)},
			{WeightDescription, TextMatch{Column: "events.description", Query: query, Mode: MatchContains}},
			{WeightCity, TextMatch{Column: "venues.city", Query: query, Mode: MatchContains}},
			{WeightStyle, TagMatch{Column: "events.styles", Query: query}},
			{WeightCountry, TextMatch{Column: "venues.country", Query: query, Mode: MatchContains}},
		},
	}
}
