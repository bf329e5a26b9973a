package database

import (
	"strings"
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dancescene/discovery/internal/search"
)

// renderWhere lowers a predicate and renders it the way the adapters do,
// so assertions run against the SQL text the store actually receives.
func renderWhere(t *testing.T, p search.Predicate) string {
	t.Helper()
	expr, err := lowerPredicate(p)
	require.NoError(t, err)
	sql, _, err := goqu.Dialect("postgres").From("events").Where(expr).ToSQL()
	require.NoError(t, err)
	return sql
}

func TestLowerTextMatch_Modes(t *testing.T) {
	tests := []struct {
		name string
		mode search.MatchMode
		want string
	}{
		{"exact folds case", search.MatchExact, `LOWER("events"."name") = 'salsa night'`},
		{"prefix anchors the pattern", search.MatchPrefix, `"events"."name" ILIKE 'Salsa Night%'`},
		{"contains wraps the pattern", search.MatchContains, `"events"."name" ILIKE '%Salsa Night%'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := renderWhere(t, search.TextMatch{Column: "events.name", Query: "Salsa Night", Mode: tt.mode})
			assert.Contains(t, sql, tt.want)
		})
	}
}

func TestLowerTextMatch_EscapesLikeMetacharacters(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
	assert.Equal(t, `%50\%\_off\\%`, containsPattern(`50%_off\`))

	sql := renderWhere(t, search.TextMatch{Column: "events.name", Query: `50%_off\`, Mode: search.MatchContains})
	assert.Contains(t, sql, `ILIKE '%50\%\_off\\%'`)
}

func TestLowerPredicate_SetsAndRanges(t *testing.T) {
	sql := renderWhere(t, search.And{
		search.InSet{Column: "teachers.id", Values: []string{"t1", "t2"}},
		search.Range{Column: "events.save_count", Min: 10, Max: 50},
	})

	assert.Contains(t, sql, `"teachers"."id" IN ('t1', 't2')`)
	assert.Contains(t, sql, `"events"."save_count" >= 10`)
	assert.Contains(t, sql, `"events"."save_count" <= 50`)
}

func TestLowerPredicate_TagNodes(t *testing.T) {
	overlap := renderWhere(t, search.AnyTag{Column: "events.styles", Values: []string{"salsa", "bachata"}})
	assert.Contains(t, overlap, "events.styles && ")

	match := renderWhere(t, search.TagMatch{Column: "events.styles", Query: "jazz"})
	assert.Contains(t, match, `EXISTS (SELECT 1 FROM unnest(events.styles) AS tag WHERE tag ILIKE '%jazz%')`)
}

func TestLowerExists_CorrelatedSubquery(t *testing.T) {
	sql := renderWhere(t, search.ExistsIn{
		Table:     "event_teachers",
		Link:      "event_id",
		Parent:    "events.id",
		JoinTable: "teachers",
		JoinOn:    [2]string{"event_teachers.teacher_id", "teachers.id"},
		Where:     search.TextMatch{Column: "teachers.name", Query: "maria", Mode: search.MatchContains},
	})

	assert.Contains(t, sql, `EXISTS (SELECT 1 FROM "event_teachers"`)
	assert.Contains(t, sql, `INNER JOIN "teachers" ON ("event_teachers"."teacher_id" = "teachers"."id")`)
	assert.Contains(t, sql, `"event_teachers"."event_id" = "events"."id"`)
	assert.Contains(t, sql, `"teachers"."name" ILIKE '%maria%'`)
}

func TestLowerScore_RendersWeightTable(t *testing.T) {
	score := search.ScoreFor("salsa")
	require.NotNil(t, score)

	expr, err := lowerScore(score)
	require.NoError(t, err)
	sql, _, err := goqu.Dialect("postgres").From("events").Select(expr.As("relevance_score")).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, "GREATEST(")
	assert.Contains(t, sql, `CASE WHEN (LOWER("events"."name") = 'salsa') THEN 100 ELSE 0 END`)
	assert.Contains(t, sql, `CASE WHEN ("events"."name" ILIKE 'salsa%') THEN 80 ELSE 0 END`)
	assert.Contains(t, sql, `CASE WHEN ("events"."name" ILIKE '%salsa%') THEN 60 ELSE 0 END`)
	for _, weight := range []string{"THEN 90 ", "THEN 85 ", "THEN 70 ", "THEN 65 ", "THEN 40 ", "THEN 30 ", "THEN 25 ", "THEN 20 "} {
		assert.Contains(t, sql, weight)
	}
}

func TestLowerScore_MaxNotSum(t *testing.T) {
	score := search.ScoreFor("paris")
	require.NotNil(t, score)

	expr, err := lowerScore(score)
	require.NoError(t, err)
	sql, _, err := goqu.Dialect("postgres").From("events").Select(expr).ToSQL()
	require.NoError(t, err)

	// One GREATEST over every branch; the branches are never added together
	assert.Equal(t, 1, strings.Count(sql, "GREATEST("))
	assert.Equal(t, len(score.Conditions), strings.Count(sql, "CASE WHEN"))
	assert.NotContains(t, sql, " + ")
}
