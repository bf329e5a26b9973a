package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/dancescene/discovery/internal/domain/entities"
	"github.com/dancescene/discovery/internal/domain/repositories"
	"github.com/dancescene/discovery/internal/infrastructure/clients/postgres"
	"github.com/dancescene/discovery/internal/search"
	apperrors "github.com/dancescene/discovery/pkg/errors"
)

// EventSearchAdapter implements EventSearchRepository over PostgreSQL. It
// lowers the compiled predicate tree with goqu; the filtered set is counted
// before pagination so the total never depends on the page window.
type EventSearchAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEventSearchAdapter creates a new event search adapter
func NewEventSearchAdapter(client *postgres.Client) repositories.EventSearchRepository {
	return &EventSearchAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var resultColumns = []interface{}{
	goqu.I("events.id"),
	goqu.I("events.name"),
	goqu.I("events.description"),
	goqu.I("events.start_date"),
	goqu.I("events.end_date"),
	goqu.I("events.venue_id"),
	goqu.I("venues.name").As("venue_name"),
	goqu.I("venues.city"),
	goqu.I("venues.country"),
	goqu.I("events.styles"),
	goqu.I("events.event_types"),
	goqu.I("events.skill_levels"),
	goqu.I("events.featured"),
	goqu.I("events.save_count"),
	goqu.I("events.attendance_count"),
}

// SearchWithCount executes the filter without pagination bounds to obtain
// the total, then fetches the requested page.
func (a *EventSearchAdapter) SearchWithCount(
	ctx context.Context,
	filter repositories.EventFilter,
	proximity *entities.ProximitySet,
) ([]*entities.SearchResultRow, int, error) {

	// An active geo filter with no venue in range matches nothing.
	if proximity != nil && len(proximity.VenueIDs) == 0 {
		return []*entities.SearchResultRow{}, 0, nil
	}

	pred, score, err := search.Compile(filter)
	if err != nil {
		return nil, 0, err
	}

	where, err := lowerPredicate(pred)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to lower search predicate", err)
	}

	ds := a.db.From(goqu.T("events")).
		Join(goqu.T("venues"), goqu.On(goqu.I("events.venue_id").Eq(goqu.I("venues.id")))).
		Where(where)

	if proximity != nil {
		ds = ds.Where(goqu.I("events.venue_id").In(proximity.VenueIDs))
	}

	// The score expression is lowered once; score filtering and result
	// filtering are the same test.
	var scoreExpr exp.SQLFunctionExpression
	if score != nil {
		scoreExpr, err = lowerScore(score)
		if err != nil {
			return nil, 0, apperrors.NewInternalError("failed to lower score expression", err)
		}
		ds = ds.Where(goqu.L("? > 0", scoreExpr))
	}

	start := time.Now()

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var totalCount int
	if err := a.client.DB().QueryRowContext(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, apperrors.NewStoreError("failed to count filtered events", err)
	}

	columns := resultColumns
	if scoreExpr != nil {
		columns = append(columns[:len(columns):len(columns)], scoreExpr.As("relevance_score"))
	} else {
		columns = append(columns[:len(columns):len(columns)], goqu.L("0").As("relevance_score"))
	}

	paged := ds.Select(columns...).
		Order(a.resolveOrder(filter, scoreExpr)...).
		Limit(uint(filter.PageSize)).
		Offset(uint((filter.Page - 1) * filter.PageSize))

	pageSQL, pageArgs, err := paged.ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build page query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, apperrors.NewStoreError("failed to query events", err)
	}
	defer rows.Close()

	results := []*entities.SearchResultRow{}
	for rows.Next() {
		row := &entities.SearchResultRow{}
		err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.Description,
			&row.StartDate,
			&row.EndDate,
			&row.VenueID,
			&row.VenueName,
			&row.City,
			&row.Country,
			pq.Array(&row.Styles),
			pq.Array(&row.EventTypes),
			pq.Array(&row.SkillLevels),
			&row.Featured,
			&row.SaveCount,
			&row.AttendanceCount,
			&row.RelevanceScore,
		)
		if err != nil {
			return nil, 0, apperrors.NewStoreError("failed to scan event row", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewStoreError("error iterating events", err)
	}

	log.Debug().
		Str("query", filter.Query).
		Str("sort", filter.SortBy).
		Int("total", totalCount).
		Int("returned", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("event search executed")

	return results, totalCount, nil
}

// resolveOrder maps the requested sort mode to SQL ordering. Distance sort
// without a geo center falls back to date ascending.
func (a *EventSearchAdapter) resolveOrder(filter repositories.EventFilter, scoreExpr exp.SQLFunctionExpression) []exp.OrderedExpression {
	dateAsc := goqu.I("events.start_date").Asc()

	switch filter.SortBy {
	case repositories.SortDate:
		if filter.SortOrder == repositories.OrderDesc {
			return []exp.OrderedExpression{goqu.I("events.start_date").Desc()}
		}
		return []exp.OrderedExpression{dateAsc}

	case repositories.SortPopularity:
		return []exp.OrderedExpression{
			goqu.I("events.featured").Desc(),
			goqu.I("events.save_count").Desc(),
			goqu.I("events.attendance_count").Desc(),
			dateAsc,
		}

	case repositories.SortDistance:
		if !filter.HasGeo() {
			return []exp.OrderedExpression{dateAsc}
		}
		return []exp.OrderedExpression{distanceExpr(*filter.Latitude, *filter.Longitude).Asc(), dateAsc}

	case repositories.SortPrice:
		// Events with no available price sort last in both directions
		if filter.SortOrder == repositories.OrderDesc {
			return []exp.OrderedExpression{minPriceExpr().Desc().NullsLast(), dateAsc}
		}
		return []exp.OrderedExpression{minPriceExpr().Asc().NullsLast(), dateAsc}

	default: // relevance
		if scoreExpr != nil {
			return []exp.OrderedExpression{goqu.I("relevance_score").Desc(), dateAsc}
		}
		return []exp.OrderedExpression{goqu.I("events.featured").Desc(), dateAsc}
	}
}

// distanceExpr is the SQL twin of search.Haversine, bound to the venue row
func distanceExpr(lat, lon float64) exp.LiteralExpression {
	return goqu.L(
		"(6371 * acos(cos(radians(?)) * cos(radians(venues.latitude)) * "+
			"cos(radians(venues.longitude) - radians(?)) + sin(radians(?)) * "+
			"sin(radians(venues.latitude))))",
		lat, lon, lat,
	)
}

func minPriceExpr() exp.LiteralExpression {
	return goqu.L("(SELECT MIN(p.amount) FROM prices p WHERE p.event_id = events.id AND p.available)")
}
