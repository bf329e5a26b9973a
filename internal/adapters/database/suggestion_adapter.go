package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/dancescene/discovery/internal/domain/entities"
	"github.com/dancescene/discovery/internal/domain/repositories"
	"github.com/dancescene/discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/dancescene/discovery/pkg/errors"
)

// SuggestionAdapter serves the per-entity-type autocomplete lookups. Each
// lookup is an independent contains-match; the fan-out and degradation
// policy live in the suggestion service, not here.
type SuggestionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSuggestionAdapter creates a new suggestion adapter
func NewSuggestionAdapter(client *postgres.Client) repositories.SuggestionRepository {
	return &SuggestionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// SuggestEvents returns active events whose name contains the query,
// featured events first, earliest start date breaking ties.
func (a *SuggestionAdapter) SuggestEvents(ctx context.Context, query string, limit int) ([]entities.EventSuggestion, error) {
	ds := a.db.From(goqu.T("events")).
		Join(goqu.T("venues"), goqu.On(goqu.I("events.venue_id").Eq(goqu.I("venues.id")))).
		Select(
			goqu.I("events.id"),
			goqu.I("events.name"),
			goqu.I("venues.city"),
			goqu.I("venues.country"),
		).
		Where(
			goqu.I("events.is_active").Eq(true),
			goqu.I("events.name").ILike(containsPattern(query)),
		).
		Order(
			goqu.I("events.featured").Desc(),
			goqu.I("events.start_date").Asc(),
		).
		Limit(uint(limit))

	sql, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build event suggestion query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to query event suggestions", err)
	}
	defer rows.Close()

	suggestions := []entities.EventSuggestion{}
	for rows.Next() {
		var s entities.EventSuggestion
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.Country); err != nil {
			return nil, apperrors.NewStoreError("failed to scan event suggestion", err)
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("error iterating event suggestions", err)
	}

	return suggestions, nil
}

// SuggestTeachers returns teacher names containing the query, alphabetical.
func (a *SuggestionAdapter) SuggestTeachers(ctx context.Context, query string, limit int) ([]string, error) {
	return a.suggestNames(ctx, "teachers", query, limit)
}

// SuggestMusicians returns musician names containing the query, alphabetical.
func (a *SuggestionAdapter) SuggestMusicians(ctx context.Context, query string, limit int) ([]string, error) {
	return a.suggestNames(ctx, "musicians", query, limit)
}

func (a *SuggestionAdapter) suggestNames(ctx context.Context, table, query string, limit int) ([]string, error) {
	ds := a.db.From(goqu.T(table)).
		Select(goqu.C("name")).
		Where(goqu.C("name").ILike(containsPattern(query))).
		Order(goqu.C("name").Asc()).
		Limit(uint(limit))

	sql, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build name suggestion query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to query "+table, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewStoreError("failed to scan name suggestion", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("error iterating name suggestions", err)
	}

	return names, nil
}
