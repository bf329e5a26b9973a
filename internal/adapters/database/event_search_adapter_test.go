package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dancescene/discovery/internal/domain/entities"
	"github.com/dancescene/discovery/internal/domain/repositories"
	"github.com/dancescene/discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/dancescene/discovery/pkg/errors"
)

func setupMockClient(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	return postgres.NewClientFromDB(mockDB), mock
}

func resultRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "description", "start_date", "end_date", "venue_id",
		"venue_name", "city", "country", "styles", "event_types",
		"skill_levels", "featured", "save_count", "attendance_count",
		"relevance_score",
	}).AddRow(
		"ev-1", "Summer Salsa Social", "Weekly social", now, now.Add(4*time.Hour),
		"venue-1", "La Pista", "Paris", "France",
		[]byte("{salsa,bachata}"), []byte("{social}"), []byte("{all}"),
		true, 42, 120, 100,
	)
}

func TestEventSearchAdapter_SearchWithCount(t *testing.T) {
	filter := repositories.EventFilter{
		SortBy:   repositories.SortDate,
		Page:     1,
		PageSize: 20,
	}

	t.Run("counts the filtered set before paginating", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewEventSearchAdapter(client)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "events"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(57))
		mock.ExpectQuery(`SELECT .+ FROM "events" INNER JOIN "venues"`).
			WillReturnRows(resultRows())

		rows, total, err := adapter.SearchWithCount(context.Background(), filter, nil)

		require.NoError(t, err)
		assert.Equal(t, 57, total)
		require.Len(t, rows, 1)
		assert.Equal(t, "ev-1", rows[0].ID)
		assert.Equal(t, "La Pista", rows[0].VenueName)
		assert.Equal(t, []string{"salsa", "bachata"}, rows[0].Styles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty proximity set short-circuits without querying", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewEventSearchAdapter(client)

		prox := &entities.ProximitySet{VenueIDs: []string{}, DistanceKm: map[string]float64{}}
		rows, total, err := adapter.SearchWithCount(context.Background(), filter, prox)

		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, 0, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("proximity set narrows the query to its venues", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewEventSearchAdapter(client)

		prox := &entities.ProximitySet{
			VenueIDs:   []string{"venue-1", "venue-2"},
			DistanceKm: map[string]float64{"venue-1": 1.2, "venue-2": 4.8},
		}

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "events".+"venue_id" IN \('venue-1', 'venue-2'\)`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`"venue_id" IN \('venue-1', 'venue-2'\)`).
			WillReturnRows(resultRows())

		_, total, err := adapter.SearchWithCount(context.Background(), filter, prox)

		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("text query scores and filters in the same expression", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewEventSearchAdapter(client)

		scored := filter
		scored.Query = "salsa"
		scored.SortBy = repositories.SortRelevance

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "events".+GREATEST.+ > 0`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`GREATEST.+ AS "relevance_score".+ORDER BY "relevance_score" DESC`).
			WillReturnRows(resultRows())

		rows, _, err := adapter.SearchWithCount(context.Background(), scored, nil)

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 100, rows[0].RelevanceScore)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pagination window follows the page number", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewEventSearchAdapter(client)

		paged := filter
		paged.Page = 3
		paged.PageSize = 10

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(100))
		mock.ExpectQuery(`LIMIT 10 OFFSET 20`).
			WillReturnRows(resultRows())

		_, total, err := adapter.SearchWithCount(context.Background(), paged, nil)

		require.NoError(t, err)
		assert.Equal(t, 100, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store failure surfaces as a retryable store error", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewEventSearchAdapter(client)

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WillReturnError(assert.AnError)

		_, _, err := adapter.SearchWithCount(context.Background(), filter, nil)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeStore, apperrors.TypeOf(err))
		assert.True(t, apperrors.IsRetryable(err))
	})

	t.Run("invalid filter fails before touching the store", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewEventSearchAdapter(client)

		bad := filter
		bad.RadiusKm = 10 // radius without a center

		_, _, err := adapter.SearchWithCount(context.Background(), bad, nil)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventSearchAdapter_SortModes(t *testing.T) {
	base := repositories.EventFilter{Page: 1, PageSize: 20}

	cases := []struct {
		name    string
		mutate  func(*repositories.EventFilter)
		orderRe string
	}{
		{
			name:    "date descending",
			mutate:  func(f *repositories.EventFilter) { f.SortBy = repositories.SortDate; f.SortOrder = repositories.OrderDesc },
			orderRe: `ORDER BY "events"\."start_date" DESC`,
		},
		{
			name:    "popularity leads with featured",
			mutate:  func(f *repositories.EventFilter) { f.SortBy = repositories.SortPopularity },
			orderRe: `ORDER BY "events"\."featured" DESC, "events"\."save_count" DESC`,
		},
		{
			name: "price ascending sorts missing prices last",
			mutate: func(f *repositories.EventFilter) {
				f.SortBy = repositories.SortPrice
			},
			orderRe: `ORDER BY \(SELECT MIN\(p\.amount\).+ ASC NULLS LAST`,
		},
		{
			name: "distance orders by haversine when a center is set",
			mutate: func(f *repositories.EventFilter) {
				lat, lon := 48.8566, 2.3522
				f.SortBy = repositories.SortDistance
				f.Latitude = &lat
				f.Longitude = &lon
				f.RadiusKm = 25
			},
			orderRe: `ORDER BY \(6371 \* acos`,
		},
		{
			name:    "distance without a center falls back to date",
			mutate:  func(f *repositories.EventFilter) { f.SortBy = repositories.SortDistance },
			orderRe: `ORDER BY "events"\."start_date" ASC`,
		},
		{
			name:    "relevance without a query falls back to featured",
			mutate:  func(f *repositories.EventFilter) { f.SortBy = repositories.SortRelevance },
			orderRe: `ORDER BY "events"\."featured" DESC, "events"\."start_date" ASC`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, mock := setupMockClient(t)
			defer client.Close()
			adapter := NewEventSearchAdapter(client)

			f := base
			tc.mutate(&f)

			mock.ExpectQuery(`SELECT COUNT\(\*\)`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			mock.ExpectQuery(tc.orderRe).
				WillReturnRows(resultRows())

			_, _, err := adapter.SearchWithCount(context.Background(), f, nil)

			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
