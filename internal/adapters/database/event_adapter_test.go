package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dancescene/discovery/pkg/errors"
)

func eventDetailRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "description", "start_date", "end_date", "venue_id",
		"styles", "event_types", "skill_levels", "featured", "save_count",
		"attendance_count", "review_count", "is_active", "created_at",
		"updated_at", "v_id", "v_name", "address", "city", "country",
		"latitude", "longitude",
	}).AddRow(
		"ev-1", "Summer Salsa Social", "Weekly social", now, now.Add(4*time.Hour),
		"venue-1", []byte("{salsa}"), []byte("{social}"), []byte("{all}"),
		true, 42, 120, 7, true, now, now,
		"venue-1", "La Pista", "3 Rue de la Danse", "Paris", "France",
		48.8566, 2.3522,
	)
}

func TestEventAdapter_GetByID(t *testing.T) {
	t.Run("resolves the event with its related records", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewEventAdapter(client)

		mock.ExpectQuery(`FROM "events" INNER JOIN "venues".+"events"\."id" = 'ev-1'`).
			WillReturnRows(eventDetailRows())
		mock.ExpectQuery(`FROM "teachers" INNER JOIN "event_teachers"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "bio", "specialties"}).
				AddRow("t-1", "Adriana Silva", "", []byte("{salsa}")))
		mock.ExpectQuery(`FROM "musicians" INNER JOIN "event_musicians"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "bio", "genres"}))
		mock.ExpectQuery(`FROM "prices".+"event_id" = 'ev-1'`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "amount", "currency", "available"}).
				AddRow("p-1", "ev-1", 15.0, "EUR", true))

		detail, err := adapter.GetByID(context.Background(), "ev-1")

		require.NoError(t, err)
		assert.Equal(t, "Summer Salsa Social", detail.Event.Name)
		assert.Equal(t, "La Pista", detail.Venue.Name)
		assert.InDelta(t, 48.8566, detail.Venue.Location.Latitude, 0.001)
		require.Len(t, detail.Teachers, 1)
		assert.Equal(t, "Adriana Silva", detail.Teachers[0].Name)
		assert.Empty(t, detail.Musicians)
		require.Len(t, detail.Prices, 1)
		assert.InDelta(t, 15.0, detail.Prices[0].Amount, 0.001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing or inactive event is not found", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewEventAdapter(client)

		mock.ExpectQuery(`FROM "events" INNER JOIN "venues"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := adapter.GetByID(context.Background(), "gone")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
	})

	t.Run("store failure surfaces as a store error", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewEventAdapter(client)

		mock.ExpectQuery(`FROM "events" INNER JOIN "venues"`).
			WillReturnError(assert.AnError)

		_, err := adapter.GetByID(context.Background(), "ev-1")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeStore, apperrors.TypeOf(err))
	})
}
