package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dancescene/discovery/pkg/errors"
)

func TestSuggestionAdapter_SuggestEvents(t *testing.T) {
	t.Run("matches active events by name, featured first", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewSuggestionAdapter(client)

		mock.ExpectQuery(`"is_active" IS TRUE.+ILIKE '%sal%'.+ORDER BY "events"\."featured" DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "city", "country"}).
				AddRow("ev-1", "Salsa Night", "Paris", "France").
				AddRow("ev-2", "Salsa Congress", "Berlin", "Germany"))

		suggestions, err := adapter.SuggestEvents(context.Background(), "sal", 5)

		require.NoError(t, err)
		require.Len(t, suggestions, 2)
		assert.Equal(t, "Salsa Night", suggestions[0].Name)
		assert.Equal(t, "Berlin", suggestions[1].City)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("escapes LIKE metacharacters in the query", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewSuggestionAdapter(client)

		mock.ExpectQuery(`ILIKE '%100\\%%'`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "city", "country"}))

		_, err := adapter.SuggestEvents(context.Background(), "100%", 5)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSuggestionAdapter_SuggestNames(t *testing.T) {
	t.Run("teachers come back alphabetical", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewSuggestionAdapter(client)

		mock.ExpectQuery(`FROM "teachers".+ORDER BY "name" ASC LIMIT 3`).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).
				AddRow("Adrian Costa").
				AddRow("Adriana Silva"))

		names, err := adapter.SuggestTeachers(context.Background(), "adri", 3)

		require.NoError(t, err)
		assert.Equal(t, []string{"Adrian Costa", "Adriana Silva"}, names)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("musician lookup failure is a store error", func(t *testing.T) {
		client, mock := setupMockClient(t)
		defer client.Close()
		adapter := NewSuggestionAdapter(client)

		mock.ExpectQuery(`FROM "musicians"`).
			WillReturnError(assert.AnError)

		_, err := adapter.SuggestMusicians(context.Background(), "orq", 3)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeStore, apperrors.TypeOf(err))
	})
}
