package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_SearchConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("SEARCH_TIMEOUT_SECONDS", "10")
	os.Setenv("SEARCH_MAX_PAGE_SIZE", "50")
	defer func() {
		os.Unsetenv("SEARCH_TIMEOUT_SECONDS")
		os.Unsetenv("SEARCH_MAX_PAGE_SIZE")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 10, cfg.Search.TimeoutSeconds)
	assert.Equal(t, 50, cfg.Search.MaxPageSize)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("SEARCH_TIMEOUT_SECONDS")
	os.Unsetenv("SEARCH_MAX_PAGE_SIZE")
	os.Unsetenv("DB_NAME")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 5, cfg.Search.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Search.SuggestTimeoutSeconds)
	assert.Equal(t, 120, cfg.Search.CacheTTLSeconds)
	assert.Equal(t, 20, cfg.Search.DefaultPageSize)
	assert.Equal(t, 100, cfg.Search.MaxPageSize)
	assert.Equal(t, "event_discovery", cfg.Database.Database)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "app", Password: "secret",
		Database: "events", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=secret dbname=events sslmode=disable",
		cfg.DatabaseDSN(),
	)
}
