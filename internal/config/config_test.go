package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Credits.DefaultBalance)
	assert.Equal(t, 100, cfg.Catalog.MaxPageSize)
	assert.Equal(t, 10*time.Minute, cfg.Catalog.CursorTTL)
	assert.Equal(t, "village", cfg.Suggest.ExcludedType)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CREDITS_DEFAULT_BALANCE", "12")
	t.Setenv("CATALOG_MAX_PAGE_SIZE", "50")
	t.Setenv("SUGGEST_TIMEOUT", "2s")
	t.Setenv("LOGGER_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Credits.DefaultBalance)
	assert.Equal(t, 50, cfg.Catalog.MaxPageSize)
	assert.Equal(t, 2*time.Second, cfg.Suggest.Timeout)
	assert.Equal(t, "text", cfg.Logger.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"LOGGER_LEVEL":              "loud",
		"DATABASE_SSLMODE":          "sometimes",
		"CATALOG_DEFAULT_PAGE_SIZE": "500",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", Name: "maps", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/maps?sslmode=disable", c.DSN())
}
