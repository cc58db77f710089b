package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkordes/cyclelog/internal/config"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "API_BASE_URL", "API_FLAVOR", "API_LIST_PATH", "PORT", "LOG_LEVEL", "CORS_ORIGINS",
		"WEEK_START", "REQUEST_TIMEOUT", "CACHE_TTL", "REFRESH_CRON", "MAX_BODY_BYTES",
	} {
		t.Setenv(k, "")
	}
}

// TestLoad_defaults verifies that optional env vars fall back to their defaults
// when only the required API_BASE_URL is provided.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "http://localhost:5000")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	require.Equal(t, "logs", cfg.APIFlavor)
	require.Empty(t, cfg.APIListPath, "flavor default")
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, time.Sunday, cfg.WeekStart)
	require.Zero(t, cfg.RequestTimeout, "no timeout by default")
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Equal(t, "*/15 * * * *", cfg.RefreshCron)
	require.EqualValues(t, 1<<20, cfg.MaxBodyBytes)
}

// TestLoad_overrides verifies that all values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_FLAVOR", "Events")
	t.Setenv("API_LIST_PATH", "/logs/data")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("WEEK_START", "monday")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("CACHE_TTL", "90")
	t.Setenv("REFRESH_CRON", "0 * * * *")
	t.Setenv("MAX_BODY_BYTES", "2048")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "events", cfg.APIFlavor)
	require.Equal(t, "/logs/data", cfg.APIListPath)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	require.Equal(t, time.Monday, cfg.WeekStart)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, 90*time.Second, cfg.CacheTTL)
	require.Equal(t, "0 * * * *", cfg.RefreshCron)
	require.EqualValues(t, 2048, cfg.MaxBodyBytes)
}

// TestLoad_missingRequired verifies that an error is returned when API_BASE_URL
// is not set, and that the error message names the missing variable.
func TestLoad_missingRequired(t *testing.T) {
	clearEnv(t)

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "API_BASE_URL")
}

// TestLoad_invalidValues verifies that every unparseable value is named.
func TestLoad_invalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "http://localhost:5000")
	t.Setenv("API_FLAVOR", "graphql")
	t.Setenv("WEEK_START", "friday")
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("REFRESH_CRON", "every minute")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "API_FLAVOR=graphql")
	require.ErrorContains(t, err, "WEEK_START=friday")
	require.ErrorContains(t, err, "CACHE_TTL")
	require.ErrorContains(t, err, "REFRESH_CRON")
}

// TestLoad_fileOverlay verifies that CONFIG_FILE supplies values and that
// environment variables still win over it.
func TestLoad_fileOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cyclelog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: http://upstream:5000
api_flavor: events
api_list_path: logs/data
port: "7070"
cors_origins:
  - https://one.example.com
  - https://two.example.com
week_start: monday
cache_ttl: 1m
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9999")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "http://upstream:5000", cfg.APIBaseURL)
	require.Equal(t, "events", cfg.APIFlavor)
	require.Equal(t, "logs/data", cfg.APIListPath)
	require.Equal(t, "9999", cfg.Port, "env overrides the file")
	require.Equal(t, []string{"https://one.example.com", "https://two.example.com"}, cfg.CORSOrigins)
	require.Equal(t, time.Monday, cfg.WeekStart)
	require.Equal(t, time.Minute, cfg.CacheTTL)
}

// TestLoad_fileMissing verifies that a CONFIG_FILE that cannot be read is an error.
func TestLoad_fileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := config.Load()

	require.ErrorContains(t, err, "nope.yaml")
}
