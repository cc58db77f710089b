// Package config loads and validates application configuration from
// environment variables, optionally layered over a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for the CLI and the calendar service.
// Values are populated by Load from environment variables.
type Config struct {
	// APIBaseURL is the root of the upstream log API, e.g. "http://localhost:5000". Required.
	APIBaseURL string

	// APIFlavor selects the upstream dialect: "logs" (treatment-aware) or "events".
	// Defaults to "logs".
	APIFlavor string

	// APIListPath overrides the path entries are listed from, e.g. "/logs/data".
	// Empty (the default) uses the flavor's collection path.
	APIListPath string

	// Port is the TCP port the calendar service listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// WeekStart is the first column of the month grid: Sunday (default) or Monday.
	WeekStart time.Weekday

	// RequestTimeout bounds each upstream request. Zero (the default) means no timeout.
	RequestTimeout time.Duration

	// CacheTTL is how long a fetched month is served from cache. Defaults to 30s.
	CacheTTL time.Duration

	// RefreshCron is the standard cron expression on which the cache is dropped
	// while the service runs. Defaults to every 15 minutes.
	RefreshCron string

	// MaxBodyBytes caps request bodies on the calendar service. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// fileConfig is the YAML overlay read from CONFIG_FILE.
// Environment variables take precedence over every field.
type fileConfig struct {
	APIBaseURL     string   `yaml:"api_base_url"`
	APIFlavor      string   `yaml:"api_flavor"`
	APIListPath    string   `yaml:"api_list_path"`
	Port           string   `yaml:"port"`
	LogLevel       string   `yaml:"log_level"`
	CORSOrigins    []string `yaml:"cors_origins"`
	WeekStart      string   `yaml:"week_start"`
	RequestTimeout string   `yaml:"request_timeout"`
	CacheTTL       string   `yaml:"cache_ttl"`
	RefreshCron    string   `yaml:"refresh_cron"`
	MaxBodyBytes   string   `yaml:"max_body_bytes"`
}

// Load reads configuration from environment variables and returns a Config.
// When CONFIG_FILE names a YAML file its values replace the built-in defaults.
// Returns an error listing every required variable that is not set and
// every value that does not parse.
func Load() (Config, error) {
	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		f, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		file = f
	}

	cfg := Config{
		APIBaseURL:  getEnv("API_BASE_URL", file.APIBaseURL),
		APIFlavor:   strings.ToLower(getEnv("API_FLAVOR", or(file.APIFlavor, "logs"))),
		APIListPath: getEnv("API_LIST_PATH", file.APIListPath),
		Port:        getEnv("PORT", or(file.Port, "8080")),
		LogLevel:    getEnv("LOG_LEVEL", or(file.LogLevel, "info")),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", or(strings.Join(file.CORSOrigins, ","), "http://localhost:5173"))),
		RefreshCron: getEnv("REFRESH_CRON", or(file.RefreshCron, "*/15 * * * *")),
	}

	var missing, invalid []string

	if cfg.APIBaseURL == "" {
		missing = append(missing, "API_BASE_URL")
	}
	if cfg.APIFlavor != "logs" && cfg.APIFlavor != "events" {
		invalid = append(invalid, "API_FLAVOR="+cfg.APIFlavor)
	}

	switch ws := strings.ToLower(getEnv("WEEK_START", or(file.WeekStart, "sunday"))); ws {
	case "sunday":
		cfg.WeekStart = time.Sunday
	case "monday":
		cfg.WeekStart = time.Monday
	default:
		invalid = append(invalid, "WEEK_START="+ws)
	}

	var err error
	if cfg.RequestTimeout, err = parseDuration(getEnv("REQUEST_TIMEOUT", or(file.RequestTimeout, "0"))); err != nil {
		invalid = append(invalid, "REQUEST_TIMEOUT")
	}
	if cfg.CacheTTL, err = parseDuration(getEnv("CACHE_TTL", or(file.CacheTTL, "30s"))); err != nil {
		invalid = append(invalid, "CACHE_TTL")
	}
	if _, err := cron.ParseStandard(cfg.RefreshCron); err != nil {
		invalid = append(invalid, "REFRESH_CRON")
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", or(file.MaxBodyBytes, "1048576")), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid values: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, fmt.Errorf("%s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fileConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return f, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// parseDuration accepts Go durations ("30s") and bare seconds ("30").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
