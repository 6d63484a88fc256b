// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	AppEnv   string `validate:"required,oneof=development staging production"`
	LogLevel string `validate:"required,oneof=debug info warn error"`

	HTTPAddr string `validate:"required"`

	StorageDriver string `validate:"required,oneof=memory postgres"`
	DatabaseURL   string `validate:"required_if=StorageDriver postgres"`

	TeamID string `validate:"required"`
	// PeriodID pins cycles to one scoring period; zero means resolve
	// the current period from the platform on every run.
	PeriodID int `validate:"gte=0"`

	FantraxBaseURL        string        `validate:"required,url"`
	FantraxLeagueID       string        `validate:"required"`
	FantraxCookie         string        `validate:"required"`
	FantraxTimeout        time.Duration `validate:"gt=0"`
	FantraxMaxRetries     int           `validate:"gte=1,lte=10"`
	FantraxRetryBaseDelay time.Duration `validate:"gt=0"`

	CycleInterval time.Duration `validate:"gt=0"`
	CycleTimeout  time.Duration `validate:"gt=0"`

	ExecutorMaxAttempts    int           `validate:"gte=1,lte=10"`
	ExecutorRetryBaseDelay time.Duration `validate:"gt=0"`
	ExecutorPoolSize       int           `validate:"gte=1,lte=16"`

	EnrichmentParallelism int           `validate:"gte=1,lte=32"`
	CacheTTL              time.Duration `validate:"gt=0"`

	FormationGK  int `validate:"gte=1"`
	FormationDEF int `validate:"gte=1"`
	FormationMID int `validate:"gte=1"`
	FormationFWD int `validate:"gte=1"`

	ServiceName    string
	ServiceVersion string
	UptraceDSN     string
	PyroscopeAddr  string
	PprofAddr      string
}

// Load reads configuration from the environment. The Fantrax session
// cookie may come inline (FANTRAX_COOKIE) or from a file
// (FANTRAX_COOKIE_FILE); the file wins when both are set.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		StorageDriver: getEnv("STORAGE_DRIVER", DriverMemory),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		TeamID: os.Getenv("FANTRAX_TEAM_ID"),

		FantraxBaseURL:  getEnv("FANTRAX_BASE_URL", "https://www.fantrax.com"),
		FantraxLeagueID: os.Getenv("FANTRAX_LEAGUE_ID"),
		FantraxCookie:   os.Getenv("FANTRAX_COOKIE"),

		ServiceName:    getEnv("SERVICE_NAME", "fantrax-team-manager"),
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
		UptraceDSN:     os.Getenv("UPTRACE_DSN"),
		PyroscopeAddr:  os.Getenv("PYROSCOPE_ADDR"),
		PprofAddr:      os.Getenv("PPROF_ADDR"),
	}

	var err error
	if cfg.FantraxTimeout, err = getEnvDuration("FANTRAX_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.FantraxMaxRetries, err = getEnvInt("FANTRAX_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.FantraxRetryBaseDelay, err = getEnvDuration("FANTRAX_RETRY_BASE_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.CycleInterval, err = getEnvDuration("CYCLE_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CycleTimeout, err = getEnvDuration("CYCLE_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ExecutorMaxAttempts, err = getEnvInt("EXECUTOR_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.ExecutorRetryBaseDelay, err = getEnvDuration("EXECUTOR_RETRY_BASE_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.ExecutorPoolSize, err = getEnvInt("EXECUTOR_POOL_SIZE", 2); err != nil {
		return nil, err
	}
	if cfg.EnrichmentParallelism, err = getEnvInt("ENRICHMENT_PARALLELISM", 4); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.FormationGK, err = getEnvInt("FORMATION_GK", 1); err != nil {
		return nil, err
	}
	if cfg.FormationDEF, err = getEnvInt("FORMATION_DEF", 4); err != nil {
		return nil, err
	}
	if cfg.FormationMID, err = getEnvInt("FORMATION_MID", 4); err != nil {
		return nil, err
	}
	if cfg.FormationFWD, err = getEnvInt("FORMATION_FWD", 2); err != nil {
		return nil, err
	}
	if cfg.PeriodID, err = getEnvInt("FANTRAX_PERIOD_ID", 0); err != nil {
		return nil, err
	}

	if path := os.Getenv("FANTRAX_COOKIE_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read FANTRAX_COOKIE_FILE: %w", err)
		}
		cfg.FantraxCookie = strings.TrimSpace(string(raw))
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a duration: %w", key, err)
	}
	return parsed, nil
}
