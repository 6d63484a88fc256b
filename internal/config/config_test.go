package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FANTRAX_TEAM_ID", "t1")
	t.Setenv("FANTRAX_LEAGUE_ID", "l1")
	t.Setenv("FANTRAX_COOKIE", "JSESSIONID=abc")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StorageDriver != DriverMemory {
		t.Fatalf("expected memory driver default, got %s", cfg.StorageDriver)
	}
	if cfg.CycleInterval != 15*time.Minute || cfg.CycleTimeout != 2*time.Minute {
		t.Fatalf("unexpected cycle defaults: %v %v", cfg.CycleInterval, cfg.CycleTimeout)
	}
	if cfg.FormationGK != 1 || cfg.FormationDEF != 4 || cfg.FormationMID != 4 || cfg.FormationFWD != 2 {
		t.Fatal("unexpected formation defaults")
	}
	if cfg.ExecutorMaxAttempts != 3 {
		t.Fatalf("unexpected executor attempts default: %d", cfg.ExecutorMaxAttempts)
	}
	if cfg.PeriodID != 0 {
		t.Fatalf("period should default to platform-resolved, got %d", cfg.PeriodID)
	}
}

func TestLoadRequiresTeamAndLeague(t *testing.T) {
	t.Setenv("FANTRAX_TEAM_ID", "")
	t.Setenv("FANTRAX_LEAGUE_ID", "")
	t.Setenv("FANTRAX_COOKIE", "JSESSIONID=abc")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation failure without team and league")
	}
}

func TestLoadPostgresRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_DRIVER", DriverPostgres)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("postgres driver without DATABASE_URL should fail")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/fantrax?sslmode=disable")
	if _, err := Load(); err != nil {
		t.Fatalf("expected success with DATABASE_URL, got %v", err)
	}
}

func TestLoadCookieFileOverridesInline(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "cookie")
	if err := os.WriteFile(path, []byte("JSESSIONID=fromfile\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FANTRAX_COOKIE_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FantraxCookie != "JSESSIONID=fromfile" {
		t.Fatalf("cookie file should win, got %q", cfg.FantraxCookie)
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CYCLE_INTERVAL", "every-hour")

	if _, err := Load(); err == nil {
		t.Fatal("expected duration parse failure")
	}
}
