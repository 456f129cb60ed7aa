package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Config reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "CLIENT_ORIGIN", "WORDS_FILE", "DB_DSN", "INVITE_SECRET",
		"INVITE_TTL", "SESSION_IDLE_TTL", "ROOM_IDLE_TTL", "SWEEP_INTERVAL", "REQUEST_TIMEOUT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "5175" || cfg.Addr() != ":5175" {
		t.Fatalf("unexpected port %q", cfg.Port)
	}
	if cfg.InviteTTL != 24*time.Hour || cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected durations %+v", cfg)
	}
	if cfg.SweepEnabled() {
		t.Fatal("sweeping must be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ROOM_IDLE_TTL", "30m")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" || cfg.RoomIdleTTL != 30*time.Minute || !cfg.SweepEnabled() {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("LOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	clearEnv(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug from dotenv, got %q", cfg.LogLevel)
	}
}

func TestLoadError(t *testing.T) {
	clearEnv(t)
	t.Setenv("INVITE_TTL", "forever")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}
