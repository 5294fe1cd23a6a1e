package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/synth"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.DB.Path != ":memory:" {
		t.Errorf("expected in-memory database, got %s", cfg.DB.Path)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("expected 30m session TTL, got %v", cfg.Session.TTL)
	}
	if cfg.Synth.Seed != 0 {
		t.Errorf("expected seed 0, got %d", cfg.Synth.Seed)
	}
	if cfg.Server.RateLimitIdle != 10*time.Minute {
		t.Errorf("expected 10m rate limit idle window, got %v", cfg.Server.RateLimitIdle)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SYNTH_SEED", "1234")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Synth.Seed != 1234 {
		t.Errorf("expected seed 1234, got %d", cfg.Synth.Seed)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("expected 2h TTL, got %v", cfg.Session.TTL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"SERVER_PORT", "70000"},
		{"LOG_LEVEL", "verbose"},
		{"SESSION_TTL", "5s"},
		{"RATE_LIMIT_RPS", "0"},
		{"RATE_LIMIT_IDLE", "10ms"},
		{"ENSEMBLE_WORKERS", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	params, err := LoadScenario("")
	if err != nil {
		t.Fatalf("LoadScenario with empty path failed: %v", err)
	}
	if params != synth.DefaultParams() {
		t.Errorf("expected default params, got %+v", params)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	data := []byte("start_year: 2000\nend_year: 2009\ntemp_noise: 0.3\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	params, err = LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if params.StartYear != 2000 || params.EndYear != 2009 || params.TempNoise != 0.3 {
		t.Errorf("scenario not applied: %+v", params)
	}
	if params.Sensitivity != 20 {
		t.Errorf("expected default sensitivity to be kept, got %v", params.Sensitivity)
	}
}

func TestLoadScenario_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	os.WriteFile(path, []byte("start_year: 2030\nend_year: 2000\n"), 0o644)

	if _, err := LoadScenario(path); !errors.Is(err, synth.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}

	if _, err := LoadScenario(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
