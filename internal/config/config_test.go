package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	os.Unsetenv("DAIRY_API_BASE_URL")
	os.Unsetenv("DAIRY_ROUTING_TIMEOUT")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:8000/core/api" {
		t.Fatalf("unexpected api default: %q", cfg.API.BaseURL)
	}
	if cfg.Routing.Timeout != 5*time.Second || cfg.Routing.Profile != "driving" {
		t.Fatalf("unexpected routing defaults: %+v", cfg.Routing)
	}
	if cfg.Routing.DepotLat != -17.393879 || cfg.Routing.DepotLng != -66.156944 {
		t.Fatalf("unexpected depot: %+v", cfg.Routing)
	}
	if !cfg.Dispatch.RequireCoordinates {
		t.Fatalf("require_coordinates should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DAIRY_API_BASE_URL", "https://dispatch.example.com/core/api")
	t.Setenv("DAIRY_ROUTING_TIMEOUT", "1500ms")
	cfg, err := Load(New(), writeConfig(t, "log:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://dispatch.example.com/core/api" {
		t.Fatalf("env override not applied: %q", cfg.API.BaseURL)
	}
	if cfg.Routing.Timeout != 1500*time.Millisecond {
		t.Fatalf("duration override not applied: %s", cfg.Routing.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("file value not applied: %q", cfg.Log.Level)
	}
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	t.Setenv("DAIRY_API_BASE_URL", "not-a-url")
	if _, err := Load(New(), writeConfig(t, "")); err == nil {
		t.Fatalf("expected error for relative api.base_url")
	}

	t.Setenv("DAIRY_API_BASE_URL", "http://localhost:8000/core/api")
	t.Setenv("DAIRY_ROUTING_TIMEOUT", "0s")
	if _, err := Load(New(), writeConfig(t, "")); err == nil {
		t.Fatalf("expected error for zero routing timeout")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "dairyctl.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}
