package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresJWTKey(t *testing.T) {
	if _, err := Load(nil); err == nil {
		t.Fatalf("want error when jwt key is missing")
	}
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	cfg, err := Load([]string{
		"-jwt-key", "secret",
		"-addr", ":9999",
		"-access-ttl", "1h",
		"-login-max-fails", "3",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	if cfg.AccessTTL != time.Hour {
		t.Fatalf("ttl=%v", cfg.AccessTTL)
	}
	if cfg.LoginMaxFails != 3 {
		t.Fatalf("maxFails=%d", cfg.LoginMaxFails)
	}
}

func TestLoad_EnvFallback(t *testing.T) {
	t.Setenv("KANBAN_JWT_KEY", "env-secret")
	t.Setenv("KANBAN_ADDR", ":4321")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTKey != "env-secret" || cfg.Addr != ":4321" {
		t.Fatalf("env fallback not applied: %+v", cfg)
	}
}
