package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("expected dev secret fallback")
	}
	if got := cfg.AccessTokenTTL(); got != 24*time.Hour {
		t.Fatalf("expected 24h default TTL, got %v", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TASKNEST_ADDR", ":9090")
	t.Setenv("TASKNEST_JWT_SECRET", "override-secret")
	t.Setenv("TASKNEST_JWT_EXPIRATION_MS", "60000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.JWTSecret != "override-secret" {
		t.Fatalf("unexpected secret %q", cfg.JWTSecret)
	}
	if got := cfg.AccessTokenTTL(); got != time.Minute {
		t.Fatalf("expected 1m TTL, got %v", got)
	}
}

func TestLoadRejectsNonPositiveLifetime(t *testing.T) {
	t.Setenv("TASKNEST_JWT_EXPIRATION_MS", "-5")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative lifetime")
	}
}
