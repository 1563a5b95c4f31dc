package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// defaultSecret is only acceptable for local development; production
// deployments must set TASKNEST_JWT_SECRET.
const defaultSecret = "tasknest-dev-secret-1234567890abcdefghijklmnopqrstuvwxyz"

// Config holds all runtime settings, sourced from environment variables.
type Config struct {
	Addr        string `env:"TASKNEST_ADDR" envDefault:":8080"`
	DatabaseDSN string `env:"TASKNEST_PG_DSN"`

	JWTSecret         string `env:"TASKNEST_JWT_SECRET"`
	AccessTokenLifeMS int64  `env:"TASKNEST_JWT_EXPIRATION_MS" envDefault:"86400000"`

	RateBurst  int `env:"TASKNEST_RATE_BURST" envDefault:"50"`
	RatePerSec int `env:"TASKNEST_RATE_PER_SEC" envDefault:"25"`

	MigrationsDir string `env:"TASKNEST_MIGRATIONS_DIR" envDefault:"migrations"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultSecret
	}
	if cfg.AccessTokenLifeMS <= 0 {
		return Config{}, fmt.Errorf("TASKNEST_JWT_EXPIRATION_MS must be positive, got %d", cfg.AccessTokenLifeMS)
	}
	return cfg, nil
}

// AccessTokenTTL converts the configured millisecond lifetime to a Duration.
// The refresh token lifetime is always derived as seven times this value.
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenLifeMS) * time.Millisecond
}
