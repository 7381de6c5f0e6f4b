package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the service configuration, sourced from the environment.
type Config struct {
	Addr      string        `env:"VUGRU_ADDR" envDefault:":8080"`
	DBPath    string        `env:"VUGRU_DB_PATH" envDefault:"data/vugru.db"`
	StaticDir string        `env:"VUGRU_STATIC_DIR" envDefault:"web/dist"`
	JWTSecret string        `env:"VUGRU_JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenTTL  time.Duration `env:"VUGRU_TOKEN_TTL" envDefault:"24h"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
