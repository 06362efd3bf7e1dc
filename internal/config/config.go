package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	Env       string `env:"ENV" envDefault:"development"`
	BaseURL   string `env:"BASE_URL" envDefault:"http://localhost:5173"`
	LogMode   string `env:"LOG_MODE"`
	LogRedact bool   `env:"LOG_REDACTION_ENABLED" envDefault:"true"`

	// APIKey guards the local HTTP surface when set.
	APIKey string `env:"LOCAL_API_KEY"`

	Supabase SupabaseConfig

	// DatabaseURL switches profile reads/writes to direct Postgres access.
	DatabaseURL string `env:"DATABASE_URL"`

	// RedisURL switches session caching from memory to Redis.
	RedisURL   string        `env:"REDIS_URL"`
	SessionKey string        `env:"SESSION_STORAGE_KEY" envDefault:"unimag-auth-token"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type SupabaseConfig struct {
	URL         string        `env:"SUPABASE_URL,notEmpty"`
	AnonKey     string        `env:"SUPABASE_ANON_KEY,notEmpty"`
	JWTSecret   string        `env:"SUPABASE_JWT_SECRET"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Supabase.URL = strings.TrimRight(cfg.Supabase.URL, "/")
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.LogMode == "" {
		cfg.LogMode = cfg.Env
	}

	return &cfg, nil
}

// LoadDatabaseURL reads only DATABASE_URL, for tools that never talk to the
// auth provider.
func LoadDatabaseURL() (string, error) {
	_ = godotenv.Load()

	var cfg struct {
		DatabaseURL string `env:"DATABASE_URL,notEmpty"`
	}
	if err := env.Parse(&cfg); err != nil {
		return "", fmt.Errorf("parse env: %w", err)
	}
	return cfg.DatabaseURL, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PasswordResetURL is where the provider's recovery email sends the user.
func (c *Config) PasswordResetURL() string {
	return c.BaseURL + "/reset-password"
}
