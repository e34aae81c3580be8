package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"

	"github.com/Simplici0/fleetprice/internal/logging"
)

// State store backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendFile     = "file"
	BackendRedis    = "redis"
)

// Config holds process configuration sourced from environment variables.
type Config struct {
	Env              string        `env:"APP_ENV" envDefault:"development"`
	Port             string        `env:"PORT" envDefault:"8080"`
	Password         string        `env:"APP_PASSWORD"`
	SessionSecret    string        `env:"SESSION_SECRET"`
	StateBackend     string        `env:"STATE_BACKEND" envDefault:"sqlite"`
	DBPath           string        `env:"DB_PATH" envDefault:"./dev.db"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"2m"`
	StateFile        string        `env:"STATE_FILE" envDefault:"./state.json"`
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	PricingConfig    string        `env:"PRICING_CONFIG"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"console"`
	LogOutput        string        `env:"LOG_OUTPUT" envDefault:"stderr"`
}

// Load reads a local .env file, then the environment, and validates the result.
func Load() (Config, error) {
	// Real environment always wins over the dotenv file.
	if _, err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Password != "" && cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required when APP_PASSWORD is set")
	}

	switch cfg.StateBackend {
	case BackendSQLite, BackendFile:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for the postgres state backend")
		}
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return Config{}, fmt.Errorf("REDIS_ADDR is required for the redis state backend")
		}
	default:
		return Config{}, fmt.Errorf("STATE_BACKEND %q is not one of sqlite, postgres, file, redis", cfg.StateBackend)
	}

	return cfg, nil
}

// IsDev reports whether the process runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "dev"
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	return logging.Config{
		Level:       c.LogLevel,
		Format:      c.LogFormat,
		Output:      c.LogOutput,
		Development: c.IsDev(),
	}
}

// Warnings lists settings that are allowed but probably unintended.
func (c Config) Warnings() []string {
	var out []string
	if c.Password == "" {
		out = append(out, "APP_PASSWORD is not set; the API is open")
	}
	return out
}
