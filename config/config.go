package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	SecretKey string `env:"SECRET_KEY,required" validate:"required,min=32"`
	AppURL    string `env:"APP_URL" envDefault:"http://localhost:8080" validate:"required,url"`

	// CookieSecure overrides the production default when set.
	CookieSecure  *bool         `env:"COOKIE_SECURE"`
	CookieDomain  string        `env:"COOKIE_DOMAIN"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h" validate:"min=1m"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"168h" validate:"min=1m"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"12" validate:"min=4,max=31"`

	DirectoryBackend string `env:"DIRECTORY_BACKEND" envDefault:"postgres" validate:"oneof=postgres mongo"`
	DatabaseURL      string `env:"DATABASE_URL"      validate:"required_if=DirectoryBackend postgres"`
	MongoURI         string `env:"MONGO_URI"         validate:"required_if=DirectoryBackend mongo"`
	MongoDatabase    string `env:"MONGO_DATABASE"    envDefault:"student_portal"`

	// AutoMigrate applies the bundled postgres schema at startup.
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"false"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
	OwnerEmail   string `env:"OWNER_EMAIL"    validate:"omitempty,email"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	return cfg, nil
}

// SecureCookies reports whether auth cookies carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	if c.CookieSecure != nil {
		return *c.CookieSecure
	}
	return c.Env == "production"
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
