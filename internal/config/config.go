// Package config loads process settings from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	goerrors "github.com/pixil98/go-errors"

	"github.com/aretw0/novella/internal/logging"
)

// Config holds every setting shared by the novella commands.
// Flags override these values after Load.
type Config struct {
	ContentDir     string `env:"NOVELLA_CONTENT_DIR" envDefault:"content/vn-story"`
	ContentVersion string `env:"NOVELLA_CONTENT_VERSION" envDefault:"v1"`
	DefaultLocale  string `env:"NOVELLA_DEFAULT_LOCALE" envDefault:"en-US"`

	Addr      string `env:"NOVELLA_ADDR" envDefault:":5000"`
	LogLevel  string `env:"NOVELLA_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"NOVELLA_LOG_FORMAT" envDefault:"text"`

	RedisAddr     string `env:"NOVELLA_REDIS_ADDR"`
	RedisPassword string `env:"NOVELLA_REDIS_PASSWORD"`
	RedisDB       int    `env:"NOVELLA_REDIS_DB" envDefault:"0"`

	SessionDir    string        `env:"NOVELLA_SESSION_DIR"`
	SessionTTL    time.Duration `env:"NOVELLA_SESSION_TTL" envDefault:"24h"`
	SessionCookie string        `env:"NOVELLA_SESSION_COOKIE" envDefault:"novella_session"`
	// SessionKey is a hex-encoded 32-byte AES key. Empty disables encryption at rest.
	SessionKey string `env:"NOVELLA_SESSION_KEY"`

	Metrics bool `env:"NOVELLA_METRICS" envDefault:"true"`
	Watch   bool `env:"NOVELLA_WATCH" envDefault:"false"`
}

// Load reads an optional .env file from the working directory, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	el := goerrors.NewErrorList()

	if c.ContentDir == "" {
		el.Add(fmt.Errorf("content dir is required"))
	}
	if c.ContentVersion == "" {
		el.Add(fmt.Errorf("content version is required"))
	}
	if c.DefaultLocale == "" {
		el.Add(fmt.Errorf("default locale is required"))
	}
	if _, err := logging.FromConfig(c.LogLevel, c.LogFormat); err != nil {
		el.Add(err)
	}
	if c.RedisDB < 0 {
		el.Add(fmt.Errorf("redis db must not be negative"))
	}
	if c.SessionTTL <= 0 {
		el.Add(fmt.Errorf("session ttl must be positive"))
	}
	if c.SessionCookie == "" {
		el.Add(fmt.Errorf("session cookie name is required"))
	}
	if c.SessionKey != "" {
		if _, err := c.EncryptionKey(); err != nil {
			el.Add(err)
		}
	}

	return el.Err()
}

// EncryptionKey decodes SessionKey. It returns nil when encryption is disabled.
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.SessionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("session key must be hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("session key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
