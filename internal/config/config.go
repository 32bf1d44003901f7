// Package config loads runtime settings from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,       default=8000"`
	LogLevel string `env:"LOG_LEVEL,  default=info"`
	Pretty   bool   `env:"LOG_PRETTY, default=false"`

	Scraper ScraperConfig
	Server  ServerConfig
}

type ScraperConfig struct {
	BaseURL        string        `env:"TRACKING_BASE_URL, default=https://www.rastreadordepacotes.com.br"`
	InterCodeDelay time.Duration `env:"INTER_CODE_DELAY,  default=1200ms"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT,     default=30s"`
}

type ServerConfig struct {
	BatchTimeout time.Duration `env:"BATCH_TIMEOUT, default=5m"`
	MaxCodes     int           `env:"MAX_CODES,     default=50"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the scraper cannot run with
func (c *Config) Validate() error {
	if c.Scraper.InterCodeDelay < 0 {
		return fmt.Errorf("INTER_CODE_DELAY must not be negative")
	}
	if c.Scraper.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.Server.MaxCodes <= 0 {
		return fmt.Errorf("MAX_CODES must be positive")
	}
	if c.Server.BatchTimeout <= 0 {
		return fmt.Errorf("BATCH_TIMEOUT must be positive")
	}
	return nil
}

// Addr returns the address the HTTP server should bind to
func (c *Config) Addr() string {
	return ":" + c.Port
}
