// Package config loads library defaults from environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all transfer client configuration.
type Config struct {
	Client  ClientConfig
	Logging LogConfig
}

// ClientConfig holds HTTP client defaults.
type ClientConfig struct {
	CookieFile     string `envconfig:"TRANSFER_COOKIE_FILE" default:"cookies.json"`
	TimeoutSeconds int    `envconfig:"TRANSFER_TIMEOUT" default:"0"`
	UserAgent      string `envconfig:"TRANSFER_USER_AGENT" default:"transferkit/1.0"`
	ChunkSize      int    `envconfig:"TRANSFER_CHUNK_SIZE" default:"8192"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"TRANSFER_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"TRANSFER_LOG_DEV" default:"false"`
	FilePath    string `envconfig:"TRANSFER_LOG_FILE" default:""`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			CookieFile:     "cookies.json",
			TimeoutSeconds: 0,
			UserAgent:      "transferkit/1.0",
			ChunkSize:      8192,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
