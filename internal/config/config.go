// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

// Package config loads and validates the Basketwise service configuration.
//
// Configuration is layered with koanf: built-in defaults, then an optional
// YAML file, then environment variables. ENV beats file beats defaults.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/basketwise/basketwise/internal/logging"
	"github.com/basketwise/basketwise/internal/recommend"
	"github.com/basketwise/basketwise/internal/storage"
)

// Config is the root configuration for the service.
type Config struct {
	Server     ServerConfig                  `koanf:"server"`
	Storage    StorageConfig                 `koanf:"storage"`
	Engagement storage.EngagementStoreConfig `koanf:"engagement"`
	Recommend  recommend.Config              `koanf:"recommend"`
	Events     EventsConfig                  `koanf:"events"`
	Logging    logging.Config                `koanf:"logging"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`

	// RateLimit is requests per minute per client IP. Zero disables limiting.
	RateLimit int `koanf:"rate_limit" validate:"min=0"`

	// CORSOrigins lists allowed origins. Defaults to all.
	CORSOrigins []string `koanf:"cors_origins"`
}

// StorageConfig configures the order and product catalog database.
type StorageConfig struct {
	// DataDir holds the SQLite database. ":memory:" runs without disk.
	DataDir string `koanf:"data_dir" validate:"required"`
}

// EventsConfig configures the async engagement event pipeline.
type EventsConfig struct {
	// Buffer is the in-flight event channel capacity.
	Buffer int64 `koanf:"buffer" validate:"min=1"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       300,
			CORSOrigins:     []string{"*"},
		},
		Storage: StorageConfig{
			DataDir: "/data",
		},
		Engagement: storage.EngagementStoreConfig{
			Path:       "/data/engagement",
			InMemory:   false,
			SyncWrites: false,
		},
		Recommend: recommend.DefaultConfig(),
		Events: EventsConfig{
			Buffer: 256,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

var validate = validator.New()

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return err
	}
	return nil
}
