// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package recommend

import (
	"fmt"
	"time"
)

// Config contains the composer's operational parameters.
type Config struct {
	// MiningTTL is how long a global mining result stays cached.
	// Co-occurrence patterns shift with inventory, so this is short.
	MiningTTL time.Duration `json:"mining_ttl" koanf:"mining_ttl"`

	// MiningTimeout bounds a single mining pass. Calls that complete
	// within the budget produce identical output to unbounded calls.
	MiningTimeout time.Duration `json:"mining_timeout" koanf:"mining_timeout"`

	// MinConfidence is passed through to the miners. It is validated
	// there and reported on itemsets; it does not gate output.
	MinConfidence float64 `json:"min_confidence" koanf:"min_confidence"`

	// DefaultLimit is the list size when a caller passes a non-positive
	// limit.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit caps caller-supplied limits.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MiningTTL:     600 * time.Second,
		MiningTimeout: 30 * time.Second,
		MinConfidence: 0,
		DefaultLimit:  10,
		MaxLimit:      100,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.MiningTTL <= 0 {
		return fmt.Errorf("mining_ttl must be positive, got %v", c.MiningTTL)
	}
	if c.MiningTimeout <= 0 {
		return fmt.Errorf("mining_timeout must be positive, got %v", c.MiningTimeout)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0, 1], got %v", c.MinConfidence)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit %d below default_limit %d", c.MaxLimit, c.DefaultLimit)
	}
	return nil
}
