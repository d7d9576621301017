// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package recommend

import "fmt"

// Config contains request limits and defaults for the engine.
type Config struct {
	// DefaultAlpha is the content weight used when a caller does not supply one.
	DefaultAlpha float64 `json:"default_alpha"`

	// DefaultLimit is the result count used when a caller does not supply one.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps the result count of a single request.
	MaxLimit int `json:"max_limit"`

	// MaxSeeds caps the number of distinct seed items per request.
	MaxSeeds int `json:"max_seeds"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultAlpha: 0.6,
		DefaultLimit: 10,
		MaxLimit:     100,
		MaxSeeds:     5,
	}
}

// Validate checks configuration values.
func (c *Config) Validate() error {
	if !(c.DefaultAlpha >= 0 && c.DefaultAlpha <= 1) {
		return fmt.Errorf("default_alpha must be in [0,1], got %v", c.DefaultAlpha)
	}
	if c.MaxLimit <= 0 {
		return fmt.Errorf("max_limit must be positive, got %d", c.MaxLimit)
	}
	if c.DefaultLimit <= 0 || c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default_limit must be in [1,%d], got %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.MaxSeeds <= 0 {
		return fmt.Errorf("max_seeds must be positive, got %d", c.MaxSeeds)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
