// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package config loads server and training configuration.
//
// Values are layered with koanf: built-in defaults, then an optional YAML
// file, then environment variables. See LoadWithKoanf.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/content"
	"github.com/tomtom215/cinerank/internal/recommend/latent"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	API       APIConfig       `koanf:"api"`
	Database  DatabaseConfig  `koanf:"database"`
	Data      DataConfig      `koanf:"data"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Recommend RecommendConfig `koanf:"recommend"`
	Training  TrainingConfig  `koanf:"training"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"` // per-request handler deadline
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller adds file:line to every entry.
	Caller bool `koanf:"caller"`
}

// APIConfig holds HTTP API behavior.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"` // 0 disables rate limiting
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// CacheSize is the number of recommendation responses kept in the
	// LRU cache. 0 disables caching.
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// DatabaseConfig holds DuckDB settings for the ratings warehouse.
type DatabaseConfig struct {
	Path      string `koanf:"path"` // empty for in-memory
	Threads   int    `koanf:"threads"`
	MaxMemory string `koanf:"max_memory"`
}

// DataConfig locates the MovieLens source files.
type DataConfig struct {
	MoviesPath  string `koanf:"movies_path"`
	RatingsPath string `koanf:"ratings_path"`
	Separator   string `koanf:"separator"`

	// Encoding is latin1 (MovieLens 1M) or utf8.
	Encoding string `koanf:"encoding"`
}

// ArtifactsConfig controls where trained bundles live and how the server
// picks them up.
type ArtifactsConfig struct {
	Dir  string `koanf:"dir"`
	Name string `koanf:"name"`

	// Version pins the served version. 0 serves the latest.
	Version int `koanf:"version"`

	// Watch reloads the engine when a new bundle appears in Dir.
	Watch        bool          `koanf:"watch"`
	PollInterval time.Duration `koanf:"poll_interval"`

	// KeepVersions is how many bundles train keeps after saving.
	KeepVersions int `koanf:"keep_versions"`
}

// RecommendConfig holds request defaults and limits.
type RecommendConfig struct {
	DefaultAlpha float64 `koanf:"default_alpha"`
	DefaultLimit int     `koanf:"default_limit"`
	MaxLimit     int     `koanf:"max_limit"`
	MaxSeeds     int     `koanf:"max_seeds"`

	// PopularMinRatings is the rating count a movie must exceed to be
	// listed as popular.
	PopularMinRatings int `koanf:"popular_min_ratings"`
}

// TrainingConfig holds model fitting parameters.
type TrainingConfig struct {
	Factors        int     `koanf:"factors"`
	Epochs         int     `koanf:"epochs"`
	LearningRate   float64 `koanf:"learning_rate"`
	Regularization float64 `koanf:"regularization"`
	InitStdDev     float64 `koanf:"init_std_dev"`
	Seed           int64   `koanf:"seed"`
	MinRating      float64 `koanf:"min_rating"`
	MaxRating      float64 `koanf:"max_rating"`

	// MinDocFreq drops vocabulary terms seen in fewer movies.
	MinDocFreq int `koanf:"min_doc_freq"`

	// SublinearTF weights terms by 1 + ln(count) instead of the raw count.
	SublinearTF bool `koanf:"sublinear_tf"`
}

// Engine converts the recommend section to the engine's configuration.
func (r RecommendConfig) Engine() *recommend.Config {
	return &recommend.Config{
		DefaultAlpha: r.DefaultAlpha,
		DefaultLimit: r.DefaultLimit,
		MaxLimit:     r.MaxLimit,
		MaxSeeds:     r.MaxSeeds,
	}
}

// SGD converts the training section to trainer parameters.
func (t TrainingConfig) SGD() latent.TrainConfig {
	cfg := latent.DefaultTrainConfig()
	cfg.Factors = t.Factors
	cfg.Epochs = t.Epochs
	cfg.LearningRate = t.LearningRate
	cfg.Regularization = t.Regularization
	cfg.InitStdDev = t.InitStdDev
	cfg.Seed = t.Seed
	cfg.MinRating = t.MinRating
	cfg.MaxRating = t.MaxRating
	return cfg
}

// TFIDF converts the training section to vectorizer parameters.
func (t TrainingConfig) TFIDF() content.FitConfig {
	return content.FitConfig{MinDocFreq: t.MinDocFreq, SublinearTF: t.SublinearTF}
}

// Logger converts the logging section to logger configuration.
func (l LoggingConfig) Logger() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	logCfg := c.Logging.Logger()
	if err := logCfg.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateArtifacts(); err != nil {
		return err
	}
	if err := c.Recommend.Engine().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if c.Recommend.PopularMinRatings < 0 {
		return errors.New("recommend: popular_min_ratings must be non-negative")
	}
	sgd := c.Training.SGD()
	if err := sgd.Validate(); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server: shutdown_timeout must be positive")
	}
	if c.Server.RequestTimeout < 0 {
		return errors.New("server: request_timeout must be non-negative")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.RateLimitRequests < 0 {
		return errors.New("api: rate_limit_requests must be non-negative")
	}
	if c.API.RateLimitRequests > 0 && c.API.RateLimitWindow <= 0 {
		return errors.New("api: rate_limit_window must be positive when rate limiting is enabled")
	}
	if c.API.CacheSize < 0 {
		return errors.New("api: cache_size must be non-negative")
	}
	if c.API.CacheSize > 0 && c.API.CacheTTL <= 0 {
		return errors.New("api: cache_ttl must be positive when caching is enabled")
	}
	return nil
}

func (c *Config) validateData() error {
	if c.Data.Separator == "" {
		return errors.New("data: separator must not be empty")
	}
	switch c.Data.Encoding {
	case "latin1", "utf8":
		return nil
	default:
		return fmt.Errorf("data: encoding must be latin1 or utf8, got %q", c.Data.Encoding)
	}
}

func (c *Config) validateArtifacts() error {
	if c.Artifacts.Dir == "" {
		return errors.New("artifacts: dir must not be empty")
	}
	if c.Artifacts.Name == "" {
		return errors.New("artifacts: name must not be empty")
	}
	if c.Artifacts.Version < 0 {
		return errors.New("artifacts: version must be non-negative")
	}
	if c.Artifacts.KeepVersions < 0 {
		return errors.New("artifacts: keep_versions must be non-negative")
	}
	return nil
}
