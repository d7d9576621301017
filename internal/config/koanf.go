// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config files searched in order when no
// explicit path is given. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinerank/config.yaml",
	"/etc/cinerank/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		API: APIConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CacheSize:         1024,
			CacheTTL:          5 * time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "/data/cinerank.duckdb",
			MaxMemory: "1GB",
		},
		Data: DataConfig{
			MoviesPath:  "/data/ml-1m/movies.dat",
			RatingsPath: "/data/ml-1m/ratings.dat",
			Separator:   "::",
			Encoding:    "latin1",
		},
		Artifacts: ArtifactsConfig{
			Dir:          "/data/models",
			Name:         "movielens",
			Watch:        true,
			KeepVersions: 3,
		},
		Recommend: RecommendConfig{
			DefaultAlpha:      0.6,
			DefaultLimit:      10,
			MaxLimit:          100,
			MaxSeeds:          5,
			PopularMinRatings: 10,
		},
		Training: TrainingConfig{
			Factors:        100,
			Epochs:         20,
			LearningRate:   0.005,
			Regularization: 0.02,
			InitStdDev:     0.1,
			Seed:           42,
			MinRating:      1,
			MaxRating:      5,
			MinDocFreq:     1,
		},
	}
}

// LoadWithKoanf loads configuration from, in increasing priority:
//  1. built-in defaults
//  2. the YAML file at path, or the first file found by findConfigFile
//     when path is empty (a missing default file is not an error)
//  3. environment variables listed in envMappings
//
// The result is validated before it is returned.
func LoadWithKoanf(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without file or env overrides.
func Default() *Config {
	return defaultConfig()
}

// findConfigFile returns CONFIG_PATH if it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored so unrelated environment does not leak
// into the configuration.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_request_timeout":  "server.request_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"cors_origins":        "api.cors_origins",
	"rate_limit_requests": "api.rate_limit_requests",
	"rate_limit_window":   "api.rate_limit_window",
	"api_cache_size":      "api.cache_size",
	"api_cache_ttl":       "api.cache_ttl",

	"duckdb_path":       "database.path",
	"duckdb_threads":    "database.threads",
	"duckdb_max_memory": "database.max_memory",

	"movies_path":    "data.movies_path",
	"ratings_path":   "data.ratings_path",
	"data_separator": "data.separator",
	"data_encoding":  "data.encoding",

	"artifacts_dir":           "artifacts.dir",
	"artifacts_name":          "artifacts.name",
	"artifacts_version":       "artifacts.version",
	"artifacts_watch":         "artifacts.watch",
	"artifacts_poll_interval": "artifacts.poll_interval",
	"artifacts_keep_versions": "artifacts.keep_versions",

	"recommend_default_alpha":       "recommend.default_alpha",
	"recommend_default_limit":       "recommend.default_limit",
	"recommend_max_limit":           "recommend.max_limit",
	"recommend_max_seeds":           "recommend.max_seeds",
	"recommend_popular_min_ratings": "recommend.popular_min_ratings",

	"train_factors":        "training.factors",
	"train_epochs":         "training.epochs",
	"train_learning_rate":  "training.learning_rate",
	"train_regularization": "training.regularization",
	"train_init_std_dev":   "training.init_std_dev",
	"train_seed":           "training.seed",
	"train_min_rating":     "training.min_rating",
	"train_max_rating":     "training.max_rating",
	"train_min_doc_freq":   "training.min_doc_freq",
	"train_sublinear_tf":   "training.sublinear_tf",
}

// envTransformFunc maps an environment variable name to its koanf path, or
// "" to skip it.
//
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - TRAIN_EPOCHS -> training.epochs
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
