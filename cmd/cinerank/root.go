// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerank/internal/config"
	"github.com/tomtom215/cinerank/internal/database"
	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
)

var (
	configPath string
	logLevel   string

	// cfg is set by the root command before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cinerank",
	Short: "CineRank - hybrid movie recommendations",
	Long: `CineRank ranks movies by blending content similarity (TF-IDF over
titles and genres) with collaborative filtering (biased matrix
factorization over user ratings).

Typical workflow:
  cinerank import       # load MovieLens files into DuckDB
  cinerank train        # fit models, save a new bundle version
  cinerank serve        # serve the HTTP API, reloading on new bundles`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH, ./config.yaml, /etc/cinerank/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (trace, debug, info, warn, error, disabled)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.LoadWithKoanf(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	logCfg := loaded.Logging.Logger()
	if err := logCfg.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	logging.Init(logCfg)
	cfg = loaded
	return nil
}

func openStore() (*storage.Store, error) {
	store, err := storage.NewStore(cfg.Artifacts.Dir)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	return store, nil
}

func openDatabase() (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func closeDatabase(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

func importOptions() database.ImportOptions {
	return database.ImportOptions{
		MoviesPath:  cfg.Data.MoviesPath,
		RatingsPath: cfg.Data.RatingsPath,
		Separator:   cfg.Data.Separator,
		Encoding:    cfg.Data.Encoding,
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
