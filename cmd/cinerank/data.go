// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/training"
)

var (
	importMovies  string
	importRatings string

	trainNoImport bool
	trainSince    string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load MovieLens files into the ratings warehouse",
	Long: `Load movies.dat and ratings.dat into DuckDB, replacing any previous
import. Paths default to data.movies_path and data.ratings_path.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the content and rating models and save a bundle",
	Long: `Fit the TF-IDF content space and the matrix factorization model from
the ratings warehouse and save them as the next bundle version in
artifacts.dir. An empty warehouse is imported from the data section
first unless --no-import is given.

--since restricts the rating model to ratings made on or after a date
(2006-01-02 or RFC 3339). The catalog and popularity list still use
every rating.

A running server with artifacts.watch enabled picks up the new bundle
without a restart.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(trainCmd)

	importCmd.Flags().StringVar(&importMovies, "movies", "", "movies file (overrides data.movies_path)")
	importCmd.Flags().StringVar(&importRatings, "ratings", "", "ratings file (overrides data.ratings_path)")

	trainCmd.Flags().BoolVar(&trainNoImport, "no-import", false, "fail instead of importing when the warehouse is empty")
	trainCmd.Flags().StringVar(&trainSince, "since", "", "train on ratings made on or after this date")
}

// parseSince accepts a date or an RFC 3339 timestamp. Empty means no cutoff.
func parseSince(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t.UTC(), nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	opts := importOptions()
	if importMovies != "" {
		opts.MoviesPath = importMovies
	}
	if importRatings != "" {
		opts.RatingsPath = importRatings
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	stats, err := db.ImportMovieLens(cmd.Context(), opts)
	if err != nil {
		return err
	}
	logging.Info().
		Int("movies", stats.Movies).
		Int("ratings", stats.Ratings).
		Int("skipped", stats.SkippedRatings).
		Dur("duration", stats.Duration).
		Msg("Import complete")
	return writeJSON(cmd, stats)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(trainSince)
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	store, err := openStore()
	if err != nil {
		return err
	}

	opts := training.Options{
		BundleName:        cfg.Artifacts.Name,
		PopularMinRatings: cfg.Recommend.PopularMinRatings,
		KeepVersions:      cfg.Artifacts.KeepVersions,
		RatedSince:        since,
		TFIDF:             cfg.Training.TFIDF(),
		SGD:               cfg.Training.SGD(),
	}
	if !trainNoImport {
		imp := importOptions()
		opts.Import = &imp
	}

	report, err := training.Run(cmd.Context(), db, store, opts, logging.WithComponent("training"))
	if err != nil {
		if errors.Is(err, training.ErrNoData) && trainNoImport {
			return errors.New("warehouse is empty: run cinerank import first")
		}
		return err
	}
	return writeJSON(cmd, report)
}
