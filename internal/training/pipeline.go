// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package training turns the ratings warehouse into a stored model bundle.
//
// A run reads movies, ratings, popularity and rating history from DuckDB,
// fits the TF-IDF content space and the biased matrix factorization model,
// and saves everything as the next bundle version. Serving processes pick
// the new version up through their artifact watcher.
package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerank/internal/database"
	"github.com/tomtom215/cinerank/internal/metrics"
	"github.com/tomtom215/cinerank/internal/recommend/content"
	"github.com/tomtom215/cinerank/internal/recommend/latent"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
)

// ErrNoData is returned when the warehouse has no movies or no ratings.
var ErrNoData = errors.New("no training data")

// Options configures a training run.
type Options struct {
	// BundleName is the artifact name bundles are saved under.
	BundleName string

	// PopularMinRatings is the rating count a movie must exceed to be
	// stored in the popularity list.
	PopularMinRatings int

	// KeepVersions prunes older bundles after saving. 0 keeps everything.
	KeepVersions int

	// RatedSince trains the rating model on ratings made at or after this
	// time only. Popularity and rating history still use every rating.
	RatedSince time.Time

	TFIDF content.FitConfig
	SGD   latent.TrainConfig

	// Import, if set, is loaded into an empty warehouse before training.
	Import *database.ImportOptions
}

// Report summarizes a completed run.
type Report struct {
	Bundle    storage.ModelMetadata `json:"bundle"`
	Imported  *database.ImportStats `json:"imported,omitempty"`
	Items     int                   `json:"items"`
	Users     int                   `json:"users"`
	Ratings   int                   `json:"ratings"`
	Popular   int                   `json:"popular"`
	Vocab     int                   `json:"vocabulary_size"`
	TrainRMSE float64               `json:"train_rmse"`
	Epochs    []latent.EpochStats   `json:"epochs"`
	Pruned    int                   `json:"pruned"`
	Duration  time.Duration         `json:"duration"`
}

// Run trains a bundle from db and saves it to store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Run(ctx context.Context, db *database.DB, store *storage.Store, opts Options, logger zerolog.Logger) (*Report, error) {
	if opts.BundleName == "" {
		return nil, errors.New("bundle name is required")
	}
	start := time.Now()
	report := &Report{}

	if opts.Import != nil {
		stats, err := ensureData(ctx, db, *opts.Import, logger)
		if err != nil {
			return nil, err
		}
		report.Imported = stats
	}

	items, err := db.GetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load movies: %w", err)
	}
	ratings, err := db.GetRatings(ctx, database.RatingFilter{Since: opts.RatedSince})
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	if len(items) == 0 || len(ratings) == 0 {
		return nil, fmt.Errorf("%w: %d movies, %d ratings", ErrNoData, len(items), len(ratings))
	}
	popular, err := db.GetPopular(ctx, opts.PopularMinRatings, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("load popular movies: %w", err)
	}
	history, err := db.GetHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rating history: %w", err)
	}

	logger.Info().
		Int("movies", len(items)).
		Int("ratings", len(ratings)).
		Int("popular", len(popular)).
		Time("rated_since", opts.RatedSince).
		Msg("Training data loaded")

	space, err := content.Fit(ctx, items, opts.TFIDF)
	if err != nil {
		return nil, fmt.Errorf("fit content space: %w", err)
	}

	sgd := opts.SGD
	userHook := sgd.OnEpoch
	sgd.OnEpoch = func(s latent.EpochStats) {
		report.Epochs = append(report.Epochs, s)
		metrics.RecordTrainingEpoch(s.RMSE)
		logger.Debug().Int("epoch", s.Epoch).Float64("rmse", s.RMSE).Msg("Epoch complete")
		if userHook != nil {
			userHook(s)
		}
	}

	model, err := latent.Train(ctx, ratings, sgd)
	if err != nil {
		return nil, fmt.Errorf("train rating model: %w", err)
	}
	rmse, _ := model.RMSE(ratings)

	bundle := &storage.Bundle{
		Items:     items,
		Content:   space.Artifact(),
		Model:     model.Artifact(),
		Popular:   popular,
		History:   history,
		TrainRMSE: rmse,
	}

	// Another process may have saved since the store was opened.
	if err := store.Rescan(); err != nil {
		return nil, fmt.Errorf("rescan artifacts: %w", err)
	}
	elapsed := time.Since(start)
	meta, err := storage.SaveBundle(ctx, store, opts.BundleName, bundle, storage.ModelMetadata{
		TrainedAt:          time.Now().UTC(),
		RatingCount:        len(ratings),
		TrainingDurationMS: elapsed.Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("save bundle: %w", err)
	}

	if opts.KeepVersions > 0 {
		pruned, err := store.Prune(ctx, opts.BundleName, opts.KeepVersions)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to prune old bundles")
		}
		report.Pruned = pruned
	}

	report.Bundle = *meta
	report.Items = len(items)
	report.Users = model.UserCount()
	report.Ratings = len(ratings)
	report.Popular = len(popular)
	report.Vocab = space.VocabularySize()
	report.TrainRMSE = rmse
	report.Duration = time.Since(start)
	metrics.TrainingDuration.Observe(report.Duration.Seconds())

	logger.Info().
		Str("bundle", meta.Name).
		Int("version", meta.Version).
		Float64("train_rmse", rmse).
		Int("vocabulary", report.Vocab).
		Int("pruned", report.Pruned).
		Dur("duration", report.Duration).
		Msg("Bundle saved")

	return report, nil
}

// ensureData imports the MovieLens files when the warehouse is empty. It
// returns nil stats when data was already present.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func ensureData(ctx context.Context, db *database.DB, opts database.ImportOptions, logger zerolog.Logger) (*database.ImportStats, error) {
	empty, err := db.IsEmpty(ctx)
	if err != nil {
		return nil, fmt.Errorf("check warehouse: %w", err)
	}
	if !empty {
		return nil, nil
	}
	logger.Info().Str("movies", opts.MoviesPath).Str("ratings", opts.RatingsPath).Msg("Warehouse empty, importing")
	stats, err := db.ImportMovieLens(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return stats, nil
}
