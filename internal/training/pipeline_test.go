// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package training

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerank/internal/config"
	"github.com/tomtom215/cinerank/internal/database"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/content"
	"github.com/tomtom215/cinerank/internal/recommend/latent"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
)

const fixtureMovies = "1::Toy Story (1995)::Animation|Children's|Comedy\n" +
	"2::Jumanji (1995)::Adventure|Children's|Fantasy\n" +
	"3::Toy Story 2 (1999)::Animation|Children's|Comedy\n" +
	"4::Heat (1995)::Action|Crime|Thriller\n"

const fixtureRatings = "1::1::5::978300760\n" +
	"1::2::3::978302109\n" +
	"1::3::4::978301968\n" +
	"2::1::4::978300275\n" +
	"2::2::3::978824291\n" +
	"2::4::5::978302268\n" +
	"3::1::5::978302039\n" +
	"3::3::4::978300719\n" +
	"3::4::1::978302268\n" +
	"4::2::3::978301368\n" +
	"4::3::4::978824268\n"

func setup(t *testing.T) (*database.DB, *storage.Store, *database.ImportOptions) {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 1})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "models"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	dir := t.TempDir()
	opts := &database.ImportOptions{
		MoviesPath:  filepath.Join(dir, "movies.dat"),
		RatingsPath: filepath.Join(dir, "ratings.dat"),
	}
	if err := os.WriteFile(opts.MoviesPath, []byte(fixtureMovies), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(opts.RatingsPath, []byte(fixtureRatings), 0o600); err != nil {
		t.Fatal(err)
	}
	return db, store, opts
}

func testOptions(imp *database.ImportOptions) Options {
	sgd := latent.DefaultTrainConfig()
	sgd.Factors = 4
	sgd.Epochs = 5
	return Options{
		BundleName:        "movielens",
		PopularMinRatings: 2,
		KeepVersions:      2,
		TFIDF:             content.FitConfig{MinDocFreq: 1},
		SGD:               sgd,
		Import:            imp,
	}
}

func TestRun_ImportsAndTrains(t *testing.T) {
	db, store, imp := setup(t)
	ctx := context.Background()

	var hookEpochs int
	opts := testOptions(imp)
	opts.SGD.OnEpoch = func(latent.EpochStats) { hookEpochs++ }

	report, err := Run(ctx, db, store, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Imported == nil || report.Imported.Movies != 4 || report.Imported.Ratings != 11 {
		t.Errorf("Imported = %+v, want 4 movies and 11 ratings", report.Imported)
	}
	if report.Items != 4 || report.Users != 4 || report.Ratings != 11 {
		t.Errorf("report counts = %d items, %d users, %d ratings", report.Items, report.Users, report.Ratings)
	}
	// Movies 1, 2 and 3 have three ratings each; movie 4 has two.
	if report.Popular != 3 {
		t.Errorf("Popular = %d, want 3", report.Popular)
	}
	if len(report.Epochs) != 5 || hookEpochs != 5 {
		t.Errorf("epochs reported = %d, hook calls = %d, want 5", len(report.Epochs), hookEpochs)
	}
	if report.Bundle.Version != 1 || report.Bundle.Checksum == "" {
		t.Errorf("bundle = %+v", report.Bundle)
	}

	bundle, meta, err := storage.LoadBundle(ctx, store, "movielens", 0)
	if err != nil {
		t.Fatalf("LoadBundle() error = %v", err)
	}
	engine, err := bundle.Engine(recommend.DefaultConfig(), zerolog.Nop(), meta)
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}

	res, err := engine.Recommend(ctx, recommend.Request{SeedIDs: []int{1}, Alpha: 0.6, Limit: 3})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(res.Items) == 0 || res.Items[0].ItemID != 3 {
		t.Errorf("top content match for Toy Story = %+v, want Toy Story 2", res.Items)
	}
	if got := engine.Info().Ratings; got != 11 {
		t.Errorf("Info().Ratings = %d, want 11", got)
	}
}

func TestRun_SkipsImportWhenDataPresent(t *testing.T) {
	db, store, imp := setup(t)
	ctx := context.Background()

	if _, err := db.ImportMovieLens(ctx, *imp); err != nil {
		t.Fatalf("ImportMovieLens() error = %v", err)
	}

	report, err := Run(ctx, db, store, testOptions(imp), zerolog.Nop())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Imported != nil {
		t.Errorf("Imported = %+v, want nil for a populated warehouse", report.Imported)
	}
}

func TestRun_RatedSince(t *testing.T) {
	db, store, imp := setup(t)
	ctx := context.Background()

	// Only 2::2 and 4::3 were rated after this instant.
	opts := testOptions(imp)
	opts.RatedSince = time.Unix(978824000, 0)

	report, err := Run(ctx, db, store, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Ratings != 2 || report.Users != 2 {
		t.Errorf("report = %d ratings, %d users, want 2 and 2", report.Ratings, report.Users)
	}
	if report.Items != 4 || report.Popular != 3 {
		t.Errorf("catalog and popularity should ignore the cutoff: items %d, popular %d", report.Items, report.Popular)
	}

	opts.RatedSince = time.Unix(2000000000, 0)
	if _, err := Run(ctx, db, store, opts, zerolog.Nop()); !errors.Is(err, ErrNoData) {
		t.Errorf("Run() with a cutoff after every rating error = %v, want ErrNoData", err)
	}
}

func TestRun_PrunesOldVersions(t *testing.T) {
	db, store, imp := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := Run(ctx, db, store, testOptions(imp), zerolog.Nop()); err != nil {
			t.Fatalf("Run() #%d error = %v", i+1, err)
		}
	}

	models, err := store.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 || models[0].Version != 3 || models[1].Version != 2 {
		t.Errorf("stored versions = %+v, want 3 and 2", models)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("empty warehouse", func(t *testing.T) {
		db, store, _ := setup(t)
		_, err := Run(context.Background(), db, store, testOptions(nil), zerolog.Nop())
		if !errors.Is(err, ErrNoData) {
			t.Errorf("Run() error = %v, want ErrNoData", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		db, store, imp := setup(t)
		opts := testOptions(imp)
		opts.BundleName = ""
		if _, err := Run(context.Background(), db, store, opts, zerolog.Nop()); err == nil {
			t.Error("Run() without bundle name succeeded")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		db, store, imp := setup(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Run(ctx, db, store, testOptions(imp), zerolog.Nop()); err == nil {
			t.Error("Run() with canceled context succeeded")
		}
		if _, ok := store.GetLatestVersion("movielens"); ok {
			t.Error("bundle saved despite cancellation")
		}
	})
}
