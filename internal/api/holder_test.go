// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
)

func TestEngineHolder_Reload(t *testing.T) {
	store := setupStore(t)
	holder := NewEngineHolder(store, testBundleName, 0, recommend.DefaultConfig(), zerolog.Nop())
	ctx := context.Background()

	if holder.Engine() != nil || holder.Version() != 0 {
		t.Fatal("new holder should have nothing published")
	}
	if _, ok := holder.Status(); ok {
		t.Fatal("Status() ok before first publish")
	}

	if err := holder.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	first := holder.Engine()
	if first == nil || holder.Version() != 1 {
		t.Fatalf("after first reload: engine %v version %d", first, holder.Version())
	}

	// No new bundle: the published engine is left as is.
	if err := holder.Reload(ctx); err != nil {
		t.Fatalf("Reload() unchanged error = %v", err)
	}
	if holder.Engine() != first {
		t.Error("reload without a new bundle replaced the engine")
	}

	saveTestBundle(t, store)
	if err := holder.Reload(ctx); err != nil {
		t.Fatalf("Reload() after save error = %v", err)
	}
	if holder.Version() != 2 || holder.Engine() == first {
		t.Errorf("version = %d, want 2 with a new engine", holder.Version())
	}
	if got := holder.Engine().Info().Version; got != 2 {
		t.Errorf("engine info version = %d, want 2", got)
	}
}

func TestEngineHolder_PinnedVersion(t *testing.T) {
	store := setupStore(t)
	saveTestBundle(t, store)

	holder := NewEngineHolder(store, testBundleName, 1, recommend.DefaultConfig(), zerolog.Nop())
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if holder.Version() != 1 {
		t.Errorf("version = %d, want pinned 1", holder.Version())
	}
}

func TestEngineHolder_FailedReloadKeepsEngine(t *testing.T) {
	store := setupStore(t)
	holder := NewEngineHolder(store, testBundleName, 0, recommend.DefaultConfig(), zerolog.Nop())
	ctx := context.Background()
	if err := holder.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	served := holder.Engine()

	// A truncated file claiming to be version 2.
	bad := filepath.Join(store.Dir(), testBundleName+"_v2.gob.gz")
	if err := os.WriteFile(bad, []byte("not a bundle"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := holder.Reload(ctx); err == nil {
		t.Fatal("Reload() of corrupt bundle succeeded")
	}
	if holder.Engine() != served || holder.Version() != 1 {
		t.Errorf("failed reload changed the served engine (version %d)", holder.Version())
	}
}

func TestEngineHolder_MissingBundle(t *testing.T) {
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	holder := NewEngineHolder(store, testBundleName, 0, recommend.DefaultConfig(), zerolog.Nop())

	err = holder.Reload(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Reload() error = %v, want ErrNotFound", err)
	}
	if holder.Engine() != nil {
		t.Error("engine published despite missing bundle")
	}
}

func TestEngineHolder_ConcurrentReadsDuringReload(t *testing.T) {
	store := setupStore(t)
	holder := NewEngineHolder(store, testBundleName, 0, recommend.DefaultConfig(), zerolog.Nop())
	ctx := context.Background()
	if err := holder.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	saveTestBundle(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				engine := holder.Engine()
				if engine == nil {
					t.Error("engine disappeared during reload")
					return
				}
				uid := 10
				if _, err := engine.Recommend(ctx, recommend.Request{SeedIDs: []int{1}, UserID: &uid, Alpha: 0.5, Limit: 2}); err != nil {
					t.Errorf("Recommend() error = %v", err)
					return
				}
			}
		}()
	}

	if err := holder.Reload(ctx); err != nil {
		t.Errorf("Reload() error = %v", err)
	}
	wg.Wait()

	if holder.Version() != 2 {
		t.Errorf("version = %d, want 2", holder.Version())
	}
}
