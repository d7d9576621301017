// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type testState struct {
	Weights map[int]float64
	Label   string
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "creates directory if not exists",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "new_dir")
			},
		},
		{
			name: "uses existing directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "file")
				if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
					t.Fatal(err)
				}
				return p
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.setup(t))
			if (err != nil) != tt.wantErr {
				t.Errorf("NewStore() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil && store == nil {
				t.Error("NewStore() returned nil store without error")
			}
		})
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	data := testState{Weights: map[int]float64{1: 0.5, 2: 0.25}, Label: "first"}
	trainedAt := time.Now().Add(-time.Minute).UTC()
	saved, err := store.Save(ctx, "movielens", 1, data, ModelMetadata{
		TrainedAt:   trainedAt,
		RatingCount: 1000,
		ItemCount:   100,
		UserCount:   50,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Checksum == "" || saved.SizeBytes == 0 {
		t.Errorf("Save() metadata missing checksum or size: %+v", saved)
	}
	if saved.Name != "movielens" || saved.Version != 1 {
		t.Errorf("Save() metadata = %s v%d", saved.Name, saved.Version)
	}

	var loaded testState
	meta, err := store.Load(ctx, "movielens", 1, &loaded)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Label != "first" || loaded.Weights[2] != 0.25 {
		t.Errorf("Load() data = %+v", loaded)
	}
	if meta.RatingCount != 1000 || !meta.TrainedAt.Equal(trainedAt) {
		t.Errorf("Load() metadata = %+v", meta)
	}
}

func TestStore_SaveRejectsBadInput(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name    string
		model   string
		version int
	}{
		{"empty name", "", 1},
		{"path separator", "a/b", 1},
		{"zero version", "m", 0},
		{"negative version", "m", -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Save(ctx, tt.model, tt.version, testState{}, ModelMetadata{}); err == nil {
				t.Error("Save() should fail")
			}
		})
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := store.Save(cancelled, "m", 1, testState{}, ModelMetadata{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() with cancelled context error = %v", err)
	}
}

func TestStore_LoadLatest(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	for v := 1; v <= 3; v++ {
		if _, err := store.Save(ctx, "movielens", v, testState{Label: string(rune('a' + v))}, ModelMetadata{}); err != nil {
			t.Fatalf("Save(v%d) error = %v", v, err)
		}
	}

	var loaded testState
	meta, err := store.Load(ctx, "movielens", 0, &loaded)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if meta.Version != 3 || loaded.Label != "d" {
		t.Errorf("Load(latest) = v%d %q, want v3 \"d\"", meta.Version, loaded.Label)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	var loaded testState
	if _, err := store.Load(ctx, "absent", 0, &loaded); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(absent latest) error = %v, want ErrNotFound", err)
	}
	if _, err := store.Load(ctx, "absent", 4, &loaded); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(absent v4) error = %v, want ErrNotFound", err)
	}
}

func TestStore_GetLatestVersionAndNext(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	if _, ok := store.GetLatestVersion("movielens"); ok {
		t.Error("GetLatestVersion() should be false for empty store")
	}
	if got := store.NextVersion("movielens"); got != 1 {
		t.Errorf("NextVersion() = %d, want 1", got)
	}

	for _, v := range []int{2, 5, 3} {
		if _, err := store.Save(ctx, "movielens", v, testState{}, ModelMetadata{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	version, ok := store.GetLatestVersion("movielens")
	if !ok || version != 5 {
		t.Errorf("GetLatestVersion() = %d, %v; want 5, true", version, ok)
	}
	if got := store.NextVersion("movielens"); got != 6 {
		t.Errorf("NextVersion() = %d, want 6", got)
	}
}

func TestStore_RescanPicksUpExternalWrites(t *testing.T) {
	dir := t.TempDir()
	reader, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	writer, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if _, err := writer.Save(context.Background(), "movielens", 1, testState{}, ModelMetadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, ok := reader.GetLatestVersion("movielens"); ok {
		t.Fatal("reader should not see the write before Rescan")
	}
	if err := reader.Rescan(); err != nil {
		t.Fatalf("Rescan() error = %v", err)
	}
	if v, ok := reader.GetLatestVersion("movielens"); !ok || v != 1 {
		t.Errorf("GetLatestVersion() after Rescan = %d, %v", v, ok)
	}
}

func TestStore_ListModels(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha"} {
		for v := 1; v <= 2; v++ {
			if _, err := store.Save(ctx, name, v, testState{}, ModelMetadata{}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	models, err := store.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	want := []struct {
		name    string
		version int
	}{{"alpha", 2}, {"alpha", 1}, {"zeta", 2}, {"zeta", 1}}
	if len(models) != len(want) {
		t.Fatalf("ListModels() returned %d models, want %d", len(models), len(want))
	}
	for i, w := range want {
		if models[i].Name != w.name || models[i].Version != w.version {
			t.Errorf("models[%d] = %s v%d, want %s v%d", i, models[i].Name, models[i].Version, w.name, w.version)
		}
	}
}

func TestStore_Delete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	for v := 1; v <= 2; v++ {
		if _, err := store.Save(ctx, "movielens", v, testState{}, ModelMetadata{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	if err := store.Delete(ctx, "movielens", 2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if v, _ := store.GetLatestVersion("movielens"); v != 1 {
		t.Errorf("latest after delete = %d, want 1", v)
	}

	if err := store.Delete(ctx, "movielens", 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := store.GetLatestVersion("movielens"); ok {
		t.Error("GetLatestVersion() should be false after deleting every version")
	}

	if err := store.Delete(ctx, "movielens", 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() of a missing version error = %v, want ErrNotFound", err)
	}
}

func TestStore_Prune(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	for v := 1; v <= 5; v++ {
		if _, err := store.Save(ctx, "movielens", v, testState{}, ModelMetadata{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	removed, err := store.Prune(ctx, "movielens", 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Prune() removed %d, want 3", removed)
	}

	var loaded testState
	for v := 1; v <= 3; v++ {
		if _, err := store.Load(ctx, "movielens", v, &loaded); err == nil {
			t.Errorf("version %d should have been pruned", v)
		}
	}
	for v := 4; v <= 5; v++ {
		if _, err := store.Load(ctx, "movielens", v, &loaded); err != nil {
			t.Errorf("version %d should still exist: %v", v, err)
		}
	}
}

func TestStore_ChecksumValidation(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	data := testState{Weights: map[int]float64{1: 1, 2: 2, 3: 3}, Label: "payload"}
	if _, err := store.Save(ctx, "movielens", 1, data, ModelMetadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// The gzip trailer sits just before the final gob terminator byte.
	filename := filepath.Join(dir, "movielens_v1.gob.gz")
	raw, err := os.ReadFile(filename) //nolint:gosec // test file in temp dir
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	for i := len(raw) - 6; i < len(raw)-2; i++ {
		raw[i] ^= 0xFF
	}
	if err := os.WriteFile(filename, raw, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	var loaded testState
	if _, err := store.Load(ctx, "movielens", 1, &loaded); err == nil {
		t.Error("Load() should fail with corrupted data")
	}
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := store.Save(context.Background(), "movielens", 1, testState{}, ModelMetadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "movielens_v1.gob.gz" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only movielens_v1.gob.gz", names)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, _ = store.Save(ctx, "movielens", v, testState{Label: "x"}, ModelMetadata{}) //nolint:errcheck // checked via GetLatestVersion
		}(i)
	}
	wg.Wait()

	version, ok := store.GetLatestVersion("movielens")
	if !ok || version != 10 {
		t.Errorf("GetLatestVersion() = %d, %v; want 10, true", version, ok)
	}
}

func TestParseModelFilename(t *testing.T) {
	tests := []struct {
		in          string
		wantName    string
		wantVersion int
		wantOK      bool
	}{
		{"movielens_v3.gob.gz", "movielens", 3, true},
		{"ml_1m_v12.gob.gz", "ml_1m", 12, true},
		{"movielens_v0.gob.gz", "", 0, false},
		{"movielens_vx.gob.gz", "", 0, false},
		{"_v1.gob.gz", "", 0, false},
		{"movielens_v1.gob", "", 0, false},
		{".movielens-123.tmp", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, version, ok := ParseModelFilename(tt.in)
			if name != tt.wantName || version != tt.wantVersion || ok != tt.wantOK {
				t.Errorf("ParseModelFilename(%q) = %q, %d, %v", tt.in, name, version, ok)
			}
		})
	}
}

func TestFilePattern(t *testing.T) {
	pattern := FilePattern("movielens")
	tests := []struct {
		file string
		want bool
	}{
		{"movielens_v1.gob.gz", true},
		{"movielens_v12.gob.gz", true},
		{"other_v1.gob.gz", false},
		{"movielens_v1.gob.gz.tmp", false},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := filepath.Match(pattern, tt.file)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", pattern, tt.file, got, tt.want)
			}
		})
	}
}
