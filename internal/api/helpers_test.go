// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerank/internal/models"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/catalog"
	"github.com/tomtom215/cinerank/internal/recommend/content"
	"github.com/tomtom215/cinerank/internal/recommend/latent"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
)

const testBundleName = "movielens"

// testBundle has three movies and one user. Movies 1 and 3 share their
// only title term, movie 2 shares nothing. User 10 rated movie 1 and is
// predicted 4.1, 3.1 and 4.6 for movies 1, 2 and 3.
func testBundle() *storage.Bundle {
	return &storage.Bundle{
		Items: []catalog.Item{
			{ID: 1, Title: "Toy Story (1995)", Genres: []string{"Animation", "Children's"}},
			{ID: 2, Title: "Heat (1995)", Genres: []string{"Action", "Crime"}},
			{ID: 3, Title: "Toy Story 2 (1999)", Genres: []string{"Animation", "Comedy"}},
		},
		Content: content.Artifact{
			Vocabulary: []string{"heat", "toy"},
			Vectors: []content.ItemVector{
				{ItemID: 1, Vector: content.Vector{Terms: []int32{1}, Weights: []float64{1}}},
				{ItemID: 2, Vector: content.Vector{Terms: []int32{0}, Weights: []float64{1}}},
				{ItemID: 3, Vector: content.Vector{Terms: []int32{1}, Weights: []float64{1}}},
			},
		},
		Model: latent.Artifact{
			K:          1,
			GlobalBias: 3.5,
			MinRating:  1,
			MaxRating:  5,
			Users:      []latent.Factors{{ID: 10, Bias: 0.1, Vector: []float64{1}}},
			Items: []latent.Factors{
				{ID: 1, Vector: []float64{0.5}},
				{ID: 2, Vector: []float64{-0.5}},
				{ID: 3, Vector: []float64{1}},
			},
		},
		Popular:   []recommend.PopularItem{{ItemID: 1, RatingCount: 20, MeanRating: 4.2}, {ItemID: 2, RatingCount: 15, MeanRating: 3.9}},
		History:   map[int][]int{10: {1}},
		TrainRMSE: 0.87,
	}
}

// setupStore returns a store holding one saved version of testBundle.
func setupStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	saveTestBundle(t, store)
	return store
}

func saveTestBundle(t *testing.T, store *storage.Store) {
	t.Helper()
	meta := storage.ModelMetadata{
		TrainedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		RatingCount: 35,
	}
	if _, err := storage.SaveBundle(context.Background(), store, testBundleName, testBundle(), meta); err != nil {
		t.Fatalf("SaveBundle() error = %v", err)
	}
}

// setupHolder returns a holder with testBundle published.
func setupHolder(t *testing.T) *EngineHolder {
	t.Helper()
	holder := NewEngineHolder(setupStore(t), testBundleName, 0, recommend.DefaultConfig(), zerolog.Nop())
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	return holder
}

// setupRouter returns the full HTTP stack over a published test engine,
// with rate limiting disabled.
func setupRouter(t *testing.T, cfg HandlerConfig) http.Handler {
	t.Helper()
	return newTestRouter(NewHandler(setupHolder(t), cfg))
}

func newTestRouter(h *Handler) http.Handler {
	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitDisabled = true
	return NewRouter(h, NewChiMiddleware(mw)).SetupChi()
}

// testEnvelope mirrors models.APIResponse with Data left undecoded.
type testEnvelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *models.APIError `json:"error"`
	Meta    models.Meta      `json:"meta"`
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env testEnvelope
	if rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env testEnvelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

func itemIDs(items []models.Recommendation) []int {
	ids := make([]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
