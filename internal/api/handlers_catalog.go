// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/cinerank/internal/models"
	"github.com/tomtom215/cinerank/internal/recommend"
)

// Genres handles GET /api/v1/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.requireEngine(w, r)
	if !ok {
		return
	}
	respondData(w, r, engine.Catalog().Genres(), false)
}

// SearchItems handles GET /api/v1/items?q=.
func (h *Handler) SearchItems(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.requireEngine(w, r)
	if !ok {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "q is required", nil, nil)
		return
	}
	limit, ok := limitParam(w, r, engine.Config())
	if !ok {
		return
	}

	found := engine.Catalog().Search(query, limit)
	movies := make([]models.Movie, 0, len(found))
	for _, it := range found {
		movies = append(movies, toMovie(it))
	}
	respondData(w, r, movies, false)
}

// GetItem handles GET /api/v1/items/{id}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.requireEngine(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	it, err := engine.Catalog().Lookup(id)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "UNKNOWN_ITEM", "Item not found", map[string]any{"id": id}, nil)
		return
	}
	respondData(w, r, toMovie(it), false)
}

// Popular handles GET /api/v1/popular. It is the fallback list for callers
// with neither seeds nor a known user.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.requireEngine(w, r)
	if !ok {
		return
	}
	limit, ok := limitParam(w, r, engine.Config())
	if !ok {
		return
	}

	popular := engine.Popular(limit, parseCommaSeparated(r.URL.Query().Get("genres")))
	respondData(w, r, PopularMovies(engine, popular), false)
}

// PopularMovies joins popularity entries with their catalog entries.
func PopularMovies(engine *recommend.Engine, popular []recommend.PopularItem) []models.PopularMovie {
	cat := engine.Catalog()
	out := make([]models.PopularMovie, 0, len(popular))
	for _, p := range popular {
		it, err := cat.Lookup(p.ItemID)
		if err != nil {
			continue
		}
		out = append(out, models.PopularMovie{
			Movie:       toMovie(it),
			RatingCount: p.RatingCount,
			MeanRating:  p.MeanRating,
		})
	}
	return out
}
