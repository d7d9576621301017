// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinerank/internal/metrics"
	"github.com/tomtom215/cinerank/internal/models"
	"github.com/tomtom215/cinerank/internal/recommend"
)

// Recommend handles POST /api/v1/recommendations.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.requireEngine(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	var body models.RecommendRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body must be a JSON object", nil, err)
		return
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Success: false,
			Error:   apiErr,
			Meta:    responseMeta(r, false),
		})
		return
	}

	req := toEngineRequest(&body, engine.Config())
	h.rank(w, r, engine, req)
}

// Similar handles GET /api/v1/items/{id}/similar: a content-only ranking
// seeded by a single movie.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.requireEngine(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cfg := engine.Config()
	limit, ok := limitParam(w, r, cfg)
	if !ok {
		return
	}

	req := recommend.Request{
		SeedIDs: []int{id},
		Genres:  parseCommaSeparated(r.URL.Query().Get("genres")),
		Alpha:   cfg.DefaultAlpha,
		Limit:   limit,
	}
	h.rank(w, r, engine, req)
}

// Similarity handles GET /api/v1/items/{id}/similarity/{otherID}.
func (h *Handler) Similarity(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.requireEngine(w, r)
	if !ok {
		return
	}
	a, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, ok := pathID(w, r, "otherID")
	if !ok {
		return
	}

	cos, err := engine.Similarity(a, b)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, r, models.Similarity{ItemID: a, OtherID: b, Cosine: cos}, false)
}

// rank answers req from the cache or the engine.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (h *Handler) rank(w http.ResponseWriter, r *http.Request, engine *recommend.Engine, req recommend.Request) {
	key := cacheKey(engine.Info().Version, req)
	if resp, hit := h.cache.get(key); hit {
		respondData(w, r, resp, true)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	start := time.Now()
	result, err := engine.Recommend(ctx, req)
	if err != nil {
		_, code := engineErrorStatus(err)
		metrics.RecordRecommendation("none", strings.ToLower(code), 0, time.Since(start))
		respondEngineError(w, r, err)
		return
	}
	metrics.RecordRecommendation(result.Mode.String(), "ok", result.CandidateCount, time.Since(start))

	resp := BuildRecommendResponse(engine, result)
	h.cache.add(key, resp)
	respondData(w, r, resp, false)
}

// toEngineRequest applies server defaults to absent fields.
func toEngineRequest(body *models.RecommendRequest, cfg recommend.Config) recommend.Request {
	req := recommend.Request{
		SeedIDs:      body.Seeds,
		UserID:       body.UserID,
		Genres:       body.Genres,
		Alpha:        cfg.DefaultAlpha,
		Limit:        cfg.DefaultLimit,
		ExcludeRated: body.ExcludeRated,
	}
	if body.Alpha != nil {
		req.Alpha = *body.Alpha
	}
	if body.Limit != nil {
		req.Limit = *body.Limit
	}
	return req
}

// BuildRecommendResponse joins ranked ids with their catalog entries.
func BuildRecommendResponse(engine *recommend.Engine, result *recommend.Result) *models.RecommendResponse {
	cat := engine.Catalog()
	items := make([]models.Recommendation, 0, len(result.Items))
	for _, si := range result.Items {
		it, err := cat.Lookup(si.ItemID)
		if err != nil {
			continue
		}
		items = append(items, models.Recommendation{
			Movie:        toMovie(it),
			Score:        si.Score,
			ContentScore: si.ContentScore,
			CollabScore:  si.CollabScore,
		})
	}
	return &models.RecommendResponse{
		Items:          items,
		Mode:           result.Mode.String(),
		CandidateCount: result.CandidateCount,
		ModelVersion:   engine.Info().Version,
	}
}
