// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinerank/internal/models"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/catalog"
)

// maxRequestBodyBytes bounds JSON request bodies.
const maxRequestBodyBytes = 64 << 10

// HandlerConfig tunes Handler.
type HandlerConfig struct {
	// CacheSize is the number of cached recommendation responses. 0 disables the cache.
	CacheSize int
	CacheTTL  time.Duration

	// RequestTimeout bounds engine work per request. 0 means no deadline.
	RequestTimeout time.Duration
}

// Handler serves the HTTP API from the engine held by an EngineHolder.
type Handler struct {
	holder    *EngineHolder
	cache     *resultCache
	timeout   time.Duration
	startTime time.Time
}

// NewHandler creates a new API handler.
func NewHandler(holder *EngineHolder, cfg HandlerConfig) *Handler {
	return &Handler{
		holder:    holder,
		cache:     newResultCache(cfg.CacheSize, cfg.CacheTTL),
		timeout:   cfg.RequestTimeout,
		startTime: time.Now(),
	}
}

// requireEngine returns the served engine or answers 503 when none is
// published yet.
func (h *Handler) requireEngine(w http.ResponseWriter, r *http.Request) (*recommend.Engine, bool) {
	engine := h.holder.Engine()
	if engine == nil {
		respondError(w, r, http.StatusServiceUnavailable, "NOT_READY", "No model loaded", nil, nil)
		return nil, false
	}
	return engine, true
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

// pathID parses a positive integer chi URL parameter, answering 400 when
// it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := chi.URLParam(r, key)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER",
			key+" must be a positive integer", map[string]any{key: raw}, nil)
		return 0, false
	}
	return id, true
}

// limitParam reads the limit query parameter, defaulting and bounding it
// by the engine configuration.
func limitParam(w http.ResponseWriter, r *http.Request, cfg recommend.Config) (int, bool) {
	limit, err := parseIntParam(r, "limit", cfg.DefaultLimit)
	if err == nil && (limit < 1 || limit > cfg.MaxLimit) {
		err = strconv.ErrRange
	}
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER",
			"limit must be an integer in [1,"+strconv.Itoa(cfg.MaxLimit)+"]", nil, err)
		return 0, false
	}
	return limit, true
}

//nolint:gocritic // hugeParam: catalog items are small
func toMovie(it catalog.Item) models.Movie {
	return models.Movie{ID: it.ID, Title: it.Title, Genres: it.Genres}
}

// HealthLive handles liveness probes. It never depends on model state.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, models.HealthStatus{
		Status:       "alive",
		Ready:        h.holder.Engine() != nil,
		ModelVersion: h.holder.Version(),
		Uptime:       time.Since(h.startTime).Seconds(),
	}, false)
}

// HealthReady handles readiness probes. Returns 503 until an engine has
// been published.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.holder.Engine() != nil
	status := models.HealthStatus{
		Status:       "ready",
		Ready:        ready,
		ModelVersion: h.holder.Version(),
		Uptime:       time.Since(h.startTime).Seconds(),
	}
	code := http.StatusOK
	if !ready {
		status.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, &models.APIResponse{
		Success: ready,
		Data:    status,
		Meta:    responseMeta(r, false),
	})
}

// NotFound answers unknown routes with the JSON envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil, nil)
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil, nil)
}
