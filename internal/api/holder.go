// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerank/internal/metrics"
	"github.com/tomtom215/cinerank/internal/models"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
)

// servedEngine pairs an engine with the bundle it was built from.
type servedEngine struct {
	engine   *recommend.Engine
	meta     storage.ModelMetadata
	loadedAt time.Time
}

// EngineHolder owns the engine currently being served and replaces it when
// a newer bundle is stored. It implements services.Reloader.
type EngineHolder struct {
	store   *storage.Store
	name    string
	version int // 0 serves the latest
	cfg     *recommend.Config
	logger  zerolog.Logger

	current atomic.Pointer[servedEngine]

	// mu serializes reloads; readers never take it.
	mu sync.Mutex
}

// NewEngineHolder creates a holder with nothing published. Call Reload or
// Publish before serving traffic.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngineHolder(store *storage.Store, name string, version int, cfg *recommend.Config, logger zerolog.Logger) *EngineHolder {
	return &EngineHolder{
		store:   store,
		name:    name,
		version: version,
		cfg:     cfg,
		logger:  logger.With().Str("component", "engine-holder").Str("bundle", name).Logger(),
	}
}

// Engine returns the published engine, or nil before the first publish.
func (h *EngineHolder) Engine() *recommend.Engine {
	if s := h.current.Load(); s != nil {
		return s.engine
	}
	return nil
}

// Version returns the served bundle version, 0 when nothing is published.
func (h *EngineHolder) Version() int {
	if s := h.current.Load(); s != nil {
		return s.meta.Version
	}
	return 0
}

// Status describes the served bundle.
func (h *EngineHolder) Status() (models.ModelStatus, bool) {
	s := h.current.Load()
	if s == nil {
		return models.ModelStatus{}, false
	}
	info := s.engine.Info()
	return models.ModelStatus{
		Name:           s.meta.Name,
		Version:        s.meta.Version,
		TrainedAt:      s.meta.TrainedAt,
		LoadedAt:       s.loadedAt,
		Items:          info.Items,
		Users:          info.Users,
		Ratings:        info.Ratings,
		Factors:        info.Factors,
		VocabularySize: info.VocabularySize,
		TrainRMSE:      info.TrainRMSE,
		Checksum:       s.meta.Checksum,
		SizeBytes:      s.meta.SizeBytes,
	}, true
}

// Publish makes engine the served engine.
//
//nolint:gocritic // meta passed by value mirrors storage.Store.Save
func (h *EngineHolder) Publish(engine *recommend.Engine, meta storage.ModelMetadata) {
	h.current.Store(&servedEngine{engine: engine, meta: meta, loadedAt: time.Now().UTC()})
	info := engine.Info()
	metrics.SetServedArtifact(meta.Version, info.Items, info.Users)
}

// Reload loads the configured bundle version and publishes it if it differs
// from the one being served. On any error the served engine is kept.
func (h *EngineHolder) Reload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Rescan(); err != nil {
		metrics.RecordArtifactReload("error")
		return fmt.Errorf("rescan artifacts: %w", err)
	}

	want := h.version
	if want == 0 {
		latest, ok := h.store.GetLatestVersion(h.name)
		if !ok {
			metrics.RecordArtifactReload("error")
			return fmt.Errorf("%w: %s", storage.ErrNotFound, h.name)
		}
		want = latest
	}

	if h.Version() == want {
		metrics.RecordArtifactReload("unchanged")
		return nil
	}

	start := time.Now()
	bundle, meta, err := storage.LoadBundle(ctx, h.store, h.name, want)
	if err != nil {
		metrics.RecordArtifactReload("error")
		return fmt.Errorf("load %s v%d: %w", h.name, want, err)
	}
	engine, err := bundle.Engine(h.cfg, h.logger, meta)
	if err != nil {
		metrics.RecordArtifactReload("error")
		return fmt.Errorf("build engine from %s v%d: %w", h.name, want, err)
	}

	previous := h.Version()
	h.Publish(engine, *meta)
	metrics.RecordArtifactReload("success")

	h.logger.Info().
		Int("version", meta.Version).
		Int("previous_version", previous).
		Int("items", engine.Info().Items).
		Int("users", engine.Info().Users).
		Dur("duration", time.Since(start)).
		Msg("Engine published")
	return nil
}
