// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerank/internal/recommend/catalog"
	"github.com/tomtom215/cinerank/internal/recommend/content"
	"github.com/tomtom215/cinerank/internal/recommend/latent"
	"github.com/tomtom215/cinerank/internal/recommend/score"
)

// Engine ranks catalog items for a request by blending content and
// collaborative signals. It is immutable and safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	catalog *catalog.Catalog
	content *content.Space
	model   *latent.Model

	history map[int]map[int]struct{}
	popular []PopularItem
	info    ModelInfo
}

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithHistory sets the training-time rated items per user, used by
// Request.ExcludeRated.
func WithHistory(history map[int][]int) Option {
	return func(e *Engine) {
		e.history = make(map[int]map[int]struct{}, len(history))
		for user, items := range history {
			set := make(map[int]struct{}, len(items))
			for _, id := range items {
				set[id] = struct{}{}
			}
			e.history[user] = set
		}
	}
}

// WithPopular sets the popularity ranking served by Popular.
func WithPopular(popular []PopularItem) Option {
	return func(e *Engine) {
		e.popular = append([]PopularItem(nil), popular...)
	}
}

// WithModelInfo attaches artifact metadata.
func WithModelInfo(info ModelInfo) Option {
	return func(e *Engine) {
		e.info = info
	}
}

// NewEngine creates an engine over loaded artifacts. Every catalog item must
// have a content vector.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger, cat *catalog.Catalog, space *content.Space, model *latent.Model, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cat == nil || space == nil || model == nil {
		return nil, errors.New("catalog, content space and rating model are required")
	}

	for _, id := range cat.AllIDs() {
		if !space.HasItem(id) {
			return nil, fmt.Errorf("catalog item %d has no content vector", id)
		}
	}

	e := &Engine{
		config:  cfg.Clone(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		catalog: cat,
		content: space,
		model:   model,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.logger.Info().
		Int("items", cat.Len()).
		Int("vocabulary", space.VocabularySize()).
		Int("users", model.UserCount()).
		Int("factors", model.K()).
		Int("popular", len(e.popular)).
		Msg("recommendation engine ready")

	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Info returns the artifact metadata.
func (e *Engine) Info() ModelInfo {
	return e.info
}

// Recommend ranks items for the request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	seeds, mode, err := e.validate(req)
	if err != nil {
		return nil, err
	}

	candidates := e.gatherCandidates(req, seeds)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var contentScores, collabScores map[int]float64

	if mode != ModeCollaborative {
		contentScores, err = e.contentScores(seeds, candidates)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if mode != ModeContent {
		collabScores, err = e.collabScores(*req.UserID, candidates)
		if err != nil {
			return nil, err
		}
	}

	items := blend(candidates, contentScores, collabScores, mode, req.Alpha)
	rank(items)
	if len(items) > req.Limit {
		items = items[:req.Limit]
	}

	return &Result{
		Items:          items,
		Mode:           mode,
		CandidateCount: len(candidates),
	}, nil
}

// validate checks the request and returns the distinct seeds and mode.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) validate(req Request) ([]int, Mode, error) {
	if req.Limit <= 0 || req.Limit > e.config.MaxLimit {
		return nil, 0, fmt.Errorf("%w: limit must be in [1,%d], got %d", ErrInvalidRequest, e.config.MaxLimit, req.Limit)
	}
	// Written so NaN fails too.
	if !(req.Alpha >= 0 && req.Alpha <= 1) {
		return nil, 0, fmt.Errorf("%w: alpha must be in [0,1], got %v", ErrInvalidRequest, req.Alpha)
	}

	seeds := dedupe(req.SeedIDs)
	if len(seeds) > e.config.MaxSeeds {
		return nil, 0, fmt.Errorf("%w: at most %d seed items, got %d", ErrInvalidRequest, e.config.MaxSeeds, len(seeds))
	}

	var mode Mode
	switch {
	case len(seeds) > 0 && req.UserID != nil:
		mode = ModeHybrid
	case len(seeds) > 0:
		mode = ModeContent
	case req.UserID != nil:
		mode = ModeCollaborative
	default:
		return nil, 0, ErrInsufficientInput
	}

	for _, id := range seeds {
		if !e.catalog.Contains(id) {
			return nil, 0, fmt.Errorf("%w: %d", ErrUnknownItem, id)
		}
	}
	if req.UserID != nil && !e.model.HasUser(*req.UserID) {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownUser, *req.UserID)
	}

	return seeds, mode, nil
}

// gatherCandidates returns catalog items minus seeds, narrowed by the genre
// allow set and, when requested, the user's rated items. Ascending ID order.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) gatherCandidates(req Request, seeds []int) []int {
	exclude := make(map[int]struct{}, len(seeds))
	for _, id := range seeds {
		exclude[id] = struct{}{}
	}

	var rated map[int]struct{}
	if req.ExcludeRated && req.UserID != nil {
		rated = e.history[*req.UserID]
	}

	allowed := e.catalog.FilterByGenres(req.Genres)

	candidates := make([]int, 0, len(allowed))
	for _, id := range e.catalog.AllIDs() {
		if _, ok := allowed[id]; !ok {
			continue
		}
		if _, ok := exclude[id]; ok {
			continue
		}
		if _, ok := rated[id]; ok {
			continue
		}
		candidates = append(candidates, id)
	}
	return candidates
}

// contentScores returns normalized content scores. A missing seed set is
// treated as an absent signal.
func (e *Engine) contentScores(seeds, candidates []int) (map[int]float64, error) {
	raw, err := e.content.ScoreAgainstSeeds(seeds, candidates)
	if errors.Is(err, content.ErrEmptySeedSet) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("content scores: %w", err)
	}
	return score.ToMap(score.Normalize(raw)), nil
}

// collabScores returns normalized collaborative scores. Candidates without
// learned factors are absent from the map.
func (e *Engine) collabScores(user int, candidates []int) (map[int]float64, error) {
	raw, err := e.model.ScoreForUser(user, candidates)
	if errors.Is(err, latent.ErrUnavailable) {
		// validate already checked the user, so this only happens if the
		// model and request disagree; report it the same way.
		return nil, fmt.Errorf("%w: %d", ErrUnknownUser, user)
	}
	if err != nil {
		return nil, fmt.Errorf("collaborative scores: %w", err)
	}
	return score.ToMap(score.Normalize(raw)), nil
}

// blend combines the two normalized signals. An item scored by only one
// signal keeps that score; an item scored by neither is dropped.
func blend(candidates []int, contentScores, collabScores map[int]float64, mode Mode, alpha float64) []ScoredItem {
	items := make([]ScoredItem, 0, len(candidates))
	for _, id := range candidates {
		c, hasContent := contentScores[id]
		k, hasCollab := collabScores[id]

		item := ScoredItem{ItemID: id}
		if hasContent {
			item.ContentScore = floatPtr(c)
		}
		if hasCollab {
			item.CollabScore = floatPtr(k)
		}

		switch {
		case hasContent && hasCollab && mode == ModeHybrid:
			item.Score = alpha*c + (1-alpha)*k
		case hasContent:
			item.Score = c
		case hasCollab:
			item.Score = k
		default:
			continue
		}
		items = append(items, item)
	}
	return items
}

// rank sorts by descending score with ascending item ID as the tie-break.
func rank(items []ScoredItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ItemID < items[j].ItemID
	})
}

// Popular returns up to limit of the most popular items, optionally
// restricted to the given genres.
func (e *Engine) Popular(limit int, genres []string) []PopularItem {
	if limit <= 0 {
		limit = e.config.DefaultLimit
	}
	allowed := e.catalog.FilterByGenres(genres)

	out := make([]PopularItem, 0, limit)
	for _, p := range e.popular {
		if _, ok := allowed[p.ItemID]; !ok {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Predict returns the predicted rating of user for item.
func (e *Engine) Predict(user, item int) (float64, error) {
	if !e.model.HasUser(user) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownUser, user)
	}
	if !e.catalog.Contains(item) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownItem, item)
	}
	r, err := e.model.Predict(user, item)
	if err != nil {
		return 0, fmt.Errorf("%w: item %d", ErrNoPrediction, item)
	}
	return r, nil
}

// Similarity returns the content similarity of two catalog items.
func (e *Engine) Similarity(a, b int) (float64, error) {
	for _, id := range []int{a, b} {
		if !e.catalog.Contains(id) {
			return 0, fmt.Errorf("%w: %d", ErrUnknownItem, id)
		}
	}
	return e.content.Similarity(a, b)
}

func dedupe(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func floatPtr(v float64) *float64 {
	return &v
}
