// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/catalog"
	"github.com/tomtom215/cinerank/internal/recommend/content"
	"github.com/tomtom215/cinerank/internal/recommend/latent"
)

// Bundle is everything the serving engine needs, produced by one training
// run and persisted as a single versioned file.
type Bundle struct {
	Items   []catalog.Item
	Content content.Artifact
	Model   latent.Artifact
	Popular []recommend.PopularItem

	// History maps user id to the item ids they rated in the training data.
	History map[int][]int

	TrainRMSE float64
}

// SaveBundle writes b as the next version of name.
//
//nolint:gocritic // meta passed by value mirrors Store.Save
func SaveBundle(ctx context.Context, store *Store, name string, b *Bundle, meta ModelMetadata) (*ModelMetadata, error) {
	if b == nil {
		return nil, fmt.Errorf("nil bundle")
	}
	if meta.ItemCount == 0 {
		meta.ItemCount = len(b.Items)
	}
	if meta.UserCount == 0 {
		meta.UserCount = len(b.Model.Users)
	}
	return store.Save(ctx, name, store.NextVersion(name), b, meta)
}

// LoadBundle reads a bundle. Version 0 loads the latest.
func LoadBundle(ctx context.Context, store *Store, name string, version int) (*Bundle, *ModelMetadata, error) {
	var b Bundle
	meta, err := store.Load(ctx, name, version, &b)
	if err != nil {
		return nil, nil, err
	}
	return &b, meta, nil
}

// Engine validates the bundle's artifacts and assembles a serving engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (b *Bundle) Engine(cfg *recommend.Config, logger zerolog.Logger, meta *ModelMetadata) (*recommend.Engine, error) {
	cat, err := catalog.New(b.Items)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	space, err := content.New(b.Content)
	if err != nil {
		return nil, fmt.Errorf("content space: %w", err)
	}
	model, err := latent.New(b.Model)
	if err != nil {
		return nil, fmt.Errorf("rating model: %w", err)
	}

	info := recommend.ModelInfo{
		Items:          cat.Len(),
		Users:          model.UserCount(),
		Factors:        model.K(),
		VocabularySize: space.VocabularySize(),
		TrainRMSE:      b.TrainRMSE,
	}
	if meta != nil {
		info.Name = meta.Name
		info.Version = meta.Version
		info.TrainedAt = meta.TrainedAt
		info.Ratings = meta.RatingCount
	}

	return recommend.NewEngine(cfg, logger, cat, space, model,
		recommend.WithHistory(b.History),
		recommend.WithPopular(b.Popular),
		recommend.WithModelInfo(info),
	)
}
