// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tomtom215/cinerank/internal/metrics"
	"github.com/tomtom215/cinerank/internal/models"
	"github.com/tomtom215/cinerank/internal/recommend"
)

// resultCache memoizes recommendation responses. Keys include the engine
// version, so a reload never serves results of the previous bundle.
// A nil cache is valid and always misses.
type resultCache struct {
	lru *expirable.LRU[string, *models.RecommendResponse]
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	if size <= 0 {
		return nil
	}
	onEvict := func(string, *models.RecommendResponse) {
		metrics.CacheEvictions.Inc()
	}
	return &resultCache{lru: expirable.NewLRU(size, onEvict, ttl)}
}

func (c *resultCache) get(key string) (*models.RecommendResponse, bool) {
	if c == nil {
		return nil, false
	}
	resp, ok := c.lru.Get(key)
	metrics.RecordCacheLookup(ok)
	return resp, ok
}

func (c *resultCache) add(key string, resp *models.RecommendResponse) {
	if c == nil {
		return
	}
	c.lru.Add(key, resp)
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// cacheKey canonicalizes a request so that equivalent requests share an
// entry: seeds are deduplicated and sorted, genres are lowercased and
// sorted.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func cacheKey(version int, req recommend.Request) string {
	seeds := slices.Clone(req.SeedIDs)
	slices.Sort(seeds)
	seeds = slices.Compact(seeds)

	genres := make([]string, 0, len(req.Genres))
	for _, g := range req.Genres {
		genres = append(genres, strings.ToLower(strings.TrimSpace(g)))
	}
	slices.Sort(genres)
	genres = slices.Compact(genres)

	var b strings.Builder
	b.WriteString("v")
	b.WriteString(strconv.Itoa(version))
	b.WriteString("|s")
	for i, id := range seeds {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	b.WriteString("|u")
	if req.UserID != nil {
		b.WriteString(strconv.Itoa(*req.UserID))
	}
	b.WriteString("|g")
	b.WriteString(strings.Join(genres, ","))
	b.WriteString("|a")
	b.WriteString(strconv.FormatFloat(req.Alpha, 'g', -1, 64))
	b.WriteString("|l")
	b.WriteString(strconv.Itoa(req.Limit))
	if req.ExcludeRated {
		b.WriteString("|x")
	}
	return b.String()
}
