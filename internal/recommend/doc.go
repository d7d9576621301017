// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package recommend implements the hybrid movie ranking engine.
//
// # Architecture
//
// The engine blends two independent signals over an immutable catalog:
//
//   - Content: TF-IDF similarity of titles and genres to seed movies
//     (package content), scored as the maximum similarity to any seed.
//   - Collaborative: ratings predicted by a biased matrix factorization
//     model (package latent).
//
// Each signal is min-max normalized on its own (package score) before the
// two are combined as α·content + (1-α)·collaborative.
//
// # Request Pipeline
//
//	validate -> gather candidates -> genre pre-filter -> content scores
//	-> collaborative scores -> normalize -> blend -> sort and truncate
//
// A candidate that only one signal could score keeps that signal's score
// rather than being dropped. Ties are broken by ascending item ID so
// identical requests always produce identical results.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, logger, cat, space, model,
//	    recommend.WithHistory(history),
//	    recommend.WithPopular(popular),
//	)
//
//	res, err := engine.Recommend(ctx, recommend.Request{
//	    SeedIDs: []int{1, 2571},
//	    UserID:  &userID,
//	    Alpha:   0.6,
//	    Limit:   10,
//	})
//
// # Thread Safety
//
// An Engine and everything it references is read-only after NewEngine
// returns, so concurrent Recommend calls need no locking. To replace the
// artifacts, build a new Engine and publish it atomically.
package recommend
