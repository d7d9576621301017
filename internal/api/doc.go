// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package api serves the recommendation engine over HTTP using the Chi router.
//
// # Endpoints
//
//	GET  /health/live                            process liveness
//	GET  /health/ready                           200 once an engine is published
//	GET  /metrics                                Prometheus exposition
//	POST /api/v1/recommendations                 ranked recommendations
//	GET  /api/v1/popular?limit=&genres=          popularity fallback list
//	GET  /api/v1/genres                          catalog genres
//	GET  /api/v1/items?q=&limit=                 title search
//	GET  /api/v1/items/{id}                      one movie
//	GET  /api/v1/items/{id}/similar?limit=       content neighbours of one movie
//	GET  /api/v1/items/{id}/similarity/{otherID} cosine similarity of two movies
//	GET  /api/v1/users/{id}/predictions/{itemID} predicted rating
//	GET  /api/v1/model                           served bundle metadata
//
// # Serving state
//
// The engine is immutable once built. EngineHolder publishes a complete
// engine with one atomic pointer store, so a request sees either the old
// bundle or the new one, never a mix. Handlers load the pointer once per
// request.
//
// Every response uses the models.APIResponse envelope.
package api
