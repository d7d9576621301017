// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler    *Handler
	middleware *ChiMiddleware
}

// NewRouter creates a new router.
func NewRouter(handler *Handler, middleware *ChiMiddleware) *Router {
	if middleware == nil {
		middleware = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, middleware: middleware}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, in order
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog())
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS()) // must be global to answer OPTIONS preflight

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Route("/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit("api"))
		r.Use(PrometheusMetrics)

		r.Post("/recommendations", router.handler.Recommend)
		r.Get("/popular", router.handler.Popular)
		r.Get("/genres", router.handler.Genres)
		r.Get("/model", router.handler.Model)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", router.handler.SearchItems)
			r.Get("/{id}", router.handler.GetItem)
			r.Get("/{id}/similar", router.handler.Similar)
			r.Get("/{id}/similarity/{otherID}", router.handler.Similarity)
		})

		r.Get("/users/{id}/predictions/{itemID}", router.handler.Predict)
	})

	return r
}
