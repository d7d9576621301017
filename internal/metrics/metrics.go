// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are package-level promauto variables registered with the
// default registry; use the Record* helpers rather than touching label
// values directly so label cardinality stays bounded.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation engine
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerank_recommend_requests_total",
			Help: "Recommendation requests by scoring mode and outcome",
		},
		[]string{"mode", "outcome"}, // mode: content|collaborative|hybrid|none; outcome: ok or an error code
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerank_recommend_duration_seconds",
			Help:    "Time spent ranking one recommendation request",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinerank_recommend_candidates",
			Help:    "Candidates remaining after seed removal and filters",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerank_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerank_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinerank_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerank_api_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	// Response cache
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinerank_cache_hits_total",
			Help: "Recommendation response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinerank_cache_misses_total",
			Help: "Recommendation response cache misses",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinerank_cache_evictions_total",
			Help: "Recommendation responses evicted from the cache",
		},
	)

	// Artifacts
	ArtifactReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerank_artifact_reloads_total",
			Help: "Artifact reload attempts by result",
		},
		[]string{"result"}, // success|failure|unchanged
	)

	ArtifactVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinerank_artifact_version",
			Help: "Version of the bundle currently being served",
		},
	)

	ArtifactItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinerank_artifact_items",
			Help: "Catalog items in the served bundle",
		},
	)

	ArtifactUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinerank_artifact_users",
			Help: "Users with learned factors in the served bundle",
		},
	)

	// Training
	TrainingEpochs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinerank_training_epochs_total",
			Help: "SGD epochs completed",
		},
	)

	TrainingRMSE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinerank_training_rmse",
			Help: "Training RMSE after the most recent epoch",
		},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinerank_training_duration_seconds",
			Help:    "Wall time of a full training run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s .. ~34m
		},
	)

	// Ratings warehouse
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerank_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerank_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	DBRowsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerank_duckdb_rows_imported_total",
			Help: "Rows loaded into DuckDB by table",
		},
		[]string{"table"},
	)
)

// RecordRecommendation records one engine call. mode is "none" when the
// request failed before a mode was chosen.
func RecordRecommendation(mode, outcome string, candidates int, duration time.Duration) {
	RecommendRequests.WithLabelValues(mode, outcome).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if outcome == "ok" {
		RecommendCandidates.Observe(float64(candidates))
	}
}

// RecordAPIRequest records an API request metric. route must be the chi
// route pattern, not the raw path.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordArtifactReload records a reload attempt.
func RecordArtifactReload(result string) {
	ArtifactReloads.WithLabelValues(result).Inc()
}

// SetServedArtifact publishes gauges describing the served bundle.
func SetServedArtifact(version, items, users int) {
	ArtifactVersion.Set(float64(version))
	ArtifactItems.Set(float64(items))
	ArtifactUsers.Set(float64(users))
}

// RecordTrainingEpoch records one completed SGD epoch.
func RecordTrainingEpoch(rmse float64) {
	TrainingEpochs.Inc()
	TrainingRMSE.Set(rmse)
}

// RecordDBQuery records a DuckDB query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
