// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package main is the entry point for the CineRank command.
//
// CineRank recommends movies from the MovieLens ratings data by blending a
// TF-IDF content signal over titles and genres with a biased matrix
// factorization model of user ratings.
//
// # Commands
//
//	cinerank import      Load movies.dat and ratings.dat into DuckDB
//	cinerank train       Fit both models and save the next bundle version
//	cinerank serve       Serve the HTTP API from the latest bundle
//	cinerank recommend   Rank movies from the command line
//	cinerank models      List stored bundles
//
// # Configuration
//
// Configuration is loaded via koanf with layered sources (highest priority wins):
//   - Environment variables (HTTP_PORT, DUCKDB_PATH, ARTIFACTS_DIR, TRAIN_EPOCHS, ...)
//   - Config file (--config, $CONFIG_PATH, ./config.yaml, /etc/cinerank/config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// serve shuts down gracefully on SIGINT and SIGTERM: the HTTP server stops
// accepting connections and in-flight requests get server.shutdown_timeout
// to complete.
//
// # Example Usage
//
//	export MOVIES_PATH=/data/ml-1m/movies.dat
//	export RATINGS_PATH=/data/ml-1m/ratings.dat
//	cinerank train
//	cinerank recommend --seeds 1,3114 --user 42 --alpha 0.7
//	cinerank serve
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
