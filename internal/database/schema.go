// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package database

import (
	"context"
	"fmt"
)

// schemaStatements create the warehouse tables. Genre order within a movie
// is kept in ordinal so catalog items round-trip in file order. Movie id
// uniqueness is enforced by the importer, not a key, so a re-import can
// delete and insert the same ids in one transaction.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		movie_id INTEGER NOT NULL,
		title    VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id INTEGER NOT NULL,
		ordinal  INTEGER NOT NULL,
		genre    VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		user_id  INTEGER NOT NULL,
		movie_id INTEGER NOT NULL,
		rating   DOUBLE  NOT NULL,
		rated_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS imports (
		imported_at  TIMESTAMP NOT NULL,
		movies_path  VARCHAR   NOT NULL,
		ratings_path VARCHAR   NOT NULL,
		movies       BIGINT    NOT NULL,
		ratings      BIGINT    NOT NULL
	)`,
}

var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_movies_id ON movies(movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movie_genres_movie ON movie_genres(movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_movie ON ratings(movie_id)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, stmt := range indexStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
