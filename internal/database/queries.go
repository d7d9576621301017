// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cinerank/internal/database/query"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/catalog"
	"github.com/tomtom215/cinerank/internal/recommend/latent"
)

// Counts summarizes the warehouse contents.
type Counts struct {
	Movies  int64 `json:"movies"`
	Ratings int64 `json:"ratings"`
	Users   int64 `json:"users"`
	Genres  int64 `json:"genres"`
}

// RatingFilter narrows GetRatings. Zero values mean no restriction.
type RatingFilter struct {
	// Since keeps ratings made at or after this time. Ratings imported
	// without a timestamp never match a non-zero Since.
	Since time.Time
}

// Counts returns row counts for the main tables.
func (db *DB) Counts(ctx context.Context) (c *Counts, err error) {
	start := time.Now()
	defer func() { observe("counts", start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	c = &Counts{}
	err = db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM movies),
			(SELECT COUNT(*) FROM ratings),
			(SELECT COUNT(DISTINCT user_id) FROM ratings),
			(SELECT COUNT(DISTINCT lower(genre)) FROM movie_genres)
	`).Scan(&c.Movies, &c.Ratings, &c.Users, &c.Genres)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	return c, nil
}

// IsEmpty reports whether no movies have been imported.
func (db *DB) IsEmpty(ctx context.Context) (bool, error) {
	c, err := db.Counts(ctx)
	if err != nil {
		return false, err
	}
	return c.Movies == 0, nil
}

// GetItems returns every movie with its genres in file order, by ascending id.
func (db *DB) GetItems(ctx context.Context) (items []catalog.Item, err error) {
	start := time.Now()
	defer func() { observe("items", start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT m.movie_id, m.title, string_agg(g.genre, '|' ORDER BY g.ordinal) AS genres
		FROM movies m
		JOIN movie_genres g ON g.movie_id = m.movie_id
		GROUP BY m.movie_id, m.title
		ORDER BY m.movie_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var (
			id     int
			title  string
			genres string
		)
		if err = rows.Scan(&id, &title, &genres); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, catalog.Item{
			ID:     id,
			Title:  title,
			Genres: strings.Split(genres, genreSeparator),
		})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// GetRatings returns ratings ordered by user then movie, so a seeded
// trainer sees the same input order on every run.
func (db *DB) GetRatings(ctx context.Context, filter RatingFilter) (ratings []latent.Rating, err error) {
	start := time.Now()
	defer func() { observe("ratings", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	where, args := query.NewWhereBuilder().AddRatedSince(filter.Since).BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT user_id, movie_id, rating FROM ratings "+where+" ORDER BY user_id, movie_id", args...)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var r latent.Rating
		if err = rows.Scan(&r.UserID, &r.ItemID, &r.Value); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

// GetPopular returns movies with more than minRatings ratings, ordered by
// mean rating descending, then rating count descending, then id. A limit
// of zero or less returns every qualifying movie.
func (db *DB) GetPopular(ctx context.Context, minRatings, limit int, genres []string) (popular []recommend.PopularItem, err error) {
	start := time.Now()
	defer func() { observe("popular", start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().AddGenres("r.movie_id", genres).BuildWithPrefix()
	q := `
		SELECT r.movie_id, COUNT(*) AS n, AVG(r.rating) AS mean
		FROM ratings r
		` + where + `
		GROUP BY r.movie_id
		HAVING COUNT(*) > ?
		ORDER BY mean DESC, n DESC, r.movie_id ASC`
	args = append(args, minRatings)
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query popular: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var p recommend.PopularItem
		if err = rows.Scan(&p.ItemID, &p.RatingCount, &p.MeanRating); err != nil {
			return nil, fmt.Errorf("scan popular: %w", err)
		}
		popular = append(popular, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popular: %w", err)
	}
	return popular, nil
}

// GetHistory returns every user's rated movie ids in ascending order.
func (db *DB) GetHistory(ctx context.Context) (history map[int][]int, err error) {
	start := time.Now()
	defer func() { observe("history", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT user_id, movie_id FROM ratings ORDER BY user_id, movie_id`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer closeQuietly(rows)

	history = make(map[int][]int)
	for rows.Next() {
		var user, movie int
		if err = rows.Scan(&user, &movie); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		history[user] = append(history[user], movie)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return history, nil
}
