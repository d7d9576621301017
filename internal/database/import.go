// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package database

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/tomtom215/cinerank/internal/database/query"
	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/metrics"
)

const (
	// DefaultSeparator is the MovieLens 1M field separator.
	DefaultSeparator = "::"

	// genreSeparator splits the genre field of movies.dat.
	genreSeparator = "|"

	insertBatchSize = 1000
)

// ErrMalformedInput reports a line that could not be parsed.
var ErrMalformedInput = errors.New("malformed input")

// ImportOptions describes the MovieLens files to load.
type ImportOptions struct {
	MoviesPath  string
	RatingsPath string

	// Separator splits fields within a line; DefaultSeparator when empty.
	Separator string

	// Encoding is "latin1" (the MovieLens 1M encoding, used when empty) or "utf8".
	Encoding string
}

// ImportStats summarizes a completed import.
type ImportStats struct {
	Movies         int           `json:"movies"`
	GenreLinks     int           `json:"genre_links"`
	Ratings        int           `json:"ratings"`
	Users          int           `json:"users"`
	SkippedRatings int           `json:"skipped_ratings"` // ratings of movies not in the movies file
	Duration       time.Duration `json:"duration"`
}

type movieRow struct {
	id     int
	title  string
	genres []string
}

type ratingRow struct {
	user   int
	movie  int
	rating float64
	at     time.Time
}

// ImportMovieLens replaces the warehouse contents with the given movies and
// ratings files. The whole import runs in one transaction; on any error
// the previous contents are left untouched.
func (db *DB) ImportMovieLens(ctx context.Context, opts ImportOptions) (stats *ImportStats, err error) {
	start := time.Now()
	defer func() { observe("import", start, err) }()

	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	if sep == genreSeparator {
		return nil, fmt.Errorf("separator %q collides with the genre separator", sep)
	}

	movies, err := readLines(opts.MoviesPath, opts.Encoding, func(line string) (movieRow, error) {
		return parseMovie(line, sep)
	})
	if err != nil {
		return nil, fmt.Errorf("read movies: %w", err)
	}
	ratings, err := readLines(opts.RatingsPath, opts.Encoding, func(line string) (ratingRow, error) {
		return parseRating(line, sep)
	})
	if err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}

	known := make(map[int]struct{}, len(movies))
	for _, m := range movies {
		if _, dup := known[m.id]; dup {
			return nil, fmt.Errorf("%w: duplicate movie id %d", ErrMalformedInput, m.id)
		}
		known[m.id] = struct{}{}
	}

	stats = &ImportStats{Movies: len(movies)}
	kept := ratings[:0]
	users := make(map[int]struct{})
	for _, r := range ratings {
		if _, ok := known[r.movie]; !ok {
			stats.SkippedRatings++
			continue
		}
		users[r.user] = struct{}{}
		kept = append(kept, r)
	}
	stats.Ratings = len(kept)
	stats.Users = len(users)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	for _, table := range []string{"ratings", "movie_genres", "movies"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	movieRows := make([][]any, 0, len(movies))
	genreRows := make([][]any, 0, len(movies)*2)
	for _, m := range movies {
		movieRows = append(movieRows, []any{m.id, m.title})
		for pos, g := range m.genres {
			genreRows = append(genreRows, []any{m.id, pos, g})
		}
	}
	stats.GenreLinks = len(genreRows)

	ratingRows := make([][]any, 0, len(kept))
	for _, r := range kept {
		var at any
		if !r.at.IsZero() {
			at = r.at
		}
		ratingRows = append(ratingRows, []any{r.user, r.movie, r.rating, at})
	}

	if err = insertBatches(ctx, tx, "movies", []string{"movie_id", "title"}, movieRows); err != nil {
		return nil, err
	}
	if err = insertBatches(ctx, tx, "movie_genres", []string{"movie_id", "ordinal", "genre"}, genreRows); err != nil {
		return nil, err
	}
	if err = insertBatches(ctx, tx, "ratings", []string{"user_id", "movie_id", "rating", "rated_at"}, ratingRows); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO imports (imported_at, movies_path, ratings_path, movies, ratings) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC(), opts.MoviesPath, opts.RatingsPath, stats.Movies, stats.Ratings); err != nil {
		return nil, fmt.Errorf("record import: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.DBRowsImported.WithLabelValues("movies").Add(float64(stats.Movies))
	metrics.DBRowsImported.WithLabelValues("movie_genres").Add(float64(stats.GenreLinks))
	metrics.DBRowsImported.WithLabelValues("ratings").Add(float64(stats.Ratings))

	stats.Duration = time.Since(start)
	logging.Info().
		Int("movies", stats.Movies).
		Int("ratings", stats.Ratings).
		Int("users", stats.Users).
		Int("skipped_ratings", stats.SkippedRatings).
		Dur("duration", stats.Duration).
		Msg("MovieLens import complete")

	return stats, nil
}

func insertBatches(ctx context.Context, tx *sql.Tx, table string, cols []string, rows [][]any) error {
	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(cols, ", "))
	for lo := 0; lo < len(rows); lo += insertBatchSize {
		hi := min(lo+insertBatchSize, len(rows))
		batch := rows[lo:hi]

		args := make([]any, 0, len(batch)*len(cols))
		for _, row := range batch {
			args = append(args, row...)
		}
		if _, err := tx.ExecContext(ctx, head+query.ValuesRows(len(batch), len(cols)), args...); err != nil {
			return fmt.Errorf("insert %s rows %d-%d: %w", table, lo, hi, err)
		}
	}
	return nil
}

// readLines decodes path and parses every non-blank line. A first line
// that does not start with a digit is treated as a CSV-style header.
func readLines[T any](path, encoding string, parse func(line string) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(f)

	r, err := decoder(f, encoding)
	if err != nil {
		return nil, err
	}

	var out []T
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if lineNo == 1 && (line[0] < '0' || line[0] > '9') {
			continue
		}
		v, err := parse(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case "utf8", "utf-8":
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// parseMovie splits "id<sep>title<sep>genres". The title is everything
// between the first and last separator so titles may contain it.
func parseMovie(line, sep string) (movieRow, error) {
	first := strings.Index(line, sep)
	last := strings.LastIndex(line, sep)
	if first < 0 || first == last {
		return movieRow{}, fmt.Errorf("%w: want id%stitle%sgenres", ErrMalformedInput, sep, sep)
	}

	id, err := strconv.Atoi(strings.TrimSpace(line[:first]))
	if err != nil || id <= 0 {
		return movieRow{}, fmt.Errorf("%w: movie id %q", ErrMalformedInput, line[:first])
	}

	title := strings.TrimSpace(line[first+len(sep) : last])
	if title == "" {
		return movieRow{}, fmt.Errorf("%w: movie %d has no title", ErrMalformedInput, id)
	}

	var genres []string
	for _, g := range strings.Split(line[last+len(sep):], genreSeparator) {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	if len(genres) == 0 {
		return movieRow{}, fmt.Errorf("%w: movie %d has no genres", ErrMalformedInput, id)
	}

	return movieRow{id: id, title: title, genres: genres}, nil
}

// parseRating splits "user<sep>movie<sep>rating[<sep>unix-seconds]".
func parseRating(line, sep string) (ratingRow, error) {
	fields := strings.Split(line, sep)
	if len(fields) != 3 && len(fields) != 4 {
		return ratingRow{}, fmt.Errorf("%w: want 3 or 4 fields, got %d", ErrMalformedInput, len(fields))
	}

	user, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || user <= 0 {
		return ratingRow{}, fmt.Errorf("%w: user id %q", ErrMalformedInput, fields[0])
	}
	movie, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || movie <= 0 {
		return ratingRow{}, fmt.Errorf("%w: movie id %q", ErrMalformedInput, fields[1])
	}
	rating, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return ratingRow{}, fmt.Errorf("%w: rating %q", ErrMalformedInput, fields[2])
	}

	row := ratingRow{user: user, movie: movie, rating: rating}
	if len(fields) == 4 {
		ts, err := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 64)
		if err != nil {
			return ratingRow{}, fmt.Errorf("%w: timestamp %q", ErrMalformedInput, fields[3])
		}
		row.at = time.Unix(ts, 0).UTC()
	}
	return row, nil
}
