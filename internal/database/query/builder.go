// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package query provides SQL building helpers for the database package.
package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddGenres("r.movie_id", []string{"Comedy"})
//	wb.AddRatedSince(since)
//	whereClause, args := wb.Build()
type WhereBuilder struct {
	clauses []string
	args    []any
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []any{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...any) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddGenres keeps rows whose movie carries at least one of genres,
// compared case-insensitively. movieColumn names the movie id column of
// the outer query.
func (wb *WhereBuilder) AddGenres(movieColumn string, genres []string) *WhereBuilder {
	if len(genres) == 0 {
		return wb
	}
	for _, g := range genres {
		wb.args = append(wb.args, strings.ToLower(strings.TrimSpace(g)))
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf(
		"EXISTS (SELECT 1 FROM movie_genres g WHERE g.movie_id = %s AND lower(g.genre) IN (%s))",
		movieColumn, Placeholders(len(genres))))
	return wb
}

// AddRatedSince adds "rated_at >= ?" when since is non-zero.
func (wb *WhereBuilder) AddRatedSince(since time.Time) *WhereBuilder {
	if since.IsZero() {
		return wb
	}
	wb.clauses = append(wb.clauses, "rated_at >= ?")
	wb.args = append(wb.args, since)
	return wb
}

// Build joins clauses with AND. Returns ("1=1", []) if none were added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", []any{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []any) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

// Placeholders returns n comma-separated "?" markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ValuesRows returns "(?, ?), (?, ?)" for rows tuples of width cols.
func ValuesRows(rows, cols int) string {
	if rows <= 0 || cols <= 0 {
		return ""
	}
	tuple := "(" + Placeholders(cols) + ")"
	return strings.TrimSuffix(strings.Repeat(tuple+", ", rows), ", ")
}
