// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package latent implements the collaborative signal: a biased matrix
// factorization rating model.
//
// The predicted rating of user u for item i is
//
//	r̂(u, i) = μ + b_u + b_i + p_u · q_i
//
// where μ is the global mean rating, b_u and b_i are user and item biases
// and p_u, q_i are K-dimensional latent factor vectors. Users or items that
// were not seen during training have no factors; predictions involving them
// return ErrUnavailable instead of a made-up default.
//
// A Model is immutable after construction and safe for concurrent use.
package latent

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/cinerank/internal/recommend/score"
)

// ErrUnavailable is returned when a user or item has no learned factors.
var ErrUnavailable = errors.New("prediction unavailable")

// Factors is the learned state of one user or item.
type Factors struct {
	ID     int
	Bias   float64
	Vector []float64
}

// Artifact is the persisted form of a Model.
type Artifact struct {
	// K is the latent dimensionality shared by every factor vector.
	K int

	// GlobalBias is the mean training rating.
	GlobalBias float64

	// MinRating and MaxRating bound predictions. Both zero disables clamping.
	MinRating float64
	MaxRating float64

	Users []Factors
	Items []Factors
}

type row struct {
	bias   float64
	vector []float64
}

// Model is a trained biased matrix factorization model.
type Model struct {
	k         int
	global    float64
	minRating float64
	maxRating float64
	users     map[int]row
	items     map[int]row
	userOrder []int
	itemOrder []int
}

// New validates an artifact and builds a Model from it.
func New(a Artifact) (*Model, error) {
	if a.K <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", a.K)
	}
	if a.MinRating > a.MaxRating {
		return nil, fmt.Errorf("min rating %v exceeds max rating %v", a.MinRating, a.MaxRating)
	}
	if !finite(a.GlobalBias) {
		return nil, fmt.Errorf("global bias is not finite")
	}

	m := &Model{
		k:         a.K,
		global:    a.GlobalBias,
		minRating: a.MinRating,
		maxRating: a.MaxRating,
	}

	var err error
	if m.users, m.userOrder, err = buildRows("user", a.K, a.Users); err != nil {
		return nil, err
	}
	if m.items, m.itemOrder, err = buildRows("item", a.K, a.Items); err != nil {
		return nil, err
	}
	return m, nil
}

func buildRows(kind string, k int, in []Factors) (map[int]row, []int, error) {
	rows := make(map[int]row, len(in))
	order := make([]int, 0, len(in))
	for _, f := range in {
		if _, dup := rows[f.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate %s factors for id %d", kind, f.ID)
		}
		if len(f.Vector) != k {
			return nil, nil, fmt.Errorf("%s %d has %d factors, want %d", kind, f.ID, len(f.Vector), k)
		}
		if !finite(f.Bias) || !allFinite(f.Vector) {
			return nil, nil, fmt.Errorf("%s %d has non-finite parameters", kind, f.ID)
		}
		rows[f.ID] = row{bias: f.Bias, vector: append([]float64(nil), f.Vector...)}
		order = append(order, f.ID)
	}
	return rows, order, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if !finite(x) {
			return false
		}
	}
	return true
}

// K returns the latent dimensionality.
func (m *Model) K() int { return m.k }

// UserCount returns the number of users with factors.
func (m *Model) UserCount() int { return len(m.users) }

// ItemCount returns the number of items with factors.
func (m *Model) ItemCount() int { return len(m.items) }

// HasUser reports whether the user has learned factors.
func (m *Model) HasUser(id int) bool {
	_, ok := m.users[id]
	return ok
}

// HasItem reports whether the item has learned factors.
func (m *Model) HasItem(id int) bool {
	_, ok := m.items[id]
	return ok
}

// RatingRange returns the prediction bounds.
func (m *Model) RatingRange() (lo, hi float64) {
	return m.minRating, m.maxRating
}

// Predict returns the predicted rating of user for item.
func (m *Model) Predict(user, item int) (float64, error) {
	u, ok := m.users[user]
	if !ok {
		return 0, fmt.Errorf("%w: unknown user %d", ErrUnavailable, user)
	}
	i, ok := m.items[item]
	if !ok {
		return 0, fmt.Errorf("%w: unknown item %d", ErrUnavailable, item)
	}
	return m.predictRows(u, i), nil
}

func (m *Model) predictRows(u, i row) float64 {
	return m.clamp(m.global + u.bias + i.bias + floats.Dot(u.vector, i.vector))
}

func (m *Model) clamp(r float64) float64 {
	if m.minRating == 0 && m.maxRating == 0 {
		return r
	}
	if r < m.minRating {
		return m.minRating
	}
	if r > m.maxRating {
		return m.maxRating
	}
	return r
}

// ScoreForUser predicts a rating for each candidate, skipping candidates
// without factors. It fails with ErrUnavailable when the user is unknown.
func (m *Model) ScoreForUser(user int, candidates []int) ([]score.Entry, error) {
	u, ok := m.users[user]
	if !ok {
		return nil, fmt.Errorf("%w: unknown user %d", ErrUnavailable, user)
	}

	out := make([]score.Entry, 0, len(candidates))
	for _, id := range candidates {
		i, ok := m.items[id]
		if !ok {
			continue
		}
		out = append(out, score.Entry{ItemID: id, Score: m.predictRows(u, i)})
	}
	return out, nil
}

// Artifact returns a deep copy of the model in persistable form.
func (m *Model) Artifact() Artifact {
	return Artifact{
		K:          m.k,
		GlobalBias: m.global,
		MinRating:  m.minRating,
		MaxRating:  m.maxRating,
		Users:      exportRows(m.users, m.userOrder),
		Items:      exportRows(m.items, m.itemOrder),
	}
}

func exportRows(rows map[int]row, order []int) []Factors {
	out := make([]Factors, 0, len(order))
	for _, id := range order {
		r := rows[id]
		out = append(out, Factors{ID: id, Bias: r.bias, Vector: append([]float64(nil), r.vector...)})
	}
	return out
}
