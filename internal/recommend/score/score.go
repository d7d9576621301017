// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package score defines the per-item score entries produced by each
// recommendation signal and the min-max normalizer used to put signals with
// different scales (cosine similarity, predicted rating) onto [0, 1].
package score

// Neutral is the value every entry receives when all raw scores are equal.
const Neutral = 0.5

// Entry is a raw or normalized score for one item.
type Entry struct {
	ItemID int     `json:"item_id"`
	Score  float64 `json:"score"`
}

// Normalize rescales entries so the minimum maps to 0 and the maximum to 1.
// If every score is equal the result is Neutral for all entries.
// The input slice is not modified.
func Normalize(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	if len(entries) == 0 {
		return out
	}

	minScore, maxScore := entries[0].Score, entries[0].Score
	for _, e := range entries[1:] {
		if e.Score < minScore {
			minScore = e.Score
		}
		if e.Score > maxScore {
			maxScore = e.Score
		}
	}

	rang := maxScore - minScore
	for i, e := range entries {
		out[i].ItemID = e.ItemID
		if rang == 0 {
			out[i].Score = Neutral
			continue
		}
		out[i].Score = (e.Score - minScore) / rang
	}

	return out
}

// ToMap indexes entries by item ID.
func ToMap(entries []Entry) map[int]float64 {
	m := make(map[int]float64, len(entries))
	for _, e := range entries {
		m[e.ItemID] = e.Score
	}
	return m
}
