// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package recommend

import (
	"fmt"
	"time"
)

// Mode identifies which signals produced a result.
type Mode int

const (
	// ModeContent uses only seed-item similarity.
	ModeContent Mode = iota + 1

	// ModeCollaborative uses only predicted ratings.
	ModeCollaborative

	// ModeHybrid blends both signals.
	ModeHybrid
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeContent:
		return "content"
	case ModeCollaborative:
		return "collaborative"
	case ModeHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// MarshalText encodes the mode as its name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "content":
		*m = ModeContent
	case "collaborative":
		*m = ModeCollaborative
	case "hybrid":
		*m = ModeHybrid
	default:
		return fmt.Errorf("unknown mode %q", string(b))
	}
	return nil
}

// Request is a single recommendation query.
type Request struct {
	// SeedIDs are items the user already likes. Order is irrelevant and
	// duplicates are ignored.
	SeedIDs []int `json:"seed_ids,omitempty"`

	// UserID selects the collaborative signal when set.
	UserID *int `json:"user_id,omitempty"`

	// Genres restricts candidates to items carrying at least one of these
	// genres. Empty means no restriction.
	Genres []string `json:"genres,omitempty"`

	// Alpha is the content weight in hybrid mode, in [0, 1].
	Alpha float64 `json:"alpha"`

	// Limit is the maximum number of results.
	Limit int `json:"limit"`

	// ExcludeRated removes items the user rated in the training data.
	ExcludeRated bool `json:"exclude_rated,omitempty"`
}

// ScoredItem is one ranked result.
type ScoredItem struct {
	// ItemID is the recommended item.
	ItemID int `json:"item_id"`

	// Score is the final blended score in [0, 1].
	Score float64 `json:"score"`

	// ContentScore is the normalized content score, if the item had one.
	ContentScore *float64 `json:"content_score,omitempty"`

	// CollabScore is the normalized collaborative score, if the item had one.
	CollabScore *float64 `json:"collab_score,omitempty"`
}

// Result is the ranked output of a request.
type Result struct {
	// Items are sorted by descending score, then ascending item ID.
	Items []ScoredItem `json:"items"`

	// Mode is the signal combination that was used.
	Mode Mode `json:"mode"`

	// CandidateCount is the number of items considered after filtering.
	CandidateCount int `json:"candidate_count"`
}

// PopularItem is a frequently rated item with a high mean rating.
type PopularItem struct {
	ItemID      int     `json:"item_id"`
	RatingCount int     `json:"rating_count"`
	MeanRating  float64 `json:"mean_rating"`
}

// ModelInfo describes the artifacts an engine was built from.
type ModelInfo struct {
	// Name and Version identify the stored bundle.
	Name    string `json:"name"`
	Version int    `json:"version"`

	// TrainedAt is when the bundle was produced.
	TrainedAt time.Time `json:"trained_at"`

	Items          int `json:"items"`
	Users          int `json:"users"`
	Ratings        int `json:"ratings"`
	Factors        int `json:"factors"`
	VocabularySize int `json:"vocabulary_size"`

	// TrainRMSE is the final-epoch training error of the rating model.
	TrainRMSE float64 `json:"train_rmse"`
}
