// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package models

import "time"

// RecommendRequest is the body of POST /api/v1/recommendations.
// Absent alpha and limit fall back to the server defaults.
type RecommendRequest struct {
	Seeds        []int    `json:"seeds" validate:"max=100,dive,gt=0"`
	UserID       *int     `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	Genres       []string `json:"genres,omitempty" validate:"max=30,dive,genre"`
	Alpha        *float64 `json:"alpha,omitempty" validate:"omitempty,finite,gte=0,lte=1"`
	Limit        *int     `json:"limit,omitempty" validate:"omitempty,gte=1"`
	ExcludeRated bool     `json:"exclude_rated,omitempty"`
}

// Movie is a catalog entry as shown to clients.
type Movie struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
}

// Recommendation is one ranked movie with its score breakdown.
type Recommendation struct {
	Movie
	Score        float64  `json:"score"`
	ContentScore *float64 `json:"content_score,omitempty"`
	CollabScore  *float64 `json:"collab_score,omitempty"`
}

// RecommendResponse is the data of a successful recommendation.
type RecommendResponse struct {
	Items          []Recommendation `json:"items"`
	Mode           string           `json:"mode"`
	CandidateCount int              `json:"candidate_count"`
	ModelVersion   int              `json:"model_version"`
}

// PopularMovie is an entry of the popularity ranking.
type PopularMovie struct {
	Movie
	RatingCount int     `json:"rating_count"`
	MeanRating  float64 `json:"mean_rating"`
}

// Prediction is a single predicted rating.
type Prediction struct {
	UserID int     `json:"user_id"`
	ItemID int     `json:"item_id"`
	Rating float64 `json:"rating"`
}

// Similarity is the content similarity of two movies.
type Similarity struct {
	ItemID  int     `json:"item_id"`
	OtherID int     `json:"other_id"`
	Cosine  float64 `json:"cosine"`
}

// ModelStatus describes the bundle being served.
type ModelStatus struct {
	Name           string    `json:"name"`
	Version        int       `json:"version"`
	TrainedAt      time.Time `json:"trained_at"`
	LoadedAt       time.Time `json:"loaded_at"`
	Items          int       `json:"items"`
	Users          int       `json:"users"`
	Ratings        int       `json:"ratings"`
	Factors        int       `json:"factors"`
	VocabularySize int       `json:"vocabulary_size"`
	TrainRMSE      float64   `json:"train_rmse"`
	Checksum       string    `json:"checksum,omitempty"`
	SizeBytes      int64     `json:"size_bytes,omitempty"`
}

// HealthStatus is the data of the health endpoints.
type HealthStatus struct {
	Status       string  `json:"status"`
	Ready        bool    `json:"ready"`
	ModelVersion int     `json:"model_version,omitempty"`
	Uptime       float64 `json:"uptime_seconds"`
}
