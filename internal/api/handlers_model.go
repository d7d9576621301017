// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"net/http"

	"github.com/tomtom215/cinerank/internal/models"
)

// Predict handles GET /api/v1/users/{id}/predictions/{itemID}.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.requireEngine(w, r)
	if !ok {
		return
	}
	user, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	item, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	rating, err := engine.Predict(user, item)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, r, models.Prediction{UserID: user, ItemID: item, Rating: rating}, false)
}

// Model handles GET /api/v1/model.
func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	status, ok := h.holder.Status()
	if !ok {
		respondError(w, r, http.StatusServiceUnavailable, "NOT_READY", "No model loaded", nil, nil)
		return
	}
	respondData(w, r, status, false)
}
