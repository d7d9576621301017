// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package recommend

import "errors"

// Errors returned by Engine. All are user-correctable and wrapped with
// detail; match them with errors.Is.
var (
	// ErrInsufficientInput means the request named neither seeds nor a user.
	ErrInsufficientInput = errors.New("insufficient input: provide seed items, a user id, or both")

	// ErrUnknownUser means the user has no learned rating factors.
	ErrUnknownUser = errors.New("unknown user")

	// ErrUnknownItem means an item id is not in the catalog.
	ErrUnknownItem = errors.New("unknown item")

	// ErrInvalidRequest means a request parameter is out of range.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoPrediction means a catalog item has no learned rating factors.
	ErrNoPrediction = errors.New("no rating prediction available")
)
