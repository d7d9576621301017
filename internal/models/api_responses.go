// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package models holds the JSON shapes exchanged over the HTTP API.
package models

import (
	"time"
)

// APIResponse is the envelope every HTTP endpoint returns.
//
// Example successful response:
//
//	{
//	  "success": true,
//	  "data": {"items": [...], "mode": "hybrid"},
//	  "meta": {"timestamp": "2026-01-02T12:00:00Z", "request_id": "…", "duration_ms": 3}
//	}
//
// Example error response:
//
//	{
//	  "success": false,
//	  "error": {"code": "UNKNOWN_USER", "message": "unknown user: 99"},
//	  "meta": {"timestamp": "2026-01-02T12:00:00Z", "request_id": "…"}
//	}
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    Meta      `json:"meta"`
}

// Meta carries per-response observability fields.
type Meta struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Cached     bool      `json:"cached,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes:
//   - VALIDATION_ERROR, INVALID_REQUEST, INSUFFICIENT_INPUT: 400
//   - UNKNOWN_USER, UNKNOWN_ITEM, NO_PREDICTION, NOT_FOUND: 404
//   - RATE_LIMITED: 429
//   - NOT_READY: 503
//   - INTERNAL_ERROR: 500
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
