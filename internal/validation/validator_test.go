// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package validation

import (
	"math"
	"strings"
	"testing"
)

type testRequest struct {
	Seeds  []int    `json:"seeds" validate:"max=3,unique,dive,gt=0"`
	Alpha  *float64 `json:"alpha,omitempty" validate:"omitempty,finite,gte=0,lte=1"`
	Limit  int      `json:"limit" validate:"omitempty,min=1,max=100"`
	Genres []string `json:"genres" validate:"max=5,dive,genre"`
	Mode   string   `json:"mode" validate:"omitempty,oneof=content collaborative hybrid"`
	Query  string   `validate:"omitempty,max=10"`
}

func floatPtr(f float64) *float64 { return &f }

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input testRequest
	}{
		{"empty", testRequest{}},
		{"typical", testRequest{Seeds: []int{1, 2}, Alpha: floatPtr(0.5), Limit: 10, Genres: []string{"Sci-Fi", "Children's"}}},
		{"alpha bounds", testRequest{Alpha: floatPtr(0)}},
		{"alpha one", testRequest{Alpha: floatPtr(1)}},
		{"no genres listed", testRequest{Genres: []string{"(no genres listed)"}}},
		{"mode", testRequest{Mode: "hybrid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() = %v, want nil", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     testRequest
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"too many seeds", testRequest{Seeds: []int{1, 2, 3, 4}}, "seeds", "max", "seeds must be at most 3 items"},
		{"duplicate seeds", testRequest{Seeds: []int{1, 1}}, "seeds", "unique", "seeds must not contain duplicates"},
		{"non-positive seed", testRequest{Seeds: []int{0}}, "seeds[0]", "gt", "seeds[0] must be greater than 0"},
		{"alpha above one", testRequest{Alpha: floatPtr(1.5)}, "alpha", "lte", "alpha must be less than or equal to 1"},
		{"alpha NaN", testRequest{Alpha: floatPtr(math.NaN())}, "alpha", "finite", "alpha must be a finite number"},
		{"alpha Inf", testRequest{Alpha: floatPtr(math.Inf(1))}, "alpha", "finite", "alpha must be a finite number"},
		{"limit too high", testRequest{Limit: 101}, "limit", "max", "limit must be at most 100"},
		{"bad genre", testRequest{Genres: []string{"Drama; DROP TABLE"}}, "genres[0]", "genre", "genres[0] must be a genre name"},
		{"unknown mode", testRequest{Mode: "random"}, "mode", "oneof", "mode must be one of: content collaborative hybrid"},
		{"struct field name without json tag", testRequest{Query: strings.Repeat("x", 11)}, "Query", "max", "Query must be at most 10 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := ValidateStruct(&testRequest{Limit: 500})
		if err == nil {
			t.Fatal("expected error")
		}
		apiErr := err.ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("Code = %q", apiErr.Code)
		}
		if apiErr.Details["field"] != "limit" {
			t.Errorf("Details[field] = %v, want limit", apiErr.Details["field"])
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := ValidateStruct(&testRequest{Limit: 500, Mode: "x"})
		if err == nil {
			t.Fatal("expected error")
		}
		apiErr := err.ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]any)
		if !ok || len(fields) != 2 {
			t.Fatalf("Details[fields] = %#v, want 2 entries", apiErr.Details["fields"])
		}
		if !strings.Contains(apiErr.Message, "limit:") || !strings.Contains(apiErr.Message, "mode:") {
			t.Errorf("Message = %q, want both fields named", apiErr.Message)
		}
	})

	t.Run("empty", func(t *testing.T) {
		ve := &RequestValidationError{}
		if ve.ToAPIError().Message != "Validation failed" {
			t.Error("empty error should use generic message")
		}
		if ve.Error() != "validation failed" {
			t.Error("empty Error() should use generic message")
		}
	})
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct(42)
	if err == nil {
		t.Fatal("expected error for non-struct input")
	}
	if err.Errors()[0].Field() != "unknown" {
		t.Errorf("Field() = %q, want unknown", err.Errors()[0].Field())
	}
}
