// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package content

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/cinerank/internal/recommend/score"
)

const eps = 1e-9

// scenarioArtifact builds three items where sim(1,2)=0.6 and sim(1,3)=0.1.
func scenarioArtifact() Artifact {
	return Artifact{
		Vocabulary: []string{"action", "comedy", "other"},
		Vectors: []ItemVector{
			{ItemID: 1, Vector: Vector{Terms: []int32{0}, Weights: []float64{1}}},
			{ItemID: 2, Vector: Vector{Terms: []int32{0, 1}, Weights: []float64{0.6, 0.8}}},
			{ItemID: 3, Vector: Vector{Terms: []int32{0, 2}, Weights: []float64{0.1, math.Sqrt(0.99)}}},
			{ItemID: 4, Vector: Vector{}},
		},
	}
}

func mustSpace(t *testing.T) *Space {
	t.Helper()
	s, err := New(scenarioArtifact())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *Artifact)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Artifact) {}},
		{name: "duplicate item", mutate: func(a *Artifact) { a.Vectors = append(a.Vectors, a.Vectors[0]) }, wantErr: true},
		{name: "duplicate term", mutate: func(a *Artifact) { a.Vocabulary[2] = "action" }, wantErr: true},
		{name: "empty term", mutate: func(a *Artifact) { a.Vocabulary[1] = "" }, wantErr: true},
		{name: "term out of range", mutate: func(a *Artifact) { a.Vectors[0].Vector.Terms[0] = 9 }, wantErr: true},
		{name: "unsorted terms", mutate: func(a *Artifact) {
			a.Vectors[1].Vector = Vector{Terms: []int32{1, 0}, Weights: []float64{0.8, 0.6}}
		}, wantErr: true},
		{name: "negative weight", mutate: func(a *Artifact) { a.Vectors[0].Vector.Weights[0] = -1 }, wantErr: true},
		{name: "not unit length", mutate: func(a *Artifact) { a.Vectors[0].Vector.Weights[0] = 0.5 }, wantErr: true},
		{name: "length mismatch", mutate: func(a *Artifact) { a.Vectors[0].Vector.Weights = nil }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := scenarioArtifact()
			tt.mutate(&a)
			_, err := New(a)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpace_Similarity(t *testing.T) {
	s := mustSpace(t)

	tests := []struct {
		name string
		a, b int
		want float64
	}{
		{name: "self", a: 1, b: 1, want: 1},
		{name: "self other", a: 3, b: 3, want: 1},
		{name: "scenario pair 1-2", a: 1, b: 2, want: 0.6},
		{name: "scenario pair 1-3", a: 1, b: 3, want: 0.1},
		{name: "zero vector", a: 1, b: 4, want: 0},
		{name: "zero vector self", a: 4, b: 4, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Similarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Similarity() error = %v", err)
			}
			if math.Abs(got-tt.want) > eps {
				t.Errorf("Similarity(%d,%d) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if _, err := s.Similarity(1, 99); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("unknown item error = %v, want ErrUnknownItem", err)
	}
}

func TestSpace_SimilaritySymmetric(t *testing.T) {
	s := mustSpace(t)
	ids := []int{1, 2, 3, 4}
	for _, a := range ids {
		for _, b := range ids {
			ab, _ := s.Similarity(a, b)
			ba, _ := s.Similarity(b, a)
			if ab != ba {
				t.Errorf("Similarity(%d,%d)=%v != Similarity(%d,%d)=%v", a, b, ab, b, a, ba)
			}
			if ab < -1 || ab > 1 {
				t.Errorf("Similarity(%d,%d)=%v outside [-1,1]", a, b, ab)
			}
		}
	}
}

func TestSpace_ScoreAgainstSeeds(t *testing.T) {
	s := mustSpace(t)

	t.Run("empty seeds", func(t *testing.T) {
		_, err := s.ScoreAgainstSeeds(nil, []int{1, 2})
		if !errors.Is(err, ErrEmptySeedSet) {
			t.Errorf("error = %v, want ErrEmptySeedSet", err)
		}
	})

	t.Run("unknown seed", func(t *testing.T) {
		_, err := s.ScoreAgainstSeeds([]int{42}, []int{1, 2})
		if !errors.Is(err, ErrUnknownItem) {
			t.Errorf("error = %v, want ErrUnknownItem", err)
		}
	})

	t.Run("seeds excluded", func(t *testing.T) {
		got, err := s.ScoreAgainstSeeds([]int{1}, []int{1, 2, 3})
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range got {
			if e.ItemID == 1 {
				t.Error("seed returned in its own candidate scores")
			}
		}
		if len(got) != 2 {
			t.Errorf("len = %d, want 2", len(got))
		}
	})

	t.Run("max over seeds", func(t *testing.T) {
		// Item 2 is 0.6 from seed 1 and 0.8*0 + 0.6*0.1 = 0.06 from seed 3.
		got, err := s.ScoreAgainstSeeds([]int{1, 3}, []int{2, 4, 99})
		if err != nil {
			t.Fatal(err)
		}
		want := []score.Entry{{ItemID: 2, Score: 0.6}, {ItemID: 4, Score: 0}}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i].ItemID != want[i].ItemID || math.Abs(got[i].Score-want[i].Score) > eps {
				t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("duplicate seeds collapse", func(t *testing.T) {
		a, _ := s.ScoreAgainstSeeds([]int{1, 1}, []int{2, 3})
		b, _ := s.ScoreAgainstSeeds([]int{1}, []int{2, 3})
		if !reflect.DeepEqual(a, b) {
			t.Errorf("duplicate seeds changed result: %v vs %v", a, b)
		}
	})
}

func TestSpace_ArtifactRoundTrip(t *testing.T) {
	s := mustSpace(t)
	a := s.Artifact()

	// Mutating the exported artifact must not reach the space.
	a.Vectors[0].Vector.Weights[0] = 0.5
	if sim, _ := s.Similarity(1, 1); math.Abs(sim-1) > eps {
		t.Fatalf("space mutated through artifact, self similarity %v", sim)
	}

	rebuilt, err := New(s.Artifact())
	if err != nil {
		t.Fatalf("New(Artifact()) error = %v", err)
	}
	if !reflect.DeepEqual(rebuilt.Artifact(), s.Artifact()) {
		t.Error("artifact changed across rebuild")
	}
	if rebuilt.Len() != 4 || rebuilt.VocabularySize() != 3 {
		t.Errorf("Len=%d VocabularySize=%d", rebuilt.Len(), rebuilt.VocabularySize())
	}
}
