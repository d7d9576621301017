// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package content implements the content signal: one unit-length TF-IDF
// vector per catalog item over a fixed vocabulary built from titles and
// genres, compared with cosine similarity.
//
// Because stored vectors are normalized, cosine similarity is a plain sparse
// dot product. A Space is immutable after construction and safe for
// concurrent use.
package content

import (
	"errors"
	"fmt"

	"github.com/tomtom215/cinerank/internal/recommend/score"
)

var (
	// ErrEmptySeedSet is returned when a content score is requested with no seeds.
	ErrEmptySeedSet = errors.New("empty seed set")

	// ErrUnknownItem is returned when an item has no vector in the space.
	ErrUnknownItem = errors.New("item has no content vector")
)

// ItemVector pairs an item with its content vector.
type ItemVector struct {
	ItemID int
	Vector Vector
}

// Artifact is the persisted form of a Space.
type Artifact struct {
	// Vocabulary is the ordered term list; vector term indices point into it.
	Vocabulary []string

	// Vectors holds exactly one vector per item.
	Vectors []ItemVector
}

// Space holds the per-item content vectors.
type Space struct {
	vocabulary []string
	vectors    map[int]Vector
	order      []int
}

// New validates an artifact and builds a Space from it.
func New(a Artifact) (*Space, error) {
	seenTerms := make(map[string]struct{}, len(a.Vocabulary))
	for i, term := range a.Vocabulary {
		if term == "" {
			return nil, fmt.Errorf("vocabulary entry %d is empty", i)
		}
		if _, dup := seenTerms[term]; dup {
			return nil, fmt.Errorf("duplicate vocabulary term %q", term)
		}
		seenTerms[term] = struct{}{}
	}

	s := &Space{
		vocabulary: append([]string(nil), a.Vocabulary...),
		vectors:    make(map[int]Vector, len(a.Vectors)),
		order:      make([]int, 0, len(a.Vectors)),
	}
	for _, iv := range a.Vectors {
		if _, dup := s.vectors[iv.ItemID]; dup {
			return nil, fmt.Errorf("duplicate vector for item %d", iv.ItemID)
		}
		if err := iv.Vector.validate(len(a.Vocabulary)); err != nil {
			return nil, fmt.Errorf("item %d: %w", iv.ItemID, err)
		}
		s.vectors[iv.ItemID] = iv.Vector.clone()
		s.order = append(s.order, iv.ItemID)
	}

	return s, nil
}

// Len returns the number of item vectors.
func (s *Space) Len() int {
	return len(s.vectors)
}

// VocabularySize returns the number of terms in the vocabulary.
func (s *Space) VocabularySize() int {
	return len(s.vocabulary)
}

// HasItem reports whether id has a vector.
func (s *Space) HasItem(id int) bool {
	_, ok := s.vectors[id]
	return ok
}

// Similarity returns the cosine similarity of two items. It is 0 when
// either vector is all-zero.
func (s *Space) Similarity(a, b int) (float64, error) {
	va, ok := s.vectors[a]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownItem, a)
	}
	vb, ok := s.vectors[b]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownItem, b)
	}
	return cosine(va, vb), nil
}

func cosine(a, b Vector) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	sim := a.Dot(b)
	// Rounding can push a unit dot product marginally past the bounds.
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}

// ScoreAgainstSeeds scores each candidate by its maximum similarity to any
// seed. Seeds never appear in the output and candidates without a vector are
// skipped. Output follows candidate order.
func (s *Space) ScoreAgainstSeeds(seeds, candidates []int) ([]score.Entry, error) {
	if len(seeds) == 0 {
		return nil, ErrEmptySeedSet
	}

	seedSet := make(map[int]struct{}, len(seeds))
	seedVecs := make([]Vector, 0, len(seeds))
	for _, id := range seeds {
		if _, dup := seedSet[id]; dup {
			continue
		}
		v, ok := s.vectors[id]
		if !ok {
			return nil, fmt.Errorf("%w: seed %d", ErrUnknownItem, id)
		}
		seedSet[id] = struct{}{}
		seedVecs = append(seedVecs, v)
	}

	out := make([]score.Entry, 0, len(candidates))
	for _, id := range candidates {
		if _, isSeed := seedSet[id]; isSeed {
			continue
		}
		v, ok := s.vectors[id]
		if !ok {
			continue
		}
		best := cosine(seedVecs[0], v)
		for _, sv := range seedVecs[1:] {
			if sim := cosine(sv, v); sim > best {
				best = sim
			}
		}
		out = append(out, score.Entry{ItemID: id, Score: best})
	}

	return out, nil
}

// Artifact returns a deep copy of the space in persistable form.
func (s *Space) Artifact() Artifact {
	a := Artifact{
		Vocabulary: append([]string(nil), s.vocabulary...),
		Vectors:    make([]ItemVector, 0, len(s.order)),
	}
	for _, id := range s.order {
		a.Vectors = append(a.Vectors, ItemVector{ItemID: id, Vector: s.vectors[id].clone()})
	}
	return a
}
