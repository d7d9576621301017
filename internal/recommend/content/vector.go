// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package content

import (
	"fmt"
	"math"
)

// normTolerance is how far a stored vector's L2 norm may drift from 1.
const normTolerance = 1e-6

// Vector is a sparse, non-negative term vector. Terms are vocabulary indices
// in strictly ascending order and Weights is parallel to Terms.
type Vector struct {
	Terms   []int32
	Weights []float64
}

// IsZero reports whether the vector has no non-zero weight.
func (v Vector) IsZero() bool {
	for _, w := range v.Weights {
		if w != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean length of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v.Weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product of two sparse vectors by merging their
// sorted term lists.
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Terms) && j < len(o.Terms) {
		switch {
		case v.Terms[i] == o.Terms[j]:
			sum += v.Weights[i] * o.Weights[j]
			i++
			j++
		case v.Terms[i] < o.Terms[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// validate checks the vector against a vocabulary of size vocabSize.
func (v Vector) validate(vocabSize int) error {
	if len(v.Terms) != len(v.Weights) {
		return fmt.Errorf("terms/weights length mismatch: %d != %d", len(v.Terms), len(v.Weights))
	}
	for i, term := range v.Terms {
		if term < 0 || int(term) >= vocabSize {
			return fmt.Errorf("term index %d out of range [0,%d)", term, vocabSize)
		}
		if i > 0 && term <= v.Terms[i-1] {
			return fmt.Errorf("term indices not strictly ascending at position %d", i)
		}
		w := v.Weights[i]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("invalid weight %v for term %d", w, term)
		}
	}
	if v.IsZero() {
		return nil
	}
	if n := v.Norm(); math.Abs(n-1) > normTolerance {
		return fmt.Errorf("vector not unit length (norm %.9f)", n)
	}
	return nil
}

func (v Vector) clone() Vector {
	return Vector{
		Terms:   append([]int32(nil), v.Terms...),
		Weights: append([]float64(nil), v.Weights...),
	}
}
