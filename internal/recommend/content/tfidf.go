// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package content

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/cinerank/internal/recommend/catalog"
	"github.com/tomtom215/cinerank/internal/recommend/text"
)

// FitConfig controls vocabulary construction.
type FitConfig struct {
	// MinDocFreq drops terms that appear in fewer items. Values below 1 mean 1.
	MinDocFreq int

	// SublinearTF replaces raw term counts with 1 + ln(count).
	SublinearTF bool
}

// Document returns the text an item is vectorized from: its title followed
// by its pipe-joined genres.
func Document(it *catalog.Item) string {
	return it.Title + " " + strings.Join(it.Genres, "|")
}

// Fit builds a Space from catalog items using smoothed TF-IDF weighting:
//
//	idf(t)    = ln((1 + n) / (1 + df(t))) + 1
//	w(t, d)   = tf(t, d) * idf(t)
//
// followed by L2 normalization of every document vector. The vocabulary is
// sorted lexicographically so repeated fits over the same items are identical.
//
//nolint:gocritic // rangeValCopy: items are read once
func Fit(ctx context.Context, items []catalog.Item, cfg FitConfig) (*Space, error) {
	tok, err := text.Default()
	if err != nil {
		return nil, err
	}
	if cfg.MinDocFreq < 1 {
		cfg.MinDocFreq = 1
	}

	counts := make([]map[string]int, len(items))
	docFreq := make(map[string]int)
	for i := range items {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		counts[i] = tok.Counts(Document(&items[i]))
		for term := range counts[i] {
			docFreq[term]++
		}
	}

	vocabulary := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df >= cfg.MinDocFreq {
			vocabulary = append(vocabulary, term)
		}
	}
	sort.Strings(vocabulary)

	index := make(map[string]int32, len(vocabulary))
	idf := make([]float64, len(vocabulary))
	n := float64(len(items))
	for i, term := range vocabulary {
		index[term] = int32(i) //nolint:gosec // vocabulary size is far below MaxInt32
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	a := Artifact{
		Vocabulary: vocabulary,
		Vectors:    make([]ItemVector, 0, len(items)),
	}
	for i, it := range items {
		a.Vectors = append(a.Vectors, ItemVector{
			ItemID: it.ID,
			Vector: weigh(counts[i], index, idf, cfg.SublinearTF),
		})
	}

	space, err := New(a)
	if err != nil {
		return nil, fmt.Errorf("build content space: %w", err)
	}
	return space, nil
}

func weigh(counts map[string]int, index map[string]int32, idf []float64, sublinear bool) Vector {
	type pair struct {
		term int32
		tf   float64
	}
	pairs := make([]pair, 0, len(counts))
	for term, c := range counts {
		if idx, ok := index[term]; ok {
			tf := float64(c)
			if sublinear {
				tf = 1 + math.Log(tf)
			}
			pairs = append(pairs, pair{term: idx, tf: tf})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].term < pairs[j].term })

	v := Vector{
		Terms:   make([]int32, len(pairs)),
		Weights: make([]float64, len(pairs)),
	}
	var sumSq float64
	for i, p := range pairs {
		w := p.tf * idf[p.term]
		v.Terms[i] = p.term
		v.Weights[i] = w
		sumSq += w * w
	}

	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for i := range v.Weights {
			v.Weights[i] /= norm
		}
	}
	return v
}
