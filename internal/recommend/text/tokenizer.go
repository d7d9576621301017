// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package text turns movie titles and genre strings into terms.
//
// Terms come from Bleve's "standard" analyzer: Unicode word segmentation,
// lowercasing and English stop word removal. The same analyzer is used when
// fitting TF-IDF vectors and when searching the catalog by title, so a query
// matches exactly the terms the vector space was built from.
package text

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"

	// Registers the standard analyzer and its dependencies.
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// AnalyzerName is the Bleve registry name of the analyzer used for terms.
const AnalyzerName = "standard"

// Tokenizer extracts analyzed terms from free text.
// It is safe for concurrent use.
type Tokenizer struct {
	analyzer analysis.Analyzer
}

// NewTokenizer resolves the standard analyzer from a fresh Bleve registry cache.
func NewTokenizer() (*Tokenizer, error) {
	cache := registry.NewCache()
	a, err := cache.AnalyzerNamed(AnalyzerName)
	if err != nil {
		return nil, fmt.Errorf("resolve %s analyzer: %w", AnalyzerName, err)
	}
	return &Tokenizer{analyzer: a}, nil
}

var (
	defaultOnce      sync.Once
	defaultTokenizer *Tokenizer
	defaultErr       error
)

// Default returns a process-wide tokenizer, created on first use.
func Default() (*Tokenizer, error) {
	defaultOnce.Do(func() {
		defaultTokenizer, defaultErr = NewTokenizer()
	})
	return defaultTokenizer, defaultErr
}

// Terms returns the analyzed terms of s in order of appearance.
// Repeated terms are kept so callers can count term frequency.
func (t *Tokenizer) Terms(s string) []string {
	stream := t.analyzer.Analyze([]byte(s))
	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		if len(tok.Term) == 0 {
			continue
		}
		terms = append(terms, string(tok.Term))
	}
	return terms
}

// Counts returns the frequency of each analyzed term in s.
func (t *Tokenizer) Counts(s string) map[string]int {
	counts := make(map[string]int)
	for _, term := range t.Terms(s) {
		counts[term]++
	}
	return counts
}
