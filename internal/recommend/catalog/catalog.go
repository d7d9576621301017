// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package catalog holds the immutable index of recommendable items.
//
// A Catalog is built once from a list of items and never modified, so all of
// its methods are safe for concurrent use without locking.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/cinerank/internal/recommend/text"
)

// ErrNotFound is returned when an item ID is not in the catalog.
var ErrNotFound = errors.New("item not found")

// Item is a single movie in the catalog.
type Item struct {
	// ID is the unique movie identifier.
	ID int `json:"id"`

	// Title is the display title, usually including the release year.
	Title string `json:"title"`

	// Genres is the non-empty set of genre tags.
	Genres []string `json:"genres"`
}

// HasGenre reports whether the item carries genre g (case-insensitive).
func (i *Item) HasGenre(g string) bool {
	for _, own := range i.Genres {
		if strings.EqualFold(own, g) {
			return true
		}
	}
	return false
}

// Catalog is an immutable in-memory index of items.
type Catalog struct {
	items   map[int]Item
	ids     []int
	byGenre map[string][]int // lowercased genre -> ascending ids
	genres  []string
	terms   map[int][]string // title terms for search
}

// New builds a catalog. Item IDs must be positive and unique and every item
// must have at least one genre. Item slices are copied.
//
//nolint:gocritic // rangeValCopy: Item is small and copied into the index anyway
func New(items []Item) (*Catalog, error) {
	tok, err := text.Default()
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		items:   make(map[int]Item, len(items)),
		ids:     make([]int, 0, len(items)),
		byGenre: make(map[string][]int),
		terms:   make(map[int][]string, len(items)),
	}

	display := make(map[string]string)
	for _, it := range items {
		if it.ID <= 0 {
			return nil, fmt.Errorf("item id must be positive, got %d", it.ID)
		}
		if _, dup := c.items[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d", it.ID)
		}
		genres := cleanGenres(it.Genres)
		if len(genres) == 0 {
			return nil, fmt.Errorf("item %d has no genres", it.ID)
		}

		stored := Item{ID: it.ID, Title: it.Title, Genres: genres}
		c.items[it.ID] = stored
		c.ids = append(c.ids, it.ID)
		c.terms[it.ID] = tok.Terms(it.Title)

		for _, g := range genres {
			key := strings.ToLower(g)
			if _, ok := display[key]; !ok {
				display[key] = g
			}
			c.byGenre[key] = append(c.byGenre[key], it.ID)
		}
	}

	sort.Ints(c.ids)
	for key, ids := range c.byGenre {
		sort.Ints(ids)
		c.genres = append(c.genres, display[key])
	}
	sort.Strings(c.genres)

	return c, nil
}

func cleanGenres(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, g := range in {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		key := strings.ToLower(g)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, g)
	}
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// Lookup returns the item with the given ID.
func (c *Catalog) Lookup(id int) (Item, error) {
	it, ok := c.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return cloneItem(it), nil
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id int) bool {
	_, ok := c.items[id]
	return ok
}

// AllIDs returns every item ID in ascending order.
func (c *Catalog) AllIDs() []int {
	out := make([]int, len(c.ids))
	copy(out, c.ids)
	return out
}

// Items returns a copy of all items in ascending ID order.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, cloneItem(c.items[id]))
	}
	return out
}

// Genres returns the distinct genres in the catalog, sorted.
func (c *Catalog) Genres() []string {
	out := make([]string, len(c.genres))
	copy(out, c.genres)
	return out
}

// FilterByGenres returns the IDs of items whose genre set intersects allow.
// An empty allow set matches every item.
func (c *Catalog) FilterByGenres(allow []string) map[int]struct{} {
	out := make(map[int]struct{})
	if len(cleanGenres(allow)) == 0 {
		for _, id := range c.ids {
			out[id] = struct{}{}
		}
		return out
	}
	for _, g := range allow {
		for _, id := range c.byGenre[strings.ToLower(strings.TrimSpace(g))] {
			out[id] = struct{}{}
		}
	}
	return out
}

// Search returns items whose title contains every analyzed query term, with
// the last term treated as a prefix. Results are in ascending ID order.
func (c *Catalog) Search(query string, limit int) []Item {
	tok, err := text.Default()
	if err != nil {
		return nil
	}
	want := tok.Terms(query)
	if len(want) == 0 {
		return nil
	}

	var out []Item
	for _, id := range c.ids {
		if matchTerms(c.terms[id], want) {
			out = append(out, cloneItem(c.items[id]))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

func matchTerms(have, want []string) bool {
	for i, w := range want {
		last := i == len(want)-1
		found := false
		for _, h := range have {
			if h == w || (last && strings.HasPrefix(h, w)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func cloneItem(it Item) Item {
	it.Genres = append([]string(nil), it.Genres...)
	return it
}
