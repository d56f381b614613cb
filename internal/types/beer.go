package types

import (
	"strings"
	"time"
)

// BeerRecord is canonical metadata for a single beer. The normalized name
// (see NormalizeBeerName) is the identity key: a cache never holds two
// records whose names normalize identically.
type BeerRecord struct {
	Name         string    `json:"name"`
	Style        string    `json:"style,omitempty"`
	Brewery      string    `json:"brewery,omitempty"`
	ABV          *float64  `json:"abv,omitempty"`
	IBU          *float64  `json:"ibu,omitempty"`
	GlobalRating *float64  `json:"global_rating,omitempty"`
	FlavorTags   []string  `json:"flavor_tags,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Key returns the normalized cache key for the record.
func (b *BeerRecord) Key() string {
	return NormalizeBeerName(b.Name)
}

// MenuEntry is a beer as offered at a particular venue. Entries are produced
// fresh per menu resolution and are not persisted.
type MenuEntry struct {
	Beer  BeerRecord `json:"beer"`
	OnTap bool       `json:"on_tap"`
	// Source records which menu source produced the entry ("live" or "local").
	Source string `json:"source,omitempty"`
}

// NormalizeBeerName lowercases, trims, and collapses inner whitespace so that
// cosmetic variants of a beer name map to the same key.
func NormalizeBeerName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
