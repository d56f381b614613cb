// Package types provides type definitions for structured data used throughout the tapmatch system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// RangePref describes a preferred numeric range as a mean and spread
// (standard deviation) over the values observed in a rating history.
type RangePref struct {
	Mean   float64 `json:"mean"`
	Spread float64 `json:"spread"`
}

// RatingStats summarizes how a user rates versus the global average.
// Delta is MeanUser - MeanGlobal and is only present when both means are.
type RatingStats struct {
	MeanUser   *float64 `json:"mean_user"`
	MeanGlobal *float64 `json:"mean_global"`
	Delta      *float64 `json:"delta,omitempty"`
	N          int      `json:"n"`
}

// BreweryCount is a brewery aggregated from check-in rows.
type BreweryCount struct {
	Name  string `json:"name"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Count int    `json:"count"`
	URL   string `json:"url,omitempty"`
}

// Profile is a user's weighted taste model derived from rating history.
// A Profile is immutable once built; re-uploading a rating history produces
// a new Profile rather than mutating an existing one.
type Profile struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	// StyleWeights maps beer style to a relative prior in [0,1].
	// Weights are non-negative and do not need to sum to 1.
	StyleWeights map[string]float64 `json:"styles"`
	// FlavorWeights maps flavor tag to a relative prior in [0,1].
	FlavorWeights map[string]float64 `json:"flavors"`
	// ABVPref and IBUPref are nil when no rating row supplied the field.
	ABVPref      *RangePref     `json:"abv,omitempty"`
	IBUPref      *RangePref     `json:"ibu,omitempty"`
	Ratings      RatingStats    `json:"ratings"`
	TopBreweries []BreweryCount `json:"breweries,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// RatingRow is one parsed rating (check-in) row from an uploaded history.
// Style and UserRating are the only fields a usable row must carry.
type RatingRow struct {
	BeerName     string
	Brewery      string
	BreweryCity  string
	BreweryState string
	BreweryURL   string
	Style        string
	UserRating   *float64 // 0-5
	GlobalRating *float64
	UserWeight   *float64 // defaults to 1.0 when absent
	GlobalWeight *float64
	ABV          *float64
	IBU          *float64
	TastingNotes string
	// FlavorTags holds an explicit flavor list when the source provides one
	// (e.g. the flavor_profiles export column); otherwise flavors are
	// derived from TastingNotes.
	FlavorTags []string
}
