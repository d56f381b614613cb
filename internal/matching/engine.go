// Package matching scores and ranks menu entries against a taste profile.
package matching

import (
	"math"
	"sort"

	"github.com/tapmatch/tapmatch/internal/types"
)

const (
	// spreadEpsilon guards the Gaussian proximity term when a preference
	// was derived from identical values and has zero spread.
	spreadEpsilon = 0.25

	// topFlavorCount is how many of the profile's strongest flavor weights
	// form the overlap divisor.
	topFlavorCount = 5
)

// componentOrder fixes the order components enter the weighted sum.
var componentOrder = []string{
	types.ComponentStyle,
	types.ComponentFlavor,
	types.ComponentABV,
	types.ComponentIBU,
	types.ComponentRating,
}

// Weights holds the relative importance of each score component and the
// floor applied to styles a profile has never rated. Components missing on
// either side of a comparison are dropped and the remaining weights are
// renormalized, so the values here only need to be meaningful relative to
// each other.
type Weights struct {
	Style         float64 `json:"style" validate:"gte=0"`
	Flavor        float64 `json:"flavor" validate:"gte=0"`
	ABV           float64 `json:"abv" validate:"gte=0"`
	IBU           float64 `json:"ibu" validate:"gte=0"`
	Rating        float64 `json:"rating" validate:"gte=0"`
	BaselineStyle float64 `json:"baseline_style" validate:"gte=0,lte=1"`
}

// DefaultWeights returns the stock component weighting.
func DefaultWeights() Weights {
	return Weights{
		Style:         0.30,
		Flavor:        0.25,
		ABV:           0.15,
		IBU:           0.15,
		Rating:        0.15,
		BaselineStyle: 0.05,
	}
}

// Engine scores menu entries against profiles. It is stateless apart from
// its weights and safe for concurrent use.
type Engine struct {
	weights Weights
}

// NewEngine creates an engine with the given weights. Zero-value weights
// fall back to the defaults.
func NewEngine(w Weights) *Engine {
	if w.Style == 0 && w.Flavor == 0 && w.ABV == 0 && w.IBU == 0 && w.Rating == 0 {
		w = DefaultWeights()
	}
	return &Engine{weights: w}
}

// Score computes the overall fit of beer to profile along with the
// per-component breakdown. Components whose underlying attribute is absent
// on either side do not appear in the breakdown; the weighted sum is taken
// over present components only, with weights renormalized, so a missing
// attribute never drags the score toward zero.
func (e *Engine) Score(profile *types.Profile, beer *types.BeerRecord) (float64, map[string]float64) {
	breakdown := make(map[string]float64)

	if beer.Style != "" {
		breakdown[types.ComponentStyle] = e.styleScore(profile, beer.Style)
	}
	if len(beer.FlavorTags) > 0 && len(profile.FlavorWeights) > 0 {
		breakdown[types.ComponentFlavor] = flavorOverlap(profile.FlavorWeights, beer.FlavorTags)
	}
	if beer.ABV != nil && profile.ABVPref != nil {
		breakdown[types.ComponentABV] = proximity(*beer.ABV, profile.ABVPref)
	}
	if beer.IBU != nil && profile.IBUPref != nil {
		breakdown[types.ComponentIBU] = proximity(*beer.IBU, profile.IBUPref)
	}
	if beer.GlobalRating != nil && profile.Ratings.MeanUser != nil {
		breakdown[types.ComponentRating] = ratingScore(*beer.GlobalRating, *profile.Ratings.MeanUser)
	}

	if len(breakdown) == 0 {
		return 0, breakdown
	}

	// Summation order is fixed: iterating the breakdown map directly would
	// let Go's randomized map order perturb the floating-point sum between
	// otherwise identical calls.
	var sum, weightSum float64
	for _, component := range componentOrder {
		score, ok := breakdown[component]
		if !ok {
			continue
		}
		w := e.componentWeight(component)
		sum += w * score
		weightSum += w
	}
	if weightSum == 0 {
		return 0, breakdown
	}
	return clamp01(sum / weightSum), breakdown
}

// RankMenu scores every entry and returns them ordered best first. Ties on
// score break by ascending normalized beer name so repeated runs over
// identical inputs produce identical orderings.
func (e *Engine) RankMenu(profile *types.Profile, menu []types.MenuEntry) []types.MatchResult {
	results := make([]types.MatchResult, 0, len(menu))
	for _, entry := range menu {
		score, breakdown := e.Score(profile, &entry.Beer)
		results = append(results, types.MatchResult{Entry: entry, Score: score, Breakdown: breakdown})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return types.NormalizeBeerName(results[i].Entry.Beer.Name) < types.NormalizeBeerName(results[j].Entry.Beer.Name)
	})
	return results
}

func (e *Engine) componentWeight(component string) float64 {
	switch component {
	case types.ComponentStyle:
		return e.weights.Style
	case types.ComponentFlavor:
		return e.weights.Flavor
	case types.ComponentABV:
		return e.weights.ABV
	case types.ComponentIBU:
		return e.weights.IBU
	case types.ComponentRating:
		return e.weights.Rating
	}
	return 0
}

func (e *Engine) styleScore(profile *types.Profile, style string) float64 {
	if w, ok := profile.StyleWeights[style]; ok {
		return clamp01(w)
	}
	return e.weights.BaselineStyle
}

// flavorOverlap sums the profile weights of matched tags and divides by the
// sum of the profile's strongest weights, bounding the result to [0,1].
func flavorOverlap(weights map[string]float64, tags []string) float64 {
	divisor := topWeightSum(weights, topFlavorCount)
	if divisor == 0 {
		return 0
	}

	seen := make(map[string]bool, len(tags))
	var matched float64
	for _, tag := range tags {
		key := types.NormalizeBeerName(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		matched += weights[key]
	}
	return clamp01(matched / divisor)
}

func topWeightSum(weights map[string]float64, n int) float64 {
	values := make([]float64, 0, len(weights))
	for _, w := range weights {
		values = append(values, w)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	if len(values) > n {
		values = values[:n]
	}
	var sum float64
	for _, w := range values {
		sum += w
	}
	return sum
}

// proximity is a Gaussian decay in the deviation from the preferred mean,
// scaled by the preferred spread. A value at the mean scores 1.
func proximity(value float64, pref *types.RangePref) float64 {
	spread := pref.Spread
	if spread < spreadEpsilon {
		spread = spreadEpsilon
	}
	z := (value - pref.Mean) / spread
	return math.Exp(-0.5 * z * z)
}

// ratingScore centers at 0.5 for a beer rated exactly at the user's typical
// score; beers rated above it score higher, on a five-point scale.
func ratingScore(global, meanUser float64) float64 {
	return clamp01(0.5 + (global-meanUser)/2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
