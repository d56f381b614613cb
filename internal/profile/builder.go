package profile

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tapmatch/tapmatch/internal/types"
)

// FlavorExtractor distills tasting notes into flavor tags. Implementations
// may use an LLM; extraction failures must be non-fatal for the builder.
type FlavorExtractor interface {
	ExtractFlavors(ctx context.Context, notes []string) ([]string, error)
}

// Builder turns parsed rating rows into a normalized, weighted Profile.
type Builder struct {
	// Extractor optionally supplements the deterministic tokenizer with
	// LLM-derived flavor tags. Nil disables extraction.
	Extractor FlavorExtractor
	Verbose   bool
}

const maxTopBreweries = 5

// Build aggregates rows into an immutable Profile. It fails with
// ValidationError when the row set is empty or no row carries a usable
// style+rating pair. Identical input always produces identical weights: all
// aggregation is accumulated in row order and normalized per key.
func (b *Builder) Build(ctx context.Context, name string, rows []types.RatingRow) (*types.Profile, error) {
	if len(rows) == 0 {
		return nil, &ValidationError{Message: "rating history is empty"}
	}

	usable := 0
	for _, row := range rows {
		if row.Style != "" && row.UserRating != nil {
			usable++
		}
	}
	if usable == 0 {
		return nil, &ValidationError{Message: "no row has a usable style and rating pair"}
	}

	p := &types.Profile{
		ID:            uuid.New(),
		Name:          name,
		StyleWeights:  b.buildStyleWeights(rows),
		FlavorWeights: b.buildFlavorWeights(ctx, rows),
		ABVPref:       rangePref(rows, func(r types.RatingRow) *float64 { return r.ABV }),
		IBUPref:       rangePref(rows, func(r types.RatingRow) *float64 { return r.IBU }),
		Ratings:       ratingStats(rows),
		TopBreweries:  topBreweries(rows),
		CreatedAt:     time.Now().UTC(),
	}

	return p, nil
}

// buildStyleWeights computes weight = normalize(count) * mean(rating)/5 per
// style, where each row contributes its user weight (default 1.0) to both
// the count and the rating sum.
func (b *Builder) buildStyleWeights(rows []types.RatingRow) map[string]float64 {
	counts := make(map[string]float64)
	ratingSums := make(map[string]float64)

	for _, row := range rows {
		if row.Style == "" || row.UserRating == nil {
			continue
		}
		w := 1.0
		if row.UserWeight != nil {
			w = *row.UserWeight
		}
		counts[row.Style] += w
		ratingSums[row.Style] += *row.UserRating * w
	}

	maxCount := 0.0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	weights := make(map[string]float64, len(counts))
	for style, count := range counts {
		if count <= 0 {
			continue
		}
		mean := ratingSums[style] / count
		weights[style] = clamp01((count / maxCount) * (mean / 5.0))
	}
	return weights
}

// buildFlavorWeights aggregates flavor candidates by frequency and
// normalizes by the maximum frequency. Explicit flavor lists win over
// tokenized notes for a given row; LLM-extracted tags are merged on top of
// (never instead of) the deterministic counts.
func (b *Builder) buildFlavorWeights(ctx context.Context, rows []types.RatingRow) map[string]float64 {
	counts := make(map[string]int)
	var pendingNotes []string

	for _, row := range rows {
		if len(row.FlavorTags) > 0 {
			for _, tag := range FilterFlavorTags(row.FlavorTags) {
				counts[tag]++
			}
			continue
		}
		if row.TastingNotes != "" {
			for _, token := range TokenizeNotes(row.TastingNotes) {
				counts[token]++
			}
			pendingNotes = append(pendingNotes, row.TastingNotes)
		}
	}

	if b.Extractor != nil && len(pendingNotes) > 0 {
		tags, err := b.Extractor.ExtractFlavors(ctx, pendingNotes)
		if err != nil {
			// LLM extraction is best-effort; the tokenizer counts stand.
			log.Printf("[PROFILE] flavor extraction failed, using tokenizer only: %v", err)
		} else {
			for _, tag := range FilterFlavorTags(tags) {
				counts[tag]++
			}
		}
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		return map[string]float64{}
	}

	weights := make(map[string]float64, len(counts))
	for tag, count := range counts {
		weights[tag] = float64(count) / float64(maxCount)
	}
	return weights
}

// rangePref computes (mean, population standard deviation) over rows
// carrying the field. Returns nil when no row supplies it.
func rangePref(rows []types.RatingRow, field func(types.RatingRow) *float64) *types.RangePref {
	var values []float64
	for _, row := range rows {
		if v := field(row); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return &types.RangePref{Mean: mean, Spread: math.Sqrt(variance)}
}

func ratingStats(rows []types.RatingRow) types.RatingStats {
	var userSum, userWeight, globalSum, globalWeight float64
	for _, row := range rows {
		if row.UserRating != nil {
			w := 1.0
			if row.UserWeight != nil {
				w = *row.UserWeight
			}
			userSum += *row.UserRating * w
			userWeight += w
		}
		if row.GlobalRating != nil {
			w := 1.0
			if row.GlobalWeight != nil {
				w = *row.GlobalWeight
			}
			globalSum += *row.GlobalRating * w
			globalWeight += w
		}
	}

	stats := types.RatingStats{N: len(rows)}
	if userWeight > 0 {
		mean := userSum / userWeight
		stats.MeanUser = &mean
	}
	if globalWeight > 0 {
		mean := globalSum / globalWeight
		stats.MeanGlobal = &mean
	}
	if stats.MeanUser != nil && stats.MeanGlobal != nil {
		delta := *stats.MeanUser - *stats.MeanGlobal
		stats.Delta = &delta
	}
	return stats
}

// topBreweries returns the five most checked-in breweries, ties broken by
// name for deterministic output.
func topBreweries(rows []types.RatingRow) []types.BreweryCount {
	byName := make(map[string]*types.BreweryCount)
	for _, row := range rows {
		if row.Brewery == "" {
			continue
		}
		bc, ok := byName[row.Brewery]
		if !ok {
			bc = &types.BreweryCount{
				Name:  row.Brewery,
				City:  row.BreweryCity,
				State: row.BreweryState,
				URL:   row.BreweryURL,
			}
			byName[row.Brewery] = bc
		}
		bc.Count++
	}

	all := make([]types.BreweryCount, 0, len(byName))
	for _, bc := range byName {
		all = append(all, *bc)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Name < all[j].Name
	})

	if len(all) > maxTopBreweries {
		all = all[:maxTopBreweries]
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
