package types

// Component names used in a MatchResult breakdown.
const (
	ComponentStyle  = "style"
	ComponentFlavor = "flavor"
	ComponentABV    = "abv"
	ComponentIBU    = "ibu"
	ComponentRating = "rating"
)

// MatchResult is a scored menu entry. Score is in [0,1]. Breakdown maps
// component name to its score; a component is absent from the map when the
// underlying attribute was unavailable on either side of the comparison.
type MatchResult struct {
	Entry     MenuEntry          `json:"entry"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
}
