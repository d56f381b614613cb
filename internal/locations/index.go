package locations

import (
	"crypto/sha256"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tapmatch/tapmatch/internal/types"
)

// Index serves hierarchy queries over the venue table. The backing record
// set is an immutable snapshot swapped atomically on rebuild: readers never
// observe a partially rebuilt index. Empty-string filter arguments act as
// wildcards, which is how venues with a blank state stay reachable.
type Index struct {
	primary  string
	fallback string

	mu       sync.RWMutex
	records  []types.LocationRecord
	checksum [sha256.Size]byte
	source   string
}

// NewIndex creates an index over the primary venue table, falling back to
// the sample table when the primary does not exist. The initial build runs
// immediately.
func NewIndex(primary, fallback string) (*Index, error) {
	ix := &Index{primary: primary, fallback: fallback}
	if err := ix.Rebuild(); err != nil {
		return nil, err
	}
	return ix, nil
}

// sourcePath returns the table to read: the primary when present, else the
// fallback sample.
func (ix *Index) sourcePath() string {
	if _, err := os.Stat(ix.primary); err == nil {
		return ix.primary
	}
	return ix.fallback
}

// Rebuild loads the venue table into a fresh snapshot and swaps it in.
func (ix *Index) Rebuild() error {
	path := ix.sourcePath()

	content, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Path: path, Message: "failed to read", Cause: err}
	}

	records, err := parseVenueTable(content, path)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	ix.records = records
	ix.checksum = sha256.Sum256(content)
	ix.source = path
	ix.mu.Unlock()

	log.Printf("[LOCATIONS] index rebuilt from %s: %d venues", path, len(records))
	return nil
}

// RebuildIfChanged rebuilds only when the backing table's content checksum
// differs from the one the current snapshot was built from. Returns whether
// a rebuild happened.
func (ix *Index) RebuildIfChanged() (bool, error) {
	path := ix.sourcePath()

	content, err := os.ReadFile(path)
	if err != nil {
		return false, &LoadError{Path: path, Message: "failed to read", Cause: err}
	}
	sum := sha256.Sum256(content)

	ix.mu.RLock()
	unchanged := path == ix.source && sum == ix.checksum
	ix.mu.RUnlock()
	if unchanged {
		return false, nil
	}

	if err := ix.Rebuild(); err != nil {
		return false, err
	}
	return true, nil
}

func (ix *Index) snapshot() []types.LocationRecord {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.records
}

// Countries returns the distinct countries in lexicographic order, except
// that "United States" sorts first when present.
func (ix *Index) Countries() []string {
	seen := make(map[string]bool)
	for _, r := range ix.snapshot() {
		if r.Country != "" {
			seen[r.Country] = true
		}
	}

	countries := sortedKeys(seen)
	for i, c := range countries {
		if c == defaultCountry && i != 0 {
			copy(countries[1:i+1], countries[:i])
			countries[0] = defaultCountry
			break
		}
	}
	return countries
}

// States returns the distinct non-empty states for a country in
// lexicographic order. An empty country matches all rows.
func (ix *Index) States(country string) []string {
	seen := make(map[string]bool)
	for _, r := range ix.snapshot() {
		if (country == "" || r.Country == country) && r.StateProvince != "" {
			seen[r.StateProvince] = true
		}
	}
	return sortedKeys(seen)
}

// Cities returns the distinct cities matching the country/state filters in
// lexicographic order. Empty filters are wildcards, so cities of venues with
// a blank state are listed under state = "".
func (ix *Index) Cities(country, state string) []string {
	seen := make(map[string]bool)
	for _, r := range ix.snapshot() {
		if matches(r, country, state, "") && r.City != "" {
			seen[r.City] = true
		}
	}
	return sortedKeys(seen)
}

// Venues returns the venue records matching the filters, sorted
// case-insensitively by venue name.
func (ix *Index) Venues(country, state, city string) []types.LocationRecord {
	var venues []types.LocationRecord
	for _, r := range ix.snapshot() {
		if matches(r, country, state, city) {
			venues = append(venues, r)
		}
	}
	sort.Slice(venues, func(i, j int) bool {
		return strings.ToLower(venues[i].VenueName) < strings.ToLower(venues[j].VenueName)
	})
	return venues
}

// Venue resolves a single venue by name, case-insensitively.
func (ix *Index) Venue(name string) (*types.LocationRecord, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, r := range ix.snapshot() {
		if strings.ToLower(r.VenueName) == lower {
			rec := r
			return &rec, nil
		}
	}
	return nil, &NotFoundError{Venue: name}
}

func matches(r types.LocationRecord, country, state, city string) bool {
	if country != "" && r.Country != country {
		return false
	}
	if state != "" && r.StateProvince != state {
		return false
	}
	if city != "" && r.City != city {
		return false
	}
	return true
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
