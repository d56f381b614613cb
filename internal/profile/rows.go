package profile

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tapmatch/tapmatch/internal/types"
)

// Column aliases recognized in uploaded rating histories. The extended form
// matches Untappd export headers; the minimal form is style + ratings only.
var columnAliases = map[string][]string{
	"beer_name":     {"beer_name"},
	"brewery":       {"brewery_name", "brewery"},
	"brewery_city":  {"brewery_city"},
	"brewery_state": {"brewery_state"},
	"brewery_url":   {"brewery_url"},
	"style":         {"beer_type", "style"},
	"user_rating":   {"rating_score", "user_rating"},
	"global_rating": {"global_rating_score", "global_rating"},
	"user_weight":   {"user_weight"},
	"global_weight": {"global_weight"},
	"abv":           {"beer_abv", "abv"},
	"ibu":           {"beer_ibu", "ibu"},
	"notes":         {"tasting_notes", "notes", "comment"},
	"flavors":       {"flavor_profiles", "flavors"},
}

// ParseCSV reads an uploaded rating-history CSV into rating rows.
// Headers are matched case-insensitively against known aliases; a UTF-8 BOM
// is tolerated and non-UTF-8 input falls back to latin-1 decoding.
func ParseCSV(r io.Reader) ([]types.RatingRow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &ValidationError{Message: "failed to read upload", Cause: err}
	}

	reader := csv.NewReader(strings.NewReader(decodeText(raw)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ValidationError{Message: "CSV parse failed", Cause: err}
	}
	if len(records) < 2 {
		return nil, &ValidationError{Message: "CSV has no data rows"}
	}

	columns := mapColumns(records[0])

	rows := make([]types.RatingRow, 0, len(records)-1)
	for _, record := range records[1:] {
		get := func(key string) string {
			idx, ok := columns[key]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		row := types.RatingRow{
			BeerName:     get("beer_name"),
			Brewery:      get("brewery"),
			BreweryCity:  get("brewery_city"),
			BreweryState: get("brewery_state"),
			BreweryURL:   get("brewery_url"),
			Style:        get("style"),
			UserRating:   parseFloat(get("user_rating")),
			GlobalRating: parseFloat(get("global_rating")),
			UserWeight:   parseFloat(get("user_weight")),
			GlobalWeight: parseFloat(get("global_weight")),
			ABV:          parseFloat(get("abv")),
			IBU:          parseFloat(get("ibu")),
			TastingNotes: get("notes"),
		}
		if flavors := get("flavors"); flavors != "" {
			row.FlavorTags = splitFlavorList(flavors)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// mapColumns maps canonical column keys to indices in the header record.
// The first alias that appears in the header wins.
func mapColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	columns := make(map[string]int)
	for key, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				columns[key] = i
				break
			}
		}
	}
	return columns
}

// decodeText returns text from raw upload bytes, stripping a UTF-8 BOM and
// falling back to latin-1 when the content is not valid UTF-8.
func decodeText(raw []byte) string {
	raw = stripBOM(raw)
	if utf8.Valid(raw) {
		return string(raw)
	}

	// latin-1: every byte maps directly to the code point of the same value
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}

func stripBOM(raw []byte) []byte {
	if len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF {
		return raw[3:]
	}
	return raw
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func splitFlavorList(s string) []string {
	parts := strings.Split(s, ",")
	flavors := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			flavors = append(flavors, p)
		}
	}
	return flavors
}
