package locations

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/tapmatch/tapmatch/internal/types"
)

// Header aliases accepted in venue tables. Exports from different tools name
// the same columns differently; the first alias present wins.
var venueColumnAliases = map[string][]string{
	"name":      {"name", "brewery_name", "venue_name"},
	"city":      {"city", "brewery_city", "venue_city"},
	"state":     {"state_province", "state", "province", "region", "brewery_state", "venue_state"},
	"country":   {"country", "brewery_country", "venue_country"},
	"url":       {"url", "website", "brewery_url"},
	"latitude":  {"latitude", "lat"},
	"longitude": {"longitude", "lng", "lon"},
	"menu_file": {"menu_file", "menu"},
}

// defaultCountry is assumed when a row carries a state but no country.
const defaultCountry = "United States"

// parseVenueTable parses venue table CSV content. Rows missing a name or
// city, or missing both state and country, are skipped rather than failing
// the load. Parsing from bytes keeps the snapshot and its checksum derived
// from one read of the file.
func parseVenueTable(content []byte, path string) ([]types.LocationRecord, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse CSV", Cause: err}
	}
	if len(records) < 2 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	columns := make(map[string]int)
	for key, aliases := range venueColumnAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				columns[key] = i
				break
			}
		}
	}

	rows := make([]types.LocationRecord, 0, len(records)-1)
	for _, record := range records[1:] {
		get := func(key string) string {
			idx, ok := columns[key]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		rec := types.LocationRecord{
			VenueName:     get("name"),
			City:          get("city"),
			StateProvince: get("state"),
			Country:       get("country"),
			URL:           get("url"),
			MenuFile:      get("menu_file"),
			Latitude:      parseCoord(get("latitude")),
			Longitude:     parseCoord(get("longitude")),
		}

		if rec.VenueName == "" || rec.City == "" {
			continue
		}
		if rec.StateProvince == "" && rec.Country == "" {
			continue
		}
		if rec.Country == "" {
			rec.Country = defaultCountry
		}

		rows = append(rows, rec)
	}

	return rows, nil
}

func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
