package menu

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tapmatch/tapmatch/internal/types"
)

// LocalSource reads a venue's static sample menu from a CSV file in the
// menus directory. The venue's MenuFile is used when recorded; otherwise
// the file is located by sanitized venue name.
type LocalSource struct {
	dir string
}

// NewLocalSource creates a local fallback source over dir.
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{dir: dir}
}

// Name identifies the source in entry provenance and logs.
func (s *LocalSource) Name() string { return "local" }

// Menu reads the venue's static menu file.
func (s *LocalSource) Menu(_ context.Context, venue *types.LocationRecord) ([]types.MenuEntry, error) {
	path := s.menuPath(venue)

	f, err := os.Open(path)
	if err != nil {
		return nil, &FetchError{Venue: venue.VenueName, Message: "no local menu file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &FetchError{Venue: venue.VenueName, Message: "malformed local menu file", Cause: err}
	}
	if len(records) < 2 {
		return nil, &FetchError{Venue: venue.VenueName, Message: "local menu file has no rows"}
	}

	columns := menuColumns(records[0])

	var entries []types.MenuEntry
	for _, record := range records[1:] {
		get := func(key string) string {
			idx, ok := columns[key]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		name := get("name")
		if name == "" {
			continue
		}

		beer := types.BeerRecord{
			Name:    name,
			Style:   get("style"),
			Brewery: get("brewery"),
			ABV:     parseMenuFloat(get("abv")),
			IBU:     parseMenuFloat(get("ibu")),
		}
		entries = append(entries, types.MenuEntry{Beer: beer, OnTap: get("on_tap") != "false", Source: "local"})
	}

	return entries, nil
}

func (s *LocalSource) menuPath(venue *types.LocationRecord) string {
	if venue.MenuFile != "" {
		if filepath.IsAbs(venue.MenuFile) {
			return venue.MenuFile
		}
		return filepath.Join(s.dir, filepath.Base(venue.MenuFile))
	}
	return filepath.Join(s.dir, menuFileName(venue.VenueName))
}

// menuFileName mirrors the sanitization used for venue-derived filenames:
// spaces to underscores, everything else outside [A-Za-z0-9_-] dropped.
func menuFileName(venueName string) string {
	var sb strings.Builder
	for _, r := range strings.ReplaceAll(strings.ToLower(strings.TrimSpace(venueName)), " ", "_") {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		}
	}
	return sb.String() + ".csv"
}

var menuColumnAliases = map[string][]string{
	"name":    {"beer_name", "name"},
	"style":   {"beer_type", "style"},
	"brewery": {"brewery_name", "brewery"},
	"abv":     {"beer_abv", "abv"},
	"ibu":     {"beer_ibu", "ibu"},
	"on_tap":  {"on_tap"},
}

func menuColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	columns := make(map[string]int)
	for key, aliases := range menuColumnAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				columns[key] = i
				break
			}
		}
	}
	return columns
}

func parseMenuFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
