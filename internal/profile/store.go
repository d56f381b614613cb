package profile

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tapmatch/tapmatch/internal/schemas"
	"github.com/tapmatch/tapmatch/internal/types"
)

// Store persists one JSON document per named profile in a directory.
type Store struct {
	dir string
	// schema holds the profile document schema content, empty when the
	// schema file could not be located (validation is then skipped).
	schema string
}

// Summary identifies a stored profile in listings.
type Summary struct {
	File        string `json:"file"`
	DisplayName string `json:"display_name"`
}

// NewStore creates a profile store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StoreError{Message: "failed to create profiles directory", Cause: err}
	}

	s := &Store{dir: dir}
	if path := schemas.ResolveSchemaPath(schemas.ProfileSchemaPath); path != "" {
		if content, err := os.ReadFile(path); err == nil {
			s.schema = string(content)
		}
	}
	if s.schema == "" {
		log.Printf("[PROFILE] profile schema not found, skipping document validation")
	}
	return s, nil
}

// Save writes the profile document atomically: marshal, write to a temp file
// in the same directory, flush, then rename over the destination. Schema
// validation failures on save are logged, not fatal, since the document was
// produced by our own builder.
func (s *Store) Save(p *types.Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return &StoreError{Message: "failed to marshal profile", Cause: err}
	}

	if s.schema != "" {
		if err := schemas.ValidateJSONString(s.schema, string(data)); err != nil {
			log.Printf("[PROFILE] saved document failed schema validation: %v", err)
		}
	}

	dest := s.path(p.Name)

	tmp, err := os.CreateTemp(s.dir, ".profile-*.json")
	if err != nil {
		return &StoreError{Message: "failed to create temp file", Cause: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &StoreError{Message: "failed to write profile", Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &StoreError{Message: "failed to flush profile", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &StoreError{Message: "failed to close temp file", Cause: err}
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return &StoreError{Message: "failed to replace profile file", Cause: err}
	}
	return nil
}

// Get loads a stored profile by display name. Documents that fail schema
// validation are rejected; they were not written by this system.
func (s *Store) Get(name string) (*types.Profile, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Name: name}
		}
		return nil, &StoreError{Message: "failed to read profile", Cause: err}
	}

	if s.schema != "" {
		if err := schemas.ValidateJSONString(s.schema, string(data)); err != nil {
			return nil, &StoreError{Message: "profile document failed schema validation", Cause: err}
		}
	}

	var p types.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &StoreError{Message: "failed to parse profile", Cause: err}
	}
	return &p, nil
}

// List returns stored profiles sorted case-insensitively by display name.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &StoreError{Message: "failed to read profiles directory", Cause: err}
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		display := strings.TrimSuffix(entry.Name(), ".json")
		if data, err := os.ReadFile(filepath.Join(s.dir, entry.Name())); err == nil {
			var doc struct {
				Name string `json:"name"`
			}
			if json.Unmarshal(data, &doc) == nil && doc.Name != "" {
				display = doc.Name
			}
		}
		summaries = append(summaries, Summary{File: entry.Name(), DisplayName: display})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return strings.ToLower(summaries[i].DisplayName) < strings.ToLower(summaries[j].DisplayName)
	})
	return summaries, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, SanitizeName(name)+".json")
}

// SanitizeName converts a display name to a safe filename: spaces become
// underscores and anything outside [A-Za-z0-9_-] is dropped.
func SanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ReplaceAll(strings.TrimSpace(name), " ", "_") {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "Unnamed"
	}
	return sb.String()
}
