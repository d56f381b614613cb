package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tapmatch/tapmatch/internal/beercache"
	"github.com/tapmatch/tapmatch/internal/locations"
	"github.com/tapmatch/tapmatch/internal/profile"
	"github.com/tapmatch/tapmatch/internal/types"
)

// maxUploadBytes caps a rating-history upload.
const maxUploadBytes = 10 << 20

// MatchRequest is the request body for /api/match.
type MatchRequest struct {
	Venue   string `json:"venue"`
	Profile string `json:"profile"`
}

// MatchItem is one ranked beer in a match response.
type MatchItem struct {
	BeerName  string             `json:"beer_name"`
	Style     string             `json:"style,omitempty"`
	ABV       *float64           `json:"abv,omitempty"`
	IBU       *float64           `json:"ibu,omitempty"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// MatchResponse is the response for /api/match.
type MatchResponse struct {
	Venue   string      `json:"venue"`
	Profile string      `json:"profile"`
	Results []MatchItem `json:"results"`
}

// MenuResponse is the response for /api/venues/menu.
type MenuResponse struct {
	Venue   string            `json:"venue"`
	Entries []types.MenuEntry `json:"entries"`
}

func (s *Server) handleCountries(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.index.Countries())
}

// Empty filter params are wildcards at every level, so an omitted country
// lists states across all countries and venues with a blank state_province
// stay reachable through the cascade.
func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.index.States(r.URL.Query().Get("country")))
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.jsonResponse(w, http.StatusOK, s.index.Cities(q.Get("country"), q.Get("state")))
}

func (s *Server) handleVenues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	venues := s.index.Venues(q.Get("country"), q.Get("state"), q.Get("city"))
	s.jsonResponse(w, http.StatusOK, venues)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, _ *http.Request) {
	summaries, err := s.profiles.List()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to list profiles: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, summaries)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	p, err := s.profiles.Get(name)
	if err != nil {
		var notFound *profile.NotFoundError
		if errors.As(err, &notFound) {
			s.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handleUploadProfile ingests a rating-history CSV and builds a profile.
func (s *Server) handleUploadProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	displayName := r.FormValue("display_name")
	if displayName == "" {
		s.errorResponse(w, http.StatusBadRequest, "display_name is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	rows, err := profile.ParseCSV(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to parse CSV: "+err.Error())
		return
	}

	p, err := s.builder.Build(r.Context(), displayName, rows)
	if err != nil {
		var validation *profile.ValidationError
		if errors.As(err, &validation) {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.profiles.Save(p); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to save profile: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, p)
}

func (s *Server) handleGetBeer(w http.ResponseWriter, r *http.Request) {
	if s.beers == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "beer lookups are not configured")
		return
	}

	name := r.PathValue("name")
	rec, err := s.beers.Get(r.Context(), name)
	if err != nil {
		var notFound *beercache.NotFoundError
		if errors.As(err, &notFound) {
			s.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleVenueMenu(w http.ResponseWriter, r *http.Request) {
	venueName := r.URL.Query().Get("venue")
	if venueName == "" {
		s.errorResponse(w, http.StatusBadRequest, "venue is required")
		return
	}

	venue, err := s.index.Venue(venueName)
	if err != nil {
		var notFound *locations.NotFoundError
		if errors.As(err, &notFound) {
			s.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries := s.menus.GetMenu(r.Context(), venue)
	s.jsonResponse(w, http.StatusOK, MenuResponse{Venue: venue.VenueName, Entries: entries})
}

// handleMatch resolves a venue's menu and ranks it against a stored profile.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Venue == "" || req.Profile == "" {
		s.errorResponse(w, http.StatusBadRequest, "venue and profile are required")
		return
	}

	p, err := s.profiles.Get(req.Profile)
	if err != nil {
		var notFound *profile.NotFoundError
		if errors.As(err, &notFound) {
			s.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	venue, err := s.index.Venue(req.Venue)
	if err != nil {
		var notFound *locations.NotFoundError
		if errors.As(err, &notFound) {
			s.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	menuEntries := s.menus.GetMenu(r.Context(), venue)
	ranked := s.engine.RankMenu(p, menuEntries)

	items := make([]MatchItem, 0, len(ranked))
	for _, result := range ranked {
		items = append(items, MatchItem{
			BeerName:  result.Entry.Beer.Name,
			Style:     result.Entry.Beer.Style,
			ABV:       result.Entry.Beer.ABV,
			IBU:       result.Entry.Beer.IBU,
			Score:     result.Score,
			Breakdown: result.Breakdown,
		})
	}

	s.jsonResponse(w, http.StatusOK, MatchResponse{
		Venue:   venue.VenueName,
		Profile: p.Name,
		Results: items,
	})
}
