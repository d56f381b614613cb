package menu

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"

	"github.com/tapmatch/tapmatch/internal/fetch"
	"github.com/tapmatch/tapmatch/internal/types"
)

var (
	menuABVPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*ABV`)
	menuIBUPattern = regexp.MustCompile(`(\d+)\s*IBU`)
)

// LiveSource scrapes a venue's live menu page. A per-host circuit breaker
// fails repeated calls to a flapping site fast instead of tying up request
// deadlines on it; one bad site does not suppress live fetches elsewhere.
type LiveSource struct {
	opts       *fetch.Options
	useBrowser bool
	verbose    bool

	mu       sync.Mutex
	circuits map[string]*gobreaker.CircuitBreaker
}

// NewLiveSource creates a live source. opts bounds each HTTP attempt; when
// useBrowser is set, pages that come back as near-empty JS shells are
// re-fetched with a headless browser.
func NewLiveSource(opts *fetch.Options, useBrowser, verbose bool) *LiveSource {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}

	return &LiveSource{
		opts:       opts,
		useBrowser: useBrowser,
		verbose:    verbose,
		circuits:   make(map[string]*gobreaker.CircuitBreaker),
	}
}

// circuitFor returns the breaker guarding the site hosting rawURL.
func (s *LiveSource) circuitFor(rawURL string) *gobreaker.CircuitBreaker {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cb, ok := s.circuits[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "live-menu:" + host,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	s.circuits[host] = cb
	return cb
}

// Name identifies the source in entry provenance and logs.
func (s *LiveSource) Name() string { return "live" }

// Menu fetches and parses the venue's live offering list.
func (s *LiveSource) Menu(ctx context.Context, venue *types.LocationRecord) ([]types.MenuEntry, error) {
	if venue.URL == "" {
		return nil, &FetchError{Venue: venue.VenueName, Message: "venue has no live source URL"}
	}

	result, err := s.circuitFor(venue.URL).Execute(func() (any, error) {
		return s.fetchHTML(ctx, venue.URL)
	})
	if err != nil {
		return nil, &FetchError{Venue: venue.VenueName, Message: "live fetch failed", Cause: err}
	}

	entries := ParseMenuHTML(result.(string))
	if len(entries) == 0 {
		return nil, &FetchError{Venue: venue.VenueName, Message: "no menu items found in page"}
	}
	return entries, nil
}

func (s *LiveSource) fetchHTML(ctx context.Context, url string) (string, error) {
	result, err := fetch.URL(ctx, url, s.opts)
	if err != nil {
		return "", err
	}

	html := result.HTML
	if s.useBrowser && fetch.ShouldUseBrowser(html) {
		rendered, err := fetch.WithBrowser(ctx, url, s.opts.Timeout, s.verbose)
		if err != nil {
			// The plain HTTP body is still worth parsing.
			return html, nil
		}
		html = rendered
	}
	return html, nil
}

// ParseMenuHTML extracts menu entries from a venue page. Each li.menu-item
// contributes one entry; name and style selectors have fallbacks for markup
// variants and ABV/IBU are pulled from the item text with regexes. Items
// with no name are skipped.
func ParseMenuHTML(html string) []types.MenuEntry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var entries []types.MenuEntry
	doc.Find("li.menu-item").Each(func(_ int, li *goquery.Selection) {
		name := firstText(li, ".name", ".beer-name", "h3")
		if name == "" {
			return
		}

		beer := types.BeerRecord{
			Name:  name,
			Style: firstText(li, ".style", ".beer-style"),
		}

		text := li.Text()
		if m := menuABVPattern.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				beer.ABV = &v
			}
		}
		if m := menuIBUPattern.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				beer.IBU = &v
			}
		}

		entries = append(entries, types.MenuEntry{Beer: beer, OnTap: true, Source: "live"})
	})

	return entries
}

func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if found := sel.Find(selector); found.Length() > 0 {
			return strings.TrimSpace(found.First().Text())
		}
	}
	return ""
}

// String implements fmt.Stringer for log lines.
func (s *LiveSource) String() string {
	return fmt.Sprintf("live source (browser=%t)", s.useBrowser)
}
