package beercache

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tapmatch/tapmatch/internal/fetch"
	"github.com/tapmatch/tapmatch/internal/types"
)

var (
	abvPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*ABV`)
	ibuPattern    = regexp.MustCompile(`(\d+)\s*IBU`)
	ratingPattern = regexp.MustCompile(`\((\d(?:\.\d+)?)\)`)
)

// HTTPFetcher resolves beer metadata by scraping a beer-info page. The URL
// template receives the URL-escaped beer name.
type HTTPFetcher struct {
	URLTemplate string
	Options     *fetch.Options
}

// NewHTTPFetcher creates a fetcher for the given URL template, e.g.
// "https://example.com/beer/%s".
func NewHTTPFetcher(urlTemplate string, opts *fetch.Options) *HTTPFetcher {
	return &HTTPFetcher{URLTemplate: urlTemplate, Options: opts}
}

// FetchBeer fetches and parses the beer page for name.
func (f *HTTPFetcher) FetchBeer(ctx context.Context, name string) (*types.BeerRecord, error) {
	if f.URLTemplate == "" {
		return nil, fmt.Errorf("no beer URL template configured")
	}

	pageURL := fmt.Sprintf(f.URLTemplate, url.QueryEscape(name))
	result, err := fetch.URL(ctx, pageURL, f.Options)
	if err != nil {
		return nil, err
	}

	rec, err := ParseBeerPage(result.HTML)
	if err != nil {
		return nil, err
	}
	if rec.Name == "" {
		rec.Name = name
	}
	return rec, nil
}

// ParseBeerPage extracts a beer record from an info-page HTML document.
// Selector fallbacks cover the markup variants seen in the wild; ABV, IBU,
// and the parenthesized global rating are pulled out of text with regexes.
func ParseBeerPage(html string) (*types.BeerRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse beer page: %w", err)
	}

	rec := &types.BeerRecord{}

	if sel := firstOf(doc, ".name", ".beer-name", "h1"); sel != nil {
		rec.Name = strings.TrimSpace(sel.Text())
	}
	if sel := firstOf(doc, ".style", ".beer-style"); sel != nil {
		rec.Style = strings.TrimSpace(sel.Text())
	}
	if sel := firstOf(doc, ".brewery", ".brewery-name"); sel != nil {
		rec.Brewery = strings.TrimSpace(sel.Text())
	}

	text := doc.Text()
	if m := abvPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rec.ABV = &v
		}
	}
	if m := ibuPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rec.IBU = &v
		}
	}

	if sel := firstOf(doc, ".rating", ".caps"); sel != nil {
		if m := ratingPattern.FindStringSubmatch(sel.Text()); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				rec.GlobalRating = &v
			}
		}
	}

	return rec, nil
}

func firstOf(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel.First()
		}
	}
	return nil
}
