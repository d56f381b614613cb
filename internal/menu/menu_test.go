package menu

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapmatch/tapmatch/internal/beercache"
	"github.com/tapmatch/tapmatch/internal/matching"
	"github.com/tapmatch/tapmatch/internal/types"
)

const menuPage = `<html><body>
<ul class="tap-list">
  <li class="menu-item">
    <span class="name">Heady Topper</span>
    <span class="style">Double IPA</span>
    <span class="details">8% ABV &middot; 75 IBU</span>
  </li>
  <li class="menu-item">
    <h3>Sip of Sunshine</h3>
    <span class="beer-style">IPA</span>
    <span class="details">8.0% ABV</span>
  </li>
  <li class="menu-item">
    <span class="details">no name here</span>
  </li>
</ul>
</body></html>`

func TestParseMenuHTML(t *testing.T) {
	entries := ParseMenuHTML(menuPage)
	require.Len(t, entries, 2)

	assert.Equal(t, "Heady Topper", entries[0].Beer.Name)
	assert.Equal(t, "Double IPA", entries[0].Beer.Style)
	require.NotNil(t, entries[0].Beer.ABV)
	assert.Equal(t, 8.0, *entries[0].Beer.ABV)
	require.NotNil(t, entries[0].Beer.IBU)
	assert.Equal(t, 75.0, *entries[0].Beer.IBU)
	assert.True(t, entries[0].OnTap)
	assert.Equal(t, "live", entries[0].Source)

	assert.Equal(t, "Sip of Sunshine", entries[1].Beer.Name)
	assert.Equal(t, "IPA", entries[1].Beer.Style)
	require.NotNil(t, entries[1].Beer.ABV)
	assert.Equal(t, 8.0, *entries[1].Beer.ABV)
	assert.Nil(t, entries[1].Beer.IBU)
}

func TestParseMenuHTMLNoItems(t *testing.T) {
	assert.Empty(t, ParseMenuHTML(`<html><body><p>closed for renovation</p></body></html>`))
}

func TestLiveSourceNoURL(t *testing.T) {
	src := NewLiveSource(nil, false, false)
	venue := &types.LocationRecord{VenueName: "The Quiet Pint"}

	_, err := src.Menu(context.Background(), venue)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "The Quiet Pint", fe.Venue)
}

// A tripped breaker for one flapping site must not suppress live fetches
// for venues hosted elsewhere.
func TestLiveSourceBreakerIsPerHost(t *testing.T) {
	var badHits atomic.Int64
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		badHits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(menuPage))
	}))
	defer good.Close()

	src := NewLiveSource(nil, false, false)
	badVenue := &types.LocationRecord{VenueName: "Flapping Taps", URL: bad.URL}
	goodVenue := &types.LocationRecord{VenueName: "Steady Pours", URL: good.URL}

	for i := 0; i < 5; i++ {
		_, err := src.Menu(context.Background(), badVenue)
		require.Error(t, err)
	}
	require.EqualValues(t, 5, badHits.Load())

	// The breaker is now open for the bad host: no further request reaches it.
	_, err := src.Menu(context.Background(), badVenue)
	require.Error(t, err)
	assert.EqualValues(t, 5, badHits.Load())

	entries, err := src.Menu(context.Background(), goodVenue)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func writeLocalMenu(t *testing.T, dir, file, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
}

func TestLocalSourceReadsMenuFile(t *testing.T) {
	dir := t.TempDir()
	writeLocalMenu(t, dir, "the_alchemist.csv",
		"beer_name,beer_type,beer_abv,beer_ibu\nFocal Banger,IPA,7.0,75\nHeady Topper,Double IPA,8.0,\n")

	src := NewLocalSource(dir)
	venue := &types.LocationRecord{VenueName: "The Alchemist"}

	entries, err := src.Menu(context.Background(), venue)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Focal Banger", entries[0].Beer.Name)
	assert.Equal(t, "IPA", entries[0].Beer.Style)
	require.NotNil(t, entries[0].Beer.ABV)
	assert.Equal(t, 7.0, *entries[0].Beer.ABV)
	assert.Equal(t, "local", entries[0].Source)

	assert.Nil(t, entries[1].Beer.IBU)
}

func TestLocalSourceHonorsMenuFileField(t *testing.T) {
	dir := t.TempDir()
	writeLocalMenu(t, dir, "custom.csv", "beer_name\nPliny the Elder\n")

	src := NewLocalSource(dir)
	venue := &types.LocationRecord{VenueName: "Russian River", MenuFile: "custom.csv"}

	entries, err := src.Menu(context.Background(), venue)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Pliny the Elder", entries[0].Beer.Name)
}

func TestLocalSourceMissingFile(t *testing.T) {
	src := NewLocalSource(t.TempDir())
	venue := &types.LocationRecord{VenueName: "Nowhere Brewing"}

	_, err := src.Menu(context.Background(), venue)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
}

// fakeSource scripts a sequence of Menu outcomes and counts calls.
type fakeSource struct {
	name    string
	entries []types.MenuEntry
	err     error
	calls   atomic.Int64
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Menu(context.Context, *types.LocationRecord) ([]types.MenuEntry, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func liveVenue(name string) *types.LocationRecord {
	return &types.LocationRecord{VenueName: name, URL: "https://example.com/menu"}
}

func localEntries(names ...string) []types.MenuEntry {
	var entries []types.MenuEntry
	for _, n := range names {
		entries = append(entries, types.MenuEntry{Beer: types.BeerRecord{Name: n}, OnTap: true, Source: "local"})
	}
	return entries
}

func TestProviderLiveSuccess(t *testing.T) {
	live := &fakeSource{name: "live", entries: localEntries("Focal Banger")}
	local := &fakeSource{name: "local", entries: localEntries("Old Stock")}

	p := NewProvider(live, local, nil)
	entries := p.GetMenu(context.Background(), liveVenue("The Alchemist"))

	require.Len(t, entries, 1)
	assert.Equal(t, "Focal Banger", entries[0].Beer.Name)
	assert.EqualValues(t, 1, live.calls.Load())
	assert.EqualValues(t, 0, local.calls.Load())
}

func TestProviderFallsBackToLocalAfterRetry(t *testing.T) {
	live := &fakeSource{name: "live", err: errors.New("timeout")}
	local := &fakeSource{name: "local", entries: localEntries("Old Stock")}

	p := NewProvider(live, local, nil)
	p.SetRetryBackoff(time.Millisecond)

	entries := p.GetMenu(context.Background(), liveVenue("The Alchemist"))

	require.Len(t, entries, 1)
	assert.Equal(t, "Old Stock", entries[0].Beer.Name)
	assert.EqualValues(t, 2, live.calls.Load(), "live source should be retried exactly once")
	assert.EqualValues(t, 1, local.calls.Load())
}

// A venue with no live-source URL must resolve straight to the local menu:
// no live attempt, and none of the retry backoff.
func TestProviderSkipsLiveForVenueWithoutURL(t *testing.T) {
	live := &fakeSource{name: "live", entries: localEntries("Never Served")}
	local := &fakeSource{name: "local", entries: localEntries("Old Stock")}

	p := NewProvider(live, local, nil)
	p.SetRetryBackoff(time.Hour)

	start := time.Now()
	entries := p.GetMenu(context.Background(), &types.LocationRecord{VenueName: "The Quiet Pint"})
	elapsed := time.Since(start)

	require.Len(t, entries, 1)
	assert.Equal(t, "Old Stock", entries[0].Beer.Name)
	assert.EqualValues(t, 0, live.calls.Load())
	assert.EqualValues(t, 1, local.calls.Load())
	assert.Less(t, elapsed, time.Second)
}

func TestProviderEmptyWhenAllSourcesFail(t *testing.T) {
	live := &fakeSource{name: "live", err: errors.New("timeout")}
	local := &fakeSource{name: "local", err: &FetchError{Venue: "x", Message: "no local menu file"}}

	p := NewProvider(live, local, nil)
	p.SetRetryBackoff(time.Millisecond)

	entries := p.GetMenu(context.Background(), liveVenue("The Alchemist"))
	require.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestProviderNilSources(t *testing.T) {
	p := NewProvider(nil, nil, nil)
	entries := p.GetMenu(context.Background(), &types.LocationRecord{VenueName: "Anywhere"})
	require.NotNil(t, entries)
	assert.Empty(t, entries)
}

// The fallback menu must rank identically to ranking the static menu
// directly: the provider adds nothing when the live source is down and no
// cache is wired.
func TestFallbackMenuRanksLikeStaticMenu(t *testing.T) {
	dir := t.TempDir()
	writeLocalMenu(t, dir, "the_alchemist.csv",
		"beer_name,beer_type,beer_abv,beer_ibu\nFocal Banger,IPA,7.0,75\nHeady Topper,Double IPA,8.0,75\nLuscious,Imperial Stout,10.1,\n")

	local := NewLocalSource(dir)
	venue := liveVenue("The Alchemist")

	live := &fakeSource{name: "live", err: errors.New("timeout")}
	p := NewProvider(live, local, nil)
	p.SetRetryBackoff(time.Millisecond)

	viaProvider := p.GetMenu(context.Background(), venue)
	direct, err := local.Menu(context.Background(), venue)
	require.NoError(t, err)

	profile := &types.Profile{
		Name:         "hophead",
		StyleWeights: map[string]float64{"IPA": 0.9, "Double IPA": 0.8},
		ABVPref:      &types.RangePref{Mean: 7.5, Spread: 1.0},
	}
	engine := matching.NewEngine(matching.DefaultWeights())

	fromProvider := engine.RankMenu(profile, viaProvider)
	fromStatic := engine.RankMenu(profile, direct)

	require.Equal(t, len(fromStatic), len(fromProvider))
	for i := range fromStatic {
		assert.Equal(t, fromStatic[i].Entry.Beer.Name, fromProvider[i].Entry.Beer.Name)
		assert.Equal(t, fromStatic[i].Score, fromProvider[i].Score)
	}
}

// enrichFetcher serves fixed records for the beer cache during enrichment.
type enrichFetcher struct {
	records map[string]*types.BeerRecord
}

func (f *enrichFetcher) FetchBeer(_ context.Context, name string) (*types.BeerRecord, error) {
	rec, ok := f.records[types.NormalizeBeerName(name)]
	if !ok {
		return nil, errors.New("unknown beer")
	}
	clone := *rec
	return &clone, nil
}

func TestProviderEnrichesFromCache(t *testing.T) {
	abv := 7.0
	rating := 4.4
	fetcher := &enrichFetcher{records: map[string]*types.BeerRecord{
		"focal banger": {
			Name:         "Focal Banger",
			Style:        "IPA",
			ABV:          &abv,
			GlobalRating: &rating,
			FlavorTags:   []string{"citrus", "pine"},
		},
	}}
	cache := beercache.New(beercache.NewMemoryStore(), fetcher, time.Hour)

	sourceABV := 6.8
	live := &fakeSource{name: "live", entries: []types.MenuEntry{
		{Beer: types.BeerRecord{Name: "Focal Banger", ABV: &sourceABV}, OnTap: true, Source: "live"},
		{Beer: types.BeerRecord{Name: "Mystery Ale"}, OnTap: true, Source: "live"},
	}}

	p := NewProvider(live, nil, cache)
	entries := p.GetMenu(context.Background(), liveVenue("The Alchemist"))
	require.Len(t, entries, 2)

	// Cached fields fill gaps without clobbering what the source reported.
	assert.Equal(t, "IPA", entries[0].Beer.Style)
	require.NotNil(t, entries[0].Beer.ABV)
	assert.Equal(t, 6.8, *entries[0].Beer.ABV)
	require.NotNil(t, entries[0].Beer.GlobalRating)
	assert.Equal(t, 4.4, *entries[0].Beer.GlobalRating)
	assert.Equal(t, []string{"citrus", "pine"}, entries[0].Beer.FlavorTags)

	// Cache miss leaves the entry untouched.
	assert.Empty(t, entries[1].Beer.Style)
	assert.Nil(t, entries[1].Beer.ABV)
}
