package locations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const venueTable = `name,city,state_province,country,url
Hopworks,Portland,Oregon,United States,https://example.com/hopworks
Cascade Barrel House,Portland,Oregon,United States,
Springfield Taproom,Springfield,,United States,
Bayern Brewing,Missoula,Montana,United States,
Mikkeller Bar,Copenhagen,,Denmark,
Bellwoods,Toronto,Ontario,Canada,
`

func newTestIndex(t *testing.T, csvContent string) (*Index, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "breweries.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvContent), 0644))
	ix, err := NewIndex(path, path)
	require.NoError(t, err)
	return ix, path
}

func TestCountries_UnitedStatesFirstThenLexicographic(t *testing.T) {
	ix, _ := newTestIndex(t, venueTable)
	assert.Equal(t, []string{"United States", "Canada", "Denmark"}, ix.Countries())
}

func TestStates_FiltersByCountryAndSkipsBlanks(t *testing.T) {
	ix, _ := newTestIndex(t, venueTable)
	assert.Equal(t, []string{"Montana", "Oregon"}, ix.States("United States"))
	assert.Equal(t, []string{"Ontario"}, ix.States("Canada"))
	assert.Empty(t, ix.States("Denmark"))
}

func TestCities_StableOrder(t *testing.T) {
	ix, _ := newTestIndex(t, venueTable)
	assert.Equal(t, []string{"Missoula", "Portland", "Springfield"}, ix.Cities("United States", ""))
	assert.Equal(t, []string{"Portland"}, ix.Cities("United States", "Oregon"))
}

func TestVenues_BlankStateSentinelCascade(t *testing.T) {
	ix, _ := newTestIndex(t, venueTable)

	// The Springfield venue has no recorded state; it must be reachable
	// with the empty-string state sentinel.
	venues := ix.Venues("United States", "", "Springfield")
	require.Len(t, venues, 1)
	assert.Equal(t, "Springfield Taproom", venues[0].VenueName)
	assert.Equal(t, "", venues[0].StateProvince)
}

func TestVenues_SortedByNameCaseInsensitive(t *testing.T) {
	ix, _ := newTestIndex(t, venueTable)
	venues := ix.Venues("United States", "Oregon", "Portland")
	require.Len(t, venues, 2)
	assert.Equal(t, "Cascade Barrel House", venues[0].VenueName)
	assert.Equal(t, "Hopworks", venues[1].VenueName)
}

func TestVenue_LookupCaseInsensitive(t *testing.T) {
	ix, _ := newTestIndex(t, venueTable)

	v, err := ix.Venue("hopworks")
	require.NoError(t, err)
	assert.Equal(t, "Hopworks", v.VenueName)

	_, err = ix.Venue("No Such Place")
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestRebuildIfChanged(t *testing.T) {
	ix, path := newTestIndex(t, venueTable)

	changed, err := ix.RebuildIfChanged()
	require.NoError(t, err)
	assert.False(t, changed, "identical content must not trigger a rebuild")

	updated := venueTable + "New Spot,Boise,Idaho,United States,\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	changed, err = ix.RebuildIfChanged()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, ix.States("United States"), "Idaho")
}

func TestParseVenueTable_FromBytes(t *testing.T) {
	// Parsing works on content already in memory; the snapshot and its
	// checksum are always derived from the same read of the file.
	records, err := parseVenueTable([]byte(venueTable), "breweries.csv")
	require.NoError(t, err)
	assert.Len(t, records, 6)
	assert.Equal(t, "Hopworks", records[0].VenueName)

	_, err = parseVenueTable([]byte("name,city\n\"unterminated"), "bad.csv")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "bad.csv", le.Path)
}

func TestLoad_SkipsInvalidRows(t *testing.T) {
	table := `name,city,state_province,country
,Portland,Oregon,United States
No City,,Oregon,United States
No Region At All,Portland,,
Valid,Portland,Oregon,
`
	ix, _ := newTestIndex(t, table)

	venues := ix.Venues("", "", "")
	require.Len(t, venues, 1)
	assert.Equal(t, "Valid", venues[0].VenueName)
	// Country defaults when the row has a state but no country.
	assert.Equal(t, "United States", venues[0].Country)
}

func TestConcurrentReadsDuringRebuild(t *testing.T) {
	ix, path := newTestIndex(t, venueTable)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = os.WriteFile(path, []byte(venueTable), 0644)
			_, _ = ix.RebuildIfChanged()
			_ = ix.Rebuild()
		}
	}()

	for i := 0; i < 200; i++ {
		countries := ix.Countries()
		assert.NotEmpty(t, countries)
		_ = ix.Venues("United States", "", "")
	}
	<-done
}
