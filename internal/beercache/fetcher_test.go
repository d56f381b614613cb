package beercache

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const beerPage = `<html><body>
<h1 class="name">Focal Banger</h1>
<p class="brewery">The Alchemist</p>
<p class="style">IPA - American</p>
<p class="abv">7% ABV</p>
<p class="ibu">75 IBU</p>
<p class="rating">(4.35)</p>
</body></html>`

func TestParseBeerPage(t *testing.T) {
	rec, err := ParseBeerPage(beerPage)
	require.NoError(t, err)

	assert.Equal(t, "Focal Banger", rec.Name)
	assert.Equal(t, "IPA - American", rec.Style)
	assert.Equal(t, "The Alchemist", rec.Brewery)
	require.NotNil(t, rec.ABV)
	assert.InDelta(t, 7.0, *rec.ABV, 1e-9)
	require.NotNil(t, rec.IBU)
	assert.InDelta(t, 75.0, *rec.IBU, 1e-9)
	require.NotNil(t, rec.GlobalRating)
	assert.InDelta(t, 4.35, *rec.GlobalRating, 1e-9)
}

func TestParseBeerPage_MissingFieldsStayNil(t *testing.T) {
	rec, err := ParseBeerPage(`<html><body><h1>Mystery Brew</h1></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Mystery Brew", rec.Name)
	assert.Empty(t, rec.Style)
	assert.Nil(t, rec.ABV)
	assert.Nil(t, rec.IBU)
	assert.Nil(t, rec.GlobalRating)
}

func TestHTTPFetcher_FetchBeer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "Focal+Banger")
		_, _ = w.Write([]byte(beerPage))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(server.URL+"/beer?q=%s", nil)
	rec, err := fetcher.FetchBeer(t.Context(), "Focal Banger")
	require.NoError(t, err)
	assert.Equal(t, "Focal Banger", rec.Name)
}

func TestHTTPFetcher_NoTemplate(t *testing.T) {
	fetcher := NewHTTPFetcher("", nil)
	_, err := fetcher.FetchBeer(t.Context(), "Anything")
	assert.Error(t, err)
}

func TestHTTPFetcher_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(server.URL+"/beer?q=%s", nil)
	_, err := fetcher.FetchBeer(t.Context(), "Anything")
	assert.Error(t, err)
}
