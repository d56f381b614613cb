package fetch

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>menu</body></html>"))
	}))
	defer server.Close()

	result, err := URL(t.Context(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "menu")
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(t.Context(), "not-a-url", nil)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.False(t, fe.Retryable)
}

func TestURL_ServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	result, err := URL(t.Context(), server.URL, nil)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Retryable)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusBadGateway, result.StatusCode)
}

func TestURL_NotFoundIsNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := URL(t.Context(), server.URL, nil)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.False(t, fe.Retryable)
}

func TestURL_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := URL(t.Context(), server.URL, &Options{Timeout: 20 * time.Millisecond})
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Retryable)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("<html></html>"))
	assert.False(t, ShouldUseBrowser("<html>"+strings.Repeat("beer ", MinContentLength)+"</html>"))
}
