package beercache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapmatch/tapmatch/internal/types"
)

func TestBadgerStore_RoundTrip(t *testing.T) {
	store, err := NewBadgerStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	abv := 8.0
	rec := &types.BeerRecord{
		Name:      "Heady Topper",
		Style:     "IPA - Imperial",
		Brewery:   "The Alchemist",
		ABV:       &abv,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Put(context.Background(), rec))

	got, err := store.Get(context.Background(), "heady topper")
	require.NoError(t, err)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.Style, got.Style)
	require.NotNil(t, got.ABV)
	assert.InDelta(t, 8.0, *got.ABV, 1e-9)
}

func TestBadgerStore_GetMissingKey(t *testing.T) {
	store, err := NewBadgerStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.Get(context.Background(), "nothing here")
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestBadgerStore_SurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	store, err := NewBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), &types.BeerRecord{Name: "Persisted Pils"}))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(dir)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(context.Background(), "persisted pils")
	require.NoError(t, err)
	assert.Equal(t, "Persisted Pils", got.Name)
}

func TestBadgerStore_CorruptedDirRecoversEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.MkdirAll(dir, 0755))
	// A garbage MANIFEST makes the store unreadable.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MANIFEST"), []byte("not a manifest"), 0644))

	store, err := NewBadgerStore(dir)
	require.NoError(t, err, "corruption must not be a startup failure")
	defer func() { _ = store.Close() }()

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBadgerStore_KeysSorted(t *testing.T) {
	store, err := NewBadgerStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	for _, name := range []string{"zombie dust", "apex predator", "mango cart"} {
		require.NoError(t, store.Put(context.Background(), &types.BeerRecord{Name: name}))
	}

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"apex predator", "mango cart", "zombie dust"}, keys)
}
