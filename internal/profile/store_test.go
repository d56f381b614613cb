package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapmatch/tapmatch/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func testProfile(name string) *types.Profile {
	mean := 4.1
	return &types.Profile{
		Name:          name,
		StyleWeights:  map[string]float64{"IPA": 0.8},
		FlavorWeights: map[string]float64{"citrus": 1.0},
		Ratings:       types.RatingStats{MeanUser: &mean, N: 10},
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(testProfile("Hop Head")))

	got, err := store.Get("Hop Head")
	require.NoError(t, err)
	assert.Equal(t, "Hop Head", got.Name)
	assert.InDelta(t, 0.8, got.StyleWeights["IPA"], 1e-9)
}

func TestStore_GetUnknownProfile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("nobody")
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "nobody", nfe.Name)
}

func TestStore_SaveIsReplacement(t *testing.T) {
	store := newTestStore(t)

	first := testProfile("Replay")
	require.NoError(t, store.Save(first))

	second := testProfile("Replay")
	second.StyleWeights = map[string]float64{"Stout": 0.9}
	require.NoError(t, store.Save(second))

	got, err := store.Get("Replay")
	require.NoError(t, err)
	assert.NotContains(t, got.StyleWeights, "IPA")
	assert.InDelta(t, 0.9, got.StyleWeights["Stout"], 1e-9)
}

func TestStore_ListSortedCaseInsensitively(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testProfile("zeta")))
	require.NoError(t, store.Save(testProfile("Alpha")))
	require.NoError(t, store.Save(testProfile("beta")))

	summaries, err := store.List()
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "Alpha", summaries[0].DisplayName)
	assert.Equal(t, "beta", summaries[1].DisplayName)
	assert.Equal(t, "zeta", summaries[2].DisplayName)
}

func TestStore_ListIgnoresNonJSONFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, store.Save(testProfile("Only")))

	summaries, err := store.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Only", summaries[0].DisplayName)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Hop_Head", SanitizeName("Hop Head"))
	assert.Equal(t, "weird-name_1", SanitizeName("weird-name_1"))
	assert.Equal(t, "pathtraversal", SanitizeName("../path/traversal"))
	assert.Equal(t, "Unnamed", SanitizeName("  ../// "))
}
