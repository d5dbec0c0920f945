package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"lowercases scheme and host",
			"HTTPS://Www.Example.COM/Path",
			"https://www.example.com/Path",
		},
		{
			"strips default port",
			"https://example.com:443/a",
			"https://example.com/a",
		},
		{
			"strips fragment",
			"https://example.com/a#section",
			"https://example.com/a",
		},
		{
			"strips tracking params and sorts the rest",
			"https://example.com/a?z=1&utm_source=tw&a=2&fbclid=x",
			"https://example.com/a?a=2&z=1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyIncludesRenderMode(t *testing.T) {
	static, err := Key("https://example.com/a", ModeStatic)
	require.NoError(t, err)
	rendered, err := Key("https://example.com/a", ModeRendered)
	require.NoError(t, err)
	defaulted, err := Key("https://example.com/a", "")
	require.NoError(t, err)

	assert.NotEqual(t, static, rendered)
	assert.Equal(t, static, defaulted)
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	key, err := Key("https://example.com/article?a=1", ModeStatic)
	require.NoError(t, err)

	_, _, ok := store.Get("page", key)
	assert.False(t, ok)
	assert.False(t, store.Has("page", key))

	entry, err := store.Put("page", key, []byte("<html>body</html>"))
	require.NoError(t, err)
	assert.Equal(t, key, entry.Key)
	assert.NotEmpty(t, entry.ContentHash)
	assert.False(t, entry.FetchedAt.IsZero())

	payload, got, ok := store.Get("page", key)
	require.True(t, ok)
	assert.Equal(t, []byte("<html>body</html>"), payload)
	assert.Equal(t, entry.ContentHash, got.ContentHash)
	assert.True(t, store.Has("page", key))
}

func TestStoreOverwrite(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	key, err := Key("https://example.com/spa", ModeStatic)
	require.NoError(t, err)

	_, err = store.Put("page", key, []byte("thin shell"))
	require.NoError(t, err)
	_, err = store.Put("page", key, []byte("full rendered body"))
	require.NoError(t, err)

	payload, _, ok := store.Get("page", key)
	require.True(t, ok)
	assert.Equal(t, []byte("full rendered body"), payload)
}

func TestStoreBust(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	key, err := Key("https://example.com/stale", ModeStatic)
	require.NoError(t, err)
	_, err = store.Put("page", key, []byte("old"))
	require.NoError(t, err)

	require.NoError(t, store.Bust("page", key))
	assert.False(t, store.Has("page", key))

	// Busting an absent key is not an error.
	require.NoError(t, store.Bust("page", key))
}

func TestStoreKeysRebuildsResumeIndex(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	want := map[string]struct{}{}
	for _, u := range []string{
		"https://example.com/one",
		"https://example.com/two",
		"https://example.com/three",
	} {
		key, err := Key(u, ModeStatic)
		require.NoError(t, err)
		_, err = store.Put("page", key, []byte(u))
		require.NoError(t, err)
		want[key] = struct{}{}
	}

	// A different partition must not leak into the page index.
	other, err := Key("https://example.com/map.xml", ModeStatic)
	require.NoError(t, err)
	_, err = store.Put("sitemap", other, []byte("<xml/>"))
	require.NoError(t, err)

	keys, err := store.Keys("page")
	require.NoError(t, err)
	require.Len(t, keys, len(want))
	for _, k := range keys {
		assert.Contains(t, want, k)
	}

	empty, err := store.Keys("missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
