package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStoreDefaultsToHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".sitekit", "config.toml"), store.Path())
}

func TestSetPersistsImmediately(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Set("google.client_id", "client-123"))
	require.NoError(t, store.Set("sync.workers", 4))

	// A fresh store over the same directory must see the values.
	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "client-123", reopened.GetString("google.client_id"))
	assert.Equal(t, 4, reopened.GetInt("sync.workers"))
}

func TestConfigFilePermissions(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("security.token_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[google]
client_id = "client-123"
redirect_uri = "http://localhost:8123/callback"

[sync]
enabled = true
workers = 3
periods = ["7d", "28d"]

[connectors.ga4]
enabled = false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "client-123", store.GetString("google.client_id"))
	assert.Equal(t, "http://localhost:8123/callback", store.GetString("google.redirect_uri"))
	assert.True(t, store.GetBool("sync.enabled"))
	assert.Equal(t, 3, store.GetInt("sync.workers"))
	assert.Equal(t, []string{"7d", "28d"}, store.GetStringSlice("sync.periods"))
	assert.False(t, store.GetBool("connectors.ga4.enabled"))

	// The table itself is not a value.
	_, ok := store.Get("google")
	assert.False(t, ok)
}

func TestTypedGettersOnMissingAndMismatchedKeys(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("sync.interval_minutes", "soon"))

	assert.Empty(t, store.GetString("google.client_id"))
	assert.Zero(t, store.GetInt("sync.interval_minutes"))
	assert.False(t, store.GetBool("sync.enabled"))
	assert.Nil(t, store.GetStringSlice("sync.periods"))
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("= broken"), 0600))

	_, err := NewConfigStore(dir)
	require.Error(t, err)
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	_, ok := store.Get("google.client_id")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("google.client_id"))
}

func TestWatchReloadsOnFileChange(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Set("sync.enabled", false))

	require.NoError(t, store.Watch())
	defer store.Close()

	// An editor-style replace: write the whole file anew.
	content := "[sync]\nenabled = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	require.Eventually(t, func() bool {
		return store.GetBool("sync.enabled")
	}, 2*time.Second, 10*time.Millisecond, "watcher should reload the changed file")
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Set("google.client_id", "client-123"))

	require.NoError(t, store.Watch())
	defer store.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0600))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "client-123", store.GetString("google.client_id"))
}

func TestCloseWithoutWatch(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Close())
}
