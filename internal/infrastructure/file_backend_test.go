package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendLoadMissing(t *testing.T) {
	b, err := NewFileBackend(t.TempDir(), LegacyFileNames)
	require.NoError(t, err)

	data, err := b.Load(context.Background(), "welcome-settings")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileBackendUsesLegacyNames(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir, LegacyFileNames)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "level-settings", []byte(`{"g1":{}}`)))
	require.NoError(t, b.Save(ctx, "custom", []byte(`{}`)))

	raw, err := os.ReadFile(filepath.Join(dir, "levelSettings.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"g1":{}}`, string(raw))
	assert.FileExists(t, filepath.Join(dir, "custom.json"))

	data, err := b.Load(ctx, "level-settings")
	require.NoError(t, err)
	assert.Equal(t, `{"g1":{}}`, string(data))
}

func TestFileBackendSaveReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir, LegacyFileNames)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "log-settings", []byte(`{"old":{}}`)))
	require.NoError(t, b.Save(ctx, "log-settings", []byte(`{"new":{}}`)))

	data, err := b.Load(ctx, "log-settings")
	require.NoError(t, err)
	assert.Equal(t, `{"new":{}}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "log.json", entries[0].Name())
}

func TestFileBackendSaveFailureKeepsPreviousContent(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir, LegacyFileNames)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, b.Save(ctx, "ticket-settings", []byte(`{"g1":{}}`)))

	// A directory in place of the target makes the final rename fail.
	require.NoError(t, os.Remove(filepath.Join(dir, "tickets.json")))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "tickets.json"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tickets.json", "keep"), []byte("x"), 0o644))

	err = b.Save(ctx, "ticket-settings", []byte(`{"g2":{}}`))
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must be cleaned up")
}
