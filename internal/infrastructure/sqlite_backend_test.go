package infrastructure

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dashboard.db")

	b, err := NewSQLiteBackend(ctx, path)
	require.NoError(t, err)

	data, err := b.Load(ctx, "welcome-settings")
	require.NoError(t, err)
	assert.Nil(t, data)

	// Key order of the stored document must survive a round trip.
	doc := `{"z":{"wallet":1},"a":{"wallet":2}}`
	require.NoError(t, b.Save(ctx, "economy-records", []byte(`{}`)))
	require.NoError(t, b.Save(ctx, "economy-records", []byte(doc)))

	data, err = b.Load(ctx, "economy-records")
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
	require.NoError(t, b.Close())

	reopened, err := NewSQLiteBackend(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	data, err = reopened.Load(ctx, "economy-records")
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
}
