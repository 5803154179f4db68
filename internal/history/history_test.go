package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := context.Background()
	for i, name := range []string{"a.png", "b.png", "c.png"} {
		require.NoError(t, store.Record(ctx, Entry{
			Filename:  name,
			Path:      "user/" + name,
			URL:       "https://example.com/" + name,
			Size:      int64(100 * (i + 1)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c.png", entries[0].Filename)
	assert.Equal(t, "b.png", entries[1].Filename)
	assert.Equal(t, int64(300), entries[0].Size)
	assert.True(t, entries[0].CreatedAt.Equal(base.Add(2*time.Minute)))
	assert.NotEmpty(t, entries[0].ID)
}

func TestRecordDefaultsTimestamp(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fixed := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	require.NoError(t, store.Record(context.Background(), Entry{Filename: "x.png", Path: "u/x.png", URL: "u"}))

	entries, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].CreatedAt.Equal(fixed))
}

func TestRecordRejectsDuplicateID(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	e := Entry{ID: "same", Filename: "x.png", Path: "p", URL: "u"}
	require.NoError(t, store.Record(context.Background(), e))
	assert.Error(t, store.Record(context.Background(), e))
}
