package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/infrastructure/persistence/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_PrefersTransactionalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(context.Background(), Options{
		DBPath:   filepath.Join(dir, "lacquer.db"),
		FilePath: filepath.Join(dir, "lacquer.json"),
	})
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.(*sqlite.Store)
	assert.True(t, ok)
}

func TestOpen_DegradesToSimpleStore(t *testing.T) {
	dir := t.TempDir()
	// A directory at the database path makes SQLite unopenable.
	dbPath := filepath.Join(dir, "blocked")
	require.NoError(t, os.MkdirAll(dbPath, 0o750))

	store, err := Open(context.Background(), Options{
		DBPath:   dbPath,
		FilePath: filepath.Join(dir, "lacquer.json"),
	})
	require.NoError(t, err)
	defer store.Close()

	// Degradation is silent; the store still round-trips everything.
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, entity.SkinRecord{ID: "ocean", RawVars: []byte("{}"), Installed: true}))
	got, err := store.Get(ctx, "ocean")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Installed)

	require.NoError(t, store.SetValue(ctx, "lacquer.selection.skin", "ocean"))
	value, ok, err := store.GetValue(ctx, "lacquer.selection.skin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ocean", value)
}

func TestOpen_TotalFailureReportsError(t *testing.T) {
	_, err := Open(context.Background(), Options{DBPath: "", FilePath: ""})
	assert.Error(t, err)
}
