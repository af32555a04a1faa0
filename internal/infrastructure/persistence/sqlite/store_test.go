package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "lacquer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_EmptyPathRejected(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestSkinRecords_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	record := entity.SkinRecord{
		ID:         "ocean",
		OriginURL:  "https://example.com/ocean.json",
		RawVars:    []byte(`{"id":"ocean"}`),
		Installed:  true,
		InsertedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Put(ctx, record))

	got, err := store.Get(ctx, "ocean")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, record.OriginURL, got.OriginURL)
	assert.Equal(t, record.RawVars, got.RawVars)
	assert.True(t, got.Installed)
}

func TestSkinRecords_GetMissingReturnsNilNil(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSkinRecords_PutReplacesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, entity.SkinRecord{ID: "ocean", RawVars: []byte("v1")}))
	require.NoError(t, store.Put(ctx, entity.SkinRecord{ID: "ocean", RawVars: []byte("v2"), Installed: true}))

	got, err := store.Get(ctx, "ocean")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte("v2"), got.RawVars)
	assert.True(t, got.Installed)

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSkinRecords_DeleteIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, entity.SkinRecord{ID: "ocean", RawVars: []byte("{}")}))
	require.NoError(t, store.Delete(ctx, "ocean"))
	require.NoError(t, store.Delete(ctx, "ocean"))

	got, err := store.Get(ctx, "ocean")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEngineState_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, ok, err := store.GetValue(ctx, "lacquer.selection.skin")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetValue(ctx, "lacquer.selection.skin", "nord"))
	require.NoError(t, store.SetValue(ctx, "lacquer.selection.skin", "gruvbox"))

	value, ok, err := store.GetValue(ctx, "lacquer.selection.skin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "gruvbox", value)

	require.NoError(t, store.DeleteValue(ctx, "lacquer.selection.skin"))
	_, ok, err = store.GetValue(ctx, "lacquer.selection.skin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lacquer.db")
	ctx := context.Background()

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, entity.SkinRecord{ID: "ocean", RawVars: []byte("{}"), Installed: true}))
	require.NoError(t, store.SetValue(ctx, "k", "v"))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "ocean")
	require.NoError(t, err)
	require.NotNil(t, got)
	value, ok, err := reopened.GetValue(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", value)
}
