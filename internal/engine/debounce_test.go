package engine

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionWriter_SupersedingSelectionReplacesSlot(t *testing.T) {
	store := newFakeStateStore()
	w := newSelectionWriter(context.Background(), store, 20*time.Millisecond)

	w.Schedule(entity.Selection{SkinID: "a", Mode: entity.ModeLight})
	w.Schedule(entity.Selection{SkinID: "b", Mode: entity.ModeDark})
	w.Schedule(entity.Selection{SkinID: "c", Mode: entity.ModeDark})

	require.Eventually(t, func() bool {
		return store.writeCount(repository.KeySelectionSkin) > 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, store.writeCount(repository.KeySelectionSkin))
	skin, _ := store.value(repository.KeySelectionSkin)
	assert.Equal(t, "c", skin)
}

func TestSelectionWriter_SeparateWindowsWriteSeparately(t *testing.T) {
	store := newFakeStateStore()
	w := newSelectionWriter(context.Background(), store, 10*time.Millisecond)

	w.Schedule(entity.Selection{SkinID: "a", Mode: entity.ModeLight})
	require.Eventually(t, func() bool {
		return store.writeCount(repository.KeySelectionSkin) == 1
	}, time.Second, 2*time.Millisecond)

	w.Schedule(entity.Selection{SkinID: "b", Mode: entity.ModeLight})
	require.Eventually(t, func() bool {
		return store.writeCount(repository.KeySelectionSkin) == 2
	}, time.Second, 2*time.Millisecond)

	skin, _ := store.value(repository.KeySelectionSkin)
	assert.Equal(t, "b", skin)
}

func TestSelectionWriter_FlushWritesImmediately(t *testing.T) {
	store := newFakeStateStore()
	w := newSelectionWriter(context.Background(), store, time.Hour)

	w.Schedule(entity.Selection{SkinID: "a", Mode: entity.ModeDark})
	w.Flush()

	skin, ok := store.value(repository.KeySelectionSkin)
	require.True(t, ok)
	assert.Equal(t, "a", skin)
	mode, _ := store.value(repository.KeySelectionMode)
	assert.Equal(t, "dark", mode)
}

func TestSelectionWriter_FlushWithoutPendingIsNoOp(t *testing.T) {
	store := newFakeStateStore()
	w := newSelectionWriter(context.Background(), store, time.Hour)

	w.Flush()

	assert.Equal(t, 0, store.writeCount(repository.KeySelectionSkin))
}
