package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superpet/superpet-api/internal/repositories/storage"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	_, ok, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "a:characters", "1"))
	require.NoError(t, store.Save(ctx, "a:inventory", "2"))
	require.NoError(t, store.Save(ctx, "b:inventory", "3"))
	assert.Equal(t, []string{"a:characters", "a:inventory"}, store.Keys("a:"))

	require.NoError(t, store.Remove(ctx, "a:inventory"))
	assert.Equal(t, []string{"a:characters"}, store.Keys("a:"))
}

func TestClearGameData(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	for _, key := range []string{
		storage.KeyCharacters, storage.KeyActiveCharacter, storage.KeyInventory, storage.KeyMissionDate,
	} {
		require.NoError(t, store.Save(ctx, storage.PlayerKey("p1", key), "x"))
	}
	require.NoError(t, store.Save(ctx, storage.PlayerKey("p2", storage.KeyCharacters), "x"))

	require.NoError(t, storage.ClearGameData(ctx, store, "p1"))

	assert.Equal(t, []string{"p1:mission-date"}, store.Keys("p1:"))
	assert.Equal(t, []string{"p2:characters"}, store.Keys("p2:"))
}

func TestPlayerKey(t *testing.T) {
	assert.Equal(t, "p1:inventory", storage.PlayerKey("p1", storage.KeyInventory))
	assert.Equal(t, "superpet_v4_", storage.VersionPrefix(storage.DefaultVersion))
}
