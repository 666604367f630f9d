package characters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

func TestInMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	hero := character.New("Hero", character.NewStats(nil), 20, 5, 12)

	require.NoError(t, repo.Create(ctx, hero))

	t.Run("create rejects duplicates", func(t *testing.T) {
		err := repo.Create(ctx, character.New("hero", character.NewStats(nil), 10, 0, 10))
		assert.True(t, dnderr.IsAlreadyExists(err))
	})

	t.Run("get returns the live character", func(t *testing.T) {
		loaded, err := repo.Get(ctx, "HERO")
		require.NoError(t, err)
		assert.Same(t, hero, loaded)
	})

	t.Run("save replaces", func(t *testing.T) {
		replacement := character.New("Hero", character.NewStats(nil), 40, 5, 12)
		require.NoError(t, repo.Save(ctx, replacement))

		loaded, err := repo.Get(ctx, "Hero")
		require.NoError(t, err)
		assert.Equal(t, 40, loaded.Resources.MaxHP)
	})

	t.Run("list is sorted", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, character.New("Bandit", character.NewStats(nil), 8, 0, 11)))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Bandit", list[0].Name)
		assert.Equal(t, "Hero", list[1].Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "bandit"))
		assert.True(t, dnderr.IsNotFound(repo.Delete(ctx, "bandit")))

		_, err := repo.Get(ctx, "Bandit")
		assert.True(t, dnderr.IsNotFound(err))
	})

	t.Run("validation", func(t *testing.T) {
		assert.True(t, dnderr.IsInvalidArgument(repo.Save(ctx, nil)))
		_, err := repo.Get(ctx, " ")
		assert.True(t, dnderr.IsInvalidArgument(err))
	})
}
