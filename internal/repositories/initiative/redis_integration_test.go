//go:build integration
// +build integration

package initiative_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/initiative"
	"github.com/KirkDiggler/initiative-bot/internal/testutils"
)

func TestRedisRepository_Integration(t *testing.T) {
	client := testutils.StartRedisContainer(t)
	repo := initiative.NewRedis(&initiative.RedisConfig{Client: client})
	ctx := context.Background()

	t.Run("save load and list", func(t *testing.T) {
		err := repo.Save(ctx, &initiative.Save{
			Name:        "Boss Fight",
			Order:       []string{"Hero", "Goblin", "Dragon"},
			CurrentTurn: 2,
			RoundNumber: 5,
		})
		require.NoError(t, err)

		save, err := repo.Load(ctx, "boss fight")
		require.NoError(t, err)
		assert.Equal(t, "Dragon", save.Current())
		assert.Equal(t, 5, save.RoundNumber)

		saves, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, saves, 1)
	})

	t.Run("autosave is overwritten", func(t *testing.T) {
		for round := 1; round <= 3; round++ {
			err := repo.Save(ctx, &initiative.Save{
				Name:        initiative.AutosaveName,
				Order:       []string{"Hero"},
				RoundNumber: round,
			})
			require.NoError(t, err)
		}

		save, err := repo.Load(ctx, initiative.AutosaveName)
		require.NoError(t, err)
		assert.Equal(t, 3, save.RoundNumber)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "Boss Fight"))

		_, err := repo.Load(ctx, "Boss Fight")
		assert.True(t, dnderr.IsNotFound(err))
	})
}
