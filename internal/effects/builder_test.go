package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

func TestMoveBuilder(t *testing.T) {
	t.Run("creates a multi-phase move", func(t *testing.T) {
		move, err := NewMoveBuilder("Flame Shield").
			WithDescription("Wreathed in flame; Melee attackers take fire damage").
			WithCastTime(1).
			WithDuration(3).
			WithCooldown(2).
			WithCosts(1, 4, 0).
			WithCastDescription("channels").
			Build()
		require.NoError(t, err)

		assert.Equal(t, "Flame Shield", move.Name)
		assert.Equal(t, MoveCasting, move.Stage)
		assert.Equal(t, 1, move.Phases[MoveCasting].Duration)
		assert.Equal(t, 3, move.Phases[MoveActive].Duration)
		assert.Equal(t, 2, move.Phases[MoveCooldown].Duration)
		assert.Equal(t, 1, move.StarCost)
		assert.Equal(t, 4, move.MPCost)
		assert.Equal(t, "channels", move.CastDescription)
		assert.Equal(t, RollActive, move.RollTiming)
		assert.Equal(t, 6, move.totalRounds())
		assert.True(t, move.HandlesOwnExpiry)
	})

	t.Run("move without phases is instant", func(t *testing.T) {
		move, err := NewMoveBuilder("Quick Strike").
			WithAttack("1d20+str", "1d8+str slashing", 0).
			Build()
		require.NoError(t, err)

		assert.Equal(t, MoveInstant, move.Stage)
		assert.Equal(t, RollInstant, move.RollTiming)
		assert.Equal(t, 20, move.CritRange)
		assert.True(t, move.IsExpired())
	})

	t.Run("uses are tracked", func(t *testing.T) {
		move, err := NewMoveBuilder("Action Surge").WithUses(2).Build()
		require.NoError(t, err)
		require.NotNil(t, move.UsesRemaining)
		assert.Equal(t, 2, *move.UsesRemaining)

		*move.UsesRemaining = 0
		usable, reason := move.CanUse()
		assert.False(t, usable)
		assert.Equal(t, "No uses remaining", reason)
	})
}

func TestMoveBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		builder *MoveBuilder
	}{
		{name: "missing name", builder: NewMoveBuilder("  ")},
		{name: "negative cast time", builder: NewMoveBuilder("x").WithCastTime(-1)},
		{name: "negative star cost", builder: NewMoveBuilder("x").WithCosts(-1, 0, 0)},
		{name: "zero uses", builder: NewMoveBuilder("x").WithUses(0)},
		{name: "crit range too high", builder: NewMoveBuilder("x").WithAttack("1d20", "", 21)},
		{name: "attack roll without dice", builder: NewMoveBuilder("x").WithAttack("5+str", "", 0)},
		{name: "unknown damage type", builder: NewMoveBuilder("x").WithAttack("1d20", "2d6 banana", 0)},
		{name: "unknown roll timing", builder: NewMoveBuilder("x").WithRollTiming("sometimes")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move, err := tt.builder.Build()
			require.Error(t, err)
			assert.Nil(t, move)
			assert.True(t, dnderr.IsValidation(err))
		})
	}
}

func TestCommonMoves(t *testing.T) {
	fireball, err := BuildFireball("Goblin", "Orc")
	require.NoError(t, err)
	assert.Equal(t, MoveCasting, fireball.Stage)
	assert.Equal(t, RollInstant, fireball.RollTiming)
	assert.Equal(t, []string{"Goblin", "Orc"}, fireball.Targets)

	secondWind, err := BuildSecondWind()
	require.NoError(t, err)
	assert.Equal(t, -10, secondWind.HPCost)
	assert.Equal(t, MoveCooldown, secondWind.Stage)
}
