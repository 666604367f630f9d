package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/initiative-bot/internal/dice"
	mockdice "github.com/KirkDiggler/initiative-bot/internal/dice/mock"
)

func TestManualMockRoller_Roll(t *testing.T) {
	tests := []struct {
		name       string
		setupRolls []int
		count      int
		sides      int
		bonus      int
		wantTotal  int
		wantCrit   bool
		wantErr    bool
	}{
		{name: "single d20", setupRolls: []int{15}, count: 1, sides: 20, wantTotal: 15},
		{name: "2d6+3", setupRolls: []int{4, 5}, count: 2, sides: 6, bonus: 3, wantTotal: 12},
		{name: "natural 20", setupRolls: []int{20}, count: 1, sides: 20, bonus: 5, wantTotal: 25, wantCrit: true},
		{name: "runs out of rolls", setupRolls: []int{10}, count: 2, sides: 6, wantErr: true},
		{name: "face larger than die", setupRolls: []int{7}, count: 1, sides: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := mockdice.NewManualMockRoller()
			roller.SetRolls(tt.setupRolls)

			result, err := roller.Roll(tt.count, tt.sides, tt.bonus)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, result.Total)
			assert.Equal(t, tt.setupRolls, result.Rolls)
			assert.Equal(t, tt.wantCrit, result.IsCrit)
		})
	}
}

func TestManualMockRoller_AdvantageAndDisadvantage(t *testing.T) {
	roller := mockdice.NewManualMockRoller(8, 15, 8, 15)

	adv, err := roller.RollWithAdvantage(20, 2)
	require.NoError(t, err)
	assert.Equal(t, 17, adv.Total)
	assert.Equal(t, []int{8, 15}, adv.Rolls)

	dis, err := roller.RollWithDisadvantage(20, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, dis.Total)
	assert.Zero(t, roller.Remaining())

	_, err = roller.Roll(1, 20, 0)
	assert.Error(t, err)
}

func TestRandomRoller_BasicFunctionality(t *testing.T) {
	roller := dice.NewRandomRoller()

	result, err := roller.Roll(2, 6, 3)
	require.NoError(t, err)
	assert.Len(t, result.Rolls, 2)
	assert.GreaterOrEqual(t, result.Total, 5)
	assert.LessOrEqual(t, result.Total, 15)

	advResult, err := roller.RollWithAdvantage(20, 2)
	require.NoError(t, err)
	assert.Len(t, advResult.Rolls, 2, "advantage should roll twice")
	assert.Equal(t, max(advResult.Rolls[0], advResult.Rolls[1])+2, advResult.Total)

	disResult, err := roller.RollWithDisadvantage(20, 2)
	require.NoError(t, err)
	assert.Equal(t, min(disResult.Rolls[0], disResult.Rolls[1])+2, disResult.Total)

	_, err = roller.Roll(0, 6, 0)
	assert.Error(t, err)
	_, err = roller.Roll(1, 0, 0)
	assert.Error(t, err)
}
