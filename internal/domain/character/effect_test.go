package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectState_Normalize(t *testing.T) {
	permanent := &EffectState{Name: "Blessing", Duration: Turns(3), Permanent: true}
	permanent.Normalize()
	assert.Nil(t, permanent.Duration)
	assert.Equal(t, CategoryCustom, permanent.Category)

	untimed := &EffectState{Name: "Aura"}
	untimed.Normalize()
	assert.True(t, untimed.Permanent)

	timed := &EffectState{Name: "Burn", Duration: Turns(2), Category: CategoryCombat}
	timed.Normalize()
	assert.False(t, timed.Permanent)
	assert.Equal(t, 2, *timed.Duration)
}

func TestEffectTiming_ProcessDuration_AppliedOnOwnTurn(t *testing.T) {
	state := &EffectState{Name: "Burn", Duration: Turns(2)}
	state.InitializeTiming(1, "Aria", false)

	tests := []struct {
		name          string
		round         int
		turn          string
		wantRemaining int
		wantExpire    bool
	}{
		{name: "application round", round: 1, turn: "Aria", wantRemaining: 2},
		{name: "next round", round: 2, turn: "Aria", wantRemaining: 1},
		{name: "final round", round: 3, turn: "Aria", wantRemaining: 0, wantExpire: true},
		{name: "other character never expires it", round: 3, turn: "Borin", wantRemaining: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, expire := state.ProcessDuration(tt.round, tt.turn)
			assert.Equal(t, tt.wantRemaining, remaining)
			assert.Equal(t, tt.wantExpire, expire)
		})
	}
}

func TestEffectTiming_ProcessDuration_AppliedBeforeOwnTurn(t *testing.T) {
	state := &EffectState{Name: "Burn", Duration: Turns(2)}
	state.InitializeTiming(1, "Aria", true)

	remaining, expire := state.ProcessDuration(1, "Aria")
	assert.Equal(t, 1, remaining)
	assert.False(t, expire)

	remaining, expire = state.ProcessDuration(2, "Aria")
	assert.Equal(t, 0, remaining)
	assert.True(t, expire)
}

func TestEffectState_IsExpired(t *testing.T) {
	state := &EffectState{Name: "Burn", Duration: Turns(2)}
	assert.False(t, state.IsExpired(), "no timing yet")

	state.InitializeTiming(1, "Aria", false)
	assert.False(t, state.IsExpired())

	*state.Timing.Duration = 0
	assert.True(t, state.IsExpired())

	state.InitializeTiming(4, "Aria", false)
	assert.False(t, state.IsExpired(), "restarting timing restores duration")

	state.MarkedForExpiry = true
	assert.True(t, state.IsExpired())

	state.HandlesOwnExpiry = true
	assert.False(t, state.IsExpired())

	permanent := &EffectState{Name: "Aura", Permanent: true}
	permanent.InitializeTiming(1, "Aria", false)
	assert.Nil(t, permanent.Timing)
	assert.False(t, permanent.IsExpired())
}

func TestEffectState_Remaining(t *testing.T) {
	state := &EffectState{Name: "Burn", Duration: Turns(3)}
	assert.Equal(t, -1, state.Remaining(1))

	state.InitializeTiming(2, "Aria", false)
	require.NotNil(t, state.Timing)
	assert.Equal(t, 3, state.Remaining(2))
	assert.Equal(t, 1, state.Remaining(4))
	assert.Equal(t, 0, state.Remaining(9))
}
