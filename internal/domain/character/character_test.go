package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCharacter() *Character {
	return New("Aria", NewStats(map[StatType]int{
		StatStrength:  16,
		StatDexterity: 7,
	}), 20, 10, 12)
}

func TestStats_Modifier(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  int
	}{
		{name: "average", score: 10, want: 0},
		{name: "odd rounds down", score: 11, want: 0},
		{name: "high", score: 16, want: 3},
		{name: "low rounds toward negative", score: 7, want: -2},
		{name: "floor", score: 1, want: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := NewStats(map[StatType]int{StatWisdom: tt.score})
			assert.Equal(t, tt.want, stats.Modifier(StatWisdom))
		})
	}
}

func TestParseStat(t *testing.T) {
	stat, ok := ParseStat("DEX")
	require.True(t, ok)
	assert.Equal(t, StatDexterity, stat)

	stat, ok = ParseStat("charisma")
	require.True(t, ok)
	assert.Equal(t, StatCharisma, stat)

	_, ok = ParseStat("luck")
	assert.False(t, ok)
}

func TestCharacter_New(t *testing.T) {
	c := newTestCharacter()

	assert.Equal(t, 20, c.Resources.CurrentHP)
	assert.Equal(t, 10, c.Resources.CurrentMP)
	assert.Equal(t, 12, c.Defense.CurrentAC)
	assert.Equal(t, DefaultMaxStars, c.ActionStars.CurrentStars)
	assert.Equal(t, 3, c.StatModifier(StatStrength))
	assert.Equal(t, -2, c.StatModifier(StatDexterity))
}

func TestCharacter_ConditionTagsAreRefCounted(t *testing.T) {
	c := newTestCharacter()

	c.AddConditionTags("prone", "restrained")
	c.AddConditionTags("prone")
	c.RemoveConditionTags("prone", "restrained")

	assert.True(t, c.HasConditionTag("prone"))
	assert.False(t, c.HasConditionTag("restrained"))

	c.RemoveConditionTags("prone")
	assert.False(t, c.HasConditionTag("prone"))
	assert.Empty(t, c.ConditionTags)
}

func TestCharacter_RoundNumber(t *testing.T) {
	c := newTestCharacter()
	assert.Nil(t, c.RoundNumber)

	c.SetRoundNumber(3)
	require.NotNil(t, c.RoundNumber)
	assert.Equal(t, 3, *c.RoundNumber)

	c.ClearRoundNumber()
	assert.Nil(t, c.RoundNumber)
}

func TestCharacter_ResetCombatState(t *testing.T) {
	c := newTestCharacter()
	c.ActionStars.Use(3)
	c.ActionStars.StartCooldown("Fireball", 2)
	c.Resources.AddTempHP(5)
	c.Defense.AddResistance("fire", 50)
	c.Defense.ModifyAC("effect-1", 2, 0)

	c.ResetCombatState()

	assert.Equal(t, DefaultMaxStars, c.ActionStars.CurrentStars)
	assert.Empty(t, c.ActionStars.Cooldowns)
	assert.Zero(t, c.Resources.CurrentTempHP)
	assert.Zero(t, c.Defense.TotalResistance("fire"))
	assert.Equal(t, 12, c.Defense.CurrentAC)
}

func TestResources_DamageAndHealing(t *testing.T) {
	r := NewResources(20, 10)

	assert.Equal(t, 15, r.TakeDamage(15))
	assert.Equal(t, 5, r.TakeDamage(9))
	assert.Equal(t, 0, r.CurrentHP, "HP never drops below zero")

	assert.Equal(t, 20, r.Heal(50))
	assert.Equal(t, 20, r.CurrentHP)
	assert.Zero(t, r.Heal(1))

	assert.Equal(t, 10, r.SpendMP(12))
	assert.Equal(t, 4, r.RestoreMP(4))
}

func TestResources_TempHP(t *testing.T) {
	r := NewResources(20, 0)
	r.AddTempHP(5)
	r.AddTempHP(10)
	assert.Equal(t, 15, r.CurrentTempHP)

	absorbed, rest := r.AbsorbTempHP(12)
	assert.Equal(t, 12, absorbed)
	assert.Zero(t, rest)
	assert.Equal(t, 3, r.CurrentTempHP)

	absorbed, rest = r.AbsorbTempHP(7)
	assert.Equal(t, 3, absorbed)
	assert.Equal(t, 4, rest)
	assert.Zero(t, r.MaxTempHP)
}

func TestDefense_ACModifiersByPriority(t *testing.T) {
	d := NewDefense(14)

	assert.Equal(t, 16, d.ModifyAC("boost", 2, 0))
	assert.Equal(t, 13, d.ModifyAC("heat", -3, 50))
	assert.Equal(t, 11, d.RemoveACModifier("boost"))
	assert.Equal(t, 14, d.RemoveACModifier("heat"))
	assert.Equal(t, 14, d.RemoveACModifier("missing"))
}

func TestDefense_ResistanceIsAdditiveAndUncapped(t *testing.T) {
	d := NewDefense(10)
	d.NaturalResistances = map[string]int{"fire": 40}
	d.AddResistance("fire", 50)
	d.AddResistance("fire", 30)
	d.AddVulnerability("fire", 10)

	assert.Equal(t, 120, d.TotalResistance("fire"))
	assert.Equal(t, 10, d.TotalVulnerability("fire"))

	d.AddResistance("fire", -80)
	assert.Equal(t, 40, d.TotalResistance("fire"))
	assert.NotContains(t, d.DamageResistances, "fire")
}

func TestActionStars_RefreshOncePerRound(t *testing.T) {
	a := NewActionStars(0)
	assert.Equal(t, DefaultMaxStars, a.MaxStars)

	a.Use(4)
	a.StartCooldown("Dash", 2)

	ok, reason := a.CanUse(1, "Dash")
	assert.False(t, ok)
	assert.Contains(t, reason, "cooldown")

	require.True(t, a.Refresh(2))
	assert.Equal(t, DefaultMaxStars, a.CurrentStars)
	assert.Equal(t, 1, a.Cooldowns["Dash"])

	a.Use(2)
	assert.False(t, a.Refresh(2), "same round refreshes only once")
	assert.Equal(t, 3, a.CurrentStars)

	require.True(t, a.Refresh(3))
	ok, _ = a.CanUse(5, "Dash")
	assert.True(t, ok)

	ok, reason = a.CanUse(6, "")
	assert.False(t, ok)
	assert.Equal(t, "Not enough stars (5/6)", reason)
}

func TestActionStars_RefreshAfterRestoringEarlierRound(t *testing.T) {
	a := NewActionStars(0)
	require.True(t, a.Refresh(3))

	a.Use(4)
	require.True(t, a.Refresh(1), "an earlier round refreshes after a restore")
	assert.Equal(t, DefaultMaxStars, a.CurrentStars)
	assert.Equal(t, 1, a.LastRefreshRound)

	a.Use(4)
	assert.False(t, a.Refresh(1))
	assert.Equal(t, 1, a.CurrentStars)

	require.True(t, a.Refresh(2))
	assert.Equal(t, DefaultMaxStars, a.CurrentStars)
}

func TestCharacter_EffectFeedback(t *testing.T) {
	c := newTestCharacter()

	c.AddEffectFeedback("Burn", "Burn effect has worn off", 3, "Aria")
	c.AddEffectFeedback("Burn", "duplicate", 3, "Aria")
	require.Len(t, c.PendingFeedback(), 1)
	assert.True(t, c.HasPendingFeedback("Burn"))

	c.MarkFeedbackDisplayed()
	assert.False(t, c.HasPendingFeedback("Burn"))
	assert.Empty(t, c.PendingFeedback())

	c.ClearOldFeedback()
	assert.Empty(t, c.EffectFeedback)
}
