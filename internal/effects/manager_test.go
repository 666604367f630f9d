package effects

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/initiative-bot/internal/damage"
	"github.com/KirkDiggler/initiative-bot/internal/dice"
	mockdice "github.com/KirkDiggler/initiative-bot/internal/dice/mock"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/uuid"
)

var errHookFailed = errors.New("hook failed")

// countingEffect records how often OnExpire runs.
type countingEffect struct {
	Base
	expires int
}

func newCountingEffect(duration int) *countingEffect {
	return &countingEffect{Base: newBase(TypeCustom, "Counter", character.CategoryCustom, character.Turns(duration))}
}

func (e *countingEffect) OnExpire(ctx context.Context, c *character.Character) (string, error) {
	e.expires++
	return e.Base.OnExpire(ctx, c)
}

// failingEffect fails every turn start.
type failingEffect struct {
	Base
}

func (e *failingEffect) OnTurnStart(_ context.Context, c *character.Character, _ int, turn string) ([]string, error) {
	if c.Name != turn {
		return nil, nil
	}
	return []string{"should never be shown"}, errHookFailed
}

// roundWatcher records the round marker its owner carries in each phase.
type roundWatcher struct {
	Base
	seen []*int
}

func (e *roundWatcher) OnTurnStart(_ context.Context, c *character.Character, _ int, _ string) ([]string, error) {
	e.seen = append(e.seen, c.RoundNumber)
	return nil, nil
}

func (e *roundWatcher) OnTurnEnd(_ context.Context, c *character.Character, _ int, _ string) ([]string, error) {
	e.seen = append(e.seen, c.RoundNumber)
	return nil, nil
}

type ManagerTestSuite struct {
	suite.Suite
	ctx      context.Context
	roller   *mockdice.ManualMockRoller
	registry *Registry
	manager  *Manager
	hero     *character.Character
}

func (s *ManagerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.roller = mockdice.NewManualMockRoller()
	s.registry = NewRegistry(&Env{
		Dice: dice.NewCalculator(&dice.CalculatorConfig{Roller: s.roller}),
		IDs:  uuid.NewSequenceGenerator("effect"),
	})
	s.manager = NewManager(s.registry, nil)
	s.hero = character.New("Hero", character.NewStats(nil), 20, 10, 14)
}

func (s *ManagerTestSuite) apply(e character.Effect, round int, opts ...ApplyOption) string {
	msg, err := s.manager.ApplyEffect(s.ctx, s.hero, e, round, opts...)
	s.Require().NoError(err)
	return msg
}

func (s *ManagerTestSuite) TestBurnRunsItsFullDuration() {
	s.roller.SetRolls([]int{3, 5})
	burn := NewBurn("1d6", character.Turns(2))

	msg := s.apply(burn, 1)
	s.Contains(msg, "Hero is burning")
	s.NotEmpty(burn.ID)

	// Round 1, applied during Hero's own turn
	out := s.manager.ProcessTurnEnd(s.ctx, s.hero, 1, "Hero")
	s.Require().Len(out.EndMessages, 1)
	s.Contains(out.EndMessages[0], "Burn continues")
	s.Contains(out.EndMessages[0], "2 turns remaining")

	// Round 2
	out = s.manager.ProcessTurnStart(s.ctx, s.hero, 2, "Hero")
	s.Require().Len(out.StartMessages, 1)
	s.Contains(out.StartMessages[0], "Hero takes 3 fire damage from burn")
	s.Contains(out.StartMessages[0], "1 turn remaining")
	s.Equal(17, s.hero.Resources.CurrentHP)

	out = s.manager.ProcessTurnEnd(s.ctx, s.hero, 2, "Hero")
	s.Require().Len(out.EndMessages, 1)
	s.Contains(out.EndMessages[0], "1 turn remaining")
	s.Len(s.hero.Effects, 1)

	// Round 3
	out = s.manager.ProcessTurnStart(s.ctx, s.hero, 3, "Hero")
	s.Require().Len(out.StartMessages, 1)
	s.Contains(out.StartMessages[0], "Hero takes 5 fire damage from burn")
	s.Contains(out.StartMessages[0], "Final turn - will expire after this turn")
	s.Equal(12, s.hero.Resources.CurrentHP)

	out = s.manager.ProcessTurnEnd(s.ctx, s.hero, 3, "Hero")
	s.Require().Len(out.EndMessages, 1)
	s.Contains(out.EndMessages[0], "Burn effect has worn off from Hero")
	s.Empty(s.hero.Effects)
	s.True(s.hero.HasPendingFeedback("Burn"))
	s.Nil(s.hero.RoundNumber)

	// Round 4 surfaces the queued notice and deals no damage
	out = s.manager.ProcessTurnStart(s.ctx, s.hero, 4, "Hero")
	s.Require().Len(out.StartMessages, 1)
	s.Contains(out.StartMessages[0], "Burn effect has worn off from Hero")
	s.Equal(12, s.hero.Resources.CurrentHP)
	s.False(s.hero.HasPendingFeedback("Burn"))
	s.Zero(s.roller.Remaining())
}

func (s *ManagerTestSuite) TestOtherCharactersTurnIsANoOp() {
	s.roller.SetRolls([]int{6})
	s.apply(NewBurn("1d6", character.Turns(2)), 1)

	out := s.manager.ProcessEffects(s.ctx, s.hero, 2, "Goblin")

	s.False(out.Skipped)
	s.Empty(out.StartMessages)
	s.Empty(out.EndMessages)
	s.Empty(out.Faults)
	s.Equal(20, s.hero.Resources.CurrentHP)
	s.Equal(1, s.roller.Remaining())
	s.Nil(s.hero.RoundNumber)
	s.Len(s.hero.Effects, 1)
}

func (s *ManagerTestSuite) TestRoundMarkerOnlyDuringPhases() {
	watcher := &roundWatcher{Base: newBase(TypeCustom, "Watcher", character.CategoryCustom, nil)}
	s.apply(watcher, 1)

	s.manager.ProcessTurnStart(s.ctx, s.hero, 2, "Hero")
	s.Nil(s.hero.RoundNumber)

	s.manager.ProcessTurnEnd(s.ctx, s.hero, 2, "Hero")
	s.Nil(s.hero.RoundNumber)

	s.Require().Len(watcher.seen, 2)
	for _, round := range watcher.seen {
		s.Require().NotNil(round)
		s.Equal(2, *round)
	}
}

func (s *ManagerTestSuite) TestExpireRunsExactlyOnce() {
	counter := newCountingEffect(1)
	s.apply(counter, 1)

	for round := 1; round <= 4; round++ {
		s.manager.ProcessEffects(s.ctx, s.hero, round, "Hero")
	}

	s.Equal(1, counter.expires)
	s.Empty(s.hero.Effects)
}

func (s *ManagerTestSuite) TestExpiryNeverBeforeDuration() {
	counter := newCountingEffect(3)
	s.apply(counter, 1)

	for round := 1; round <= 3; round++ {
		s.manager.ProcessTurnStart(s.ctx, s.hero, round, "Hero")
		s.Equal(0, counter.expires, "round %d start", round)
		s.manager.ProcessTurnEnd(s.ctx, s.hero, round, "Hero")
		if round < 3 {
			s.Equal(0, counter.expires, "round %d end", round)
		}
	}
	s.Equal(0, counter.expires)
	s.Len(s.hero.Effects, 1)

	s.manager.ProcessTurnEnd(s.ctx, s.hero, 4, "Hero")
	s.Equal(1, counter.expires)
}

func (s *ManagerTestSuite) TestBeforeOwnerTurnCountsTheCurrentRound() {
	s.apply(NewAC(2, character.Turns(1)), 1, BeforeOwnerTurn())
	s.Equal(16, s.hero.Defense.CurrentAC)

	out := s.manager.ProcessEffects(s.ctx, s.hero, 1, "Hero")

	s.Require().Len(out.EndMessages, 1)
	s.Contains(out.EndMessages[0], "AC Boost has worn off from Hero")
	s.Empty(s.hero.Effects)
	s.Equal(14, s.hero.Defense.CurrentAC)
}

func (s *ManagerTestSuite) TestAppliedOnOwnTurnLastsIntoNextRound() {
	s.apply(NewAC(2, character.Turns(1)), 1)

	s.manager.ProcessTurnEnd(s.ctx, s.hero, 1, "Hero")
	s.Len(s.hero.Effects, 1)
	s.Equal(16, s.hero.Defense.CurrentAC)

	s.manager.ProcessEffects(s.ctx, s.hero, 2, "Hero")
	s.Empty(s.hero.Effects)
	s.Equal(14, s.hero.Defense.CurrentAC)
}

func (s *ManagerTestSuite) TestFrostbiteStacksMerge() {
	s.apply(NewFrostbite(2, nil), 1)
	msg := s.apply(NewFrostbite(1, nil), 2, BeforeOwnerTurn())

	s.Contains(msg, "Hero is frozen solid!")

	var frostbites []*Frostbite
	for _, e := range s.hero.Effects {
		if f, ok := e.(*Frostbite); ok {
			frostbites = append(frostbites, f)
		}
	}
	s.Require().Len(frostbites, 1)
	s.Equal(3, frostbites[0].Stacks)
	s.Equal(2, frostbites[0].Timing.StartRound)
	s.Equal(5, s.hero.Defense.CurrentAC)
	s.Require().NotNil(s.hero.FindEffect("Skip Turn"))

	out := s.manager.ProcessTurnStart(s.ctx, s.hero, 2, "Hero")
	s.True(out.Skipped)

	s.manager.ProcessTurnEnd(s.ctx, s.hero, 2, "Hero")
	s.Nil(s.hero.FindEffect("Skip Turn"))
	s.Equal(2, frostbites[0].Stacks)
	s.Equal(14, s.hero.Defense.CurrentAC)
}

func (s *ManagerTestSuite) TestStacksCapAtThree() {
	s.apply(NewFrostbite(3, nil), 1)
	s.apply(NewFrostbite(2, nil), 1)

	f, ok := s.hero.FindEffect("Frostbite").(*Frostbite)
	s.Require().True(ok)
	s.Equal(3, f.Stacks)
	s.Len(s.hero.Effects, 2)
}

func (s *ManagerTestSuite) TestFaultIsolation() {
	s.roller.SetRolls([]int{4})
	failing := &failingEffect{Base: newBase(TypeCustom, "Cursed", character.CategoryCustom, character.Turns(3))}
	s.apply(failing, 1)
	s.apply(NewBurn("1d6", character.Turns(3)), 1)

	out := s.manager.ProcessEffects(s.ctx, s.hero, 2, "Hero")

	s.Require().Len(out.Faults, 1)
	s.Equal("Hero", out.Faults[0].Character)
	s.Equal("turn_start", out.Faults[0].Phase)
	s.Equal("Cursed", out.Faults[0].Effect)
	s.ErrorIs(out.Err(), errHookFailed)
	s.NotContains(out.StartMessages, "should never be shown")

	s.Require().Len(out.StartMessages, 1)
	s.Contains(out.StartMessages[0], "takes 4 fire damage")
	s.Equal(16, s.hero.Resources.CurrentHP)
	s.Nil(s.hero.RoundNumber)
	s.Len(s.hero.Effects, 2)
}

func (s *ManagerTestSuite) TestOutcomeErrIsNilWithoutFaults() {
	out := s.manager.ProcessEffects(s.ctx, s.hero, 1, "Hero")
	s.NoError(out.Err())
}

func (s *ManagerTestSuite) TestShockSkipsTurnWhenTriggered() {
	s.roller.SetRolls([]int{10, 4})
	s.apply(NewShock("1d6", 25, character.Turns(2)), 1)

	out := s.manager.ProcessTurnStart(s.ctx, s.hero, 2, "Hero")

	s.True(out.Skipped)
	s.Require().NotEmpty(out.StartMessages)
	s.Contains(out.StartMessages[0], "Hero is shocked for 4 electric damage!")
	s.Equal(16, s.hero.Resources.CurrentHP)

	s.manager.ProcessTurnEnd(s.ctx, s.hero, 2, "Hero")
	shock, ok := s.hero.FindEffect("Shock").(*Shock)
	s.Require().True(ok)
	s.False(shock.SkipsTurn())
}

func (s *ManagerTestSuite) TestInstantMoveIsNotKept() {
	msg := s.apply(NewMove("Jab", "", 0, 0, 0), 1)

	s.Contains(msg, "Hero uses Jab")
	s.Empty(s.hero.Effects)
}

func (s *ManagerTestSuite) TestMoveCostsAndCooldown() {
	s.hero.Resources.TakeDamage(15)
	move, err := BuildSecondWind()
	s.Require().NoError(err)

	msg := s.apply(move, 1)

	s.Contains(msg, "Hero uses Second Wind")
	s.Equal(15, s.hero.Resources.CurrentHP)
	s.Equal(4, s.hero.ActionStars.CurrentStars)
	s.Len(s.hero.Effects, 1)

	again, err := BuildSecondWind()
	s.Require().NoError(err)
	_, err = s.manager.ApplyEffect(s.ctx, s.hero, again, 1)
	s.True(dnderr.IsFailedPrecondition(err))
	s.Len(s.hero.Effects, 1)
}

func (s *ManagerTestSuite) TestRemoveEffect() {
	s.apply(NewResistance(damage.Fire, 50, character.Turns(3)), 1)
	s.Equal(50, s.hero.Defense.TotalResistance("fire"))

	text, err := s.manager.RemoveEffect(s.ctx, s.hero, "fire resistance")
	s.Require().NoError(err)
	s.Contains(text, "fire resistance expired from Hero")
	s.Zero(s.hero.Defense.TotalResistance("fire"))
	s.Empty(s.hero.Effects)

	_, err = s.manager.RemoveEffect(s.ctx, s.hero, "fire resistance")
	s.True(dnderr.IsNotFound(err))
}

func (s *ManagerTestSuite) TestClearCombatEffectsKeepsPermanent() {
	s.apply(NewBurn("1d6", character.Turns(2)), 1)
	s.apply(NewCustom("Blessed", "Glows faintly", nil), 1)
	s.apply(NewAC(-2, character.Turns(3)), 1)

	messages, err := s.manager.ClearCombatEffects(s.ctx, s.hero)
	s.Require().NoError(err)

	s.Len(messages, 2)
	s.Require().Len(s.hero.Effects, 1)
	s.Equal("Blessed", s.hero.Effects[0].State().Name)
	s.Equal(14, s.hero.Defense.CurrentAC)
}

func (s *ManagerTestSuite) TestApplyRejectsMissingInput() {
	_, err := s.manager.ApplyEffect(s.ctx, nil, NewCustom("x", "", nil), 1)
	s.True(dnderr.IsInvalidArgument(err))

	_, err = s.manager.ApplyEffect(s.ctx, s.hero, nil, 1)
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *ManagerTestSuite) TestSummary() {
	s.Equal("No active effects", Summary(s.hero))

	s.apply(NewBurn("1d6", character.Turns(2)), 1)
	s.apply(NewCondition([]ConditionType{ConditionProne}, character.Turns(1), ""), 1)

	summary := Summary(s.hero)
	s.Contains(summary, "**Combat Effects**")
	s.Contains(summary, "**Status Effects**")
	s.NotContains(summary, "**Resource Effects**")
	s.Contains(summary, "**Burn**")
	s.Contains(summary, "**Prone**")
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}
