package combat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/initiative-bot/internal/announce"
	mockannounce "github.com/KirkDiggler/initiative-bot/internal/announce/mock"
	"github.com/KirkDiggler/initiative-bot/internal/combat"
	"github.com/KirkDiggler/initiative-bot/internal/dice"
	mockdice "github.com/KirkDiggler/initiative-bot/internal/dice/mock"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	"github.com/KirkDiggler/initiative-bot/internal/effects"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/characters"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/initiative"
	mocksaves "github.com/KirkDiggler/initiative-bot/internal/repositories/initiative/mocks"
	"github.com/KirkDiggler/initiative-bot/internal/testutils"
)

type SchedulerTestSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	roller    *mockdice.ManualMockRoller
	repo      *characters.InMemoryRepository
	manager   *effects.Manager
	recorder  *announce.Recorder
	saves     *mocksaves.MockRepository
	scheduler *combat.Scheduler

	hero, goblin, wizard *character.Character
}

func (s *SchedulerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.roller = mockdice.NewManualMockRoller()
	s.repo = characters.NewInMemoryRepository()
	s.recorder = announce.NewRecorder()
	s.saves = mocksaves.NewMockRepository(s.ctrl)

	calc := dice.NewCalculator(&dice.CalculatorConfig{Roller: s.roller})
	registry := effects.NewRegistry(&effects.Env{Dice: calc, Store: s.repo})
	s.manager = effects.NewManager(registry, nil)

	var err error
	s.scheduler, err = combat.NewScheduler(&combat.Config{
		Characters: s.repo,
		Effects:    s.manager,
		Dice:       calc,
		Announcer:  s.recorder,
		Saves:      s.saves,
		CombatID:   "test-combat",
	})
	s.Require().NoError(err)

	s.hero = testutils.CreateTestCharacter("Hero", 14)
	s.goblin = testutils.CreateTestCharacter("Goblin", 12)
	s.wizard = testutils.CreateTestCharacter("Wizard", 10)
	for _, c := range []*character.Character{s.hero, s.goblin, s.wizard} {
		s.Require().NoError(s.repo.Create(s.ctx, c))
	}
}

func (s *SchedulerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

// start rolls Hero 10+2, Goblin 15+1 and Wizard 5+0: Goblin, Hero, Wizard.
func (s *SchedulerTestSuite) start() *combat.StartReport {
	s.roller.SetRolls([]int{10, 15, 5})
	report, err := s.scheduler.StartCombat(s.ctx, []string{"Hero", "goblin", "Wizard"})
	s.Require().NoError(err)
	return report
}

func (s *SchedulerTestSuite) next() *combat.TurnReport {
	report, err := s.scheduler.NextTurn(s.ctx)
	s.Require().NoError(err)
	return report
}

func (s *SchedulerTestSuite) TestStartCombatRollsInitiative() {
	report := s.start()

	s.Equal([]string{"Goblin", "Hero", "Wizard"}, s.scheduler.Order())
	s.Equal(combat.StateWaiting, s.scheduler.State())
	s.Equal(0, s.scheduler.Round())
	s.Equal("Goblin", s.scheduler.Current())

	s.Require().Len(report.Rolls, 3)
	s.Equal(combat.Roll{Name: "Goblin", Total: 16, Natural: 15, Dexterity: 1}, report.Rolls[0])
	s.Equal(12, report.Rolls[1].Total)
	s.Equal(5, report.Rolls[2].Total)

	s.Require().Len(s.recorder.Batches(), 1)
	s.Contains(s.recorder.Messages()[1], "1. Goblin (16)")
}

// Wizard 12+0, Goblin 11+1 and Hero 10+2 all total 12.
func (s *SchedulerTestSuite) TestStartCombatKeepsRollOrderOnTies() {
	s.roller.SetRolls([]int{12, 11, 10})
	report, err := s.scheduler.StartCombat(s.ctx, []string{"Wizard", "Goblin", "Hero"})
	s.Require().NoError(err)

	for _, roll := range report.Rolls {
		s.Equal(12, roll.Total, roll.Name)
	}
	s.Equal([]string{"Wizard", "Goblin", "Hero"}, s.scheduler.Order())
}

func (s *SchedulerTestSuite) TestStartCombatClearsCombatEffects() {
	_, err := s.manager.ApplyEffect(s.ctx, s.hero, effects.NewAC(3, character.Turns(5)), 0)
	s.Require().NoError(err)
	_, err = s.manager.ApplyEffect(s.ctx, s.hero, effects.NewCustom("Blessing", "", nil), 0)
	s.Require().NoError(err)
	s.hero.ActionStars.Use(4)
	s.Equal(17, s.hero.Defense.CurrentAC)

	report := s.start()

	s.Require().Len(s.hero.Effects, 1)
	s.Equal("Blessing", s.hero.Effects[0].State().Name)
	s.Equal(14, s.hero.Defense.CurrentAC)
	s.Equal(s.hero.ActionStars.MaxStars, s.hero.ActionStars.CurrentStars)
	s.Require().Len(report.Cleared, 1)
	s.Contains(report.Cleared[0], "AC modification expired from Hero")
}

func (s *SchedulerTestSuite) TestStartCombatValidation() {
	_, err := s.scheduler.StartCombat(s.ctx, nil)
	s.True(dnderr.IsInvalidArgument(err))

	_, err = s.scheduler.StartCombat(s.ctx, []string{"Hero", "HERO"})
	s.True(dnderr.IsInvalidArgument(err))

	_, err = s.scheduler.StartCombat(s.ctx, []string{"Hero", "Dragon"})
	s.True(dnderr.IsNotFound(err))
	s.Equal(combat.StateInactive, s.scheduler.State())

	s.start()
	_, err = s.scheduler.StartCombat(s.ctx, []string{"Hero"})
	s.True(dnderr.IsFailedPrecondition(err))
}

func (s *SchedulerTestSuite) TestRoundRollover() {
	s.start()

	report := s.next()
	s.Equal(combat.StateActive, s.scheduler.State())
	s.Equal(1, report.Round)
	s.Equal("Goblin", report.Current)
	s.True(report.NewRound)

	for _, c := range []*character.Character{s.hero, s.goblin, s.wizard} {
		c.ActionStars.Use(3)
	}

	report = s.next()
	s.Equal("Hero", report.Current)
	s.False(report.NewRound)

	report = s.next()
	s.Equal("Wizard", report.Current)
	s.Equal(2, s.hero.ActionStars.CurrentStars)

	report = s.next()
	s.Equal(2, report.Round)
	s.Equal("Goblin", report.Current)
	s.True(report.NewRound)
	for _, c := range []*character.Character{s.hero, s.goblin, s.wizard} {
		s.Equal(c.ActionStars.MaxStars, c.ActionStars.CurrentStars, c.Name)
		s.Equal(2, c.ActionStars.LastRefreshRound, c.Name)
	}

	s.hero.ActionStars.Use(1)
	s.next()
	s.Equal(s.hero.ActionStars.MaxStars-1, s.hero.ActionStars.CurrentStars)
}

func (s *SchedulerTestSuite) TestEndPhaseResolvesBeforeRollover() {
	s.start()
	_, err := s.scheduler.ApplyEffect(s.ctx, "Wizard", effects.NewAC(2, character.Turns(1)))
	s.Require().NoError(err)
	s.Equal(16, s.wizard.Defense.CurrentAC)

	s.next()
	s.next()
	s.next()
	report := s.next()

	s.Require().Len(report.Batches, 3)
	s.Equal("**Effects Update**", report.Batches[0][0])
	s.Contains(report.Batches[0][1], "AC Boost has worn off from Wizard")
	s.Contains(report.Batches[1][0], "**Round 2 Begins!**")
	s.Equal("🎯 **Goblin's Turn**", report.Batches[2][0])

	s.Empty(s.wizard.Effects)
	s.Equal(14, s.wizard.Defense.CurrentAC)
	s.Equal(report.Messages(), s.recorder.Messages()[len(s.recorder.Messages())-len(report.Messages()):])

	s.next()
	report = s.next()
	s.Equal("Wizard", report.Current)
	s.Contains(report.Messages()[1], "AC Boost has worn off from Wizard")
}

func (s *SchedulerTestSuite) TestSkippedTurnIsPassedOver() {
	s.start()
	_, err := s.scheduler.ApplyEffect(s.ctx, "Hero", effects.NewSkip(1, "Stunned"))
	s.Require().NoError(err)

	s.next()
	report := s.next()

	s.Equal([]string{"Hero"}, report.Skipped)
	s.Equal("Wizard", report.Current)
	s.Equal(1, report.Round)
	s.Empty(s.hero.Effects)
	s.Contains(report.Messages(), "⏭️ **Hero's Turn**\n╰─ Turn skipped")
	s.Contains(report.Messages(), "🎯 **Wizard's Turn**")

	s.next()
	report = s.next()
	s.Equal("Hero", report.Current)
	s.Empty(report.Skipped)
	s.Contains(report.Messages()[1], "Skip effect will wear off from Hero")
}

func (s *SchedulerTestSuite) TestApplyEffectCountsCurrentRoundBeforeOwnerTurn() {
	s.start()
	s.next()

	_, err := s.scheduler.ApplyEffect(s.ctx, "wizard", effects.NewAC(1, character.Turns(2)))
	s.Require().NoError(err)
	_, err = s.scheduler.ApplyEffect(s.ctx, "Goblin", effects.NewAC(1, character.Turns(2)))
	s.Require().NoError(err)

	s.True(s.wizard.Effects[0].State().Timing.PreTurn)
	s.False(s.goblin.Effects[0].State().Timing.PreTurn)
	s.Equal(1, s.goblin.Effects[0].State().Timing.StartRound)

	_, err = s.scheduler.ApplyEffect(s.ctx, "Dragon", effects.NewAC(1, nil))
	s.True(dnderr.IsNotFound(err))
}

func (s *SchedulerTestSuite) TestRemoveEffect() {
	_, err := s.scheduler.ApplyEffect(s.ctx, "Hero", effects.NewAC(2, nil))
	s.Require().NoError(err)

	msg, err := s.scheduler.RemoveEffect(s.ctx, "Hero", "ac boost")
	s.Require().NoError(err)
	s.Contains(msg, "AC modification expired from Hero")
	s.Empty(s.hero.Effects)

	_, err = s.scheduler.RemoveEffect(s.ctx, "Hero", "ac boost")
	s.True(dnderr.IsNotFound(err))
}

func (s *SchedulerTestSuite) TestPauseBlocksTurns() {
	err := s.scheduler.Pause(s.ctx)
	s.True(dnderr.IsFailedPrecondition(err))

	s.start()
	s.next()
	s.Require().NoError(s.scheduler.Pause(s.ctx))
	s.Equal(combat.StatePaused, s.scheduler.State())

	_, err = s.scheduler.NextTurn(s.ctx)
	s.True(dnderr.IsFailedPrecondition(err))

	s.Require().NoError(s.scheduler.Resume(s.ctx))
	s.Equal("Hero", s.next().Current)
}

func (s *SchedulerTestSuite) TestNextTurnWithoutCombat() {
	_, err := s.scheduler.NextTurn(s.ctx)
	s.True(dnderr.IsFailedPrecondition(err))
}

func (s *SchedulerTestSuite) TestAddCombatant() {
	bandit := testutils.CreateTestCharacter("Bandit", 10)
	_, err := s.manager.ApplyEffect(s.ctx, bandit, effects.NewAC(2, character.Turns(3)), 0)
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Create(s.ctx, bandit))

	s.True(dnderr.IsFailedPrecondition(s.scheduler.AddCombatant(s.ctx, "Bandit")))

	s.start()
	s.next()
	s.Require().NoError(s.scheduler.AddCombatant(s.ctx, "bandit"))

	s.Equal([]string{"Goblin", "Hero", "Wizard", "Bandit"}, s.scheduler.Order())
	s.Empty(bandit.Effects)
	s.Equal(1, bandit.ActionStars.LastRefreshRound)
	s.Contains(s.recorder.Messages(), "⚔️ `Bandit has joined the battle!` ⚔️")

	s.True(dnderr.IsAlreadyExists(s.scheduler.AddCombatant(s.ctx, "Bandit")))
}

func (s *SchedulerTestSuite) TestRemoveCombatantKeepsPointer() {
	s.start()
	s.next()
	s.next()
	s.Equal("Hero", s.scheduler.Current())

	s.Require().NoError(s.scheduler.RemoveCombatant(s.ctx, "Goblin"))
	s.Equal("Hero", s.scheduler.Current())

	s.Require().NoError(s.scheduler.RemoveCombatant(s.ctx, "hero"))
	s.Equal("Wizard", s.scheduler.Current())

	err := s.scheduler.RemoveCombatant(s.ctx, "Hero")
	s.True(dnderr.IsNotFound(err))

	s.Require().NoError(s.scheduler.RemoveCombatant(s.ctx, "Wizard"))
	s.Equal(combat.StateInactive, s.scheduler.State())
}

func (s *SchedulerTestSuite) TestRemovingLastInOrderWrapsPointer() {
	s.start()
	s.next()
	s.next()
	s.next()
	s.Equal("Wizard", s.scheduler.Current())

	s.Require().NoError(s.scheduler.RemoveCombatant(s.ctx, "Wizard"))
	s.Equal("Goblin", s.scheduler.Current())
}

func (s *SchedulerTestSuite) TestEndCombatLeavesEffects() {
	s.True(dnderr.IsFailedPrecondition(s.scheduler.EndCombat(s.ctx)))

	s.start()
	s.next()
	_, err := s.scheduler.ApplyEffect(s.ctx, "Hero", effects.NewAC(2, character.Turns(3)))
	s.Require().NoError(err)

	s.Require().NoError(s.scheduler.EndCombat(s.ctx))
	s.Equal(combat.StateInactive, s.scheduler.State())
	s.Empty(s.scheduler.Order())
	s.Equal(0, s.scheduler.Round())
	s.Len(s.hero.Effects, 1)
}

func (s *SchedulerTestSuite) TestSetBattleDoesNotTouchCharacters() {
	_, err := s.manager.ApplyEffect(s.ctx, s.goblin, effects.NewCustom("Hexed", "", character.Turns(5)), 3)
	s.Require().NoError(err)
	s.goblin.ActionStars.Use(2)

	s.Require().NoError(s.scheduler.SetBattle(s.ctx, []string{"wizard", "Goblin"}, 3, 5))
	s.Equal(combat.StateWaiting, s.scheduler.State())
	s.Equal("Goblin", s.scheduler.Current())
	s.Equal([]string{"Wizard", "Goblin"}, s.scheduler.Order())
	s.Len(s.goblin.Effects, 1)
	s.Equal(3, s.goblin.ActionStars.CurrentStars)

	report := s.next()
	s.Equal(3, report.Round)
	s.Equal("Goblin", report.Current)

	err = s.scheduler.SetBattle(s.ctx, []string{"Hero"}, 1, 0)
	s.True(dnderr.IsFailedPrecondition(err))
}

func (s *SchedulerTestSuite) TestStarsRefreshAfterRestoringEarlierRound() {
	s.start()
	for range 7 {
		s.next()
	}
	s.Equal(3, s.scheduler.Round())
	s.Require().NoError(s.scheduler.EndCombat(s.ctx))

	s.Require().NoError(s.scheduler.SetBattle(s.ctx, []string{"Goblin", "Hero", "Wizard"}, 1, 0))
	s.Equal(3, s.hero.ActionStars.LastRefreshRound)

	report := s.next()
	s.Equal(1, report.Round)
	s.Equal(s.hero.ActionStars.MaxStars, s.hero.ActionStars.CurrentStars)

	s.hero.ActionStars.Use(4)
	s.next()
	s.next()
	report = s.next()

	s.Equal(2, report.Round)
	s.True(report.NewRound)
	s.Equal(s.hero.ActionStars.MaxStars, s.hero.ActionStars.CurrentStars)
	s.Equal(2, s.hero.ActionStars.LastRefreshRound)
}

func (s *SchedulerTestSuite) TestAutosaveAfterEachTurn() {
	s.scheduler.SetAutosave(true)
	s.start()

	var saved []*initiative.Save
	s.saves.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, save *initiative.Save) error {
			saved = append(saved, save)
			return nil
		}).Times(2)

	s.next()
	s.next()

	s.Require().Len(saved, 2)
	s.Equal(initiative.AutosaveName, saved[1].Name)
	s.Equal([]string{"Goblin", "Hero", "Wizard"}, saved[1].Order)
	s.Equal(1, saved[1].CurrentTurn)
	s.Equal(1, saved[1].RoundNumber)
	s.Equal("Round 1, Hero's turn", saved[1].Description)
}

func (s *SchedulerTestSuite) TestAutosaveFailureDoesNotStopTurn() {
	s.scheduler.SetAutosave(true)
	s.start()

	s.saves.EXPECT().Save(gomock.Any(), gomock.Any()).Return(dnderr.Unavailable("redis down"))

	report := s.next()
	s.Equal("Goblin", report.Current)
}

func (s *SchedulerTestSuite) TestQuicksaveAndRestore() {
	_, err := s.scheduler.Quicksave(s.ctx)
	s.True(dnderr.IsFailedPrecondition(err))

	s.start()
	s.next()
	s.next()

	s.saves.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	save, err := s.scheduler.Quicksave(s.ctx)
	s.Require().NoError(err)
	s.Equal(initiative.QuicksaveName, save.Name)
	s.Equal(1, save.CurrentTurn)

	s.next()
	s.Require().NoError(s.scheduler.Restore(s.ctx, save))
	s.Equal(combat.StateWaiting, s.scheduler.State())
	s.Equal("Hero", s.scheduler.Current())

	report := s.next()
	s.Equal("Hero", report.Current)
	s.Equal(1, report.Round)
}

func (s *SchedulerTestSuite) TestAnnounceFailureIsReported() {
	failing := announce.Func(func(context.Context, ...string) error {
		return errors.New("discord down")
	})
	scheduler, err := combat.NewScheduler(&combat.Config{
		Characters: s.repo,
		Effects:    s.manager,
		Announcer:  failing,
	})
	s.Require().NoError(err)

	s.roller.SetRolls([]int{10, 15, 5})
	report, err := scheduler.StartCombat(s.ctx, []string{"Hero", "Goblin", "Wizard"})
	s.Error(err)
	s.NotNil(report)
	s.Equal(combat.StateWaiting, scheduler.State())
}

func (s *SchedulerTestSuite) TestTurnAdvancesWhenAnnouncingFails() {
	announcer := mockannounce.NewMockAnnouncer(s.ctrl)
	scheduler, err := combat.NewScheduler(&combat.Config{
		Characters: s.repo,
		Effects:    s.manager,
		Announcer:  announcer,
	})
	s.Require().NoError(err)

	gomock.InOrder(
		announcer.EXPECT().Announce(gomock.Any(), gomock.Any()).Return(nil),
		announcer.EXPECT().Announce(gomock.Any(), gomock.Any()).Return(errors.New("rate limited")),
	)

	s.roller.SetRolls([]int{10, 15, 5})
	_, err = scheduler.StartCombat(s.ctx, []string{"Hero", "Goblin", "Wizard"})
	s.Require().NoError(err)

	report, err := scheduler.NextTurn(s.ctx)
	s.Error(err)
	s.Require().NotNil(report)
	s.Equal("Goblin", report.Current)
	s.Equal(combat.StateActive, scheduler.State())
	s.Equal(1, scheduler.Round())
}

func TestNewSchedulerValidation(t *testing.T) {
	_, err := combat.NewScheduler(nil)
	if !dnderr.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	_, err = combat.NewScheduler(&combat.Config{})
	if !dnderr.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
