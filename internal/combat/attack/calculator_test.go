package attack_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/initiative-bot/internal/combat/attack"
	"github.com/KirkDiggler/initiative-bot/internal/damage"
	"github.com/KirkDiggler/initiative-bot/internal/dice"
	mockdice "github.com/KirkDiggler/initiative-bot/internal/dice/mock"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	mockcharacter "github.com/KirkDiggler/initiative-bot/internal/domain/character/mock"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

type CalculatorTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	roller *mockdice.ManualMockRoller
	store  *mockcharacter.MockStore
	calc   *attack.Calculator

	hero   *character.Character
	goblin *character.Character
	orc    *character.Character
	troll  *character.Character
}

func (s *CalculatorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.roller = mockdice.NewManualMockRoller()
	s.store = mockcharacter.NewMockStore(s.ctrl)
	s.calc = attack.NewCalculator(&attack.Config{
		Dice:  dice.NewCalculator(&dice.CalculatorConfig{Roller: s.roller}),
		Store: s.store,
	})

	s.hero = character.New("Hero", character.NewStats(nil), 30, 10, 14)
	s.goblin = character.New("Goblin", character.NewStats(nil), 12, 0, 15)
	s.orc = character.New("Orc", character.NewStats(nil), 20, 0, 12)
	s.troll = character.New("Troll", character.NewStats(nil), 40, 0, 18)
}

func (s *CalculatorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestCalculatorSuite(t *testing.T) {
	suite.Run(t, new(CalculatorTestSuite))
}

func (s *CalculatorTestSuite) TestPlainRollWithoutTargets() {
	s.roller.SetRolls([]int{7})

	msg, detail, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker: s.hero,
		Roll:     "1d20",
	})

	s.Require().NoError(err)
	s.Equal("🎲 `1d20: [7] = 7`", msg)
	s.Empty(detail)
}

func (s *CalculatorTestSuite) TestSingleTargetHit() {
	s.roller.SetRolls([]int{12, 4})

	msg, _, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker: s.hero,
		Targets:  []*character.Character{s.goblin},
		Roll:     "1d20+5",
		Damage:   attack.ParseDamage("1d6 slashing"),
	})

	s.Require().NoError(err)
	s.Equal("🎲 `1d20+5: [12]+5 = 17 | ✅ **HIT!** → 🎯 Goblin AC 15 | ⚔️ 4 slashing`", msg)
	s.Equal(0, s.roller.Remaining())
}

func (s *CalculatorTestSuite) TestSingleTargetMissRollsNoDamage() {
	s.roller.SetRolls([]int{2, 6})

	msg, _, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker: s.hero,
		Targets:  []*character.Character{s.goblin},
		Roll:     "1d20+1",
		Damage:   attack.ParseDamage("1d6"),
		Reason:   "Dagger",
	})

	s.Require().NoError(err)
	s.Contains(msg, "❌ **MISS!**")
	s.Contains(msg, "📝 Dagger")
	s.Equal(1, s.roller.Remaining())
}

func (s *CalculatorTestSuite) TestCritAlwaysHitsAndDoublesDiceOnly() {
	s.goblin.Defense.CurrentAC = 30
	s.roller.SetRolls([]int{20, 3})

	msg, _, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker: s.hero,
		Targets:  []*character.Character{s.goblin},
		Roll:     "1d20",
		Damage:   attack.ParseDamage("1d6+2 fire"),
	})

	s.Require().NoError(err)
	s.Contains(msg, "💥 **CRITICAL HIT!**")
	// 3 + 2 = 5, plus the dice portion again.
	s.Contains(msg, "🔥 8 fire")
}

func (s *CalculatorTestSuite) TestCustomCritRange() {
	s.roller.SetRolls([]int{18, 1})

	msg, _, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker:  s.hero,
		Targets:   []*character.Character{s.troll},
		Roll:      "1d20",
		Damage:    attack.ParseDamage("1d4"),
		CritRange: 18,
	})

	s.Require().NoError(err)
	s.Contains(msg, "CRITICAL HIT")
	s.Contains(msg, "💥 2 generic")
}

func (s *CalculatorTestSuite) TestAoESingleSharesOneRoll() {
	s.roller.SetRolls([]int{14, 2})

	msg, _, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker: s.hero,
		Targets:  []*character.Character{s.orc, s.troll},
		Roll:     "1d20",
		Damage:   attack.ParseDamage("1d4"),
		AoE:      attack.AoESingle,
	})

	s.Require().NoError(err)
	s.Contains(msg, "🎯 Orc (✅ AC 12), Troll (❌ AC 18)")
	s.Contains(msg, "💥 2 generic each")
	s.Equal(0, s.roller.Remaining())
}

func (s *CalculatorTestSuite) TestAoEMultiRollsPerTarget() {
	s.roller.SetRolls([]int{15, 3, 10})

	msg, _, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker: s.hero,
		Targets:  []*character.Character{s.orc, s.troll},
		Roll:     "1d20+2",
		Damage:   attack.ParseDamage("1d4 fire"),
		AoE:      attack.AoEMulti,
	})

	s.Require().NoError(err)
	s.Contains(msg, "Hits: 1/2")
	s.Contains(msg, "• 🎯 Orc ✅ 17 vs AC 12 | 🔥 3 fire")
	s.Contains(msg, "• 🎯 Troll ❌ 12 vs AC 18 | MISS")
	s.Contains(msg, "Total Damage: 3")
}

func (s *CalculatorTestSuite) TestMultihitJudgesEachHit() {
	s.roller.SetRolls([]int{15, 10, 5})

	msg, detail, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker: s.hero,
		Targets:  []*character.Character{s.goblin},
		Roll:     "2d20 multihit 1",
		Damage:   attack.ParseDamage("1d6"),
	})

	s.Require().NoError(err)
	s.Contains(msg, "Hits: 1/2 → Goblin")
	s.Contains(detail, "Hit 1: 16 → ✅ HIT!")
	s.Contains(detail, "Hit 2: 11 → ❌ MISS")
	s.Contains(detail, "Total Damage: 5")
}

func (s *CalculatorTestSuite) TestMultihitWithAoEMultiIsRejected() {
	_, _, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker: s.hero,
		Targets:  []*character.Character{s.orc, s.troll},
		Roll:     "3d20 multihit 2",
		AoE:      attack.AoEMulti,
	})

	s.Require().Error(err)
	s.True(dnderr.IsValidation(err))
	s.Equal(0, s.roller.Remaining())
}

func (s *CalculatorTestSuite) TestInvalidParams() {
	testCases := []struct {
		name   string
		params *attack.Params
	}{
		{
			name:   "missing roll",
			params: &attack.Params{Attacker: s.hero},
		},
		{
			name:   "crit range too high",
			params: &attack.Params{Attacker: s.hero, Roll: "1d20", CritRange: 25},
		},
		{
			name:   "unknown aoe mode",
			params: &attack.Params{Attacker: s.hero, Roll: "1d20", AoE: "cone"},
		},
		{
			name: "unknown damage type",
			params: &attack.Params{
				Attacker: s.hero,
				Roll:     "1d20",
				Damage:   []attack.DamageRoll{{Expression: "1d6", Type: "banana"}},
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, _, err := s.calc.ProcessAttack(context.Background(), tc.params)
			s.Require().Error(err)
			s.True(dnderr.IsValidation(err), "got %v", err)
		})
	}
}

func (s *CalculatorTestSuite) TestApplyDamageThroughResolver() {
	s.goblin.Defense.NaturalResistances = map[string]int{"fire": 50}
	s.roller.SetRolls([]int{16, 8})
	s.store.EXPECT().Save(gomock.Any(), s.goblin).Return(nil)

	_, detail, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker:    s.hero,
		Targets:     []*character.Character{s.goblin},
		Roll:        "1d20",
		Damage:      attack.ParseDamage("1d8 fire"),
		ApplyDamage: true,
	})

	s.Require().NoError(err)
	s.Equal(8, s.goblin.Resources.CurrentHP)
	s.Contains(detail, "Goblin: 8 → 4 damage")
}

func (s *CalculatorTestSuite) TestApplyDamageSaveFailure() {
	s.roller.SetRolls([]int{16, 3})
	s.store.EXPECT().Save(gomock.Any(), s.goblin).Return(dnderr.Unavailable("redis down"))

	_, _, err := s.calc.ProcessAttack(context.Background(), &attack.Params{
		Attacker:    s.hero,
		Targets:     []*character.Character{s.goblin},
		Roll:        "1d20",
		Damage:      attack.ParseDamage("1d8"),
		ApplyDamage: true,
	})

	s.Require().Error(err)
	s.True(dnderr.IsUnavailable(err))
}

func TestParseDamage(t *testing.T) {
	rolls := attack.ParseDamage("2d6+str slashing, 1d4 fire,3")

	require.Len(t, rolls, 3)
	assert.Equal(t, attack.DamageRoll{Expression: "2d6+str", Type: damage.Slashing}, rolls[0])
	assert.Equal(t, attack.DamageRoll{Expression: "1d4", Type: damage.Fire}, rolls[1])
	assert.Equal(t, attack.DamageRoll{Expression: "3", Type: damage.Generic}, rolls[2])
}

func TestParseDamage_Empty(t *testing.T) {
	assert.Empty(t, attack.ParseDamage(" , "))
}
