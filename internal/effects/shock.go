package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/damage"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

// Shock has a percentage chance at each of its owner's turn starts to deal
// damage and cost the owner that turn.
type Shock struct {
	Base
	Damage     string      `json:"damage"`
	DamageType damage.Type `json:"damage_type,omitempty"`
	Chance     int         `json:"chance"`
	Triggered  bool        `json:"triggered,omitempty"`
	LastRoll   int         `json:"last_roll,omitempty"`
}

func NewShock(damageExpr string, chance int, duration *int) *Shock {
	s := &Shock{
		Base:       newBase(TypeShock, "Shock", character.CategoryCombat, duration),
		Damage:     damageExpr,
		DamageType: damage.Electric,
		Chance:     min(100, max(0, chance)),
	}
	s.Emoji = "⚡"
	return s
}

func (s *Shock) damageType() damage.Type {
	if s.DamageType == "" {
		return damage.Electric
	}
	return s.DamageType
}

func (s *Shock) SkipsTurn() bool {
	return s.Triggered
}

func (s *Shock) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	details := []string{fmt.Sprintf("%d%% chance per turn: %s %s damage and lose the turn", s.Chance, s.Damage, s.damageType())}
	details = append(details, s.durationDetails()...)
	return s.format(c.Name+" is crackling with electricity", details, ""), nil
}

func (s *Shock) OnTurnStart(_ context.Context, c *character.Character, _ int, turn string) ([]string, error) {
	s.Triggered = false
	if c.Name != turn || s.MarkedForExpiry {
		return nil, nil
	}

	env := s.environment()
	proc, err := env.Dice.Evaluate("1d100", nil)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to roll shock chance")
	}
	s.LastRoll = proc.Total
	if proc.Total > s.Chance {
		return []string{s.format(
			c.Name+" shakes off the shock",
			[]string{fmt.Sprintf("Rolled %d vs %d%%", proc.Total, s.Chance)},
			"",
		)}, nil
	}

	roll, err := env.Dice.Evaluate(s.Damage, c)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll shock damage %q", s.Damage)
	}
	result := env.Damage.Apply(max(0, roll.Total), s.damageType(), c, nil)
	s.Triggered = true

	return []string{s.format(
		fmt.Sprintf("%s is shocked for %d %s damage!", c.Name, result.Final, s.damageType()),
		[]string{
			fmt.Sprintf("Rolled %d vs %d%%", proc.Total, s.Chance),
			fmt.Sprintf("HP: %d/%d", c.Resources.CurrentHP, c.Resources.MaxHP),
			"Turn skipped",
		},
		"",
	)}, nil
}

func (s *Shock) OnTurnEnd(ctx context.Context, c *character.Character, round int, turn string) ([]string, error) {
	if c.Name == turn {
		s.Triggered = false
	}
	return s.Base.OnTurnEnd(ctx, c, round, turn)
}

func (s *Shock) StatusText(c *character.Character) string {
	lines := []string{
		fmt.Sprintf("⚡ **%s**", s.Name),
		fmt.Sprintf("• `%d%% chance: %s %s damage + skip`", s.Chance, s.Damage, s.damageType()),
	}
	lines = append(lines, s.durationStatus(c)...)
	return strings.Join(lines, "\n")
}
