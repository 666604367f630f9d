package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/dice"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

// RollModifier changes its owner's dice rolls, either for a duration or
// for the next roll only.
type RollModifier struct {
	Base
	Kind         dice.ModifierKind `json:"modifier_type"`
	Value        int               `json:"value"`
	NextRollOnly bool              `json:"next_roll_only,omitempty"`
	Used         bool              `json:"used,omitempty"`
}

func NewRollModifier(name string, kind dice.ModifierKind, value int, duration *int, nextRollOnly bool) *RollModifier {
	r := &RollModifier{
		Base:         newBase(TypeRollModifier, name, character.CategoryStatus, duration),
		Kind:         kind,
		Value:        value,
		NextRollOnly: nextRollOnly,
	}
	r.Emoji = r.kindEmoji()
	return r
}

func (r *RollModifier) kindEmoji() string {
	switch r.Kind {
	case dice.ModifierBonus:
		if r.Value < 0 {
			return "⚠️"
		}
		return "🎲"
	case dice.ModifierAdvantage:
		return "🎯"
	case dice.ModifierDisadvantage:
		return "🎪"
	}
	return "✨"
}

func (r *RollModifier) RollModifierKind() dice.ModifierKind { return r.Kind }
func (r *RollModifier) RollModifierValue() int              { return r.Value }

func (r *RollModifier) RollModifierActive() bool {
	return !r.MarkedForExpiry && !(r.NextRollOnly && r.Used)
}

func (r *RollModifier) ConsumeRoll() {
	if r.NextRollOnly {
		r.Used = true
	}
}

func (r *RollModifier) IsExpired() bool {
	return (r.NextRollOnly && r.Used) || r.EffectState.IsExpired()
}

func (r *RollModifier) modText() string {
	if r.Kind == dice.ModifierBonus {
		return signed(r.Value)
	}
	if r.Value > 1 {
		return fmt.Sprintf("%s %d", r.Kind, r.Value)
	}
	return string(r.Kind)
}

func (r *RollModifier) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	var when string
	switch {
	case r.NextRollOnly:
		when = " on next roll"
	case r.Permanent:
		when = " permanently"
	case r.Duration != nil:
		when = " for " + plural(*r.Duration, "turn")
	}
	return r.format(fmt.Sprintf("%s gains %s to rolls%s", c.Name, r.modText(), when), nil, ""), nil
}

func (r *RollModifier) OnTurnStart(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	if c.Name != turn {
		return nil, nil
	}
	if r.NextRollOnly {
		if r.Used {
			return nil, nil
		}
		return []string{r.format(r.Name+" active", []string{
			r.modText() + " will apply to next roll",
			"Will expire after use",
		}, "")}, nil
	}
	if r.Permanent {
		return nil, nil
	}
	if remaining, _ := r.ProcessDuration(round, turn); remaining > 0 {
		return []string{r.format(r.Name+" active", []string{
			r.modText() + " to all rolls",
			turnsRemaining(remaining),
		}, "")}, nil
	}
	return nil, nil
}

func (r *RollModifier) OnTurnEnd(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	if c.Name != turn {
		return nil, nil
	}
	if r.NextRollOnly && r.Used {
		if r.ExpiryMessageSent {
			return nil, nil
		}
		r.ExpiryMessageSent = true
		return []string{r.format(r.Name+" consumed", []string{"Effect used on a roll this turn"}, "")}, nil
	}
	if r.NextRollOnly {
		// Next-roll modifiers with a duration still run out.
		if _, expire := r.ProcessDuration(round, turn); expire && !r.ExpiryMessageSent {
			return []string{r.expireNow(c, round, r.Name+" expired without being used", "")}, nil
		}
		return nil, nil
	}
	return r.tickDuration(c, round, turn, fmt.Sprintf("%s has expired from %s", r.Name, c.Name), ""), nil
}

func (r *RollModifier) OnExpire(_ context.Context, c *character.Character) (string, error) {
	switch {
	case r.ExpiryMessageSent && r.Used:
		return "", nil
	case r.NextRollOnly && r.Used:
		return r.format(r.Name+" effect consumed", nil, ""), nil
	case r.NextRollOnly:
		return r.format(r.Name+" expired without being used", nil, ""), nil
	}
	return r.format(fmt.Sprintf("%s has expired from %s", r.Name, c.Name), nil, ""), nil
}

func (r *RollModifier) StatusText(c *character.Character) string {
	lines := []string{fmt.Sprintf("%s **%s**", r.kindEmoji(), r.Name)}
	if r.NextRollOnly {
		lines = append(lines, fmt.Sprintf("• `%s on next roll`", r.modText()))
		if r.Used {
			lines = append(lines, "• `Used`")
		}
	} else {
		lines = append(lines, fmt.Sprintf("• `%s to all rolls`", r.modText()))
	}
	lines = append(lines, bullets(r.Description)...)
	lines = append(lines, r.durationStatus(c)...)
	return strings.Join(lines, "\n")
}
