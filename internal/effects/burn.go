package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/damage"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

const burnEmoji = "🔥"

// Burn deals damage at the start of each of its owner's turns.
type Burn struct {
	Base
	Damage     string      `json:"damage"`
	DamageType damage.Type `json:"damage_type,omitempty"`
	LastDamage int         `json:"last_damage"`
	// LastDamageRound guards against burning twice in one round.
	LastDamageRound int `json:"last_damage_round,omitempty"`
}

// NewBurn creates a fire burn. A nil duration burns until removed.
func NewBurn(damageExpr string, duration *int) *Burn {
	b := &Burn{
		Base:       newBase(TypeBurn, "Burn", character.CategoryCombat, duration),
		Damage:     damageExpr,
		DamageType: damage.Fire,
	}
	b.Emoji = burnEmoji
	return b
}

func (b *Burn) damageType() damage.Type {
	if b.DamageType == "" {
		return damage.Fire
	}
	return b.DamageType
}

func (b *Burn) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	details := []string{fmt.Sprintf("Taking %s %s damage per turn", b.Damage, b.damageType())}
	if b.Permanent {
		details = append(details, "permanently")
	} else if b.Duration != nil {
		details = append(details, "for "+plural(*b.Duration, "turn"))
	}
	return b.format(c.Name+" is burning", details, ""), nil
}

func (b *Burn) OnTurnStart(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	if c.Name != turn {
		return nil, nil
	}
	if b.MarkedForExpiry || b.ExpiryMessageSent || b.LastDamageRound == round {
		return nil, nil
	}

	env := b.environment()
	roll, err := env.Dice.Evaluate(b.Damage, c)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll burn damage %q", b.Damage)
	}

	result := env.Damage.Apply(max(0, roll.Total), b.damageType(), c, nil)
	b.LastDamage = result.Final
	b.LastDamageRound = round

	var details []string
	if result.Absorbed > 0 {
		details = append(details, fmt.Sprintf("%d absorbed by temp HP", result.Absorbed))
	}
	details = append(details, fmt.Sprintf("HP: %d/%d", c.Resources.CurrentHP, c.Resources.MaxHP))

	if !b.Permanent && b.Timing != nil {
		remaining, _ := b.ProcessDuration(round, turn)
		if remaining <= 0 {
			b.WillExpireNext = true
			details = append(details, "Final turn - will expire after this turn")
		} else {
			details = append(details, turnsRemaining(remaining))
		}
	}

	msg := fmt.Sprintf("%s takes %d %s damage from %s", c.Name, result.Final, b.damageType(), strings.ToLower(b.Name))
	return []string{b.format(msg, details, "")}, nil
}

func (b *Burn) OnTurnEnd(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	return b.tickDuration(c, round, turn, fmt.Sprintf("%s effect has worn off from %s", b.Name, c.Name), ""), nil
}

func (b *Burn) OnExpire(_ context.Context, c *character.Character) (string, error) {
	if b.ExpiryMessageSent {
		return "", nil
	}
	b.ExpiryMessageSent = true
	return b.format(fmt.Sprintf("%s effect has worn off from %s", b.Name, c.Name), nil, ""), nil
}

func (b *Burn) StatusText(c *character.Character) string {
	lines := []string{fmt.Sprintf("%s **%s**", burnEmoji, b.Name)}
	lines = append(lines, fmt.Sprintf("• `Damage: %s %s per turn`", b.Damage, b.damageType()))
	if b.LastDamage > 0 {
		lines = append(lines, fmt.Sprintf("• `Last damage: %d`", b.LastDamage))
	}

	if b.Timing != nil && b.Duration != nil && c != nil && c.RoundNumber != nil && *b.Duration > 0 {
		remaining := b.Remaining(*c.RoundNumber)
		blocks := min(10, max(0, remaining*10 / *b.Duration))
		bar := strings.Repeat("█", blocks) + strings.Repeat("░", 10-blocks)
		lines = append(lines, fmt.Sprintf("• `Duration: %s (%d/%d turns)`", bar, remaining, *b.Duration))
	} else {
		lines = append(lines, b.durationStatus(c)...)
	}
	return strings.Join(lines, "\n")
}
