package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

// TempHP is a depletable shield consumed before regular HP.
type TempHP struct {
	Base
	Amount    int `json:"amount"`
	Remaining int `json:"remaining"`
}

func NewTempHP(amount int, duration *int) *TempHP {
	t := &TempHP{
		Base:      newBase(TypeTempHP, "Temporary HP Shield", character.CategoryResource, duration),
		Amount:    amount,
		Remaining: amount,
	}
	t.Emoji = "💟"
	return t
}

func (t *TempHP) ShieldRemaining() int {
	return t.Remaining
}

func (t *TempHP) Absorb(amount int) int {
	taken := min(max(0, amount), t.Remaining)
	t.Remaining -= taken
	return taken
}

func (t *TempHP) IsExpired() bool {
	return t.Remaining <= 0 || t.EffectState.IsExpired()
}

func (t *TempHP) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	c.Resources.AddTempHP(t.Remaining)

	msg := fmt.Sprintf("%s gained %d temporary HP shield", c.Name, t.Amount)
	if !t.Permanent && t.Duration != nil {
		msg += " for " + plural(*t.Duration, "turn")
	}
	return t.format(msg, nil, ""), nil
}

func (t *TempHP) OnExpire(_ context.Context, c *character.Character) (string, error) {
	c.Resources.RemoveTempHP(t.Remaining)
	t.Remaining = 0
	return t.format(fmt.Sprintf("%s has worn off from %s", t.Name, c.Name), nil, ""), nil
}

func (t *TempHP) StatusText(c *character.Character) string {
	lines := []string{
		fmt.Sprintf("💟 **%s**", t.Name),
		fmt.Sprintf("• `Shield: %d/%d`", t.Remaining, t.Amount),
	}
	lines = append(lines, t.durationStatus(c)...)
	return strings.Join(lines, "\n")
}
