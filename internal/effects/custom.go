package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

// Custom is a free-form effect with a name and a description. It has no
// mechanics of its own and only reports and counts down.
type Custom struct {
	Base
}

func NewCustom(name, description string, duration *int) *Custom {
	c := &Custom{Base: newBase(TypeCustom, name, character.CategoryCustom, duration)}
	c.Description = description
	return c
}

func (e *Custom) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	details := e.durationDetails()
	for _, part := range strings.Split(e.Description, ";") {
		if part = strings.TrimSpace(part); part != "" {
			details = append(details, part)
		}
	}
	return e.format(fmt.Sprintf("%s gains %s", c.Name, e.Name), details, ""), nil
}

func (e *Custom) OnTurnStart(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	if c.Name != turn || e.Description == "" || e.MarkedForExpiry {
		return nil, nil
	}
	details := []string{e.Description}
	if remaining := e.Remaining(round); remaining > 0 {
		details = append(details, turnsRemaining(remaining))
	}
	return []string{e.format(e.Name+" active", details, "")}, nil
}
