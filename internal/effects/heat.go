package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/damage"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

const (
	maxHeatStacks          = 3
	heatACPriority         = 50
	heatFireVulnerability  = 50
	defaultHeatDuration    = 3
	heatVulnerabilityLabel = "Vulnerable to fire"
)

// Heat lowers AC by one per stack. At full heat the owner also becomes
// vulnerable to fire.
type Heat struct {
	Base
	Source string `json:"source,omitempty"`
	Stacks int    `json:"stacks"`
	// Vulnerable records that the fire vulnerability was added, so expiry
	// takes back exactly what was given.
	Vulnerable bool `json:"vulnerable,omitempty"`
}

func NewHeat(source string, stacks int, duration *int) *Heat {
	if duration == nil {
		duration = character.Turns(defaultHeatDuration)
	}
	h := &Heat{
		Base:   newBase(TypeHeat, "Heat", character.CategoryCombat, duration),
		Source: source,
		Stacks: min(maxHeatStacks, max(0, stacks)),
	}
	h.Emoji = "🔥"
	return h
}

func (h *Heat) modifierID() string {
	return "heat_ac_" + h.Source
}

func (h *Heat) StackCount() int {
	return h.Stacks
}

func (h *Heat) details() []string {
	details := []string{fmt.Sprintf("AC reduced by %d", h.Stacks)}
	if h.Stacks >= maxHeatStacks {
		details = append(details, heatVulnerabilityLabel)
	}
	return details
}

// sync pushes the current stack count onto the character.
func (h *Heat) sync(c *character.Character) bool {
	c.Defense.ModifyAC(h.modifierID(), -h.Stacks, heatACPriority)
	if h.Stacks >= maxHeatStacks && !h.Vulnerable {
		c.Defense.AddVulnerability(string(damage.Fire), heatFireVulnerability)
		h.Vulnerable = true
		return true
	}
	return false
}

func (h *Heat) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	maxed := h.sync(c)

	messages := []string{h.format(fmt.Sprintf("Heat effect on %s (%d/%d)", c.Name, h.Stacks, maxHeatStacks), h.details()[:1], "")}
	if maxed {
		messages = append(messages, h.format("Maximum heat reached!", []string{"Now vulnerable to fire damage"}, ""))
	}
	return strings.Join(messages, "\n"), nil
}

func (h *Heat) AddStacks(_ context.Context, c *character.Character, amount int) (string, error) {
	h.Stacks = min(maxHeatStacks, max(0, h.Stacks+amount))
	if h.sync(c) {
		return h.format(c.Name+" burning up!", []string{
			fmt.Sprintf("Heat Level %d/%d", h.Stacks, maxHeatStacks),
			fmt.Sprintf("AC reduced by %d", h.Stacks),
			"Now vulnerable to fire",
		}, ""), nil
	}
	return h.format(c.Name+"'s heat increases", []string{
		fmt.Sprintf("Level %d/%d", h.Stacks, maxHeatStacks),
		fmt.Sprintf("AC reduced by %d", h.Stacks),
	}, ""), nil
}

func (h *Heat) OnTurnStart(_ context.Context, c *character.Character, _ int, turn string) ([]string, error) {
	if c.Name != turn {
		return nil, nil
	}
	return []string{h.format(fmt.Sprintf("Heat Level: %d/%d", h.Stacks, maxHeatStacks), h.details(), "")}, nil
}

func (h *Heat) OnTurnEnd(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	if c.Name != turn || h.Permanent {
		return nil, nil
	}

	remaining, expire := h.ProcessDuration(round, turn)
	switch {
	case expire:
		if h.ExpiryMessageSent {
			return nil, nil
		}
		return []string{h.expireNow(c, round, fmt.Sprintf("Heat effect has worn off from %s", c.Name), "")}, nil
	case remaining > 0:
		details := append([]string{turnsRemaining(remaining)}, h.details()...)
		return []string{h.format(fmt.Sprintf("Heat Level: %d/%d", h.Stacks, maxHeatStacks), details, "")}, nil
	}
	return nil, nil
}

func (h *Heat) OnExpire(_ context.Context, c *character.Character) (string, error) {
	c.Defense.RemoveACModifier(h.modifierID())
	if h.Vulnerable {
		c.Defense.AddVulnerability(string(damage.Fire), -heatFireVulnerability)
		h.Vulnerable = false
	}
	return h.format(fmt.Sprintf("Heat effect has worn off from %s", c.Name), nil, ""), nil
}

func (h *Heat) StatusText(c *character.Character) string {
	lines := []string{fmt.Sprintf("🔥 **Heat (%d/%d)**", h.Stacks, maxHeatStacks)}
	for _, detail := range h.details() {
		lines = append(lines, fmt.Sprintf("• `%s`", detail))
	}
	if h.Source != "" {
		lines = append(lines, fmt.Sprintf("• `Source: %s`", h.Source))
	}
	lines = append(lines, h.durationStatus(c)...)
	return strings.Join(lines, "\n")
}
