package effects

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

const defaultHeatSourceDuration = 3

var phoenixPursuitBonuses = []string{
	"Movement Speed +5 ft",
	"DEX Score +4",
	"Quick Attack MP -2",
	"Ember Shift available",
}

// HeatSource tracks the attacker's side of heat. It builds one level per
// stack, activates Phoenix Pursuit at full heat and loses a level each
// time its window runs out before then.
type HeatSource struct {
	Base
	Stacks    int      `json:"stacks"`
	Activated bool     `json:"activated"`
	Targets   []string `json:"targets,omitempty"`
}

func NewHeatSource(target string, stacks int) *HeatSource {
	h := &HeatSource{
		Base:   newBase(TypeHeatSource, "Phoenix Pursuit", character.CategoryCombat, character.Turns(defaultHeatSourceDuration)),
		Stacks: min(maxHeatStacks, max(0, stacks)),
	}
	h.Emoji = "🔥"
	h.AddTarget(target)
	return h
}

func (h *HeatSource) StackCount() int {
	return h.Stacks
}

// AddTarget records a character this source has heated.
func (h *HeatSource) AddTarget(name string) {
	if name == "" || slices.Contains(h.Targets, name) {
		return
	}
	h.Targets = append(h.Targets, name)
	slices.Sort(h.Targets)
}

func (h *HeatSource) targetNames() []string {
	return h.Targets
}

func (h *HeatSource) level() string {
	return fmt.Sprintf("Heat Level: %d/%d", h.Stacks, maxHeatStacks)
}

func (h *HeatSource) activate(c *character.Character) string {
	h.Activated = true
	return h.format(c.Name+"'s Phoenix Pursuit activates!", []string{
		"Movement and combat abilities enhanced",
		fmt.Sprintf("Duration: %s", plural(defaultHeatSourceDuration, "turn")),
	}, "")
}

func (h *HeatSource) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	if h.Stacks >= maxHeatStacks {
		return h.activate(c), nil
	}
	return h.format("Phoenix energy builds within "+c.Name, []string{h.level()}, ""), nil
}

// AddStacks raises the heat level. The caller has already restarted the
// window, so an active pursuit is simply refreshed.
func (h *HeatSource) AddStacks(_ context.Context, c *character.Character, amount int) (string, error) {
	h.Stacks = min(maxHeatStacks, max(0, h.Stacks+amount))
	switch {
	case h.Activated:
		return h.format(c.Name+"'s Phoenix Pursuit refreshed", []string{
			fmt.Sprintf("Duration reset to %s", plural(defaultHeatSourceDuration, "turn")),
		}, ""), nil
	case h.Stacks >= maxHeatStacks:
		return h.activate(c), nil
	}
	return h.format(c.Name+"'s heat increases", []string{h.level()}, ""), nil
}

func (h *HeatSource) OnTurnStart(_ context.Context, c *character.Character, _ int, turn string) ([]string, error) {
	if c.Name != turn {
		return nil, nil
	}
	if h.Activated {
		return []string{h.format("Phoenix Pursuit Active on "+c.Name, phoenixPursuitBonuses, "")}, nil
	}
	return []string{h.format(fmt.Sprintf("Heat Attunement: %d/%d", h.Stacks, maxHeatStacks), []string{"Awaiting full attunement"}, "")}, nil
}

func (h *HeatSource) OnTurnEnd(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	if c.Name != turn || h.Permanent {
		return nil, nil
	}

	remaining, expire := h.ProcessDuration(round, turn)
	switch {
	case expire && !h.Activated && h.Stacks > 1:
		h.Stacks--
		h.InitializeTiming(round, c.Name, false)
		return []string{h.format(fmt.Sprintf("Heat Level reduced to %d/%d", h.Stacks, maxHeatStacks), []string{
			turnsRemaining(defaultHeatSourceDuration),
		}, "")}, nil
	case expire:
		if h.ExpiryMessageSent {
			return nil, nil
		}
		text := "Heat dissipates from " + c.Name
		if h.Activated {
			text = "Phoenix Pursuit fades from " + c.Name
		}
		return []string{h.expireNow(c, round, text, "")}, nil
	case remaining > 0 && h.Activated:
		return []string{h.format("Phoenix Pursuit continues", []string{turnsRemaining(remaining)}, "")}, nil
	case remaining > 0:
		return []string{h.format(h.level(), []string{plural(remaining, "turn") + " until reset"}, "")}, nil
	}
	return nil, nil
}

func (h *HeatSource) OnExpire(_ context.Context, c *character.Character) (string, error) {
	text := "Heat has dissipated from " + c.Name
	if h.Activated {
		text = "Phoenix Pursuit has worn off from " + c.Name
	}
	h.Stacks = 0
	h.Activated = false
	h.Targets = nil
	return h.format(text, nil, ""), nil
}

func (h *HeatSource) StatusText(c *character.Character) string {
	lines := []string{fmt.Sprintf("🔥 **Phoenix Pursuit (%d/%d)**", h.Stacks, maxHeatStacks)}
	if h.Activated {
		lines = append(lines, "• `Status: Active`")
		for _, bonus := range phoenixPursuitBonuses {
			lines = append(lines, fmt.Sprintf("• `%s`", bonus))
		}
	} else {
		lines = append(lines, "• `Status: Building`", "• `Awaiting full attunement`")
	}
	if len(h.Targets) > 0 {
		lines = append(lines, fmt.Sprintf("• `Targets: %s`", strings.Join(h.Targets, ", ")))
	}
	lines = append(lines, h.durationStatus(c)...)
	return strings.Join(lines, "\n")
}
