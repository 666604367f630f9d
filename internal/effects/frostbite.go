package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

const (
	maxFrostbiteStacks       = 3
	defaultFrostbiteDuration = 2
	frozenAC                 = 5
	frozenACPriority         = 100
)

// Frostbite slows its owner per stack. At three stacks the owner is frozen
// solid: AC drops to 5 and the next turn is skipped.
type Frostbite struct {
	Base
	Stacks             int  `json:"stacks"`
	LastStackReduction int  `json:"last_stack_reduction,omitempty"`
	SkipApplied        bool `json:"skip_applied,omitempty"`
}

func NewFrostbite(stacks int, duration *int) *Frostbite {
	if duration == nil {
		duration = character.Turns(defaultFrostbiteDuration)
	}
	f := &Frostbite{
		Base:   newBase(TypeFrostbite, "Frostbite", character.CategoryStatus, duration),
		Stacks: min(maxFrostbiteStacks, max(1, stacks)),
	}
	f.Emoji = "❄️"
	return f
}

func (f *Frostbite) StackCount() int {
	return f.Stacks
}

func (f *Frostbite) modifierID() string {
	if f.ID == "" {
		f.ID = f.environment().IDs.New()
	}
	return "frostbite_ac_" + f.ID
}

func (f *Frostbite) penalties() []string {
	return []string{
		fmt.Sprintf("Movement: -%d ft", f.Stacks*5),
		fmt.Sprintf("STR/DEX Saves: -%d", f.Stacks),
	}
}

// freeze sets the frozen AC and queues one skipped turn. The skip shares
// this effect's timing anchor.
func (f *Frostbite) freeze(c *character.Character) {
	c.Defense.ModifyAC(f.modifierID(), frozenAC-c.Defense.BaseAC, frozenACPriority)
	if f.SkipApplied {
		return
	}

	env := f.environment()
	skip := NewSkip(1, "Frostbite III")
	skip.ID = env.IDs.New()
	skip.bind(env)
	if f.Timing != nil {
		skip.InitializeTiming(f.Timing.StartRound, c.Name, f.Timing.PreTurn)
	} else if c.RoundNumber != nil {
		skip.InitializeTiming(*c.RoundNumber, c.Name, false)
	}
	c.Effects = append(c.Effects, skip)
	f.SkipApplied = true
}

func (f *Frostbite) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	details := f.penalties()
	details = append(details, f.durationDetails()...)
	messages := []string{f.format(fmt.Sprintf("%s is afflicted by Frostbite %d/%d", c.Name, f.Stacks, maxFrostbiteStacks), details, "")}

	if f.Stacks >= maxFrostbiteStacks {
		f.freeze(c)
		messages = append(messages, f.format(c.Name+" is frozen solid!", []string{
			"Cannot take actions",
			fmt.Sprintf("AC reduced to %d", frozenAC),
			"Attacks have advantage",
		}, ""))
	}
	return strings.Join(messages, "\n"), nil
}

// AddStacks expects the timing to have been refreshed already so a new
// skip lands on the current round.
func (f *Frostbite) AddStacks(_ context.Context, c *character.Character, amount int) (string, error) {
	before := f.Stacks
	f.Stacks = min(maxFrostbiteStacks, max(0, f.Stacks+amount))

	if before < maxFrostbiteStacks && f.Stacks >= maxFrostbiteStacks {
		f.freeze(c)
		return f.format(c.Name+" is frozen solid!", []string{
			"Movement halted",
			fmt.Sprintf("AC reduced to %d", frozenAC),
			"Cannot take actions",
		}, ""), nil
	}
	return f.format(fmt.Sprintf("Frostbite increased to %d/%d on %s", f.Stacks, maxFrostbiteStacks, c.Name), f.penalties(), ""), nil
}

func (f *Frostbite) OnTurnStart(_ context.Context, c *character.Character, _ int, turn string) ([]string, error) {
	if c.Name != turn {
		return nil, nil
	}
	if f.Stacks >= maxFrostbiteStacks {
		return []string{f.format("Frozen Solid", []string{
			"Cannot take actions or reactions",
			fmt.Sprintf("AC reduced to %d", frozenAC),
			"Automatically fails STR/DEX saves",
			"Vulnerable to critical hits",
		}, "")}, nil
	}
	return []string{f.format(fmt.Sprintf("Frostbite Penalties (%d/%d)", f.Stacks, maxFrostbiteStacks), f.penalties(), "")}, nil
}

func (f *Frostbite) OnTurnEnd(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	if c.Name != turn || f.ExpiryMessageSent {
		return nil, nil
	}
	wornOff := fmt.Sprintf("Frostbite will wear off from %s", c.Name)

	remaining, expire := f.ProcessDuration(round, turn)
	if expire {
		f.Stacks = 0
		c.Defense.RemoveACModifier(f.modifierID())
		return []string{f.expireNow(c, round, wornOff, "")}, nil
	}

	var messages []string
	switch {
	case f.Stacks >= maxFrostbiteStacks && f.SkipApplied:
		f.Stacks--
		f.SkipApplied = false
		f.LastStackReduction = round
		c.Defense.RemoveACModifier(f.modifierID())
		messages = append(messages, f.format(fmt.Sprintf("Frostbite reduced to %d/%d stacks", f.Stacks, maxFrostbiteStacks), nil, ""))
	case f.Stacks > 0 && round > f.LastStackReduction:
		f.Stacks--
		f.LastStackReduction = round
		if f.Stacks <= 0 {
			return []string{f.expireNow(c, round, wornOff, "")}, nil
		}
		messages = append(messages, f.format(fmt.Sprintf("Frostbite reduced to %d/%d stacks", f.Stacks, maxFrostbiteStacks), nil, ""))
	}

	if remaining > 0 && f.Stacks > 0 {
		messages = append(messages, f.format("Frostbite continues", []string{turnsRemaining(remaining)}, ""))
	}
	return messages, nil
}

func (f *Frostbite) OnExpire(_ context.Context, c *character.Character) (string, error) {
	frozen := f.Stacks >= maxFrostbiteStacks
	c.Defense.RemoveACModifier(f.modifierID())
	f.Stacks = 0
	f.SkipApplied = false
	if frozen {
		return f.format(c.Name+" has thawed out", nil, ""), nil
	}
	return f.format(fmt.Sprintf("Frostbite has worn off from %s", c.Name), nil, ""), nil
}

func (f *Frostbite) StatusText(c *character.Character) string {
	lines := []string{fmt.Sprintf("❄️ **Frostbite (%d/%d)**", f.Stacks, maxFrostbiteStacks)}
	if f.Stacks >= maxFrostbiteStacks {
		lines = append(lines, "• `Frozen solid`", fmt.Sprintf("• `AC reduced to %d`", frozenAC))
	} else {
		for _, p := range f.penalties() {
			lines = append(lines, fmt.Sprintf("• `%s`", p))
		}
	}
	lines = append(lines, f.durationStatus(c)...)
	return strings.Join(lines, "\n")
}
