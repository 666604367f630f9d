// Package effects implements the effect catalogue and the Manager that
// runs effect lifecycle hooks at each phase of a character's turn.
package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

// Stackable effects merge into an existing effect of the same type and
// name instead of being added twice.
type Stackable interface {
	character.Effect
	StackCount() int
	// AddStacks merges amount stacks into the receiver and returns the
	// message to show.
	AddStacks(ctx context.Context, c *character.Character, amount int) (string, error)
}

// TurnSkipper effects make the scheduler skip their owner's action.
type TurnSkipper interface {
	SkipsTurn() bool
}

// SelfExpiring effects drive their own removal instead of the duration
// rule.
type SelfExpiring interface {
	MarkedForRemoval() bool
}

// targetTracker effects remember who they were used against. Stacking
// merges the incoming targets into the existing effect.
type targetTracker interface {
	AddTarget(name string)
	targetNames() []string
}

type binder interface {
	bind(env *Env)
}

var categoryEmoji = map[character.EffectCategory]string{
	character.CategoryCombat:   "⚔️",
	character.CategoryResource: "💫",
	character.CategoryStatus:   "✨",
	character.CategoryCustom:   "✨",
}

// Base carries the shared state and default hooks. Concrete effects embed
// it and override what they need.
type Base struct {
	character.EffectState
	// Emoji overrides the category emoji in messages.
	Emoji string `json:"emoji,omitempty"`

	env *Env
}

func newBase(typ, name string, category character.EffectCategory, duration *int) Base {
	b := Base{EffectState: character.EffectState{
		Type:     typ,
		Name:     name,
		Category: category,
		Duration: duration,
	}}
	b.Normalize()
	return b
}

func (b *Base) State() *character.EffectState {
	return &b.EffectState
}

func (b *Base) bind(env *Env) {
	b.env = env
}

func (b *Base) environment() *Env {
	if b.env == nil {
		return unboundEnv()
	}
	return b.env
}

// OnApply announces the effect for types without an application step.
func (b *Base) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	return b.format(fmt.Sprintf("%s gains %s", c.Name, b.Name), b.durationDetails(), ""), nil
}

func (b *Base) OnTurnStart(context.Context, *character.Character, int, string) ([]string, error) {
	return nil, nil
}

// OnTurnEnd reports the remaining duration and marks the effect for
// expiry once it has run its course.
func (b *Base) OnTurnEnd(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	return b.tickDuration(c, round, turn, fmt.Sprintf("%s has worn off from %s", b.Name, c.Name), ""), nil
}

func (b *Base) OnExpire(_ context.Context, c *character.Character) (string, error) {
	return b.format(fmt.Sprintf("%s has worn off from %s", b.Name, c.Name), nil, ""), nil
}

func (b *Base) StatusText(c *character.Character) string {
	lines := []string{fmt.Sprintf("%s **%s**", b.emoji(""), b.Name)}
	lines = append(lines, bullets(b.Description)...)
	lines = append(lines, b.durationStatus(c)...)
	return strings.Join(lines, "\n")
}

// tickDuration is the shared end-of-turn duration step. On expiry it
// emits wornOff, queues it as feedback and marks the effect.
func (b *Base) tickDuration(c *character.Character, round int, turn, wornOff, emoji string) []string {
	if c.Name != turn || b.Permanent {
		return nil
	}

	remaining, expire := b.ProcessDuration(round, turn)
	if expire {
		if b.ExpiryMessageSent {
			return nil
		}
		return []string{b.expireNow(c, round, wornOff, emoji)}
	}

	if remaining > 0 {
		return []string{b.format(b.Name+" continues", []string{turnsRemaining(remaining)}, emoji)}
	}
	return nil
}

// expireNow marks the effect, records the feedback notice and returns it.
func (b *Base) expireNow(c *character.Character, round int, text, emoji string) string {
	msg := b.format(text, nil, emoji)
	b.ExpiryMessageSent = true
	b.MarkedForExpiry = true
	c.AddEffectFeedback(b.Name, msg, round, c.Name)
	return msg
}

func (b *Base) emoji(override string) string {
	switch {
	case override != "":
		return override
	case b.Emoji != "":
		return b.Emoji
	}
	if e, ok := categoryEmoji[b.Category]; ok {
		return e
	}
	return "✨"
}

// format renders a message the way every effect reports:
//
//	🔥 `Hero takes 4 fire damage from burn` 🔥
//	• `HP: 16/20`
func (b *Base) format(message string, details []string, emoji string) string {
	return formatMessage(b.emoji(emoji), message, details)
}

func formatMessage(emoji, message string, details []string) string {
	message = strings.Trim(message, "` ")
	out := fmt.Sprintf("%s `%s` %s", emoji, message, emoji)

	var lines []string
	for _, detail := range details {
		if detail = strings.Trim(detail, "` "); detail != "" {
			lines = append(lines, fmt.Sprintf("• `%s`", detail))
		}
	}
	if len(lines) > 0 {
		out += "\n" + strings.Join(lines, "\n")
	}
	return out
}

func (b *Base) durationDetails() []string {
	if b.Permanent || b.Duration == nil {
		return nil
	}
	return []string{fmt.Sprintf("Duration: %s", plural(*b.Duration, "turn"))}
}

// durationStatus is the remaining-time line for status displays.
func (b *Base) durationStatus(c *character.Character) []string {
	if b.Permanent {
		return []string{"• `Permanent`"}
	}
	if b.Duration == nil {
		return nil
	}
	if b.Timing != nil && c != nil && c.RoundNumber != nil {
		return []string{fmt.Sprintf("• `%s`", turnsRemaining(b.Remaining(*c.RoundNumber)))}
	}
	return []string{fmt.Sprintf("• `Duration: %s`", plural(*b.Duration, "turn"))}
}

func bullets(description string) []string {
	var lines []string
	for _, part := range strings.Split(description, ";") {
		if part = strings.TrimSpace(part); part != "" {
			lines = append(lines, fmt.Sprintf("• `%s`", part))
		}
	}
	return lines
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func turnsRemaining(n int) string {
	return plural(n, "turn") + " remaining"
}
