package dice

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

// ModifierKind is the effect a RollModifier has on a roll.
type ModifierKind string

const (
	ModifierBonus        ModifierKind = "bonus"
	ModifierAdvantage    ModifierKind = "advantage"
	ModifierDisadvantage ModifierKind = "disadvantage"
)

// RollModifier is implemented by effects that change the owner's rolls.
type RollModifier interface {
	RollModifierKind() ModifierKind
	// RollModifierValue is the flat bonus, or the number of advantage or
	// disadvantage stacks.
	RollModifierValue() int
	RollModifierActive() bool
	// ConsumeRoll is called after a roll that used the modifier. Next-roll
	// modifiers mark themselves used.
	ConsumeRoll()
}

// ActiveModifiers returns the roll modifiers currently carried by c.
func ActiveModifiers(c *character.Character) []RollModifier {
	if c == nil {
		return nil
	}
	var mods []RollModifier
	for _, effect := range c.Effects {
		mod, ok := effect.(RollModifier)
		if !ok || !mod.RollModifierActive() {
			continue
		}
		mods = append(mods, mod)
	}
	return mods
}

type injection struct {
	expression string
	notes      []string
}

// injectModifiers rewrites expr with the character's roll modifiers.
// Bonuses append "+value". Advantage and disadvantage stacks, including
// any already written in expr, cancel one for one.
func injectModifiers(expr string, c *character.Character) (injection, []RollModifier) {
	out := injection{expression: expr}
	mods := ActiveModifiers(c)
	if len(mods) == 0 || !HasDice(expr) {
		return out, nil
	}

	net := 0
	for _, m := range advantagePattern.FindAllStringSubmatch(expr, -1) {
		net += keywordWidth(m[1])
	}
	for _, m := range disadvantagePattern.FindAllStringSubmatch(expr, -1) {
		net -= keywordWidth(m[1])
	}

	var bonuses []string
	for _, mod := range mods {
		value := mod.RollModifierValue()
		switch mod.RollModifierKind() {
		case ModifierBonus:
			bonuses = append(bonuses, signed(value))
			out.notes = append(out.notes, fmt.Sprintf("%s bonus", signed(value)))
		case ModifierAdvantage:
			net += max(1, value)
			out.notes = append(out.notes, fmt.Sprintf("advantage x%d", max(1, value)))
		case ModifierDisadvantage:
			net -= max(1, value)
			out.notes = append(out.notes, fmt.Sprintf("disadvantage x%d", max(1, value)))
		}
	}

	base := disadvantagePattern.ReplaceAllString(expr, "")
	base = advantagePattern.ReplaceAllString(base, "")

	// Bonuses go on the roll itself, ahead of any multihit keyword.
	var multihit string
	if loc := multihitPattern.FindStringIndex(base); loc != nil {
		multihit = base[loc[0]:loc[1]]
		base = base[:loc[0]] + base[loc[1]:]
	}

	parts := []string{strings.TrimSpace(base) + strings.Join(bonuses, "")}
	if multihit != "" {
		parts = append(parts, multihit)
	}
	switch {
	case net > 1:
		parts = append(parts, fmt.Sprintf("advantage %d", net))
	case net == 1:
		parts = append(parts, "advantage")
	case net == -1:
		parts = append(parts, "disadvantage")
	case net < -1:
		parts = append(parts, fmt.Sprintf("disadvantage %d", -net))
	}

	out.expression = strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	return out, mods
}
