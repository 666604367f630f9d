package effects

import (
	"strings"
	"unicode"

	"github.com/KirkDiggler/initiative-bot/internal/combat/attack"
	"github.com/KirkDiggler/initiative-bot/internal/damage"
	"github.com/KirkDiggler/initiative-bot/internal/dice"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

// MoveBuilder helps create moves
type MoveBuilder struct {
	name        string
	description string
	castTime    int
	duration    int
	cooldown    int

	starCost int
	mpCost   int
	hpCost   int
	uses     *int

	attackRoll      string
	damage          string
	critRange       int
	rollTiming      RollTiming
	targets         []string
	applyDamage     bool
	castDescription string
}

// NewMoveBuilder creates a new move builder
func NewMoveBuilder(name string) *MoveBuilder {
	return &MoveBuilder{
		name:      strings.TrimSpace(name),
		critRange: attack.DefaultCritRange,
	}
}

// WithDescription sets the description. Semicolons split it into bullets.
func (b *MoveBuilder) WithDescription(desc string) *MoveBuilder {
	b.description = desc
	return b
}

// WithCastTime sets the number of owner turns spent casting
func (b *MoveBuilder) WithCastTime(turns int) *MoveBuilder {
	b.castTime = turns
	return b
}

// WithDuration sets the length of the active phase
func (b *MoveBuilder) WithDuration(turns int) *MoveBuilder {
	b.duration = turns
	return b
}

// WithCooldown sets the length of the cooldown phase
func (b *MoveBuilder) WithCooldown(turns int) *MoveBuilder {
	b.cooldown = turns
	return b
}

// WithCosts sets the star, MP and HP cost. Negative MP or HP restores.
func (b *MoveBuilder) WithCosts(stars, mp, hp int) *MoveBuilder {
	b.starCost = stars
	b.mpCost = mp
	b.hpCost = hp
	return b
}

// WithUses limits how many times the move can be used
func (b *MoveBuilder) WithUses(uses int) *MoveBuilder {
	b.uses = &uses
	return b
}

// WithAttack adds an attack roll and damage string, e.g. "1d20+str" and
// "2d6 fire"
func (b *MoveBuilder) WithAttack(roll, damageExpr string, critRange int) *MoveBuilder {
	b.attackRoll = roll
	b.damage = damageExpr
	if critRange > 0 {
		b.critRange = critRange
	}
	return b
}

// WithRollTiming sets when the attack is rolled
func (b *MoveBuilder) WithRollTiming(timing RollTiming) *MoveBuilder {
	b.rollTiming = timing
	return b
}

// WithTargets sets the target names
func (b *MoveBuilder) WithTargets(names ...string) *MoveBuilder {
	b.targets = append(b.targets, names...)
	return b
}

// WithDamageApplied routes hits through the damage resolver onto targets
func (b *MoveBuilder) WithDamageApplied() *MoveBuilder {
	b.applyDamage = true
	return b
}

// WithCastDescription replaces "uses" in the announcement, e.g. "channels"
func (b *MoveBuilder) WithCastDescription(desc string) *MoveBuilder {
	b.castDescription = desc
	return b
}

// Build validates and returns the move
func (b *MoveBuilder) Build() (*Move, error) {
	if b.name == "" {
		return nil, dnderr.Validation("move name is required")
	}
	if b.castTime < 0 || b.duration < 0 || b.cooldown < 0 {
		return nil, dnderr.Validationf("move %s has a negative phase length", b.name)
	}
	if b.starCost < 0 {
		return nil, dnderr.Validationf("move %s has a negative star cost", b.name)
	}
	if b.uses != nil && *b.uses < 1 {
		return nil, dnderr.Validationf("move %s needs at least one use", b.name)
	}
	if b.critRange < 1 || b.critRange > 20 {
		return nil, dnderr.Validationf("crit range must be between 1 and 20, got %d", b.critRange)
	}
	if b.attackRoll != "" && !dice.HasDice(b.attackRoll) {
		return nil, dnderr.Validationf("attack roll %q has no dice", b.attackRoll)
	}
	for _, roll := range attack.ParseDamage(b.damage) {
		if word, ok := unknownDamageType(roll); ok {
			return nil, dnderr.Validationf("unknown damage type %q", word)
		}
	}

	m := NewMove(b.name, b.description, b.castTime, b.duration, b.cooldown)
	m.StarCost = b.starCost
	m.MPCost = b.mpCost
	m.HPCost = b.hpCost
	if b.uses != nil {
		m.Uses = b.uses
		remaining := *b.uses
		m.UsesRemaining = &remaining
	}
	m.AttackRoll = b.attackRoll
	m.Damage = b.damage
	m.CritRange = b.critRange
	m.Targets = b.targets
	m.ApplyDamage = b.applyDamage
	m.CastDescription = b.castDescription

	switch b.rollTiming {
	case "":
	case RollInstant, RollActive, RollPerTurn:
		m.RollTiming = b.rollTiming
	default:
		return nil, dnderr.Validationf("unknown roll timing %q", b.rollTiming)
	}
	return m, nil
}

// unknownDamageType reports a trailing word that ParseDamage could not
// read as a damage type, e.g. "2d6 banana".
func unknownDamageType(roll attack.DamageRoll) (string, bool) {
	if roll.Type != damage.Generic {
		return "", false
	}
	fields := strings.Fields(roll.Expression)
	if len(fields) < 2 {
		return "", false
	}
	word := strings.ToLower(fields[len(fields)-1])
	if strings.IndexFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
		return "", false
	}
	if _, ok := character.ParseStat(word); ok {
		return "", false
	}
	switch word {
	case "advantage", "disadvantage", "multihit":
		return "", false
	}
	return word, true
}

// Common moves

// BuildFireball creates a cast-time area attack
func BuildFireball(targets ...string) (*Move, error) {
	return NewMoveBuilder("Fireball").
		WithDescription("A bright streak flashes to a point and blossoms into flame").
		WithCastTime(1).
		WithCooldown(2).
		WithCosts(2, 5, 0).
		WithAttack("1d20+int", "8d6 fire", 0).
		WithRollTiming(RollInstant).
		WithTargets(targets...).
		Build()
}

// BuildSecondWind creates an instant self heal
func BuildSecondWind() (*Move, error) {
	return NewMoveBuilder("Second Wind").
		WithDescription("Draw on a reserve of stamina").
		WithCooldown(3).
		WithCosts(1, 0, -10).
		WithUses(1).
		Build()
}
