// Package attack resolves attack rolls against targets: single checks,
// shared-roll and per-target AoE, and multihit.
package attack

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/KirkDiggler/initiative-bot/internal/damage"
	"github.com/KirkDiggler/initiative-bot/internal/dice"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/metrics"
)

// DamageDealt is one rolled damage component.
type DamageDealt struct {
	Amount int
	Type   damage.Type
	// Applied is set when the damage was applied to the target.
	Applied *damage.Result
}

// Result is the outcome of one attack roll against one target.
type Result struct {
	TargetName  string
	AttackRoll  int
	NaturalRoll int
	AC          int
	Hit         bool
	IsCrit      bool
	DamageRolls []DamageDealt
	TotalDamage int

	// Formatted is the rendered attack roll behind this result.
	Formatted string
}

// Calculator resolves attacks.
type Calculator struct {
	dice     *dice.Calculator
	damage   *damage.Resolver
	store    character.Store
	validate *validator.Validate
	logger   *slog.Logger
}

type Config struct {
	Dice   *dice.Calculator
	Damage *damage.Resolver
	// Store persists targets after ApplyDamage. Optional.
	Store  character.Store
	Logger *slog.Logger
}

func NewCalculator(cfg *Config) *Calculator {
	c := &Calculator{validate: newValidator()}
	if cfg != nil {
		c.dice = cfg.Dice
		c.damage = cfg.Damage
		c.store = cfg.Store
		c.logger = cfg.Logger
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.dice == nil {
		c.dice = dice.NewCalculator(&dice.CalculatorConfig{Logger: c.logger})
	}
	if c.damage == nil {
		c.damage = damage.NewResolver(c.logger)
	}
	return c
}

// ProcessAttack resolves p and returns the chat message plus an optional
// detail block (per-hit breakdown for multihit, damage application notes
// otherwise).
func (c *Calculator) ProcessAttack(ctx context.Context, p *Params) (string, string, error) {
	if p == nil {
		return "", "", dnderr.InvalidArgument("attack params are required")
	}
	if err := p.normalize(c.validate); err != nil {
		return "", "", err
	}

	switch {
	case len(p.Targets) == 0:
		return c.untargeted(p)
	case p.IsMultihit():
		return c.multihit(ctx, p)
	case p.AoE == AoEMulti:
		return c.aoeMulti(ctx, p)
	default:
		return c.shared(ctx, p)
	}
}

func (c *Calculator) untargeted(p *Params) (string, string, error) {
	breakdown, err := c.dice.Calculate(p.Roll, p.Attacker)
	if err != nil {
		return "", "", err
	}
	formatted := dice.FormatRoll(breakdown)
	if len(p.Damage) == 0 {
		return formatted, "", nil
	}

	result := &Result{
		AttackRoll:  breakdown.Total,
		NaturalRoll: breakdown.Natural,
		Hit:         true,
		IsCrit:      breakdown.Natural >= p.CritRange,
		Formatted:   formatted,
	}
	if err := c.rollDamage(p, nil, result); err != nil {
		return "", "", err
	}
	return formatSingle(formatted, result, p.Reason), "", nil
}

func (c *Calculator) shared(ctx context.Context, p *Params) (string, string, error) {
	breakdown, err := c.dice.Calculate(p.Roll, p.Attacker)
	if err != nil {
		return "", "", err
	}
	formatted := dice.FormatRoll(breakdown)

	results := make([]*Result, 0, len(p.Targets))
	for _, target := range p.Targets {
		result := c.judge(breakdown.Total, breakdown.Natural, target, p.CritRange)
		result.Formatted = formatted
		if result.Hit {
			if err := c.rollDamage(p, target, result); err != nil {
				return "", "", err
			}
		}
		results = append(results, result)
	}

	if err := c.persist(ctx, p); err != nil {
		return "", "", err
	}

	var message string
	if len(results) == 1 {
		message = formatSingle(formatted, results[0], p.Reason)
	} else {
		message = formatShared(formatted, results, p.Reason)
	}
	return message, formatApplied(results), nil
}

func (c *Calculator) aoeMulti(ctx context.Context, p *Params) (string, string, error) {
	results := make([]*Result, 0, len(p.Targets))
	for _, target := range p.Targets {
		breakdown, err := c.dice.Calculate(p.Roll, p.Attacker)
		if err != nil {
			return "", "", err
		}
		result := c.judge(breakdown.Total, breakdown.Natural, target, p.CritRange)
		result.Formatted = dice.FormatRoll(breakdown)
		if result.Hit {
			if err := c.rollDamage(p, target, result); err != nil {
				return "", "", err
			}
		}
		results = append(results, result)
	}

	if err := c.persist(ctx, p); err != nil {
		return "", "", err
	}
	return formatMulti("🎲 `"+p.Roll, results, true, p.Reason), formatApplied(results), nil
}

func (c *Calculator) multihit(ctx context.Context, p *Params) (string, string, error) {
	breakdown, err := c.dice.Calculate(p.Roll, p.Attacker)
	if err != nil {
		return "", "", err
	}
	formatted := dice.FormatRoll(breakdown)
	target := p.Targets[0]

	results := make([]*Result, 0, len(breakdown.Hits))
	for _, hit := range breakdown.Hits {
		result := c.judge(hit.Total, hit.Natural, target, p.CritRange)
		result.Formatted = formatted
		if result.Hit {
			if err := c.rollDamage(p, target, result); err != nil {
				return "", "", err
			}
		}
		results = append(results, result)
	}

	if err := c.persist(ctx, p); err != nil {
		return "", "", err
	}
	return formatMulti(formatted, results, false, p.Reason), formatMultihitDetails(results), nil
}

// judge compares a roll against target's AC. A natural roll in the crit
// range always hits.
func (c *Calculator) judge(total, natural int, target *character.Character, critRange int) *Result {
	result := &Result{
		TargetName:  target.Name,
		AttackRoll:  total,
		NaturalRoll: natural,
		AC:          target.Defense.CurrentAC,
		IsCrit:      natural >= critRange,
	}
	result.Hit = result.IsCrit || total >= result.AC

	outcome := metrics.OutcomeMiss
	switch {
	case result.IsCrit:
		outcome = metrics.OutcomeCrit
	case result.Hit:
		outcome = metrics.OutcomeHit
	}
	metrics.AttackOutcomes.WithLabelValues(outcome).Inc()
	return result
}

// rollDamage rolls every damage component for a hit. Crits double the
// dice portion only, static modifiers are added once.
func (c *Calculator) rollDamage(p *Params, target *character.Character, result *Result) error {
	for _, component := range p.Damage {
		breakdown, err := c.dice.Calculate(component.Expression, p.Attacker)
		if err != nil {
			return dnderr.Wrapf(err, "failed to roll %s damage", component.Type)
		}

		amount := breakdown.Total
		if result.IsCrit {
			amount += breakdown.DiceTotal
		}
		amount = max(0, amount)

		dealt := DamageDealt{Amount: amount, Type: component.Type}
		if p.ApplyDamage && target != nil {
			dealt.Applied = c.damage.Apply(amount, component.Type, target, p.Attacker)
		}
		result.DamageRolls = append(result.DamageRolls, dealt)
		result.TotalDamage += amount
	}
	return nil
}

func (c *Calculator) persist(ctx context.Context, p *Params) error {
	if !p.ApplyDamage || c.store == nil {
		return nil
	}
	for _, target := range p.Targets {
		if err := c.store.Save(ctx, target); err != nil {
			return dnderr.Wrapf(err, "failed to save target %s", target.Name)
		}
	}
	return nil
}
