package attack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/KirkDiggler/initiative-bot/internal/damage"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

// AoEMode selects how one attack is resolved against several targets.
type AoEMode string

const (
	// AoESingle compares one shared roll against every target's AC.
	AoESingle AoEMode = "single"
	// AoEMulti rolls independently for each target.
	AoEMulti AoEMode = "multi"
)

// DefaultCritRange is the natural roll needed for a critical hit.
const DefaultCritRange = 20

// DamageRoll is one typed damage component such as "2d6+str slashing".
type DamageRoll struct {
	Expression string      `validate:"required"`
	Type       damage.Type `validate:"damagetype"`
}

// Params describes one attack.
type Params struct {
	Attacker  *character.Character   `validate:"-"`
	Targets   []*character.Character `validate:"dive,required"`
	Roll      string                 `validate:"required,max=200"`
	Damage    []DamageRoll           `validate:"dive"`
	CritRange int                    `validate:"min=1,max=20"`
	AoE       AoEMode                `validate:"omitempty,oneof=single multi"`
	Reason    string                 `validate:"max=200"`

	// ApplyDamage routes each hit's damage through the damage resolver
	// onto the target.
	ApplyDamage bool
}

// IsMultihit reports whether the roll expression asks for multihit.
func (p *Params) IsMultihit() bool {
	return strings.Contains(strings.ToLower(p.Roll), "multihit")
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("damagetype", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || damage.IsKnown(value)
	})
	return v
}

// normalize fills defaults and validates p.
func (p *Params) normalize(v *validator.Validate) error {
	if p.CritRange == 0 {
		p.CritRange = DefaultCritRange
	}
	if p.AoE == "" {
		p.AoE = AoESingle
	}
	for i := range p.Damage {
		if p.Damage[i].Type == "" {
			p.Damage[i].Type = damage.Generic
		}
	}

	if err := v.Struct(p); err != nil {
		return dnderr.Validation(formatValidationError(err))
	}

	if p.IsMultihit() {
		if p.AoE == AoEMulti {
			return dnderr.Validation("multihit attacks cannot be used with AoE multi mode")
		}
		if len(p.Targets) > 1 {
			return dnderr.Validation("multihit attacks take a single target")
		}
	}
	return nil
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "invalid attack parameters"
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "damagetype":
			msgs = append(msgs, fmt.Sprintf("unknown damage type %q", e.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

// ParseDamage splits a damage string such as "2d6+str slashing, 1d4 fire"
// into components. A component without a type is generic.
func ParseDamage(s string) []DamageRoll {
	var rolls []DamageRoll
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		roll := DamageRoll{Expression: part, Type: damage.Generic}
		if idx := strings.LastIndex(part, " "); idx > 0 && damage.IsKnown(part[idx+1:]) {
			roll.Expression = strings.TrimSpace(part[:idx])
			roll.Type = damage.Parse(part[idx+1:])
		}
		rolls = append(rolls, roll)
	}
	return rolls
}
