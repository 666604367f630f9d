package effects

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KirkDiggler/initiative-bot/internal/damage"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

func title(s string) string {
	return cases.Title(language.English).String(s)
}

// AC adds a priority-ordered modifier to the owner's armor class.
type AC struct {
	Base
	Amount   int `json:"amount"`
	Priority int `json:"priority,omitempty"`
}

func NewAC(amount int, duration *int) *AC {
	name := "AC Boost"
	if amount < 0 {
		name = "AC Reduction"
	}
	a := &AC{
		Base:   newBase(TypeAC, name, character.CategoryCombat, duration),
		Amount: amount,
	}
	a.Emoji = "🛡️"
	return a
}

func (a *AC) modifierID() string {
	if a.ID == "" {
		a.ID = a.environment().IDs.New()
	}
	return a.ID
}

func (a *AC) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	current := c.Defense.ModifyAC(a.modifierID(), a.Amount, a.Priority)
	details := []string{fmt.Sprintf("Current AC: %d", current)}
	details = append(details, a.durationDetails()...)
	return a.format(fmt.Sprintf("%s's AC modified by %s", c.Name, signed(a.Amount)), details, ""), nil
}

func (a *AC) OnExpire(_ context.Context, c *character.Character) (string, error) {
	current := c.Defense.RemoveACModifier(a.modifierID())
	return a.format(
		fmt.Sprintf("AC modification expired from %s", c.Name),
		[]string{fmt.Sprintf("Was %s", signed(a.Amount)), fmt.Sprintf("Current AC: %d", current)},
		"",
	), nil
}

func (a *AC) StatusText(c *character.Character) string {
	lines := []string{fmt.Sprintf("🛡️ **%s**", a.Name), fmt.Sprintf("• `AC %s`", signed(a.Amount))}
	lines = append(lines, a.durationStatus(c)...)
	return strings.Join(lines, "\n")
}

// Resistance reduces damage of one type by a percentage. It stacks
// additively with natural resistance.
type Resistance struct {
	Base
	DamageType damage.Type `json:"damage_type"`
	Percentage int         `json:"percentage"`
}

func NewResistance(t damage.Type, percentage int, duration *int) *Resistance {
	r := &Resistance{
		Base:       newBase(TypeResistance, title(string(t))+" Resistance", character.CategoryCombat, duration),
		DamageType: t,
		Percentage: percentage,
	}
	r.Emoji = "🛡️"
	return r
}

func (r *Resistance) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	c.Defense.AddResistance(string(r.DamageType), r.Percentage)

	var details []string
	if natural := c.Defense.NaturalResistances[string(r.DamageType)]; natural > 0 {
		details = append(details, fmt.Sprintf("(Total: %d%% with natural resistance)", c.Defense.TotalResistance(string(r.DamageType))))
	}
	details = append(details, r.durationDetails()...)
	return r.format(fmt.Sprintf("%s gains %d%% %s resistance", c.Name, r.Percentage, r.DamageType), details, ""), nil
}

func (r *Resistance) OnExpire(_ context.Context, c *character.Character) (string, error) {
	c.Defense.AddResistance(string(r.DamageType), -r.Percentage)
	return r.format(fmt.Sprintf("%s resistance expired from %s", r.DamageType, c.Name), nil, ""), nil
}

func (r *Resistance) StatusText(c *character.Character) string {
	lines := []string{fmt.Sprintf("🛡️ **%s**", r.Name), fmt.Sprintf("• `%d%% less %s damage`", r.Percentage, r.DamageType)}
	lines = append(lines, r.durationStatus(c)...)
	return strings.Join(lines, "\n")
}

// Vulnerability increases damage of one type by a percentage.
type Vulnerability struct {
	Base
	DamageType damage.Type `json:"damage_type"`
	Percentage int         `json:"percentage"`
}

func NewVulnerability(t damage.Type, percentage int, duration *int) *Vulnerability {
	v := &Vulnerability{
		Base:       newBase(TypeVulnerability, title(string(t))+" Vulnerability", character.CategoryCombat, duration),
		DamageType: t,
		Percentage: percentage,
	}
	v.Emoji = "⚔️"
	return v
}

func (v *Vulnerability) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	c.Defense.AddVulnerability(string(v.DamageType), v.Percentage)

	var details []string
	if natural := c.Defense.NaturalVulnerabilities[string(v.DamageType)]; natural > 0 {
		details = append(details, fmt.Sprintf("(Total: %d%% with natural vulnerability)", c.Defense.TotalVulnerability(string(v.DamageType))))
	}
	details = append(details, v.durationDetails()...)
	return v.format(fmt.Sprintf("%s gains %d%% %s vulnerability", c.Name, v.Percentage, v.DamageType), details, ""), nil
}

func (v *Vulnerability) OnExpire(_ context.Context, c *character.Character) (string, error) {
	c.Defense.AddVulnerability(string(v.DamageType), -v.Percentage)
	return v.format(fmt.Sprintf("%s vulnerability expired from %s", v.DamageType, c.Name), nil, ""), nil
}

func (v *Vulnerability) StatusText(c *character.Character) string {
	lines := []string{fmt.Sprintf("⚔️ **%s**", v.Name), fmt.Sprintf("• `%d%% more %s damage`", v.Percentage, v.DamageType)}
	lines = append(lines, v.durationStatus(c)...)
	return strings.Join(lines, "\n")
}

// Weakness reduces the damage its owner deals.
type Weakness struct {
	Base
	DamageType damage.Type `json:"damage_type"`
	Percentage int         `json:"percentage"`
}

func NewWeakness(t damage.Type, percentage int, duration *int) *Weakness {
	w := &Weakness{
		Base:       newBase(TypeWeakness, fmt.Sprintf("%d%% %s weakness", percentage, title(string(t))), character.CategoryCombat, duration),
		DamageType: t,
		Percentage: percentage,
	}
	w.Emoji = "💢"
	return w
}

// WeaknessFor applies to the same type, to everything when the weakness
// is generic, and to the whole category except true damage.
func (w *Weakness) WeaknessFor(t damage.Type) int {
	switch {
	case t == damage.True:
		return 0
	case w.DamageType == t, w.DamageType == damage.Generic:
		return w.Percentage
	case w.DamageType.Category() == t.Category():
		return w.Percentage
	}
	return 0
}

func (w *Weakness) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	return w.format(fmt.Sprintf("%s deals %d%% less %s damage", c.Name, w.Percentage, w.DamageType), w.durationDetails(), ""), nil
}

func signed(v int) string {
	if v < 0 {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("+%d", v)
}
