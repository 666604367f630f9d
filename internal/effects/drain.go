package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

var drainEmoji = map[ResourceType][2]string{
	ResourceHP: {"💔", "💜"},
	ResourceMP: {"💨", "✨"},
}

// Drain takes HP or MP from its owner at each of the owner's turn starts.
// With a SiphonTarget the drained amount is handed to that character.
type Drain struct {
	Base
	Amount       string       `json:"amount"`
	Resource     ResourceType `json:"resource_type"`
	SiphonTarget string       `json:"siphon_target,omitempty"`
	TotalDrained int          `json:"total_drained"`
	LastAmount   int          `json:"last_amount"`
}

func NewDrain(amount string, resource ResourceType, siphonTarget string, duration *int) *Drain {
	kind := "Drain"
	if siphonTarget != "" {
		kind = "Siphon"
	}
	d := &Drain{
		Base:         newBase(TypeDrain, fmt.Sprintf("%s %s", strings.ToUpper(string(resource)), kind), character.CategoryResource, duration),
		Amount:       amount,
		Resource:     resource,
		SiphonTarget: siphonTarget,
	}
	d.Emoji = d.emojis()[0]
	return d
}

func (d *Drain) emojis() [2]string {
	if e, ok := drainEmoji[d.Resource]; ok {
		return e
	}
	return [2]string{"✨", "✨"}
}

func (d *Drain) label() string {
	return strings.ToUpper(string(d.Resource))
}

func (d *Drain) take(c *character.Character, amount int) (int, int) {
	if d.Resource == ResourceMP {
		return c.Resources.SpendMP(amount), c.Resources.CurrentMP
	}
	return c.Resources.TakeDamage(amount), c.Resources.CurrentHP
}

func (d *Drain) give(target *character.Character, amount int) (int, int) {
	if d.Resource == ResourceMP {
		return target.Resources.RestoreMP(amount), target.Resources.CurrentMP
	}
	return target.Resources.Heal(amount), target.Resources.CurrentHP
}

func (d *Drain) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	details := d.durationDetails()
	details = append(details, fmt.Sprintf("Drains %s %s per turn", d.Amount, d.label()))
	if d.SiphonTarget != "" {
		details = append(details, "Transfers to "+d.SiphonTarget)
	}
	return d.format(fmt.Sprintf("%s afflicted by %s", c.Name, d.Name), details, ""), nil
}

func (d *Drain) OnTurnStart(ctx context.Context, c *character.Character, _ int, turn string) ([]string, error) {
	if c.Name != turn || d.MarkedForExpiry {
		return nil, nil
	}

	env := d.environment()
	roll, err := env.Dice.Evaluate(d.Amount, c)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll %s amount %q", d.Name, d.Amount)
	}

	// The siphon target is resolved before anything is taken so a failed
	// lookup leaves the owner untouched.
	var target *character.Character
	if d.SiphonTarget != "" {
		if env.Store == nil {
			return nil, dnderr.FailedPreconditionf("%s needs a character store to reach %s", d.Name, d.SiphonTarget)
		}
		if target, err = env.Store.Get(ctx, d.SiphonTarget); err != nil {
			return nil, dnderr.Wrapf(err, "failed to load siphon target %s", d.SiphonTarget)
		}
	}

	amount := max(0, roll.Total)
	drained, current := d.take(c, amount)
	if drained <= 0 {
		d.LastAmount = amount
		return nil, nil
	}

	received, now := 0, 0
	if target != nil {
		received, now = d.give(target, drained)
		if received > 0 {
			if err := env.Store.Save(ctx, target); err != nil {
				d.take(target, received)
				d.give(c, drained)
				return nil, dnderr.Wrapf(err, "failed to save siphon target %s", d.SiphonTarget)
			}
		}
	}

	d.LastAmount = amount
	d.TotalDrained += drained

	details := []string{fmt.Sprintf("Current %s: %d", d.label(), current)}
	if d.TotalDrained > drained {
		details = append(details, fmt.Sprintf("Total drained: %d", d.TotalDrained))
	}
	msg := fmt.Sprintf("%s loses %d %s", c.Name, drained, d.label())

	if target == nil {
		return []string{d.format(msg, details, "")}, nil
	}
	if received > 0 {
		details = append(details, fmt.Sprintf("%s received %d (%d now)", target.Name, received, now))
	}
	emoji := d.emojis()
	return []string{formatMessage(emoji[0], msg, details) + " " + emoji[1]}, nil
}

func (d *Drain) OnTurnEnd(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	if c.Name != turn || d.Permanent {
		return nil, nil
	}
	remaining, expire := d.ProcessDuration(round, turn)
	if expire {
		if d.ExpiryMessageSent {
			return nil, nil
		}
		msg := d.Name + " effect wearing off"
		if d.TotalDrained > 0 {
			msg += fmt.Sprintf(" (Total drained: %d)", d.TotalDrained)
		}
		return []string{d.expireNow(c, round, msg, "")}, nil
	}
	if remaining <= 0 {
		return nil, nil
	}
	details := []string{turnsRemaining(remaining)}
	if d.LastAmount > 0 {
		details = append(details, "Next drain: "+d.Amount)
	}
	return []string{d.format(d.Name+" continues", details, "")}, nil
}

func (d *Drain) OnExpire(_ context.Context, c *character.Character) (string, error) {
	msg := fmt.Sprintf("%s effect expires from %s", d.Name, c.Name)
	if d.TotalDrained > 0 {
		msg += fmt.Sprintf(" (Total drained: %d)", d.TotalDrained)
	}
	return d.format(msg, nil, ""), nil
}

func (d *Drain) StatusText(c *character.Character) string {
	lines := []string{
		fmt.Sprintf("%s **%s**", d.emojis()[0], d.Name),
		fmt.Sprintf("• Amount per turn: `%s`", d.Amount),
	}
	if d.TotalDrained > 0 {
		lines = append(lines, fmt.Sprintf("• Total drained: `%d`", d.TotalDrained))
		if d.LastAmount > 0 {
			lines = append(lines, fmt.Sprintf("• Last drain: `%d`", d.LastAmount))
		}
	}
	if d.SiphonTarget != "" {
		lines = append(lines, fmt.Sprintf("• Transferring to: `%s`", d.SiphonTarget))
	}
	lines = append(lines, d.durationStatus(c)...)
	return strings.Join(lines, "\n")
}

// Regen restores HP or MP at each of its owner's turn starts.
type Regen struct {
	Base
	Amount        string       `json:"amount"`
	Resource      ResourceType `json:"resource_type"`
	TotalRestored int          `json:"total_restored"`
}

func NewRegen(amount string, resource ResourceType, duration *int) *Regen {
	r := &Regen{
		Base:     newBase(TypeRegen, strings.ToUpper(string(resource))+" Regeneration", character.CategoryResource, duration),
		Amount:   amount,
		Resource: resource,
	}
	r.Emoji = "💚"
	if resource == ResourceMP {
		r.Emoji = "💙"
	}
	return r
}

func (r *Regen) label() string {
	return strings.ToUpper(string(r.Resource))
}

func (r *Regen) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	details := []string{fmt.Sprintf("Restores %s %s per turn", r.Amount, r.label())}
	details = append(details, r.durationDetails()...)
	return r.format(fmt.Sprintf("%s gains %s", c.Name, r.Name), details, ""), nil
}

func (r *Regen) OnTurnStart(_ context.Context, c *character.Character, _ int, turn string) ([]string, error) {
	if c.Name != turn || r.MarkedForExpiry {
		return nil, nil
	}

	roll, err := r.environment().Dice.Evaluate(r.Amount, c)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll %s amount %q", r.Name, r.Amount)
	}

	var restored, current, maximum int
	if r.Resource == ResourceMP {
		restored = c.Resources.RestoreMP(roll.Total)
		current, maximum = c.Resources.CurrentMP, c.Resources.MaxMP
	} else {
		restored = c.Resources.Heal(roll.Total)
		current, maximum = c.Resources.CurrentHP, c.Resources.MaxHP
	}
	r.TotalRestored += restored
	if restored <= 0 {
		return nil, nil
	}
	return []string{r.format(
		fmt.Sprintf("%s regenerates %d %s", c.Name, restored, r.label()),
		[]string{fmt.Sprintf("%s: %d/%d", r.label(), current, maximum)},
		"",
	)}, nil
}

func (r *Regen) StatusText(c *character.Character) string {
	lines := []string{
		fmt.Sprintf("%s **%s**", r.Emoji, r.Name),
		fmt.Sprintf("• `%s %s per turn`", r.Amount, r.label()),
	}
	if r.TotalRestored > 0 {
		lines = append(lines, fmt.Sprintf("• `Total restored: %d`", r.TotalRestored))
	}
	lines = append(lines, r.durationStatus(c)...)
	return strings.Join(lines, "\n")
}
