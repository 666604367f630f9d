package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/combat/attack"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

var moveEmoji = map[MoveState]string{
	MoveInstant:  "⚡",
	MoveCasting:  "✨",
	MoveActive:   "🌟",
	MoveCooldown: "⏳",
}

// Phase counts the owner's turns spent in one move state.
type Phase struct {
	Duration       int `json:"duration"`
	TurnsCompleted int `json:"turns_completed"`
}

func (p *Phase) remaining() int {
	return max(0, p.Duration-p.TurnsCompleted)
}

func (p *Phase) complete() bool {
	return p.TurnsCompleted >= p.Duration
}

// Move is a player action that may cast, stay active and then cool down.
// Each phase only counts its owner's turns. A move drives its own removal
// through MarkedForRemoval.
type Move struct {
	Base
	Stage   MoveState            `json:"state"`
	Phases  map[MoveState]*Phase `json:"phases,omitempty"`
	Removal bool                 `json:"marked_for_removal,omitempty"`

	StarCost int `json:"star_cost,omitempty"`
	// MPCost and HPCost are spent on use. Negative values restore.
	MPCost        int  `json:"mp_cost,omitempty"`
	HPCost        int  `json:"hp_cost,omitempty"`
	Uses          *int `json:"uses,omitempty"`
	UsesRemaining *int `json:"uses_remaining,omitempty"`

	AttackRoll      string     `json:"attack_roll,omitempty"`
	Damage          string     `json:"damage,omitempty"`
	CritRange       int        `json:"crit_range,omitempty"`
	RollTiming      RollTiming `json:"roll_timing,omitempty"`
	Targets         []string   `json:"targets,omitempty"`
	ApplyDamage     bool       `json:"apply_damage,omitempty"`
	CastDescription string     `json:"cast_description,omitempty"`
}

// NewMove builds a move from its phase lengths. Zero skips a phase; a move
// with no phases is instant. Prefer MoveBuilder for anything more.
func NewMove(name, description string, castTime, duration, cooldown int) *Move {
	m := &Move{
		Phases:     make(map[MoveState]*Phase),
		CritRange:  attack.DefaultCritRange,
		RollTiming: RollActive,
	}
	if castTime > 0 {
		m.Phases[MoveCasting] = &Phase{Duration: castTime}
	}
	if duration > 0 {
		m.Phases[MoveActive] = &Phase{Duration: duration}
	}
	if cooldown > 0 {
		m.Phases[MoveCooldown] = &Phase{Duration: cooldown}
	}

	m.Stage = MoveInstant
	for _, state := range []MoveState{MoveCasting, MoveActive, MoveCooldown} {
		if m.Phases[state] != nil {
			m.Stage = state
			break
		}
	}

	first := 1
	if p := m.Phases[m.Stage]; p != nil {
		first = p.Duration
	} else {
		m.RollTiming = RollInstant
	}
	m.Base = newBase(TypeMove, name, character.CategoryStatus, character.Turns(first))
	m.Description = description
	m.HandlesOwnExpiry = true
	m.Emoji = moveEmoji[m.Stage]
	return m
}

// NewCastTime is a move that only casts and then completes.
func NewCastTime(name string, turns int, description string) *Move {
	m := NewMove(name, description, max(1, turns), 0, 0)
	m.CastDescription = "is casting"
	return m
}

func (m *Move) emoji() string {
	if e, ok := moveEmoji[m.Stage]; ok {
		return e
	}
	return "✨"
}

func (m *Move) MarkedForRemoval() bool {
	return m.Removal
}

// IsExpired is only true for instant moves, which resolve on apply. Every
// other move leaves through MarkedForRemoval once its last phase ends.
func (m *Move) IsExpired() bool {
	return m.Stage == MoveInstant
}

// CanUse reports whether the move can be used again.
func (m *Move) CanUse() (bool, string) {
	if m.Stage == MoveCooldown {
		if phase := m.Phases[MoveCooldown]; phase != nil {
			return false, fmt.Sprintf("On cooldown (%s)", turnsRemaining(phase.remaining()))
		}
	}
	return m.hasUses()
}

func (m *Move) hasUses() (bool, string) {
	if m.Uses != nil {
		if m.UsesRemaining == nil {
			m.UsesRemaining = character.Turns(*m.Uses)
		}
		if *m.UsesRemaining <= 0 {
			return false, "No uses remaining"
		}
	}
	return true, ""
}

// totalRounds is how long the move keeps its name blocked in the owner's
// action star cooldown table.
func (m *Move) totalRounds() int {
	total := 0
	for _, phase := range m.Phases {
		total += phase.Duration
	}
	return total
}

func (m *Move) applyCosts(c *character.Character) []string {
	var costs []string
	switch {
	case m.MPCost > 0:
		c.Resources.SpendMP(m.MPCost)
		costs = append(costs, fmt.Sprintf("💙 MP: %d", m.MPCost))
	case m.MPCost < 0:
		c.Resources.RestoreMP(-m.MPCost)
		costs = append(costs, fmt.Sprintf("💙 MP: -%d", -m.MPCost))
	}
	switch {
	case m.HPCost > 0:
		c.Resources.TakeDamage(m.HPCost)
		costs = append(costs, fmt.Sprintf("❤️ HP: %d", m.HPCost))
	case m.HPCost < 0:
		c.Resources.Heal(-m.HPCost)
		costs = append(costs, fmt.Sprintf("❤️ Heal: %d", -m.HPCost))
	}
	if m.StarCost > 0 {
		c.ActionStars.Use(m.StarCost)
		costs = append(costs, fmt.Sprintf("⭐ %d", m.StarCost))
	}
	return costs
}

func (m *Move) timingInfo() []string {
	var info []string
	if p := m.Phases[MoveCasting]; p != nil {
		info = append(info, fmt.Sprintf("🔄 %dT Cast", p.Duration))
	}
	if p := m.Phases[MoveActive]; p != nil {
		info = append(info, fmt.Sprintf("⏳ %dT Duration", p.Duration))
	}
	if p := m.Phases[MoveCooldown]; p != nil {
		info = append(info, fmt.Sprintf("⌛ %dT Cooldown", p.Duration))
	}
	return info
}

func (m *Move) OnApply(ctx context.Context, c *character.Character, _ int) (string, error) {
	if existing, ok := c.FindEffect(m.Name).(*Move); ok && existing != m {
		if usable, reason := existing.CanUse(); !usable {
			return "", dnderr.FailedPreconditionf("%s: %s", m.Name, reason)
		}
		return "", dnderr.FailedPreconditionf("%s is already in progress", m.Name)
	}
	if usable, reason := m.hasUses(); !usable {
		return "", dnderr.FailedPreconditionf("%s: %s", m.Name, reason)
	}
	if usable, reason := c.ActionStars.CanUse(m.StarCost, m.Name); !usable {
		return "", dnderr.FailedPreconditionf("%s: %s", m.Name, reason)
	}

	var attackLines []string
	if m.AttackRoll != "" && (m.RollTiming == RollInstant || (m.RollTiming == RollActive && m.Stage == MoveActive)) {
		lines, err := m.attack(ctx, c)
		if err != nil {
			return "", err
		}
		attackLines = lines
	}

	if m.UsesRemaining != nil {
		*m.UsesRemaining--
	}
	costs := m.applyCosts(c)
	if rounds := m.totalRounds(); rounds > 0 {
		c.ActionStars.StartCooldown(m.Name, rounds)
	}

	var main string
	switch {
	case m.CastDescription != "":
		main = fmt.Sprintf("%s %s %s", c.Name, m.CastDescription, m.Name)
	case m.Stage == MoveCasting:
		main = fmt.Sprintf("%s begins casting %s", c.Name, m.Name)
	default:
		main = fmt.Sprintf("%s uses %s", c.Name, m.Name)
	}
	parts := []string{main}
	if len(costs) > 0 {
		parts = append(parts, strings.Join(costs, " | "))
	}
	if info := m.timingInfo(); len(info) > 0 {
		parts = append(parts, strings.Join(info, " | "))
	}

	var details []string
	if len(m.Targets) > 0 {
		label := "Target"
		if len(m.Targets) > 1 {
			label = "Targets"
		}
		details = append(details, fmt.Sprintf("%s: %s", label, strings.Join(m.Targets, ", ")))
	}

	msg := m.format(strings.Join(parts, " | "), details, m.emoji())
	if len(attackLines) > 0 {
		msg += "\n" + strings.Join(attackLines, "\n")
	}
	return msg, nil
}

// attack resolves the move's attack roll against each target in turn.
func (m *Move) attack(ctx context.Context, c *character.Character) ([]string, error) {
	env := m.environment()
	params := &attack.Params{
		Attacker:    c,
		Roll:        m.AttackRoll,
		Damage:      attack.ParseDamage(m.Damage),
		CritRange:   m.CritRange,
		Reason:      m.Name,
		ApplyDamage: m.ApplyDamage,
	}

	if len(m.Targets) == 0 {
		msg, _, err := env.Attacks.ProcessAttack(ctx, params)
		if err != nil {
			return nil, err
		}
		return []string{msg}, nil
	}

	if env.Store == nil {
		return nil, dnderr.FailedPreconditionf("%s needs a character store to reach its targets", m.Name)
	}
	var lines []string
	for _, name := range m.Targets {
		target, err := env.Store.Get(ctx, name)
		if err != nil {
			return nil, dnderr.Wrapf(err, "failed to load target %s", name)
		}
		targeted := *params
		targeted.Targets = []*character.Character{target}
		msg, _, err := env.Attacks.ProcessAttack(ctx, &targeted)
		if err != nil {
			return nil, err
		}
		lines = append(lines, msg)
	}
	return lines, nil
}

// transition moves to the next phase and returns the text describing it,
// or "" when there is nothing to move to.
func (m *Move) transition() string {
	var next MoveState
	var text string

	switch m.Stage {
	case MoveCasting:
		switch {
		case m.Phases[MoveActive] != nil:
			next, text = MoveActive, "activates!"
		case m.Phases[MoveCooldown] != nil:
			next, text = MoveCooldown, "enters cooldown"
		default:
			text = "completes"
			m.Removal = true
		}
	case MoveActive:
		if m.Phases[MoveCooldown] != nil {
			next, text = MoveCooldown, "enters cooldown"
		} else {
			text = "wears off"
			m.Removal = true
		}
	case MoveCooldown:
		text = "cooldown ended"
		m.Removal = true
	default:
		return ""
	}

	if next != "" {
		m.Stage = next
		m.Phases[next].TurnsCompleted = 0
		if next == MoveCooldown {
			m.Targets = nil
		}
	}
	return m.Name + " " + text
}

func (m *Move) OnTurnStart(ctx context.Context, c *character.Character, _ int, turn string) ([]string, error) {
	if c.Name != turn || m.Removal {
		return nil, nil
	}

	var messages []string
	if phase := m.Phases[m.Stage]; phase != nil && phase.complete() {
		if text := m.transition(); text != "" {
			messages = append(messages, m.format(text, nil, m.emoji()))
			if m.Stage == MoveActive && m.RollTiming == RollActive && m.AttackRoll != "" {
				lines, err := m.attack(ctx, c)
				if err != nil {
					return nil, err
				}
				messages = append(messages, lines...)
			}
		}
	}

	phase := m.Phases[m.Stage]
	switch m.Stage {
	case MoveActive:
		if len(messages) == 0 && m.Description != "" && phase != nil {
			details := append(strings.Split(m.Description, ";"), turnsRemaining(phase.remaining()))
			messages = append(messages, m.format(m.Name+" active", details, m.emoji()))
		}
		if m.RollTiming == RollPerTurn && m.AttackRoll != "" {
			lines, err := m.attack(ctx, c)
			if err != nil {
				return nil, err
			}
			messages = append(messages, lines...)
		}
	case MoveCasting:
		if len(messages) == 0 && phase != nil {
			messages = append(messages, m.format("Casting "+m.Name, []string{turnsRemaining(phase.remaining())}, m.emoji()))
		}
	}
	return messages, nil
}

func (m *Move) OnTurnEnd(ctx context.Context, c *character.Character, _ int, turn string) ([]string, error) {
	if c.Name != turn || m.Removal {
		return nil, nil
	}
	phase := m.Phases[m.Stage]
	if phase == nil {
		return nil, nil
	}

	phase.TurnsCompleted++
	if !phase.complete() {
		remaining := []string{turnsRemaining(phase.remaining())}
		switch m.Stage {
		case MoveCasting:
			return []string{m.format("Casting "+m.Name, remaining, m.emoji())}, nil
		case MoveActive:
			return []string{m.format(m.Name+" continues", remaining, m.emoji())}, nil
		case MoveCooldown:
			return []string{m.format(m.Name+" cooldown", remaining, m.emoji())}, nil
		}
		return nil, nil
	}

	var messages []string
	if m.Stage == MoveCasting && m.Phases[MoveActive] != nil && m.RollTiming == RollActive && m.AttackRoll != "" {
		lines, err := m.attack(ctx, c)
		if err != nil {
			return nil, err
		}
		messages = append(messages, lines...)
	}
	if text := m.transition(); text != "" {
		messages = append(messages, m.format(text, nil, m.emoji()))
	}
	return messages, nil
}

func (m *Move) OnExpire(context.Context, *character.Character) (string, error) {
	if m.Stage == MoveInstant {
		return "", nil
	}
	if m.Removal {
		// The transition already announced the end.
		return "", nil
	}
	m.Removal = true
	m.Targets = nil
	return m.format(m.Name+" has ended", nil, m.emoji()), nil
}

func (m *Move) StatusText(c *character.Character) string {
	lines := []string{fmt.Sprintf("%s **%s** (%s)", m.emoji(), m.Name, m.Stage)}
	if phase := m.Phases[m.Stage]; phase != nil {
		lines = append(lines, fmt.Sprintf("• `%s`", turnsRemaining(phase.remaining())))
	}
	lines = append(lines, bullets(m.Description)...)
	if m.AttackRoll != "" {
		attackLine := "Attack: " + m.AttackRoll
		if m.Damage != "" {
			attackLine += " | Damage: " + m.Damage
		}
		lines = append(lines, fmt.Sprintf("• `%s`", attackLine))
	}
	if len(m.Targets) > 0 {
		lines = append(lines, fmt.Sprintf("• `Targets: %s`", strings.Join(m.Targets, ", ")))
	}
	if m.UsesRemaining != nil && m.Uses != nil {
		lines = append(lines, fmt.Sprintf("• `Uses: %d/%d`", *m.UsesRemaining, *m.Uses))
	}
	return strings.Join(lines, "\n")
}
