package character

import (
	"strings"
)

// StatType names one of the six ability scores.
type StatType string

const (
	StatStrength     StatType = "strength"
	StatDexterity    StatType = "dexterity"
	StatConstitution StatType = "constitution"
	StatIntelligence StatType = "intelligence"
	StatWisdom       StatType = "wisdom"
	StatCharisma     StatType = "charisma"
)

// AllStats lists the ability scores in sheet order.
var AllStats = []StatType{
	StatStrength, StatDexterity, StatConstitution,
	StatIntelligence, StatWisdom, StatCharisma,
}

// ShortName returns the three letter abbreviation (str, dex, ...).
func (s StatType) ShortName() string {
	if len(s) < 3 {
		return string(s)
	}
	return string(s)[:3]
}

// ParseStat accepts either the short or the long form, case-insensitive.
func ParseStat(token string) (StatType, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	for _, stat := range AllStats {
		if token == string(stat) || token == stat.ShortName() {
			return stat, true
		}
	}
	return "", false
}

// Stats holds base and modified ability scores.
type Stats struct {
	Base     map[StatType]int `json:"base"`
	Modified map[StatType]int `json:"modified"`
}

// NewStats builds stats with identical base and modified values.
func NewStats(scores map[StatType]int) Stats {
	base := make(map[StatType]int, len(AllStats))
	modified := make(map[StatType]int, len(AllStats))
	for _, stat := range AllStats {
		value, ok := scores[stat]
		if !ok {
			value = 10
		}
		base[stat] = value
		modified[stat] = value
	}
	return Stats{Base: base, Modified: modified}
}

// Modifier returns (score-10)/2 rounded down using the modified score.
func (s Stats) Modifier(stat StatType) int {
	value, ok := s.Modified[stat]
	if !ok {
		value = 10
	}
	return floorDiv(value-10, 2)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Character is a combatant. Name is the identity used by the turn order
// and by effects and must be unique across the roster.
type Character struct {
	Name            string      `json:"name"`
	Stats           Stats       `json:"stats"`
	Resources       Resources   `json:"resources"`
	Defense         Defense     `json:"defense"`
	BaseProficiency int         `json:"base_proficiency"`
	ActionStars     ActionStars `json:"action_stars"`

	// Effects is the ordered list of active effects. It is persisted by the
	// repositories through the effect registry, not by encoding/json.
	Effects []Effect `json:"-"`

	EffectFeedback []*EffectFeedback `json:"effect_feedback,omitempty"`

	// ConditionTags counts the active conditions contributing each tag.
	ConditionTags map[string]int `json:"condition_tags,omitempty"`

	// RoundNumber is only set while the effects of this character's own turn
	// start or end are processed. It is nil during the action in between.
	RoundNumber *int `json:"-"`
}

// New creates a character with full HP/MP and AC equal to baseAC.
func New(name string, stats Stats, maxHP, maxMP, baseAC int) *Character {
	return &Character{
		Name:            name,
		Stats:           stats,
		Resources:       NewResources(maxHP, maxMP),
		Defense:         NewDefense(baseAC),
		BaseProficiency: 2,
		ActionStars:     NewActionStars(DefaultMaxStars),
	}
}

// StatModifier is a convenience for Stats.Modifier.
func (c *Character) StatModifier(stat StatType) int {
	return c.Stats.Modifier(stat)
}

// FindEffect returns the first effect whose name matches case-insensitively.
func (c *Character) FindEffect(name string) Effect {
	for _, effect := range c.Effects {
		if strings.EqualFold(effect.State().Name, name) {
			return effect
		}
	}
	return nil
}

// RemoveEffect drops effect from the list by identity. It does not run
// any lifecycle hook.
func (c *Character) RemoveEffect(effect Effect) bool {
	for i, existing := range c.Effects {
		if existing == effect {
			c.Effects = append(c.Effects[:i], c.Effects[i+1:]...)
			return true
		}
	}
	return false
}

// HasEffect reports whether effect is still attached.
func (c *Character) HasEffect(effect Effect) bool {
	for _, existing := range c.Effects {
		if existing == effect {
			return true
		}
	}
	return false
}

// AddConditionTags increments the reference count of each tag.
func (c *Character) AddConditionTags(tags ...string) {
	if c.ConditionTags == nil {
		c.ConditionTags = make(map[string]int)
	}
	for _, tag := range tags {
		c.ConditionTags[tag]++
	}
}

// RemoveConditionTags decrements each tag and forgets it at zero.
func (c *Character) RemoveConditionTags(tags ...string) {
	for _, tag := range tags {
		if c.ConditionTags[tag] <= 1 {
			delete(c.ConditionTags, tag)
			continue
		}
		c.ConditionTags[tag]--
	}
}

// HasConditionTag is the query surface for other systems.
func (c *Character) HasConditionTag(tag string) bool {
	return c.ConditionTags[tag] > 0
}

// SetRoundNumber marks the character as being processed in round.
func (c *Character) SetRoundNumber(round int) {
	c.RoundNumber = &round
}

// ClearRoundNumber removes the transient round marker.
func (c *Character) ClearRoundNumber() {
	c.RoundNumber = nil
}

// ResetCombatState clears per-combat resources: stars and cooldowns, temp
// HP, effect-sourced resistances and vulnerabilities, and AC modifiers.
func (c *Character) ResetCombatState() {
	c.ActionStars.Reset()
	c.Resources.ClearTempHP()
	c.Defense.ResetCombatState()
}
