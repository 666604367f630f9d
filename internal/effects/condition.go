package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

// ConditionType names one entry of the condition catalogue.
type ConditionType string

const (
	// Movement
	ConditionProne      ConditionType = "prone"
	ConditionGrappled   ConditionType = "grappled"
	ConditionRestrained ConditionType = "restrained"
	ConditionAirborne   ConditionType = "airborne"
	ConditionSlowed     ConditionType = "slowed"

	// Combat
	ConditionBlinded  ConditionType = "blinded"
	ConditionDeafened ConditionType = "deafened"
	ConditionMarked   ConditionType = "marked"
	ConditionGuarded  ConditionType = "guarded"
	ConditionFlanked  ConditionType = "flanked"

	// Control
	ConditionIncapacitated ConditionType = "incapacitated"
	ConditionParalyzed     ConditionType = "paralyzed"
	ConditionCharmed       ConditionType = "charmed"
	ConditionFrightened    ConditionType = "frightened"
	ConditionConfused      ConditionType = "confused"

	// Situational
	ConditionHidden        ConditionType = "hidden"
	ConditionInvisible     ConditionType = "invisible"
	ConditionUnderwater    ConditionType = "underwater"
	ConditionConcentrating ConditionType = "concentrating"
	ConditionSurprised     ConditionType = "surprised"

	// State
	ConditionBleeding  ConditionType = "bleeding"
	ConditionPoisoned  ConditionType = "poisoned"
	ConditionSilenced  ConditionType = "silenced"
	ConditionExhausted ConditionType = "exhausted"
)

// ConditionInfo is the display text and tag set of one condition. Apply
// and Remove take the character name.
type ConditionInfo struct {
	Emoji   string
	Apply   string
	Status  string
	Remove  string
	Effects []string
	Tags    []string
}

// ParseCondition accepts a condition name in any case.
func ParseCondition(name string) (ConditionType, error) {
	c := ConditionType(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := Conditions[c]; !ok {
		return "", dnderr.Validationf("unknown condition %q", name)
	}
	return c, nil
}

func (c ConditionType) Title() string {
	return title(string(c))
}

// Conditions is the condition catalogue.
var Conditions = map[ConditionType]ConditionInfo{
	ConditionProne: {
		Emoji:   "🔻",
		Apply:   "%s falls prone",
		Status:  "Prone: Movement halved, must use half to stand",
		Remove:  "%s stands up",
		Effects: []string{"Ranged attacks against you have disadvantage", "Melee attacks within 5 ft have advantage", "Your attacks have disadvantage"},
		Tags:    []string{"prone", "disadvantage_attack", "vulnerable_melee"},
	},
	ConditionGrappled: {
		Emoji:   "✋",
		Apply:   "%s is grappled",
		Status:  "Grappled: Movement speed becomes 0",
		Remove:  "%s breaks free from the grapple",
		Effects: []string{"Cannot move or be moved", "Can attempt to break free using an action"},
		Tags:    []string{"grappled", "no_movement"},
	},
	ConditionRestrained: {
		Emoji:   "🕸️",
		Apply:   "%s becomes restrained",
		Status:  "Restrained: Cannot move, attacks affected",
		Remove:  "%s is no longer restrained",
		Effects: []string{"Speed becomes 0", "Attacks against you have advantage", "Your attacks have disadvantage", "Disadvantage on DEX saves"},
		Tags:    []string{"restrained", "no_movement", "disadvantage_attack"},
	},
	ConditionAirborne: {
		Emoji:   "🌪️",
		Apply:   "%s is launched into the air",
		Status:  "Airborne: Hovering above ground",
		Remove:  "%s returns to the ground",
		Effects: []string{"Out of melee range from grounded enemies", "Immune to ground-based effects", "Can be knocked prone (will fall)"},
		Tags:    []string{"airborne", "flying"},
	},
	ConditionSlowed: {
		Emoji:   "🐌",
		Apply:   "%s is slowed",
		Status:  "Slowed: Movement speed halved",
		Remove:  "%s is no longer slowed",
		Effects: []string{"Movement speed is halved", "Cannot take reactions"},
		Tags:    []string{"slowed", "half_movement", "no_reactions"},
	},
	ConditionBlinded: {
		Emoji:   "👁️",
		Apply:   "%s is blinded",
		Status:  "Blinded: Cannot see",
		Remove:  "%s can see again",
		Effects: []string{"Automatically fail sight-based checks", "Attacks against you have advantage", "Your attacks have disadvantage"},
		Tags:    []string{"blinded", "disadvantage_attack"},
	},
	ConditionDeafened: {
		Emoji:   "👂",
		Apply:   "%s is deafened",
		Status:  "Deafened: Cannot hear",
		Remove:  "%s can hear again",
		Effects: []string{"Automatically fail hearing-based checks", "Cannot receive verbal commands"},
		Tags:    []string{"deafened"},
	},
	ConditionMarked: {
		Emoji:   "🎯",
		Apply:   "%s is marked",
		Status:  "Marked: Tagged for follow-up",
		Remove:  "%s is no longer marked",
		Effects: []string{"Next attack against you has advantage", "Moving triggers reactions from marker"},
		Tags:    []string{"marked", "vulnerable"},
	},
	ConditionGuarded: {
		Emoji:   "🛡️",
		Apply:   "%s takes a defensive stance",
		Status:  "Guarded: Enhanced defenses",
		Remove:  "%s lowers their guard",
		Effects: []string{"Attacks against you have disadvantage", "Advantage on DEX saves", "Reaction to reduce damage"},
		Tags:    []string{"guarded", "defensive"},
	},
	ConditionFlanked: {
		Emoji:   "⚔️",
		Apply:   "%s is flanked",
		Status:  "Flanked: Surrounded by enemies",
		Remove:  "%s is no longer flanked",
		Effects: []string{"Attacks against you have advantage", "Cannot take reactions"},
		Tags:    []string{"flanked", "vulnerable", "no_reactions"},
	},
	ConditionIncapacitated: {
		Emoji:   "💫",
		Apply:   "%s is incapacitated",
		Status:  "Incapacitated: Cannot take actions",
		Remove:  "%s regains their senses",
		Effects: []string{"Cannot take actions or reactions", "Cannot move", "Automatically fail STR and DEX saves"},
		Tags:    []string{"incapacitated", "no_actions", "no_movement"},
	},
	ConditionParalyzed: {
		Emoji:   "⚡",
		Apply:   "%s is paralyzed",
		Status:  "Paralyzed: Cannot move or act",
		Remove:  "%s can move again",
		Effects: []string{"Cannot move or take actions", "Automatically fail STR and DEX saves", "Attacks against you have advantage", "Melee hits are critical hits"},
		Tags:    []string{"paralyzed", "no_movement", "no_actions"},
	},
	ConditionCharmed: {
		Emoji:   "💝",
		Apply:   "%s is charmed",
		Status:  "Charmed: Friendly to source",
		Remove:  "%s breaks free from the charm",
		Effects: []string{"Cannot attack the charmer", "Charmer has advantage on social checks", "Disadvantage against charmer's effects"},
		Tags:    []string{"charmed"},
	},
	ConditionFrightened: {
		Emoji:   "😨",
		Apply:   "%s becomes frightened",
		Status:  "Frightened: Must move away from source",
		Remove:  "%s overcomes their fear",
		Effects: []string{"Must move away from source if possible", "Cannot willingly move closer", "Disadvantage while source is visible"},
		Tags:    []string{"frightened", "disadvantage_near_source"},
	},
	ConditionConfused: {
		Emoji:   "💫",
		Apply:   "%s becomes confused",
		Status:  "Confused: Actions unpredictable",
		Remove:  "%s regains clarity",
		Effects: []string{"Roll for random action each turn", "May attack self or allies", "May waste action doing nothing"},
		Tags:    []string{"confused", "random_actions"},
	},
	ConditionHidden: {
		Emoji:   "👥",
		Apply:   "%s becomes hidden",
		Status:  "Hidden: Concealed from others",
		Remove:  "%s is revealed",
		Effects: []string{"Attacks against you have disadvantage", "Your attacks have advantage", "Location must be guessed"},
		Tags:    []string{"hidden", "advantage_attack"},
	},
	ConditionInvisible: {
		Emoji:   "👻",
		Apply:   "%s turns invisible",
		Status:  "Invisible: Cannot be seen",
		Remove:  "%s becomes visible",
		Effects: []string{"Attacks against you have disadvantage", "Your attacks have advantage", "Can hide without cover"},
		Tags:    []string{"invisible", "advantage_attack"},
	},
	ConditionUnderwater: {
		Emoji:   "💧",
		Apply:   "%s is submerged",
		Status:  "Underwater: Submerged in liquid",
		Remove:  "%s surfaces",
		Effects: []string{"Most attacks have disadvantage", "Fire damage reduced/negated", "Must hold breath or drown"},
		Tags:    []string{"underwater", "disadvantage_attack"},
	},
	ConditionConcentrating: {
		Emoji:   "🎯",
		Apply:   "%s begins concentrating",
		Status:  "Concentrating: Maintaining effect",
		Remove:  "%s loses concentration",
		Effects: []string{"Must make CON save when damaged", "DC 10 or half damage taken", "Failure ends concentration"},
		Tags:    []string{"concentrating"},
	},
	ConditionSurprised: {
		Emoji:   "😱",
		Apply:   "%s is surprised",
		Status:  "Surprised: Caught off guard",
		Remove:  "%s regains composure",
		Effects: []string{"Cannot move or take actions", "Cannot take reactions until turn ends", "Attacks against you have advantage"},
		Tags:    []string{"surprised", "no_actions", "no_reactions"},
	},
	ConditionBleeding: {
		Emoji:   "🩸",
		Apply:   "%s starts bleeding",
		Status:  "Bleeding: Taking damage over time",
		Remove:  "%s stops bleeding",
		Effects: []string{"Take 1d4 damage at start of turn", "Can be stopped with medicine check", "Leaves blood trail"},
		Tags:    []string{"bleeding", "dot"},
	},
	ConditionPoisoned: {
		Emoji:   "☠️",
		Apply:   "%s is poisoned",
		Status:  "Poisoned: System compromised",
		Remove:  "%s is cured of poison",
		Effects: []string{"Disadvantage on all rolls", "Take 1d4 poison damage per turn", "Cannot regain HP"},
		Tags:    []string{"poisoned", "disadvantage_all"},
	},
	ConditionSilenced: {
		Emoji:   "🤫",
		Apply:   "%s is silenced",
		Status:  "Silenced: Cannot make sound",
		Remove:  "%s can speak again",
		Effects: []string{"Cannot cast verbal spells", "Cannot speak or yell", "Advantage on stealth checks"},
		Tags:    []string{"silenced", "no_verbal"},
	},
	ConditionExhausted: {
		Emoji:   "😫",
		Apply:   "%s becomes exhausted",
		Status:  "Exhausted: Severely fatigued",
		Remove:  "%s recovers from exhaustion",
		Effects: []string{"Disadvantage on all checks", "Speed halved", "Max HP reduced by half"},
		Tags:    []string{"exhausted", "disadvantage_all", "half_movement"},
	},
}

// Condition applies one or more catalogue conditions and their tags.
type Condition struct {
	Base
	Conditions []ConditionType `json:"conditions"`
	Source     string          `json:"source,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
}

func NewCondition(conditions []ConditionType, duration *int, source string) *Condition {
	c := &Condition{
		Base:       newBase(TypeCondition, conditionName(conditions), character.CategoryStatus, duration),
		Conditions: conditions,
		Source:     source,
		Tags:       conditionTags(conditions),
	}
	c.Emoji = "⚠️"
	return c
}

func conditionName(conditions []ConditionType) string {
	switch len(conditions) {
	case 0:
		return "Condition"
	case 1:
		return conditions[0].Title()
	case 2:
		return conditions[0].Title() + " & " + conditions[1].Title()
	}
	return fmt.Sprintf("Multiple Conditions (%d)", len(conditions))
}

func conditionTags(conditions []ConditionType) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, cond := range conditions {
		for _, tag := range Conditions[cond].Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// listText joins names as "A", "A and B" or "A, B, and C".
func (c *Condition) listText() string {
	names := make([]string, len(c.Conditions))
	for i, cond := range c.Conditions {
		names[i] = cond.Title()
	}
	switch len(names) {
	case 0:
		return c.Name
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
}

func (c *Condition) OnApply(_ context.Context, ch *character.Character, _ int) (string, error) {
	ch.AddConditionTags(c.Tags...)

	var parts, details []string
	for _, cond := range c.Conditions {
		info := Conditions[cond]
		parts = append(parts, fmt.Sprintf("%s %s", info.Emoji, fmt.Sprintf(info.Apply, ch.Name)))
		details = append(details, info.Effects...)
	}
	if c.Permanent {
		details = append(details, "Duration: Permanent")
	} else {
		details = append(details, c.durationDetails()...)
	}
	if c.Source != "" {
		details = append(details, "Source: "+c.Source)
	}
	return c.format(strings.Join(parts, "; "), details, ""), nil
}

func (c *Condition) OnTurnStart(_ context.Context, ch *character.Character, round int, turn string) ([]string, error) {
	if ch.Name != turn || len(c.Conditions) == 0 {
		return nil, nil
	}

	var parts, details []string
	for _, cond := range c.Conditions {
		info := Conditions[cond]
		parts = append(parts, fmt.Sprintf("%s %s", info.Emoji, info.Status))
		details = append(details, info.Effects...)
	}
	if remaining, _ := c.ProcessDuration(round, turn); remaining > 0 {
		details = append(details, turnsRemaining(remaining))
	}
	return []string{c.format(strings.Join(parts, "; "), details, "")}, nil
}

func (c *Condition) OnTurnEnd(_ context.Context, ch *character.Character, round int, turn string) ([]string, error) {
	if ch.Name != turn || c.Permanent {
		return nil, nil
	}
	remaining, expire := c.ProcessDuration(round, turn)
	switch {
	case expire:
		if c.ExpiryMessageSent {
			return nil, nil
		}
		return []string{c.expireNow(ch, round, fmt.Sprintf("%s will wear off from %s", c.listText(), ch.Name), "")}, nil
	case remaining > 0:
		return []string{c.format(
			fmt.Sprintf("%s continues to affect %s", c.listText(), ch.Name),
			[]string{turnsRemaining(remaining)},
			"",
		)}, nil
	}
	return nil, nil
}

func (c *Condition) OnExpire(_ context.Context, ch *character.Character) (string, error) {
	ch.RemoveConditionTags(c.Tags...)

	var parts []string
	for _, cond := range c.Conditions {
		info := Conditions[cond]
		parts = append(parts, fmt.Sprintf("%s %s", info.Emoji, fmt.Sprintf(info.Remove, ch.Name)))
	}
	return c.format(strings.Join(parts, "; "), nil, ""), nil
}

func (c *Condition) StatusText(ch *character.Character) string {
	lines := []string{fmt.Sprintf("⚠️ **%s**", c.Name)}
	for _, cond := range c.Conditions {
		info := Conditions[cond]
		lines = append(lines, fmt.Sprintf("• %s `%s`: %s", info.Emoji, cond.Title(), info.Status))
		if len(info.Effects) > 0 {
			lines = append(lines, fmt.Sprintf("  ↳ `%s`", info.Effects[0]))
			if len(info.Effects) > 1 {
				lines = append(lines, fmt.Sprintf("  ↳ `+%d more effects`", len(info.Effects)-1))
			}
		}
	}
	lines = append(lines, c.durationStatus(ch)...)
	if c.Source != "" {
		lines = append(lines, fmt.Sprintf("• `Source: %s`", c.Source))
	}
	return strings.Join(lines, "\n")
}
