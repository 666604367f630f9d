package damage

import "strings"

// Type is a damage type name as stored in defense maps.
type Type string

const (
	Slashing    Type = "slashing"
	Piercing    Type = "piercing"
	Bludgeoning Type = "bludgeoning"

	Fire     Type = "fire"
	Ice      Type = "ice"
	Electric Type = "electric"
	Radiant  Type = "radiant"
	Necrotic Type = "necrotic"
	Acid     Type = "acid"
	Poison   Type = "poison"
	Psychic  Type = "psychic"
	Thunder  Type = "thunder"
	Force    Type = "force"
	Sonic    Type = "sonic"
	Wind     Type = "wind"
	Water    Type = "water"

	Generic Type = "generic"
	True    Type = "true"
)

// Category groups damage types.
type Category string

const (
	CategoryPhysical Category = "physical"
	CategoryMagical  Category = "magical"
	CategorySpecial  Category = "special"
)

// All lists every known damage type.
var All = []Type{
	Slashing, Piercing, Bludgeoning,
	Fire, Ice, Electric, Radiant, Necrotic, Acid, Poison, Psychic, Thunder, Force, Sonic, Wind, Water,
	Generic, True,
}

var emoji = map[Type]string{
	Slashing:    "⚔️",
	Piercing:    "🏹",
	Bludgeoning: "🔨",
	Fire:        "🔥",
	Ice:         "❄️",
	Electric:    "⚡",
	Radiant:     "✨",
	Necrotic:    "💀",
	Acid:        "🧪",
	Poison:      "☠️",
	Psychic:     "🧠",
	Thunder:     "🌩️",
	Force:       "💫",
	Sonic:       "🔊",
	Wind:        "🌪️",
	Water:       "🌊",
	Generic:     "💥",
	True:        "💯",
}

// Parse maps a name to a Type. Unknown names become Generic.
func Parse(name string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := emoji[t]; ok {
		return t
	}
	return Generic
}

// IsKnown reports whether name is one of the defined types.
func IsKnown(name string) bool {
	_, ok := emoji[Type(strings.ToLower(strings.TrimSpace(name)))]
	return ok
}

func (t Type) String() string {
	return string(t)
}

func (t Type) Category() Category {
	switch t {
	case Slashing, Piercing, Bludgeoning:
		return CategoryPhysical
	case Generic, True:
		return CategorySpecial
	}
	return CategoryMagical
}

func (t Type) Emoji() string {
	if e, ok := emoji[t]; ok {
		return e
	}
	return emoji[Generic]
}
