package effects

// Type discriminators written to the "type" field of every persisted
// effect.
const (
	TypeAC            = "ac"
	TypeResistance    = "resistance"
	TypeVulnerability = "vulnerability"
	TypeWeakness      = "weakness"
	TypeTempHP        = "temp_hp"
	TypeBurn          = "burn"
	TypeShock         = "shock"
	TypeHeat          = "heat"
	TypeHeatSource    = "heat_source"
	TypeDrain         = "drain"
	TypeRegen         = "regen"
	TypeFrostbite     = "frostbite"
	TypeSkip          = "skip"
	TypeMove          = "move"
	TypeCondition     = "condition"
	TypeRollModifier  = "roll_modifier"
	TypeCustom        = "custom"
)

// ResourceType is the pool a drain or regen effect works on.
type ResourceType string

const (
	ResourceHP ResourceType = "hp"
	ResourceMP ResourceType = "mp"
)

// MoveState is the phase a move is in.
type MoveState string

const (
	MoveInstant  MoveState = "instant"
	MoveCasting  MoveState = "casting"
	MoveActive   MoveState = "active"
	MoveCooldown MoveState = "cooldown"
)

// RollTiming decides when a move rolls its attack.
type RollTiming string

const (
	RollInstant RollTiming = "instant" // when the move is used
	RollActive  RollTiming = "active"  // when the active phase starts
	RollPerTurn RollTiming = "per_turn"
)
