package logging

// Log level values
const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarn    = "warn"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Log format values
const (
	FormatJSON = "json"
	FormatText = "text"
)

const (
	DefaultService = "initiative-bot"
	EnvironmentDev = "dev"
)

// Attribute keys
const (
	AttrService     = "service"
	AttrEnvironment = "environment"
	AttrComponent   = "component"
	AttrCombatID    = "combat_id"
)
