package effects

import (
	"log/slog"
	"sync"

	"github.com/KirkDiggler/initiative-bot/internal/combat/attack"
	"github.com/KirkDiggler/initiative-bot/internal/damage"
	"github.com/KirkDiggler/initiative-bot/internal/dice"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	"github.com/KirkDiggler/initiative-bot/internal/uuid"
)

// Env carries the collaborators effects need while they run. It is bound
// to an effect by the Registry and never serialized.
type Env struct {
	Dice    *dice.Calculator
	Damage  *damage.Resolver
	Attacks *attack.Calculator
	// Store resolves second characters such as siphon and move targets.
	// Effects that need it fail when it is nil.
	Store  character.Store
	IDs    uuid.Generator
	Logger *slog.Logger

	// defaultAttacks is set when Attacks was built here and must follow
	// Store.
	defaultAttacks bool
}

// withDefaults returns a copy of e with every nil collaborator filled in.
func (e *Env) withDefaults() *Env {
	out := &Env{}
	if e != nil {
		*out = *e
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Dice == nil {
		out.Dice = dice.NewCalculator(&dice.CalculatorConfig{Logger: out.Logger})
	}
	if out.Damage == nil {
		out.Damage = damage.NewResolver(out.Logger)
	}
	if out.Attacks == nil {
		out.Attacks = out.newAttacks()
		out.defaultAttacks = true
	}
	if out.IDs == nil {
		out.IDs = uuid.NewGoogleUUIDGenerator()
	}
	return out
}

func (e *Env) newAttacks() *attack.Calculator {
	return attack.NewCalculator(&attack.Config{
		Dice:   e.Dice,
		Damage: e.Damage,
		Store:  e.Store,
		Logger: e.Logger,
	})
}

var (
	fallbackOnce sync.Once
	fallbackEnv  *Env
)

// unboundEnv serves effects that were constructed directly and never
// passed through a Registry.
func unboundEnv() *Env {
	fallbackOnce.Do(func() {
		fallbackEnv = (&Env{}).withDefaults()
	})
	return fallbackEnv
}
