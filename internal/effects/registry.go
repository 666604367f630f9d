package effects

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

// Factory returns a zero value of one effect type, ready to be decoded
// into.
type Factory func() character.Effect

// Registry maps type discriminators to factories and binds the runtime
// environment to every effect it creates or decodes. Build one at start
// up and share it.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	env       *Env
}

// NewRegistry creates a registry with the built-in effect types. A nil
// env gets default collaborators.
func NewRegistry(env *Env) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		env:       env.withDefaults(),
	}

	r.Register(TypeAC, func() character.Effect { return &AC{} })
	r.Register(TypeResistance, func() character.Effect { return &Resistance{} })
	r.Register(TypeVulnerability, func() character.Effect { return &Vulnerability{} })
	r.Register(TypeWeakness, func() character.Effect { return &Weakness{} })
	r.Register(TypeTempHP, func() character.Effect { return &TempHP{} })
	r.Register(TypeBurn, func() character.Effect { return &Burn{} })
	r.Register(TypeShock, func() character.Effect { return &Shock{} })
	r.Register(TypeHeat, func() character.Effect { return &Heat{} })
	r.Register(TypeHeatSource, func() character.Effect { return &HeatSource{} })
	r.Register(TypeDrain, func() character.Effect { return &Drain{} })
	r.Register(TypeRegen, func() character.Effect { return &Regen{} })
	r.Register(TypeFrostbite, func() character.Effect { return &Frostbite{} })
	r.Register(TypeSkip, func() character.Effect { return &Skip{} })
	r.Register(TypeMove, func() character.Effect { return &Move{} })
	r.Register(TypeCondition, func() character.Effect { return &Condition{} })
	r.Register(TypeRollModifier, func() character.Effect { return &RollModifier{} })
	r.Register(TypeCustom, func() character.Effect { return &Custom{} })

	return r
}

// Env returns the environment bound to effects from this registry.
func (r *Registry) Env() *Env {
	return r.env
}

// SetStore attaches the character store once it exists. Stores that
// persist effects decode them through this registry, so they are usually
// built after it. Call it during start up, before effects are processed.
func (r *Registry) SetStore(store character.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.env.Store = store
	if r.env.defaultAttacks {
		r.env.Attacks = r.env.newAttacks()
	}
}

// Register adds or replaces the factory for typ.
func (r *Registry) Register(typ string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typ] = factory
}

// Types lists the registered discriminators in order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for typ := range r.factories {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// New creates an empty, bound effect of type typ.
func (r *Registry) New(typ string) (character.Effect, error) {
	r.mu.RLock()
	factory, ok := r.factories[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, dnderr.Validationf("unknown effect type %q", typ).
			WithMeta("type", typ)
	}

	effect := factory()
	r.Bind(effect)
	return effect, nil
}

// Bind attaches the registry environment to an effect built outside the
// registry.
func (r *Registry) Bind(effect character.Effect) {
	if b, ok := effect.(binder); ok {
		b.bind(r.env)
	}
}

// Encode writes the flat persisted form of an effect.
func (r *Registry) Encode(effect character.Effect) ([]byte, error) {
	if effect == nil {
		return nil, dnderr.InvalidArgument("effect is required")
	}
	if effect.State().Type == "" {
		return nil, dnderr.Validationf("effect %s has no type", effect.State().Name)
	}

	data, err := json.Marshal(effect)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to encode effect %s", effect.State().Name)
	}
	return data, nil
}

// Decode rebuilds an effect from its persisted form.
func (r *Registry) Decode(data []byte) (character.Effect, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeValidation, "failed to read effect type")
	}
	if header.Type == "" {
		return nil, dnderr.Validation("effect document has no type")
	}

	effect, err := r.New(header.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, effect); err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeValidation, "failed to decode "+header.Type+" effect")
	}
	effect.State().Normalize()
	return effect, nil
}

// EncodeAll encodes an effect list in order.
func (r *Registry) EncodeAll(list []character.Effect) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(list))
	for _, effect := range list {
		data, err := r.Encode(effect)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// DecodeAll decodes an effect list in order. The first bad document fails
// the whole list.
func (r *Registry) DecodeAll(docs []json.RawMessage) ([]character.Effect, error) {
	out := make([]character.Effect, 0, len(docs))
	for i, doc := range docs {
		effect, err := r.Decode(doc)
		if err != nil {
			return nil, dnderr.Wrapf(err, "effect %d", i)
		}
		out = append(out, effect)
	}
	return out, nil
}
