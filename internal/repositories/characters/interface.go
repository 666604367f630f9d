package characters

//go:generate mockgen -destination=mock/mock.go -package=mockcharacters -source=interface.go

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

// Repository defines the interface for character persistence. Characters
// are keyed by name, case-insensitively.
type Repository interface {
	character.Store

	// Create stores a new character and fails when the name is taken.
	Create(ctx context.Context, c *character.Character) error

	// List returns every character ordered by name.
	List(ctx context.Context) ([]*character.Character, error)

	Delete(ctx context.Context, name string) error
}

// EffectCodec persists effect lists. *effects.Registry implements it.
type EffectCodec interface {
	EncodeAll(list []character.Effect) ([]json.RawMessage, error)
	DecodeAll(docs []json.RawMessage) ([]character.Effect, error)
}

// Key normalizes a character name for lookups.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
