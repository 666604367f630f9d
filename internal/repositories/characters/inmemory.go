package characters

import (
	"context"
	"strings"
	"sync"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the character
// repository. It holds the live characters, so a saved character is the
// same value the next Get returns.
type InMemoryRepository struct {
	mu         sync.RWMutex
	characters map[string]*character.Character
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		characters: make(map[string]*character.Character),
	}
}

// Create stores a new character
func (r *InMemoryRepository) Create(_ context.Context, c *character.Character) error {
	if err := validate(c); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[Key(c.Name)]; exists {
		return dnderr.AlreadyExistsf("character '%s' already exists", c.Name).
			WithMeta("character", c.Name)
	}
	r.characters[Key(c.Name)] = c
	return nil
}

// Get retrieves a character by name
func (r *InMemoryRepository) Get(_ context.Context, name string) (*character.Character, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dnderr.InvalidArgument("character name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.characters[Key(name)]
	if !exists {
		return nil, dnderr.NotFoundf("character '%s' not found", name).
			WithMeta("character", name)
	}
	return c, nil
}

// Save stores the character, replacing any with the same name
func (r *InMemoryRepository) Save(_ context.Context, c *character.Character) error {
	if err := validate(c); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.characters[Key(c.Name)] = c
	return nil
}

// List returns every character ordered by name
func (r *InMemoryRepository) List(_ context.Context) ([]*character.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*character.Character, 0, len(r.characters))
	for _, c := range r.characters {
		list = append(list, c)
	}
	return sortByName(list), nil
}

// Delete removes a character
func (r *InMemoryRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[Key(name)]; !exists {
		return dnderr.NotFoundf("character '%s' not found", name).
			WithMeta("character", name)
	}
	delete(r.characters, Key(name))
	return nil
}
