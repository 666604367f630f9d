package initiative

import (
	"context"
	"strings"
	"sync"

	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

// InMemoryRepository keeps saves in a map. Useful for tests and for
// running without redis.
type InMemoryRepository struct {
	mu    sync.RWMutex
	saves map[string]*Save
	clock TimeProvider
}

// NewInMemory creates an empty repository. A nil clock uses UTC now.
func NewInMemory(clock TimeProvider) *InMemoryRepository {
	if clock == nil {
		clock = utcClock{}
	}
	return &InMemoryRepository{
		saves: make(map[string]*Save),
		clock: clock,
	}
}

func (r *InMemoryRepository) Save(_ context.Context, s *Save) error {
	key, err := prepare(s, r.clock)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves[key] = clone(s)
	return nil
}

func (r *InMemoryRepository) Load(_ context.Context, name string) (*Save, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dnderr.InvalidArgument("save name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.saves[Key(name)]; ok {
		return clone(s), nil
	}
	for _, s := range r.saves {
		if strings.EqualFold(s.Name, name) {
			return clone(s), nil
		}
	}
	return nil, dnderr.NotFoundf("save '%s' not found", name).WithMeta("save", name)
}

func (r *InMemoryRepository) List(_ context.Context) ([]*Save, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	saves := make([]*Save, 0, len(r.saves))
	for _, s := range r.saves {
		saves = append(saves, clone(s))
	}
	return sortNewest(saves), nil
}

func (r *InMemoryRepository) Delete(_ context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return dnderr.InvalidArgument("save name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key(name)
	if _, ok := r.saves[key]; !ok {
		return dnderr.NotFoundf("save '%s' not found", name).WithMeta("save", name)
	}
	delete(r.saves, key)
	return nil
}
