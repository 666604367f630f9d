package character

import "context"

//go:generate mockgen -destination=mock/mock_store.go -package=mockcharacter -source=store.go

// Store loads and persists characters by name. Effects that touch a
// second character (siphon targets, move targets) go through it, and the
// repositories implement it.
type Store interface {
	Get(ctx context.Context, name string) (*Character, error)
	Save(ctx context.Context, c *Character) error
}
