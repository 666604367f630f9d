// Package uuid hands out identifiers for effects and combats behind an
// interface so tests can pin them.
package uuid

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces unique identifiers.
type Generator interface {
	New() string
}

// GoogleUUIDGenerator returns random v4 UUIDs.
type GoogleUUIDGenerator struct{}

func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// SequenceGenerator returns prefix-1, prefix-2, ... and is meant for tests
// and for reproducible simulations.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}
