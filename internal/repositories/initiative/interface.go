package initiative

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=interface.go

import (
	"context"
	"strings"
	"time"
	"unicode"

	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

// Reserved save names. They are stored under their own name and are
// overwritten in place.
const (
	AutosaveName  = "autosave"
	QuicksaveName = "quicksave"
)

// Save is a persisted turn order. Character data is not part of a save;
// loading one only restores the order, the turn and the round.
type Save struct {
	Name        string    `json:"name"`
	Order       []string  `json:"order"`
	CurrentTurn int       `json:"current_turn"`
	RoundNumber int       `json:"round_number"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}

// Current returns the name of the character whose turn was saved.
func (s *Save) Current() string {
	if s == nil || s.CurrentTurn < 0 || s.CurrentTurn >= len(s.Order) {
		return ""
	}
	return s.Order[s.CurrentTurn]
}

// Validate checks the save can be restored.
func (s *Save) Validate() error {
	if s == nil {
		return dnderr.InvalidArgument("save cannot be nil")
	}
	if len(s.Order) == 0 {
		return dnderr.InvalidArgument("save has no turn order")
	}
	if s.CurrentTurn < 0 || s.CurrentTurn >= len(s.Order) {
		return dnderr.InvalidArgumentf("current turn %d is outside the turn order", s.CurrentTurn).
			WithMeta("save", s.Name)
	}
	if s.RoundNumber < 0 {
		return dnderr.InvalidArgumentf("round number %d is negative", s.RoundNumber).
			WithMeta("save", s.Name)
	}
	return nil
}

// Repository stores initiative saves by name.
type Repository interface {
	// Save writes s under Key(s.Name), replacing any save with that key.
	// An empty name gets a generated one. The timestamp is set on write.
	Save(ctx context.Context, s *Save) error

	// Load finds a save by key, falling back to a case-insensitive match
	// on the stored name.
	Load(ctx context.Context, name string) (*Save, error)

	// List returns every save, newest first.
	List(ctx context.Context) ([]*Save, error)

	Delete(ctx context.Context, name string) error
}

// TimeProvider supplies save timestamps.
type TimeProvider interface {
	Now() time.Time
}

type utcClock struct{}

func (utcClock) Now() time.Time {
	return time.Now().UTC()
}

// IsReserved reports whether name is one of the system save names.
func IsReserved(name string) bool {
	return name == AutosaveName || name == QuicksaveName
}

// Key normalizes a save name for storage: lower case with every other
// character replaced by an underscore. Reserved names are kept.
func Key(name string) string {
	if IsReserved(name) {
		return name
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '_'
	}, strings.TrimSpace(name))
}

// GeneratedName is the name given to a save written without one.
func GeneratedName(now time.Time) string {
	return "save_" + now.UTC().Format("20060102150405")
}

// prepare validates s and fills in the name and timestamp.
func prepare(s *Save, clock TimeProvider) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	now := clock.Now()
	if strings.TrimSpace(s.Name) == "" {
		s.Name = GeneratedName(now)
	}
	s.Timestamp = now
	return Key(s.Name), nil
}

func clone(s *Save) *Save {
	out := *s
	out.Order = append([]string(nil), s.Order...)
	return &out
}
