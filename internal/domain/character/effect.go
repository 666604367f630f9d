package character

import "context"

// EffectCategory groups effects for display.
type EffectCategory string

const (
	CategoryCombat   EffectCategory = "combat"
	CategoryStatus   EffectCategory = "status"
	CategoryResource EffectCategory = "resource"
	CategoryCustom   EffectCategory = "custom"
)

// Effect is a time-bounded or permanent modification to a character.
//
// OnTurnStart and OnTurnEnd must return nothing when c.Name != turn. The
// processor relies on that to keep effects from firing on another
// character's turn.
type Effect interface {
	State() *EffectState

	OnApply(ctx context.Context, c *Character, round int) (string, error)
	OnTurnStart(ctx context.Context, c *Character, round int, turn string) ([]string, error)
	OnTurnEnd(ctx context.Context, c *Character, round int, turn string) ([]string, error)
	OnExpire(ctx context.Context, c *Character) (string, error)

	IsExpired() bool
	StatusText(c *Character) string
}

// EffectState is the data every effect carries. Concrete effects embed it
// (through effects.Base) so the persisted form stays a flat document.
type EffectState struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Category    EffectCategory `json:"category"`

	// Duration is the full length in turns. Nil means permanent.
	Duration  *int          `json:"duration"`
	Permanent bool          `json:"permanent"`
	Timing    *EffectTiming `json:"timing,omitempty"`

	HandlesOwnExpiry  bool `json:"handles_own_expiry,omitempty"`
	MarkedForExpiry   bool `json:"marked_for_expiry,omitempty"`
	ExpiryMessageSent bool `json:"expiry_message_sent,omitempty"`
	WillExpireNext    bool `json:"will_expire_next,omitempty"`
}

// EffectTiming anchors a timed effect to the owner's turn it was applied on.
type EffectTiming struct {
	StartRound int    `json:"start_round"`
	StartTurn  string `json:"start_turn"`
	Duration   *int   `json:"duration"`

	// PreTurn is set when the effect landed in StartRound before the
	// owner had acted, so that round already counts as completed.
	PreTurn bool `json:"pre_turn,omitempty"`
}

// Turns wraps n for Duration fields.
func Turns(n int) *int {
	return &n
}

// Normalize enforces that exactly one of Permanent and Duration governs
// removal.
func (s *EffectState) Normalize() {
	if s.Permanent || s.Duration == nil {
		s.Permanent = true
		s.Duration = nil
	}
	if s.Category == "" {
		s.Category = CategoryCustom
	}
}

// InitializeTiming anchors the effect to owner's turn in round. It also
// resets expiry flags, so it doubles as a refresh when stacks merge.
func (s *EffectState) InitializeTiming(round int, owner string, preTurn bool) {
	s.MarkedForExpiry = false
	s.ExpiryMessageSent = false
	s.WillExpireNext = false
	if s.Permanent {
		s.Timing = nil
		return
	}

	var duration *int
	if s.Duration != nil {
		duration = Turns(*s.Duration)
	}
	s.Timing = &EffectTiming{
		StartRound: round,
		StartTurn:  owner,
		Duration:   duration,
		PreTurn:    preTurn,
	}
}

// Elapsed is the number of the owner's rounds completed since application.
func (t *EffectTiming) Elapsed(round int) int {
	elapsed := round - t.StartRound
	if t.PreTurn {
		elapsed++
	}
	return max(0, elapsed)
}

// ProcessDuration returns the turns still to run and whether the effect
// should expire now. Only the owner's own turn can expire an effect.
func (t *EffectTiming) ProcessDuration(round int, turn string) (int, bool) {
	if t == nil || t.Duration == nil {
		return 0, false
	}
	elapsed := t.Elapsed(round)
	remaining := max(0, *t.Duration-elapsed)
	return remaining, turn == t.StartTurn && elapsed >= *t.Duration
}

// ProcessDuration is EffectTiming.ProcessDuration for a state that may not
// be timed yet.
func (s *EffectState) ProcessDuration(round int, turn string) (int, bool) {
	if s.Permanent || s.Timing == nil {
		return 0, false
	}
	return s.Timing.ProcessDuration(round, turn)
}

// Remaining reports turns left as of round, or -1 for untimed effects.
func (s *EffectState) Remaining(round int) int {
	if s.Permanent || s.Timing == nil || s.Timing.Duration == nil {
		return -1
	}
	remaining, _ := s.Timing.ProcessDuration(round, s.Timing.StartTurn)
	return remaining
}

// IsExpired is the base expiry rule shared by most effects.
func (s *EffectState) IsExpired() bool {
	if s.HandlesOwnExpiry {
		return false
	}
	if s.MarkedForExpiry {
		return true
	}
	if s.Permanent || s.Timing == nil || s.Timing.Duration == nil || s.Duration == nil {
		return false
	}
	return *s.Timing.Duration <= 0
}
