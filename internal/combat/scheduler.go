package combat

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/KirkDiggler/initiative-bot/internal/announce"
	"github.com/KirkDiggler/initiative-bot/internal/dice"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	"github.com/KirkDiggler/initiative-bot/internal/effects"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/logging"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/initiative"
	"github.com/KirkDiggler/initiative-bot/internal/uuid"
)

// State is the lifecycle of one combat.
type State string

const (
	StateInactive State = "inactive"
	// StateWaiting means initiative is rolled but the first turn has not
	// started.
	StateWaiting State = "waiting"
	StateActive  State = "active"
	StatePaused  State = "paused"
)

// InitiativeExpression is rolled for every combatant at combat start.
const InitiativeExpression = "1d20+dex"

// Config holds the collaborators of a Scheduler.
type Config struct {
	Characters character.Store
	Effects    *effects.Manager
	Dice       *dice.Calculator
	// Announcer receives turn announcements. Defaults to the log announcer.
	Announcer announce.Announcer
	// Saves is optional. Without it Save and autosave are unavailable.
	Saves    initiative.Repository
	Autosave bool
	Logger   *slog.Logger
	CombatID string
}

// Scheduler is the initiative tracker of a single combat. It owns the turn
// order, the round counter and the current-turn pointer, and drives effect
// processing once per character turn. Every exported method holds the
// combat lock for its whole run, so turn phases never interleave.
type Scheduler struct {
	mu sync.Mutex

	store     character.Store
	effects   *effects.Manager
	dice      *dice.Calculator
	announcer announce.Announcer
	saves     initiative.Repository
	autosave  bool
	logger    *slog.Logger
	combatID  string

	state   State
	order   []string
	current int
	round   int
}

// NewScheduler creates an inactive scheduler.
func NewScheduler(cfg *Config) (*Scheduler, error) {
	if cfg == nil {
		return nil, dnderr.InvalidArgument("scheduler config is required")
	}
	if cfg.Characters == nil {
		return nil, dnderr.InvalidArgument("character store is required")
	}

	s := &Scheduler{
		store:     cfg.Characters,
		effects:   cfg.Effects,
		dice:      cfg.Dice,
		announcer: cfg.Announcer,
		saves:     cfg.Saves,
		autosave:  cfg.Autosave,
		combatID:  cfg.CombatID,
		state:     StateInactive,
	}
	if s.combatID == "" {
		s.combatID = uuid.NewGoogleUUIDGenerator().New()
	}
	s.logger = logging.Component(cfg.Logger, "initiative")
	if s.effects == nil {
		s.effects = effects.NewManager(nil, cfg.Logger)
	}
	if s.dice == nil {
		s.dice = s.effects.Registry().Env().Dice
	}
	if s.announcer == nil {
		s.announcer = announce.NewLog(cfg.Logger)
	}
	return s, nil
}

// CombatID identifies this combat in logs.
func (s *Scheduler) CombatID() string {
	return s.combatID
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Round returns the current round, 0 before the first turn.
func (s *Scheduler) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// Order returns a copy of the turn order.
func (s *Scheduler) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// Current returns the name holding the turn pointer, or "" when there is
// no combat.
func (s *Scheduler) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentName()
}

// SetAutosave turns saving after every turn on or off.
func (s *Scheduler) SetAutosave(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autosave = enabled
}

func (s *Scheduler) Autosave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autosave
}

// Pause stops turns from advancing.
func (s *Scheduler) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)

	if s.state != StateActive {
		return dnderr.FailedPreconditionf("cannot pause a combat that is %s", s.state)
	}
	s.state = StatePaused
	s.log(ctx).Info("combat paused", "round", s.round)
	return s.announce(ctx, "⏸️ `Combat paused`")
}

func (s *Scheduler) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)

	if s.state != StatePaused {
		return dnderr.FailedPreconditionf("cannot resume a combat that is %s", s.state)
	}
	s.state = StateActive
	s.log(ctx).Info("combat resumed", "round", s.round)
	return s.announce(ctx, "▶️ `Combat resumed`")
}

func (s *Scheduler) currentName() string {
	if len(s.order) == 0 || s.current >= len(s.order) {
		return ""
	}
	return s.order[s.current]
}

func (s *Scheduler) indexOf(name string) int {
	return slices.IndexFunc(s.order, func(n string) bool {
		return strings.EqualFold(n, name)
	})
}

func (s *Scheduler) reset() {
	s.state = StateInactive
	s.order = nil
	s.current = 0
	s.round = 0
}

// scope tags ctx with the combat ID so effect logs can be correlated.
func (s *Scheduler) scope(ctx context.Context) context.Context {
	return logging.WithCombat(ctx, s.combatID)
}

func (s *Scheduler) log(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

func (s *Scheduler) announce(ctx context.Context, messages ...string) error {
	if err := s.announcer.Announce(ctx, messages...); err != nil {
		s.log(ctx).Warn("announcement failed", "error", err)
		return err
	}
	return nil
}

// Exclusive runs fn while holding the combat lock so that work outside the
// scheduler, such as an attack, never overlaps a turn. fn must not call
// back into the scheduler.
func (s *Scheduler) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.scope(ctx))
}
