package combat

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/metrics"
)

// Roll is one combatant's initiative result.
type Roll struct {
	Name      string
	Total     int
	Natural   int
	Dexterity int
}

// StartReport describes a freshly rolled combat.
type StartReport struct {
	// Rolls is in turn order.
	Rolls []Roll
	// Cleared holds the expiry text of the effects removed at start.
	Cleared []string
}

// StartCombat rolls initiative for names and moves to StateWaiting. Every
// combatant loses its non-permanent effects and per-combat resources
// first. Nothing is changed when a character cannot be loaded or rolled.
func (s *Scheduler) StartCombat(ctx context.Context, names []string) (*StartReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)

	if s.state != StateInactive {
		return nil, dnderr.FailedPrecondition("combat is already in progress")
	}

	roster, err := s.loadRoster(ctx, names)
	if err != nil {
		return nil, err
	}

	rolls := make([]Roll, len(roster))
	for i, c := range roster {
		breakdown, err := s.dice.Evaluate(InitiativeExpression, c)
		if err != nil {
			return nil, dnderr.Wrapf(err, "failed to roll initiative for %s", c.Name)
		}
		rolls[i] = Roll{
			Name:      c.Name,
			Total:     breakdown.Total,
			Natural:   breakdown.Natural,
			Dexterity: c.StatModifier(character.StatDexterity),
		}
	}

	report := &StartReport{}
	for _, c := range roster {
		cleared, err := s.effects.ClearCombatEffects(ctx, c)
		if err != nil {
			s.log(ctx).Warn("failed to clear effects cleanly", "character", c.Name, "error", err)
		}
		report.Cleared = append(report.Cleared, cleared...)
		c.ResetCombatState()

		if err := s.store.Save(ctx, c); err != nil {
			return nil, dnderr.Wrapf(err, "failed to save %s", c.Name)
		}
	}

	// Ties keep the order the rolls were made in.
	sort.SliceStable(rolls, func(i, j int) bool {
		return rolls[i].Total > rolls[j].Total
	})
	report.Rolls = rolls

	s.order = make([]string, len(rolls))
	for i, roll := range rolls {
		s.order[i] = roll.Name
	}
	s.state = StateWaiting
	s.round = 0
	s.current = 0
	metrics.CombatsStarted.Inc()

	s.log(ctx).Info("combat started", "order", s.order)

	messages := []string{"⚔️ **Combat Started!** ⚔️", initiativeListing(rolls)}
	messages = append(messages, effectUpdate(report.Cleared)...)
	return report, s.announce(ctx, messages...)
}

// SetBattle restores a turn order without touching any character, for
// example from a save. The combat waits for NextTurn to start the turn at
// currentTurn, which is clamped to the order.
func (s *Scheduler) SetBattle(ctx context.Context, names []string, round, currentTurn int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setBattle(s.scope(ctx), names, round, currentTurn)
}

func (s *Scheduler) setBattle(ctx context.Context, names []string, round, currentTurn int) error {
	if s.state != StateInactive {
		return dnderr.FailedPrecondition("combat is already in progress")
	}
	if round < 0 {
		return dnderr.InvalidArgumentf("round number cannot be negative, got %d", round)
	}
	if currentTurn < 0 {
		return dnderr.InvalidArgumentf("current turn cannot be negative, got %d", currentTurn)
	}

	roster, err := s.loadRoster(ctx, names)
	if err != nil {
		return err
	}

	s.order = make([]string, len(roster))
	for i, c := range roster {
		s.order[i] = c.Name
	}
	s.current = min(currentTurn, len(s.order)-1)
	s.round = round
	s.state = StateWaiting

	s.log(ctx).Info("battle restored", "order", s.order, "round", round, "current", s.currentName())

	return s.announce(ctx,
		"**Battle Restored**",
		orderListing(s.order, s.current),
		fmt.Sprintf("Starting on Round %d, %s's turn", max(round, 1), s.currentName()),
	)
}

// AddCombatant appends name to the end of the turn order.
func (s *Scheduler) AddCombatant(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)

	if s.state == StateInactive {
		return dnderr.FailedPrecondition("no combat in progress")
	}
	if s.indexOf(name) >= 0 {
		return dnderr.AlreadyExistsf("%s is already in combat", name).WithMeta("character", name)
	}

	c, err := s.store.Get(ctx, name)
	if err != nil {
		return err
	}

	if _, err := s.effects.ClearCombatEffects(ctx, c); err != nil {
		s.log(ctx).Warn("failed to clear effects cleanly", "character", c.Name, "error", err)
	}
	c.ResetCombatState()
	c.ActionStars.Refresh(s.round)
	if err := s.store.Save(ctx, c); err != nil {
		return dnderr.Wrapf(err, "failed to save %s", c.Name)
	}

	s.order = append(s.order, c.Name)
	s.log(ctx).Info("combatant added", "character", c.Name, "position", len(s.order)-1)

	return s.announce(ctx, fmt.Sprintf("⚔️ `%s has joined the battle!` ⚔️", c.Name))
}

// RemoveCombatant takes name out of the turn order. The turn pointer stays
// on the same character, or moves to the next one when the current holder
// leaves. Removing the last combatant ends the combat.
func (s *Scheduler) RemoveCombatant(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)

	if s.state == StateInactive {
		return dnderr.FailedPrecondition("no combat in progress")
	}
	idx := s.indexOf(name)
	if idx < 0 {
		return dnderr.NotFoundf("character %s not found in combat", name).WithMeta("character", name)
	}

	removed := s.order[idx]
	s.order = slices.Delete(s.order, idx, idx+1)
	switch {
	case len(s.order) == 0:
		s.reset()
	case idx < s.current:
		s.current--
	case s.current >= len(s.order):
		s.current = 0
	}

	s.log(ctx).Info("combatant removed", "character", removed, "state", s.state)

	messages := []string{fmt.Sprintf("⚔️ `%s has left the battle!` ⚔️", removed)}
	if s.state == StateInactive {
		messages = append(messages, "`Combat ended`")
	}
	return s.announce(ctx, messages...)
}

// EndCombat resets the tracker. Character effects are left as they are.
func (s *Scheduler) EndCombat(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)

	if s.state == StateInactive {
		return dnderr.FailedPrecondition("No combat in progress")
	}

	s.log(ctx).Info("combat ended", "round", s.round)
	s.reset()
	return s.announce(ctx, "⚔️ `Combat ended` ⚔️")
}

// loadRoster resolves names through the store, rejecting duplicates.
func (s *Scheduler) loadRoster(ctx context.Context, names []string) ([]*character.Character, error) {
	if len(names) == 0 {
		return nil, dnderr.InvalidArgument("at least one combatant is required")
	}

	seen := make(map[string]bool, len(names))
	roster := make([]*character.Character, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, dnderr.InvalidArgument("combatant name is required")
		}
		if seen[key] {
			return nil, dnderr.InvalidArgumentf("%s is listed more than once", name).WithMeta("character", name)
		}
		seen[key] = true

		c, err := s.store.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		roster = append(roster, c)
	}
	return roster, nil
}
