package effects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/logging"
	"github.com/KirkDiggler/initiative-bot/internal/metrics"
)

// Outcome is what one processing pass produced for one character.
type Outcome struct {
	// Skipped is set when an effect took the character's action away.
	Skipped       bool
	StartMessages []string
	EndMessages   []string
	// Faults holds the hooks that failed. Their messages were dropped and
	// processing carried on with the remaining effects.
	Faults []*ProcessError
}

// Err joins the faults, or returns nil when every hook succeeded.
func (o *Outcome) Err() error {
	if o == nil || len(o.Faults) == 0 {
		return nil
	}
	errs := make([]error, len(o.Faults))
	for i, fault := range o.Faults {
		errs[i] = fault
	}
	return errors.Join(errs...)
}

// ProcessError records a lifecycle hook that failed.
type ProcessError struct {
	Character string
	Phase     string
	Effect    string
	Err       error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("effect %s failed during %s for %s: %v", e.Effect, e.Phase, e.Character, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

type applyOptions struct {
	preTurn bool
}

// ApplyOption adjusts how an effect is applied.
type ApplyOption func(*applyOptions)

// BeforeOwnerTurn records that the owner has not acted yet in the current
// round, so the round counts toward the duration.
func BeforeOwnerTurn() ApplyOption {
	return func(o *applyOptions) {
		o.preTurn = true
	}
}

// Manager runs effect lifecycle hooks. It holds no per-character state;
// callers serialize access to a character.
type Manager struct {
	registry *Registry
	logger   *slog.Logger
}

// NewManager creates a manager. A nil registry gets the default one.
func NewManager(registry *Registry, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry(nil)
	}
	return &Manager{
		registry: registry,
		logger:   logging.Component(logger, "effects"),
	}
}

// Registry returns the registry effects are bound through.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// ApplyEffect attaches e to c in round. A stackable effect merges into an
// existing one of the same type and name: the existing timing is
// refreshed to the full duration and the new stacks are added.
func (m *Manager) ApplyEffect(ctx context.Context, c *character.Character, e character.Effect, round int, opts ...ApplyOption) (string, error) {
	if c == nil {
		return "", dnderr.InvalidArgument("character is required")
	}
	if e == nil {
		return "", dnderr.InvalidArgument("effect is required")
	}

	var o applyOptions
	for _, opt := range opts {
		opt(&o)
	}

	m.registry.Bind(e)
	state := e.State()
	state.Normalize()
	if state.Type == "" {
		return "", dnderr.Validationf("effect %s has no type", state.Name)
	}
	if state.ID == "" {
		state.ID = m.registry.Env().IDs.New()
	}

	if incoming, ok := e.(Stackable); ok {
		if existing := m.findStack(c, state); existing != nil {
			existing.State().InitializeTiming(round, c.Name, o.preTurn)
			msg, err := existing.AddStacks(ctx, c, incoming.StackCount())
			if err != nil {
				m.recordFault(ctx, nil, c, metrics.PhaseApply, existing, err)
				return "", dnderr.Wrapf(err, "failed to add stacks of %s to %s", state.Name, c.Name)
			}
			if into, ok := existing.(targetTracker); ok {
				if from, ok := e.(targetTracker); ok {
					for _, name := range from.targetNames() {
						into.AddTarget(name)
					}
				}
			}
			metrics.EffectsApplied.WithLabelValues(state.Type).Inc()
			return msg, nil
		}
	}

	state.InitializeTiming(round, c.Name, o.preTurn)
	msg, err := e.OnApply(ctx, c, round)
	if err != nil {
		return "", dnderr.Wrapf(err, "failed to apply %s to %s", state.Name, c.Name)
	}
	metrics.EffectsApplied.WithLabelValues(state.Type).Inc()

	// Instant effects resolve entirely in OnApply.
	if e.IsExpired() {
		return msg, nil
	}

	c.Effects = append(c.Effects, e)
	logging.FromContext(ctx, m.logger).Debug("effect applied",
		"character", c.Name,
		"effect", state.Name,
		"type", state.Type,
		"round", round,
		"pre_turn", o.preTurn,
	)
	return msg, nil
}

func (m *Manager) findStack(c *character.Character, state *character.EffectState) Stackable {
	for _, existing := range c.Effects {
		s, ok := existing.(Stackable)
		if !ok || pendingRemoval(existing) {
			continue
		}
		es := existing.State()
		if es.Type == state.Type && es.Name == state.Name {
			return s
		}
	}
	return nil
}

// ProcessTurnStart runs the start of c's own turn. It surfaces pending
// feedback, runs OnTurnStart and removes whatever expired. It does nothing
// when it is not c's turn.
func (m *Manager) ProcessTurnStart(ctx context.Context, c *character.Character, round int, turn string) *Outcome {
	out := &Outcome{}
	if c == nil || c.Name != turn {
		return out
	}

	for _, fb := range c.PendingFeedback() {
		out.StartMessages = append(out.StartMessages, fb.ExpiryMessage)
	}
	c.MarkFeedbackDisplayed()
	c.ClearOldFeedback()

	c.SetRoundNumber(round)
	defer c.ClearRoundNumber()
	m.runPhase(ctx, c, round, turn, metrics.PhaseTurnStart, out, &out.StartMessages)
	return out
}

// ProcessTurnEnd runs the end of c's own turn and always clears the
// transient round marker.
func (m *Manager) ProcessTurnEnd(ctx context.Context, c *character.Character, round int, turn string) *Outcome {
	out := &Outcome{}
	if c == nil || c.Name != turn {
		return out
	}
	defer c.ClearRoundNumber()

	c.SetRoundNumber(round)
	m.runPhase(ctx, c, round, turn, metrics.PhaseTurnEnd, out, &out.EndMessages)
	return out
}

// ProcessEffects runs both phases back to back.
func (m *Manager) ProcessEffects(ctx context.Context, c *character.Character, round int, turn string) *Outcome {
	start := m.ProcessTurnStart(ctx, c, round, turn)
	end := m.ProcessTurnEnd(ctx, c, round, turn)
	return &Outcome{
		Skipped:       start.Skipped,
		StartMessages: start.StartMessages,
		EndMessages:   end.EndMessages,
		Faults:        append(start.Faults, end.Faults...),
	}
}

func (m *Manager) runPhase(ctx context.Context, c *character.Character, round int, turn, phase string, out *Outcome, messages *[]string) {
	var expired []character.Effect

	for _, e := range slices.Clone(c.Effects) {
		if !c.HasEffect(e) {
			continue
		}
		if pendingRemoval(e) {
			expired = append(expired, e)
			continue
		}

		var (
			msgs []string
			err  error
		)
		if phase == metrics.PhaseTurnStart {
			msgs, err = e.OnTurnStart(ctx, c, round, turn)
		} else {
			msgs, err = e.OnTurnEnd(ctx, c, round, turn)
		}
		if err != nil {
			m.recordFault(ctx, out, c, phase, e, err)
		} else {
			*messages = append(*messages, msgs...)
		}

		if phase == metrics.PhaseTurnStart {
			if skipper, ok := e.(TurnSkipper); ok && skipper.SkipsTurn() {
				out.Skipped = true
			}
		}
		if pendingRemoval(e) {
			expired = append(expired, e)
		}
	}

	m.expire(ctx, c, expired, out, messages)
}

// expire calls OnExpire once per effect and removes it. Text for an effect
// whose worn-off notice is already queued as feedback is dropped.
func (m *Manager) expire(ctx context.Context, c *character.Character, expired []character.Effect, out *Outcome, messages *[]string) {
	for _, e := range expired {
		if !c.HasEffect(e) {
			continue
		}
		state := e.State()
		alreadyAnnounced := c.HasPendingFeedback(state.Name)

		text, err := e.OnExpire(ctx, c)
		c.RemoveEffect(e)
		metrics.EffectsExpired.WithLabelValues(state.Type).Inc()

		if err != nil {
			m.recordFault(ctx, out, c, metrics.PhaseExpire, e, err)
			continue
		}
		if text == "" || alreadyAnnounced || slices.Contains(*messages, text) {
			continue
		}
		*messages = append(*messages, text)
	}
}

func (m *Manager) recordFault(ctx context.Context, out *Outcome, c *character.Character, phase string, e character.Effect, err error) {
	metrics.EffectFaults.WithLabelValues(phase).Inc()
	logging.FromContext(ctx, m.logger).Error("effect hook failed",
		"character", c.Name,
		"phase", phase,
		"effect", e.State().Name,
		"error", err,
	)
	if out != nil {
		out.Faults = append(out.Faults, &ProcessError{
			Character: c.Name,
			Phase:     phase,
			Effect:    e.State().Name,
			Err:       err,
		})
	}
}

// RemoveEffect removes the named effect (case-insensitive) and returns its
// expiry message. The effect is removed even when OnExpire fails.
func (m *Manager) RemoveEffect(ctx context.Context, c *character.Character, name string) (string, error) {
	if c == nil {
		return "", dnderr.InvalidArgument("character is required")
	}
	e := c.FindEffect(name)
	if e == nil {
		return "", dnderr.NotFoundf("effect %s not found on %s", name, c.Name).
			WithMeta("character", c.Name)
	}

	text, err := e.OnExpire(ctx, c)
	c.RemoveEffect(e)
	metrics.EffectsExpired.WithLabelValues(e.State().Type).Inc()
	if err != nil {
		return "", dnderr.Wrapf(err, "failed to remove %s from %s", e.State().Name, c.Name)
	}
	return text, nil
}

// ClearCombatEffects removes every non-permanent effect from c through
// OnExpire. Failures are collected and the rest are still removed.
func (m *Manager) ClearCombatEffects(ctx context.Context, c *character.Character) ([]string, error) {
	if c == nil {
		return nil, dnderr.InvalidArgument("character is required")
	}

	var (
		messages []string
		errs     []error
	)
	for _, e := range slices.Clone(c.Effects) {
		state := e.State()
		if state.Permanent {
			continue
		}
		text, err := e.OnExpire(ctx, c)
		c.RemoveEffect(e)
		if err != nil {
			errs = append(errs, dnderr.Wrapf(err, "failed to clear %s from %s", state.Name, c.Name))
			continue
		}
		if text != "" {
			messages = append(messages, text)
		}
	}
	return messages, errors.Join(errs...)
}

func pendingRemoval(e character.Effect) bool {
	if e.IsExpired() || e.State().MarkedForExpiry {
		return true
	}
	if s, ok := e.(SelfExpiring); ok && s.MarkedForRemoval() {
		return true
	}
	return false
}
