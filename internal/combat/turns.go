package combat

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	"github.com/KirkDiggler/initiative-bot/internal/effects"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/metrics"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/initiative"
)

// TurnReport describes what one NextTurn call did.
type TurnReport struct {
	Round int
	// Current is the character whose turn it now is.
	Current string
	// NewRound is set when the call started a round.
	NewRound bool
	// Skipped lists the characters passed over, in order.
	Skipped []string
	// Batches holds the announcements in the order they were made.
	Batches [][]string
	Faults  []*effects.ProcessError
}

// Messages flattens the announced batches.
func (r *TurnReport) Messages() []string {
	var out []string
	for _, batch := range r.Batches {
		out = append(out, batch...)
	}
	return out
}

func (r *TurnReport) add(messages ...string) {
	if len(messages) > 0 {
		r.Batches = append(r.Batches, messages)
	}
}

type phaseFunc func(ctx context.Context, c *character.Character, round int, turn string) *effects.Outcome

// NextTurn ends the current turn and starts the next one. The outgoing
// character's end phase is fully resolved before the round rolls over and
// before the incoming character's start phase runs. Characters whose
// effects skip their turn run both phases and are passed over.
//
// State is not rolled back when a save fails part way; the report is
// returned together with the error.
func (s *Scheduler) NextTurn(ctx context.Context) (*TurnReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)
	started := time.Now()

	switch s.state {
	case StateInactive:
		return nil, dnderr.FailedPrecondition("No combat in progress")
	case StatePaused:
		return nil, dnderr.FailedPrecondition("combat is paused")
	}

	report := &TurnReport{}
	if s.state == StateWaiting {
		s.state = StateActive
		s.round = max(s.round, 1)
		if err := s.beginRound(ctx, report); err != nil {
			return report, err
		}
	} else {
		out, err := s.runPhase(ctx, s.currentName(), s.effects.ProcessTurnEnd, report)
		if err != nil {
			return report, err
		}
		report.add(effectUpdate(out.EndMessages)...)

		if err := s.advance(ctx, report); err != nil {
			return report, err
		}
	}

	if err := s.beginTurn(ctx, report); err != nil {
		return report, err
	}
	report.Round = s.round
	report.Current = s.currentName()

	metrics.TurnsAdvanced.Inc()
	metrics.TurnDuration.Observe(time.Since(started).Seconds())
	s.log(ctx).Info("turn advanced",
		"round", s.round,
		"current", report.Current,
		"skipped", report.Skipped,
		"faults", len(report.Faults),
	)

	s.saveAutosave(ctx)

	for _, batch := range report.Batches {
		if err := s.announce(ctx, batch...); err != nil {
			return report, dnderr.Wrap(err, "failed to announce turn")
		}
	}
	return report, nil
}

// advance moves the pointer, rolling the round over after the last
// combatant.
func (s *Scheduler) advance(ctx context.Context, report *TurnReport) error {
	if s.current < len(s.order)-1 {
		s.current++
		return nil
	}
	s.current = 0
	s.round++
	return s.beginRound(ctx, report)
}

// beginRound refreshes every combatant's star pool for the new round.
func (s *Scheduler) beginRound(ctx context.Context, report *TurnReport) error {
	report.NewRound = true
	metrics.RoundsStarted.Inc()

	for _, name := range s.order {
		c, err := s.store.Get(ctx, name)
		if err != nil {
			if dnderr.IsNotFound(err) {
				s.log(ctx).Warn("combatant missing from store", "character", name)
				continue
			}
			return err
		}
		if !c.ActionStars.Refresh(s.round) {
			continue
		}
		if err := s.store.Save(ctx, c); err != nil {
			return dnderr.Wrapf(err, "failed to save %s", c.Name)
		}
	}

	report.add(roundHeader(s.round))
	return nil
}

// beginTurn runs the start phase for the character at the pointer and
// keeps advancing past skipped turns. After every combatant has been
// skipped once in a row the pointer stays where it is.
func (s *Scheduler) beginTurn(ctx context.Context, report *TurnReport) error {
	for skips := 0; ; skips++ {
		name := s.currentName()
		start, err := s.runPhase(ctx, name, s.effects.ProcessTurnStart, report)
		if err != nil {
			return err
		}

		if !start.Skipped || skips >= len(s.order) {
			if start.Skipped {
				s.log(ctx).Warn("every combatant is skipping, stopping on current turn", "character", name)
			}
			report.add(append([]string{turnHeader(name, false)}, codeFormat(start.StartMessages)...)...)
			return nil
		}

		report.Skipped = append(report.Skipped, name)
		metrics.TurnsSkipped.Inc()
		report.add(append([]string{turnHeader(name, true)}, codeFormat(start.StartMessages)...)...)

		end, err := s.runPhase(ctx, name, s.effects.ProcessTurnEnd, report)
		if err != nil {
			return err
		}
		report.add(effectUpdate(end.EndMessages)...)

		if err := s.advance(ctx, report); err != nil {
			return err
		}
	}
}

// runPhase loads name, runs one effect phase on it and saves it. A
// character that is no longer stored gets an empty outcome.
func (s *Scheduler) runPhase(ctx context.Context, name string, phase phaseFunc, report *TurnReport) (*effects.Outcome, error) {
	c, err := s.store.Get(ctx, name)
	if err != nil {
		if dnderr.IsNotFound(err) {
			s.log(ctx).Warn("combatant missing from store", "character", name)
			return &effects.Outcome{}, nil
		}
		return nil, err
	}

	out := phase(ctx, c, s.round, c.Name)
	report.Faults = append(report.Faults, out.Faults...)

	if err := s.store.Save(ctx, c); err != nil {
		return nil, dnderr.Wrapf(err, "failed to save %s", c.Name)
	}
	return out, nil
}

func (s *Scheduler) snapshot(name, description string) *initiative.Save {
	return &initiative.Save{
		Name:        name,
		Order:       slices.Clone(s.order),
		CurrentTurn: s.current,
		RoundNumber: s.round,
		Description: description,
	}
}

// saveAutosave overwrites the autosave slot. Failures are only logged.
func (s *Scheduler) saveAutosave(ctx context.Context) {
	if !s.autosave || s.saves == nil {
		return
	}
	save := s.snapshot(initiative.AutosaveName, fmt.Sprintf("Round %d, %s's turn", s.round, s.currentName()))
	if err := s.saves.Save(ctx, save); err != nil {
		s.log(ctx).Warn("autosave failed", "error", err)
	}
}
