package combat

import (
	"context"

	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/initiative"
)

// Save stores the current turn order under name. An empty name gets a
// generated one.
func (s *Scheduler) Save(ctx context.Context, name, description string) (*initiative.Save, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)

	if s.saves == nil {
		return nil, dnderr.Unavailable("initiative saves are not configured")
	}
	if s.state == StateInactive {
		return nil, dnderr.FailedPrecondition("No combat in progress")
	}

	save := s.snapshot(name, description)
	if err := s.saves.Save(ctx, save); err != nil {
		return nil, err
	}
	s.log(ctx).Info("initiative saved", "save", save.Name, "round", save.RoundNumber)
	return save, nil
}

// Quicksave overwrites the quicksave slot.
func (s *Scheduler) Quicksave(ctx context.Context) (*initiative.Save, error) {
	return s.Save(ctx, initiative.QuicksaveName, "")
}

// Restore ends any running combat and resumes the saved one. Characters
// are not touched.
func (s *Scheduler) Restore(ctx context.Context, save *initiative.Save) error {
	if err := save.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)

	if s.state != StateInactive {
		s.log(ctx).Info("ending combat to restore a save", "save", save.Name)
		s.reset()
	}
	return s.setBattle(ctx, save.Order, save.RoundNumber, save.CurrentTurn)
}
