package combat

import (
	"context"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	"github.com/KirkDiggler/initiative-bot/internal/effects"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

// ApplyEffect applies e to the named character in the current round and
// saves it. Effects given to a combatant that has not acted yet this round
// count the current round toward their duration.
func (s *Scheduler) ApplyEffect(ctx context.Context, name string, e character.Effect) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)

	c, err := s.store.Get(ctx, name)
	if err != nil {
		return "", err
	}

	round := s.round
	var opts []effects.ApplyOption
	switch idx := s.indexOf(c.Name); {
	case s.state == StateWaiting:
		round = max(round, 1)
		if idx >= 0 {
			opts = append(opts, effects.BeforeOwnerTurn())
		}
	case s.state != StateInactive && idx > s.current:
		opts = append(opts, effects.BeforeOwnerTurn())
	}

	msg, err := s.effects.ApplyEffect(ctx, c, e, round, opts...)
	if err != nil {
		return "", err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return msg, dnderr.Wrapf(err, "failed to save %s", c.Name)
	}
	return msg, nil
}

// RemoveEffect removes an effect by name from the named character and
// saves it.
func (s *Scheduler) RemoveEffect(ctx context.Context, name, effectName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.scope(ctx)

	c, err := s.store.Get(ctx, name)
	if err != nil {
		return "", err
	}

	msg, err := s.effects.RemoveEffect(ctx, c, effectName)
	if err != nil && dnderr.IsNotFound(err) {
		return "", err
	}
	if saveErr := s.store.Save(ctx, c); saveErr != nil {
		return msg, dnderr.Wrapf(saveErr, "failed to save %s", c.Name)
	}
	return msg, err
}
