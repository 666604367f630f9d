package effects

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

const skipEmoji = "⏭️"

// Skip makes the scheduler pass over its owner's turns while it lasts.
type Skip struct {
	Base
	Reason string `json:"reason,omitempty"`
}

func NewSkip(duration int, reason string) *Skip {
	s := &Skip{
		Base:   newBase(TypeSkip, "Skip Turn", character.CategoryStatus, character.Turns(max(1, duration))),
		Reason: reason,
	}
	s.Emoji = skipEmoji
	return s
}

func (s *Skip) SkipsTurn() bool {
	return !s.MarkedForExpiry
}

func (s *Skip) reasonLine() string {
	return fmt.Sprintf("╰─ `%s`", s.Reason)
}

func (s *Skip) OnApply(_ context.Context, c *character.Character, _ int) (string, error) {
	msg := fmt.Sprintf("%s `%s's turns will be skipped", skipEmoji, c.Name)
	if s.Duration != nil && *s.Duration > 1 {
		msg += fmt.Sprintf(" for %d rounds", *s.Duration)
	}
	msg += "`"
	if s.Reason != "" {
		msg += "\n" + s.reasonLine()
	}
	return msg, nil
}

func (s *Skip) OnTurnStart(_ context.Context, c *character.Character, _ int, turn string) ([]string, error) {
	if c.Name != turn || !s.SkipsTurn() {
		return nil, nil
	}
	messages := []string{fmt.Sprintf("%s `%s's turn is skipped!`", skipEmoji, c.Name)}
	if s.Reason != "" {
		messages = append(messages, s.reasonLine())
	}
	return messages, nil
}

func (s *Skip) OnTurnEnd(_ context.Context, c *character.Character, round int, turn string) ([]string, error) {
	if c.Name != turn || s.ExpiryMessageSent {
		return nil, nil
	}
	if remaining, _ := s.ProcessDuration(round, turn); remaining > 0 {
		return nil, nil
	}
	msg := fmt.Sprintf("%s `Skip effect will wear off from %s`", skipEmoji, c.Name)
	s.ExpiryMessageSent = true
	s.MarkedForExpiry = true
	c.AddEffectFeedback(s.Name, msg, round, c.Name)
	return []string{msg}, nil
}

func (s *Skip) OnExpire(_ context.Context, c *character.Character) (string, error) {
	return fmt.Sprintf("%s `%s can act again`", skipEmoji, c.Name), nil
}

func (s *Skip) StatusText(c *character.Character) string {
	remaining := 0
	if s.Duration != nil {
		remaining = *s.Duration
	}
	if c != nil && c.RoundNumber != nil && s.Timing != nil {
		remaining = max(0, s.Remaining(*c.RoundNumber))
	}
	text := fmt.Sprintf("%s **Turn Skip** (%s)", skipEmoji, turnsRemaining(remaining))
	if s.Reason != "" {
		text += "\n" + s.reasonLine()
	}
	return text
}
