package initiative

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

type InMemoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	clock *fixedClock
	repo  *InMemoryRepository
}

func (s *InMemoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &fixedClock{now: time.Date(2024, 5, 1, 20, 30, 0, 0, time.UTC)}
	s.repo = NewInMemory(s.clock)
}

func TestInMemoryTestSuite(t *testing.T) {
	suite.Run(t, new(InMemoryTestSuite))
}

func (s *InMemoryTestSuite) TestSaveAndLoad() {
	save := &Save{Name: "Boss Fight", Order: []string{"Hero", "Goblin"}, CurrentTurn: 1, RoundNumber: 2}
	s.Require().NoError(s.repo.Save(s.ctx, save))

	loaded, err := s.repo.Load(s.ctx, "BOSS FIGHT")
	s.Require().NoError(err)
	s.Equal("Boss Fight", loaded.Name)
	s.Equal(s.clock.now, loaded.Timestamp)
	s.Equal("Goblin", loaded.Current())

	// Returned saves are copies.
	loaded.Order[0] = "Changed"
	again, err := s.repo.Load(s.ctx, "boss_fight")
	s.Require().NoError(err)
	s.Equal("Hero", again.Order[0])
}

func (s *InMemoryTestSuite) TestReservedSavesOverwrite() {
	s.Require().NoError(s.repo.Save(s.ctx, &Save{Name: AutosaveName, Order: []string{"Hero"}, RoundNumber: 1}))
	s.clock.now = s.clock.now.Add(time.Minute)
	s.Require().NoError(s.repo.Save(s.ctx, &Save{Name: AutosaveName, Order: []string{"Hero"}, RoundNumber: 2}))

	saves, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(saves, 1)
	s.Equal(2, saves[0].RoundNumber)
}

func (s *InMemoryTestSuite) TestListNewestFirst() {
	s.Require().NoError(s.repo.Save(s.ctx, &Save{Name: "first", Order: []string{"Hero"}}))
	s.clock.now = s.clock.now.Add(time.Minute)
	s.Require().NoError(s.repo.Save(s.ctx, &Save{Name: "second", Order: []string{"Hero"}}))

	saves, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(saves, 2)
	s.Equal("second", saves[0].Name)
}

func (s *InMemoryTestSuite) TestDelete() {
	s.Require().NoError(s.repo.Save(s.ctx, &Save{Name: "quicksave", Order: []string{"Hero"}}))

	s.NoError(s.repo.Delete(s.ctx, "quicksave"))
	s.True(dnderr.IsNotFound(s.repo.Delete(s.ctx, "quicksave")))

	_, err := s.repo.Load(s.ctx, "quicksave")
	s.True(dnderr.IsNotFound(err))
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "reserved autosave", in: "autosave", want: "autosave"},
		{name: "reserved quicksave", in: "quicksave", want: "quicksave"},
		{name: "spaces", in: "Boss Fight", want: "boss_fight"},
		{name: "punctuation", in: "Round #3!", want: "round__3_"},
		{name: "trimmed", in: "  Ambush ", want: "ambush"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestSaveValidate(t *testing.T) {
	require.NoError(t, (&Save{Order: []string{"Hero"}}).Validate())

	err := (&Save{Order: []string{"Hero"}, RoundNumber: -1}).Validate()
	assert.True(t, dnderr.IsInvalidArgument(err))

	assert.Equal(t, "", (&Save{}).Current())
}
