package mockdice

import (
	"fmt"
	"sync"

	"github.com/KirkDiggler/initiative-bot/internal/dice"
)

// ManualMockRoller implements dice.Roller with a queue of predetermined
// die faces. Every physical die consumes one entry.
type ManualMockRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
}

func NewManualMockRoller(rolls ...int) *ManualMockRoller {
	return &ManualMockRoller{rolls: rolls}
}

// SetNextRoll queues one more result
func (m *ManualMockRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls replaces the queue and rewinds it
func (m *ManualMockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// Remaining is the number of queued results not yet consumed.
func (m *ManualMockRoller) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rolls) - m.rollIndex
}

func (m *ManualMockRoller) Reset() {
	m.SetRolls(nil)
}

func (m *ManualMockRoller) next(sides int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	if roll < 1 || roll > sides {
		return 0, fmt.Errorf("invalid roll %d for d%d", roll, sides)
	}
	m.rollIndex++
	return roll, nil
}

func (m *ManualMockRoller) Roll(count, sides, bonus int) (*dice.RollResult, error) {
	rolls := make([]int, count)
	rawTotal := 0
	for i := range rolls {
		roll, err := m.next(sides)
		if err != nil {
			return nil, err
		}
		rolls[i] = roll
		rawTotal += roll
	}

	result := &dice.RollResult{
		Total:    rawTotal + bonus,
		Rolls:    rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
		RawTotal: rawTotal,
	}
	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}
	return result, nil
}

func (m *ManualMockRoller) RollWithAdvantage(sides, bonus int) (*dice.RollResult, error) {
	return m.pair(sides, bonus, true)
}

func (m *ManualMockRoller) RollWithDisadvantage(sides, bonus int) (*dice.RollResult, error) {
	return m.pair(sides, bonus, false)
}

func (m *ManualMockRoller) pair(sides, bonus int, higher bool) (*dice.RollResult, error) {
	first, err := m.next(sides)
	if err != nil {
		return nil, err
	}
	second, err := m.next(sides)
	if err != nil {
		return nil, err
	}

	kept := min(first, second)
	if higher {
		kept = max(first, second)
	}

	result := &dice.RollResult{
		Total:    kept + bonus,
		Rolls:    []int{first, second},
		Bonus:    bonus,
		Count:    1,
		Sides:    sides,
		RawTotal: kept,
	}
	if sides == 20 {
		result.IsCrit = kept == 20
		result.IsFumble = kept == 1
	}
	return result, nil
}
