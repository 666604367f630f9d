package dice

import (
	"fmt"
	"math/rand/v2"
)

// randomRoller rolls with math/rand/v2, which is safe for concurrent use.
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, fmt.Errorf("invalid dice count %d", count)
	}
	if sides < 1 {
		return nil, fmt.Errorf("invalid dice size %d", sides)
	}

	rolls := make([]int, count)
	rawTotal := 0
	for i := range rolls {
		rolls[i] = rand.IntN(sides) + 1
		rawTotal += rolls[i]
	}

	result := &RollResult{
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

func (r *randomRoller) RollWithAdvantage(sides, bonus int) (*RollResult, error) {
	return r.rollPair(sides, bonus, func(a, b int) int { return max(a, b) })
}

func (r *randomRoller) RollWithDisadvantage(sides, bonus int) (*RollResult, error) {
	return r.rollPair(sides, bonus, func(a, b int) int { return min(a, b) })
}

func (r *randomRoller) rollPair(sides, bonus int, pick func(a, b int) int) (*RollResult, error) {
	pair, err := r.Roll(2, sides, 0)
	if err != nil {
		return nil, err
	}

	kept := pick(pair.Rolls[0], pair.Rolls[1])
	result := &RollResult{
		Total:    kept + bonus,
		Rolls:    pair.Rolls,
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
