package character

import "fmt"

// DefaultMaxStars is the star pool every character starts with.
const DefaultMaxStars = 5

// ActionStars is the per-round action economy. Stars refresh once per
// round; moves may also sit on a cooldown counted in rounds.
type ActionStars struct {
	MaxStars         int            `json:"max_stars"`
	CurrentStars     int            `json:"current_stars"`
	Cooldowns        map[string]int `json:"used_moves,omitempty"`
	LastRefreshRound int            `json:"last_refresh_round"`
}

func NewActionStars(maxStars int) ActionStars {
	if maxStars <= 0 {
		maxStars = DefaultMaxStars
	}
	return ActionStars{MaxStars: maxStars, CurrentStars: maxStars}
}

// CanUse checks the cooldown table first, then the star cost.
func (a *ActionStars) CanUse(cost int, moveName string) (bool, string) {
	if moveName != "" {
		if rounds, ok := a.Cooldowns[moveName]; ok {
			return false, fmt.Sprintf("%s is on cooldown for %d more rounds", moveName, rounds)
		}
	}
	if cost > a.CurrentStars {
		return false, fmt.Sprintf("Not enough stars (%d/%d)", a.CurrentStars, cost)
	}
	return true, ""
}

// Use spends stars, never going below zero.
func (a *ActionStars) Use(cost int) {
	a.CurrentStars = max(0, a.CurrentStars-cost)
}

// StartCooldown blocks moveName for rounds refreshes.
func (a *ActionStars) StartCooldown(moveName string, rounds int) {
	if rounds <= 0 {
		return
	}
	if a.Cooldowns == nil {
		a.Cooldowns = make(map[string]int)
	}
	a.Cooldowns[moveName] = rounds
}

// Refresh restores the pool and ticks cooldowns. Repeated calls for the
// round last refreshed are no-ops. Any other round refreshes, including an
// earlier one after a battle is restored from a save.
func (a *ActionStars) Refresh(round int) bool {
	if round > 0 && round == a.LastRefreshRound {
		return false
	}
	a.CurrentStars = a.MaxStars
	if round <= 0 {
		return true
	}

	a.LastRefreshRound = round
	for move, rounds := range a.Cooldowns {
		if rounds <= 1 {
			delete(a.Cooldowns, move)
			continue
		}
		a.Cooldowns[move] = rounds - 1
	}
	return true
}

// AddBonus grants extra stars up to the maximum.
func (a *ActionStars) AddBonus(amount int) int {
	if amount > 0 {
		a.CurrentStars = min(a.MaxStars, a.CurrentStars+amount)
	}
	return a.CurrentStars
}

// Reset clears cooldowns and the refresh marker, used at combat start.
func (a *ActionStars) Reset() {
	a.Cooldowns = nil
	a.LastRefreshRound = 0
	a.CurrentStars = a.MaxStars
}
