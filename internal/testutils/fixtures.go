package testutils

import (
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

// CreateTestCharacter creates a combatant with the given dexterity and
// default scores elsewhere.
func CreateTestCharacter(name string, dex int) *character.Character {
	return character.New(name, character.NewStats(map[character.StatType]int{
		character.StatDexterity: dex,
	}), 20, 10, 14)
}

// CreateTestParty creates one combatant per name, all with dexterity 10.
func CreateTestParty(names ...string) []*character.Character {
	party := make([]*character.Character, len(names))
	for i, name := range names {
		party[i] = CreateTestCharacter(name, 10)
	}
	return party
}

// CreateTestCaster creates a combatant with strong intelligence and a
// larger mana pool.
func CreateTestCaster(name string) *character.Character {
	c := character.New(name, character.NewStats(map[character.StatType]int{
		character.StatIntelligence: 16,
		character.StatDexterity:    12,
	}), 16, 30, 12)
	return c
}
