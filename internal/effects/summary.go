package effects

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
)

var summaryOrder = []struct {
	category character.EffectCategory
	title    string
}{
	{character.CategoryCombat, "Combat Effects"},
	{character.CategoryStatus, "Status Effects"},
	{character.CategoryResource, "Resource Effects"},
	{character.CategoryCustom, "Custom Effects"},
}

// Summary renders the active effects of c grouped by category.
func Summary(c *character.Character) string {
	if c == nil || len(c.Effects) == 0 {
		return "No active effects"
	}

	grouped := make(map[character.EffectCategory][]string)
	for _, e := range c.Effects {
		category := e.State().Category
		if category == "" {
			category = character.CategoryCustom
		}
		grouped[category] = append(grouped[category], e.StatusText(c))
	}

	var sections []string
	for _, group := range summaryOrder {
		texts := grouped[group.category]
		if len(texts) == 0 {
			continue
		}
		sections = append(sections, fmt.Sprintf("**%s**\n%s", group.title, strings.Join(texts, "\n")))
	}
	if len(sections) == 0 {
		return "No active effects"
	}
	return strings.Join(sections, "\n\n")
}
