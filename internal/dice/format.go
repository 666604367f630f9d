package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRoll renders a breakdown on one line:
//
//	🎲 `1d20+str advantage: [15,8]+3 → 15 (advantage) = 18`
func FormatRoll(b *Breakdown) string {
	if b.Standalone {
		return fmt.Sprintf("🎲 `%s = %d`", b.Expression, b.Total)
	}

	var sb strings.Builder
	sb.WriteString("🎲 `")
	sb.WriteString(b.Expression)
	sb.WriteString(": ")

	if b.IsMultihit() {
		hits := make([]string, len(b.Hits))
		for i, hit := range b.Hits {
			hits[i] = strconv.Itoa(hit.Total)
		}
		sb.WriteString(joinInts(b.Rolls))
		sb.WriteString(" → [")
		sb.WriteString(strings.Join(hits, ","))
		sb.WriteString("]")
		fmt.Fprintf(&sb, " = %d`", b.Total)
		return sb.String()
	}

	if len(b.Rolls) > 0 {
		sb.WriteString(joinInts(b.Rolls))
	}
	sb.WriteString(strings.Join(b.Modifiers, ""))

	if label := b.AdvantageLabel(); label != "" {
		fmt.Fprintf(&sb, " → %d (%s)", b.DiceTotal, label)
	} else if b.Group != nil && len(b.Kept) != b.Group.Count {
		fmt.Fprintf(&sb, " → %s", joinInts(b.Kept))
	}

	fmt.Fprintf(&sb, " = %d`", b.Total)
	return sb.String()
}

// FormatDetail renders the multi-line breakdown shown for non-concise
// rolls.
func FormatDetail(b *Breakdown) string {
	lines := []string{FormatRoll(b)}
	if b.Standalone {
		return lines[0]
	}

	for _, mod := range b.StatMods {
		lines = append(lines, fmt.Sprintf("• %s: %s", strings.ToUpper(mod.Stat), signed(mod.Value)))
	}
	if len(b.Injected) > 0 {
		lines = append(lines, "• Roll modifiers: "+strings.Join(b.Injected, ", "))
	}
	for i, hit := range b.Hits {
		lines = append(lines, fmt.Sprintf("• Hit %d: %s → %d", i+1, joinInts(hit.Rolls), hit.Total))
	}
	if b.Natural == 20 && b.Group != nil && b.Group.Sides == 20 {
		lines = append(lines, "• Natural 20!")
	}
	return strings.Join(lines, "\n")
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
