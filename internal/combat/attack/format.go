package attack

import (
	"fmt"
	"strings"
)

func formatDamage(rolls []DamageDealt, total int) string {
	parts := make([]string, len(rolls))
	for i, roll := range rolls {
		parts[i] = fmt.Sprintf("%s %d %s", roll.Type.Emoji(), roll.Amount, roll.Type)
	}
	out := strings.Join(parts, " + ")
	if len(rolls) > 1 {
		out += fmt.Sprintf(" = %d total", total)
	}
	return out
}

func icon(r *Result) string {
	switch {
	case r.IsCrit:
		return "💥"
	case r.Hit:
		return "✅"
	}
	return "❌"
}

func closeLine(sb *strings.Builder, reason string) string {
	if reason != "" {
		sb.WriteString(" | 📝 ")
		sb.WriteString(reason)
	}
	sb.WriteString("`")
	return sb.String()
}

// formatSingle renders one roll against at most one target:
//
//	🎲 `1d20+5: [14]+5 = 19 | ✅ **HIT!** → 🎯 Goblin AC 15 | ⚔️ 7 slashing`
func formatSingle(formatted string, r *Result, reason string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(formatted, "`"))

	switch {
	case r.IsCrit:
		sb.WriteString(" | 💥 **CRITICAL HIT!**")
	case r.Hit:
		sb.WriteString(" | ✅ **HIT!**")
	default:
		sb.WriteString(" | ❌ **MISS!**")
	}
	if r.TargetName != "" {
		fmt.Fprintf(&sb, " → 🎯 %s AC %d", r.TargetName, r.AC)
	}
	if r.Hit && len(r.DamageRolls) > 0 {
		sb.WriteString(" | ")
		sb.WriteString(formatDamage(r.DamageRolls, r.TotalDamage))
	}
	return closeLine(&sb, reason)
}

// formatShared renders one shared roll against several targets.
func formatShared(formatted string, results []*Result, reason string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(formatted, "`"))

	targets := make([]string, len(results))
	var hit *Result
	for i, r := range results {
		targets[i] = fmt.Sprintf("%s (%s AC %d)", r.TargetName, icon(r), r.AC)
		if r.Hit && hit == nil {
			hit = r
		}
	}
	sb.WriteString(" | 🎯 ")
	sb.WriteString(strings.Join(targets, ", "))

	switch {
	case hit == nil:
		sb.WriteString(" | MISS")
	case len(hit.DamageRolls) > 0:
		sb.WriteString(" | ")
		sb.WriteString(formatDamage(hit.DamageRolls, hit.TotalDamage))
		sb.WriteString(" each")
	}
	return closeLine(&sb, reason)
}

// formatMulti renders per-result lines for multihit and AoE multi.
func formatMulti(header string, results []*Result, perTarget bool, reason string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(header, "`"))

	hits, crits, total := 0, 0, 0
	for _, r := range results {
		if r.Hit {
			hits++
			total += r.TotalDamage
		}
		if r.IsCrit {
			crits++
		}
	}

	fmt.Fprintf(&sb, " | Hits: %d/%d", hits, len(results))
	if crits > 0 {
		suffix := ""
		if crits > 1 {
			suffix = "S"
		}
		fmt.Fprintf(&sb, " 💥 %d CRIT%s!", crits, suffix)
	}
	if !perTarget && len(results) > 0 {
		fmt.Fprintf(&sb, " → %s", results[0].TargetName)
	}

	for i, r := range results {
		label := r.TargetName
		if !perTarget {
			label = fmt.Sprintf("Hit %d", i+1)
		}
		fmt.Fprintf(&sb, "\n• 🎯 %s %s %d vs AC %d", label, icon(r), r.AttackRoll, r.AC)
		if r.Hit && len(r.DamageRolls) > 0 {
			sb.WriteString(" | ")
			sb.WriteString(formatDamage(r.DamageRolls, r.TotalDamage))
		} else if !r.Hit {
			sb.WriteString(" | MISS")
		}
	}

	if total > 0 {
		fmt.Fprintf(&sb, "\nTotal Damage: %d", total)
	}
	return closeLine(&sb, reason)
}

func formatMultihitDetails(results []*Result) string {
	hits, crits, total := 0, 0, 0
	lines := make([]string, 0, len(results)+2)
	for i, r := range results {
		status := "❌ MISS"
		switch {
		case r.IsCrit:
			status = "💥 CRIT!"
			crits++
		case r.Hit:
			status = "✅ HIT!"
		}
		line := fmt.Sprintf("Hit %d: %d → %s", i+1, r.AttackRoll, status)
		if r.Hit {
			hits++
			total += r.TotalDamage
			if len(r.DamageRolls) > 0 {
				line += " | Damage: " + formatDamage(r.DamageRolls, r.TotalDamage)
			}
		}
		lines = append(lines, line)
	}

	summary := fmt.Sprintf("Hits: %d/%d", hits, len(results))
	if crits > 0 {
		summary += fmt.Sprintf(" | Crits: %d", crits)
	}
	lines = append([]string{summary}, lines...)
	if total > 0 {
		lines = append(lines, fmt.Sprintf("\nTotal Damage: %d", total))
	}
	return strings.Join(lines, "\n")
}

// formatApplied lists how applied damage landed on each target.
func formatApplied(results []*Result) string {
	var lines []string
	for _, r := range results {
		for _, roll := range r.DamageRolls {
			if roll.Applied == nil {
				continue
			}
			for _, desc := range roll.Applied.Description() {
				lines = append(lines, fmt.Sprintf("• %s: %s", r.TargetName, desc))
			}
		}
	}
	return strings.Join(lines, "\n")
}
