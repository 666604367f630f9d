package damage

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	"github.com/KirkDiggler/initiative-bot/internal/metrics"
)

// Shield is implemented by effects that absorb damage before HP.
type Shield interface {
	ShieldRemaining() int
	// Absorb takes up to amount and returns what it absorbed.
	Absorb(amount int) int
}

// WeaknessSource is implemented by effects on an attacker that reduce
// the damage it deals.
type WeaknessSource interface {
	WeaknessFor(t Type) int
}

// Result describes one damage calculation.
type Result struct {
	Type          Type
	Original      int
	Modified      int
	Absorbed      int
	Final         int
	Resistance    int
	Vulnerability int
	Weakness      int
}

// Description renders the result the way combat logs show it.
func (r *Result) Description() []string {
	if r.Original == r.Final && r.Absorbed == 0 {
		return []string{fmt.Sprintf("%d damage", r.Final)}
	}

	var modifiers []string
	if r.Resistance > 0 {
		modifiers = append(modifiers, fmt.Sprintf("Resisted (%d%%)", r.Resistance))
	}
	if r.Vulnerability > 0 {
		modifiers = append(modifiers, fmt.Sprintf("Vulnerable (%d%%)", r.Vulnerability))
	}
	if r.Weakness > 0 {
		modifiers = append(modifiers, fmt.Sprintf("Weakened (%d%%)", r.Weakness))
	}

	text := fmt.Sprintf("%d → %d damage", r.Original, r.Final)
	if len(modifiers) > 0 {
		text += " [" + strings.Join(modifiers, " | ") + "]"
	}

	lines := []string{text}
	if r.Absorbed > 0 {
		lines = append(lines, fmt.Sprintf("%d absorbed by shield", r.Absorbed))
	}
	return lines
}

// Resolver turns raw damage into HP loss.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Calculate works out the damage target would take without changing
// anything. attacker may be nil.
func (r *Resolver) Calculate(base int, t Type, target, attacker *character.Character) *Result {
	result := &Result{Type: t, Original: base, Modified: base}
	if base <= 0 {
		result.Modified = 0
		return result
	}

	if t != True {
		result.Resistance = target.Defense.TotalResistance(string(t))
		result.Vulnerability = target.Defense.TotalVulnerability(string(t))
		result.Weakness = Weakness(attacker, t)

		multiplier := float64(100-result.Resistance+result.Vulnerability-result.Weakness) / 100
		result.Modified = int(math.Round(float64(base) * max(0, multiplier)))
	}

	remaining := result.Modified
	for _, shield := range Shields(target) {
		if remaining <= 0 {
			break
		}
		taken := min(shield.ShieldRemaining(), remaining)
		result.Absorbed += taken
		remaining -= taken
	}
	if pool := untrackedTempHP(target); pool > 0 && remaining > 0 {
		taken := min(pool, remaining)
		result.Absorbed += taken
		remaining -= taken
	}

	result.Final = remaining
	return result
}

// Apply calculates and then applies the damage: shields drain smallest
// first, then the temp HP pool, then HP down to zero.
func (r *Resolver) Apply(base int, t Type, target, attacker *character.Character) *Result {
	result := r.Calculate(base, t, target, attacker)

	toAbsorb := result.Absorbed
	for _, shield := range Shields(target) {
		if toAbsorb <= 0 {
			break
		}
		toAbsorb -= shield.Absorb(toAbsorb)
	}
	target.Resources.AbsorbTempHP(result.Absorbed)
	target.Resources.TakeDamage(result.Final)

	metrics.DamageApplied.WithLabelValues(string(t)).Add(float64(result.Final))
	r.logger.Debug("damage applied",
		"target", target.Name,
		"type", t,
		"original", result.Original,
		"absorbed", result.Absorbed,
		"final", result.Final,
		"hp", target.Resources.CurrentHP)
	return result
}

// Weakness sums the weakness percentages the attacker carries for t.
func Weakness(attacker *character.Character, t Type) int {
	if attacker == nil || t == True {
		return 0
	}
	total := 0
	for _, effect := range attacker.Effects {
		if source, ok := effect.(WeaknessSource); ok {
			total += source.WeaknessFor(t)
		}
	}
	return total
}

// Shields returns target's active shields, smallest remaining first.
func Shields(target *character.Character) []Shield {
	var shields []Shield
	for _, effect := range target.Effects {
		if shield, ok := effect.(Shield); ok && shield.ShieldRemaining() > 0 {
			shields = append(shields, shield)
		}
	}
	sort.SliceStable(shields, func(i, j int) bool {
		return shields[i].ShieldRemaining() < shields[j].ShieldRemaining()
	})
	return shields
}

// untrackedTempHP is temp HP granted outside of shield effects.
func untrackedTempHP(target *character.Character) int {
	pool := target.Resources.CurrentTempHP
	for _, shield := range Shields(target) {
		pool -= shield.ShieldRemaining()
	}
	return max(0, pool)
}
