package dice

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/metrics"
)

// StatMod records a stat reference resolved during evaluation.
type StatMod struct {
	Stat  string
	Value int
}

// Die is one die of the group after reroll, explosion and advantage.
type Die struct {
	// Rolls holds every physical roll made for this die, in order.
	Rolls []int
	// Natural is the face of the selected roll before explosions.
	Natural int
	Value   int
}

// Hit is one independent hit of a multihit roll.
type Hit struct {
	Rolls   []int
	Natural int
	Total   int
}

// Breakdown is the full record of an evaluated expression.
type Breakdown struct {
	Expression string
	// Rolls is every physical die rolled.
	Rolls []int
	// Kept is the value of each die that counted toward the total.
	Kept []int
	// Natural is the selected face of the first kept die. Attack rolls use
	// it for crit detection.
	Natural   int
	DiceTotal int
	StatMods  []StatMod
	// Modifiers is the arithmetic chain after the dice, rendered with
	// resolved values (e.g. "+3", "*2").
	Modifiers []string
	Hits      []Hit
	Total     int

	Standalone bool
	// Advantage is positive for advantage, negative for disadvantage.
	Advantage int
	Injected  []string
	Group     *DiceGroup
}

// IsMultihit reports whether the breakdown carries per-hit results.
func (b *Breakdown) IsMultihit() bool {
	return len(b.Hits) > 0
}

// AdvantageLabel is "advantage", "disadvantage" or "".
func (b *Breakdown) AdvantageLabel() string {
	switch {
	case b.Advantage > 0:
		return "advantage"
	case b.Advantage < 0:
		return "disadvantage"
	}
	return ""
}

// Calculator evaluates dice expressions.
type Calculator struct {
	roller Roller
	logger *slog.Logger
}

type CalculatorConfig struct {
	Roller Roller
	Logger *slog.Logger
}

func NewCalculator(cfg *CalculatorConfig) *Calculator {
	calc := &Calculator{}
	if cfg != nil {
		calc.roller = cfg.Roller
		calc.logger = cfg.Logger
	}
	if calc.roller == nil {
		calc.roller = NewRandomRoller()
	}
	if calc.logger == nil {
		calc.logger = slog.Default()
	}
	return calc
}

// Calculate folds the character's active roll modifiers into expr and
// evaluates the result. Next-roll-only modifiers are consumed once the
// evaluation succeeds.
func (c *Calculator) Calculate(expr string, char *character.Character) (*Breakdown, error) {
	injected, used := injectModifiers(expr, char)

	breakdown, err := c.Evaluate(injected.expression, char)
	if err != nil {
		return nil, err
	}

	breakdown.Injected = injected.notes
	for _, mod := range used {
		mod.ConsumeRoll()
	}
	return breakdown, nil
}

// Evaluate evaluates expr as written. Stat tokens need a character.
func (c *Calculator) Evaluate(expr string, char *character.Character) (*Breakdown, error) {
	trimmed := strings.TrimSpace(expr)
	if integerPattern.MatchString(trimmed) {
		value, err := strconv.Atoi(trimmed)
		if err != nil {
			metrics.DiceErrors.Inc()
			return nil, dnderr.Validationf("invalid number %q", trimmed)
		}
		metrics.DiceEvaluations.WithLabelValues(metrics.KindStandalone).Inc()
		return &Breakdown{
			Expression: trimmed,
			Rolls:      []int{value},
			Total:      value,
			Standalone: true,
		}, nil
	}

	parsed, err := parseExpression(trimmed)
	if err != nil {
		metrics.DiceErrors.Inc()
		return nil, err
	}
	if parsed.needsCharacter() && char == nil {
		metrics.DiceErrors.Inc()
		return nil, dnderr.Validationf("stat modifier used in %q but no character provided", trimmed)
	}

	breakdown, err := c.evaluate(parsed, char)
	if err != nil {
		return nil, err
	}

	kind := metrics.KindRoll
	if breakdown.IsMultihit() {
		kind = metrics.KindMultihit
	}
	metrics.DiceEvaluations.WithLabelValues(kind).Inc()

	c.logger.Debug("dice expression evaluated",
		"expression", breakdown.Expression,
		"rolls", breakdown.Rolls,
		"total", breakdown.Total)
	return breakdown, nil
}

// CalculateComplex evaluates expr with roll modifiers and formats it for
// display. The detailed breakdown is empty when concise is set.
func (c *Calculator) CalculateComplex(expr string, char *character.Character, concise bool) (int, string, string, error) {
	breakdown, err := c.Calculate(expr, char)
	if err != nil {
		return 0, "", "", err
	}

	formatted := FormatRoll(breakdown)
	if concise {
		return breakdown.Total, formatted, "", nil
	}
	return breakdown.Total, formatted, FormatDetail(breakdown), nil
}

func (c *Calculator) evaluate(parsed *expression, char *character.Character) (*Breakdown, error) {
	breakdown := &Breakdown{
		Expression: parsed.text,
		Advantage:  parsed.adv,
		Group:      parsed.dice,
	}

	values := make([]int, len(parsed.terms))
	for i, t := range parsed.terms {
		switch t.kind {
		case termNumber:
			values[i] = t.value
		case termStat:
			values[i] = char.StatModifier(t.stat)
			breakdown.StatMods = append(breakdown.StatMods, StatMod{Stat: t.stat.ShortName(), Value: values[i]})
		case termProficiency:
			values[i] = char.BaseProficiency
			breakdown.StatMods = append(breakdown.StatMods, StatMod{Stat: "prof", Value: values[i]})
		}
	}

	if parsed.dice == nil {
		total, err := chain(parsed.terms, values, 0)
		if err != nil {
			return nil, err
		}
		breakdown.Total = total
		breakdown.Modifiers = renderChain(parsed.terms, values)
		return breakdown, nil
	}

	state := &rollState{roller: c.roller}
	if parsed.multihit {
		if err := c.multihit(parsed, values, state, breakdown); err != nil {
			return nil, err
		}
		return breakdown, nil
	}

	dice := make([]Die, parsed.dice.Count)
	for i := range dice {
		die, err := state.rollDie(parsed.dice, parsed.adv)
		if err != nil {
			return nil, err
		}
		dice[i] = die
		breakdown.Rolls = append(breakdown.Rolls, die.Rolls...)
	}

	kept := keep(dice, parsed.dice)
	for _, die := range kept {
		breakdown.Kept = append(breakdown.Kept, die.Value)
		breakdown.DiceTotal += die.Value
	}
	if len(kept) > 0 {
		breakdown.Natural = kept[0].Natural
	}

	total, err := chain(parsed.terms, values, breakdown.DiceTotal)
	if err != nil {
		return nil, err
	}
	breakdown.Total = total
	breakdown.Modifiers = renderChain(parsed.terms, values)
	return breakdown, nil
}

// multihit rolls one independent die per hit. Each hit is its own die
// plus the hit bonus plus the arithmetic chain.
func (c *Calculator) multihit(parsed *expression, values []int, state *rollState, breakdown *Breakdown) error {
	for i := 0; i < parsed.dice.Count; i++ {
		die, err := state.rollDie(parsed.dice, parsed.adv)
		if err != nil {
			return err
		}

		hitTotal, err := chain(parsed.terms, values, die.Value)
		if err != nil {
			return err
		}
		hitTotal += parsed.hitBonus

		breakdown.Rolls = append(breakdown.Rolls, die.Rolls...)
		breakdown.Kept = append(breakdown.Kept, die.Value)
		breakdown.DiceTotal += die.Value
		breakdown.Hits = append(breakdown.Hits, Hit{
			Rolls:   die.Rolls,
			Natural: die.Natural,
			Total:   hitTotal,
		})
		breakdown.Total += hitTotal
	}

	if len(breakdown.Hits) > 0 {
		breakdown.Natural = breakdown.Hits[0].Natural
	}
	breakdown.Modifiers = renderChain(parsed.terms, values)
	if parsed.hitBonus != 0 {
		breakdown.Modifiers = append(breakdown.Modifiers, signed(parsed.hitBonus)+" per hit")
	}
	return nil
}

type rollState struct {
	roller     Roller
	explosions int
}

// rollDie rolls one die of group. With advantage width w it rolls w+1
// candidates and keeps the best (or worst for disadvantage).
func (s *rollState) rollDie(group *DiceGroup, adv int) (Die, error) {
	width := adv
	if width < 0 {
		width = -width
	}

	var die Die
	best := 0
	for candidate := 0; candidate <= width; candidate++ {
		rolls, natural, value, err := s.rollCandidate(group)
		if err != nil {
			return Die{}, err
		}
		die.Rolls = append(die.Rolls, rolls...)

		better := candidate == 0 ||
			(adv > 0 && value > best) ||
			(adv < 0 && value < best)
		if better {
			best = value
			die.Natural = natural
			die.Value = value
		}
	}
	return die, nil
}

// rollCandidate rolls, rerolls once, then explodes.
func (s *rollState) rollCandidate(group *DiceGroup) ([]int, int, int, error) {
	face, err := s.single(group.Sides)
	if err != nil {
		return nil, 0, 0, err
	}
	rolls := []int{face}

	if group.RerollAt > 0 && face <= group.RerollAt {
		face, err = s.single(group.Sides)
		if err != nil {
			return nil, 0, 0, err
		}
		rolls = append(rolls, face)
	}

	natural := face
	value := face
	last := face
	for group.ExplodeAt > 0 && last >= group.ExplodeAt && s.explosions < MaxExplosions {
		s.explosions++
		last, err = s.single(group.Sides)
		if err != nil {
			return nil, 0, 0, err
		}
		rolls = append(rolls, last)
		value += last
	}
	return rolls, natural, value, nil
}

func (s *rollState) single(sides int) (int, error) {
	result, err := s.roller.Roll(1, sides, 0)
	if err != nil {
		return 0, dnderr.Wrap(err, "failed to roll dice")
	}
	return result.Rolls[0], nil
}

func keep(dice []Die, group *DiceGroup) []Die {
	n := group.KeepHigh
	highest := true
	if group.KeepLow > 0 {
		n = group.KeepLow
		highest = false
	}
	if n <= 0 || n >= len(dice) {
		return dice
	}

	sorted := make([]Die, len(dice))
	copy(sorted, dice)
	sort.SliceStable(sorted, func(i, j int) bool {
		if highest {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].Value < sorted[j].Value
	})
	return sorted[:n]
}

// chain applies the terms left to right with the dice placeholder set to
// diceValue.
func chain(terms []term, values []int, diceValue int) (int, error) {
	total := 0
	for i, t := range terms {
		v := values[i]
		if t.kind == termDice {
			v = diceValue
		}
		switch t.op {
		case '+':
			total += v
		case '-':
			total -= v
		case '*':
			total *= v
		case '/':
			if v == 0 {
				return 0, dnderr.Validation("division by zero")
			}
			total /= v
		}
	}
	return total, nil
}

func renderChain(terms []term, values []int) []string {
	var mods []string
	for i, t := range terms {
		if t.kind == termDice {
			continue
		}
		v := values[i]
		switch {
		case t.op == '-':
			mods = append(mods, signed(-v))
		case t.op == '*' || t.op == '/':
			mods = append(mods, string(t.op)+strconv.Itoa(v))
		default:
			mods = append(mods, signed(v))
		}
	}
	return mods
}

func signed(v int) string {
	if v < 0 {
		return strconv.Itoa(v)
	}
	return "+" + strconv.Itoa(v)
}
