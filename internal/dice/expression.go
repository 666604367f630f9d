package dice

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

const (
	// MaxDice bounds the count of a single dice group.
	MaxDice = 100
	// MaxSides bounds the size of a die.
	MaxSides = 1000
	// MaxExplosions caps exploding dice across a whole evaluation.
	MaxExplosions = 3
)

var (
	advantagePattern    = regexp.MustCompile(`(?i)\badvantage(?:\s+(\d+))?\b`)
	disadvantagePattern = regexp.MustCompile(`(?i)\bdisadvantage(?:\s+(\d+))?\b`)
	multihitPattern     = regexp.MustCompile(`(?i)\bmultihit(?:\s+(-?\d+))?\b`)
	integerPattern      = regexp.MustCompile(`^[+-]?\d+$`)
	dicePresencePattern = regexp.MustCompile(`(?i)\d*d\d+`)
)

type termKind int

const (
	termNumber termKind = iota
	termStat
	termProficiency
	termDice
)

// DiceGroup is a parsed NdS group with its roll modifiers.
type DiceGroup struct {
	Count    int
	Sides    int
	KeepHigh int
	KeepLow  int
	// RerollAt rerolls once any die showing RerollAt or less.
	RerollAt int
	// ExplodeAt rolls an extra die whenever a die shows ExplodeAt or more.
	ExplodeAt int
}

type term struct {
	op    byte
	kind  termKind
	value int
	stat  character.StatType
	text  string
}

// expression is the parsed form of a dice string.
type expression struct {
	text     string
	terms    []term
	dice     *DiceGroup
	adv      int
	multihit bool
	hitBonus int
}

// HasDice reports whether expr contains a dice group. Roll modifiers are
// only folded into expressions that roll.
func HasDice(expr string) bool {
	return dicePresencePattern.MatchString(stripKeywords(expr))
}

func stripKeywords(expr string) string {
	expr = disadvantagePattern.ReplaceAllString(expr, "")
	expr = advantagePattern.ReplaceAllString(expr, "")
	return multihitPattern.ReplaceAllString(expr, "")
}

// parseExpression tokenizes expr. Stat values are resolved later so a
// parse never needs a character.
func parseExpression(expr string) (*expression, error) {
	parsed := &expression{text: strings.TrimSpace(expr)}
	if parsed.text == "" {
		return nil, dnderr.Validation("dice expression is empty")
	}

	advMatches := advantagePattern.FindAllStringSubmatch(parsed.text, -1)
	disMatches := disadvantagePattern.FindAllStringSubmatch(parsed.text, -1)
	if len(advMatches) > 0 && len(disMatches) > 0 {
		return nil, dnderr.Validationf("cannot have both advantage and disadvantage in %q", parsed.text)
	}
	for _, m := range advMatches {
		parsed.adv += keywordWidth(m[1])
	}
	for _, m := range disMatches {
		parsed.adv -= keywordWidth(m[1])
	}

	if m := multihitPattern.FindStringSubmatch(parsed.text); m != nil {
		parsed.multihit = true
		if m[1] != "" {
			parsed.hitBonus, _ = strconv.Atoi(m[1])
		}
	}

	body := strings.Join(strings.Fields(strings.ToLower(stripKeywords(parsed.text))), "")
	if body == "" {
		return nil, dnderr.Validationf("invalid dice expression %q", parsed.text)
	}

	if err := parsed.tokenize(body); err != nil {
		return nil, err
	}

	if parsed.dice == nil && (parsed.adv != 0 || parsed.multihit) {
		return nil, dnderr.Validationf("%q needs a dice group for advantage or multihit", parsed.text)
	}
	return parsed, nil
}

func keywordWidth(raw string) int {
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (e *expression) tokenize(body string) error {
	pos := 0
	op := byte('+')
	if body[0] == '+' || body[0] == '-' {
		op = body[0]
		pos++
	}

	for {
		if pos >= len(body) {
			return dnderr.Validationf("trailing operator in %q", e.text)
		}
		if isOperator(body[pos]) {
			return dnderr.Validationf("consecutive operators in %q", e.text)
		}

		t, next, err := e.readTerm(body, pos)
		if err != nil {
			return err
		}
		t.op = op
		e.terms = append(e.terms, t)
		pos = next

		if pos >= len(body) {
			return nil
		}
		if !isOperator(body[pos]) {
			return dnderr.Validationf("unexpected %q in %q", body[pos:], e.text)
		}
		op = body[pos]
		pos++
	}
}

func (e *expression) readTerm(body string, pos int) (term, int, error) {
	start := pos

	if body[pos] == '(' {
		end := strings.IndexByte(body[pos:], ')')
		if end < 0 {
			return term{}, 0, dnderr.Validationf("unclosed parenthesis in %q", e.text)
		}
		t, err := e.identifier(body[pos+1 : pos+end])
		return t, pos + end + 1, err
	}

	if isDigit(body[pos]) || (body[pos] == 'd' && pos+1 < len(body) && isDigit(body[pos+1])) {
		count, next := readInt(body, pos)
		if next < len(body) && body[next] == 'd' && next+1 < len(body) && isDigit(body[next+1]) {
			if next == pos {
				count = 1
			}
			return e.readDice(body, start, count, next+1)
		}
		return term{kind: termNumber, value: count, text: body[start:next]}, next, nil
	}

	for pos < len(body) && isLetter(body[pos]) {
		pos++
	}
	if pos == start {
		return term{}, 0, dnderr.Validationf("unexpected %q in %q", body[start:], e.text)
	}
	t, err := e.identifier(body[start:pos])
	return t, pos, err
}

func (e *expression) readDice(body string, start, count, pos int) (term, int, error) {
	if e.dice != nil {
		return term{}, 0, dnderr.Validationf("only one dice group is supported in %q", e.text)
	}

	sides, pos := readInt(body, pos)
	group := &DiceGroup{Count: count, Sides: sides}

	for pos < len(body) && !isOperator(body[pos]) {
		switch {
		case strings.HasPrefix(body[pos:], "kh"):
			group.KeepHigh, pos = readOptionalInt(body, pos+2, 1)
		case strings.HasPrefix(body[pos:], "kl"):
			group.KeepLow, pos = readOptionalInt(body, pos+2, 1)
		case body[pos] == 'k':
			group.KeepHigh, pos = readOptionalInt(body, pos+1, 1)
		case body[pos] == 'r':
			group.RerollAt, pos = readOptionalInt(body, pos+1, 1)
		case body[pos] == 'e' || body[pos] == '!':
			group.ExplodeAt, pos = readOptionalInt(body, pos+1, sides)
		default:
			return term{}, 0, dnderr.Validationf("unknown dice modifier %q in %q", body[pos:], e.text)
		}
	}

	if err := group.validate(); err != nil {
		return term{}, 0, dnderr.Wrapf(err, "invalid dice expression %q", e.text)
	}

	e.dice = group
	return term{kind: termDice, text: body[start:pos]}, pos, nil
}

func (g *DiceGroup) validate() error {
	switch {
	case g.Sides < 1:
		return dnderr.Validation("dice must have at least one side")
	case g.Count < 1:
		return dnderr.Validation("dice count must be at least one")
	case g.Count > MaxDice:
		return dnderr.Validationf("cannot roll more than %d dice", MaxDice)
	case g.Sides > MaxSides:
		return dnderr.Validationf("dice cannot have more than %d sides", MaxSides)
	case g.KeepHigh > 0 && g.KeepLow > 0:
		return dnderr.Validation("cannot keep both highest and lowest")
	case g.RerollAt >= g.Sides:
		return dnderr.Validationf("reroll threshold %d rerolls every face of a d%d", g.RerollAt, g.Sides)
	case g.ExplodeAt > 0 && g.ExplodeAt <= 1:
		return dnderr.Validation("explode threshold must be above 1")
	}
	return nil
}

func (e *expression) identifier(name string) (term, error) {
	name = strings.TrimSpace(name)
	if name == "prof" || name == "proficiency" {
		return term{kind: termProficiency, text: name}, nil
	}
	if stat, ok := character.ParseStat(name); ok {
		return term{kind: termStat, stat: stat, text: name}, nil
	}
	return term{}, dnderr.Validationf("unknown token %q in %q", name, e.text)
}

// needsCharacter reports whether the expression references stats.
func (e *expression) needsCharacter() bool {
	for _, t := range e.terms {
		if t.kind == termStat || t.kind == termProficiency {
			return true
		}
	}
	return false
}

func readInt(s string, pos int) (int, int) {
	start := pos
	for pos < len(s) && isDigit(s[pos]) {
		pos++
	}
	if start == pos {
		return 0, pos
	}
	n, err := strconv.Atoi(s[start:pos])
	if err != nil {
		return 0, pos
	}
	return n, pos
}

func readOptionalInt(s string, pos, fallback int) (int, int) {
	n, next := readInt(s, pos)
	if next == pos {
		return fallback, pos
	}
	return n, next
}

func isOperator(b byte) bool {
	return b == '+' || b == '-' || b == '*' || b == '/'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}
