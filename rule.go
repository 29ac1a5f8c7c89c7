package translit

// cursor is the scan position inside one word.
type cursor struct {
	lower []rune
	pos   int

	// endAt is where the matched ending starts, or -1.
	endAt  int
	ending string
}

func (c *cursor) cur() rune {
	return c.lower[c.pos]
}

func (c *cursor) prev() rune {
	if c.pos == 0 {
		return Boundary
	}

	return c.lower[c.pos-1]
}

func (c *cursor) next() rune {
	if c.pos+1 >= len(c.lower) {
		return Boundary
	}

	return c.lower[c.pos+1]
}

// rule resolves the replacement at the cursor. width is the number of
// source runes consumed.
type rule interface {
	match(c *cursor) (repl string, width int, ok bool)
}

type endingRule struct{}

func (endingRule) match(c *cursor) (string, int, bool) {
	if c.endAt < 0 || c.pos != c.endAt {
		return "", 0, false
	}

	return c.ending, len(c.lower) - c.pos, true
}

type side int

const (
	before side = iota
	after
)

type contextRule struct {
	side  side
	table map[pair]string
}

func (r contextRule) match(c *cursor) (string, int, bool) {
	key := pair{c.prev(), c.cur()}
	if r.side == after {
		key = pair{c.cur(), c.next()}
	}

	repl, ok := r.table[key]

	return repl, 1, ok
}

type baseRule struct {
	table map[rune]string
}

func (r baseRule) match(c *cursor) (string, int, bool) {
	repl, ok := r.table[c.cur()]

	return repl, 1, ok
}

// compileRules lists the rule tiers of s from highest to lowest priority.
func compileRules(s *Schema) []rule {
	rules := make([]rule, 0, 4)
	if len(s.endings) > 0 {
		rules = append(rules, endingRule{})
	}
	if len(s.next) > 0 {
		rules = append(rules, contextRule{side: after, table: s.next})
	}
	if len(s.prev) > 0 {
		rules = append(rules, contextRule{side: before, table: s.prev})
	}

	return append(rules, baseRule{table: s.base})
}
