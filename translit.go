// Package translit transliterates Cyrillic text into Latin script following
// named rule sets such as ICAO Doc 9303, BGN/PCGN, GOST 7.79 or the
// Wikipedia convention.
//
// A Schema holds a base letter mapping, context rules keyed on the previous
// or the next letter, and ending rules applied to word-final letters. The
// most specific rule wins: ending, then next-letter context, then
// previous-letter context, then the base mapping. Characters a schema does not
// know are copied unchanged.
//
//	s, _ := translit.Lookup("wikipedia")
//	translit.Translate(s, "Юлия") // Yuliya
package translit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ending rules only apply to words at least this long.
const minEndingWord = 3

type Option func(*Translator)

// WithCase overrides the case mode of the schema.
func WithCase(mode CaseMode) Option {
	return func(t *Translator) {
		t.mode = mode
	}
}

// WithoutDiacritics folds the output to base Latin letters, e.g. ž to z.
// It applies to the whole output, including text copied unchanged.
func WithoutDiacritics() Option {
	return func(t *Translator) {
		t.plain = true
	}
}

// Translator applies one schema to text. It holds no mutable state and can be
// shared between goroutines.
type Translator struct {
	schema *Schema
	mode   CaseMode
	plain  bool
}

func New(s *Schema, opts ...Option) *Translator {
	t := &Translator{
		schema: s,
		mode:   s.Case(),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Translate transliterates text with the default options of s.
func Translate(s *Schema, text string) string {
	return New(s).Translate(text)
}

func (t *Translator) Schema() *Schema {
	return t.schema
}

func (t *Translator) Translate(text string) string {
	text = normalize(text)

	var b strings.Builder
	b.Grow(len(text) + len(text)/2)

	for _, w := range splitWords(text) {
		if !hasLetter(w) {
			b.WriteString(w)

			continue
		}

		t.word(&b, w)
	}

	if t.plain {
		return stripDiacritics(b.String())
	}

	return b.String()
}

func (t *Translator) word(b *strings.Builder, w string) {
	src := []rune(w)
	c := &cursor{
		lower: make([]rune, len(src)),
		endAt: -1,
	}
	for i, r := range src {
		c.lower[i] = unicode.ToLower(r)
	}

	// at least one letter has to stay in front of the ending
	if len(src) >= minEndingWord {
		if start, repl, ok := t.schema.matchEnding(c.lower[1:]); ok {
			c.endAt, c.ending = start+1, repl
		}
	}

	caps := t.mode == CaseWord && allCaps(src)

	for c.pos < len(src) {
		repl, width, ok := t.resolve(c)
		if !ok {
			b.WriteRune(src[c.pos])
			c.pos++

			continue
		}

		switch {
		case c.pos == c.endAt:
			// one uppercase letter in the span uppercases the whole ending
			if hasUpper(string(src[c.pos:])) {
				repl = toUpper(repl, true)
			}
		case unicode.IsUpper(src[c.pos]):
			repl = toUpper(repl, caps)
		}

		b.WriteString(repl)
		c.pos += width
	}
}

func (t *Translator) resolve(c *cursor) (string, int, bool) {
	for _, r := range t.schema.rules {
		if repl, width, ok := r.match(c); ok {
			return repl, width, true
		}
	}

	return "", 0, false
}

func toUpper(repl string, whole bool) string {
	if whole {
		return strings.ToUpper(repl)
	}

	r, n := utf8.DecodeRuneInString(repl)
	if n == 0 {
		return repl
	}

	return string(unicode.ToUpper(r)) + repl[n:]
}

// allCaps reports whether w has two or more letters, all of them uppercase.
func allCaps(w []rune) bool {
	letters := 0
	for _, r := range w {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}

	return letters > 1
}
