package translit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/maps"
)

// Boundary stands for a missing neighbour at the start or end of a word.
const Boundary rune = -1

// CaseMode controls how the case of a source letter is carried over to its
// replacement.
type CaseMode int

const (
	// CaseLeading uppercases the first letter of the replacement of an
	// uppercase source letter.
	CaseLeading CaseMode = iota
	// CaseWord behaves like CaseLeading, except that inside an all-caps word
	// of two or more letters the whole replacement is uppercased.
	CaseWord
)

func ParseCaseMode(s string) (CaseMode, error) {
	switch strings.ToLower(s) {
	case "", "leading":
		return CaseLeading, nil
	case "word":
		return CaseWord, nil
	}

	return CaseLeading, fmt.Errorf("unknown case mode %q", s)
}

func (m CaseMode) String() string {
	if m == CaseWord {
		return "word"
	}

	return "leading"
}

func (m CaseMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *CaseMode) UnmarshalText(b []byte) error {
	mode, err := ParseCaseMode(string(b))
	if err != nil {
		return err
	}

	*m = mode

	return nil
}

// Definition is the serialized form of a schema as stored in schema files.
type Definition struct {
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	URL           string            `json:"url,omitempty"`
	Case          CaseMode          `json:"case,omitempty"`
	Mapping       map[string]string `json:"mapping"`
	PrevMapping   map[string]string `json:"prev_mapping,omitempty"`
	NextMapping   map[string]string `json:"next_mapping,omitempty"`
	EndingMapping map[string]string `json:"ending_mapping,omitempty"`
	Samples       [][]string        `json:"samples,omitempty"`
}

type pair struct {
	first, second rune
}

// Schema is a validated transliteration rule set. It is immutable and safe
// for concurrent use.
type Schema struct {
	def Definition

	base      map[rune]string
	prev      map[pair]string
	next      map[pair]string
	endings   map[string]string
	maxEnding int

	rules []rule
}

// ParseSchema decodes a JSON schema definition and validates it.
func ParseSchema(data []byte) (*Schema, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	return NewSchema(def)
}

// NewSchema validates def and compiles it into a Schema. All problems found
// are reported together.
func NewSchema(def Definition) (*Schema, error) {
	s := &Schema{
		def:     cloneDefinition(def),
		base:    make(map[rune]string, len(def.Mapping)),
		prev:    make(map[pair]string, len(def.PrevMapping)),
		next:    make(map[pair]string, len(def.NextMapping)),
		endings: make(map[string]string, len(def.EndingMapping)),
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: schema %q: %s", ErrInvalidSchema, def.Name, fmt.Sprintf(format, args...)))
	}

	if def.Name == "" {
		fail("empty name")
	}
	if len(def.Mapping) == 0 {
		fail("empty mapping")
	}

	for key, repl := range def.Mapping {
		k := []rune(strings.ToLower(key))
		if len(k) != 1 {
			fail("mapping key %q must be a single letter", key)
			continue
		}
		if _, dup := s.base[k[0]]; dup {
			fail("duplicate mapping key %q", key)
		}
		if hasUpper(repl) {
			fail("mapping %q: replacement %q has uppercase letters", key, repl)
		}
		s.base[k[0]] = repl
	}

	for key, repl := range def.PrevMapping {
		k := []rune(strings.ToLower(key))
		var p pair
		switch len(k) {
		case 1:
			p = pair{Boundary, k[0]}
		case 2:
			p = pair{k[0], k[1]}
		default:
			fail("prev_mapping key %q must be one or two letters", key)
			continue
		}
		if _, dup := s.prev[p]; dup {
			fail("duplicate prev_mapping key %q", key)
		}
		if hasUpper(repl) {
			fail("prev_mapping %q: replacement %q has uppercase letters", key, repl)
		}
		s.prev[p] = repl
	}

	for key, repl := range def.NextMapping {
		k := []rune(strings.ToLower(key))
		var p pair
		switch len(k) {
		case 1:
			p = pair{k[0], Boundary}
		case 2:
			p = pair{k[0], k[1]}
		default:
			fail("next_mapping key %q must be one or two letters", key)
			continue
		}
		if _, dup := s.next[p]; dup {
			fail("duplicate next_mapping key %q", key)
		}
		if hasUpper(repl) {
			fail("next_mapping %q: replacement %q has uppercase letters", key, repl)
		}
		s.next[p] = repl
	}

	for key, repl := range def.EndingMapping {
		k := strings.ToLower(key)
		n := utf8.RuneCountInString(k)
		if n == 0 {
			fail("empty ending_mapping key")
			continue
		}
		if _, dup := s.endings[k]; dup {
			fail("duplicate ending_mapping key %q", key)
		}
		if hasUpper(repl) {
			fail("ending_mapping %q: replacement %q has uppercase letters", key, repl)
		}
		s.endings[k] = repl
		s.maxEnding = max(s.maxEnding, n)
	}

	for i, sample := range def.Samples {
		if len(sample) != 2 {
			fail("sample %d must be a pair, got %d items", i, len(sample))
		}
	}

	errs = append(errs, s.checkAlphabet()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	s.rules = compileRules(s)

	return s, nil
}

// checkAlphabet reports rule keys that use letters the base mapping lacks.
func (s *Schema) checkAlphabet() []error {
	var errs []error
	seen := map[rune]bool{}
	check := func(r rune) {
		if r == Boundary || !unicode.IsLetter(r) || seen[r] {
			return
		}
		seen[r] = true
		if _, ok := s.base[r]; !ok {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidSchema, &UnmappedCharacterError{Schema: s.def.Name, Char: r}))
		}
	}

	for p := range s.prev {
		check(p.first)
		check(p.second)
	}
	for p := range s.next {
		check(p.first)
		check(p.second)
	}
	for k := range s.endings {
		for _, r := range k {
			check(r)
		}
	}

	return errs
}

func (s *Schema) Name() string        { return s.def.Name }
func (s *Schema) Description() string { return s.def.Description }
func (s *Schema) URL() string         { return s.def.URL }
func (s *Schema) Case() CaseMode      { return s.def.Case }

// Samples returns the input/output pairs shipped with the schema.
func (s *Schema) Samples() [][2]string {
	out := make([][2]string, 0, len(s.def.Samples))
	for _, sample := range s.def.Samples {
		out = append(out, [2]string{sample[0], sample[1]})
	}

	return out
}

// Definition returns a copy of the definition the schema was built from.
func (s *Schema) Definition() Definition {
	return cloneDefinition(s.def)
}

// Letter returns the base replacement for r, ignoring case.
func (s *Schema) Letter(r rune) (string, error) {
	if repl, ok := s.base[unicode.ToLower(r)]; ok {
		return repl, nil
	}

	return "", &UnmappedCharacterError{Schema: s.def.Name, Char: r}
}

// Context returns the context rule replacement for cur between prev and
// next. Rules keyed on the following letter are checked first. Pass Boundary
// for a missing neighbour.
func (s *Schema) Context(prev, cur, next rune) (string, bool) {
	prev, cur, next = foldRune(prev), foldRune(cur), foldRune(next)

	if repl, ok := s.next[pair{cur, next}]; ok {
		return repl, true
	}
	if repl, ok := s.prev[pair{prev, cur}]; ok {
		return repl, true
	}

	return "", false
}

// Ending finds the longest ending rule that is a suffix of word. n is the
// length of the matched suffix in runes.
func (s *Schema) Ending(word string) (n int, repl string, ok bool) {
	lower := []rune(strings.ToLower(word))
	start, repl, ok := s.matchEnding(lower)
	if !ok {
		return 0, "", false
	}

	return len(lower) - start, repl, true
}

func (s *Schema) matchEnding(lower []rune) (start int, repl string, ok bool) {
	for n := min(s.maxEnding, len(lower)); n > 0; n-- {
		start = len(lower) - n
		if repl, ok = s.endings[string(lower[start:])]; ok {
			return start, repl, true
		}
	}

	return 0, "", false
}

func foldRune(r rune) rune {
	if r == Boundary {
		return r
	}

	return unicode.ToLower(r)
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}

	return false
}

func cloneDefinition(def Definition) Definition {
	out := def
	out.Mapping = maps.Clone(def.Mapping)
	out.PrevMapping = maps.Clone(def.PrevMapping)
	out.NextMapping = maps.Clone(def.NextMapping)
	out.EndingMapping = maps.Clone(def.EndingMapping)
	if def.Samples != nil {
		out.Samples = make([][]string, len(def.Samples))
		for i, sample := range def.Samples {
			out.Samples[i] = append([]string(nil), sample...)
		}
	}

	return out
}
