package translit

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax29"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalize composes decomposed letters such as и + U+0306 into й.
func normalize(str string) string {
	if norm.NFC.IsNormalString(str) {
		return str
	}

	return norm.NFC.String(str)
}

func stripDiacritics(str string) string {
	result, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), str)
	if err != nil {
		return str
	}

	return result
}

// The word breaker rescans its buffer for every break, so its cost grows
// with the square of the chunk length. Longer chunks are split on letters.
const maxSegment = 256

// splitWords cuts str into UAX #29 word segments. Joined together the
// segments always give back str.
func splitWords(str string) []string {
	var words []string
	for _, chunk := range spaceRuns(str) {
		switch {
		case unicode.IsSpace(firstRune(chunk)):
			words = append(words, chunk)
		case len(chunk) > maxSegment:
			words = append(words, letterRuns(chunk)...)
		default:
			words = append(words, segmentWords(chunk)...)
		}
	}

	return words
}

func segmentWords(str string) []string {
	seg := segment.NewSegmenter(uax29.NewWordBreaker(1))
	seg.Init(strings.NewReader(str))
	seg.Buffer(make([]byte, 0, maxSegment+utf8.UTFMax), maxSegment+utf8.UTFMax)

	var (
		words []string
		size  int
	)
	for seg.Next() {
		w := seg.Text()
		size += len(w)
		words = append(words, w)
	}

	if seg.Err() != nil || size != len(str) || strings.Join(words, "") != str {
		return letterRuns(str)
	}

	return words
}

// spaceRuns splits str into alternating runs of white space and everything
// else.
func spaceRuns(str string) []string {
	return splitRuns(str, unicode.IsSpace)
}

// letterRuns splits str into alternating runs of letters and non-letters.
func letterRuns(str string) []string {
	return splitRuns(str, isWordRune)
}

func splitRuns(str string, in func(rune) bool) []string {
	if str == "" {
		return nil
	}

	var (
		runs  []string
		start int
		inRun bool
	)
	for i, r := range str {
		match := in(r)
		if i > start && match != inRun {
			runs = append(runs, str[start:i])
			start = i
		}
		inRun = match
	}

	return append(runs, str[start:])
}

func firstRune(str string) rune {
	r, _ := utf8.DecodeRuneInString(str)

	return r
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Mn, r)
}

func hasLetter(str string) bool {
	for _, r := range str {
		if unicode.IsLetter(r) {
			return true
		}
	}

	return false
}
