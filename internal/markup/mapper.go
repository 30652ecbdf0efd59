package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// maxExpansion bounds the boundary search on each side, in runes.
	maxExpansion        = 20
	minLengthRatio      = 0.6
	maxLengthRatio      = 1.8
	terminalPunctuation = ".!?'\""
)

// Span is a raw byte range of the markup.
type Span struct {
	Start int
	End   int
	Text  string
}

// Map resolves projected range [offset, offset+length) to a raw span that
// starts and ends on word boundaries. It reports false when no safe span
// exists.
func (p *Projection) Map(offset, length int) (Span, bool) {
	if offset < 0 || length <= 0 || offset+length > len(p.text) {
		return Span{}, false
	}
	start, end, ok := p.RawRange(offset, offset+length)
	if !ok {
		return Span{}, false
	}

	for i := 0; i < maxExpansion && start > 0; i++ {
		r, size := utf8.DecodeLastRuneInString(p.raw[:start])
		if IsBoundary(r) {
			break
		}
		start -= size
	}
	for i := 0; i < maxExpansion && end < len(p.raw); i++ {
		r, size := utf8.DecodeRuneInString(p.raw[end:])
		if IsBoundary(r) {
			break
		}
		end += size
	}

	if !p.Balanced(start, end) {
		return Span{}, false
	}

	stripped := Strip(p.raw[start:end])
	want := utf8.RuneCount(p.text[offset : offset+length])
	got := utf8.RuneCountInString(stripped)
	if float64(got) < minLengthRatio*float64(want) || float64(got) > maxLengthRatio*float64(want) {
		return Span{}, false
	}
	if !cleanEdges(stripped) {
		return Span{}, false
	}
	if !p.Boundary(start, end) {
		return Span{}, false
	}
	return Span{Start: start, End: end, Text: p.raw[start:end]}, true
}

func cleanEdges(s string) bool {
	if s == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	return isAlnum(first) && (isAlnum(last) || strings.ContainsRune(terminalPunctuation, last))
}

// CleanEdges reports whether stripped text opens on a letter or digit and
// closes on one or on terminal punctuation.
func CleanEdges(fragment string) bool {
	return cleanEdges(Strip(fragment))
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
