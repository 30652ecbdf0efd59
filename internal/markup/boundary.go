package markup

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const boundaryPunctuation = ".,;:!?()[]{}'\"-–—/“”‘’…"

// IsBoundary reports whether r may sit next to an anchor edge.
func IsBoundary(r rune) bool {
	return unicode.IsSpace(r) || r == '<' || r == '>' || strings.ContainsRune(boundaryPunctuation, r)
}

// Balanced reports whether raw range [start, end) holds properly nested
// open and close tags and does not cut through any tag.
func (p *Projection) Balanced(start, end int) bool {
	first := sort.Search(len(p.tags), func(i int) bool { return p.tags[i].End > start })
	var stack []string
	for _, t := range p.tags[first:] {
		if t.Start >= end {
			break
		}
		if t.Start < start || t.End > end {
			return false
		}
		switch t.Kind {
		case TagOpen:
			stack = append(stack, t.Name)
		case TagClose:
			if len(stack) == 0 || stack[len(stack)-1] != t.Name {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// Boundary applies the word-boundary rule to raw range [start, end): the
// runes just outside the range are boundary characters and the range is
// balanced.
func (p *Projection) Boundary(start, end int) bool {
	if start < 0 || end > len(p.raw) || start >= end {
		return false
	}
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(p.raw[:start]); !IsBoundary(r) {
			return false
		}
	}
	if end < len(p.raw) {
		if r, _ := utf8.DecodeRuneInString(p.raw[end:]); !IsBoundary(r) {
			return false
		}
	}
	return p.Balanced(start, end)
}
