package lexicon

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// significantMinRunes is the exclusive lower bound on token length for
	// similarity scoring.
	significantMinRunes = 3
	// bigramBoost is added per shared bigram.
	bigramBoost = 0.12
)

// Bare lower-cases w and drops everything that is not a letter or digit.
func Bare(w string) string {
	var b strings.Builder
	b.Grow(len(w))
	for _, r := range w {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// TrimEdges lower-cases w and strips non-alphanumeric runes from both ends,
// keeping inner hyphens and apostrophes.
func TrimEdges(w string) string {
	w = strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToLower(w)
}

// Significant returns the ordered tokens of text that are longer than three
// runes and are not stop words.
func Significant(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		t := TrimEdges(f)
		if utf8.RuneCountInString(t) <= significantMinRunes || IsStopWord(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Jaccard returns |A∩B| / |A∪B| over the distinct tokens of a and b.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	union := len(setA)
	shared := 0
	for t := range setB {
		if _, ok := setA[t]; ok {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// Similarity scores x against y: Jaccard over significant tokens plus a
// boost for every bigram of the shorter operand that appears verbatim in the
// longer one. The result is capped at 1.
func Similarity(x, y string) float64 {
	tx, ty := Significant(x), Significant(y)
	score := Jaccard(tx, ty)
	if score == 0 {
		return 0
	}

	short, long := ty, x
	if len(tx) < len(ty) {
		short, long = tx, y
	}
	flat := " " + Flatten(long) + " "
	for i := 0; i+1 < len(short); i++ {
		if strings.Contains(flat, " "+short[i]+" "+short[i+1]+" ") {
			score += bigramBoost
		}
	}

	if score > 1 {
		return 1
	}
	return score
}

// Flatten lower-cases text, trims punctuation from every token and joins the
// tokens with single spaces.
func Flatten(text string) string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if t := TrimEdges(f); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

// Normalize case-folds s, composes it to NFC and collapses whitespace. Two
// anchor texts with the same Normalize value are the same anchor.
func Normalize(s string) string {
	folded := cases.Fold().String(norm.NFC.String(s))
	return strings.Join(strings.Fields(folded), " ")
}

// LowerASCII lower-cases ASCII letters only, so byte offsets into the result
// line up with offsets into s.
func LowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
