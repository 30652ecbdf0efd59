package match

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/jonesrussell/north-cloud/interlinker/internal/lexicon"
)

// PhraseIndex is an Aho-Corasick automaton over every candidate phrase of a
// run. One pass over the projected text tells which phrases occur at all, so
// the exact phase can skip phrases that are absent.
type PhraseIndex struct {
	mu       sync.Mutex
	matcher  *ahocorasick.Matcher
	phrases  []string
	position map[string]int
	scanned  string
	hits     map[int]struct{}
}

// NewPhraseIndex builds an index over phrases. Phrases are compared
// ASCII-case-insensitively with whitespace collapsed.
func NewPhraseIndex(phrases []string) *PhraseIndex {
	x := &PhraseIndex{position: make(map[string]int, len(phrases))}
	for _, p := range phrases {
		key := normalizePhrase(p)
		if key == "" {
			continue
		}
		if _, ok := x.position[key]; ok {
			continue
		}
		x.position[key] = len(x.phrases)
		x.phrases = append(x.phrases, key)
	}
	if len(x.phrases) > 0 {
		x.matcher = ahocorasick.NewStringMatcher(x.phrases)
	}
	return x
}

// Len is the number of distinct phrases indexed.
func (x *PhraseIndex) Len() int { return len(x.phrases) }

// Contains reports whether phrase occurs in lowerText. known is false when
// the phrase was never indexed, in which case present carries no meaning.
func (x *PhraseIndex) Contains(lowerText, phrase string) (present, known bool) {
	i, ok := x.position[normalizePhrase(phrase)]
	if !ok || x.matcher == nil {
		return false, false
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.hits == nil || x.scanned != lowerText {
		x.hits = make(map[int]struct{})
		for _, h := range x.matcher.Match([]byte(lowerText)) {
			x.hits[h] = struct{}{}
		}
		x.scanned = lowerText
	}
	_, present = x.hits[i]
	return present, true
}

func normalizePhrase(p string) string {
	return lexicon.LowerASCII(strings.Join(strings.Fields(p), " "))
}
