package match

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/jonesrussell/north-cloud/interlinker/internal/lexicon"
)

const minSentenceLen = 40

type token struct {
	start int
	end   int
	word  string
	// brk marks a token no window may span: it has no letters or digits, or
	// it carries an angle bracket.
	brk bool
}

type sentence struct {
	start  int
	end    int
	tokens []token
}

// arena caches the sentence split of the most recent projected text. The
// projected text does not change when links are inserted, so a run reuses
// one split across every attempt.
type arena struct {
	mu        sync.Mutex
	text      string
	sentences []sentence
}

func (a *arena) get(text string) []sentence {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sentences != nil && a.text == text {
		return a.sentences
	}
	a.text = text
	a.sentences = splitSentences(text)
	return a.sentences
}

func isSentenceEnd(c byte) bool {
	return c == '.' || c == '!' || c == '?' || c == '\n'
}

func splitSentences(text string) []sentence {
	out := make([]sentence, 0)
	start := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && !isSentenceEnd(text[i]) {
			continue
		}
		if len(strings.TrimSpace(text[start:i])) >= minSentenceLen {
			out = append(out, sentence{start: start, end: i, tokens: tokenize(text, start, i)})
		}
		start = i + 1
	}
	return out
}

// tokenize splits text[start:end] on spaces and trims each token to its
// first and last letter or digit. A token with no letters or digits keeps its
// raw range and an empty word.
func tokenize(text string, start, end int) []token {
	var out []token
	i := start
	for i < end {
		for i < end && text[i] == ' ' {
			i++
		}
		j := i
		for j < end && text[j] != ' ' {
			j++
		}
		if j > i {
			raw := text[i:j]
			lead := strings.IndexFunc(raw, isAlnum)
			brk := strings.ContainsAny(raw, "<>")
			if lead < 0 {
				out = append(out, token{start: i, end: j, brk: true})
			} else {
				trail := strings.LastIndexFunc(raw, isAlnum)
				_, size := utf8.DecodeRuneInString(raw[trail:])
				out = append(out, token{start: i + lead, end: i + trail + size, word: lexicon.TrimEdges(raw), brk: brk})
			}
		}
		i = j
	}
	return out
}

// spansBreak reports whether any of toks is marked brk.
func spansBreak(toks []token) bool {
	for _, t := range toks {
		if t.brk {
			return true
		}
	}
	return false
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
