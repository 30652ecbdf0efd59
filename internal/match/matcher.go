// Package match locates a candidate anchor phrase, or the window of text most
// similar to it, inside a markup projection.
package match

import (
	"strings"

	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/lexicon"
	"github.com/jonesrussell/north-cloud/interlinker/internal/markup"
)

// Matcher defaults.
const (
	DefaultRelevanceThreshold = 0.55
	DefaultMinDistance        = 500
)

const (
	exactScore    = 0.95
	phraseWeight  = 0.55
	titleWeight   = 0.45
	minMatchWords = 3
	maxWindow     = 5
	minWindow     = 3
)

// Config controls match acceptance.
type Config struct {
	// RelevanceThreshold is the minimum semantic score accepted.
	RelevanceThreshold float64
	// MinDistance is the minimum separation, in projected bytes, from any
	// used offset.
	MinDistance int
}

// Query is one search request.
type Query struct {
	Phrase string
	Title  string
	// Used holds projected offsets of links already in the document.
	Used []int
}

// Match is a located span of the document.
type Match struct {
	Span       markup.Span
	TextOffset int
	TextLength int
	// Text is the projected text of the span with whitespace collapsed.
	Text  string
	Score float64
	Type  domain.MatchType
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithPhraseIndex lets the exact phase skip phrases the index reports
// absent.
func WithPhraseIndex(index *PhraseIndex) Option {
	return func(m *Matcher) {
		m.index = index
	}
}

// Matcher runs the exact phase and then the semantic phase.
type Matcher struct {
	cfg   Config
	index *PhraseIndex
	arena arena
}

// New creates a Matcher. Zero config fields take the package defaults.
func New(cfg Config, opts ...Option) *Matcher {
	if cfg.RelevanceThreshold <= 0 {
		cfg.RelevanceThreshold = DefaultRelevanceThreshold
	}
	if cfg.MinDistance < 0 {
		cfg.MinDistance = 0
	}
	m := &Matcher{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Find returns the first safe exact occurrence of the phrase or, failing
// that, the best semantic window scoring at least the relevance threshold.
func (m *Matcher) Find(p *markup.Projection, q Query) (Match, bool) {
	if res, ok := m.exact(p, q); ok {
		return res, true
	}
	return m.semantic(p, q)
}

func (m *Matcher) exact(p *markup.Projection, q Query) (Match, bool) {
	needle := normalizePhrase(q.Phrase)
	if needle == "" {
		return Match{}, false
	}
	lower := lexicon.LowerASCII(p.Text())
	if m.index != nil {
		if present, known := m.index.Contains(lower, needle); known && !present {
			return Match{}, false
		}
	}

	for from := 0; from < len(lower); {
		i := strings.Index(lower[from:], needle)
		if i < 0 {
			break
		}
		off := from + i
		from = off + 1
		if m.tooClose(off, q.Used) || p.Guarded(off, off+len(needle)) {
			continue
		}
		if res, ok := m.resolve(p, off, len(needle), exactScore, domain.MatchExact); ok {
			return res, true
		}
	}
	return Match{}, false
}

func (m *Matcher) semantic(p *markup.Projection, q Query) (Match, bool) {
	text := p.Text()
	bestScore := 0.0
	bestStart, bestEnd := -1, -1

	for _, s := range m.arena.get(text) {
		toks := s.tokens
		for size := min(maxWindow, len(toks)); size >= minWindow; size-- {
			for i := 0; i+size <= len(toks); i++ {
				first, last := toks[i], toks[i+size-1]
				if spansBreak(toks[i:i+size]) {
					continue
				}
				if lexicon.IsStopWord(first.word) || lexicon.IsStopWord(last.word) {
					continue
				}
				if m.tooClose(first.start, q.Used) || p.Guarded(first.start, last.end) {
					continue
				}
				window := text[first.start:last.end]
				score := phraseWeight*lexicon.Similarity(window, q.Phrase) +
					titleWeight*lexicon.Similarity(window, q.Title)
				if score > bestScore {
					bestScore, bestStart, bestEnd = score, first.start, last.end
				}
			}
		}
	}

	if bestStart < 0 || bestScore < m.cfg.RelevanceThreshold {
		return Match{}, false
	}
	return m.resolve(p, bestStart, bestEnd-bestStart, bestScore, domain.MatchSemantic)
}

func (m *Matcher) resolve(p *markup.Projection, off, length int, score float64, typ domain.MatchType) (Match, bool) {
	span, ok := p.Map(off, length)
	if !ok {
		return Match{}, false
	}
	words := strings.Fields(p.Text()[off : off+length])
	if len(words) < minMatchWords {
		return Match{}, false
	}
	return Match{
		Span:       span,
		TextOffset: off,
		TextLength: length,
		Text:       strings.Join(words, " "),
		Score:      score,
		Type:       typ,
	}, true
}

func (m *Matcher) tooClose(off int, used []int) bool {
	for _, u := range used {
		d := off - u
		if d < 0 {
			d = -d
		}
		if d < m.cfg.MinDistance {
			return true
		}
	}
	return false
}
