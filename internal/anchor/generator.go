package anchor

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/lexicon"
)

// DefaultMaxCandidates caps Generate when the caller passes a non-positive
// limit.
const DefaultMaxCandidates = 12

const (
	minTitleRunes     = 10
	minTitleTokens    = 3
	minTokenRunes     = 2
	patternBonus      = 20
	patternMinScore   = 50
	windowMinScore    = 55
	firstTokenBonus   = 15
	secondTokenBonus  = 8
	longWindowBonus   = 10
	weakLeaderBonus   = 5
	actionMinScore    = 50
	maxWindow         = 5
	minWindow         = 3
	longWindowMinimum = 4
)

const word = `[\p{L}\p{N}][\p{L}\p{N}'’-]*`

var titlePatterns = []struct {
	re    *regexp.Regexp
	whole bool
}{
	{re: regexp.MustCompile(`(?i)\b(?:complete|ultimate|definitive|comprehensive|beginner'?s)\s+guide\s+(?:to|for|on)\s+(` + word + `(?:\s+` + word + `){1,4})`)},
	{re: regexp.MustCompile(`(?i)\bhow\s+to\s+(` + word + `(?:\s+` + word + `){1,4})`)},
	{re: regexp.MustCompile(`(?i)\bbest\s+(` + word + `(?:\s+` + word + `){0,3})\s+for\b`)},
	{re: regexp.MustCompile(`(?i)` + word + `(?:\s+` + word + `)?\s+vs\.?\s+` + word + `(?:\s+` + word + `)?`), whole: true},
}

// Suffixes are stripped in order, each only when enough tokens remain.
var titleSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*[-–—|]\s*[\p{L}\p{N}\s'’]*\bblog\s*$`),
	regexp.MustCompile(`(?i)\s*[-–—|:(\[]?\s*(?:19|20)\d{2}\s*[)\]]?\s*$`),
	regexp.MustCompile(`(?i)\s*[-–—|:]?\s*(?:\b(?:a|the|your)\s+)?(?:\b(?:complete|ultimate|definitive|comprehensive|beginner'?s|quick|essential)\s+)?\bguide\s*$`),
}

var actionPrefixes = []string{"Mastering", "Understanding", "Implementing", "Optimizing", "Creating"}

// Generate derives ranked anchor candidates from a destination title. The
// result is ordered best first and holds at most limit entries.
func Generate(title string, limit int) []domain.AnchorCandidate {
	if limit <= 0 {
		limit = DefaultMaxCandidates
	}
	if utf8.RuneCountInString(strings.TrimSpace(title)) < minTitleRunes {
		return nil
	}

	clean := CleanTitle(title)
	tokens := titleTokens(clean)
	if len(tokens) < minTitleTokens {
		return nil
	}

	c := newCollector()

	for _, p := range titlePatterns {
		m := p.re.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		phrase := m[0]
		if !p.whole {
			phrase = m[1]
		}
		v := Validate(phrase, title)
		if v.Valid && v.Score >= patternMinScore {
			c.add(phrase, v.Score+patternBonus)
		}
	}

	for size := maxWindow; size >= minWindow; size-- {
		for i := 0; i+size <= len(tokens); i++ {
			phrase := strings.Join(tokens[i:i+size], " ")
			v := Validate(phrase, title)
			if !v.Valid || v.Score < windowMinScore {
				continue
			}
			c.add(phrase, v.Score+windowBonus(i, size))
		}
	}

	if lexicon.IsWeakStart(lexicon.Bare(tokens[0])) {
		rest := tokens[1:]
		for size := maxWindow; size >= minWindow; size-- {
			if size > len(rest) {
				continue
			}
			phrase := strings.Join(rest[:size], " ")
			v := Validate(phrase, title)
			if v.Valid && v.Score >= windowMinScore {
				c.add(phrase, v.Score+weakLeaderBonus)
			}
		}
	}

	for _, prefix := range actionPrefixes {
		for _, n := range []int{3, 2} {
			if n > len(tokens) {
				continue
			}
			phrase := prefix + " " + strings.Join(tokens[:n], " ")
			v := Validate(phrase, title)
			if v.Valid && v.Score >= actionMinScore {
				c.add(phrase, v.Score)
			}
		}
	}

	return c.ranked(limit)
}

// CleanTitle strips trailing guide, year and blog suffixes, replaces
// separator punctuation with spaces and collapses whitespace.
func CleanTitle(title string) string {
	s := strings.TrimSpace(title)
	for _, re := range titleSuffixes {
		stripped := re.ReplaceAllString(s, "")
		if len(titleTokens(separatorPattern.ReplaceAllString(stripped, " "))) >= minTitleTokens {
			s = stripped
		}
	}
	s = separatorPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

func titleTokens(s string) []string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenRunes {
			out = append(out, f)
		}
	}
	return out
}

func windowBonus(start, size int) int {
	bonus := 0
	switch start {
	case 0:
		bonus += firstTokenBonus
	case 1:
		bonus += secondTokenBonus
	}
	if size >= longWindowMinimum {
		bonus += longWindowBonus
	}
	return bonus
}

// collector dedupes candidates case-insensitively, keeping the best score.
type collector struct {
	index map[string]int
	items []domain.AnchorCandidate
}

func newCollector() *collector {
	return &collector{index: make(map[string]int)}
}

func (c *collector) add(phrase string, score int) {
	key := strings.ToLower(phrase)
	if i, ok := c.index[key]; ok {
		if score > c.items[i].Score {
			c.items[i] = domain.AnchorCandidate{Phrase: phrase, Score: score}
		}
		return
	}
	c.index[key] = len(c.items)
	c.items = append(c.items, domain.AnchorCandidate{Phrase: phrase, Score: score})
}

func (c *collector) ranked(limit int) []domain.AnchorCandidate {
	sort.SliceStable(c.items, func(i, j int) bool {
		return c.items[i].Score > c.items[j].Score
	})
	if len(c.items) > limit {
		return c.items[:limit]
	}
	return c.items
}
