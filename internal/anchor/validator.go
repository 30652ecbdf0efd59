// Package anchor validates anchor phrases and generates anchor candidates
// from destination titles.
package anchor

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/lexicon"
	"github.com/jonesrussell/north-cloud/interlinker/internal/markup"
)

// Anchor size limits.
const (
	MinWords = 3
	MaxWords = 7
	MinChars = 15
	MaxChars = 65
)

// Scoring constants.
const (
	baseScore            = 50
	maxScore             = 100
	weakEdgeScore        = 25
	lowMeaningScore      = 30
	minMeaningfulRatio   = 0.40
	minMeaningfulRunes   = 3
	ratioWeight          = 20
	idealLengthBonus     = 15
	nearIdealLengthBonus = 8
	relevanceWeight      = 15
	strongLeadBonus      = 5
	digitBonus           = 3
	properNounBonusEach  = 2
	properNounBonusMax   = 5
	excellentThreshold   = 85
	goodThreshold        = 70
	acceptableThreshold  = 55
	idealMinWords        = 4
	idealMaxWords        = 5
	nearIdealShortWords  = 3
	nearIdealLongWords   = 6
	percentMultiplier    = 100
)

var separatorPattern = regexp.MustCompile(`[|–—:;\[\](){}"“”‘’«»<>]|\s[-–—]\s`)

var bannedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^click\s+here`),
	regexp.MustCompile(`(?i)^read\s+more`),
	regexp.MustCompile(`(?i)^learn\s+more`),
	regexp.MustCompile(`(?i)^find\s+out`),
	regexp.MustCompile(`(?i)^check\s+(out|this|here|it)\b`),
	regexp.MustCompile(`(?i)^this\s+(article|post|guide|page|link|site|website)\b`),
	regexp.MustCompile(`(?i)^here\s+is`),
	regexp.MustCompile(`(?i)^see\s+(here|more|this|our|the)\b`),
	regexp.MustCompile(`(?i)^go\s+(here|to|now)\b`),
	regexp.MustCompile(`(?i)^view\s+(all|more|our|the)\b`),
	regexp.MustCompile(`(?i)^get\s+(started|more|it|your|the)\b`),
	regexp.MustCompile(`(?i)^download\s+(now|here|free|it)\b`),
	regexp.MustCompile(`(?i)^buy\s+(now|here|it)\b`),
	regexp.MustCompile(`(?i)^sign\s+up\b`),
	regexp.MustCompile(`(?i)^contact\s+us\b`),
	regexp.MustCompile(`(?i)more\s+info(rmation)?$`),
	regexp.MustCompile(`(?i)click\s+here$`),
	regexp.MustCompile(`(?i)read\s+more$`),
	regexp.MustCompile(`(?i)learn\s+more$`),
	regexp.MustCompile(`(?i)^https?://`),
	regexp.MustCompile(`(?i)^www\.`),
}

// Clean strips tags and entity references from phrase and collapses
// whitespace.
func Clean(phrase string) string {
	return markup.Strip(phrase)
}

// Validate scores phrase as anchor text. targetTitle is optional; when set,
// overlap with it raises the score.
func Validate(phrase, targetTitle string) domain.AnchorValidation {
	if strings.TrimSpace(phrase) == "" {
		return reject(0, "empty phrase", domain.AnchorMetrics{})
	}

	clean := Clean(phrase)
	words := strings.Fields(clean)
	metrics := domain.AnchorMetrics{
		WordCount: len(words),
		CharCount: utf8.RuneCountInString(clean),
	}
	if len(words) == 0 {
		return reject(0, "empty phrase", metrics)
	}

	first := lexicon.Bare(words[0])
	last := lexicon.Bare(words[len(words)-1])

	if lexicon.IsContractionFragment(last) {
		return reject(0, fmt.Sprintf("ends with contraction fragment %q", last), metrics)
	}
	if lexicon.IsContractionFragment(first) {
		return reject(0, fmt.Sprintf("starts with contraction fragment %q", first), metrics)
	}

	metrics.StartsWithStrongWord = !lexicon.IsWeakStart(first)
	metrics.EndsWithStrongWord = !lexicon.IsWeakEnd(last)
	if !metrics.StartsWithStrongWord {
		return reject(weakEdgeScore, fmt.Sprintf("starts with weak word %q", first), metrics)
	}
	if !metrics.EndsWithStrongWord {
		return reject(weakEdgeScore, fmt.Sprintf("ends with weak word %q", last), metrics)
	}

	if reason := checkSize(metrics.WordCount, metrics.CharCount); reason != "" {
		return reject(0, reason, metrics)
	}

	for _, p := range bannedPatterns {
		if p.MatchString(clean) {
			return reject(0, "matches banned generic anchor pattern", metrics)
		}
	}

	meaningful := meaningfulWords(words)
	ratio := float64(len(meaningful)) / float64(len(words))
	metrics.MeaningfulWordRatio = ratio
	if ratio < minMeaningfulRatio {
		return domain.AnchorValidation{
			Score:   lowMeaningScore,
			Tier:    domain.TierPoor,
			Reason:  fmt.Sprintf("only %d%% meaningful words (need 40%%+)", int(math.Round(ratio*percentMultiplier))),
			Metrics: metrics,
		}
	}

	score := baseScore + int(math.Round(ratio*ratioWeight))

	switch len(words) {
	case idealMinWords, idealMaxWords:
		score += idealLengthBonus
	case nearIdealShortWords, nearIdealLongWords:
		score += nearIdealLengthBonus
	}

	if targetTitle != "" {
		metrics.SemanticRelevance = Relevance(clean, targetTitle)
		score += int(math.Round(metrics.SemanticRelevance * relevanceWeight))
	}

	if len(meaningful) > 0 && lexicon.Bare(meaningful[0]) == first {
		score += strongLeadBonus
	}

	if strings.IndexFunc(clean, unicode.IsDigit) >= 0 {
		score += digitBonus
	}

	if proper := countCapitalized(words[1:]); proper > 0 {
		metrics.HasProperNouns = true
		score += min(properNounBonusMax, proper*properNounBonusEach)
	}

	score = min(score, maxScore)
	tier := tierFor(score)

	result := domain.AnchorValidation{
		Valid:   tier.AtLeastAcceptable(),
		Score:   score,
		Tier:    tier,
		Metrics: metrics,
	}
	if !result.Valid {
		result.Reason = "low quality score"
	}
	return result
}

// Relevance is the Jaccard similarity of the significant tokens of anchor
// and title.
func Relevance(anchor, title string) float64 {
	title = separatorPattern.ReplaceAllString(title, " ")
	return lexicon.Jaccard(lexicon.Significant(anchor), lexicon.Significant(title))
}

func checkSize(words, chars int) string {
	switch {
	case words < MinWords:
		return fmt.Sprintf("only %d word(s), minimum %d required", words, MinWords)
	case words > MaxWords:
		return fmt.Sprintf("%d words exceeds maximum %d", words, MaxWords)
	case chars < MinChars:
		return fmt.Sprintf("only %d chars, minimum %d", chars, MinChars)
	case chars > MaxChars:
		return fmt.Sprintf("%d chars exceeds maximum %d", chars, MaxChars)
	}
	return ""
}

func meaningfulWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		bare := lexicon.Bare(w)
		if utf8.RuneCountInString(bare) >= minMeaningfulRunes && !lexicon.IsStopWord(bare) {
			out = append(out, w)
		}
	}
	return out
}

func countCapitalized(words []string) int {
	n := 0
	for _, w := range words {
		if r, _ := utf8.DecodeRuneInString(w); unicode.IsUpper(r) {
			n++
		}
	}
	return n
}

func tierFor(score int) domain.QualityTier {
	switch {
	case score >= excellentThreshold:
		return domain.TierExcellent
	case score >= goodThreshold:
		return domain.TierGood
	case score >= acceptableThreshold:
		return domain.TierAcceptable
	default:
		return domain.TierPoor
	}
}

func reject(score int, reason string, metrics domain.AnchorMetrics) domain.AnchorValidation {
	return domain.AnchorValidation{
		Score:   score,
		Tier:    domain.TierRejected,
		Reason:  reason,
		Metrics: metrics,
	}
}
