// Package lexicon holds the read-only word tables and token helpers shared by
// anchor validation and semantic matching.
package lexicon

func setOf(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

var stopWords = setOf(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "as", "is", "was", "are", "were", "been",
	"be", "have", "has", "had", "do", "does", "did", "will", "would",
	"could", "should", "may", "might", "must", "shall", "can", "need",
	"this", "that", "these", "those", "i", "you", "he", "she", "it", "we",
	"they", "what", "which", "who", "whom", "your", "his", "her", "its",
	"our", "their", "my", "how", "why", "when", "where", "best", "top",
	"most", "more", "very", "just", "also", "only", "even", "still",
	"about", "into", "through", "during", "before", "after", "above",
	"below", "between", "under", "again", "further", "then", "once",
)

var weakStartList = []string{
	// articles
	"the", "a", "an",
	// conjunctions
	"and", "or", "but", "nor", "yet", "so",
	// prepositions
	"with", "for", "to", "in", "on", "at", "by", "from", "about", "into",
	// demonstratives
	"this", "that", "these", "those",
	// auxiliaries
	"is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did",
	"will", "would", "could", "should", "may", "might", "must", "can",
	// subordinators
	"if", "when", "where", "while", "as",
	// adverbs
	"just", "also", "only", "very", "really", "actually",
	// possessives
	"our", "your", "my", "their", "its",
	// quantifiers
	"some", "any", "all", "both", "each", "every", "few", "many", "much",
	"more", "most", "other", "such", "even", "still", "already",
	"here", "there", "now", "then",
	// question words
	"why", "how", "what", "which", "who",
}

var weakStart = setOf(weakStartList...)

var weakEnd = setOf(append([]string{"of", "etc", "whom", "whose"}, weakStartList...)...)

var contractionFragments = setOf(
	"isn", "doesn", "wasn", "weren", "hasn", "haven", "hadn",
	"wouldn", "couldn", "shouldn", "won", "don", "can", "aren",
	"didn", "mustn", "mightn", "needn", "shan", "daren",
)

// IsStopWord reports whether the bare, lower-cased word is a stop word.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// IsWeakStart reports whether w may not open an anchor.
func IsWeakStart(w string) bool {
	_, ok := weakStart[w]
	return ok
}

// IsWeakEnd reports whether w may not close an anchor.
func IsWeakEnd(w string) bool {
	_, ok := weakEnd[w]
	return ok
}

// IsContractionFragment reports whether w is the stem of a negative
// contraction cut at its apostrophe ("doesn" from "doesn't").
func IsContractionFragment(w string) bool {
	_, ok := contractionFragments[w]
	return ok
}
