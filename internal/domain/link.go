// Package domain holds the value types shared by the link injection engine.
package domain

// LinkTarget is a candidate destination page supplied by the caller.
type LinkTarget struct {
	URL   string `json:"url"   yaml:"url"`
	Title string `json:"title" yaml:"title"`
}

// AnchorCandidate is a generated anchor phrase ranked by estimated quality.
type AnchorCandidate struct {
	Phrase string `json:"phrase"`
	Score  int    `json:"score"`
}

// MatchType describes how a span of document text was located.
type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchSemantic   MatchType = "semantic"
	MatchContextual MatchType = "contextual"
)

// Insertion records one anchor placed into the document.
type Insertion struct {
	URL            string    `json:"url"`
	AnchorText     string    `json:"anchor_text"`
	MatchType      MatchType `json:"match_type"`
	RelevanceScore float64   `json:"relevance_score"`
	// InsertedAtOffset is the byte offset of the anchor's opening tag in the
	// returned document.
	InsertedAtOffset int `json:"inserted_at_offset"`
	// TextOffset is the offset of the anchor text in the plain-text
	// projection. Inserted anchors never move it.
	TextOffset int    `json:"text_offset"`
	Section    int    `json:"section"`
	Context    string `json:"context,omitempty"`
}

// Result is the outcome of one injection run.
type Result struct {
	Document   string            `json:"document"`
	Insertions []Insertion       `json:"insertions"`
	Skipped    map[string]string `json:"skipped"`
	Warnings   []string          `json:"warnings,omitempty"`
}
