package domain

// QualityTier is a coarse bucket derived from an anchor's numeric score.
type QualityTier string

const (
	TierExcellent  QualityTier = "excellent"
	TierGood       QualityTier = "good"
	TierAcceptable QualityTier = "acceptable"
	TierPoor       QualityTier = "poor"
	TierRejected   QualityTier = "rejected"
)

// AtLeastAcceptable reports whether the tier is acceptable or better.
func (t QualityTier) AtLeastAcceptable() bool {
	return t == TierExcellent || t == TierGood || t == TierAcceptable
}

// AnchorMetrics is the measurement breakdown behind an AnchorValidation.
type AnchorMetrics struct {
	WordCount            int     `json:"word_count"`
	CharCount            int     `json:"char_count"`
	MeaningfulWordRatio  float64 `json:"meaningful_word_ratio"`
	StartsWithStrongWord bool    `json:"starts_with_strong_word"`
	EndsWithStrongWord   bool    `json:"ends_with_strong_word"`
	HasProperNouns       bool    `json:"has_proper_nouns"`
	SemanticRelevance    float64 `json:"semantic_relevance"`
}

// AnchorValidation is the pure result of validating a phrase as anchor text.
type AnchorValidation struct {
	Valid   bool          `json:"valid"`
	Score   int           `json:"score"`
	Tier    QualityTier   `json:"quality_tier"`
	Reason  string        `json:"reason,omitempty"`
	Metrics AnchorMetrics `json:"metrics"`
}
