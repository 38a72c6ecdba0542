package contracts

// Annotation is the opaque output of the text-analysis collaborator, stored
// on a claim at creation time. The verdict engine never reads any of these
// fields; they exist purely for display.
type Annotation struct {
	Summary   string  `json:"summary"`
	Label     string  `json:"label"`
	Reasoning string  `json:"reasoning,omitempty"`
	// Confidence is the analyzer's own confidence in its label, not the
	// community verdict confidence.
	Confidence float64 `json:"confidence"`
	BiasScore  float64 `json:"bias_score,omitempty"`

	// EvidenceQuality is "high", "medium" or "low" based on the wording of
	// the claim and the credibility of its source.
	EvidenceQuality string `json:"evidence_quality,omitempty"`

	// SourceReview is present when the claim carried a source URL.
	SourceReview *SourceReview `json:"source_review,omitempty"`
}

// SourceReview is the analyzer's assessment of a cited source URL.
type SourceReview struct {
	URL              string  `json:"url"`
	Domain           string  `json:"domain"`
	CredibilityScore float64 `json:"credibility_score"`
	Reputation       string  `json:"reputation"`
	IsFactChecker    bool    `json:"is_fact_checker"`
	ContentType      string  `json:"content_type"`
}
