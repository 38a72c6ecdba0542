package analysis

import (
	"context"
	"strings"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
)

// Keyword classes for the heuristic label. Checked in order; the first class
// with a hit decides.
var (
	satireKeywords  = []string{"satire", "parody", "joke", "humor"}
	falseKeywords   = []string{"fake", "hoax", "debunk", "false", "misleading"}
	trueKeywords    = []string{"official", "press release", "confirmed", "verified", "study shows"}
	hearsayKeywords = []string{"allegedly", "rumored", "claims", "some say"}
)

// Evidence-quality wording classes.
var (
	highQualityWords = []string{"study", "research", "peer-reviewed", "statistics", "data", "survey", "official", "government"}
	midQualityWords  = []string{"reported", "according to", "sources", "analysis", "expert", "professor"}
	lowQualityWords  = []string{"claims", "allegedly", "rumored", "some say", "it is said", "anonymous"}
)

const summaryLimit = 240

// HeuristicAnalyzer is the pure-function fallback: keyword classification,
// no network, never fails.
type HeuristicAnalyzer struct{}

// NewHeuristicAnalyzer creates the fallback analyzer.
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

func (a *HeuristicAnalyzer) Analyze(ctx context.Context, text, sourceURL string) (contracts.Annotation, error) {
	annotation := contracts.Annotation{
		Summary:   summarize(text),
		Label:     heuristicLabel(text),
		Reasoning: "heuristic analysis based on keyword patterns",
		// Heuristics overclaim nothing.
		Confidence:      0.3,
		BiasScore:       0.5,
		EvidenceQuality: evidenceQuality(text, sourceURL),
	}
	if sourceURL != "" {
		if review, ok := ReviewSource(sourceURL); ok {
			annotation.SourceReview = &review
		}
	}
	return annotation, nil
}

func summarize(text string) string {
	snippet := strings.Join(strings.Fields(text), " ")
	if len(snippet) > summaryLimit {
		return snippet[:summaryLimit] + "…"
	}
	return snippet
}

func heuristicLabel(text string) string {
	lowered := strings.ToLower(text)
	switch {
	case containsAny(lowered, satireKeywords):
		return "Satire/Humor"
	case containsAny(lowered, falseKeywords):
		return "Likely False"
	case containsAny(lowered, trueKeywords):
		return "Likely True"
	case containsAny(lowered, hearsayKeywords):
		return "Unverified"
	default:
		return "Unclear"
	}
}

// evidenceQuality scores the wording of the claim, boosted by source
// credibility when a URL is present.
func evidenceQuality(text, sourceURL string) string {
	lowered := strings.ToLower(text)

	score := 0
	for _, w := range highQualityWords {
		if strings.Contains(lowered, w) {
			score += 3
		}
	}
	for _, w := range midQualityWords {
		if strings.Contains(lowered, w) {
			score += 2
		}
	}
	for _, w := range lowQualityWords {
		if strings.Contains(lowered, w) {
			score--
		}
	}

	if sourceURL != "" {
		if review, ok := ReviewSource(sourceURL); ok {
			if review.IsFactChecker {
				score += 3
			} else if review.CredibilityScore >= 0.9 {
				score += 2
			}
		}
	}

	switch {
	case score >= 6:
		return "high"
	case score >= 2:
		return "medium"
	default:
		return "low"
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
