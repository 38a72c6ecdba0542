package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicLabels(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"satire", "this parody of the election is hilarious", "Satire/Humor"},
		{"false", "the viral hoax about vaccines has been debunked", "Likely False"},
		{"true", "the official press release confirmed the merger", "Likely True"},
		{"hearsay", "it is allegedly linked to the outage", "Unverified"},
		{"neutral", "the bridge opened last Tuesday", "Unclear"},
	}

	a := NewHeuristicAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotation, err := a.Analyze(context.Background(), tt.text, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, annotation.Label)
			assert.Equal(t, 0.3, annotation.Confidence)
		})
	}
}

func TestHeuristicSummaryTruncation(t *testing.T) {
	long := strings.Repeat("word ", 100)
	a := NewHeuristicAnalyzer()

	annotation, err := a.Analyze(context.Background(), long, "")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(annotation.Summary), summaryLimit+len("…"))
	assert.True(t, strings.HasSuffix(annotation.Summary, "…"))
}

func TestEvidenceQuality(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		sourceURL string
		want      string
	}{
		{
			"high from wording",
			"a peer-reviewed study with government statistics and survey data",
			"", "high",
		},
		{
			"medium from wording",
			"according to an expert the figure is plausible",
			"", "medium",
		},
		{
			"low from hearsay",
			"anonymous sources claims it is allegedly true, some say",
			"", "low",
		},
		{
			"source boost",
			"reported by the wire service",
			"https://www.reuters.com/article", "medium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evidenceQuality(tt.text, tt.sourceURL))
		})
	}
}

func TestSourceReviewAttached(t *testing.T) {
	a := NewHeuristicAnalyzer()
	annotation, err := a.Analyze(context.Background(), "claim text", "https://snopes.com/fact-check/x")
	require.NoError(t, err)

	require.NotNil(t, annotation.SourceReview)
	assert.Equal(t, "snopes.com", annotation.SourceReview.Domain)
	assert.True(t, annotation.SourceReview.IsFactChecker)
}
