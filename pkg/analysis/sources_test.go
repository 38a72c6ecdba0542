package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://www.reuters.com/world/article", "reuters.com"},
		{"http://BBC.com:8080/news", "bbc.com"},
		{"https://factcheck.afp.com/x", "factcheck.afp.com"},
		{"not a url at all", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDomain(tt.rawURL), "input %q", tt.rawURL)
	}
}

func TestReviewSource(t *testing.T) {
	tests := []struct {
		name       string
		rawURL     string
		score      float64
		reputation string
		factCheck  bool
	}{
		{"fact checker", "https://www.snopes.com/fact-check/x", 0.95, "fact_checker", true},
		{"trusted outlet", "https://apnews.com/article/y", 0.9, "high_credibility", false},
		{"suspicious", "https://infowars.com/z", 0.2, "low_credibility", false},
		{"government", "https://energy.gov/report", 0.8, "government", false},
		{"plain com", "https://somesite.com/post", 0.6, "unknown", false},
		{"unknown tld", "https://somesite.info/post", 0.5, "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, ok := ReviewSource(tt.rawURL)
			require.True(t, ok)
			assert.Equal(t, tt.score, review.CredibilityScore)
			assert.Equal(t, tt.reputation, review.Reputation)
			assert.Equal(t, tt.factCheck, review.IsFactChecker)
		})
	}

	_, ok := ReviewSource(":%invalid")
	assert.False(t, ok)
}

func TestGuessContentType(t *testing.T) {
	assert.Equal(t, "video", guessContentType("https://youtube.com/watch?v=1"))
	assert.Equal(t, "social_media", guessContentType("https://twitter.com/u/status/1"))
	assert.Equal(t, "document", guessContentType("https://example.org/report.pdf"))
	assert.Equal(t, "blog", guessContentType("https://example.org/blog/entry"))
	assert.Equal(t, "article", guessContentType("https://example.org/news/1"))
}
