package analysis

import (
	"net/url"
	"strings"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
)

// Domain sets used for source credibility scoring. These are heuristics, not
// a maintained media-bias database.
var trustedDomains = map[string]bool{
	"reuters.com": true, "apnews.com": true, "bbc.com": true, "npr.org": true,
	"pbs.org": true, "nature.com": true, "science.org": true, "nejm.org": true,
	"thelancet.com": true, "who.int": true, "cdc.gov": true, "fda.gov": true,
	"nih.gov": true, "nasa.gov": true, "gov.uk": true, "gov.au": true,
	"canada.ca": true, "europa.eu": true,
}

var suspiciousDomains = map[string]bool{
	"infowars.com": true, "naturalnews.com": true, "activistpost.com": true,
	"beforeitsnews.com": true, "worldtruth.tv": true, "davidwolfe.com": true,
	"truththeory.com": true,
}

var factCheckDomains = map[string]bool{
	"factcheck.org": true, "snopes.com": true, "politifact.com": true,
	"factcheck.afp.com": true, "fullfact.org": true, "checkyourfact.com": true,
	"truthorfiction.com": true, "mediabiasfactcheck.com": true,
	"factcheckni.org": true,
}

// NormalizeDomain extracts the lowercased host from a URL, dropping scheme,
// path, port and a leading "www.". Returns "" for unparseable input.
func NormalizeDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// ReviewSource assesses the credibility of a cited source URL. The second
// return value is false when the URL has no extractable host.
func ReviewSource(rawURL string) (contracts.SourceReview, bool) {
	domain := NormalizeDomain(rawURL)
	if domain == "" {
		return contracts.SourceReview{}, false
	}
	return contracts.SourceReview{
		URL:              rawURL,
		Domain:           domain,
		CredibilityScore: credibilityScore(domain),
		Reputation:       domainReputation(domain),
		IsFactChecker:    factCheckDomains[domain],
		ContentType:      guessContentType(rawURL),
	}, true
}

func credibilityScore(domain string) float64 {
	switch {
	case factCheckDomains[domain]:
		return 0.95
	case trustedDomains[domain]:
		return 0.9
	case suspiciousDomains[domain]:
		return 0.2
	case strings.HasSuffix(domain, ".gov"), strings.HasSuffix(domain, ".edu"),
		strings.HasSuffix(domain, ".org"):
		return 0.8
	case strings.HasSuffix(domain, ".com"):
		return 0.6
	default:
		return 0.5
	}
}

func domainReputation(domain string) string {
	switch {
	case factCheckDomains[domain]:
		return "fact_checker"
	case trustedDomains[domain]:
		return "high_credibility"
	case suspiciousDomains[domain]:
		return "low_credibility"
	case strings.HasSuffix(domain, ".gov"):
		return "government"
	case strings.HasSuffix(domain, ".edu"):
		return "academic"
	default:
		return "unknown"
	}
}

func guessContentType(rawURL string) string {
	lowered := strings.ToLower(rawURL)
	switch {
	case containsAny(lowered, []string{"youtube", "vimeo", "tiktok"}):
		return "video"
	case containsAny(lowered, []string{"twitter", "facebook", "instagram"}):
		return "social_media"
	case strings.HasSuffix(lowered, ".pdf"), strings.HasSuffix(lowered, ".doc"),
		strings.HasSuffix(lowered, ".docx"):
		return "document"
	case containsAny(lowered, []string{"blog", "post"}):
		return "blog"
	default:
		return "article"
	}
}
