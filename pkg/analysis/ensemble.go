package analysis

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
	"github.com/peerfact-labs/peerfact/pkg/llm"
)

// aspect is one independent analysis perspective put to a model.
type aspect struct {
	name   string
	system string
}

var ensembleAspects = []aspect{
	{
		name: "factuality",
		system: analyzeSystemPrompt + ` Weigh verifiable facts over opinions ` +
			`and consider historical accuracy.`,
	},
	{
		name: "credibility",
		system: analyzeSystemPrompt + ` Weigh plausibility, internal consistency ` +
			`and whether extraordinary claims carry extraordinary evidence.`,
	},
	{
		name: "verifiability",
		system: analyzeSystemPrompt + ` Weigh how the claim could be verified ` +
			`and what evidence would prove or disprove it.`,
	},
}

// labelScores maps analyzer labels onto a truth axis for voting.
var labelScores = map[string]float64{
	"Verified True":  1.0,
	"Likely True":    0.8,
	"Mixed":          0.5,
	"Unclear":        0.5,
	"Unverifiable":   0.5,
	"Unverified":     0.5,
	"Likely False":   0.2,
	"Verified False": 0.0,
}

// EnsembleAnalyzer puts the claim to several clients concurrently, one
// aspect each, and combines their labels by score averaging. Consensus
// confidence derives from the variance of the votes: tight agreement scores
// high, scattered votes score low.
type EnsembleAnalyzer struct {
	clients  []llm.Client
	fallback *HeuristicAnalyzer
	logger   *slog.Logger
}

// NewEnsembleAnalyzer distributes aspects round-robin across the given
// clients. A single client is valid; it then answers every aspect.
func NewEnsembleAnalyzer(clients ...llm.Client) *EnsembleAnalyzer {
	return &EnsembleAnalyzer{
		clients:  clients,
		fallback: NewHeuristicAnalyzer(),
		logger:   slog.Default().With("component", "analysis"),
	}
}

func (a *EnsembleAnalyzer) Analyze(ctx context.Context, text, sourceURL string) (contracts.Annotation, error) {
	if len(a.clients) == 0 {
		return a.fallback.Analyze(ctx, text, sourceURL)
	}

	results := make([]annotationPayload, len(ensembleAspects))
	oks := make([]bool, len(ensembleAspects))

	var wg sync.WaitGroup
	for i, asp := range ensembleAspects {
		client := a.clients[i%len(a.clients)]
		wg.Add(1)
		go func(i int, asp aspect) {
			defer wg.Done()
			messages := []llm.Message{
				{Role: "system", Content: asp.system},
				{Role: "user", Content: "Claim: " + text + "\nReturn compact JSON only."},
			}
			content, err := client.Chat(ctx, messages, &llm.SamplingOptions{Temperature: 0.2})
			if err != nil {
				a.logger.WarnContext(ctx, "ensemble aspect failed",
					"aspect", asp.name, "error", err)
				return
			}
			if parsed, ok := parseAnnotationJSON(content); ok {
				results[i] = parsed
				oks[i] = true
			}
		}(i, asp)
	}
	wg.Wait()

	var votes []float64
	var summaries, reasonings []string
	for i, ok := range oks {
		if !ok {
			continue
		}
		score, known := labelScores[results[i].Label]
		if !known {
			score = 0.5
		}
		votes = append(votes, score)
		if results[i].Summary != "" {
			summaries = append(summaries, results[i].Summary)
		}
		if results[i].Reasoning != "" {
			reasonings = append(reasonings, results[i].Reasoning)
		}
	}

	if len(votes) == 0 {
		return a.fallback.Analyze(ctx, text, sourceURL)
	}

	annotation := contracts.Annotation{
		Label:           ensembleLabel(mean(votes)),
		Confidence:      consensusConfidence(votes),
		Reasoning:       strings.Join(reasonings, " | "),
		BiasScore:       0.5,
		EvidenceQuality: evidenceQuality(text, sourceURL),
	}
	if len(summaries) > 0 {
		annotation.Summary = summaries[0]
	} else {
		annotation.Summary = summarize(text)
	}
	if sourceURL != "" {
		if review, ok := ReviewSource(sourceURL); ok {
			annotation.SourceReview = &review
		}
	}
	return annotation, nil
}

func ensembleLabel(avg float64) string {
	switch {
	case avg >= 0.8:
		return "Likely True"
	case avg >= 0.6:
		return "Mixed"
	case avg >= 0.4:
		return "Unclear"
	default:
		return "Likely False"
	}
}

// consensusConfidence converts vote variance into a confidence: zero
// variance yields 1.0, maximal spread (votes at 0 and 1) approaches 0.
// Floor at 0.1 so a verdict is never presented as worthless.
func consensusConfidence(votes []float64) float64 {
	m := mean(votes)
	var variance float64
	for _, v := range votes {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(votes))

	confidence := 1.0 - variance*4
	if confidence < 0.1 {
		return 0.1
	}
	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}

func mean(votes []float64) float64 {
	var sum float64
	for _, v := range votes {
		sum += v
	}
	return sum / float64(len(votes))
}
