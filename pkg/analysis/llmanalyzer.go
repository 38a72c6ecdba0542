package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
	"github.com/peerfact-labs/peerfact/pkg/llm"
)

const analyzeSystemPrompt = `You are a concise fact-checking assistant. ` +
	`Summarize the claim in one sentence and classify it as Likely True / Likely False / Unclear without overclaiming. ` +
	`Respond with compact JSON only, using keys: summary, label, reasoning, confidence (0-1).`

// annotationSchema validates model output before it is accepted. Anything
// that fails validation falls back to the heuristic analyzer, so a
// hallucinated shape never reaches storage.
const annotationSchema = `{
	"type": "object",
	"required": ["summary", "label"],
	"properties": {
		"summary": {"type": "string"},
		"label": {"type": "string"},
		"reasoning": {"type": "string"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

var compiledAnnotationSchema = jsonschema.MustCompileString("annotation.json", annotationSchema)

// LLMAnalyzer asks a single model for an annotation and degrades to the
// heuristic analyzer on any failure.
type LLMAnalyzer struct {
	client   llm.Client
	fallback *HeuristicAnalyzer
	logger   *slog.Logger
}

// NewLLMAnalyzer creates an analyzer over the given client.
func NewLLMAnalyzer(client llm.Client) *LLMAnalyzer {
	return &LLMAnalyzer{
		client:   client,
		fallback: NewHeuristicAnalyzer(),
		logger:   slog.Default().With("component", "analysis"),
	}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, text, sourceURL string) (contracts.Annotation, error) {
	messages := []llm.Message{
		{Role: "system", Content: analyzeSystemPrompt},
		{Role: "user", Content: "Claim: " + text + "\nReturn compact JSON only."},
	}

	content, err := a.client.Chat(ctx, messages, &llm.SamplingOptions{Temperature: 0.2})
	if err != nil {
		a.logger.WarnContext(ctx, "llm analysis failed, using heuristic fallback", "error", err)
		return a.fallback.Analyze(ctx, text, sourceURL)
	}

	parsed, ok := parseAnnotationJSON(content)
	if !ok {
		a.logger.WarnContext(ctx, "llm returned unusable annotation, using heuristic fallback")
		return a.fallback.Analyze(ctx, text, sourceURL)
	}

	annotation := contracts.Annotation{
		Summary:         parsed.Summary,
		Label:           parsed.Label,
		Reasoning:       parsed.Reasoning,
		Confidence:      parsed.Confidence,
		BiasScore:       0.5,
		EvidenceQuality: evidenceQuality(text, sourceURL),
	}
	if annotation.Summary == "" {
		annotation.Summary = summarize(text)
	}
	if annotation.Confidence == 0 {
		annotation.Confidence = 0.5
	}
	if sourceURL != "" {
		if review, ok := ReviewSource(sourceURL); ok {
			annotation.SourceReview = &review
		}
	}
	return annotation, nil
}

type annotationPayload struct {
	Summary    string  `json:"summary"`
	Label      string  `json:"label"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// parseAnnotationJSON extracts and validates the JSON object in a model
// response, tolerating surrounding prose and markdown fences.
func parseAnnotationJSON(content string) (annotationPayload, bool) {
	raw := extractJSONObject(content)
	if raw == "" {
		return annotationPayload{}, false
	}

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return annotationPayload{}, false
	}
	if err := compiledAnnotationSchema.Validate(generic); err != nil {
		return annotationPayload{}, false
	}

	var payload annotationPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return annotationPayload{}, false
	}
	return payload, true
}

func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}
