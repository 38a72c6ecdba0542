// Package analysis provides the text-analysis collaborator consumed at claim
// creation time. The verdict engine never reads its output; analysis results
// are stored as opaque annotations for display only.
//
// Three implementations exist, selected via configuration: a pure-function
// keyword heuristic, a single-model LLM analyzer, and an ensemble analyzer
// that votes across several models. The LLM-backed implementations always
// fall back to the heuristic, so claim creation never fails because a model
// is down.
package analysis

import (
	"context"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
)

// Analyzer turns claim text (and an optional source URL) into an annotation.
// Implementations must not fail the user-visible operation: degraded output
// is acceptable, an error is a last resort for context cancellation.
type Analyzer interface {
	Analyze(ctx context.Context, text, sourceURL string) (contracts.Annotation, error)
}
