package consensus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
)

// Fixed feedback step sizes. They are deliberately small constants rather
// than proportional to confidence or margin, which bounds reputation drift
// per single action. The penalty is half the bonus so that legitimate
// minority reports are not punished too aggressively.
const (
	AgreementBonus      = 0.1
	DisagreementPenalty = 0.05
)

// ReputationAdjuster applies an atomic reputation delta.
type ReputationAdjuster interface {
	AdjustReputation(ctx context.Context, userID string, delta float64) (float64, error)
}

// FeedbackPolicy adjusts a submitter's reputation after their verification
// has been persisted, based on agreement with the freshly recomputed verdict.
type FeedbackPolicy struct {
	engine      *Engine
	reputations ReputationAdjuster
	logger      *slog.Logger
}

// NewFeedbackPolicy creates a policy driven by the given engine.
func NewFeedbackPolicy(engine *Engine, reputations ReputationAdjuster) *FeedbackPolicy {
	return &FeedbackPolicy{
		engine:      engine,
		reputations: reputations,
		logger:      slog.Default().With("component", "feedback"),
	}
}

// FeedbackResult describes one applied adjustment.
type FeedbackResult struct {
	Verdict       contracts.Verdict `json:"verdict"`
	Delta         float64           `json:"delta"`
	NewReputation float64           `json:"new_reputation"`
}

// Apply recomputes the claim's verdict and nudges the verification author's
// reputation: +AgreementBonus when their stance matches the majority,
// -DisagreementPenalty otherwise. The verdict is computed post-insertion, so
// the just-added verification is evaluated against a consensus that includes
// its own contribution. No floor or ceiling is applied.
func (p *FeedbackPolicy) Apply(ctx context.Context, v contracts.Verification) (FeedbackResult, error) {
	verdict, err := p.engine.ComputeVerdict(ctx, v.ClaimID)
	if err != nil {
		return FeedbackResult{}, fmt.Errorf("recompute verdict: %w", err)
	}

	delta := -DisagreementPenalty
	if v.Stance == contracts.StanceForLabel(verdict.Label) {
		delta = AgreementBonus
	}

	rep, err := p.reputations.AdjustReputation(ctx, v.AuthorID, delta)
	if err != nil {
		return FeedbackResult{}, fmt.Errorf("adjust reputation: %w", err)
	}

	p.logger.DebugContext(ctx, "reputation feedback applied",
		"author_id", v.AuthorID, "claim_id", v.ClaimID,
		"stance", v.Stance, "verdict", verdict.Label, "delta", delta)

	return FeedbackResult{Verdict: verdict, Delta: delta, NewReputation: rep}, nil
}
