// Package consensus implements the reputation-weighted consensus engine:
// the pure verdict computation over a claim's verification set, and the
// feedback policy that nudges a submitter's reputation toward or away from
// the evolving consensus.
package consensus

import (
	"context"
	"log/slog"
	"math"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
)

// VerificationSource supplies the verification records for a claim.
type VerificationSource interface {
	VerificationsForClaim(ctx context.Context, claimID string) ([]contracts.Verification, error)
}

// ReputationSource supplies current user reputations.
type ReputationSource interface {
	Reputation(ctx context.Context, userID string) (float64, error)
}

// Engine computes verdicts. It holds no state of its own: every computation
// reads the current ledger and reputation state, so results are always a pure
// function of current data and safe to recompute on every read path.
type Engine struct {
	ledger      VerificationSource
	reputations ReputationSource
	logger      *slog.Logger
}

// NewEngine creates an engine over the given ledger and reputation store.
func NewEngine(ledger VerificationSource, reputations ReputationSource) *Engine {
	return &Engine{
		ledger:      ledger,
		reputations: reputations,
		logger:      slog.Default().With("component", "consensus"),
	}
}

// ComputeVerdict aggregates all verifications for claimID into a weighted
// verdict. It never fails on a missing or unresolvable author: those
// verifications are weighted at the default reputation instead.
func (e *Engine) ComputeVerdict(ctx context.Context, claimID string) (contracts.Verdict, error) {
	verifications, err := e.ledger.VerificationsForClaim(ctx, claimID)
	if err != nil {
		return contracts.Verdict{}, err
	}

	if len(verifications) == 0 {
		return contracts.Verdict{Label: contracts.LabelUnverified, Confidence: 0.0}, nil
	}

	weights := make(map[contracts.Stance]float64, len(contracts.Stances))
	counts := make(map[contracts.Stance]int, len(contracts.Stances))

	for _, v := range verifications {
		rep, err := e.reputations.Reputation(ctx, v.AuthorID)
		if err != nil {
			// Degrade to the default weight. An author record may be
			// concurrently deleted or the reference corrupted; the verdict
			// must still come out.
			e.logger.WarnContext(ctx, "reputation lookup failed, using default",
				"author_id", v.AuthorID, "error", err)
			rep = contracts.DefaultReputation
		}
		weights[v.Stance] += rep
		counts[v.Stance]++
	}

	// Winning stance by maximum weight. Iterating contracts.Stances in its
	// fixed priority order makes exact-weight ties deterministic: the lower
	// index wins because only a strictly greater weight displaces it.
	winner := contracts.Stances[0]
	for _, stance := range contracts.Stances[1:] {
		if weights[stance] > weights[winner] {
			winner = stance
		}
	}

	total := weights[contracts.StanceSupport] + weights[contracts.StanceRefute] + weights[contracts.StanceUnclear]
	if total == 0 {
		// Unreachable once the empty-set guard has passed, since every
		// submission contributes at least the default weight. Kept so a
		// pathological store can never cause a division by zero.
		total = 1.0
	}

	return contracts.Verdict{
		Label:        contracts.LabelForStance(winner),
		Confidence:   round3(weights[winner] / total),
		SupportCount: counts[contracts.StanceSupport],
		RefuteCount:  counts[contracts.StanceRefute],
		UnclearCount: counts[contracts.StanceUnclear],
	}, nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
