// Package reporting derives user and source leaderboards by replaying the
// verdict engine against the full verification ledger.
// Reports are recomputed on demand; nothing is maintained incrementally.
package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/peerfact-labs/peerfact/pkg/analysis"
	"github.com/peerfact-labs/peerfact/pkg/consensus"
	"github.com/peerfact-labs/peerfact/pkg/contracts"
)

// LedgerSource supplies the full verification ledger.
type LedgerSource interface {
	AllVerifications(ctx context.Context) ([]contracts.Verification, error)
}

// UserSource supplies the user population for the user leaderboard.
type UserSource interface {
	ListUsers(ctx context.Context) ([]contracts.User, error)
}

// Reporter computes leaderboards.
type Reporter struct {
	ledger LedgerSource
	users  UserSource
	engine *consensus.Engine
	logger *slog.Logger
}

// NewReporter creates a reporter over the given sources.
func NewReporter(ledger LedgerSource, users UserSource, engine *consensus.Engine) *Reporter {
	return &Reporter{
		ledger: ledger,
		users:  users,
		engine: engine,
		logger: slog.Default().With("component", "reporting"),
	}
}

// UserRow is one ranked user.
type UserRow struct {
	Rank              int     `json:"rank"`
	UserID            string  `json:"user_id"`
	Username          string  `json:"username"`
	Reputation        float64 `json:"reputation"`
	Accuracy          float64 `json:"accuracy"`
	VerificationCount int     `json:"verification_count"`
	AlignedCount      int     `json:"aligned_count"`
}

// SourceRow is one ranked source domain.
type SourceRow struct {
	Rank        int     `json:"rank"`
	Domain      string  `json:"domain"`
	Reliability float64 `json:"reliability"`
	SampleCount int     `json:"sample_count"`
}

// verdictStances computes, once per distinct claim in the ledger, the stance
// the current verdict maps to. Leaderboards measure alignment against the
// consensus of query time, not the consensus at submission time.
func (r *Reporter) verdictStances(ctx context.Context, verifications []contracts.Verification) (map[string]contracts.Stance, error) {
	stances := make(map[string]contracts.Stance)
	for _, v := range verifications {
		if _, done := stances[v.ClaimID]; done {
			continue
		}
		verdict, err := r.engine.ComputeVerdict(ctx, v.ClaimID)
		if err != nil {
			return nil, fmt.Errorf("verdict for claim %s: %w", v.ClaimID, err)
		}
		stances[v.ClaimID] = contracts.StanceForLabel(verdict.Label)
	}
	return stances, nil
}

// UserLeaderboard ranks every user by (reputation, accuracy, verification
// count) descending, with user id as the final tie-break so the order is
// deterministic. Accuracy is the share of the user's verifications whose
// stance matches the claim's current verdict; users with no verifications
// score 0.
func (r *Reporter) UserLeaderboard(ctx context.Context, limit int) ([]UserRow, error) {
	users, err := r.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	verifications, err := r.ledger.AllVerifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	stances, err := r.verdictStances(ctx, verifications)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int)
	aligned := make(map[string]int)
	for _, v := range verifications {
		totals[v.AuthorID]++
		if v.Stance == stances[v.ClaimID] {
			aligned[v.AuthorID]++
		}
	}

	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		row := UserRow{
			UserID:            u.ID,
			Username:          u.Username,
			Reputation:        u.Reputation,
			VerificationCount: totals[u.ID],
			AlignedCount:      aligned[u.ID],
		}
		if row.VerificationCount > 0 {
			row.Accuracy = float64(row.AlignedCount) / float64(row.VerificationCount)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Reputation != rows[j].Reputation {
			return rows[i].Reputation > rows[j].Reputation
		}
		if rows[i].Accuracy != rows[j].Accuracy {
			return rows[i].Accuracy > rows[j].Accuracy
		}
		if rows[i].VerificationCount != rows[j].VerificationCount {
			return rows[i].VerificationCount > rows[j].VerificationCount
		}
		return rows[i].UserID < rows[j].UserID
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// SourceLeaderboard groups verifications by the domain of their source URL
// and ranks domains by (reliability, sample count) descending, domain name
// as the final tie-break. Reliability is the fraction of the domain's
// verifications whose stance matches the current verdict of their claim.
// Verifications without a resolvable source domain are skipped.
func (r *Reporter) SourceLeaderboard(ctx context.Context, limit int) ([]SourceRow, error) {
	verifications, err := r.ledger.AllVerifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	stances, err := r.verdictStances(ctx, verifications)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int)
	matches := make(map[string]int)
	for _, v := range verifications {
		if v.SourceURL == "" {
			continue
		}
		domain := analysis.NormalizeDomain(v.SourceURL)
		if domain == "" {
			continue
		}
		totals[domain]++
		if v.Stance == stances[v.ClaimID] {
			matches[domain]++
		}
	}

	rows := make([]SourceRow, 0, len(totals))
	for domain, total := range totals {
		rows = append(rows, SourceRow{
			Domain:      domain,
			Reliability: float64(matches[domain]) / float64(total),
			SampleCount: total,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Reliability != rows[j].Reliability {
			return rows[i].Reliability > rows[j].Reliability
		}
		if rows[i].SampleCount != rows[j].SampleCount {
			return rows[i].SampleCount > rows[j].SampleCount
		}
		return rows[i].Domain < rows[j].Domain
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}
