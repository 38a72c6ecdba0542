package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerfact-labs/peerfact/pkg/analysis"
	"github.com/peerfact-labs/peerfact/pkg/chain"
	"github.com/peerfact-labs/peerfact/pkg/contracts"
	"github.com/peerfact-labs/peerfact/pkg/service"
	"github.com/peerfact-labs/peerfact/pkg/store"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	st := store.NewMemoryStore()
	return service.New(st, st, analysis.NewHeuristicAnalyzer(), chain.New(1))
}

func TestBootstrapUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	user, err := svc.BootstrapUser(ctx, "  alice  ")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, contracts.DefaultReputation, user.Reputation)
	assert.NotEmpty(t, user.ID)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.BootstrapUser(ctx, "   ")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCreateClaim_Annotated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	author, err := svc.BootstrapUser(ctx, "alice")
	require.NoError(t, err)

	claim, err := svc.CreateClaim(ctx, author.ID, "the official press release confirmed it", "https://reuters.com/x")
	require.NoError(t, err)
	assert.NotEmpty(t, claim.ID)
	require.NotNil(t, claim.Annotation)
	assert.Equal(t, "Likely True", claim.Annotation.Label)
	require.NotNil(t, claim.Annotation.SourceReview)
	assert.Equal(t, "reuters.com", claim.Annotation.SourceReview.Domain)

	_, err = svc.CreateClaim(ctx, "ghost", "text", "")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = svc.CreateClaim(ctx, author.ID, "   ", "")
	assert.ErrorIs(t, err, service.ErrValidation)
}

// TestVerificationFlow walks the canonical two-voter scenario: a single
// supporter yields full confidence, an opposing equal-weight refuter drops it
// to a deterministic tie.
func TestVerificationFlow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	alice, err := svc.BootstrapUser(ctx, "alice")
	require.NoError(t, err)
	bob, err := svc.BootstrapUser(ctx, "bob")
	require.NoError(t, err)
	claim, err := svc.CreateClaim(ctx, alice.ID, "the dam overflowed on March 1st", "")
	require.NoError(t, err)

	receipt, err := svc.RecordVerification(ctx, service.VerificationInput{
		ClaimID: claim.ID, AuthorID: alice.ID, Stance: "support",
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.LabelMostlyTrue, receipt.Verdict.Label)
	assert.Equal(t, 1.0, receipt.Verdict.Confidence)
	assert.InDelta(t, 1.1, receipt.Feedback.NewReputation, 1e-9)
	assert.NotEmpty(t, receipt.BlockHash)

	// Bob dissents. Weights are 1.1 support vs 1.0 refute.
	receipt, err = svc.RecordVerification(ctx, service.VerificationInput{
		ClaimID: claim.ID, AuthorID: bob.ID, Stance: "refute",
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.LabelMostlyTrue, receipt.Verdict.Label)
	assert.InDelta(t, 0.524, receipt.Verdict.Confidence, 0.0005)
	assert.InDelta(t, 0.95, receipt.Feedback.NewReputation, 1e-9)

	verdict, err := svc.Verdict(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, verdict.SupportCount)
	assert.Equal(t, 1, verdict.RefuteCount)

	detail, err := svc.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Verifications, 2)
	assert.Equal(t, 1, detail.Claim.SupportCount)
}

// TestRecordVerification_RejectsInvalid verifies a rejected submission leaves
// the ledger untouched.
func TestRecordVerification_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	alice, err := svc.BootstrapUser(ctx, "alice")
	require.NoError(t, err)
	claim, err := svc.CreateClaim(ctx, alice.ID, "some claim", "")
	require.NoError(t, err)

	_, err = svc.RecordVerification(ctx, service.VerificationInput{
		ClaimID: claim.ID, AuthorID: alice.ID, Stance: "maybe",
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.RecordVerification(ctx, service.VerificationInput{
		ClaimID: "missing", AuthorID: alice.ID, Stance: "support",
	})
	assert.ErrorIs(t, err, store.ErrClaimNotFound)

	_, err = svc.RecordVerification(ctx, service.VerificationInput{
		ClaimID: claim.ID, AuthorID: "ghost", Stance: "support",
	})
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	detail, err := svc.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Verifications)
	assert.Equal(t, contracts.LabelUnverified, detail.Verdict.Label)
}

func TestVerdict_UnknownClaim(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Verdict(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrClaimNotFound)
}

func TestListClaims_DecoratedWithVerdicts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	alice, err := svc.BootstrapUser(ctx, "alice")
	require.NoError(t, err)
	first, err := svc.CreateClaim(ctx, alice.ID, "first claim", "")
	require.NoError(t, err)
	_, err = svc.CreateClaim(ctx, alice.ID, "second claim", "")
	require.NoError(t, err)

	_, err = svc.RecordVerification(ctx, service.VerificationInput{
		ClaimID: first.ID, AuthorID: alice.ID, Stance: "support",
	})
	require.NoError(t, err)

	claims, err := svc.ListClaims(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	// Newest first; only the first claim carries a vote.
	assert.Equal(t, 0, claims[0].SupportCount)
	assert.Equal(t, 1, claims[1].SupportCount)
}

func TestChainRecordsAccumulate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	alice, err := svc.BootstrapUser(ctx, "alice")
	require.NoError(t, err)
	claim, err := svc.CreateClaim(ctx, alice.ID, "chain this", "")
	require.NoError(t, err)

	_, err = svc.RecordVerification(ctx, service.VerificationInput{
		ClaimID: claim.ID, AuthorID: alice.ID, Stance: "support",
	})
	require.NoError(t, err)

	stats := svc.ChainStatus()
	assert.True(t, stats.ChainIntegrity)
	assert.Equal(t, 1, stats.ClaimVerdictRecords)
	assert.Equal(t, 1, stats.ReputationRecords)

	userHist := svc.UserChainHistory(alice.ID)
	assert.Equal(t, 1, userHist.RecordsFound)
	assert.InDelta(t, 1.1, userHist.History[0].Data["reputation"].(float64), 1e-9)

	claimHist := svc.ClaimChainHistory(claim.ID)
	assert.Equal(t, 1, claimHist.RecordsFound)
}

func TestLeaderboards(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	alice, err := svc.BootstrapUser(ctx, "alice")
	require.NoError(t, err)
	bob, err := svc.BootstrapUser(ctx, "bob")
	require.NoError(t, err)
	claim, err := svc.CreateClaim(ctx, alice.ID, "ranked claim", "")
	require.NoError(t, err)

	_, err = svc.RecordVerification(ctx, service.VerificationInput{
		ClaimID: claim.ID, AuthorID: alice.ID, Stance: "support", SourceURL: "https://apnews.com/a",
	})
	require.NoError(t, err)
	_, err = svc.RecordVerification(ctx, service.VerificationInput{
		ClaimID: claim.ID, AuthorID: bob.ID, Stance: "refute", SourceURL: "https://infowars.com/b",
	})
	require.NoError(t, err)

	users, err := svc.UserLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Greater(t, users[0].Reputation, users[1].Reputation)

	sources, err := svc.SourceLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "apnews.com", sources[0].Domain)
	assert.Equal(t, 1.0, sources[0].Reliability)
	assert.Equal(t, "infowars.com", sources[1].Domain)
}

func TestStatusChecks(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.RecordStatus(ctx, "")
	assert.ErrorIs(t, err, service.ErrValidation)

	check, err := svc.RecordStatus(ctx, "probe")
	require.NoError(t, err)
	assert.NotEmpty(t, check.ID)

	checks, err := svc.ListStatus(ctx)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "probe", checks[0].ClientName)
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	annotation, err := svc.Analyze(ctx, "the viral hoax spread fast", "")
	require.NoError(t, err)
	assert.Equal(t, "Likely False", annotation.Label)

	_, err = svc.Analyze(ctx, "  ", "")
	assert.ErrorIs(t, err, service.ErrValidation)
}
