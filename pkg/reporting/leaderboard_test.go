package reporting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerfact-labs/peerfact/pkg/consensus"
	"github.com/peerfact-labs/peerfact/pkg/contracts"
	"github.com/peerfact-labs/peerfact/pkg/reporting"
	"github.com/peerfact-labs/peerfact/pkg/store"
)

func fixture(t *testing.T) (*store.MemoryStore, *reporting.Reporter) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	users := []contracts.User{
		{ID: "u1", Username: "alice", Reputation: 1.3},
		{ID: "u2", Username: "bob", Reputation: 1.0},
		{ID: "u3", Username: "carol", Reputation: 1.0},
	}
	for _, u := range users {
		require.NoError(t, st.CreateUser(ctx, u))
	}

	// claim-1 resolves Mostly True (2.3 support vs 1.0 refute).
	verifications := []contracts.Verification{
		{ID: "v1", ClaimID: "claim-1", AuthorID: "u1", Stance: contracts.StanceSupport, SourceURL: "https://www.reuters.com/a"},
		{ID: "v2", ClaimID: "claim-1", AuthorID: "u2", Stance: contracts.StanceSupport, SourceURL: "https://reuters.com/b"},
		{ID: "v3", ClaimID: "claim-1", AuthorID: "u3", Stance: contracts.StanceRefute, SourceURL: "https://example.blogspot.com/c"},
	}
	for _, v := range verifications {
		require.NoError(t, st.AppendVerification(ctx, v))
	}

	engine := consensus.NewEngine(st, st)
	return st, reporting.NewReporter(st, st, engine)
}

func TestUserLeaderboard_Ordering(t *testing.T) {
	_, reporter := fixture(t)

	rows, err := reporter.UserLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// alice leads on reputation; bob beats carol on accuracy at equal
	// reputation.
	assert.Equal(t, "u1", rows[0].UserID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 1.0, rows[0].Accuracy)

	assert.Equal(t, "u2", rows[1].UserID)
	assert.Equal(t, 1.0, rows[1].Accuracy)

	assert.Equal(t, "u3", rows[2].UserID)
	assert.Equal(t, 0.0, rows[2].Accuracy)
	assert.Equal(t, 1, rows[2].VerificationCount)
}

func TestUserLeaderboard_DeterministicTieBreak(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateUser(ctx, contracts.User{ID: "u2", Username: "bob", Reputation: 1.0}))
	require.NoError(t, st.CreateUser(ctx, contracts.User{ID: "u1", Username: "alice", Reputation: 1.0}))

	reporter := reporting.NewReporter(st, st, consensus.NewEngine(st, st))
	rows, err := reporter.UserLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Fully tied rows fall back to id order.
	assert.Equal(t, "u1", rows[0].UserID)
	assert.Equal(t, "u2", rows[1].UserID)
}

func TestUserLeaderboard_Limit(t *testing.T) {
	_, reporter := fixture(t)

	rows, err := reporter.UserLeaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].UserID)
}

func TestSourceLeaderboard_DomainGrouping(t *testing.T) {
	_, reporter := fixture(t)

	rows, err := reporter.SourceLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Both reuters links normalize to one domain with two aligned samples.
	assert.Equal(t, "reuters.com", rows[0].Domain)
	assert.Equal(t, 1.0, rows[0].Reliability)
	assert.Equal(t, 2, rows[0].SampleCount)

	assert.Equal(t, "example.blogspot.com", rows[1].Domain)
	assert.Equal(t, 0.0, rows[1].Reliability)
	assert.Equal(t, 1, rows[1].SampleCount)
}

func TestSourceLeaderboard_SkipsMissingSources(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.AppendVerification(ctx, contracts.Verification{
		ID: "v1", ClaimID: "claim-1", AuthorID: "u1", Stance: contracts.StanceSupport,
	}))

	reporter := reporting.NewReporter(st, st, consensus.NewEngine(st, st))
	rows, err := reporter.SourceLeaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
