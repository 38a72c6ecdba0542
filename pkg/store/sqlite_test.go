package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
	"github.com/peerfact-labs/peerfact/pkg/store"
)

func openTestDB(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteStore_UserRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	_, err := st.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	created := time.Now().UTC().Truncate(time.Second)
	user := contracts.User{ID: "u1", Username: "alice", Reputation: 1.0, CreatedAt: created}
	require.NoError(t, st.CreateUser(ctx, user))

	got, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, 1.0, got.Reputation)
	assert.WithinDuration(t, created, got.CreatedAt, time.Second)

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSQLiteStore_ClaimWithAnnotation(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	_, err := st.GetClaim(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrClaimNotFound)

	claim := contracts.Claim{
		ID:       "c1",
		AuthorID: "u1",
		Text:     "the moon is made of basalt",
		Link:     "https://example.org/moon",
		Annotation: &contracts.Annotation{
			Summary: "geology claim", Label: "Likely True", Confidence: 0.7,
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.CreateClaim(ctx, claim))

	got, err := st.GetClaim(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, claim.Text, got.Text)
	require.NotNil(t, got.Annotation)
	assert.Equal(t, "Likely True", got.Annotation.Label)

	// A claim without annotation reads back with a nil annotation.
	require.NoError(t, st.CreateClaim(ctx, contracts.Claim{
		ID: "c2", AuthorID: "u1", Text: "plain", CreatedAt: time.Now().UTC(),
	}))
	got, err = st.GetClaim(ctx, "c2")
	require.NoError(t, err)
	assert.Nil(t, got.Annotation)
}

func TestSQLiteStore_ListClaimsNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, st.CreateClaim(ctx, contracts.Claim{
			ID: id, AuthorID: "u1", Text: "t", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	claims, err := st.ListClaims(ctx, 2)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, "c3", claims[0].ID)
	assert.Equal(t, "c2", claims[1].ID)
}

func TestSQLiteStore_Verifications(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []contracts.Verification{
		{ID: "v1", ClaimID: "c1", AuthorID: "u1", Stance: contracts.StanceSupport, SourceURL: "https://reuters.com/a", CreatedAt: base},
		{ID: "v2", ClaimID: "c1", AuthorID: "u2", Stance: contracts.StanceRefute, CreatedAt: base.Add(time.Minute)},
		{ID: "v3", ClaimID: "c2", AuthorID: "u1", Stance: contracts.StanceUnclear, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, v := range records {
		require.NoError(t, st.AppendVerification(ctx, v))
	}

	forClaim, err := st.VerificationsForClaim(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, forClaim, 2)
	assert.Equal(t, "v2", forClaim[0].ID)
	assert.Equal(t, contracts.StanceSupport, forClaim[1].Stance)
	assert.Equal(t, "https://reuters.com/a", forClaim[1].SourceURL)

	all, err := st.AllVerifications(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "v1", all[0].ID)
}

func TestSQLiteStore_ReputationAdjust(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	rep, err := st.Reputation(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, contracts.DefaultReputation, rep)

	_, err = st.AdjustReputation(ctx, "ghost", 0.1)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	require.NoError(t, st.CreateUser(ctx, contracts.User{
		ID: "u1", Username: "alice", Reputation: 1.0, CreatedAt: time.Now().UTC(),
	}))

	rep, err = st.AdjustReputation(ctx, "u1", 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 1.1, rep, 1e-9)

	rep, err = st.AdjustReputation(ctx, "u1", -0.05)
	require.NoError(t, err)
	assert.InDelta(t, 1.05, rep, 1e-9)
}

func TestSQLiteStore_StatusChecks(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	require.NoError(t, st.RecordStatus(ctx, store.StatusCheck{
		ID: "s1", ClientName: "probe", Timestamp: time.Now().UTC(),
	}))
	checks, err := st.ListStatus(ctx)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "probe", checks[0].ClientName)
}
