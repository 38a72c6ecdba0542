// Package store provides persistence for users, claims and the append-only
// verification ledger. Three backends exist: an in-memory store for tests and
// single-process use, a SQLite store for durable single-node deployments, and
// a Redis-backed reputation store for deployments that need the reputation
// increment to be atomic across processes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrClaimNotFound = errors.New("claim not found")
)

// UserStore persists users. Users are created once and read many times.
type UserStore interface {
	CreateUser(ctx context.Context, user contracts.User) error
	GetUser(ctx context.Context, id string) (contracts.User, error)
	ListUsers(ctx context.Context) ([]contracts.User, error)
}

// ClaimStore persists claims. Claims are never deleted.
type ClaimStore interface {
	CreateClaim(ctx context.Context, claim contracts.Claim) error
	GetClaim(ctx context.Context, id string) (contracts.Claim, error)
	// ListClaims returns claims newest first, at most limit of them.
	ListClaims(ctx context.Context, limit int) ([]contracts.Claim, error)
}

// VerificationLedger is the append-only record of stance submissions.
// Records are immutable; there is no update or delete.
type VerificationLedger interface {
	AppendVerification(ctx context.Context, v contracts.Verification) error
	// VerificationsForClaim returns all records for one claim, newest first.
	VerificationsForClaim(ctx context.Context, claimID string) ([]contracts.Verification, error)
	// AllVerifications returns the full ledger, used by aggregate reporting.
	AllVerifications(ctx context.Context) ([]contracts.Verification, error)
}

// ReputationStore is the key-value view of user reputations consumed by the
// verdict engine and the feedback policy.
//
// Reputation returns contracts.DefaultReputation for unknown users rather
// than an error: a missing user must never fail a verdict computation.
// AdjustReputation must be atomic at the storage layer so that concurrent
// increments from different verifications never lose an update.
type ReputationStore interface {
	Reputation(ctx context.Context, userID string) (float64, error)
	AdjustReputation(ctx context.Context, userID string, delta float64) (float64, error)
}

// StatusCheck is a liveness ping record, kept for operational visibility.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatusStore records and lists status-check pings.
type StatusStore interface {
	RecordStatus(ctx context.Context, check StatusCheck) error
	ListStatus(ctx context.Context) ([]StatusCheck, error)
}
