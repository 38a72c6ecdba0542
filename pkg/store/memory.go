package store

import (
	"context"
	"sort"
	"sync"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
)

// MemoryStore is an in-memory implementation of every store interface.
// It is the default backend for tests and single-process runs.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]contracts.User
	claims        map[string]contracts.Claim
	claimOrder    []string
	verifications []contracts.Verification
	statusChecks  []StatusCheck
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]contracts.User),
		claims: make(map[string]contracts.Claim),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user contracts.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (contracts.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return contracts.User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]contracts.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]contracts.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) CreateClaim(ctx context.Context, claim contracts.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims[claim.ID] = claim
	s.claimOrder = append(s.claimOrder, claim.ID)
	return nil
}

func (s *MemoryStore) GetClaim(ctx context.Context, id string) (contracts.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	claim, ok := s.claims[id]
	if !ok {
		return contracts.Claim{}, ErrClaimNotFound
	}
	return claim, nil
}

func (s *MemoryStore) ListClaims(ctx context.Context, limit int) ([]contracts.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	claims := make([]contracts.Claim, 0, len(s.claimOrder))
	// Insertion order, newest first.
	for i := len(s.claimOrder) - 1; i >= 0; i-- {
		claims = append(claims, s.claims[s.claimOrder[i]])
		if limit > 0 && len(claims) >= limit {
			break
		}
	}
	return claims, nil
}

func (s *MemoryStore) AppendVerification(ctx context.Context, v contracts.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications = append(s.verifications, v)
	return nil
}

func (s *MemoryStore) VerificationsForClaim(ctx context.Context, claimID string) ([]contracts.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []contracts.Verification
	for i := len(s.verifications) - 1; i >= 0; i-- {
		if s.verifications[i].ClaimID == claimID {
			out = append(out, s.verifications[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) AllVerifications(ctx context.Context) ([]contracts.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]contracts.Verification, len(s.verifications))
	copy(out, s.verifications)
	return out, nil
}

func (s *MemoryStore) Reputation(ctx context.Context, userID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return contracts.DefaultReputation, nil
	}
	return user.Reputation, nil
}

func (s *MemoryStore) AdjustReputation(ctx context.Context, userID string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	user.Reputation += delta
	s.users[userID] = user
	return user.Reputation, nil
}

func (s *MemoryStore) RecordStatus(ctx context.Context, check StatusCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusChecks = append(s.statusChecks, check)
	return nil
}

func (s *MemoryStore) ListStatus(ctx context.Context) ([]StatusCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StatusCheck, len(s.statusChecks))
	copy(out, s.statusChecks)
	return out, nil
}
