package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
)

// RedisReputationStore keeps reputations in Redis so that the feedback
// increment is atomic across processes (INCRBYFLOAT is a single server-side
// operation). It implements ReputationStore only; users, claims and the
// verification ledger stay in the primary store.
type RedisReputationStore struct {
	client *redis.Client
	prefix string
}

// NewRedisReputationStore connects to Redis at addr.
func NewRedisReputationStore(addr, password string, db int) *RedisReputationStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisReputationStore{client: client, prefix: "reputation:"}
}

func (s *RedisReputationStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisReputationStore) Reputation(ctx context.Context, userID string) (float64, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return contracts.DefaultReputation, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis reputation get: %w", err)
	}
	rep, err := strconv.ParseFloat(val, 64)
	if err != nil {
		// A corrupted value degrades to the default weight rather than
		// failing the verdict computation.
		return contracts.DefaultReputation, nil
	}
	return rep, nil
}

// AdjustReputation atomically applies the delta. Unseen users are first
// seeded with the default reputation; SETNX keeps the seed race-free.
func (s *RedisReputationStore) AdjustReputation(ctx context.Context, userID string, delta float64) (float64, error) {
	key := s.key(userID)
	if err := s.client.SetNX(ctx, key, contracts.DefaultReputation, 0).Err(); err != nil {
		return 0, fmt.Errorf("redis reputation seed: %w", err)
	}
	rep, err := s.client.IncrByFloat(ctx, key, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("redis reputation adjust: %w", err)
	}
	return rep, nil
}

// Ping verifies connectivity, used at startup.
func (s *RedisReputationStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
