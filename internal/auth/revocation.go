package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedKeyPrefix = "revoked_token"

// RedisRevocationStore keeps revoked token ids in Redis with a TTL
// matching the token lifetime, so entries expire on their own.
type RedisRevocationStore struct {
	Client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{Client: client}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if s.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil // already expired, nothing to revoke
	}
	key := fmt.Sprintf("%s:%s", revokedKeyPrefix, tokenID)
	if err := s.Client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store revocation in Redis: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.Client == nil {
		return false, fmt.Errorf("redis client not initialized")
	}
	key := fmt.Sprintf("%s:%s", revokedKeyPrefix, tokenID)
	_, err := s.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check revocation in Redis: %w", err)
	}
	return true, nil
}
