package staffdeck

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	goerrors "github.com/goliatone/go-errors"
)

const revocationKeyPrefix = "staffdeck:revoked:"

// RedisRevocationStore shares the revocation set across instances.
// Keys carry a TTL matching the token lifetime, so the set stays
// bounded without a sweeper.
type RedisRevocationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRevocationStore wraps a connected redis client. The ttl
// should be at least the session token lifetime; entries that outlive
// their token are harmless.
func NewRedisRevocationStore(client *redis.Client, ttl time.Duration) *RedisRevocationStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRevocationStore{client: client, ttl: ttl}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoEmptyString
	}
	if err := s.client.Set(ctx, revocationKeyPrefix+token, "1", s.ttl).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to persist token revocation")
	}
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKeyPrefix+token).Result()
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to check token revocation")
	}
	return n > 0, nil
}
