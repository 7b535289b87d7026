package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores revoked JTIs as keys with TTL so Redis expires them on its
// own; no sweeper needed.
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

func key(jti string) string { return "revoked:" + jti }

func (s *Redis) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := s.client.Get(ctx, key(jti)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return true, nil
}
