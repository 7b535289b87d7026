// Package revocation tracks logged-out token JTIs until their natural expiry.
package revocation

import (
	"context"
	"time"
)

// Store is the revocation denylist contract.
type Store interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
