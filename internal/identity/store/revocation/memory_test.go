package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevocationExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewInMemory(WithClock(func() time.Time { return now }))

	require.NoError(t, store.Revoke(ctx, "jti-2", time.Minute))

	now = now.Add(2 * time.Minute)
	revoked, err := store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked, "entry past its TTL is no longer revoked")
}
