//go:build integration

package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeflow/pkg/testutil/containers"
)

func TestRedisRevocation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	store := NewRedis(rc.Client)

	revoked, err := store.IsRevoked(ctx, "unknown-jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// A short TTL expires on its own.
	require.NoError(t, store.Revoke(ctx, "jti-2", 50*time.Millisecond))
	time.Sleep(200 * time.Millisecond)

	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
