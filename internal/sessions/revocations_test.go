package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRevoke_IsRevoked(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	r := NewRevocations(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	require.True(t, r.Enabled())
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "jti-1", 2*time.Second))

	ok, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, ok)

	// advance past TTL
	m.FastForward(3 * time.Second)

	ok, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRevoke_ExpiredTokenNotStored(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	r := NewRevocations(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	require.NoError(t, r.Revoke(context.Background(), "old", -time.Second))
	require.False(t, m.Exists(revokedPrefix+"old"))
}

func TestRevoke_RequiresID(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	r := NewRevocations(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	require.Error(t, r.Revoke(context.Background(), "", time.Minute))
}

// without Redis the deny list is a no-op
func TestRevocations_NoClient_Noop(t *testing.T) {
	ctx := context.Background()
	for _, r := range []*Revocations{nil, NewRevocations(nil)} {
		require.False(t, r.Enabled())
		require.NoError(t, r.Revoke(ctx, "jti", time.Second))
		ok, err := r.IsRevoked(ctx, "jti")
		require.NoError(t, err)
		require.False(t, ok)
		require.NoError(t, r.Ping(ctx))
	}
}
