package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/rbac-task-api/internal/config"
)

func setupTestBlacklist(t *testing.T) (*RedisTokenBlacklist, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := NewRedisClient(config.RedisConfig{
		Addr:         mr.Addr(),
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	blacklist := NewRedisTokenBlacklist(client)
	t.Cleanup(func() { _ = blacklist.Close() })

	return blacklist, mr
}

func TestRedisTokenBlacklist_RevokeAndCheck(t *testing.T) {
	blacklist, mr := setupTestBlacklist(t)
	ctx := context.Background()

	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.True(t, mr.Exists(RevokedTokenPrefix+"jti-1"))
	assert.Equal(t, time.Hour, mr.TTL(RevokedTokenPrefix+"jti-1"))
}

func TestRedisTokenBlacklist_EntryExpires(t *testing.T) {
	blacklist, mr := setupTestBlacklist(t)
	ctx := context.Background()

	require.NoError(t, blacklist.Revoke(ctx, "jti-2", time.Minute))
	mr.FastForward(2 * time.Minute)

	revoked, err := blacklist.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenBlacklist_ExpiredTokenSkipped(t *testing.T) {
	blacklist, mr := setupTestBlacklist(t)

	require.NoError(t, blacklist.Revoke(context.Background(), "jti-3", 0))
	assert.False(t, mr.Exists(RevokedTokenPrefix+"jti-3"))
}

func TestRedisTokenBlacklist_ServerDown(t *testing.T) {
	blacklist, mr := setupTestBlacklist(t)
	ctx := context.Background()

	require.NoError(t, blacklist.Ping(ctx))
	mr.Close()

	_, err := blacklist.IsRevoked(ctx, "jti-4")
	assert.ErrorIs(t, err, ErrCacheDown)
}

func TestRedisTokenBlacklist_KeepsCause(t *testing.T) {
	blacklist, _ := setupTestBlacklist(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := blacklist.IsRevoked(ctx, "jti-5")
	assert.ErrorIs(t, err, ErrCacheDown)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoopTokenBlacklist(t *testing.T) {
	var blacklist TokenBlacklist = NoopTokenBlacklist{}
	ctx := context.Background()

	require.NoError(t, blacklist.Revoke(ctx, "jti", time.Hour))
	revoked, err := blacklist.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, blacklist.Ping(ctx))
	assert.NoError(t, blacklist.Close())
}
