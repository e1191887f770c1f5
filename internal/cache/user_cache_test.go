package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/user-service/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*UserCache, *miniredis.Miniredis, *observer.ObservedLogs) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	core, logs := observer.New(zap.DebugLevel)
	return NewUserCache(rdb, ttl, zap.New(core)), mr, logs
}

func sampleUser() domain.PublicUser {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.PublicUser{ID: 11, Username: "alice", CreatedAt: ts, UpdatedAt: ts}
}

func TestSetThenGet(t *testing.T) {
	c, mr, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, 11)
	assert.False(t, ok)

	c.Set(ctx, sampleUser())
	got, ok := c.Get(ctx, 11)
	require.True(t, ok)
	assert.Equal(t, sampleUser(), got)

	assert.True(t, mr.Exists("user-service:user:11"))
	assert.Equal(t, time.Minute, mr.TTL("user-service:user:11"))
}

func TestEntriesExpire(t *testing.T) {
	c, mr, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, sampleUser())
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, 11)
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	c, _, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, sampleUser())
	require.NoError(t, c.Invalidate(ctx, 11))

	_, ok := c.Get(ctx, 11)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx, 11))
}

func TestCorruptEntryIsMiss(t *testing.T) {
	c, mr, logs := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("user-service:user:11", "{not json"))

	_, ok := c.Get(context.Background(), 11)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("user cache entry corrupt").Len())
}

func TestUnavailableRedisIsMiss(t *testing.T) {
	c, mr, logs := newTestCache(t, time.Minute)
	mr.Close()
	ctx := context.Background()

	c.Set(ctx, sampleUser())
	_, ok := c.Get(ctx, 11)
	assert.False(t, ok)
	assert.Error(t, c.Invalidate(ctx, 11))
	assert.Equal(t, 1, logs.FilterMessage("user cache read failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("user cache write failed").Len())
}

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]*UserCache{
		"nil":      nil,
		"noClient": NewUserCache(nil, time.Minute, nil),
		"zeroTTL":  NewUserCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), 0, nil),
	} {
		t.Run(name, func(t *testing.T) {
			c.Set(ctx, sampleUser())
			_, ok := c.Get(ctx, 11)
			assert.False(t, ok)
			assert.NoError(t, c.Invalidate(ctx, 11))
		})
	}
}
