package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/user-service/internal/cache"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
)

func TestAuditLogsEvents(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, nil, zap.New(core)).RegisterHandlers()
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserCreated, UserID: 1, Username: "alice"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventLoginSucceeded, UserID: 1, Username: "alice"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventLoginFailed, Username: "mallory"}))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "user_created", entries[0].Message)
	assert.Equal(t, "audit", entries[0].LoggerName)
	assert.Equal(t, int64(1), entries[0].ContextMap()["user_id"])
	assert.NotEmpty(t, entries[0].ContextMap()["event_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "mallory", entries[2].ContextMap()["username"])
	_, hasID := entries[2].ContextMap()["user_id"]
	assert.False(t, hasID)
}

func TestAuditInvalidatesCacheOnWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	userCache := cache.NewUserCache(rdb, time.Minute, nil)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, userCache, nil).RegisterHandlers()
	ctx := context.Background()

	for _, tc := range []struct {
		id    int64
		event events.EventType
	}{
		{id: 1, event: events.EventUserUpdated},
		{id: 2, event: events.EventUserDeleted},
	} {
		userCache.Set(ctx, domain.PublicUser{ID: tc.id, Username: "u"})
		require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: tc.event, UserID: tc.id}))
		_, ok := userCache.Get(ctx, tc.id)
		assert.False(t, ok, tc.event)
	}

	userCache.Set(ctx, domain.PublicUser{ID: 3, Username: "u"})
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserCreated, UserID: 3}))
	_, ok := userCache.Get(ctx, 3)
	assert.True(t, ok)
}

func TestAuditSurfacesCacheFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, cache.NewUserCache(rdb, time.Minute, nil), nil).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserDeleted, UserID: 1})
	assert.Error(t, err)
}
