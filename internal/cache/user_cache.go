package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/domain"
)

const userKeyPrefix = "user-service:user:"

// UserCache keeps public user views in Redis. Every failure is logged and
// reported as a miss, so callers fall back to the store.
type UserCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewUserCache returns a cache; a nil client or zero ttl disables it.
func NewUserCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *UserCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserCache{client: client, ttl: ttl, logger: logger}
}

func (c *UserCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func userKey(id int64) string {
	return userKeyPrefix + strconv.FormatInt(id, 10)
}

// Get returns the cached view and whether it was found.
func (c *UserCache) Get(ctx context.Context, id int64) (domain.PublicUser, bool) {
	var user domain.PublicUser
	if !c.enabled() {
		return user, false
	}

	raw, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("user cache read failed", zap.Int64("user_id", id), zap.Error(err))
		}
		return user, false
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		c.logger.Warn("user cache entry corrupt", zap.Int64("user_id", id), zap.Error(err))
		return user, false
	}
	return user, true
}

// Set stores the view under its id.
func (c *UserCache) Set(ctx context.Context, user domain.PublicUser) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		c.logger.Warn("user cache encode failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, userKey(user.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("user cache write failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

// Invalidate drops the entry for id.
func (c *UserCache) Invalidate(ctx context.Context, id int64) error {
	if !c.enabled() {
		return nil
	}
	if err := c.client.Del(ctx, userKey(id)).Err(); err != nil {
		c.logger.Warn("user cache invalidate failed", zap.Int64("user_id", id), zap.Error(err))
		return err
	}
	return nil
}
