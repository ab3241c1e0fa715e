package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/metrics"
)

// SettingsCache keeps assembled BusinessSettings in Redis. Redis failures are logged and
// treated as misses so the caller falls through to the database.
type SettingsCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewSettingsCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *SettingsCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SettingsCache{redis: rdb, ttl: ttl, logger: logger}
}

func settingsKey(ownerUserID int64) string {
	return fmt.Sprintf("settings:%d", ownerUserID)
}

func (c *SettingsCache) Get(ctx context.Context, ownerUserID int64) (*domain.BusinessSettings, bool) {
	data, err := c.redis.Get(ctx, settingsKey(ownerUserID)).Bytes()
	switch {
	case err == nil:
		var s domain.BusinessSettings
		if err := json.Unmarshal(data, &s); err != nil {
			c.logger.Warn("settings cache decode failed", "owner", ownerUserID, "err", err)
			break
		}
		metrics.SettingsCache.WithLabelValues("hit").Inc()
		return &s, true
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("settings cache read failed", "owner", ownerUserID, "err", err)
	}
	metrics.SettingsCache.WithLabelValues("miss").Inc()
	return nil, false
}

func (c *SettingsCache) Set(ctx context.Context, ownerUserID int64, s domain.BusinessSettings) {
	data, err := json.Marshal(s)
	if err != nil {
		c.logger.Warn("settings cache encode failed", "owner", ownerUserID, "err", err)
		return
	}
	if err := c.redis.Set(ctx, settingsKey(ownerUserID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("settings cache write failed", "owner", ownerUserID, "err", err)
	}
}

func (c *SettingsCache) Invalidate(ctx context.Context, ownerUserID int64) {
	if err := c.redis.Del(ctx, settingsKey(ownerUserID)).Err(); err != nil {
		c.logger.Warn("settings cache invalidate failed", "owner", ownerUserID, "err", err)
	}
}
