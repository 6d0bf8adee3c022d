package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"studio-booking/internal/domain/settings"

	"github.com/redis/go-redis/v9"
)

const settingsKey = "settings:v1"

type SettingsLoader interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// SettingsCache is a read-through cache in front of the settings repository.
// Only settings are cached; booking state always hits the database. A cache
// outage degrades to direct reads, it never fails the request.
type SettingsCache struct {
	loader SettingsLoader
	client *redis.Client
	ttl    time.Duration
}

func NewSettingsCache(loader SettingsLoader, client *redis.Client, ttl time.Duration) *SettingsCache {
	return &SettingsCache{loader: loader, client: client, ttl: ttl}
}

func (c *SettingsCache) Load(ctx context.Context) (settings.Settings, error) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, settingsKey).Bytes()
		if err == nil {
			var s settings.Settings
			if err := json.Unmarshal(raw, &s); err == nil {
				return s, nil
			}
			slog.Warn("discarding undecodable settings cache entry")
		} else if !errors.Is(err, redis.Nil) {
			slog.Warn("settings cache read failed", "error", err.Error())
		}
	}

	s, err := c.loader.Load(ctx)
	if err != nil {
		return settings.Settings{}, err
	}

	if c.client != nil {
		if raw, err := json.Marshal(s); err == nil {
			if err := c.client.Set(ctx, settingsKey, raw, c.ttl).Err(); err != nil {
				slog.Warn("settings cache write failed", "error", err.Error())
			}
		}
	}
	return s, nil
}

// Invalidate drops the cached entry after a settings update.
func (c *SettingsCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
		slog.Warn("settings cache invalidation failed", "error", err.Error())
	}
}
