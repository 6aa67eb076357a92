// Package cache keeps computed report payloads in Redis under versioned keys.
// Any write that changes invoices or sales bumps the version, which orphans
// every cached report at once.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/sangkips/notas-backoffice/internal/config"
)

const versionKey = "reports:version"

// ReportCache wraps Redis based caching with versioning controls. A nil
// cache, or one without a client, calls the loader every time.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	log    *logrus.Logger
}

// NewRedisClient connects to Redis, returning nil when no address is configured
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewReportCache instantiates the cache helper
func NewReportCache(client *redis.Client, ttl time.Duration, log *logrus.Logger) *ReportCache {
	return &ReportCache{client: client, ttl: ttl, log: log}
}

func (c *ReportCache) disabled() bool {
	return c == nil || c.client == nil
}

// Version returns the current cache version, initialising when missing.
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	if c.disabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *ReportCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c.disabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("reports:%s:v%d", joined, ver), nil
}

// FetchJSON fills dest from the cached payload under key or, on a miss,
// from loader. Concurrent misses on the same key share one loader call.
// Redis failures are logged and the loader result is served uncached.
func (c *ReportCache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c.disabled() {
		raw, err := load(ctx, loader)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		c.log.WithError(err).WithField("key", key).Warn("report cache read failed")
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		raw, err := load(ctx, loader)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.WithError(err).WithField("key", key).Warn("report cache write failed")
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}

// Invalidate bumps the version so every existing report key is skipped.
func (c *ReportCache) Invalidate(ctx context.Context) {
	if c.disabled() {
		return
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		c.log.WithError(err).Error("report cache invalidation failed")
	}
}

func load(ctx context.Context, loader func(context.Context) (interface{}, error)) ([]byte, error) {
	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(value)
}
