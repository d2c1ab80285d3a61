// Package cache keeps rendered installer listings close to the API.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const installerKeyPrefix = "installers:"

// InstallerCache stores the JSON rendering of an installer lookup by the
// slug it was requested with.
type InstallerCache interface {
	Get(ctx context.Context, slug string) (data []byte, ok bool, err error)
	Set(ctx context.Context, slug string, data []byte) error
	Invalidate(ctx context.Context, slugs ...string) error
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}

type RedisInstallerCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisInstallerCache(client redis.Cmdable, ttl time.Duration) *RedisInstallerCache {
	return &RedisInstallerCache{client: client, ttl: ttl}
}

func installerKey(slug string) string {
	return installerKeyPrefix + slug
}

func (c *RedisInstallerCache) Get(ctx context.Context, slug string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, installerKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisInstallerCache) Set(ctx context.Context, slug string, data []byte) error {
	return c.client.Set(ctx, installerKey(slug), data, c.ttl).Err()
}

func (c *RedisInstallerCache) Invalidate(ctx context.Context, slugs ...string) error {
	if len(slugs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, installerKey(s))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// NopInstallerCache never stores anything.
type NopInstallerCache struct{}

func (NopInstallerCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NopInstallerCache) Set(context.Context, string, []byte) error         { return nil }
func (NopInstallerCache) Invalidate(context.Context, ...string) error       { return nil }
