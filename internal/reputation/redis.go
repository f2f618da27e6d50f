package reputation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisKeyPrefix namespaces reputation entries in redis
const RedisKeyPrefix = "spectra:reputation:"

// RedisCache is a Cache shared across processes through redis
type RedisCache struct {
	client    redis.Cmdable
	retention time.Duration
}

// NewRedisCache wraps client. Entries expire from redis after retention; zero keeps them forever
func NewRedisCache(client redis.Cmdable, retention time.Duration) *RedisCache {
	return &RedisCache{client: client, retention: retention}
}

// Get returns the entry for url. A payload that cannot be decoded is reported as a miss so the caller re-fetches
func (c *RedisCache) Get(ctx context.Context, url string) (Entry, bool, error) {
	raw, err := c.client.Get(ctx, RedisKeyPrefix+url).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}

	if err != nil {
		return Entry{}, false, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil || e.FetchedAt.IsZero() {
		log.Warn().Str("url", url).Msg("discarding unreadable reputation cache entry")

		return Entry{}, false, nil
	}

	return e, true, nil
}

// Put stores e under e.URL
func (c *RedisCache) Put(ctx context.Context, e Entry) error {
	if e.URL == "" {
		return ErrEmptyURL
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode reputation entry: %w", err)
	}

	if err := c.client.Set(ctx, RedisKeyPrefix+e.URL, data, c.retention).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}
