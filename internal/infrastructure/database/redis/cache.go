// Package redis provides the Redis client and a cache-aside helper used to
// memoize expensive read models (market summaries, reference data).
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/tendergate/tendergate/internal/config"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

// nullMarker is stored for cached "not found" results so repeated misses do
// not hammer the database.
const nullMarker = "__null__"

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New(errors.ErrCodeCacheError, "cache miss")

// ErrNilValue is returned when a key holds a cached null.
var ErrNilValue = errors.New(errors.ErrCodeCacheError, "cached null value")

// NewClient connects to Redis and verifies the connection.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "connecting to redis")
	}
	return client, nil
}

// Cache wraps a Redis client with JSON serialization, key prefixing, TTL
// jitter and request coalescing.
type Cache struct {
	client    redis.Cmdable
	prefix    string
	ttl       time.Duration
	jitter    float64
	group     singleflight.Group
	logger    logging.Logger
	randFloat func() float64
}

// NewCache builds a Cache over the given client using the configured prefix,
// default TTL and jitter fraction.
func NewCache(client redis.Cmdable, cfg config.RedisConfig, logger logging.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Cache{
		client:    client,
		prefix:    cfg.KeyPrefix,
		ttl:       cfg.DefaultTTL,
		jitter:    cfg.TTLJitter,
		logger:    logger.Named("cache"),
		randFloat: rand.Float64,
	}
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// jitteredTTL widens ttl by a random fraction up to the configured jitter so
// keys written together do not expire together.
func (c *Cache) jitteredTTL(ttl time.Duration) time.Duration {
	if c.jitter <= 0 || ttl <= 0 {
		return ttl
	}
	return ttl + time.Duration(float64(ttl)*c.jitter*c.randFloat())
}

// Get loads a key into dest.  Returns ErrCacheMiss when absent and
// ErrNilValue when a null marker is cached.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "reading cache key")
	}
	if raw == nullMarker {
		return ErrNilValue
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decoding cached value")
	}
	return nil
}

// Set stores value under key with the default TTL (plus jitter).  A ttl of 0
// uses the configured default.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	var payload string
	if value == nil {
		payload = nullMarker
	} else {
		encoded, err := json.Marshal(value)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "encoding cache value")
		}
		payload = string(encoded)
	}

	if err := c.client.Set(ctx, c.key(key), payload, c.jitteredTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "writing cache key")
	}
	return nil
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "deleting cache keys")
	}
	return nil
}

// GetOrSet implements cache-aside: it loads key into dest, and on a miss
// invokes loader, caches its result and decodes it into dest.  Concurrent
// callers for the same key share one loader invocation.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil || errors.IsCode(err, errors.ErrCodeSerialization) {
		return err
	}
	if err == ErrNilValue {
		return ErrNilValue
	}

	raw, loadErr, _ := c.group.Do(c.key(key), func() (interface{}, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if setErr := c.Set(ctx, key, value, ttl); setErr != nil {
			// Serving the loaded value matters more than caching it.
			c.logger.Warn("cache write failed", logging.String("key", key), logging.Err(setErr))
		}
		return value, nil
	})
	if loadErr != nil {
		return loadErr
	}
	if raw == nil {
		return ErrNilValue
	}

	// Round-trip through JSON to fill dest regardless of loader's concrete
	// return type.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding loaded value")
	}
	if err := json.Unmarshal(encoded, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decoding loaded value")
	}
	return nil
}
