package blob

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// URLCache remembers resolved URLs for less than their validity window.
type URLCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, url string, ttl time.Duration) error
}

// RedisURLCache is a URLCache backed by Redis string keys.
type RedisURLCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisURLCache creates a new RedisURLCache
func NewRedisURLCache(rdb *redis.Client) *RedisURLCache {
	return &RedisURLCache{rdb: rdb, prefix: "blob:url:"}
}

// Get returns the cached URL for key, if any.
func (c *RedisURLCache) Get(ctx context.Context, key string) (string, bool, error) {
	url, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

// Set caches url under key for ttl.
func (c *RedisURLCache) Set(ctx context.Context, key, url string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+key, url, ttl).Err()
}

// CachedStore fronts a Store with a URLCache. Cache failures are logged and
// the request falls through to the underlying store.
type CachedStore struct {
	next  Store
	cache URLCache
	ttl   time.Duration
	log   logrus.FieldLogger
}

// NewCachedStore caches resolved URLs for ttl, which must be shorter than the
// underlying store's URL validity.
func NewCachedStore(store Store, cache URLCache, ttl time.Duration, log logrus.FieldLogger) *CachedStore {
	return &CachedStore{next: store, cache: cache, ttl: ttl, log: log}
}

var _ Store = (*CachedStore)(nil)

// Store uploads through the underlying store. Fresh keys never hit the cache.
func (s *CachedStore) Store(ctx context.Context, class string, data []byte, filename string) (string, error) {
	return s.next.Store(ctx, class, data, filename)
}

// ResolveURL returns a cached URL or resolves and caches a new one.
func (s *CachedStore) ResolveURL(ctx context.Context, class, key string) (string, error) {
	cacheKey := class + "/" + key
	url, ok, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		s.log.WithError(err).WithField("key", cacheKey).Warn("url cache read failed")
	}
	if ok {
		return url, nil
	}

	url, err = s.next.ResolveURL(ctx, class, key)
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, cacheKey, url, s.ttl); err != nil {
		s.log.WithError(err).WithField("key", cacheKey).Warn("url cache write failed")
	}
	return url, nil
}
