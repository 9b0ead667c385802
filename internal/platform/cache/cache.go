// Package cache is a JSON read-through cache over redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/metrics"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON values by key with a TTL
type Cache interface {
	// Get decodes the value at key into dst; found is false on a miss
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Options configures the redis client
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key namespace, default "comicvault:"
}

// Redis implements Cache with go-redis
type Redis struct {
	client *redis.Client
	prefix string
	log    logger.Logger
}

var _ Cache = (*Redis)(nil)

// NewRedis builds the client; it does not dial until first use
func NewRedis(opt Options, log logger.Logger) *Redis {
	prefix := opt.Prefix
	if prefix == "" {
		prefix = "comicvault:"
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:         opt.Addr,
			Password:     opt.Password,
			DB:           opt.DB,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
		prefix: prefix,
		log:    log.With().Str("component", "cache").Logger(),
	}
}

// Ping checks connectivity
func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// Close closes the pool
func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		// a stale shape is a miss; drop it so the next Set replaces it
		_ = r.client.Del(ctx, r.prefix+key).Err()
		return false, nil
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, b, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.client.Del(ctx, full...).Err()
}

// Noop is a Cache that never hits
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error               { return nil }

// Remember returns the cached value at key or calls load and stores its
// result. Cache failures are logged and bypassed; load errors are not cached
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var v T
	if c == nil {
		return load(ctx)
	}
	found, err := c.Get(ctx, key, &v)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("key", key).Msg("cache: get failed")
	} else if found {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return v, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	v, err = load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		logger.C(ctx).Warn().Err(err).Str("key", key).Msg("cache: set failed")
	}
	return v, nil
}
