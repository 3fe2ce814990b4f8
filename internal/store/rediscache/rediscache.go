// Package rediscache puts a Redis read-through cache in front of a profile
// repository. When Redis is unreachable the cache is bypassed.
package rediscache

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/abhisek/skillforge/internal/profile"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is used when Config.TTL is zero.
const DefaultTTL = 10 * time.Minute

// Config holds the Redis connection settings.
type Config struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

// NewClient connects to Redis. It returns nil when the server does not
// answer a ping, so callers run without a cache.
func NewClient(ctx context.Context, cfg Config, logger *log.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if logger != nil {
			logger.Printf("[Cache] Redis unavailable, bypassing cache: %v", err)
		}
		_ = client.Close()
		return nil
	}
	return client
}

// Repo caches profile blobs from an inner repository.
type Repo struct {
	inner  profile.Repo
	client *redis.Client
	codec  *profile.Codec
	ttl    time.Duration
	prefix string
	logger *log.Logger

	warnedUnavailable atomic.Bool
}

// New wraps inner. A nil client disables caching.
func New(inner profile.Repo, client *redis.Client, codec *profile.Codec, cfg Config, logger *log.Logger) *Repo {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "skillforge:profile:"
	}
	return &Repo{inner: inner, client: client, codec: codec, ttl: ttl, prefix: prefix, logger: logger}
}

func (r *Repo) isUnavailable() bool {
	return r.client == nil
}

func (r *Repo) warnUnavailableOnce(err error) {
	if r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Printf("[Cache] Redis unavailable, bypassing cache: %v", err)
	}
}

func (r *Repo) cacheKey(key string) string {
	return r.prefix + key
}

func (r *Repo) Get(ctx context.Context, key string) (*profile.Profile, error) {
	if !r.isUnavailable() {
		b, err := r.client.Get(ctx, r.cacheKey(key)).Bytes()
		switch {
		case err == nil && len(b) > 0:
			if p, derr := r.codec.Decode(b); derr == nil {
				return p, nil
			}
			// A cached blob that no longer validates is dropped.
			r.client.Del(ctx, r.cacheKey(key))
		case err != nil && !errors.Is(err, redis.Nil):
			r.warnUnavailableOnce(err)
		}
	}

	p, err := r.inner.Get(ctx, key)
	if err != nil || p == nil {
		return p, err
	}
	r.store(ctx, key, p)
	return p, nil
}

func (r *Repo) Put(ctx context.Context, key string, p *profile.Profile) error {
	if err := r.inner.Put(ctx, key, p); err != nil {
		return err
	}
	r.store(ctx, key, p)
	return nil
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	if err := r.inner.Delete(ctx, key); err != nil {
		return err
	}
	if r.isUnavailable() {
		return nil
	}
	if err := r.client.Del(ctx, r.cacheKey(key)).Err(); err != nil {
		r.warnUnavailableOnce(err)
	}
	return nil
}

func (r *Repo) store(ctx context.Context, key string, p *profile.Profile) {
	if r.isUnavailable() {
		return
	}
	b, err := r.codec.Encode(p)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.cacheKey(key), b, r.ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
	}
}
