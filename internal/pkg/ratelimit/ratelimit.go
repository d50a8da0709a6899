// Package ratelimit counts attempts in fixed windows on redis.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether another attempt for key is allowed.
type Limiter interface {
	// Allow records one attempt and reports whether it fits in limit per window.
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (Result, error)
	// Reset forgets every attempt recorded for key.
	Reset(ctx context.Context, key string) error
}

// Result is the outcome of an Allow call.
type Result struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// Redis is a fixed-window Limiter using INCR and PEXPIRE.
type Redis struct {
	client redis.Cmdable
	prefix string
}

// New builds a Limiter on client.
func New(client redis.Cmdable) *Redis {
	return &Redis{
		client: client,
		prefix: "ratelimit:",
	}
}

// Allow increments the window counter for key. The window starts on the first
// attempt and its expiry is never extended by later attempts.
func (r *Redis) Allow(ctx context.Context, key string, limit int64, window time.Duration) (Result, error) {
	if limit <= 0 || window <= 0 {
		return Result{Allowed: true}, nil
	}

	fk := r.prefix + key

	count, err := r.client.Incr(ctx, fk).Result()
	if err != nil {
		return Result{}, err
	}

	ttl, err := r.client.PTTL(ctx, fk).Result()
	if err != nil {
		return Result{}, err
	}

	// a negative ttl means the key has no expiry yet (first hit, or an earlier
	// expire call was lost).
	if count == 1 || ttl < 0 {
		if err := r.client.PExpire(ctx, fk, window).Err(); err != nil {
			return Result{}, err
		}
		ttl = window
	}

	res := Result{Allowed: count <= limit, Count: count}
	if !res.Allowed {
		res.RetryAfter = ttl
	}

	return res, nil
}

// Reset deletes the counter for key.
func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
