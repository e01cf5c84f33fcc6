// Package ratelimit limits how often a single client may submit the lead
// form. Counters live in Redis so every API replica shares them.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether another request identified by key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Options configure a fixed-window limiter.
type Options struct {
	// Requests is the number of requests allowed per window.
	Requests int
	// Window is the length of one counting window.
	Window time.Duration
	// Prefix namespaces the Redis keys.
	Prefix string
}

// RedisLimiter is a fixed-window counter: each (key, window) pair gets an
// INCR counter that expires with the window.
type RedisLimiter struct {
	client  redis.Cmdable
	options Options
	now     func() time.Time
}

// NewRedisLimiter creates a limiter backed by client.
func NewRedisLimiter(client redis.Cmdable, options Options) *RedisLimiter {
	if options.Requests <= 0 {
		options.Requests = 10
	}
	if options.Window <= 0 {
		options.Window = time.Minute
	}
	if options.Prefix == "" {
		options.Prefix = "leadintake:ratelimit:"
	}

	return &RedisLimiter{client: client, options: options, now: time.Now}
}

// Allow counts a request for key and reports whether it is within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := l.now().UnixNano() / int64(l.options.Window)
	redisKey := l.options.Prefix + key + ":" + strconv.FormatInt(window, 10)

	var incr *redis.IntCmd
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.options.Window)

		return nil
	}); err != nil {
		return false, fmt.Errorf("could not count request: %w", err)
	}

	return incr.Val() <= int64(l.options.Requests), nil
}

// RetryAfter is the time until the current window ends.
func (l *RedisLimiter) RetryAfter() time.Duration {
	w := int64(l.options.Window)
	now := l.now().UnixNano()

	return time.Duration(w - now%w)
}
