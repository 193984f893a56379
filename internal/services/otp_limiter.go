package services

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// IssueLimiter caps how often a subject may request a new challenge
// (or password reset) inside a fixed window.
type IssueLimiter interface {
	Allow(key string) bool
}

const redisAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisIssueLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisIssueLimiter builds a fixed-window counter over Redis.
// On Redis errors it fails open: a dropped limiter must not lock
// every user out of step-up verification.
func NewRedisIssueLimiter(client *redis.Client, prefix string, window time.Duration, max int) IssueLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	if max <= 0 {
		max = 1
	}
	return &redisIssueLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: prefix,
	}
}

func (l *redisIssueLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisAllowScript, []string{l.prefix + normalized}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
