package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeEvaler struct {
	count int64
	err   error
	keys  []string
}

func (f *fakeEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.keys = append(f.keys, keys...)
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.count++
	cmd.SetVal(f.count)
	return cmd
}

func newTestLimiter(evaler redisEvaler, max int) *redisIssueLimiter {
	return &redisIssueLimiter{
		client: evaler,
		window: 24 * time.Hour,
		max:    max,
		prefix: "otp:",
	}
}

func TestRedisIssueLimiter_AllowsUpToMax(t *testing.T) {
	limiter := newTestLimiter(&fakeEvaler{}, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("user@example.com"))
	}
	assert.False(t, limiter.Allow("user@example.com"))
}

func TestRedisIssueLimiter_FailsOpenOnRedisError(t *testing.T) {
	limiter := newTestLimiter(&fakeEvaler{err: errors.New("connection refused")}, 1)

	assert.True(t, limiter.Allow("user@example.com"))
	assert.True(t, limiter.Allow("user@example.com"))
}

func TestRedisIssueLimiter_NormalizesKey(t *testing.T) {
	evaler := &fakeEvaler{}
	limiter := newTestLimiter(evaler, 5)

	limiter.Allow("  User@Example.COM ")
	assert.Equal(t, []string{"otp:user@example.com"}, evaler.keys)
}

func TestRedisIssueLimiter_EmptyKeyDenied(t *testing.T) {
	limiter := newTestLimiter(&fakeEvaler{}, 5)
	assert.False(t, limiter.Allow("   "))
}

func TestNewRedisIssueLimiter_NilClient(t *testing.T) {
	assert.Nil(t, NewRedisIssueLimiter(nil, "otp:", time.Hour, 5))
}
