package throttle

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/config"
)

func TestRedisLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisLimiter(client, 3, time.Minute)
	ctx := context.Background()
	key := AttemptKey("tok", "10.0.0.1")

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}
	ok, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := l.Allow(ctx, AttemptKey("tok", "10.0.0.2"))
	require.NoError(t, err)
	assert.True(t, other, "other clients keep their own window")

	mr.FastForward(time.Minute + time.Second)
	ok, err = l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok, "window resets")
}

func TestRedisLimiter_AllowError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	_, err := NewRedisLimiter(client, 3, time.Minute).Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestAttemptKey_HidesToken(t *testing.T) {
	key := AttemptKey("super-secret-token", "10.0.0.1")
	assert.False(t, strings.Contains(key, "super-secret-token"))
	assert.True(t, strings.HasSuffix(key, ":10.0.0.1"))
	assert.Equal(t, key, AttemptKey("super-secret-token", "10.0.0.1"))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

func TestUnlimited(t *testing.T) {
	ok, err := Unlimited{}.Allow(context.Background(), "anything")
	assert.NoError(t, err)
	assert.True(t, ok)
}
