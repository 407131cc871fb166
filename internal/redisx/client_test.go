package redisx

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := New(addr)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func TestLimiter(t *testing.T) {
	rdb := openTestRedis(t)
	ctx := context.Background()
	l := &Limiter{RDB: rdb, Limit: 2, Window: time.Minute}
	ip := "test-" + uuid.NewString()

	for i := 0; i < 2; i++ {
		ok, ttl, err := l.Allow(ctx, ip)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Greater(t, ttl, time.Duration(0))
	}
	ok, _, err := l.Allow(ctx, ip)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordSale_OncePerEvent(t *testing.T) {
	rdb := openTestRedis(t)
	ctx := context.Background()
	p1, p2 := uuid.NewString(), uuid.NewString()
	event := uuid.NewString()

	applied, err := RecordSale(ctx, rdb, "test", event, map[string]int{p1: 2, p2: 1})
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = RecordSale(ctx, rdb, "test", event, map[string]int{p1: 2, p2: 1})
	require.NoError(t, err)
	assert.False(t, applied)

	n, err := Sales(ctx, rdb, p1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = Sales(ctx, rdb, uuid.NewString())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestJSONCache(t *testing.T) {
	rdb := openTestRedis(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	var got map[string]string
	found, err := GetJSON(ctx, rdb, key, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, rdb, key, map[string]string{"status": "paid"}, time.Minute))
	found, err = GetJSON(ctx, rdb, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "paid", got["status"])
}
