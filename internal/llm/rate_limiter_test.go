package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Redis address - uses docker-compose setup
const testRedisAddr = "localhost:6380"

func cleanupTestKeys(t *testing.T, client *redis.Client) {
	t.Helper()
	ctx := context.Background()
	keys, err := client.Keys(ctx, "evitool-test:*").Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func TestRateLimiter_NewConnection(t *testing.T) {
	rl, err := NewRateLimiter(testRedisAddr, "evitool-test", DefaultRPM)
	if err != nil {
		t.Skipf("redis not reachable at %s: %v", testRedisAddr, err)
	}
	require.NotNil(t, rl)
	assert.Equal(t, int64(DefaultRPM), rl.rpmLimit)
	assert.Equal(t, int64(DefaultTPM), rl.tpmLimit)
	assert.Equal(t, int64(DefaultRPD), rl.rpdLimit)
	assert.NoError(t, rl.Close())
}

func TestRateLimiter_InvalidConnection(t *testing.T) {
	rl, err := NewRateLimiter("localhost:9999", "evitool-test", DefaultRPM)
	assert.Error(t, err)
	assert.Nil(t, rl)
}

func TestRateLimiter_CheckAndIncrement_Normal(t *testing.T) {
	rl, err := NewRateLimiter(testRedisAddr, "evitool-test", DefaultRPM)
	if err != nil {
		t.Skipf("redis not reachable at %s: %v", testRedisAddr, err)
	}
	defer rl.Close()

	ctx := context.Background()
	cleanupTestKeys(t, rl.redis)
	defer cleanupTestKeys(t, rl.redis)

	for i := 0; i < 5; i++ {
		err := rl.CheckAndIncrement(ctx, 100)
		require.NoError(t, err, fmt.Sprintf("call %d should succeed well under limits", i))
	}
}

func TestRateLimiter_CustomRPM(t *testing.T) {
	rl, err := NewRateLimiter(testRedisAddr, "evitool-test-custom", 10)
	if err != nil {
		t.Skipf("redis not reachable at %s: %v", testRedisAddr, err)
	}
	defer rl.Close()
	assert.Equal(t, int64(10), rl.rpmLimit)
}

func TestExtractWaitTime(t *testing.T) {
	assert.Equal(t, 45, extractWaitTime("approaching RPM limit (900/1000), wait 45s"))
	assert.Equal(t, 60, extractWaitTime("no wait time present in this message"))
}
