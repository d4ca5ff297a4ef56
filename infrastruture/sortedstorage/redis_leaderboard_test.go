package sortedstorage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to TEST_REDIS_ADDR, skipping the test when unset.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLeaderboard(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	prefix := "test-" + uuid.NewString()
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})

	board := NewRedisLeaderboard(client, LeaderboardOptions{Prefix: prefix, MaxEntries: 3, TTL: time.Hour}).(*RedisLeaderboard)

	t.Run("keeps the shortest trajectories", func(t *testing.T) {
		for idx, length := range []float64{12, 4, 30, 7, 5} {
			entry := i.LeaderboardEntry{Member: fmt.Sprintf("run/%d", idx), TrajectoryLength: length}
			require.NoError(t, board.Record(ctx, "baseline", entry))
		}

		top, err := board.Top(ctx, "baseline", 10)
		require.NoError(t, err)
		assert.Equal(t, []i.LeaderboardEntry{
			{Member: "run/1", TrajectoryLength: 4},
			{Member: "run/4", TrajectoryLength: 5},
			{Member: "run/3", TrajectoryLength: 7},
		}, top)
		assert.Equal(t, int64(3), board.Count(ctx, "baseline"))
	})

	t.Run("sets a ttl", func(t *testing.T) {
		ttl, err := client.TTL(ctx, board.key("baseline")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("strategies are separate", func(t *testing.T) {
		top, err := board.Top(ctx, "confidence", 10)
		require.NoError(t, err)
		assert.Empty(t, top)
	})

	t.Run("non-positive n", func(t *testing.T) {
		top, err := board.Top(ctx, "baseline", 0)
		require.NoError(t, err)
		assert.Nil(t, top)
	})
}

func TestLeaderboardKey(t *testing.T) {
	board := &RedisLeaderboard{prefix: defaultPrefix}
	assert.Equal(t, "vinom-search:leaderboard:moving-target", board.key("moving-target"))
}
