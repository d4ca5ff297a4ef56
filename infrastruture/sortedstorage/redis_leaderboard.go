package sortedstorage

import (
	"context"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix     = "vinom-search"
	defaultMaxEntries = 100
	leaderboardKeyFmt = "%s:leaderboard:%s"
)

// RedisLeaderboard keeps the shortest successful trajectories of each
// strategy in a Redis sorted set with TTL support.
type RedisLeaderboard struct {
	client     *redis.Client
	locker     *redsync.Redsync
	prefix     string
	maxEntries int64
	ttl        time.Duration
}

// LeaderboardOptions configures a RedisLeaderboard.
type LeaderboardOptions struct {
	Prefix     string        // Key prefix; defaults to "vinom-search"
	MaxEntries int64         // Entries kept per strategy; defaults to 100
	TTL        time.Duration // Expiry set when a key is created; zero keeps keys forever
}

// NewRedisLeaderboard initializes a RedisLeaderboard with the provided Redis client.
func NewRedisLeaderboard(client *redis.Client, opts LeaderboardOptions) i.Leaderboard {
	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}

	board := &RedisLeaderboard{
		client:     client,
		prefix:     opts.Prefix,
		maxEntries: opts.MaxEntries,
		ttl:        opts.TTL,
	}
	pool := goredis.NewPool(client)
	board.locker = redsync.New(pool)
	return board
}

// Record adds an entry and trims the set to the best MaxEntries members.
// Trimming runs under a distributed lock so concurrent writers never drop
// each other's better entries.
func (b *RedisLeaderboard) Record(ctx context.Context, strategy string, entry i.LeaderboardEntry) error {
	key := b.key(strategy)

	mutex := b.locker.NewMutex(key + ":trim_lock")
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("locking leaderboard %s: %w", strategy, err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	if err := b.client.ZAdd(ctx, key, redis.Z{Score: entry.TrajectoryLength, Member: entry.Member}).Err(); err != nil {
		return err
	}

	// Set expiration only if it's not already set
	if b.ttl > 0 {
		ttl, err := b.client.TTL(ctx, key).Result()
		if err == nil && ttl == -1 {
			_ = b.client.Expire(ctx, key, b.ttl).Err()
		}
	}

	return b.client.ZRemRangeByRank(ctx, key, b.maxEntries, -1).Err()
}

// Top returns up to n entries, shortest trajectory first.
func (b *RedisLeaderboard) Top(ctx context.Context, strategy string, n int64) ([]i.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	members, err := b.client.ZRangeWithScores(ctx, b.key(strategy), 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]i.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		entries = append(entries, i.LeaderboardEntry{
			Member:           fmt.Sprint(m.Member),
			TrajectoryLength: m.Score,
		})
	}
	return entries, nil
}

// Count returns the number of entries kept for strategy.
func (b *RedisLeaderboard) Count(ctx context.Context, strategy string) int64 {
	return b.client.ZCard(ctx, b.key(strategy)).Val()
}

func (b *RedisLeaderboard) key(strategy string) string {
	return fmt.Sprintf(leaderboardKeyFmt, b.prefix, strategy)
}
