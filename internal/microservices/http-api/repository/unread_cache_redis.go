package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// UnreadCacheRedis caches per-user unread notification counts so the badge
// poll does not hit Postgres on every request. Any notification write for a
// user invalidates that user's entry.
type UnreadCacheRedis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUnreadCacheRedis connects to Redis and verifies the connection.
func NewUnreadCacheRedis(addr, password string, ttl time.Duration) (*UnreadCacheRedis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &UnreadCacheRedis{client: rdb, ttl: ttl}, nil
}

func unreadKey(userID string) string {
	return "notifications:unread:" + userID
}

// Get returns the cached count. ok is false on a miss or when the cache is
// not configured.
func (c *UnreadCacheRedis) Get(ctx context.Context, userID string) (int64, bool) {
	if c == nil || c.client == nil {
		// no-op mode for tests and cache-less deployments
		return 0, false
	}
	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *UnreadCacheRedis) Set(ctx context.Context, userID string, count int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, unreadKey(userID), count, c.ttl).Err()
}

func (c *UnreadCacheRedis) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, unreadKey(userID)).Err()
}

// Close releases the underlying connection pool.
func (c *UnreadCacheRedis) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
