package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"servespot/internal/shared"
)

// UnreadCache keeps per-recipient unread notification counts in Redis so
// the badge endpoint does not hit Postgres on every poll. Counts are
// invalidated whenever a notification is created or marked read; a miss
// falls through to the repository.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUnreadCache connects to Redis and verifies the connection.
func NewUnreadCache(addr, password string, ttl time.Duration) (*UnreadCache, error) {
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

	return &UnreadCache{client: rdb, ttl: ttl}, nil
}

func key(role shared.Role, recipientID string) string {
	return fmt.Sprintf("unread:%s:%s", role, recipientID)
}

// Get returns the cached count. The second return is false on a miss.
func (c *UnreadCache) Get(ctx context.Context, role shared.Role, recipientID string) (int64, bool, error) {
	if c == nil || c.client == nil {
		// no-op mode when Redis is not configured
		return 0, false, nil
	}
	val, err := c.client.Get(ctx, key(role, recipientID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// Set stores the count with the configured TTL.
func (c *UnreadCache) Set(ctx context.Context, role shared.Role, recipientID string, count int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, key(role, recipientID), count, c.ttl).Err()
}

// Invalidate drops the cached count after a create or mark-read.
func (c *UnreadCache) Invalidate(ctx context.Context, role shared.Role, recipientID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, key(role, recipientID)).Err()
}
