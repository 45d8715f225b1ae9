package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

const lockPrefix = "buffai:lock:"

// releaseScript deletes a lock only while it still holds our owner token
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// Client wraps the go-redis client shared by the post store, the LLM rate
// limiter and ingestion locks.
type Client struct {
	rdb   *redis.Client
	owner string // identifies this process as a lock holder
}

// NewClient connects and pings Redis
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(errors.ErrUnavailable, "redis ping %s: %v", cfg.Addr(), err)
	}

	return NewFromClient(rdb), nil
}

// NewFromClient wraps an existing connection
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb, owner: uuid.NewString()}
}

// Client returns the underlying go-redis client
func (c *Client) Client() *redis.Client {
	return c.rdb
}

// Close closes the connection pool
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health pings Redis
func (c *Client) Health(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrapf(errors.ErrUnavailable, "redis ping: %v", err)
	}
	return nil
}

// AcquireLock takes key for ttl. It reports false when another holder has it.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockPrefix+key, c.owner, ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "acquire lock %s", key)
	}
	return ok, nil
}

// ReleaseLock frees key if this client still holds it. A lock that expired
// and was taken by someone else is left alone.
func (c *Client) ReleaseLock(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, c.rdb, []string{lockPrefix + key}, c.owner).Err(); err != nil {
		return errors.Wrapf(err, "release lock %s", key)
	}
	return nil
}
