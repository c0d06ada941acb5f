// Package store is a thin typed facade over the coordination/pub-sub store
// (Redis): atomic lease acquisition, hash and set operations, pub/sub, and
// pipelines. The only contract callers may rely on is that a lease acquired
// by one process is not re-acquirable by any other process until its TTL
// elapses or the key is deleted.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrClosed is returned by operations attempted after Close.
var ErrClosed = errors.New("store: client closed")

// Pipeliner is the subset of redis.Pipeliner the tick engine issues: batched
// hash writes executed in one round trip, so a pilot's physics and location
// are always updated atomically together.
type Pipeliner interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Exec(ctx context.Context) ([]redis.Cmder, error)
}

// Client wraps a redis.Client with the narrow vocabulary the tick engine
// needs, so callers never import go-redis directly.
type Client struct {
	rdb *redis.Client
}

// Options configures a new Client.
type Options struct {
	URL string
}

// New dials the coordination store. The connection itself is lazy (go-redis
// dials on first use); callers should follow with Healthy to fail fast.
func New(opts Options) (*Client, error) {
	parsed, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("store: parse url: %w", err)
	}
	return &Client{rdb: redis.NewClient(parsed)}, nil
}

// Healthy pings the store.
func (c *Client) Healthy(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireLease attempts SET key "locked" PX ttl NX, returning true iff this
// call won the lease.
func (c *Client) AcquireLease(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, key, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("store: acquire lease %s: %w", key, err)
	}
	return ok, nil
}

// ReleaseLease deletes a lease key early, before its TTL expires.
func (c *Client) ReleaseLease(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("store: release lease %s: %w", key, err)
	}
	return nil
}

// Time returns the store's monotonic clock, used by the scheduler as the
// authoritative source of the world timestamp.
func (c *Client) Time(ctx context.Context) (time.Time, error) {
	t, err := c.rdb.Time(ctx).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("store: TIME: %w", err)
	}
	return t, nil
}

// Incr increments and returns a numeric key.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	v, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("store: INCR %s: %w", key, err)
	}
	return v, nil
}

// Set writes a plain string value, used for world_timestamp.
func (c *Client) Set(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("store: SET %s: %w", key, err)
	}
	return nil
}

// Get reads a plain string value. Returns ok=false if the key is absent.
func (c *Client) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	value, err = c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: GET %s: %w", key, err)
	}
	return value, true, nil
}

// HGetAll reads an entire hash.
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	v, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("store: HGETALL %s: %w", key, err)
	}
	return v, nil
}

// HKeys returns every field name in a hash.
func (c *Client) HKeys(ctx context.Context, key string) ([]string, error) {
	v, err := c.rdb.HKeys(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("store: HKEYS %s: %w", key, err)
	}
	return v, nil
}

// HLen returns a hash's field count.
func (c *Client) HLen(ctx context.Context, key string) (int64, error) {
	v, err := c.rdb.HLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("store: HLEN %s: %w", key, err)
	}
	return v, nil
}

// HSet writes one field of a hash.
func (c *Client) HSet(ctx context.Context, key, field, value string) error {
	if err := c.rdb.HSet(ctx, key, field, value).Err(); err != nil {
		return fmt.Errorf("store: HSET %s: %w", key, err)
	}
	return nil
}

// HMSet writes multiple fields of a hash in one round trip.
func (c *Client) HMSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	if err := c.rdb.HSet(ctx, key, values).Err(); err != nil {
		return fmt.Errorf("store: HSET(multi) %s: %w", key, err)
	}
	return nil
}

// HMGet reads multiple fields of a hash in one round trip.
func (c *Client) HMGet(ctx context.Context, key string, fields ...string) ([]interface{}, error) {
	v, err := c.rdb.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("store: HMGET %s: %w", key, err)
	}
	return v, nil
}

// HDel removes fields from a hash.
func (c *Client) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := c.rdb.HDel(ctx, key, fields...).Err(); err != nil {
		return fmt.Errorf("store: HDEL %s: %w", key, err)
	}
	return nil
}

// SAdd adds members to a set.
func (c *Client) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := c.rdb.SAdd(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("store: SADD %s: %w", key, err)
	}
	return nil
}

// SRem removes a member from a set.
func (c *Client) SRem(ctx context.Context, key, member string) error {
	if err := c.rdb.SRem(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("store: SREM %s: %w", key, err)
	}
	return nil
}

// SRandMemberN returns up to count random members of a set without removing
// them.
func (c *Client) SRandMemberN(ctx context.Context, key string, count int64) ([]string, error) {
	v, err := c.rdb.SRandMemberN(ctx, key, count).Result()
	if err != nil {
		return nil, fmt.Errorf("store: SRANDMEMBER %s: %w", key, err)
	}
	return v, nil
}

// Publish publishes message on channel.
func (c *Client) Publish(ctx context.Context, channel, message string) error {
	if err := c.rdb.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("store: PUBLISH %s: %w", channel, err)
	}
	return nil
}

// Subscribe subscribes to one or more channels. Callers must Close the
// returned PubSub.
func (c *Client) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return c.rdb.Subscribe(ctx, channels...)
}

// Pipeline returns a fresh pipeliner for issuing several commands in one
// round trip.
func (c *Client) Pipeline() Pipeliner {
	return c.rdb.Pipeline()
}
