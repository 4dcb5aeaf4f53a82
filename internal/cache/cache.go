package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReviewsKey holds the newest-first review listing.
const ReviewsKey = "reviews:all"

// ProfileKey returns the key for a user's profile view.
func ProfileKey(id uuid.UUID) string {
	return "user:" + id.String()
}

// Client wraps redis.Client but fails safe: a broken or missing redis behaves
// like an always-empty cache and never fails the caller.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

// NewWithClient wraps an existing redis client.
func NewWithClient(rc *redis.Client) *Client {
	return &Client{client: rc}
}

// Ping reports whether redis is reachable. Callers use it for health output only.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and connectivity errors both read as a miss
		return nil
	}
	return res
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes keys, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	_ = c.client.Del(ctx, keys...).Err()
}

// GetJSON decodes a cached value into dst. It reports false on a miss or an
// undecodable entry.
func (c *Client) GetJSON(ctx context.Context, key string, dst any) bool {
	data := c.Get(ctx, key)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON encodes v and stores it with TTL. Encoding failures are dropped.
func (c *Client) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, payload, ttl)
}

func generationKey(key string) string {
	return key + ":gen"
}

// Generation returns key's invalidation counter. ok is false when redis is
// unavailable, in which case callers should not fill the cache.
func (c *Client) Generation(ctx context.Context, key string) (gen int64, ok bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	gen, err := c.client.Get(ctx, generationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		return 0, false
	}
	return gen, true
}

// Invalidate bumps key's generation and deletes key in one transaction, so
// fills that read the store before this call can no longer land.
func (c *Client) Invalidate(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	_, _ = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(key))
		pipe.Del(ctx, key)
		return nil
	})
}

var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if (cur or '0') ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// SetJSONIfGeneration stores v only while key's generation still equals gen.
// It reports whether the value was written.
func (c *Client) SetJSONIfGeneration(ctx context.Context, key string, gen int64, v any, ttl time.Duration) bool {
	if c == nil || c.client == nil {
		return false
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return false
	}
	n, err := setIfGeneration.Run(ctx, c.client,
		[]string{key, generationKey(key)},
		strconv.FormatInt(gen, 10), payload, ttl.Milliseconds(),
	).Int()
	return err == nil && n == 1
}
