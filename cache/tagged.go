// Package cache provides a tag-invalidated read-through cache on Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// TaggedCache stores JSON values with no TTL, grouped under named tags.
// Invalidating a tag deletes every key written under it; the next read
// recomputes. Values are always computed fully before being published, so a
// concurrent reader either sees the previous value or the complete new one,
// never a partial result. Redundant recomputation under a read race is
// accepted.
type TaggedCache struct {
	rc     *redis.Client
	prefix string
}

// New creates a tagged cache. The prefix namespaces all keys and tag sets so
// several deployments can share one Redis.
func New(rc *redis.Client, prefix string) *TaggedCache {
	return &TaggedCache{rc: rc, prefix: prefix}
}

func (c *TaggedCache) key(k string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, k)
}

func (c *TaggedCache) tagKey(tag string) string {
	return fmt.Sprintf("%s:tag:%s", c.prefix, tag)
}

// Get unmarshals the cached value into out; the bool reports a hit.
func (c *TaggedCache) Get(ctx context.Context, key string, out any) (bool, error) {
	bs, err := c.rc.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(bs, out); err != nil {
		// Treat a corrupt entry as a miss; the caller recomputes and
		// overwrites it.
		return false, nil
	}
	return true, nil
}

// Set publishes a fully-computed value under the key and registers the key
// with every given tag. No TTL: entries live until a tag invalidation.
func (c *TaggedCache) Set(ctx context.Context, key string, value any, tags ...string) error {
	bs, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value for %s: %w", key, err)
	}

	pipe := c.rc.TxPipeline()
	pipe.Set(ctx, c.key(key), bs, 0)
	for _, tag := range tags {
		pipe.SAdd(ctx, c.tagKey(tag), c.key(key))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// InvalidateTag deletes every key registered under the tag, plus the tag set
// itself. Missing tags are a no-op.
func (c *TaggedCache) InvalidateTag(ctx context.Context, tag string) error {
	members, err := c.rc.SMembers(ctx, c.tagKey(tag)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read tag set %s: %w", tag, err)
	}

	keys := append(members, c.tagKey(tag))
	if err := c.rc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tag %s: %w", tag, err)
	}
	return nil
}
