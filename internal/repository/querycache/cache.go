// Package querycache caches the ranked-id order per normalized query in
// Redis. The cache is optional: search works identically without it, and
// a cached order going stale is bounded by the TTL — the same staleness
// trade-off already accepted for the model artifact itself.
package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// Cache stores ranked id lists keyed by query.
type Cache struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

// Config holds connection parameters for the cache.
type Config struct {
	Addrs    []string
	Password string
	Prefix   string
	TTL      time.Duration
}

// New connects to Redis and returns a Cache.
func New(cfg Config) (*Cache, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}
	return &Cache{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}, nil
}

// Get returns the cached ranked ids for query, or ok=false on miss.
// Decode failures count as misses; the entry will be overwritten.
func (c *Cache) Get(ctx context.Context, query string) ([]int64, bool) {
	cmd := c.client.B().Get().Key(c.key(query)).Build()
	data, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		return nil, false
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

// Set stores the ranked ids for query with the configured TTL.
func (c *Cache) Set(ctx context.Context, query string, ids []int64) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal ids: %w", err)
	}
	cmd := c.client.B().Set().Key(c.key(query)).Value(string(data)).Ex(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (c *Cache) Close() {
	c.client.Close()
}

func (c *Cache) key(query string) string {
	return c.prefix + "search:" + query
}
