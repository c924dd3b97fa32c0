package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

// Remote is the shared L2 layer, implemented by *redis.Client.
type Remote interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Cache is a two-layer cache: L1 in-process (ristretto), L2 in Redis.
// Values are stored as JSON so both layers hold the same representation.
type Cache struct {
	l1           *ristretto.Cache
	l2           Remote
	singleflight singleflight.Group
	ttl          time.Duration

	l1Hits   atomic.Uint64
	l1Misses atomic.Uint64
	l2Hits   atomic.Uint64
	l2Misses atomic.Uint64
}

type Config struct {
	L1MaxCost     int64         // Max cost in bytes for L1 cache (default: 10MB)
	L1NumCounters int64         // Number of keys to track frequency (default: 100k)
	DefaultTTL    time.Duration // Default TTL for cache entries
}

// New creates a cache. remote may be nil, leaving only the L1 layer.
func New(remote Remote, cfg Config) (*Cache, error) {
	if cfg.L1MaxCost == 0 {
		cfg.L1MaxCost = 10 << 20
	}
	if cfg.L1NumCounters == 0 {
		cfg.L1NumCounters = 100000
	}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}

	l1, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.L1NumCounters,
		MaxCost:     cfg.L1MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create L1 cache: %w", err)
	}

	return &Cache{
		l1:  l1,
		l2:  remote,
		ttl: cfg.DefaultTTL,
	}, nil
}

// Fetch decodes the cached value for key into dst, calling load on a full
// miss. Concurrent misses for the same key share one load.
func (c *Cache) Fetch(ctx context.Context, key string, dst any, load func(ctx context.Context) (any, error)) error {
	if raw, found := c.l1.Get(key); found {
		c.l1Hits.Add(1)
		return json.Unmarshal(raw.([]byte), dst)
	}
	c.l1Misses.Add(1)

	if c.l2 != nil {
		if val, err := c.l2.Get(ctx, key); err == nil && val != "" {
			c.l2Hits.Add(1)
			raw := []byte(val)
			c.l1.SetWithTTL(key, raw, int64(len(raw)), c.ttl)
			return json.Unmarshal(raw, dst)
		}
		c.l2Misses.Add(1)
	}

	v, err, _ := c.singleflight.Do(key, func() (interface{}, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, raw)
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dst)
}

// Set stores value in both layers.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store(ctx, key, raw)
	return nil
}

func (c *Cache) store(ctx context.Context, key string, raw []byte) {
	c.l1.SetWithTTL(key, raw, int64(len(raw)), c.ttl)
	if c.l2 != nil {
		// L2 is best-effort; the next miss reloads from the source
		_ = c.l2.Set(ctx, key, raw, c.ttl)
	}
}

// Delete removes a key from all cache layers
func (c *Cache) Delete(ctx context.Context, key string) {
	c.l1.Del(key)
	if c.l2 != nil {
		_ = c.l2.Del(ctx, key)
	}
}

// Metrics holds cache performance data
type Metrics struct {
	L1Hits    uint64
	L1Misses  uint64
	L1HitRate float64
	L2Hits    uint64
	L2Misses  uint64
	L2HitRate float64
}

func (c *Cache) GetMetrics() Metrics {
	m := Metrics{
		L1Hits:   c.l1Hits.Load(),
		L1Misses: c.l1Misses.Load(),
		L2Hits:   c.l2Hits.Load(),
		L2Misses: c.l2Misses.Load(),
	}
	if total := m.L1Hits + m.L1Misses; total > 0 {
		m.L1HitRate = float64(m.L1Hits) / float64(total)
	}
	if total := m.L2Hits + m.L2Misses; total > 0 {
		m.L2HitRate = float64(m.L2Hits) / float64(total)
	}
	return m
}

// Close gracefully shuts down the cache
func (c *Cache) Close() {
	c.l1.Close()
}
