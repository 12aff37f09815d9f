// Package cache holds the process-wide TTL cache that fronts slow network
// collaborators. Entries are fresh for TTL; after that a refresh is
// attempted and, when it fails, the last good value is served for up to
// StaleWindow.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viccon/sturdyc"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

// Cache results reported to metrics.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultStale = "stale"
	ResultError = "error"
)

var ErrInvalidConfig = errors.New("cache: invalid config")

// Config sizes a StaleCache.
type Config struct {
	Name               string
	TTL                time.Duration
	// StaleWindow is how long past TTL a value may still be served when
	// its refresh fails. Zero means indefinitely.
	StaleWindow        time.Duration
	Capacity           int
	Shards             int
	EvictionPercentage int
}

// DefaultConfig returns a five minute TTL with a day of stale fallback.
func DefaultConfig() Config {
	return Config{
		Name:               "default",
		TTL:                5 * time.Minute,
		StaleWindow:        24 * time.Hour,
		Capacity:           1024,
		Shards:             8,
		EvictionPercentage: 10,
	}
}

func (c Config) Validate() error {
	switch {
	case c.TTL <= 0:
		return fmt.Errorf("%w: ttl must be positive", ErrInvalidConfig)
	case c.StaleWindow < 0:
		return fmt.Errorf("%w: stale window must not be negative", ErrInvalidConfig)
	case c.Shards <= 0 || c.Capacity < c.Shards:
		return fmt.Errorf("%w: capacity %d must cover %d shards", ErrInvalidConfig, c.Capacity, c.Shards)
	case c.EvictionPercentage <= 0 || c.EvictionPercentage > 100:
		return fmt.Errorf("%w: eviction percentage must be within 1..100", ErrInvalidConfig)
	}
	return nil
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// StaleCache implements interfaces.Cache. The fresh tier is a sharded
// sturdyc client; the last good value of every key is kept beside it so an
// expired entry can still be served when its refresh fails. Concurrent
// refreshes of one key share a single fetch.
type StaleCache[V any] struct {
	cfg     Config
	fresh   *sturdyc.Client[V]
	group   singleflight.Group
	clock   func() time.Time
	logger  interfaces.Logger
	metrics interfaces.PipelineMetrics

	mu   sync.RWMutex
	last map[string]entry[V]

	hits, misses, staleServed atomic.Int64
}

var _ interfaces.Cache[string] = (*StaleCache[string])(nil)

// Option configures a StaleCache.
type Option func(*options)

type options struct {
	clock   func() time.Time
	logger  interfaces.Logger
	metrics interfaces.PipelineMetrics
}

func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(metrics interfaces.PipelineMetrics) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// New builds a cache from cfg.
func New[V any](cfg Config, opts ...Option) (*StaleCache[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{clock: time.Now, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(&o)
	}
	return &StaleCache[V]{
		cfg:     cfg,
		fresh:   sturdyc.New[V](cfg.Capacity, cfg.Shards, cfg.TTL, cfg.EvictionPercentage),
		clock:   o.clock,
		logger:  o.logger,
		metrics: o.metrics,
		last:    make(map[string]entry[V]),
	}, nil
}

// Get returns the entry for key. An entry past its TTL but inside the stale
// window comes back with fresh=false.
func (c *StaleCache[V]) Get(key string) (V, bool, bool) {
	c.mu.RLock()
	e, ok := c.last[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false, false
	}
	age := c.clock().Sub(e.storedAt)
	if age < c.cfg.TTL {
		if v, inTier := c.fresh.Get(key); inTier {
			return v, true, true
		}
	}
	if c.withinStaleWindow(age) {
		return e.value, false, true
	}
	return zero, false, false
}

// Set stores value as the fresh and last good value of key.
func (c *StaleCache[V]) Set(key string, value V) {
	c.fresh.Set(key, value)
	c.mu.Lock()
	c.last[key] = entry[V]{value: value, storedAt: c.clock()}
	c.evictOldest()
	c.mu.Unlock()
}

func (c *StaleCache[V]) Delete(key string) {
	c.fresh.Delete(key)
	c.mu.Lock()
	delete(c.last, key)
	c.mu.Unlock()
}

// GetOrFetch implements interfaces.Cache.
func (c *StaleCache[V]) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	if v, fresh, ok := c.Get(key); ok && fresh {
		c.hits.Add(1)
		c.observe(ResultHit)
		return v, nil
	}
	c.misses.Add(1)

	result, err, _ := c.group.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err == nil {
		c.observe(ResultMiss)
		v, _ := result.(V)
		return v, nil
	}

	if v, _, ok := c.Get(key); ok {
		c.staleServed.Add(1)
		c.observe(ResultStale)
		c.logger.WithContext(ctx).Warn("cache.stale.served", "cache", c.cfg.Name, "key", key, "error", err)
		return v, nil
	}
	c.observe(ResultError)
	var zero V
	return zero, err
}

// Stats reports counters and the number of remembered keys.
func (c *StaleCache[V]) Stats() interfaces.CacheStats {
	c.mu.RLock()
	size := len(c.last)
	c.mu.RUnlock()
	return interfaces.CacheStats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		StaleServed: c.staleServed.Load(),
		Size:        size,
		TTL:         c.cfg.TTL,
	}
}

func (c *StaleCache[V]) withinStaleWindow(age time.Duration) bool {
	return c.cfg.StaleWindow == 0 || age < c.cfg.TTL+c.cfg.StaleWindow
}

// evictOldest keeps the stale tier within Capacity. Callers hold mu.
func (c *StaleCache[V]) evictOldest() {
	for len(c.last) > c.cfg.Capacity {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.last {
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey, oldest = k, e.storedAt
			}
		}
		delete(c.last, oldestKey)
		c.fresh.Delete(oldestKey)
	}
}

func (c *StaleCache[V]) observe(result string) {
	if c.metrics != nil {
		c.metrics.IncrementCacheResult(c.cfg.Name, result)
	}
}
