package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhishekneerr/apexrank/internal/domain/model"
	"github.com/abhishekneerr/apexrank/pkg/metrics"
)

// entry is a single cached lap in the eviction list. A nil lap records a
// negative result, so repeated ErrNoData selections stay cheap.
type entry struct {
	key  string
	lap  *model.Lap
	next *entry
}

// cachingProvider wraps a Provider with a bounded in-memory cache keyed by
// (year, event, session, driver). Eviction drops the most recently added
// entry first; the hot early entries of a batch stay resident.
type cachingProvider struct {
	mu      sync.RWMutex
	inner   Provider
	seen    map[string]*entry
	head    *entry
	maxSize int
}

// CacheOption configures the cache decorator.
type CacheOption func(*cachingProvider)

// WithCacheSize bounds the number of cached laps. Zero or negative means
// unbounded.
func WithCacheSize(n int) CacheOption {
	return func(c *cachingProvider) {
		c.maxSize = n
	}
}

// NewCachingProvider wraps inner with a bounded lap cache.
func NewCachingProvider(inner Provider, opts ...CacheOption) Provider {
	c := &cachingProvider{
		inner:   inner,
		seen:    make(map[string]*entry),
		maxSize: 512,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(year int, event, session, driverCode string) string {
	return fmt.Sprintf("%d/%s/%s/%s", year, event, session, driverCode)
}

func (c *cachingProvider) Lap(ctx context.Context, year int, event, session, driverCode string) (*model.Lap, error) {
	key := cacheKey(year, event, session, driverCode)

	c.mu.RLock()
	e, ok := c.seen[key]
	c.mu.RUnlock()
	if ok {
		metrics.RecordCacheHit()
		if e.lap == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoData, key)
		}
		return e.lap, nil
	}
	metrics.RecordCacheMiss()

	lap, err := c.inner.Lap(ctx, year, event, session, driverCode)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			c.store(key, nil)
		}
		return nil, err
	}
	c.store(key, lap)
	return lap, nil
}

func (c *cachingProvider) store(key string, lap *model.Lap) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.seen[key]; exists {
		return
	}
	if c.maxSize > 0 && len(c.seen) >= c.maxSize {
		c.evict()
	}
	e := &entry{key: key, lap: lap, next: c.head}
	c.head = e
	c.seen[key] = e
}

// evict removes the newest entry. Must be called with c.mu held.
func (c *cachingProvider) evict() {
	if c.head == nil {
		return
	}
	dropped := c.head
	c.head = dropped.next
	delete(c.seen, dropped.key)
}
