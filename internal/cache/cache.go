package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type item[V any] struct {
	val       V
	expiresAt time.Time
}

// Cache is a TTL cache that coalesces concurrent misses of the same key with singleflight
type Cache[V any] struct {
	mu    sync.RWMutex
	items map[string]item[V]
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{items: make(map[string]item[V]), ttl: ttl, now: time.Now}
}

// StoreFunc decides whether a fetched value may be cached
type StoreFunc[V any] func(V) bool

// GetOrFetch returns a cached value while it is fresh, otherwise it runs fetch once for all concurrent callers
// of the key. Values are stored only when fetch succeeds and store, if set, allows it. The second result reports
// a cache hit
func (c *Cache[V]) GetOrFetch(
	ctx context.Context, key string, fetch func(context.Context) (V, error), store StoreFunc[V],
) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}

		if store == nil || store(v) {
			c.Set(key, v)
		}

		return v, nil
	})
	if err != nil {
		var empty V
		return empty, false, err
	}

	return res.(V), false, nil
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || !c.now().Before(it.expiresAt) {
		var empty V
		return empty, false
	}

	return it.val, true
}

func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item[V]{val: v, expiresAt: c.now().Add(c.ttl)}
}

// Purge drops every cached value
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]item[V])
}

// Len returns the number of stored items, fresh or not
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}
