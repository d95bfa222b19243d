package cache

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryProductCache holds category listings in process memory.
// It is the first tier in front of Redis.
type InMemoryProductCache struct {
	entries sync.Map // map[string]*cacheEntry
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// cacheEntry wraps a cached listing with its expiration time
type cacheEntry struct {
	products  []catalog.Product
	expiresAt time.Time
}

// InMemoryProductCacheOption configures an InMemoryProductCache
type InMemoryProductCacheOption func(*InMemoryProductCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryProductCacheOption {
	return func(c *InMemoryProductCache) {
		c.logger = logger
	}
}

// NewInMemoryProductCache creates a cache whose entries live for ttl and
// starts its cleanup goroutine. Call Stop to release it.
func NewInMemoryProductCache(ttl time.Duration, opts ...InMemoryProductCacheOption) *InMemoryProductCache {
	c := &InMemoryProductCache{
		ttl:    ttl,
		logger: zap.NewNop(),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()
	return c
}

// Get returns a copy of the cached listing of category
func (c *InMemoryProductCache) Get(_ context.Context, category string) ([]catalog.Product, bool) {
	if value, ok := c.entries.Load(category); ok {
		entry := value.(*cacheEntry)
		if c.now().Before(entry.expiresAt) {
			atomic.AddInt64(&c.hits, 1)
			return slices.Clone(entry.products), true
		}
		c.entries.Delete(category)
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Set stores the listing of category. Empty listings are cached too.
func (c *InMemoryProductCache) Set(_ context.Context, category string, products []catalog.Product) {
	if products == nil {
		products = []catalog.Product{}
	}
	c.entries.Store(category, &cacheEntry{
		products:  slices.Clone(products),
		expiresAt: c.now().Add(c.ttl),
	})
}

// Delete drops the listings of the given categories
func (c *InMemoryProductCache) Delete(_ context.Context, categories ...string) {
	for _, category := range categories {
		c.entries.Delete(category)
	}
}

// InvalidateAll drops every listing
func (c *InMemoryProductCache) InvalidateAll(_ context.Context) {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (c *InMemoryProductCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

// Stats returns the hit and miss counters
func (c *InMemoryProductCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

func (c *InMemoryProductCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *InMemoryProductCache) removeExpired() {
	now := c.now()
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if !now.Before(value.(*cacheEntry).expiresAt) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Removed expired catalog listings", zap.Int("count", removed))
	}
}
