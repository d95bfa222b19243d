package cache

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultLoadTimeout = 10 * time.Second

// CachedProductReader is a read-through catalog.ProductReader.
// L1: in-memory, local to the instance
// L2: Redis, shared across instances (optional)
// Concurrent misses for one category share a single repository read.
type CachedProductReader struct {
	next        catalog.ProductReader
	l1          *InMemoryProductCache
	l2          *RedisProductCache
	logger      *zap.Logger
	group       singleflight.Group
	loadTimeout time.Duration

	l2Hits   int64
	l2Misses int64
	loads    int64
}

// CachedProductReaderOption configures a CachedProductReader
type CachedProductReaderOption func(*CachedProductReader)

// WithRedisTier adds the shared Redis tier
func WithRedisTier(l2 *RedisProductCache) CachedProductReaderOption {
	return func(r *CachedProductReader) {
		r.l2 = l2
	}
}

// WithReaderLogger sets the logger
func WithReaderLogger(logger *zap.Logger) CachedProductReaderOption {
	return func(r *CachedProductReader) {
		r.logger = logger
	}
}

// WithLoadTimeout bounds a shared repository read
func WithLoadTimeout(d time.Duration) CachedProductReaderOption {
	return func(r *CachedProductReader) {
		if d > 0 {
			r.loadTimeout = d
		}
	}
}

// NewCachedProductReader wraps next with the in-memory tier l1
func NewCachedProductReader(next catalog.ProductReader, l1 *InMemoryProductCache, opts ...CachedProductReaderOption) *CachedProductReader {
	r := &CachedProductReader{
		next:        next,
		l1:          l1,
		logger:      zap.NewNop(),
		loadTimeout: defaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByCategory serves the listing from L1, then L2, then the repository.
// Repository errors are never cached. The caller's context bounds only its
// own wait, so one cancelled visitor does not fail the others sharing the read.
func (r *CachedProductReader) FindByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	if products, ok := r.l1.Get(ctx, category); ok {
		return products, nil
	}

	ch := r.group.DoChan(category, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()
		return r.load(loadCtx, category)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]catalog.Product)), nil
	}
}

func (r *CachedProductReader) load(ctx context.Context, category string) ([]catalog.Product, error) {
	if r.l2 != nil {
		products, ok, err := r.l2.Get(ctx, category)
		if err != nil {
			r.logger.Warn("L2 catalog cache error", zap.String("category", category), zap.Error(err))
		}
		if ok {
			atomic.AddInt64(&r.l2Hits, 1)
			r.l1.Set(ctx, category, products)
			return products, nil
		}
		atomic.AddInt64(&r.l2Misses, 1)
	}

	atomic.AddInt64(&r.loads, 1)
	products, err := r.next.FindByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	r.l1.Set(ctx, category, products)
	if r.l2 != nil {
		if err := r.l2.Set(ctx, category, products); err != nil {
			r.logger.Warn("Failed to populate L2 catalog cache", zap.String("category", category), zap.Error(err))
		}
	}
	return products, nil
}

// Invalidate drops the listings of the given categories from both tiers
func (r *CachedProductReader) Invalidate(ctx context.Context, categories ...string) error {
	r.l1.Delete(ctx, categories...)
	if r.l2 != nil {
		return r.l2.Delete(ctx, categories...)
	}
	return nil
}

// ReaderStats summarises cache effectiveness
type ReaderStats struct {
	L1Hits   int64
	L1Misses int64
	L2Hits   int64
	L2Misses int64
	Loads    int64
}

// Stats returns the counters of both tiers and the repository reads
func (r *CachedProductReader) Stats() ReaderStats {
	l1Hits, l1Misses := r.l1.Stats()
	return ReaderStats{
		L1Hits:   l1Hits,
		L1Misses: l1Misses,
		L2Hits:   atomic.LoadInt64(&r.l2Hits),
		L2Misses: atomic.LoadInt64(&r.l2Misses),
		Loads:    atomic.LoadInt64(&r.loads),
	}
}
