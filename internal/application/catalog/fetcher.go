package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"go.uber.org/zap"
)

// FetchRecorder records the outcome of catalog fetches
type FetchRecorder interface {
	RecordCatalogFetch(ctx context.Context, category string, count int, d time.Duration, err error)
}

// FetchResult is the terminal outcome of one fetch
type FetchResult struct {
	Products     []catalog.Product
	Notification *Notification
}

// Fetcher loads products of one category from the product store
type Fetcher struct {
	repo     catalog.ProductReader
	logger   *zap.Logger
	recorder FetchRecorder
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithFetchRecorder attaches a recorder for fetch metrics
func WithFetchRecorder(r FetchRecorder) FetcherOption {
	return func(f *Fetcher) {
		f.recorder = r
	}
}

// NewFetcher creates a new Fetcher
func NewFetcher(repo catalog.ProductReader, logger *zap.Logger, opts ...FetcherOption) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fetcher{
		repo:   repo,
		logger: logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchByCategory loads the products of category, newest first.
//
// onChange is called exactly twice: once with Loading set before the query,
// and once after it with Loading cleared and the resulting list. A failed
// query yields an empty list and a destructive notification. It is never
// retried. A cancelled context also yields an empty list but no notification.
func (f *Fetcher) FetchByCategory(ctx context.Context, category string, onChange ListingFunc) FetchResult {
	if onChange == nil {
		onChange = func(Listing) {}
	}
	onChange(Listing{Loading: true})

	start := time.Now()
	products, err := f.repo.FindByCategory(ctx, category)
	elapsed := time.Since(start)
	if f.recorder != nil {
		f.recorder.RecordCatalogFetch(ctx, category, len(products), elapsed, err)
	}

	if err != nil {
		result := FetchResult{Products: []catalog.Product{}}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			f.logger.Debug("catalog fetch cancelled",
				zap.String("category", category),
				zap.Error(err),
			)
		} else {
			f.logger.Error("Error fetching products",
				zap.String("category", category),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
			result.Notification = fetchFailed(catalog.CategoryFor(category))
		}
		onChange(Listing{Loading: false, Products: result.Products})
		return result
	}

	if products == nil {
		products = []catalog.Product{}
	}
	onChange(Listing{Loading: false, Products: products})
	return FetchResult{Products: products}
}
