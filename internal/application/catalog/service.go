package catalog

import (
	"context"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"go.uber.org/zap"
)

// ImageResolver turns a stored image reference into a URL the browser can load
type ImageResolver interface {
	ResolveImage(ctx context.Context, ref string) (string, error)
}

// CategoryPage is everything a category page renders
type CategoryPage struct {
	Category     catalog.Category
	Cards        []Card
	Notification *Notification
}

// IsEmpty reports whether the page has no products to show
func (p CategoryPage) IsEmpty() bool {
	return len(p.Cards) == 0
}

// EmptyTitle returns the heading of the empty state
func (p CategoryPage) EmptyTitle() string {
	return "No " + p.Category.LowerLabel() + " available"
}

// StorefrontService composes the fetcher, image resolution and card rendering
type StorefrontService struct {
	fetcher *Fetcher
	images  ImageResolver
	logger  *zap.Logger
}

// NewStorefrontService creates a new StorefrontService.
// images may be nil, in which case references are used as stored.
func NewStorefrontService(fetcher *Fetcher, images ImageResolver, logger *zap.Logger) *StorefrontService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorefrontService{
		fetcher: fetcher,
		images:  images,
		logger:  logger,
	}
}

// CategoryPage loads and renders the cards of one category
func (s *StorefrontService) CategoryPage(ctx context.Context, slug string) CategoryPage {
	transitions := 0
	result := s.fetcher.FetchByCategory(ctx, slug, func(l Listing) {
		transitions++
		s.logger.Debug("listing state changed",
			zap.String("category", slug),
			zap.Bool("loading", l.Loading),
			zap.Int("products", len(l.Products)),
			zap.Int("transition", transitions),
		)
	})

	products := s.resolveImages(ctx, result.Products)
	return CategoryPage{
		Category:     catalog.CategoryFor(slug),
		Cards:        RenderCards(products),
		Notification: result.Notification,
	}
}

// resolveImages rewrites image references to loadable URLs.
// A reference that fails to resolve is cleared so the placeholder shows.
func (s *StorefrontService) resolveImages(ctx context.Context, products []catalog.Product) []catalog.Product {
	if s.images == nil {
		return products
	}
	for i := range products {
		if !products[i].HasImage() {
			continue
		}
		ref := products[i].ImageRef()
		url, err := s.images.ResolveImage(ctx, ref)
		if err != nil || url == "" {
			s.logger.Warn("failed to resolve product image",
				zap.String("product_id", products[i].ID.String()),
				zap.String("image_ref", ref),
				zap.Error(err),
			)
			products[i].ImageURL = nil
			continue
		}
		products[i].ImageURL = &url
	}
	return products
}
