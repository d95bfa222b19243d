package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	urls map[string]string
}

func (r *stubResolver) ResolveImage(_ context.Context, ref string) (string, error) {
	if u, ok := r.urls[ref]; ok {
		return u, nil
	}
	return "", errors.New("object not found")
}

func TestStorefrontService_CategoryPage(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves images and clears failures", func(t *testing.T) {
		ok := "products/ok.jpg"
		missing := "products/missing.jpg"
		p1 := newTestProduct("Bowl", catalog.StockStatusAvailable)
		p1.ImageURL = &ok
		p2 := newTestProduct("Platter", catalog.StockStatusSold)
		p2.ImageURL = &missing
		p3 := newTestProduct("Spoon", catalog.StockStatusReserved)

		repo := new(MockProductReader)
		repo.On("FindByCategory", ctx, catalog.CategoryKitchenware).Return([]catalog.Product{p1, p2, p3}, nil)

		resolver := &stubResolver{urls: map[string]string{ok: "https://signed.example.com/ok.jpg"}}
		svc := NewStorefrontService(NewFetcher(repo, nil), resolver, nil)

		page := svc.CategoryPage(ctx, catalog.CategoryKitchenware)

		assert.Equal(t, "Kitchenware", page.Category.Label)
		require.Len(t, page.Cards, 3)
		assert.Equal(t, "https://signed.example.com/ok.jpg", page.Cards[0].ImageURL)
		assert.Equal(t, PlaceholderInitials, page.Cards[1].Placeholder)
		assert.Equal(t, PlaceholderInitials, page.Cards[2].Placeholder)
		assert.False(t, page.IsEmpty())
		assert.Nil(t, page.Notification)
	})

	t.Run("empty state", func(t *testing.T) {
		repo := new(MockProductReader)
		repo.On("FindByCategory", ctx, catalog.CategoryFinishingProducts).Return([]catalog.Product{}, nil)

		page := NewStorefrontService(NewFetcher(repo, nil), nil, nil).CategoryPage(ctx, catalog.CategoryFinishingProducts)

		assert.True(t, page.IsEmpty())
		assert.Equal(t, "No finishing products available", page.EmptyTitle())
	})

	t.Run("failure carries notification", func(t *testing.T) {
		repo := new(MockProductReader)
		repo.On("FindByCategory", ctx, catalog.CategoryOneOffArt).Return(nil, errors.New("boom"))

		page := NewStorefrontService(NewFetcher(repo, nil), nil, nil).CategoryPage(ctx, catalog.CategoryOneOffArt)

		assert.True(t, page.IsEmpty())
		require.NotNil(t, page.Notification)
		assert.Equal(t, "Failed to fetch one-off art", page.Notification.Description)
	})
}
