package handler

import (
	"context"

	appcatalog "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/catalog"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/dto"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CategoryPages renders the cards of one category
type CategoryPages interface {
	CategoryPage(ctx context.Context, slug string) appcatalog.CategoryPage
}

// CatalogHandler serves the product cards as JSON
type CatalogHandler struct {
	BaseHandler
	pages CategoryPages
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(pages CategoryPages) *CatalogHandler {
	return &CatalogHandler{pages: pages}
}

// ListProducts returns the cards of the requested category.
// A failed fetch still answers 200 with an empty card list and the toast
// in the notification field.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var query dto.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page := h.pages.CategoryPage(c.Request.Context(), query.Category)
	h.Success(c, dto.ToCategoryResponse(page))
}
