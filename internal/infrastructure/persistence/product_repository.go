package persistence

import (
	"context"
	"fmt"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductReader using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByCategory returns every product in category, newest first
func (r *GormProductRepository) FindByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	products := make([]catalog.Product, 0)
	if err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("find products by category %q: %w", category, err)
	}
	return products, nil
}

var _ catalog.ProductReader = (*GormProductRepository)(nil)
