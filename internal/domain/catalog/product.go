package catalog

import (
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockStatus represents the availability of a product.
// Values outside the known set are kept as-is and rendered literally.
type StockStatus string

const (
	StockStatusAvailable StockStatus = "available"
	StockStatusSold      StockStatus = "sold"
	StockStatusReserved  StockStatus = "reserved"
)

// IsKnown reports whether the status is one of the enumerated values
func (s StockStatus) IsKnown() bool {
	switch s {
	case StockStatusAvailable, StockStatusSold, StockStatusReserved:
		return true
	default:
		return false
	}
}

// String returns the raw status value
func (s StockStatus) String() string {
	return string(s)
}

// Product is a single piece listed in the shop.
// Products are created and edited out-of-band, the storefront only reads them.
type Product struct {
	shared.BaseEntity
	Title       string           `gorm:"type:text;not null"`
	Description *string          `gorm:"type:text"`
	Price       *decimal.Decimal `gorm:"type:numeric"`
	Category    string           `gorm:"type:text;not null;index:idx_products_category_created_at,priority:1"`
	StockStatus StockStatus      `gorm:"type:text;not null;default:'available'"`
	ImageURL    *string          `gorm:"column:image_url;type:text"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// HasDescription returns true if the product carries a non-empty description
func (p *Product) HasDescription() bool {
	return p.Description != nil && *p.Description != ""
}

// HasPrice returns true if the product has a price set
func (p *Product) HasPrice() bool {
	return p.Price != nil
}

// HasImage returns true if the product has an image reference
func (p *Product) HasImage() bool {
	return p.ImageURL != nil && *p.ImageURL != ""
}

// ImageRef returns the image reference or an empty string
func (p *Product) ImageRef() string {
	if p.ImageURL == nil {
		return ""
	}
	return *p.ImageURL
}

// DescriptionText returns the description or an empty string
func (p *Product) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}
