package catalog

import "context"

// ProductReader provides read access to the product table
type ProductReader interface {
	// FindByCategory returns the products with an exact category match,
	// newest first. An unknown category yields an empty slice.
	FindByCategory(ctx context.Context, category string) ([]Product, error)
}
