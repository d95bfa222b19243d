package catalog

import "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"

// Notification variants
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notification is a transient message shown to the visitor (a toast)
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// Listing is the local state of a category listing
type Listing struct {
	Loading  bool
	Products []catalog.Product
}

// ListingFunc receives listing state changes
type ListingFunc func(Listing)

// fetchFailed builds the toast raised when a category cannot be loaded
func fetchFailed(category catalog.Category) *Notification {
	return &Notification{
		Title:       "Error",
		Description: "Failed to fetch " + category.LowerLabel(),
		Variant:     VariantDestructive,
	}
}
