package catalog

import "strings"

// Category describes one storefront section of products
type Category struct {
	Slug        string
	Label       string
	Badge       string
	Description string
}

// Category slugs stored in products.category
const (
	CategoryOneOffArt         = "one-off-art"
	CategoryKitchenware       = "kitchenware"
	CategoryFinishingProducts = "finishing-products"
)

var categories = []Category{
	{
		Slug:        CategoryOneOffArt,
		Label:       "One-Off Art",
		Badge:       "Unique Pieces",
		Description: "Individually turned art pieces, each one made only once.",
	},
	{
		Slug:        CategoryKitchenware,
		Label:       "Kitchenware",
		Badge:       "Everyday Use",
		Description: "Hand-turned bowls, boards and utensils made for the kitchen.",
	},
	{
		Slug:        CategoryFinishingProducts,
		Label:       "Finishing Products",
		Badge:       "Care & Maintenance",
		Description: "Premium finishing products to protect and enhance your wooden pieces.",
	},
}

// Categories returns the storefront categories in display order.
// The returned slice is a copy.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory returns the category for a slug
func LookupCategory(slug string) (Category, bool) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryFor returns the known category for slug, or a category derived
// from the slug itself when it is not one of the storefront sections.
func CategoryFor(slug string) Category {
	if c, ok := LookupCategory(slug); ok {
		return c
	}
	label := strings.ReplaceAll(slug, "-", " ")
	return Category{Slug: slug, Label: label}
}

// LowerLabel returns the label in lower case, used in messages such as
// "Failed to fetch finishing products"
func (c Category) LowerLabel() string {
	return strings.ToLower(c.Label)
}
