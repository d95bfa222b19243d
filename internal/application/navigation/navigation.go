// Package navigation derives the storefront header from the session state.
package navigation

import "strings"

// Item is one entry of the navigation menu
type Item struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// IsAnchor reports whether the item points at an in-page anchor
func (i Item) IsAnchor() bool {
	return strings.HasPrefix(i.Href, "#")
}

// AdminItem is added for signed-in visitors
var AdminItem = Item{Name: "Admin", Href: "/admin"}

// BaseItems returns the navigation shown to every visitor
func BaseItems() []Item {
	return []Item{
		{Name: "Home", Href: "/"},
		{Name: "One-Off Art", Href: "/one-off-art"},
		{Name: "Kitchenware", Href: "/kitchenware"},
		{Name: "Finishing Products", Href: "/finishing-products"},
		{Name: "Contact", Href: "#contact"},
	}
}

// BuildNavItems returns the menu for a visitor. When authenticated, the admin
// item is placed immediately before the last entry. base is never modified.
func BuildNavItems(base []Item, isAuthenticated bool) []Item {
	if !isAuthenticated {
		items := make([]Item, len(base))
		copy(items, base)
		return items
	}

	items := make([]Item, 0, len(base)+1)
	if len(base) == 0 {
		return append(items, AdminItem)
	}
	last := len(base) - 1
	items = append(items, base[:last]...)
	items = append(items, AdminItem)
	items = append(items, base[last])
	return items
}
