package catalog

import (
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// PlaceholderInitials is shown in the image slot of products without an image
const PlaceholderInitials = "JM"

// CurrencySymbol prefixes every rendered price
const CurrencySymbol = "£"

// Badge classes per stock status
const (
	BadgeGreen  = "bg-green-600 text-white"
	BadgeRed    = "bg-red-600 text-white"
	BadgeYellow = "bg-yellow-600 text-white"
	BadgeGray   = "bg-gray-600 text-white"
)

// ActionKind identifies a card button
type ActionKind string

const (
	ActionView      ActionKind = "view"
	ActionAddToCart ActionKind = "add-to-cart"
)

// Action is a button on a product card
type Action struct {
	Kind      ActionKind `json:"kind"`
	Label     string     `json:"label"`
	ProductID string     `json:"product_id"`
}

// Card is the view model of one product card
type Card struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	StockStatus string   `json:"stock_status"`
	StockLabel  string   `json:"stock_label"`
	BadgeClass  string   `json:"badge_class"`
	Actions     []Action `json:"actions"`
}

// HasImage reports whether the card shows an image instead of the placeholder
func (c Card) HasImage() bool {
	return c.ImageURL != ""
}

// HasPrice reports whether a price is shown
func (c Card) HasPrice() bool {
	return c.Price != ""
}

// BadgeClass returns the badge classes for a stock status. Unknown statuses are gray.
func BadgeClass(status catalog.StockStatus) string {
	switch status {
	case catalog.StockStatusAvailable:
		return BadgeGreen
	case catalog.StockStatusSold:
		return BadgeRed
	case catalog.StockStatusReserved:
		return BadgeYellow
	default:
		return BadgeGray
	}
}

// StockLabel returns the display label for a stock status.
// Unknown statuses are shown as the raw value.
func StockLabel(status catalog.StockStatus) string {
	switch status {
	case catalog.StockStatusAvailable:
		return "In Stock"
	case catalog.StockStatusSold:
		return "Sold"
	case catalog.StockStatusReserved:
		return "Reserved"
	default:
		return string(status)
	}
}

// FormatPrice renders a price with the currency symbol and no rounding.
// An absent price renders as the empty string.
func FormatPrice(price *decimal.Decimal) string {
	if price == nil {
		return ""
	}
	return CurrencySymbol + price.String()
}

// RenderCard maps a product to its card. It never fails.
func RenderCard(p catalog.Product) Card {
	id := p.ID.String()
	card := Card{
		ID:          id,
		Title:       p.Title,
		Description: p.DescriptionText(),
		StockStatus: p.StockStatus.String(),
		StockLabel:  StockLabel(p.StockStatus),
		BadgeClass:  BadgeClass(p.StockStatus),
		Actions: []Action{
			{Kind: ActionView, Label: "View", ProductID: id},
			{Kind: ActionAddToCart, Label: "Add to Cart", ProductID: id},
		},
	}
	card.Price = FormatPrice(p.Price)
	if p.HasImage() {
		card.ImageURL = p.ImageRef()
	} else {
		card.Placeholder = PlaceholderInitials
	}
	return card
}

// RenderCards maps products to cards, keeping their order
func RenderCards(products []catalog.Product) []Card {
	cards := make([]Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, RenderCard(p))
	}
	return cards
}
