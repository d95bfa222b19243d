package dto

import (
	appcatalog "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/catalog"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/navigation"
)

// ProductListQuery is the query of the catalog listing endpoint
type ProductListQuery struct {
	Category string `form:"category" binding:"required,max=64"`
}

// CategoryResponse is one category listing
type CategoryResponse struct {
	Slug         string                   `json:"slug"`
	Label        string                   `json:"label"`
	Badge        string                   `json:"badge,omitempty"`
	Description  string                   `json:"description,omitempty"`
	Cards        []appcatalog.Card        `json:"cards"`
	Notification *appcatalog.Notification `json:"notification,omitempty"`
}

// ToCategoryResponse converts a rendered category page
func ToCategoryResponse(p appcatalog.CategoryPage) CategoryResponse {
	cards := p.Cards
	if cards == nil {
		cards = []appcatalog.Card{}
	}
	return CategoryResponse{
		Slug:         p.Category.Slug,
		Label:        p.Category.Label,
		Badge:        p.Category.Badge,
		Description:  p.Category.Description,
		Cards:        cards,
		Notification: p.Notification,
	}
}

// SignInRequest carries the access token issued by the identity provider
type SignInRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// SessionResponse is the session state as seen by the header
type SessionResponse struct {
	Header navigation.Header `json:"header"`
	UserID string            `json:"user_id,omitempty"`
	Email  string            `json:"email,omitempty"`
}

// CheckoutResponse is the success body of the checkout endpoint
type CheckoutResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// StripeConfigResponse is the browser-side payment configuration
type StripeConfigResponse struct {
	PublishableKey string `json:"publishableKey"`
}
