package router

import (
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the storefront endpoints wired by Mount
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Checkout *handler.CheckoutHandler
	Session  *handler.SessionHandler
	Events   *handler.SessionEventsHandler
	System   *handler.SystemHandler
	Pages    *handler.PageHandler
	// CheckoutGuard runs before the checkout handler, typically a rate limit
	CheckoutGuard []gin.HandlerFunc
}

// pageRoutes adapts PageHandler to RouteRegistrar
type pageRoutes struct {
	pages *handler.PageHandler
}

func (p pageRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	p.pages.RegisterPages(rg)
}

// Mount registers every storefront route on engine:
//
//	GET  /, /one-off-art, /kitchenware, /finishing-products
//	GET  /health
//	ANY  /api/create-payment-intent
//	GET  /api/stripe/config
//	GET  /api/v1/catalog/products
//	GET  /api/v1/session, POST /api/v1/session, POST /api/v1/session/sign-out
//	GET  /api/v1/session/events
//	GET  /api/v1/system/info
func Mount(engine *gin.Engine, h Handlers) *Router {
	r := NewRouter(engine)

	if h.Pages != nil {
		r.RegisterRoot(pageRoutes{pages: h.Pages})
	}
	if h.System != nil {
		r.RegisterRoot(NewDomainGroup("health", "").GET("/health", h.System.Health))
		r.Register(NewDomainGroup("system", "/system").GET("/info", h.System.GetSystemInfo))
	}
	if h.Checkout != nil {
		checkout := append(append([]gin.HandlerFunc{}, h.CheckoutGuard...), h.Checkout.CreatePaymentIntent)
		r.RegisterRoot(NewDomainGroup("checkout", "/api").
			Any("/create-payment-intent", checkout...).
			GET("/stripe/config", h.Checkout.StripeConfig))
	}
	if h.Catalog != nil {
		r.Register(NewDomainGroup("catalog", "/catalog").GET("/products", h.Catalog.ListProducts))
	}
	if h.Session != nil {
		sessions := NewDomainGroup("session", "/session").
			GET("", h.Session.Current).
			POST("", h.Session.SignIn).
			POST("/sign-out", h.Session.SignOut)
		if h.Events != nil {
			sessions.GET("/events", h.Events.Stream)
		}
		r.Register(sessions)
	}

	r.Setup()
	return r
}
