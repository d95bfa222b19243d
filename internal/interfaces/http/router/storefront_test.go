package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	appcatalog "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/catalog"
	appcheckout "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/checkout"
	appsession "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/session"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/handler"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPages struct{}

func (stubPages) CategoryPage(_ context.Context, slug string) appcatalog.CategoryPage {
	return appcatalog.CategoryPage{Category: catalog.CategoryFor(slug)}
}

type stubIntents struct{}

func (stubIntents) CreateIntent(context.Context, appcheckout.Cart) (string, error) {
	return "secret", nil
}

type stubSessions struct{}

func (stubSessions) SignIn(context.Context, string, string) (session.State, error) {
	return session.Anonymous(), appsession.ErrInvalidToken
}
func (stubSessions) SignOut(context.Context, string, string) {}
func (stubSessions) Refresh(context.Context, string, string) session.State {
	return session.Anonymous()
}

func TestMount(t *testing.T) {
	tmpl, err := handler.Templates()
	require.NoError(t, err)

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)

	guarded := 0
	Mount(engine, Handlers{
		Catalog:  handler.NewCatalogHandler(stubPages{}),
		Checkout: handler.NewCheckoutHandler(stubIntents{}, "pk_test", nil),
		Session:  handler.NewSessionHandler(stubSessions{}, middleware.CookieOptions{}, nil),
		Events:   handler.NewSessionEventsHandler(appsession.NewHub(), stubSessions{}),
		System:   handler.NewSystemHandler("shop", "dev", nil, nil),
		Pages:    handler.NewPageHandler(stubPages{}),
		CheckoutGuard: []gin.HandlerFunc{func(c *gin.Context) {
			guarded++
			c.Next()
		}},
	})

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /",
		"GET /one-off-art",
		"GET /kitchenware",
		"GET /finishing-products",
		"GET /health",
		"GET /api/create-payment-intent",
		"POST /api/create-payment-intent",
		"DELETE /api/create-payment-intent",
		"GET /api/stripe/config",
		"GET /api/v1/catalog/products",
		"GET /api/v1/session",
		"POST /api/v1/session",
		"POST /api/v1/session/sign-out",
		"GET /api/v1/session/events",
		"GET /api/v1/system/info",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}

	w := serve(engine, http.MethodGet, "/api/create-payment-intent")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, 1, guarded)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/kitchenware").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}

var (
	inlineScript     = regexp.MustCompile(`<script(\s[^>]*)?>`)
	eventHandlerAttr = regexp.MustCompile(`(?i)\son[a-z]+\s*=`)
)

func newStorefrontEngine(t *testing.T) *gin.Engine {
	t.Helper()
	tmpl, err := handler.Templates()
	require.NoError(t, err)

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig("https://project.supabase.co")),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
		}),
	)
	Mount(engine, Handlers{
		Checkout: handler.NewCheckoutHandler(stubIntents{}, "pk_test", nil),
		Pages:    handler.NewPageHandler(stubPages{}),
	})
	return engine
}

func TestMount_PagesRunUnderContentSecurityPolicy(t *testing.T) {
	engine := newStorefrontEngine(t)

	for _, path := range []string{"/", "/kitchenware", "/one-off-art", "/finishing-products"} {
		t.Run(path, func(t *testing.T) {
			w := serve(engine, http.MethodGet, path)
			require.Equal(t, http.StatusOK, w.Code)

			scriptSrc := ""
			for _, d := range strings.Split(w.Header().Get("Content-Security-Policy"), ";") {
				if d = strings.TrimSpace(d); strings.HasPrefix(d, "script-src ") {
					scriptSrc = d
				}
			}
			require.NotEmpty(t, scriptSrc)
			assert.NotContains(t, scriptSrc, "'unsafe-inline'")

			body := w.Body.String()
			for _, tag := range inlineScript.FindAllString(body, -1) {
				assert.Contains(t, tag, `src="/`, "inline script %s", tag)
			}
			assert.False(t, eventHandlerAttr.MatchString(body), "page carries an inline event handler")
		})
	}

	w := serve(engine, http.MethodGet, handler.HeaderScriptPath)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMount_CheckoutOptionsIsMethodNotAllowed(t *testing.T) {
	engine := newStorefrontEngine(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/create-payment-intent", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"message":"Method not allowed"}`, w.Body.String())
}
