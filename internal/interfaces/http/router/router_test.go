package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
	assert.Empty(t, r.root)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(NewDomainGroup("catalog", "/catalog").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "versioned")
	}))
	r.RegisterRoot(NewDomainGroup("root", "").GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "root")
	}))
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/catalog/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "versioned", w.Body.String())

	w = serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	engine := gin.New()

	var order []string
	group := NewDomainGroup("checkout", "/api").
		Use(func(c *gin.Context) {
			order = append(order, "group")
			c.Next()
		}).
		Any("/create-payment-intent", func(c *gin.Context) {
			order = append(order, c.Request.Method)
			c.Status(http.StatusOK)
		}).
		POST("/only-post", func(c *gin.Context) { c.Status(http.StatusCreated) })
	group.Group("stripe", "/stripe").GET("/config", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "checkout", group.Name())
	assert.Equal(t, "/api", group.Prefix())

	group.RegisterRoutes(&engine.RouterGroup)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := serve(engine, method, "/api/create-payment-intent")
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
	assert.Equal(t, []string{"group", "GET", "group", "POST", "group", "PUT", "group", "DELETE"}, order)

	assert.Equal(t, http.StatusCreated, serve(engine, http.MethodPost, "/api/only-post").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/only-post").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/stripe/config").Code)
}
