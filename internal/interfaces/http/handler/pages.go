package handler

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	appcatalog "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/catalog"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/navigation"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static/*.js
var staticFS embed.FS

// HeaderScriptPath serves the header script. Pages carry no inline script
// so the Content-Security-Policy can stay at script-src 'self'.
const HeaderScriptPath = "/assets/header.js"

// Page template names
const (
	HomeTemplate     = "home.tmpl"
	CategoryTemplate = "category.tmpl"
)

// Templates parses the embedded page templates for gin's HTML renderer
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}

// Assets exposes the embedded static files
func Assets() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// HomePageData is rendered by the home template
type HomePageData struct {
	Title      string
	Header     navigation.Header
	Categories []catalog.Category
}

// CategoryPageData is rendered by the category template
type CategoryPageData struct {
	Title  string
	Header navigation.Header
	Page   appcatalog.CategoryPage
}

// PageHandler renders the storefront pages
type PageHandler struct {
	pages CategoryPages
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(pages CategoryPages) *PageHandler {
	return &PageHandler{pages: pages}
}

// Home renders the landing page
func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, HomeTemplate, HomePageData{
		Title:      "Home",
		Header:     navigation.BuildHeader(middleware.GetSessionState(c)),
		Categories: catalog.Categories(),
	})
}

// Category returns a handler rendering the page of one category.
// A failed fetch still renders the page, with the toast and the empty state.
func (h *PageHandler) Category(slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := h.pages.CategoryPage(c.Request.Context(), slug)
		c.HTML(http.StatusOK, CategoryTemplate, CategoryPageData{
			Title:  page.Category.Label,
			Header: navigation.BuildHeader(middleware.GetSessionState(c)),
			Page:   page,
		})
	}
}

// RegisterPages mounts the home page, one page per category and the
// header script on engine
func (h *PageHandler) RegisterPages(engine gin.IRoutes) {
	engine.StaticFileFS(HeaderScriptPath, "header.js", Assets())
	engine.GET("/", h.Home)
	for _, cat := range catalog.Categories() {
		engine.GET("/"+cat.Slug, h.Category(cat.Slug))
	}
}
