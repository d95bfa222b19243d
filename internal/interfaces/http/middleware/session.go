package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Cookie names
const (
	// AccessTokenCookie holds the identity provider access token
	AccessTokenCookie = "sb-access-token"
	// SessionKeyCookie holds the visitor's session stream key
	SessionKeyCookie = "shop_sid"
)

// Gin context keys set by Session
const (
	SessionKeyContextKey   = "session_key"
	SessionStateContextKey = "session_state"
)

const sessionKeyMaxAge = 365 * 24 * 60 * 60

// SessionResolver turns an access token into a session state
type SessionResolver interface {
	Resolve(ctx context.Context, token string) session.State
}

// CookieOptions controls the attributes of cookies set by the storefront
type CookieOptions struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps "strict", "lax" and "none" to http.SameSite. Anything else is lax.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (o CookieOptions) path() string {
	if o.Path == "" {
		return "/"
	}
	return o.Path
}

// Session assigns every visitor a session key, resolves the access token
// into a session state and stores both on the gin context. The request
// logger is enriched with the session key.
func Session(resolver SessionResolver, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(SessionKeyCookie)
		if err != nil || uuid.Validate(key) != nil {
			key = uuid.NewString()
			c.SetSameSite(opts.SameSite)
			c.SetCookie(SessionKeyCookie, key, sessionKeyMaxAge, opts.path(), opts.Domain, opts.Secure, true)
		}
		c.Set(SessionKeyContextKey, key)

		ctx := c.Request.Context()
		ctx, reqLogger := logger.WithSessionKey(ctx, logger.FromContext(ctx), key)
		ctx = logger.WithContext(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Set(SessionStateContextKey, resolver.Resolve(ctx, AccessToken(c)))
		c.Next()
	}
}

// AccessToken returns the access token from the cookie, falling back to an
// Authorization Bearer header
func AccessToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// GetSessionKey returns the visitor's session key
func GetSessionKey(c *gin.Context) string {
	return c.GetString(SessionKeyContextKey)
}

// GetSessionState returns the resolved session state, anonymous when unset
func GetSessionState(c *gin.Context) session.State {
	if v, ok := c.Get(SessionStateContextKey); ok {
		if state, ok := v.(session.State); ok {
			return state
		}
	}
	return session.Anonymous()
}

// SetAccessTokenCookie stores token for maxAge seconds
func SetAccessTokenCookie(c *gin.Context, token string, maxAge int, opts CookieOptions) {
	c.SetSameSite(opts.SameSite)
	c.SetCookie(AccessTokenCookie, token, maxAge, opts.path(), opts.Domain, opts.Secure, true)
}

// ClearAccessTokenCookie expires the access token cookie
func ClearAccessTokenCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(opts.SameSite)
	c.SetCookie(AccessTokenCookie, "", -1, opts.path(), opts.Domain, opts.Secure, true)
}
