package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appsession "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/session"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/dto"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signOutCall struct {
	key, token string
}

// fakeSessions accepts "good-token" and publishes on hub when set
type fakeSessions struct {
	hub      *appsession.Hub
	user     session.User
	signOuts []signOutCall
}

func (f *fakeSessions) resolve(token string) session.State {
	if token == "good-token" {
		return session.Authenticated(f.user)
	}
	return session.Anonymous()
}

func (f *fakeSessions) SignIn(_ context.Context, key, token string) (session.State, error) {
	state := f.resolve(token)
	if !state.IsAuthenticated() {
		return state, appsession.ErrInvalidToken
	}
	if f.hub != nil {
		f.hub.Publish(key, state)
	}
	return state, nil
}

func (f *fakeSessions) SignOut(_ context.Context, key, token string) {
	f.signOuts = append(f.signOuts, signOutCall{key: key, token: token})
	if f.hub != nil {
		f.hub.Publish(key, session.Anonymous())
	}
}

func (f *fakeSessions) Refresh(_ context.Context, key, token string) session.State {
	state := f.resolve(token)
	if f.hub != nil {
		f.hub.Publish(key, state)
	}
	return state
}

func withSessionKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionKeyContextKey, key)
		c.Next()
	}
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func newSessionRouter(sessions SessionManager) (*gin.Engine, *SessionHandler) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := NewSessionHandler(sessions, middleware.CookieOptions{Secure: true, SameSite: http.SameSiteLaxMode}, nil)
	h.now = func() time.Time { return now }

	router := gin.New()
	router.Use(withSessionKey("key-1"))
	router.GET("/session", h.Current)
	router.POST("/session", h.SignIn)
	router.POST("/session/sign-out", h.SignOut)
	return router, h
}

func TestSessionHandler_SignIn(t *testing.T) {
	sessions := &fakeSessions{user: session.User{
		ID: "u-1", Email: "jack@example.com",
		ExpiresAt: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC),
	}}
	router, _ := newSessionRouter(sessions)

	t.Run("valid token sets the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"access_token":"good-token"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		cookie := findCookie(w, middleware.AccessTokenCookie)
		require.NotNil(t, cookie)
		assert.Equal(t, "good-token", cookie.Value)
		assert.Equal(t, 3600, cookie.MaxAge)
		assert.True(t, cookie.HttpOnly)

		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "u-1", data["user_id"])
		header := data["header"].(map[string]any)
		assert.Equal(t, "authenticated", header["phase"])
	})

	t.Run("invalid token is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"access_token":"forged"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, decodeResponse(t, w).Error.Code)
		assert.Nil(t, findCookie(w, middleware.AccessTokenCookie))
	})

	t.Run("missing token is a validation error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})
}

func TestSessionHandler_SignOut(t *testing.T) {
	t.Run("api caller gets 204", func(t *testing.T) {
		sessions := &fakeSessions{}
		router, _ := newSessionRouter(sessions)

		req := httptest.NewRequest(http.MethodPost, "/session/sign-out", nil)
		req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: "good-token"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		require.Len(t, sessions.signOuts, 1)
		assert.Equal(t, signOutCall{key: "key-1", token: "good-token"}, sessions.signOuts[0])
		cookie := findCookie(w, middleware.AccessTokenCookie)
		require.NotNil(t, cookie)
		assert.Less(t, cookie.MaxAge, 0)
	})

	t.Run("header form redirects home", func(t *testing.T) {
		sessions := &fakeSessions{}
		router, _ := newSessionRouter(sessions)

		req := httptest.NewRequest(http.MethodPost, "/session/sign-out", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Len(t, sessions.signOuts, 1)
	})
}

func TestSessionHandler_Current(t *testing.T) {
	router, _ := newSessionRouter(&fakeSessions{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	header := data["header"].(map[string]any)
	assert.Equal(t, "anonymous", header["phase"])
	assert.Equal(t, "sign-in", header["auth"].(map[string]any)["kind"])
	assert.Nil(t, data["user_id"])
}
