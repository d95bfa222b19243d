package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/navigation"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/dto"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionManager signs visitors in and out and publishes their state
type SessionManager interface {
	SignIn(ctx context.Context, key, token string) (session.State, error)
	SignOut(ctx context.Context, key, token string)
	Refresh(ctx context.Context, key, token string) session.State
}

// SessionHandler handles the session endpoints
type SessionHandler struct {
	BaseHandler
	sessions SessionManager
	cookie   middleware.CookieOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions SessionManager, cookie middleware.CookieOptions, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		sessions: sessions,
		cookie:   cookie,
		logger:   logger,
		now:      time.Now,
	}
}

func toSessionResponse(s session.State) dto.SessionResponse {
	resp := dto.SessionResponse{Header: navigation.BuildHeader(s)}
	if s.IsAuthenticated() {
		resp.UserID = s.User.ID
		resp.Email = s.User.Email
	}
	return resp
}

// Current returns the caller's session and header
func (h *SessionHandler) Current(c *gin.Context) {
	h.Success(c, toSessionResponse(middleware.GetSessionState(c)))
}

// SignIn stores the access token issued by the identity provider in a
// cookie that lives as long as the token
func (h *SessionHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	state, err := h.sessions.SignIn(c.Request.Context(), middleware.GetSessionKey(c), req.AccessToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	maxAge := int(state.TTL(h.now()) / time.Second)
	middleware.SetAccessTokenCookie(c, req.AccessToken, maxAge, h.cookie)
	h.Success(c, toSessionResponse(state))
}

// SignOut ends the session. Browsers posting the header form are sent
// back to the home page, API callers get 204.
func (h *SessionHandler) SignOut(c *gin.Context) {
	h.sessions.SignOut(c.Request.Context(), middleware.GetSessionKey(c), middleware.AccessToken(c))
	middleware.ClearAccessTokenCookie(c, h.cookie)

	if wantsRedirect(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.NoContent(c)
}

func wantsRedirect(c *gin.Context) bool {
	if strings.HasPrefix(c.ContentType(), "application/x-www-form-urlencoded") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
