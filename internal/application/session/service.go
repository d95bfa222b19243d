package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned when an access token cannot be used to sign in
var ErrInvalidToken = shared.NewDomainError("INVALID_TOKEN", "Invalid or expired access token")

const signOutTimeout = 10 * time.Second

// TokenVerifier validates an access token and returns its user
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*session.User, error)
}

// RevocationList records signed-out token ids until they expire
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SignOutClient ends the session at the identity provider
type SignOutClient interface {
	SignOut(ctx context.Context, accessToken string) error
}

// Service resolves access tokens into session states and publishes
// sign-in and sign-out transitions on the hub
type Service struct {
	verifier    TokenVerifier
	revocations RevocationList
	signOut     SignOutClient
	hub         *Hub
	logger      *zap.Logger
	now         func() time.Time
	pending     sync.WaitGroup
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithSignOutClient sets the identity provider client used on sign-out
func WithSignOutClient(c SignOutClient) ServiceOption {
	return func(s *Service) {
		s.signOut = c
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new Service
func NewService(verifier TokenVerifier, revocations RevocationList, hub *Hub, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		verifier:    verifier,
		revocations: revocations,
		hub:         hub,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the hub the service publishes on
func (s *Service) Hub() *Hub {
	return s.hub
}

// Resolve returns the session state for an access token. A missing,
// invalid or revoked token resolves to anonymous.
func (s *Service) Resolve(ctx context.Context, token string) session.State {
	if token == "" {
		return session.Anonymous()
	}

	user, err := s.verifier.Verify(ctx, token)
	if err != nil {
		s.logger.Debug("access token rejected", zap.Error(err))
		return session.Anonymous()
	}

	if user.TokenID != "" && s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, user.TokenID)
		if err != nil {
			s.logger.Warn("failed to check token revocation",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
			return session.Anonymous()
		}
		if revoked {
			return session.Anonymous()
		}
	}

	return session.Authenticated(*user)
}

// Refresh resolves token and publishes the result for key
func (s *Service) Refresh(ctx context.Context, key, token string) session.State {
	state := s.Resolve(ctx, token)
	s.hub.Publish(key, state)
	return state
}

// SignIn accepts an access token issued by the identity provider and
// publishes the authenticated state for key
func (s *Service) SignIn(ctx context.Context, key, token string) (session.State, error) {
	state := s.Resolve(ctx, token)
	if !state.IsAuthenticated() {
		return state, ErrInvalidToken
	}

	s.hub.Publish(key, state)
	s.logger.Info("User signed in",
		zap.String("user_id", state.User.ID),
		zap.String("session_key", key),
	)
	return state, nil
}

// SignOut revokes the token for the rest of its lifetime, asks the identity
// provider to end the session in the background and publishes anonymous
// for key. Provider errors are logged and never returned.
func (s *Service) SignOut(ctx context.Context, key, token string) {
	state := s.Resolve(ctx, token)

	if state.IsAuthenticated() && state.User.TokenID != "" && s.revocations != nil {
		if ttl := state.TTL(s.now()); ttl > 0 {
			if err := s.revocations.Revoke(ctx, state.User.TokenID, ttl); err != nil {
				s.logger.Error("failed to revoke token",
					zap.String("user_id", state.User.ID),
					zap.Error(err),
				)
			}
		}
	}

	if token != "" && s.signOut != nil {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), signOutTimeout)
			defer cancel()
			if err := s.signOut.SignOut(bgCtx, token); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("identity provider sign-out failed", zap.Error(err))
			}
		}()
	}

	s.hub.Publish(key, session.Anonymous())
	if state.IsAuthenticated() {
		s.logger.Info("User signed out",
			zap.String("user_id", state.User.ID),
			zap.String("session_key", key),
		)
	}
}

// Wait blocks until background sign-out calls have finished
func (s *Service) Wait() {
	s.pending.Wait()
}
