// Package session holds the authentication phase of a storefront visitor.
package session

import "time"

// Phase is the authentication phase of a visitor
type Phase string

const (
	PhaseLoading       Phase = "loading"
	PhaseAnonymous     Phase = "anonymous"
	PhaseAuthenticated Phase = "authenticated"
)

// User identifies a signed-in visitor.
// Navigation only branches on presence, the fields feed logging and revocation.
type User struct {
	ID        string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// State is an immutable value describing the current session.
// It is passed explicitly to the components that render from it.
type State struct {
	Phase Phase
	User  *User
}

// Loading returns the state used before the session is known
func Loading() State {
	return State{Phase: PhaseLoading}
}

// Anonymous returns the signed-out state
func Anonymous() State {
	return State{Phase: PhaseAnonymous}
}

// Authenticated returns the signed-in state for user
func Authenticated(user User) State {
	return State{Phase: PhaseAuthenticated, User: &user}
}

// IsLoading returns true while the session is being resolved
func (s State) IsLoading() bool {
	return s.Phase == PhaseLoading
}

// IsAuthenticated returns true if a user is signed in
func (s State) IsAuthenticated() bool {
	return s.Phase == PhaseAuthenticated && s.User != nil
}

// IsAnonymous returns true if the session is resolved with no user.
// The zero State counts as anonymous.
func (s State) IsAnonymous() bool {
	return s.Phase == PhaseAnonymous || s.Phase == "" || (s.Phase == PhaseAuthenticated && s.User == nil)
}

// TTL returns the time left before the user's token expires.
// It is zero for states without a user or with an expired token.
func (s State) TTL(now time.Time) time.Duration {
	if s.User == nil || s.User.ExpiresAt.IsZero() {
		return 0
	}
	if d := s.User.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
