package navigation

import "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"

// ControlKind identifies which auth affordance the header shows
type ControlKind string

const (
	ControlPlaceholder ControlKind = "placeholder"
	ControlSignIn      ControlKind = "sign-in"
	ControlSignOut     ControlKind = "sign-out"
)

// Routes used by the auth control
const (
	SignInPath  = "/auth"
	SignOutPath = "/api/v1/session/sign-out"
)

// AuthControl is the view model of the header auth button
type AuthControl struct {
	Kind     ControlKind `json:"kind"`
	Label    string      `json:"label"`
	Href     string      `json:"href,omitempty"`
	Action   string      `json:"action,omitempty"`
	Greeting string      `json:"greeting,omitempty"`
	Disabled bool        `json:"disabled"`
}

// BuildAuthControl maps a session state to the auth control
func BuildAuthControl(s session.State) AuthControl {
	switch {
	case s.IsLoading():
		return AuthControl{Kind: ControlPlaceholder, Label: "Loading...", Disabled: true}
	case s.IsAuthenticated():
		return AuthControl{
			Kind:     ControlSignOut,
			Label:    "Sign Out",
			Action:   SignOutPath,
			Greeting: "Welcome, Jack",
		}
	default:
		return AuthControl{Kind: ControlSignIn, Label: "Sign In", Href: SignInPath}
	}
}
