package navigation

import "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"

// Header is the view model shared by the desktop and mobile navigation
type Header struct {
	Phase session.Phase `json:"phase"`
	Items []Item        `json:"items"`
	Auth  AuthControl   `json:"auth"`
	Menu  MenuState     `json:"menu"`
}

// BuildHeader derives the header from an explicit session state.
// The admin item only appears once the session is authenticated.
func BuildHeader(s session.State) Header {
	return Header{
		Phase: s.Phase,
		Items: BuildNavItems(BaseItems(), s.IsAuthenticated()),
		Auth:  BuildAuthControl(s),
	}
}

// MenuState is the mobile overlay state. The zero value is closed.
type MenuState struct {
	Open bool `json:"open"`
}

// Toggle flips the overlay
func (m MenuState) Toggle() MenuState {
	return MenuState{Open: !m.Open}
}

// Select handles a navigation selection, which always closes the overlay
func (m MenuState) Select(Item) MenuState {
	return MenuState{}
}
