package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/wselearn/wse/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Focusable is implemented by screens that care whether they are the
// visible one. Focus runs whenever the screen becomes the top of the
// stack; Blur runs when another screen covers it or it is removed.
type Focusable interface {
	Focus() tea.Cmd
	Blur()
}

// Factory builds a screen on demand.
type Factory func() Screen
