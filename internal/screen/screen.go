// Package screen defines the contract between the terminal app and the
// screens it hosts.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/ui/layout"
)

// Screen is one full-window view of the terminal app.
type Screen interface {
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string

	// KeyHints lists the bindings shown in the footer.
	KeyHints() []layout.KeyHint
}

// SwitchMsg asks the app to replace the active screen.
type SwitchMsg struct {
	Screen Screen
}

// StatusMsg updates the learner status shown in the header.
type StatusMsg layout.Status
