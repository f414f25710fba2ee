package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ScreenID names a screen that can be opened by message.
type ScreenID int

const (
	ScreenWelcome ScreenID = iota
	ScreenSearch
	ScreenSettings
	ScreenPlayer
)

func (id ScreenID) String() string {
	switch id {
	case ScreenSearch:
		return "search"
	case ScreenSettings:
		return "settings"
	case ScreenPlayer:
		return "player"
	default:
		return "welcome"
	}
}

// Screen is one full-window view on the navigation stack.
type Screen interface {
	// Init runs when the screen is pushed.
	Init() tea.Cmd
	// Update handles a message while the screen is on top.
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View renders the screen body into the given area.
	View(width, height int) string
	// Title is shown in the header bar.
	Title() string
	// ShortHelp lists the bindings shown in the footer.
	ShortHelp() []key.Binding
	// Leave runs when the screen is popped.
	Leave()
}
