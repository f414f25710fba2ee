package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Global
	ForceQuit key.Binding
	Quit      key.Binding
	Back      key.Binding
	Home      key.Binding

	// Welcome
	OpenSearch   key.Binding
	OpenSettings key.Binding
	OpenPlayer   key.Binding

	// Search
	Submit      key.Binding
	Download    key.Binding
	NewSearch   key.Binding
	SwitchFocus key.Binding
	Filter      key.Binding

	// Player
	PlaySelected key.Binding
	TogglePlay   key.Binding
	Stop         key.Binding
	Next         key.Binding
	Previous     key.Binding
	Refresh      key.Binding
	SeekBack     key.Binding
	SeekForward  key.Binding

	// Settings
	NextField  key.Binding
	PrevField  key.Binding
	OptionPrev key.Binding
	OptionNext key.Binding
	Save       key.Binding
	SaveQuick  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Global
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Home: key.NewBinding(
			key.WithKeys("h", "home"),
			key.WithHelp("h", "home"),
		),

		// Welcome
		OpenSearch: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "search"),
		),
		OpenSettings: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "settings"),
		),
		OpenPlayer: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "player"),
		),

		// Search
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Download: key.NewBinding(
			key.WithKeys(" ", "d"),
			key.WithHelp("space/d", "download"),
		),
		NewSearch: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new search"),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "results/input"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),

		// Player
		PlaySelected: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play"),
		),
		TogglePlay: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space/p", "play/pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next"),
		),
		Previous: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "previous"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f"),
			key.WithHelp("r", "refresh"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "-5s"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "+5s"),
		),

		// Settings
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-tab", "prev field"),
		),
		OptionPrev: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←/→", "change"),
		),
		OptionNext: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("←/→", "change"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save"),
		),
		SaveQuick: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
