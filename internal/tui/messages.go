package tui

// Message types for the TUI

// PushScreenMsg pushes an already-built screen
type PushScreenMsg struct {
	Screen Screen
}

// OpenScreenMsg builds and pushes the screen identified by ID
type OpenScreenMsg struct {
	ID ScreenID
}

// ReplaceScreenMsg pops the top screen, then opens ID
type ReplaceScreenMsg struct {
	ID ScreenID
}

// PopScreenMsg pops the top screen
type PopScreenMsg struct{}

// PopToRootMsg pops every screen above the welcome screen
type PopToRootMsg struct{}

// NotifyMsg shows a transient notification in the footer
type NotifyMsg struct {
	Message string
	IsError bool
}

// ClearNotifyMsg clears the notification if it is still the one numbered Seq
type ClearNotifyMsg struct {
	Seq int
}

// PollTickMsg drives playback progress for poll generation Gen
type PollTickMsg struct {
	Gen uint64
}
