package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/ytdown/internal/domain"
)

// Job runner slots
const (
	SlotSearch   = "search"
	SlotDownload = "download"
	SlotLibrary  = "library"
	SlotEngine   = "engine"
	SlotPoll     = "poll"
)

// Notification lifetimes
const (
	notifyDuration      = 3 * time.Second
	notifyErrorDuration = 5 * time.Second
)

// NotifyCmd emits a notification
func NotifyCmd(message string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return NotifyMsg{Message: message, IsError: isError}
	}
}

// ClearNotifyCmd returns a command that clears notification seq after a delay
func ClearNotifyCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearNotifyMsg{Seq: seq}
	})
}

// PollTickCmd schedules the next playback progress tick for gen
func PollTickCmd(gen uint64) tea.Cmd {
	return tea.Tick(domain.ProgressPollInterval, func(t time.Time) tea.Msg {
		return PollTickMsg{Gen: gen}
	})
}

// PopToRootCmd returns to the welcome screen
func PopToRootCmd() tea.Msg {
	return PopToRootMsg{}
}

// PopCmd pops the current screen
func PopCmd() tea.Msg {
	return PopScreenMsg{}
}

// OpenCmd opens the screen identified by id
func OpenCmd(id ScreenID) tea.Cmd {
	return func() tea.Msg {
		return OpenScreenMsg{ID: id}
	}
}
