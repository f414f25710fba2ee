package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/m-mizutani/gt"
)

func TestWelcomeOpensScreens(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"s", "Search"},
		{"c", "Settings"},
		{"p", "Player"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			env := newTestEnv(t)
			m := newSizedModel(t, env.deps)

			m, _ = drive(t, m, keyRunes(tt.key))
			gt.Equal(t, m.Stack().Len(), 2)
			gt.Equal(t, m.Stack().Top().Title(), tt.want)
		})
	}
}

func TestWelcomeQuit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{keyRunes("q"), keyType(tea.KeyEsc), keyType(tea.KeyCtrlC)} {
		env := newTestEnv(t)
		m := newSizedModel(t, env.deps)

		_, held := drive(t, m, msg)
		gt.Equal(t, len(held), 1)
		_, ok := held[0].(tea.QuitMsg)
		gt.True(t, ok)
	}
}

func TestPopNeverRemovesHome(t *testing.T) {
	env := newTestEnv(t)
	m := newSizedModel(t, env.deps)

	m, _ = drive(t, m, PopScreenMsg{}, PopScreenMsg{})
	gt.Equal(t, m.Stack().Len(), 1)
	gt.Equal(t, m.Stack().Top().Title(), "Home")
}

func TestEscReturnsHome(t *testing.T) {
	env := newTestEnv(t)
	m := newSizedModel(t, env.deps)

	m, _ = drive(t, m, keyRunes("c"))
	gt.Equal(t, m.Stack().Len(), 2)

	m, _ = drive(t, m, keyType(tea.KeyEsc))
	gt.Equal(t, m.Stack().Len(), 1)
	gt.Equal(t, m.Stack().Top().Title(), "Home")
}

func TestNotificationClearsOnlyLatest(t *testing.T) {
	env := newTestEnv(t)
	m := newSizedModel(t, env.deps)

	m, _ = drive(t, m, NotifyMsg{Message: "first"}, NotifyMsg{Message: "second", IsError: true})
	msg, isErr := m.Notice()
	gt.Equal(t, msg, "second")
	gt.True(t, isErr)

	// the clear scheduled for "first" is stale
	m, _ = drive(t, m, ClearNotifyMsg{Seq: 1})
	msg, _ = m.Notice()
	gt.Equal(t, msg, "second")

	m, _ = drive(t, m, ClearNotifyMsg{Seq: 2})
	msg, _ = m.Notice()
	gt.Equal(t, msg, "")
}

func TestStartupNotice(t *testing.T) {
	env := newTestEnv(t)
	m := NewModel(env.deps).
		WithStartupNotice("YouTube API key is missing", false).
		WithStartupNotice("yt-dlp not found", true)

	m, _ = drive(t, m, runCmd(m.Init())...)
	msg, isErr := m.Notice()
	gt.Equal(t, msg, "YouTube API key is missing · yt-dlp not found")
	gt.True(t, isErr)
}

func TestHomeFromDownloadSuccessLeavesEveryScreen(t *testing.T) {
	env := newTestEnv(t)
	writeTracks(t, env, "a")
	m := openPlayer(t, env)
	m, _ = drive(t, m, keyType(tea.KeyEnter))
	gt.True(t, env.deps.Player.State().IsPlaying)

	m, _ = drive(t, m, PushScreenMsg{Screen: newDownloadSuccessScreen("a", "/music")})
	gt.Equal(t, m.Stack().Len(), 3)
	gt.String(t, m.View()).Contains("H: Return home")

	m, _ = drive(t, m, keyRunes("h"))
	gt.Equal(t, m.Stack().Len(), 1)
	gt.Equal(t, m.Stack().Top().Title(), "Home")
	gt.Value(t, env.deps.Player.State().Loaded()).Equal(false)
	gt.Value(t, env.deps.Player.Polling()).Equal(false)
	gt.Equal(t, env.engine.count("stop"), 1)
}

func TestPopToRootAtHomeIsNoop(t *testing.T) {
	env := newTestEnv(t)
	m := newSizedModel(t, env.deps)

	m, _ = drive(t, m, PopToRootMsg{})
	gt.Equal(t, m.Stack().Len(), 1)
	gt.Equal(t, m.Stack().Top().Title(), "Home")
}

func TestViewRendersHeaderAndHelp(t *testing.T) {
	env := newTestEnv(t)
	m := newSizedModel(t, env.deps)

	view := m.View()
	gt.String(t, view).Contains(AppTitle)
	gt.String(t, view).Contains("YT Down")
	gt.String(t, view).Contains("search")
}
