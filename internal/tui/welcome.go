package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/ytdown/internal/tui/styles"
)

const logo = `╔════════════════════════════════════╗
║ █▄█ ▀█▀   █▀▄ █▀█ █ █ █ █▄ █        ║
║  █   █    █▄▀ █▄█ ▀▄▀▄▀ █ ▀█        ║
╚════════════════════════════════════╝`

// welcomeScreen is the home screen at the bottom of the stack.
type welcomeScreen struct{}

func newWelcomeScreen() *welcomeScreen {
	return &welcomeScreen{}
}

func (s *welcomeScreen) Init() tea.Cmd { return nil }

func (s *welcomeScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch {
	case key.Matches(keyMsg, Keys.OpenSearch):
		return s, OpenCmd(ScreenSearch)
	case key.Matches(keyMsg, Keys.OpenSettings):
		return s, OpenCmd(ScreenSettings)
	case key.Matches(keyMsg, Keys.OpenPlayer):
		return s, OpenCmd(ScreenPlayer)
	case key.Matches(keyMsg, Keys.Quit), key.Matches(keyMsg, Keys.Back):
		return s, tea.Quit
	}
	return s, nil
}

func (s *welcomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.LogoStyle.Render(logo))
	b.WriteString("\n\n")
	b.WriteString(styles.TitleStyle.Render("YT Down"))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("Download YT videos as MP3 files."))
	b.WriteString("\n\n")
	b.WriteString(styles.DimStyle.Render("Search for a song, pick a result and it lands in your download folder."))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("Downloaded tracks can be played back from your library."))
	b.WriteString("\n\n")

	controls := []struct{ key, desc string }{
		{"S", "Search & download"},
		{"C", "Configure settings"},
		{"P", "Music player"},
		{"Q", "Quit"},
	}
	for _, c := range controls {
		b.WriteString(styles.HelpKeyStyle.Render("  "+c.key) + "  " + styles.HelpDescStyle.Render(c.desc) + "\n")
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

func (s *welcomeScreen) Title() string { return "Home" }

func (s *welcomeScreen) ShortHelp() []key.Binding {
	return []key.Binding{Keys.OpenSearch, Keys.OpenSettings, Keys.OpenPlayer, Keys.Quit}
}

func (s *welcomeScreen) Leave() {}
