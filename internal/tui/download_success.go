package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/ytdown/internal/tui/styles"
)

// downloadSuccessScreen confirms a finished download.
type downloadSuccessScreen struct {
	title string
	dir   string
}

func newDownloadSuccessScreen(title, dir string) *downloadSuccessScreen {
	return &downloadSuccessScreen{title: title, dir: dir}
}

func (s *downloadSuccessScreen) Init() tea.Cmd { return nil }

func (s *downloadSuccessScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch {
	case key.Matches(keyMsg, Keys.NewSearch):
		return s, func() tea.Msg { return ReplaceScreenMsg{ID: ScreenSearch} }
	case key.Matches(keyMsg, Keys.Back):
		return s, PopCmd
	case key.Matches(keyMsg, Keys.Home):
		return s, PopToRootCmd
	}
	return s, nil
}

func (s *downloadSuccessScreen) View(width, height int) string {
	inner := max(10, width-8)

	var b strings.Builder
	b.WriteString(styles.SuccessStyle.Render("Download Complete!!!!!"))
	b.WriteString("\n\n")
	b.WriteString(styles.LabelStyle.Render("Downloaded Song:"))
	b.WriteString("\n")
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(s.title, inner)))
	b.WriteString("\n\n")
	b.WriteString(styles.LabelStyle.Render("Saved to:"))
	b.WriteString("\n")
	b.WriteString(styles.AccentStyle.Render(styles.Truncate(s.dir, inner)))
	b.WriteString("\n\n")
	b.WriteString(styles.DimStyle.Render("• Ctrl+N: Download another"))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("• ESC: Back to results"))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("• H: Return home"))

	box := styles.ActiveBorder.Padding(1, 2).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (s *downloadSuccessScreen) Title() string { return "Download Complete" }

func (s *downloadSuccessScreen) ShortHelp() []key.Binding {
	return []key.Binding{Keys.NewSearch, Keys.Back, Keys.Home}
}

func (s *downloadSuccessScreen) Leave() {}
