package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/ytdown/internal/domain"
	"github.com/mmcdole/ytdown/internal/tui/styles"
)

// settingsField is the focusable element of the settings form
type settingsField int

const (
	fieldPath settingsField = iota
	fieldQuality
	fieldResults
	fieldSave
	fieldCount
)

// settingsScreen edits and persists the user settings.
type settingsScreen struct {
	deps Deps

	path    textinput.Model
	quality int // index into domain.AudioQualities
	choices []int
	results int // index into choices
	focus   settingsField
}

func newSettingsScreen(deps Deps) *settingsScreen {
	current := deps.Settings.Current()

	ti := textinput.New()
	ti.Placeholder = domain.DefaultDownloadDir
	ti.CharLimit = 512
	ti.SetValue(current.DownloadPath)
	ti.Focus()

	choices := resultChoices(current.MaxSearchResults)
	return &settingsScreen{
		deps:    deps,
		path:    ti,
		quality: qualityIndex(current.AudioQuality),
		choices: choices,
		results: choiceIndex(choices, current.MaxSearchResults),
	}
}

func qualityIndex(q domain.AudioQuality) int {
	for i, v := range domain.AudioQualities {
		if v == q {
			return i
		}
	}
	return 0
}

// resultChoices returns the offered result counts. A valid stored count
// that is not among them is kept as an extra choice.
func resultChoices(n int) []int {
	choices := slices.Clone(domain.SearchResultChoices)
	if n >= domain.MinSearchResults && n <= domain.MaxSearchResultsCeiling && !slices.Contains(choices, n) {
		choices = append(choices, n)
		slices.Sort(choices)
	}
	return choices
}

// choiceIndex locates n in choices, falling back to the default count.
func choiceIndex(choices []int, n int) int {
	if i := slices.Index(choices, n); i >= 0 {
		return i
	}
	return max(0, slices.Index(choices, domain.DefaultSearchResults))
}
	return n
}

func (s *settingsScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *settingsScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if s.focus == fieldPath {
			var cmd tea.Cmd
			s.path, cmd = s.path.Update(msg)
			return s, cmd
		}
		return s, nil
	}

	switch {
	case key.Matches(keyMsg, Keys.Back):
		return s, PopCmd
	case key.Matches(keyMsg, Keys.Save):
		return s, s.save()
	case key.Matches(keyMsg, Keys.NextField):
		s.setFocus((s.focus + 1) % fieldCount)
		return s, nil
	case key.Matches(keyMsg, Keys.PrevField):
		s.setFocus((s.focus + fieldCount - 1) % fieldCount)
		return s, nil
	case key.Matches(keyMsg, Keys.Submit):
		if s.focus == fieldSave {
			return s, s.save()
		}
		s.setFocus(s.focus + 1)
		return s, nil
	}

	if s.focus == fieldPath {
		var cmd tea.Cmd
		s.path, cmd = s.path.Update(keyMsg)
		return s, cmd
	}

	switch {
	case key.Matches(keyMsg, Keys.SaveQuick):
		return s, s.save()
	case key.Matches(keyMsg, Keys.OptionNext):
		s.cycle(1)
	case key.Matches(keyMsg, Keys.OptionPrev):
		s.cycle(-1)
	}
	return s, nil
}

func (s *settingsScreen) setFocus(f settingsField) {
	s.focus = f
	if f == fieldPath {
		s.path.Focus()
	} else {
		s.path.Blur()
	}
}

func (s *settingsScreen) cycle(delta int) {
	switch s.focus {
	case fieldQuality:
		n := len(domain.AudioQualities)
		s.quality = (s.quality + delta + n) % n
	case fieldResults:
		n := len(s.choices)
		s.results = (s.results + delta + n) % n
	}
}

// value builds the settings described by the form
func (s *settingsScreen) value() domain.Settings {
	return domain.Settings{
		DownloadPath:     strings.TrimSpace(s.path.Value()),
		AudioQuality:     domain.AudioQualities[s.quality],
		MaxSearchResults: s.choices[s.results],
	}
}

func (s *settingsScreen) save() tea.Cmd {
	settings := s.value()
	if err := s.deps.Settings.Save(settings); err != nil {
		s.deps.Logger.Error("failed to save settings", "error", err)
		return NotifyCmd("Failed to save settings: "+err.Error(), true)
	}
	return tea.Batch(NotifyCmd("Settings saved successfully!", false), PopCmd)
}

func (s *settingsScreen) View(width, height int) string {
	label := func(f settingsField, text string) string {
		if s.focus == f {
			return styles.FocusedLabelStyle.Render("› " + text)
		}
		return styles.LabelStyle.Render("  " + text)
	}
	option := func(f settingsField, text string) string {
		if s.focus == f {
			return styles.AccentStyle.Render("◀ ") + styles.OptionStyle.Render(text) + styles.AccentStyle.Render(" ▶")
		}
		return "  " + styles.OptionStyle.Render(text) + "  "
	}

	s.path.Width = max(10, min(60, width-10))
	quality := domain.AudioQualities[s.quality]
	button := styles.ButtonStyle.Render("Save")
	if s.focus == fieldSave {
		button = styles.FocusedButtonStyle.Render("Save")
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		label(fieldPath, "Download Path"),
		"  "+s.path.View(),
		"",
		label(fieldQuality, "Audio Quality"),
		option(fieldQuality, fmt.Sprintf("%s (%s)", quality.Label(), quality)),
		"",
		label(fieldResults, "Max Search Results"),
		option(fieldResults, fmt.Sprintf("%d", s.choices[s.results])),
		"",
		"  "+button,
		"",
		styles.DimStyle.Render("  Saved to "+settingsLocation(s.deps.Settings)),
	)

	box := styles.ActiveBorder.Padding(1, 2).Render(form)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// settingsLocation reports the settings file path when the store exposes it.
func settingsLocation(store settingsStore) string {
	if p, ok := store.(interface{ Path() string }); ok {
		return p.Path()
	}
	return "settings file"
}

func (s *settingsScreen) Title() string { return "Settings" }

func (s *settingsScreen) ShortHelp() []key.Binding {
	return []key.Binding{Keys.NextField, Keys.OptionNext, Keys.Save, Keys.Back}
}

func (s *settingsScreen) Leave() {}
