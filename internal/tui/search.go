package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/ytdown/internal/domain"
	"github.com/mmcdole/ytdown/internal/jobs"
	"github.com/mmcdole/ytdown/internal/service"
	"github.com/mmcdole/ytdown/internal/tui/components"
	"github.com/mmcdole/ytdown/internal/tui/styles"
)

// Search screen status lines
const (
	statusPrompt    = "Enter search query"
	statusSearching = "Searching…"
	statusNoResults = "No results found"
)

// downloadTitleLength is how much of a title the "Downloading:" status shows
const downloadTitleLength = 50

// downloadDone is the value of a download job
type downloadDone struct {
	Result  domain.SearchResult
	Outcome domain.DownloadOutcome
}

// searchScreen queries the provider and downloads the chosen result.
type searchScreen struct {
	deps Deps

	input   textinput.Model
	list    *components.List
	spinner spinner.Model

	results   []domain.SearchResult
	status    string
	statusErr bool

	searching   bool
	downloading bool
}

func newSearchScreen(deps Deps) *searchScreen {
	ti := textinput.New()
	ti.Placeholder = "artist, song, album…"
	ti.CharLimit = 200
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	s := &searchScreen{
		deps:    deps,
		input:   ti,
		spinner: sp,
		status:  statusPrompt,
	}
	s.list = components.NewList("Results", s.filterResults)
	s.list.SetEmptyText("No results yet")
	return s
}

func (s *searchScreen) filterResults(query string) []components.FilterHit {
	indexes := service.FilterResults(s.results, query)
	hits := make([]components.FilterHit, len(indexes))
	for i, idx := range indexes {
		hits[i] = components.FilterHit{Index: idx}
	}
	return hits
}

func (s *searchScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if s.deps.Search != nil && !s.deps.Search.Available() {
		cmds = append(cmds, NotifyCmd(domain.ErrMissingCredential.Error(), true))
	}
	if s.deps.Downloads != nil {
		if err := s.deps.Downloads.Unavailable(); err != nil {
			cmds = append(cmds, NotifyCmd(err.Error(), true))
		}
	}
	return tea.Batch(cmds...)
}

// busy reports whether a download is running anywhere in the process.
func (s *searchScreen) busy() bool {
	return s.downloading || s.deps.Downloads.InProgress()
}

func (s *searchScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case jobs.Done:
		return s.handleDone(msg)

	case spinner.TickMsg:
		if !s.searching && !s.downloading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.input.Focused() {
			return s.handleInputKey(msg)
		}
		return s.handleListKey(msg)
	}

	if s.input.Focused() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *searchScreen) handleInputKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Submit):
		if s.busy() {
			return s, nil
		}
		return s, s.startSearch()
	case key.Matches(msg, Keys.Back):
		if s.busy() {
			return s, nil
		}
		return s, PopCmd
	case key.Matches(msg, Keys.NewSearch):
		if s.busy() {
			return s, nil
		}
		s.reset()
		return s, nil
	case key.Matches(msg, Keys.SwitchFocus):
		if len(s.results) > 0 {
			s.focusList()
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *searchScreen) handleListKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	if s.list.IsFilterTyping() {
		var cmd tea.Cmd
		s.list, cmd = s.list.Update(msg)
		return s, cmd
	}

	switch {
	case key.Matches(msg, Keys.Back):
		if s.list.IsFiltering() {
			s.list.ClearFilter()
			return s, nil
		}
		if s.busy() {
			return s, nil
		}
		return s, PopCmd
	case key.Matches(msg, Keys.Submit), key.Matches(msg, Keys.Download):
		return s, s.startDownload()
	case key.Matches(msg, Keys.Filter):
		return s, s.list.ToggleFilter()
	case key.Matches(msg, Keys.SwitchFocus):
		s.focusInput()
		return s, textinput.Blink
	case key.Matches(msg, Keys.NewSearch):
		if s.busy() {
			return s, nil
		}
		s.reset()
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

// startSearch clears the previous results and submits a search job.
// An empty query leaves everything untouched.
func (s *searchScreen) startSearch() tea.Cmd {
	query, err := service.NormalizeQuery(s.input.Value())
	if err != nil {
		return nil
	}

	s.results = nil
	s.list.SetRows(nil)
	s.setStatus(statusSearching, false)
	s.searching = true

	maxResults := s.deps.Settings.Current().EffectiveResultCount()
	search := s.deps.Search
	cmd := s.deps.Runner.Submit(SlotSearch, func(ctx context.Context) (any, error) {
		return search.Search(ctx, query, maxResults)
	})
	return tea.Batch(cmd, s.spinner.Tick)
}

// startDownload raises the download guard and submits the selected result.
func (s *searchScreen) startDownload() tea.Cmd {
	idx := s.list.SelectedIndex()
	if idx < 0 || idx >= len(s.results) {
		return nil
	}
	if s.busy() {
		return NotifyCmd(domain.ErrDownloadInProgress.Error(), true)
	}

	release, err := s.deps.Downloads.Begin()
	if err != nil {
		return NotifyCmd(err.Error(), true)
	}

	result := s.results[idx]
	s.downloading = true
	s.setStatus(fmt.Sprintf("Downloading: %s…", firstRunes(result.Title, downloadTitleLength)), false)

	downloads := s.deps.Downloads
	cmd := s.deps.Runner.Submit(SlotDownload, func(ctx context.Context) (any, error) {
		defer release()
		outcome, err := downloads.Run(ctx, result)
		return downloadDone{Result: result, Outcome: outcome}, err
	})
	return tea.Batch(cmd, s.spinner.Tick)
}

func (s *searchScreen) handleDone(d jobs.Done) (Screen, tea.Cmd) {
	if !s.deps.Runner.Accept(d) {
		return s, nil
	}

	switch d.Slot {
	case SlotSearch:
		s.searching = false
		if d.Err != nil {
			s.setStatus("Error: "+d.Err.Error(), true)
			return s, nil
		}
		results, _ := d.Value.([]domain.SearchResult)
		s.setResults(results)
		return s, nil

	case SlotDownload:
		s.downloading = false
		done, _ := d.Value.(downloadDone)
		if d.Err != nil {
			s.setStatus("Failed to download: "+downloadMessage(d.Err), true)
			return s, nil
		}
		s.setStatus(done.Outcome.Message, false)
		return s, func() tea.Msg {
			return PushScreenMsg{Screen: newDownloadSuccessScreen(done.Result.Title, done.Outcome.OutputDirectory)}
		}
	}
	return s, nil
}

// downloadMessage prefers the engine diagnostic over the wrapped error text.
func downloadMessage(err error) string {
	var failure *domain.DownloadFailure
	if errors.As(err, &failure) && failure.Diagnostic != "" {
		return failure.Diagnostic
	}
	return err.Error()
}

func (s *searchScreen) setResults(results []domain.SearchResult) {
	s.results = results

	rows := make([]components.Row, len(results))
	for i, r := range results {
		title, channel, _ := strings.Cut(r.DisplayLine, "\n")
		rows[i] = components.Row{
			Title:    title,
			Subtitle: strings.TrimSpace(channel),
		}
	}
	s.list.SetRows(rows)

	if len(results) == 0 {
		s.setStatus(statusNoResults, false)
		s.list.SetEmptyText(statusNoResults)
		return
	}
	s.setStatus(fmt.Sprintf("Found %d results", len(results)), false)
	s.focusList()
}

func (s *searchScreen) setStatus(status string, isErr bool) {
	s.status = status
	s.statusErr = isErr
}

func (s *searchScreen) reset() {
	s.deps.Runner.Cancel(SlotSearch)
	s.searching = false
	s.results = nil
	s.list.SetRows(nil)
	s.list.SetEmptyText("No results yet")
	s.input.SetValue("")
	s.setStatus(statusPrompt, false)
	s.focusInput()
}

func (s *searchScreen) focusList() {
	s.input.Blur()
	s.list.SetFocused(true)
}

func (s *searchScreen) focusInput() {
	s.list.SetFocused(false)
	s.input.Focus()
}

func (s *searchScreen) View(width, height int) string {
	inputBorder := styles.InactiveBorder
	if s.input.Focused() {
		inputBorder = styles.ActiveBorder
	}
	frameW, _ := inputBorder.GetFrameSize()
	s.input.Width = max(10, width-frameW-4)
	inputView := inputBorder.Width(max(0, width-frameW)).Render(s.input.View())

	statusStyle := styles.SubtitleStyle
	if s.statusErr {
		statusStyle = styles.ErrorStyle
	}
	status := statusStyle.Render(styles.Truncate(s.status, width-4))
	if s.searching || s.downloading {
		status = s.spinner.View() + " " + status
	}
	status = lipgloss.NewStyle().Padding(0, 1).Render(status)

	listHeight := height - lipgloss.Height(inputView) - lipgloss.Height(status)
	s.list.SetSize(width, max(3, listHeight))

	return lipgloss.JoinVertical(lipgloss.Left, inputView, status, s.list.View())
}

func (s *searchScreen) Title() string { return "Search" }

func (s *searchScreen) ShortHelp() []key.Binding {
	if s.input.Focused() {
		return []key.Binding{Keys.Submit, Keys.SwitchFocus, Keys.NewSearch, Keys.Back}
	}
	return []key.Binding{Keys.Download, Keys.Filter, Keys.SwitchFocus, Keys.NewSearch, Keys.Back}
}

// Leave abandons any in-flight search. A running download is left alone.
func (s *searchScreen) Leave() {
	s.deps.Runner.Cancel(SlotSearch)
}

// firstRunes returns at most n runes of s.
func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
