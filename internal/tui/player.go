package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/ytdown/internal/domain"
	"github.com/mmcdole/ytdown/internal/jobs"
	"github.com/mmcdole/ytdown/internal/service"
	"github.com/mmcdole/ytdown/internal/tui/components"
	"github.com/mmcdole/ytdown/internal/tui/styles"
)

const (
	libraryTitle      = "Your Library!"
	libraryEmptyText  = "No music files found. Download some!"
	noTrackText       = "♪ No track selected"
	engineStartText   = "Starting player…"
	seekStep          = 5 * time.Second
	nowPlayingBarSize = 30
)

// playerScreen lists downloaded tracks and drives the playback controller.
// Transport keys stay inert until the engine start job reports back.
type playerScreen struct {
	deps        Deps
	list        *components.List
	loading     bool
	engineReady bool
	engineErr   error
}

// pollSample is the value of a SlotPoll job.
type pollSample struct {
	gen    uint64
	sample domain.EngineSample
}

func newPlayerScreen(deps Deps) *playerScreen {
	s := &playerScreen{deps: deps}
	s.list = components.NewList(libraryTitle, s.filterTracks)
	s.list.SetEmptyText("Scanning library…")
	s.list.SetFocused(true)
	return s
}

func (s *playerScreen) filterTracks(query string) []components.FilterHit {
	matches := service.FilterTracks(s.deps.Player.Tracks(), query)
	hits := make([]components.FilterHit, len(matches))
	for i, m := range matches {
		hits[i] = components.FilterHit{Index: m.Index, MatchedIndexes: m.MatchedIndexes}
	}
	return hits
}

func (s *playerScreen) Init() tea.Cmd {
	return tea.Batch(s.refresh(), s.startEngine())
}

// startEngine brings the player process up in the engine slot.
func (s *playerScreen) startEngine() tea.Cmd {
	s.engineReady = false
	s.engineErr = nil
	player := s.deps.Player
	return s.deps.Runner.Submit(SlotEngine, func(ctx context.Context) (any, error) {
		return nil, player.StartEngine(ctx)
	})
}

// refresh rescans the download directory in the library slot.
func (s *playerScreen) refresh() tea.Cmd {
	s.loading = true
	library := s.deps.Library
	return s.deps.Runner.Submit(SlotLibrary, func(ctx context.Context) (any, error) {
		return library.Scan(ctx)
	})
}

func (s *playerScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case jobs.Done:
		return s, s.handleDone(msg)

	case PollTickMsg:
		return s, s.handleTick(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *playerScreen) handleDone(d jobs.Done) tea.Cmd {
	switch d.Slot {
	case SlotLibrary, SlotEngine, SlotPoll:
	default:
		return nil
	}
	if !s.deps.Runner.Accept(d) {
		return nil
	}

	switch d.Slot {
	case SlotEngine:
		return s.handleEngineStarted(d.Err)
	case SlotPoll:
		p, _ := d.Value.(pollSample)
		return s.applySample(p)
	}

	s.loading = false

	if d.Err != nil {
		s.list.SetRows(nil)
		s.list.SetEmptyText(d.Err.Error())
		return NotifyCmd(d.Err.Error(), true)
	}

	tracks, _ := d.Value.([]domain.Track)
	var cmd tea.Cmd
	if err := s.deps.Player.SetTracks(tracks); err != nil {
		cmd = NotifyCmd(err.Error(), true)
	}

	rows := make([]components.Row, len(tracks))
	for i, t := range tracks {
		rows[i] = components.Row{
			Title:    t.DisplayTitle,
			Subtitle: t.Artist,
			Trailing: t.Duration(),
		}
	}
	s.list.SetRows(rows)
	s.list.SetEmptyText(libraryEmptyText)
	return cmd
}

func (s *playerScreen) handleEngineStarted(err error) tea.Cmd {
	if err != nil {
		s.engineErr = err
		s.deps.Logger.Error("player unavailable", "error", err)
		return NotifyCmd(err.Error(), true)
	}
	s.engineReady = true
	return nil
}

// transportKeys need a running engine.
var transportKeys = []key.Binding{
	Keys.PlaySelected, Keys.TogglePlay, Keys.Next, Keys.Previous, Keys.SeekBack, Keys.SeekForward,
}

func (s *playerScreen) handleKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	if s.list.IsFilterTyping() {
		var cmd tea.Cmd
		s.list, cmd = s.list.Update(msg)
		return s, cmd
	}

	if !s.engineReady && key.Matches(msg, transportKeys...) {
		if s.engineErr != nil {
			return s, NotifyCmd(s.engineErr.Error(), true)
		}
		return s, NotifyCmd(engineStartText, false)
	}

	player := s.deps.Player
	switch {
	case key.Matches(msg, Keys.Back):
		if s.list.IsFiltering() {
			s.list.ClearFilter()
			return s, nil
		}
		return s, PopCmd

	case key.Matches(msg, Keys.Quit):
		if err := player.Stop(); err != nil {
			s.deps.Logger.Warn("failed to stop playback on quit", "error", err)
		}
		return s, tea.Quit

	case key.Matches(msg, Keys.Filter):
		return s, s.list.ToggleFilter()

	case key.Matches(msg, Keys.PlaySelected):
		idx := s.list.SelectedIndex()
		if idx < 0 {
			return s, nil
		}
		return s, s.control(func() error { return player.Play(idx) })

	case key.Matches(msg, Keys.TogglePlay):
		idx := s.list.SelectedIndex()
		return s, s.control(func() error { return player.TogglePlayPause(idx) })

	case key.Matches(msg, Keys.Stop):
		return s, s.control(player.Stop)

	case key.Matches(msg, Keys.Next):
		return s, s.control(player.Next)

	case key.Matches(msg, Keys.Previous):
		return s, s.control(player.Previous)

	case key.Matches(msg, Keys.SeekBack):
		return s, s.control(func() error { return player.Seek(-seekStep) })

	case key.Matches(msg, Keys.SeekForward):
		return s, s.control(func() error { return player.Seek(seekStep) })

	case key.Matches(msg, Keys.Refresh):
		stop := s.control(player.Stop)
		s.list.SetEmptyText("Scanning library…")
		return s, tea.Batch(stop, s.refresh())
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

// control runs a controller operation and reconciles the list and the
// progress poll with the resulting state.
func (s *playerScreen) control(op func() error) tea.Cmd {
	prevIndex := s.deps.Player.State().Index()
	prevGen := s.deps.Player.PollGen()
	return s.reconcile(prevIndex, prevGen, op())
}

// handleTick samples the engine in the poll slot. Ticks for a superseded
// generation end that poll chain.
func (s *playerScreen) handleTick(msg PollTickMsg) tea.Cmd {
	player := s.deps.Player
	if msg.Gen != player.PollGen() || !player.Polling() {
		return nil
	}
	gen := msg.Gen
	return s.deps.Runner.Submit(SlotPoll, func(ctx context.Context) (any, error) {
		return pollSample{gen: gen, sample: player.Sample()}, nil
	})
}

func (s *playerScreen) applySample(p pollSample) tea.Cmd {
	player := s.deps.Player
	prevIndex := player.State().Index()
	prevGen := player.PollGen()

	again, err := player.Apply(p.gen, p.sample)
	cmd := s.reconcile(prevIndex, prevGen, err)
	if again {
		return tea.Batch(cmd, PollTickCmd(p.gen))
	}
	return cmd
}

func (s *playerScreen) reconcile(prevIndex int, prevGen uint64, err error) tea.Cmd {
	player := s.deps.Player
	var cmds []tea.Cmd

	if err != nil {
		s.deps.Logger.Error("playback control failed", "error", err)
		cmds = append(cmds, NotifyCmd(err.Error(), true))
	}

	cur := player.State().Index()
	s.list.SetActive(cur)
	if cur >= 0 && cur != prevIndex {
		s.list.Select(cur)
		if track, ok := player.NowPlaying(); ok {
			cmds = append(cmds, NotifyCmd("Now playing: "+track.Title, false))
		}
	}

	if player.Polling() && player.PollGen() != prevGen {
		cmds = append(cmds, PollTickCmd(player.PollGen()))
	}
	return tea.Batch(cmds...)
}

func (s *playerScreen) View(width, height int) string {
	bar := s.renderNowPlaying(width)
	s.list.SetSize(width, max(3, height-lipgloss.Height(bar)))
	return lipgloss.JoinVertical(lipgloss.Left, s.list.View(), bar)
}

func (s *playerScreen) renderNowPlaying(width int) string {
	style := styles.NowPlayingStyle.Width(max(0, width-styles.NowPlayingStyle.GetHorizontalFrameSize()))

	track, ok := s.deps.Player.NowPlaying()
	if !ok {
		switch {
		case s.engineErr != nil:
			return style.Render(styles.ErrorStyle.Render(s.engineErr.Error()))
		case !s.engineReady:
			return style.Render(styles.WarningStyle.Render(engineStartText))
		}
		return style.Render(styles.DimStyle.Render(noTrackText))
	}

	st := s.deps.Player.State()
	icon := "▶"
	if !st.IsPlaying {
		icon = "⏸"
	}

	var percent float64
	if st.TotalSeconds > 0 {
		percent = 100 * float64(st.ElapsedSeconds) / float64(st.TotalSeconds)
	}
	progress := fmt.Sprintf("%s / %s", domain.FormatSeconds(st.ElapsedSeconds), domain.FormatSeconds(st.TotalSeconds))

	title := styles.AccentStyle.Render(icon+" ") + styles.TitleStyle.Render(styles.Truncate(track.Title, max(10, width-8)))
	line := styles.RenderProgressBar(percent, nowPlayingBarSize) + "  " + styles.SubtitleStyle.Render(progress)
	return style.Render(title + "\n" + line)
}

func (s *playerScreen) Title() string { return "Player" }

func (s *playerScreen) ShortHelp() []key.Binding {
	return []key.Binding{
		Keys.PlaySelected, Keys.TogglePlay, Keys.Stop, Keys.Next, Keys.Previous,
		Keys.SeekForward, Keys.Refresh, Keys.Filter, Keys.Back,
	}
}

// Leave stops playback and abandons the screen's background jobs.
func (s *playerScreen) Leave() {
	if err := s.deps.Player.Stop(); err != nil {
		s.deps.Logger.Warn("failed to stop playback", "error", err)
	}
	for _, slot := range []string{SlotLibrary, SlotEngine, SlotPoll} {
		s.deps.Runner.Cancel(slot)
	}
}
