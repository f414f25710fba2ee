package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/ytdown/internal/domain"
	"github.com/mmcdole/ytdown/internal/jobs"
	"github.com/mmcdole/ytdown/internal/service"
	"github.com/mmcdole/ytdown/internal/tui/styles"
)

// AppTitle is shown in the header bar on every screen.
const AppTitle = "YouTube Download"

// settingsStore is the persisted settings snapshot (consumer-defined interface)
type settingsStore interface {
	Current() domain.Settings
	Save(settings domain.Settings) error
}

// Deps bundles the collaborators shared by all screens.
type Deps struct {
	Settings  settingsStore
	Search    *service.SearchService
	Downloads *service.DownloadService
	Library   *service.LibraryService
	Player    *service.PlaybackController
	Runner    *jobs.Runner
	Logger    *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	deps  Deps
	stack *NavStack
	help  help.Model

	// Dimensions
	Width  int
	Height int

	// Footer notification
	notice      string
	noticeIsErr bool
	noticeSeq   int

	// startup notices are shown once Init runs
	startup []NotifyMsg
}

// NewModel creates a new application model with the welcome screen on top
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Runner == nil {
		deps.Runner = jobs.NewRunner(deps.Logger)
	}

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle

	m := Model{
		deps: deps,
		help: h,
	}
	m.stack = NewNavStack(newWelcomeScreen())
	return m
}

// WithStartupNotice queues a notification shown when the program starts.
func (m Model) WithStartupNotice(message string, isError bool) Model {
	m.startup = append(m.startup, NotifyMsg{Message: message, IsError: isError})
	return m
}

// Stack exposes the navigation stack.
func (m Model) Stack() *NavStack {
	return m.stack
}

// Notice returns the current footer notification.
func (m Model) Notice() (string, bool) {
	return m.notice, m.noticeIsErr
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.stack.Top().Init()}
	if len(m.startup) > 0 {
		// Startup notices are joined into one footer message.
		messages := make([]string, len(m.startup))
		isErr := false
		for i, n := range m.startup {
			messages[i] = n.Message
			isErr = isErr || n.IsError
		}
		cmds = append(cmds, NotifyCmd(strings.Join(messages, " · "), isErr))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, Keys.ForceQuit) {
			m.deps.Logger.Info("quit requested")
			return m, tea.Quit
		}

	case PushScreenMsg:
		return m, m.push(msg.Screen)

	case OpenScreenMsg:
		return m, m.push(m.build(msg.ID))

	case ReplaceScreenMsg:
		m.pop()
		return m, m.push(m.build(msg.ID))

	case PopScreenMsg:
		m.pop()
		return m, nil

	case PopToRootMsg:
		for _, s := range m.stack.PopToRoot() {
			s.Leave()
			m.deps.Logger.Debug("screen popped", "screen", s.Title(), "depth", m.stack.Depth())
		}
		return m, nil

	case NotifyMsg:
		m.noticeSeq++
		m.notice = msg.Message
		m.noticeIsErr = msg.IsError
		delay := notifyDuration
		if msg.IsError {
			delay = notifyErrorDuration
		}
		return m, ClearNotifyCmd(m.noticeSeq, delay)

	case ClearNotifyMsg:
		if msg.Seq == m.noticeSeq {
			m.notice = ""
			m.noticeIsErr = false
		}
		return m, nil
	}

	top, cmd := m.stack.Top().Update(msg)
	m.stack.ReplaceTop(top)
	return m, cmd
}

func (m *Model) push(s Screen) tea.Cmd {
	m.stack.Push(s)
	m.deps.Logger.Debug("screen pushed", "screen", s.Title(), "depth", m.stack.Depth())
	return s.Init()
}

func (m *Model) pop() {
	top := m.stack.Top()
	if m.stack.Pop() == nil {
		return
	}
	top.Leave()
	m.deps.Logger.Debug("screen popped", "screen", top.Title(), "depth", m.stack.Depth())
}

// build constructs a screen by id
func (m *Model) build(id ScreenID) Screen {
	switch id {
	case ScreenSearch:
		return newSearchScreen(m.deps)
	case ScreenSettings:
		return newSettingsScreen(m.deps)
	case ScreenPlayer:
		return newPlayerScreen(m.deps)
	default:
		return newWelcomeScreen()
	}
}

// View renders the application
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}

	top := m.stack.Top()
	header := styles.HeaderStyle.Width(m.Width).Render(AppTitle + "  ·  " + top.Title())
	footer := m.renderFooter(top)

	bodyHeight := m.Height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.NewStyle().
		Width(m.Width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(top.View(m.Width, bodyHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderFooter(top Screen) string {
	var lines []string
	if m.notice != "" {
		style := styles.SuccessStyle
		if m.noticeIsErr {
			style = styles.ErrorStyle
		}
		lines = append(lines, style.Render(styles.Truncate(m.notice, m.Width-2)))
	}
	lines = append(lines, m.help.ShortHelpView(top.ShortHelp()))
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}
