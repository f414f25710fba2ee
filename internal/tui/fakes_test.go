package tui

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/ytdown/internal/domain"
	"github.com/mmcdole/ytdown/internal/jobs"
	"github.com/mmcdole/ytdown/internal/service"
)

type fakeSettings struct {
	mu      sync.Mutex
	s       domain.Settings
	saveErr error
	saved   []domain.Settings
}

func (f *fakeSettings) Current() domain.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *fakeSettings) Save(s domain.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if err := s.Validate(); err != nil {
		return err
	}
	f.saved = append(f.saved, s)
	f.s = s
	return nil
}

type fakeProvider struct {
	results []domain.SearchResult
	err     error
}

func (f *fakeProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	return f.results, f.err
}

type fakeDownloader struct {
	mu       sync.Mutex
	requests []domain.DownloadRequest
	err      error
}

func (f *fakeDownloader) Download(ctx context.Context, req domain.DownloadRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.err
}

type fakeProber struct{}

func (fakeProber) Probe(path string) (domain.MediaProbe, error) {
	return domain.MediaProbe{DurationSeconds: 200, Artist: "Tester"}, nil
}

type fakeEngine struct {
	mu       sync.Mutex
	calls    []string
	loaded   string
	state    domain.EngineState
	startErr error
}

func (f *fakeEngine) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeEngine) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeEngine) setState(st domain.EngineState) {
	f.mu.Lock()
	f.state = st
	f.mu.Unlock()
}

func (f *fakeEngine) loadedPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *fakeEngine) Start(ctx context.Context) error {
	f.record("start")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startErr
}

func (f *fakeEngine) Load(path string) error {
	f.record("load")
	f.mu.Lock()
	f.loaded = path
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) Play() error {
	f.record("play")
	f.setState(domain.EnginePlaying)
	return nil
}

func (f *fakeEngine) Pause() error {
	f.record("pause")
	f.setState(domain.EnginePaused)
	return nil
}

func (f *fakeEngine) Stop() error {
	f.record("stop")
	f.setState(domain.EngineIdle)
	return nil
}

func (f *fakeEngine) Seek(offset time.Duration) error {
	f.record("seek")
	return nil
}

func (f *fakeEngine) SetVolume(volume int) error {
	f.record("volume")
	return nil
}

func (f *fakeEngine) Elapsed() (time.Duration, error) {
	return 42 * time.Second, nil
}

func (f *fakeEngine) State() (domain.EngineState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, nil
}

// testEnv wires real services around fakes.
type testEnv struct {
	settings *fakeSettings
	provider *fakeProvider
	download *fakeDownloader
	engine   *fakeEngine
	deps     Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		settings: &fakeSettings{s: domain.Settings{
			DownloadPath:     t.TempDir(),
			AudioQuality:     domain.QualityBest,
			MaxSearchResults: 10,
		}},
		provider: &fakeProvider{},
		download: &fakeDownloader{},
		engine:   &fakeEngine{},
	}
	env.deps = Deps{
		Settings:  env.settings,
		Search:    service.NewSearchService(env.provider, nil, logger),
		Downloads: service.NewDownloadService(env.download, env.settings, logger),
		Library:   service.NewLibraryService(fakeProber{}, nil, env.settings, logger),
		Player:    service.NewPlaybackController(env.engine, domain.DefaultVolume, logger),
		Runner:    jobs.NewRunner(logger),
		Logger:    logger,
	}
	return env
}

// cmdTimeout bounds a command run synchronously. Timer-based commands
// (notification clears, poll ticks, cursor blinks) exceed it and are dropped.
const cmdTimeout = 50 * time.Millisecond

// runCmd executes cmd and flattens batches into the resulting messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, runCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(cmdTimeout):
		return nil
	}
}

// drive feeds msgs to m and keeps feeding it whatever its commands produce
// until nothing is left. Messages matching keep are returned instead of
// being delivered.
func drive(t *testing.T, m Model, msgs ...tea.Msg) (Model, []tea.Msg) {
	t.Helper()
	var held []tea.Msg
	queue := append([]tea.Msg(nil), msgs...)
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("message loop did not settle")
		}
		msg := queue[0]
		queue = queue[1:]

		switch msg.(type) {
		case tea.QuitMsg:
			held = append(held, msg)
			continue
		}

		next, cmd := m.Update(msg)
		m = next.(Model)
		queue = append(queue, runCmd(cmd)...)
	}
	return m, held
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyType(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func newSizedModel(t *testing.T, deps Deps) Model {
	t.Helper()
	m, _ := drive(t, NewModel(deps), tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}
