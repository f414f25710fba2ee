package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mmcdole/ytdown/internal/domain"
)

var errUnprobeable = errors.New("not an audio file")

type fakeSettings struct {
	mu sync.Mutex
	s  domain.Settings
}

func (f *fakeSettings) Current() domain.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *fakeSettings) set(s domain.Settings) {
	f.mu.Lock()
	f.s = s
	f.mu.Unlock()
}

type fakeProvider struct {
	mu      sync.Mutex
	calls   []int
	queries []string
	results []domain.SearchResult
	err     error
}

func (f *fakeProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, maxResults)
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type memCache struct {
	data map[string][]domain.SearchResult
	puts int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]domain.SearchResult)}
}

func (m *memCache) key(q string, n int) string { return fmt.Sprintf("%s|%d", q, n) }

func (m *memCache) GetResults(q string, n int) ([]domain.SearchResult, bool) {
	r, ok := m.data[m.key(q, n)]
	return r, ok
}

func (m *memCache) PutResults(q string, n int, r []domain.SearchResult) error {
	m.puts++
	m.data[m.key(q, n)] = r
	return nil
}

type fakeDownloader struct {
	mu       sync.Mutex
	requests []domain.DownloadRequest
	err      error
	block    chan struct{}
	panicMsg string
}

func (f *fakeDownloader) Download(ctx context.Context, req domain.DownloadRequest) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

type fakeProber struct {
	probes map[string]domain.MediaProbe
	calls  int
}

func (f *fakeProber) Probe(path string) (domain.MediaProbe, error) {
	f.calls++
	p, ok := f.probes[path]
	if !ok {
		return domain.MediaProbe{}, errUnprobeable
	}
	return p, nil
}

type probeKey struct {
	path string
	mod  time.Time
	size int64
}

type memProbeCache struct {
	data map[probeKey]domain.MediaProbe
}

func (m *memProbeCache) GetProbe(path string, mod time.Time, size int64) (domain.MediaProbe, bool) {
	p, ok := m.data[probeKey{path, mod, size}]
	return p, ok
}

func (m *memProbeCache) PutProbe(path string, mod time.Time, size int64, p domain.MediaProbe) error {
	m.data[probeKey{path, mod, size}] = p
	return nil
}

// fakeEngine records the calls made against it in order.
type fakeEngine struct {
	calls    []string
	loaded   string
	state    domain.EngineState
	elapsed  time.Duration
	loadErr  error
	startErr error
}

func (f *fakeEngine) Start(ctx context.Context) error {
	f.calls = append(f.calls, "start")
	return f.startErr
}

func (f *fakeEngine) Load(path string) error {
	f.calls = append(f.calls, "load:"+path)
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = path
	f.state = domain.EnginePaused
	return nil
}

func (f *fakeEngine) Play() error {
	f.calls = append(f.calls, "play")
	f.state = domain.EnginePlaying
	return nil
}

func (f *fakeEngine) Pause() error {
	f.calls = append(f.calls, "pause")
	f.state = domain.EnginePaused
	return nil
}

func (f *fakeEngine) Stop() error {
	f.calls = append(f.calls, "stop")
	f.loaded = ""
	f.state = domain.EngineIdle
	return nil
}

func (f *fakeEngine) Seek(offset time.Duration) error {
	f.calls = append(f.calls, "seek")
	f.elapsed += offset
	return nil
}

func (f *fakeEngine) SetVolume(v int) error {
	f.calls = append(f.calls, "volume")
	return nil
}

func (f *fakeEngine) Elapsed() (time.Duration, error) { return f.elapsed, nil }

func (f *fakeEngine) State() (domain.EngineState, error) { return f.state, nil }

func (f *fakeEngine) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}
