package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/ytdown/internal/domain"
)

// DownloadService runs at most one download at a time across the process.
type DownloadService struct {
	engine   domain.DownloadEngine
	settings SettingsSource
	timeout  time.Duration
	logger   *slog.Logger

	busy atomic.Bool

	mu          sync.RWMutex
	unavailable error
}

// NewDownloadService creates a new download service
func NewDownloadService(engine domain.DownloadEngine, settings SettingsSource, logger *slog.Logger) *DownloadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DownloadService{
		engine:   engine,
		settings: settings,
		timeout:  domain.DownloadTimeout,
		logger:   logger,
	}
}

// SetTimeout overrides the engine timeout.
func (s *DownloadService) SetTimeout(d time.Duration) {
	s.timeout = d
}

// SetUnavailable records a preflight failure. Subsequent downloads fail
// with err until cleared with nil.
func (s *DownloadService) SetUnavailable(err error) {
	s.mu.Lock()
	s.unavailable = err
	s.mu.Unlock()
}

// Unavailable returns the recorded preflight failure, if any.
func (s *DownloadService) Unavailable() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unavailable
}

// Begin raises the download guard. It fails with ErrDownloadInProgress
// while another download holds it. The returned release lowers the guard
// and may be called more than once.
func (s *DownloadService) Begin() (release func(), err error) {
	if err := s.Unavailable(); err != nil {
		return nil, err
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrDownloadInProgress
	}
	var once sync.Once
	return func() {
		once.Do(func() { s.busy.Store(false) })
	}, nil
}

// InProgress reports whether the guard is raised.
func (s *DownloadService) InProgress() bool {
	return s.busy.Load()
}

// Run downloads result into the configured directory. The caller must hold
// the guard from Begin.
func (s *DownloadService) Run(ctx context.Context, result domain.SearchResult) (domain.DownloadOutcome, error) {
	settings := s.settings.Current()

	dir, err := filepath.Abs(settings.DownloadPath)
	if err != nil {
		return failed(err), goerr.Wrap(err, "failed to resolve download directory", goerr.V("path", settings.DownloadPath))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		cerr := &domain.ConfigurationError{
			Message: "Cannot create download directory: " + dir,
			Err:     goerr.Wrap(err, "failed to create download directory", goerr.V("dir", dir)),
		}
		return failed(cerr), cerr
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Info("download started",
		"title", result.Title,
		"url", result.SourceURL,
		"dir", dir,
		"quality", settings.AudioQuality)

	err = s.engine.Download(ctx, domain.DownloadRequest{
		SourceURL: result.SourceURL,
		OutputDir: dir,
		Quality:   settings.AudioQuality,
	})
	if err != nil {
		err = classifyDownloadError(ctx, err)
		s.logger.Error("download failed", "title", result.Title, "error", err)
		return failed(err), err
	}

	s.logger.Info("download finished", "title", result.Title, "dir", dir)
	return domain.DownloadOutcome{
		Succeeded:       true,
		OutputDirectory: dir,
		Message:         "Downloaded " + result.Title,
	}, nil
}

func failed(err error) domain.DownloadOutcome {
	return domain.DownloadOutcome{Message: err.Error()}
}

// classifyDownloadError maps engine errors onto the domain taxonomy.
func classifyDownloadError(ctx context.Context, err error) error {
	var timeout *domain.DownloadTimeoutError
	if errors.As(err, &timeout) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.DownloadTimeoutError{Err: err}
	}
	var failure *domain.DownloadFailure
	if errors.As(err, &failure) {
		return err
	}
	var cfg *domain.ConfigurationError
	if errors.As(err, &cfg) {
		return err
	}
	return &domain.DownloadFailure{Err: err}
}
