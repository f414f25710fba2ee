package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/ytdown/internal/domain"
	"github.com/sahilm/fuzzy"
)

// probeCache remembers probes of unchanged files (consumer-defined interface)
type probeCache interface {
	GetProbe(path string, modTime time.Time, size int64) (domain.MediaProbe, bool)
	PutProbe(path string, modTime time.Time, size int64, probe domain.MediaProbe) error
}

// LibraryService scans the download directory for playable tracks
type LibraryService struct {
	prober   domain.MediaProber
	cache    probeCache
	settings SettingsSource
	logger   *slog.Logger
}

// NewLibraryService creates a new library service. cache may be nil.
func NewLibraryService(prober domain.MediaProber, cache probeCache, settings SettingsSource, logger *slog.Logger) *LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryService{
		prober:   prober,
		cache:    cache,
		settings: settings,
		logger:   logger,
	}
}

// Scan lists *.mp3 files in the download directory, newest first.
// Files that cannot be probed are skipped.
func (s *LibraryService) Scan(ctx context.Context) ([]domain.Track, error) {
	dir := s.settings.Current().DownloadPath
	if strings.TrimSpace(dir) == "" {
		return nil, &domain.ConfigurationError{Message: "Download path not configured!"}
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, &domain.ConfigurationError{
			Message: "Download directory not found!",
			Err:     goerr.Wrap(os.ErrNotExist, "download directory missing", goerr.V("dir", dir)),
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list library", goerr.V("dir", dir))
	}

	tracks := make([]domain.Track, 0, len(matches))
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fi, err := os.Stat(path)
		if err != nil || fi.IsDir() {
			continue
		}

		probe, err := s.probe(path, fi)
		if err != nil {
			s.logger.Warn("skipping unreadable track", "path", path, "error", err)
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		track := domain.NewTrack(path, stem, probe.DurationSeconds, fi.ModTime())
		track.Artist = probe.Artist
		tracks = append(tracks, track)
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].ModTime.After(tracks[j].ModTime)
	})

	s.logger.Info("library scanned", "dir", dir, "files", len(matches), "tracks", len(tracks))
	return tracks, nil
}

func (s *LibraryService) probe(path string, fi os.FileInfo) (domain.MediaProbe, error) {
	if s.cache != nil {
		if p, ok := s.cache.GetProbe(path, fi.ModTime(), fi.Size()); ok {
			return p, nil
		}
	}
	p, err := s.prober.Probe(path)
	if err != nil {
		return domain.MediaProbe{}, err
	}
	if s.cache != nil {
		if err := s.cache.PutProbe(path, fi.ModTime(), fi.Size(), p); err != nil {
			s.logger.Debug("failed to cache probe", "path", path, "error", err)
		}
	}
	return p, nil
}

// TrackMatch is a library filter hit. MatchedIndexes are byte offsets into
// the track's DisplayTitle.
type TrackMatch struct {
	Index          int
	MatchedIndexes []int
}

// trackSource implements fuzzy.Source over display titles
type trackSource []domain.Track

func (t trackSource) String(i int) string { return t[i].DisplayTitle }
func (t trackSource) Len() int            { return len(t) }

// FilterTracks fuzzily matches pattern against track display titles, best
// match first. An empty pattern returns every track in order.
func FilterTracks(tracks []domain.Track, pattern string) []TrackMatch {
	if strings.TrimSpace(pattern) == "" {
		all := make([]TrackMatch, len(tracks))
		for i := range tracks {
			all[i] = TrackMatch{Index: i}
		}
		return all
	}

	matches := fuzzy.FindFrom(pattern, trackSource(tracks))
	out := make([]TrackMatch, len(matches))
	for i, m := range matches {
		out[i] = TrackMatch{Index: m.Index, MatchedIndexes: m.MatchedIndexes}
	}
	return out
}
