package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mmcdole/ytdown/internal/domain"
	"github.com/mmcdole/ytdown/internal/service"
)

func writeTrack(t *testing.T, dir, name string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	gt.NoError(t, os.WriteFile(path, []byte("ID3"), 0644))
	gt.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestScanOrdersNewestFirstAndSkipsUnprobeable(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	old := writeTrack(t, dir, "Old Song.mp3", base)
	newer := writeTrack(t, dir, "New Song.mp3", base.Add(time.Hour))
	broken := writeTrack(t, dir, "Broken.mp3", base.Add(2*time.Hour))
	writeTrack(t, dir, "notes.txt", base)

	prober := &fakeProber{probes: map[string]domain.MediaProbe{
		old:   {DurationSeconds: 200},
		newer: {DurationSeconds: 95, Artist: "Band"},
	}}
	_ = broken

	settings := &fakeSettings{s: domain.Settings{DownloadPath: dir}}
	svc := service.NewLibraryService(prober, nil, settings, nil)

	tracks, err := svc.Scan(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(tracks), 2)

	gt.Equal(t, tracks[0].Title, "New Song")
	gt.Equal(t, tracks[0].Artist, "Band")
	gt.Equal(t, tracks[0].Duration(), "01:35")
	gt.Equal(t, tracks[1].Title, "Old Song")
	gt.Equal(t, tracks[1].DurationSeconds, 200)
}

func TestScanTruncatesDisplayTitle(t *testing.T) {
	dir := t.TempDir()
	name := strings.Repeat("a", 60)
	path := writeTrack(t, dir, name+".mp3", time.Now())

	prober := &fakeProber{probes: map[string]domain.MediaProbe{path: {DurationSeconds: 1}}}
	svc := service.NewLibraryService(prober, nil, &fakeSettings{s: domain.Settings{DownloadPath: dir}}, nil)

	tracks, err := svc.Scan(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, tracks[0].DisplayTitle, strings.Repeat("a", 50)+"…")
	gt.Equal(t, tracks[0].Title, name)
}

func TestScanMissingDirectory(t *testing.T) {
	settings := &fakeSettings{s: domain.Settings{DownloadPath: filepath.Join(t.TempDir(), "gone")}}
	svc := service.NewLibraryService(&fakeProber{}, nil, settings, nil)

	_, err := svc.Scan(context.Background())
	var cerr *domain.ConfigurationError
	gt.True(t, errors.As(err, &cerr))
	gt.Equal(t, cerr.Message, "Download directory not found!")
}

func TestScanEmptyDirectory(t *testing.T) {
	svc := service.NewLibraryService(&fakeProber{}, nil, &fakeSettings{s: domain.Settings{DownloadPath: t.TempDir()}}, nil)

	tracks, err := svc.Scan(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(tracks), 0)
}

func TestScanReusesCachedProbes(t *testing.T) {
	dir := t.TempDir()
	path := writeTrack(t, dir, "Song.mp3", time.Now())

	prober := &fakeProber{probes: map[string]domain.MediaProbe{path: {DurationSeconds: 10}}}
	cache := &memProbeCache{data: make(map[probeKey]domain.MediaProbe)}
	svc := service.NewLibraryService(prober, cache, &fakeSettings{s: domain.Settings{DownloadPath: dir}}, nil)

	_, err := svc.Scan(context.Background())
	gt.NoError(t, err)
	_, err = svc.Scan(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, prober.calls, 1)
}

func TestFilterTracks(t *testing.T) {
	tracks := []domain.Track{
		domain.NewTrack("/a.mp3", "Moonlight Sonata", 1, time.Time{}),
		domain.NewTrack("/b.mp3", "Daft Punk Around the World", 1, time.Time{}),
	}

	all := service.FilterTracks(tracks, "")
	gt.Equal(t, len(all), 2)
	gt.Equal(t, all[1].Index, 1)

	hits := service.FilterTracks(tracks, "daft")
	gt.Equal(t, len(hits), 1)
	gt.Equal(t, hits[0].Index, 1)
	gt.Equal(t, hits[0].MatchedIndexes, []int{0, 1, 2, 3})
}
