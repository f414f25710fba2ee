package domain

import (
	"fmt"
	"time"
)

// TrackTitleDisplayLength is the number of runes of a track title shown in
// the library before the ellipsis marker.
const TrackTitleDisplayLength = 50

// Track is a downloaded audio file in the library.
type Track struct {
	FilePath        string
	Title           string
	Artist          string
	DurationSeconds int
	DisplayTitle    string
	ModTime         time.Time
}

// NewTrack builds a Track, deriving its display title.
func NewTrack(path, title string, durationSeconds int, modTime time.Time) Track {
	return Track{
		FilePath:        path,
		Title:           title,
		DurationSeconds: durationSeconds,
		DisplayTitle:    Truncate(title, TrackTitleDisplayLength),
		ModTime:         modTime,
	}
}

// Duration returns the probed length formatted as MM:SS.
func (t Track) Duration() string {
	return FormatSeconds(t.DurationSeconds)
}

// MediaProbe is the metadata extracted from an audio file.
type MediaProbe struct {
	DurationSeconds int
	Title           string
	Artist          string
}

// MediaProber reads duration and tags from an audio file.
type MediaProber interface {
	Probe(path string) (MediaProbe, error)
}

// FormatSeconds formats a second count as MM:SS.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
