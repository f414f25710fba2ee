package domain

import (
	"context"
	"time"
)

// Playback engine defaults.
const (
	DefaultVolume        = 70
	ProgressPollInterval = 500 * time.Millisecond
)

// EngineState is the coarse state reported by the playback engine.
type EngineState int

const (
	EngineIdle EngineState = iota
	EnginePlaying
	EnginePaused
	EngineEnded
)

func (s EngineState) String() string {
	switch s {
	case EnginePlaying:
		return "playing"
	case EnginePaused:
		return "paused"
	case EngineEnded:
		return "ended"
	default:
		return "idle"
	}
}

// PlaybackEngine controls the external media player.
// Only one media handle is ever open; Load replaces the current one.
// Start brings the player up and must succeed before any other call;
// it is the only call that may take long and is never made from the UI
// goroutine.
type PlaybackEngine interface {
	Start(ctx context.Context) error
	Load(path string) error
	Play() error
	Pause() error
	Stop() error
	Seek(offset time.Duration) error
	SetVolume(volume int) error
	Elapsed() (time.Duration, error)
	State() (EngineState, error)
}

// EngineSample is one progress reading taken off the UI goroutine.
// Err is set when the engine could not be queried; the reading is then
// ignored and the poll continues.
type EngineSample struct {
	State   EngineState
	Elapsed time.Duration
	Err     error
}

// PlaybackState is the current-track state owned by the playback controller.
// CurrentIndex is nil iff no media is loaded.
type PlaybackState struct {
	CurrentIndex   *int
	IsPlaying      bool
	ElapsedSeconds int
	TotalSeconds   int
}

// Loaded reports whether a track is loaded into the engine.
func (s PlaybackState) Loaded() bool {
	return s.CurrentIndex != nil
}

// Index returns the current index, or -1 when nothing is loaded.
func (s PlaybackState) Index() int {
	if s.CurrentIndex == nil {
		return -1
	}
	return *s.CurrentIndex
}
