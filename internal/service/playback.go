package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/ytdown/internal/domain"
)

// PlaybackController owns the playback engine, the current track list and
// the progress poll. It is driven from the UI goroutine only, except for
// StartEngine and Sample which run as background jobs.
//
// The poll is identified by a generation number. Every transition that
// starts, suspends or ends polling bumps the generation, so ticks scheduled
// for an earlier generation are ignored by Apply.
type PlaybackController struct {
	engine domain.PlaybackEngine
	volume int
	logger *slog.Logger

	tracks    []domain.Track
	state     domain.PlaybackState
	pollGen   uint64
	polling   bool
	volumeSet bool
}

// NewPlaybackController creates a controller around engine.
func NewPlaybackController(engine domain.PlaybackEngine, volume int, logger *slog.Logger) *PlaybackController {
	if logger == nil {
		logger = slog.Default()
	}
	if volume <= 0 {
		volume = domain.DefaultVolume
	}
	return &PlaybackController{
		engine: engine,
		volume: volume,
		logger: logger,
	}
}

// SetTracks replaces the track list. Any loaded track is stopped first since
// its index no longer refers to the same file.
func (c *PlaybackController) SetTracks(tracks []domain.Track) error {
	var err error
	if c.state.Loaded() {
		err = c.Stop()
	}
	c.tracks = tracks
	return err
}

// Tracks returns the current track list.
func (c *PlaybackController) Tracks() []domain.Track {
	return c.tracks
}

// State returns a copy of the playback state.
func (c *PlaybackController) State() domain.PlaybackState {
	st := c.state
	if st.CurrentIndex != nil {
		i := *st.CurrentIndex
		st.CurrentIndex = &i
	}
	return st
}

// NowPlaying returns the loaded track.
func (c *PlaybackController) NowPlaying() (domain.Track, bool) {
	if !c.state.Loaded() {
		return domain.Track{}, false
	}
	return c.tracks[*c.state.CurrentIndex], true
}

// PollGen returns the current poll generation.
func (c *PlaybackController) PollGen() uint64 {
	return c.pollGen
}

// Polling reports whether progress ticks for PollGen should be scheduled.
func (c *PlaybackController) Polling() bool {
	return c.polling
}

func (c *PlaybackController) startPoll() {
	c.pollGen++
	c.polling = true
}

func (c *PlaybackController) stopPoll() {
	c.pollGen++
	c.polling = false
}

// Play stops whatever is loaded and starts track i from the beginning.
func (c *PlaybackController) Play(i int) error {
	if i < 0 || i >= len(c.tracks) {
		return goerr.Wrap(domain.ErrIndexOutOfRange, "cannot play track",
			goerr.V("index", i),
			goerr.V("tracks", len(c.tracks)))
	}

	if c.state.Loaded() {
		if err := c.Stop(); err != nil {
			c.logger.Warn("failed to stop previous track", "error", err)
		}
	}

	if !c.volumeSet {
		if err := c.engine.SetVolume(c.volume); err != nil {
			c.logger.Warn("failed to set volume", "volume", c.volume, "error", err)
		} else {
			c.volumeSet = true
		}
	}

	track := c.tracks[i]
	if err := c.engine.Load(track.FilePath); err != nil {
		return goerr.Wrap(err, "failed to load track", goerr.V("path", track.FilePath))
	}
	if err := c.engine.Play(); err != nil {
		_ = c.engine.Stop()
		return goerr.Wrap(err, "failed to start playback", goerr.V("path", track.FilePath))
	}

	idx := i
	c.state = domain.PlaybackState{
		CurrentIndex:   &idx,
		IsPlaying:      true,
		ElapsedSeconds: 0,
		TotalSeconds:   track.DurationSeconds,
	}
	c.startPoll()

	c.logger.Info("playing track", "index", i, "title", track.Title)
	return nil
}

// TogglePlayPause plays highlighted (or the first track) when idle and
// otherwise flips between playing and paused.
func (c *PlaybackController) TogglePlayPause(highlighted int) error {
	if !c.state.Loaded() {
		if len(c.tracks) == 0 {
			return nil
		}
		if highlighted < 0 || highlighted >= len(c.tracks) {
			highlighted = 0
		}
		return c.Play(highlighted)
	}

	if c.state.IsPlaying {
		if err := c.engine.Pause(); err != nil {
			return goerr.Wrap(err, "failed to pause")
		}
		c.state.IsPlaying = false
		c.stopPoll()
		return nil
	}

	if err := c.engine.Play(); err != nil {
		return goerr.Wrap(err, "failed to resume")
	}
	c.state.IsPlaying = true
	c.startPoll()
	return nil
}

// Stop halts playback and clears the now-playing state.
func (c *PlaybackController) Stop() error {
	wasLoaded := c.state.Loaded()
	c.state = domain.PlaybackState{}
	c.stopPoll()

	if !wasLoaded {
		return nil
	}
	if err := c.engine.Stop(); err != nil {
		return goerr.Wrap(err, "failed to stop playback")
	}
	return nil
}

// Next plays the following track, wrapping to the first.
func (c *PlaybackController) Next() error {
	if len(c.tracks) == 0 {
		return nil
	}
	if c.state.Loaded() && *c.state.CurrentIndex < len(c.tracks)-1 {
		return c.Play(*c.state.CurrentIndex + 1)
	}
	return c.Play(0)
}

// Previous plays the preceding track. At the first track it restarts that
// track; with nothing loaded it plays the last track.
func (c *PlaybackController) Previous() error {
	if len(c.tracks) == 0 {
		return nil
	}
	if !c.state.Loaded() {
		return c.Play(len(c.tracks) - 1)
	}
	if cur := *c.state.CurrentIndex; cur > 0 {
		return c.Play(cur - 1)
	}
	return c.Play(0)
}

// Seek moves the playhead by offset within the loaded track.
func (c *PlaybackController) Seek(offset time.Duration) error {
	if !c.state.Loaded() {
		return nil
	}
	if err := c.engine.Seek(offset); err != nil {
		return goerr.Wrap(err, "failed to seek", goerr.V("offset", offset))
	}
	c.state.ElapsedSeconds = clamp(c.state.ElapsedSeconds+int(offset.Seconds()), 0, c.state.TotalSeconds)
	return nil
}

// StartEngine brings up the playback engine. It may block and is meant to
// run as a background job; no other method is called until it returns.
func (c *PlaybackController) StartEngine(ctx context.Context) error {
	if err := c.engine.Start(ctx); err != nil {
		return goerr.Wrap(err, "failed to start player")
	}
	return nil
}

// Sample reads progress from the engine. It touches no controller state
// and is safe to call from a background job.
func (c *PlaybackController) Sample() domain.EngineSample {
	st, err := c.engine.State()
	if err != nil {
		return domain.EngineSample{Err: err}
	}
	sample := domain.EngineSample{State: st}
	if st == domain.EnginePlaying {
		sample.Elapsed, sample.Err = c.engine.Elapsed()
	}
	return sample
}

// Apply folds a sample taken for generation gen into the playback state. It
// reports whether another tick for the same generation should be scheduled.
// Samples for stale generations are ignored.
func (c *PlaybackController) Apply(gen uint64, sample domain.EngineSample) (bool, error) {
	if gen != c.pollGen || !c.polling || !c.state.Loaded() {
		return false, nil
	}
	if sample.Err != nil {
		c.logger.Debug("engine sample unavailable", "error", sample.Err)
		return true, nil
	}

	switch sample.State {
	case domain.EngineEnded:
		cur := *c.state.CurrentIndex
		if cur+1 < len(c.tracks) {
			return false, c.Play(cur + 1)
		}
		return false, c.Stop()

	case domain.EnginePlaying:
		c.state.ElapsedSeconds = clamp(int(sample.Elapsed/time.Second), 0, c.state.TotalSeconds)
	}
	return true, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi >= lo && v > hi {
		return hi
	}
	return v
}
