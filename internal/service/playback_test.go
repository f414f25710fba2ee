package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mmcdole/ytdown/internal/domain"
	"github.com/mmcdole/ytdown/internal/service"
)

func newController(t *testing.T, n int) (*service.PlaybackController, *fakeEngine) {
	t.Helper()
	engine := &fakeEngine{}
	c := service.NewPlaybackController(engine, 70, nil)
	tracks := make([]domain.Track, n)
	for i := range tracks {
		tracks[i] = domain.NewTrack("/music/"+string(rune('a'+i))+".mp3", string(rune('A'+i)), 180, time.Time{})
	}
	gt.NoError(t, c.SetTracks(tracks))
	return c, engine
}

func TestPlaySwitchesTrack(t *testing.T) {
	c, engine := newController(t, 3)

	gt.NoError(t, c.Play(0))
	gt.NoError(t, c.Play(2))

	st := c.State()
	gt.Equal(t, st.Index(), 2)
	gt.True(t, st.IsPlaying)
	gt.Equal(t, st.ElapsedSeconds, 0)
	gt.Equal(t, st.TotalSeconds, 180)
	gt.Equal(t, engine.loaded, "/music/c.mp3")
	gt.Equal(t, engine.count("volume"), 1)
	gt.Equal(t, engine.count("stop"), 1)
}

func TestPlayOutOfRange(t *testing.T) {
	c, engine := newController(t, 2)

	err := c.Play(5)
	gt.True(t, errors.Is(err, domain.ErrIndexOutOfRange))
	gt.Value(t, c.State().Loaded()).Equal(false)
	gt.Equal(t, len(engine.calls), 0)
}

func TestNextWrapsToFirst(t *testing.T) {
	c, _ := newController(t, 3)

	gt.NoError(t, c.Play(1))
	gt.NoError(t, c.Next())
	gt.Equal(t, c.State().Index(), 2)
	gt.NoError(t, c.Next())
	gt.Equal(t, c.State().Index(), 0)
}

func TestNextWithNothingLoadedPlaysFirst(t *testing.T) {
	c, _ := newController(t, 3)
	gt.NoError(t, c.Next())
	gt.Equal(t, c.State().Index(), 0)
}

func TestPreviousAtFirstReplaysFirst(t *testing.T) {
	c, engine := newController(t, 3)

	gt.NoError(t, c.Play(0))
	gt.NoError(t, c.Previous())
	gt.Equal(t, c.State().Index(), 0)
	gt.Equal(t, engine.count("load:/music/a.mp3"), 2)
}

func TestPreviousWithNothingLoadedPlaysLast(t *testing.T) {
	c, _ := newController(t, 3)
	gt.NoError(t, c.Previous())
	gt.Equal(t, c.State().Index(), 2)
}

func TestNavigationOnEmptyLibraryIsNoop(t *testing.T) {
	c, engine := newController(t, 0)
	gt.NoError(t, c.Next())
	gt.NoError(t, c.Previous())
	gt.NoError(t, c.TogglePlayPause(0))
	gt.Equal(t, len(engine.calls), 0)
}

func TestTogglePlayPause(t *testing.T) {
	c, engine := newController(t, 3)

	gt.NoError(t, c.TogglePlayPause(1))
	gt.Equal(t, c.State().Index(), 1)
	gen := c.PollGen()
	gt.True(t, c.Polling())

	gt.NoError(t, c.TogglePlayPause(2))
	gt.Value(t, c.State().IsPlaying).Equal(false)
	gt.Value(t, c.Polling()).Equal(false)
	gt.Equal(t, c.State().Index(), 1)

	again, _ := c.Apply(gen, c.Sample())
	gt.Value(t, again).Equal(false)

	gt.NoError(t, c.TogglePlayPause(2))
	gt.True(t, c.State().IsPlaying)
	gt.True(t, c.Polling())
	gt.Equal(t, engine.count("pause"), 1)
}

func TestToggleHighlightOutOfRangePlaysFirst(t *testing.T) {
	c, _ := newController(t, 2)
	gt.NoError(t, c.TogglePlayPause(-1))
	gt.Equal(t, c.State().Index(), 0)
}

func TestStopClearsState(t *testing.T) {
	c, _ := newController(t, 2)
	gt.NoError(t, c.Play(1))
	gen := c.PollGen()

	gt.NoError(t, c.Stop())
	st := c.State()
	gt.Value(t, st.Loaded()).Equal(false)
	gt.Value(t, st.IsPlaying).Equal(false)
	gt.Equal(t, st.ElapsedSeconds, 0)

	again, err := c.Apply(gen, c.Sample())
	gt.NoError(t, err)
	gt.Value(t, again).Equal(false)
}

func TestApplyUpdatesElapsedClamped(t *testing.T) {
	c, engine := newController(t, 2)
	gt.NoError(t, c.Play(0))
	gen := c.PollGen()

	engine.elapsed = 42 * time.Second
	again, err := c.Apply(gen, c.Sample())
	gt.NoError(t, err)
	gt.True(t, again)
	gt.Equal(t, c.State().ElapsedSeconds, 42)

	engine.elapsed = 500 * time.Second
	_, err = c.Apply(gen, c.Sample())
	gt.NoError(t, err)
	gt.Equal(t, c.State().ElapsedSeconds, 180)
}

func TestApplyEndedAdvances(t *testing.T) {
	c, engine := newController(t, 2)
	gt.NoError(t, c.Play(0))
	gen := c.PollGen()

	engine.state = domain.EngineEnded
	again, err := c.Apply(gen, c.Sample())
	gt.NoError(t, err)
	gt.Value(t, again).Equal(false)
	gt.Equal(t, c.State().Index(), 1)
	gt.True(t, c.PollGen() != gen)

	engine.state = domain.EngineEnded
	_, err = c.Apply(c.PollGen(), c.Sample())
	gt.NoError(t, err)
	gt.Value(t, c.State().Loaded()).Equal(false)
}

func TestSetTracksStopsPlayback(t *testing.T) {
	c, engine := newController(t, 2)
	gt.NoError(t, c.Play(1))

	gt.NoError(t, c.SetTracks(nil))
	gt.Value(t, c.State().Loaded()).Equal(false)
	gt.Equal(t, engine.count("stop"), 1)
}

func TestSeekClampsElapsed(t *testing.T) {
	c, engine := newController(t, 1)
	gt.NoError(t, c.Seek(5*time.Second))
	gt.Equal(t, engine.count("seek"), 0)

	gt.NoError(t, c.Play(0))
	gt.NoError(t, c.Seek(-5*time.Second))
	gt.Equal(t, c.State().ElapsedSeconds, 0)
	gt.NoError(t, c.Seek(5*time.Second))
	gt.Equal(t, c.State().ElapsedSeconds, 5)
}

func TestLoadFailureLeavesIdle(t *testing.T) {
	c, engine := newController(t, 2)
	engine.loadErr = domain.ErrEngineUnavailable

	err := c.Play(0)
	gt.True(t, errors.Is(err, domain.ErrEngineUnavailable))
	gt.Value(t, c.State().Loaded()).Equal(false)
	gt.Value(t, c.Polling()).Equal(false)
}

func TestApplyIgnoresFailedSample(t *testing.T) {
	c, _ := newController(t, 2)
	gt.NoError(t, c.Play(0))
	gt.NoError(t, c.Seek(5*time.Second))

	again, err := c.Apply(c.PollGen(), domain.EngineSample{State: domain.EngineEnded, Err: domain.ErrEngineUnavailable})
	gt.NoError(t, err)
	gt.True(t, again)
	gt.Equal(t, c.State().Index(), 0)
	gt.Equal(t, c.State().ElapsedSeconds, 5)
}

func TestSampleReadsElapsedOnlyWhilePlaying(t *testing.T) {
	c, engine := newController(t, 1)
	engine.elapsed = 30 * time.Second

	gt.Equal(t, c.Sample(), domain.EngineSample{State: domain.EngineIdle})

	gt.NoError(t, c.Play(0))
	gt.Equal(t, c.Sample(), domain.EngineSample{State: domain.EnginePlaying, Elapsed: 30 * time.Second})
}

func TestStartEngineWrapsFailure(t *testing.T) {
	c, engine := newController(t, 1)
	engine.startErr = domain.ErrEngineUnavailable

	err := c.StartEngine(context.Background())
	gt.True(t, errors.Is(err, domain.ErrEngineUnavailable))
	gt.Equal(t, engine.count("start"), 1)
}
