package adapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mmcdole/ytdown/internal/domain"
)

func TestMPVCallsBeforeStart(t *testing.T) {
	m := NewMPV(PlayerConfig{Command: "mpv"}, NullLogger())

	err := m.Load("/music/a.mp3")
	gt.True(t, errors.Is(err, domain.ErrEngineUnavailable))
	gt.True(t, errors.Is(m.Play(), domain.ErrEngineUnavailable))

	gt.NoError(t, m.Stop())
	st, err := m.State()
	gt.NoError(t, err)
	gt.Equal(t, st, domain.EngineIdle)
	elapsed, err := m.Elapsed()
	gt.NoError(t, err)
	gt.Equal(t, elapsed, time.Duration(0))
	gt.NoError(t, m.Close())
}

func TestMPVStartMissingBinary(t *testing.T) {
	m := NewMPV(PlayerConfig{Command: filepath.Join(t.TempDir(), "no-mpv")}, NullLogger())

	err := m.Start(context.Background())
	gt.True(t, errors.Is(err, domain.ErrEngineUnavailable))
}

func TestMPVStartHonorsContext(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script executables are not supported on windows")
	}
	// A player that never opens its socket.
	bin := filepath.Join(t.TempDir(), "mpv")
	gt.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nsleep 30\n"), 0755))
	m := NewMPV(PlayerConfig{Command: bin}, NullLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.Start(ctx)
	gt.True(t, errors.Is(err, domain.ErrEngineUnavailable))
	gt.True(t, time.Since(start) < startTimeout)
}
