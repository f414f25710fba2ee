package adapter

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/DexterLB/mpvipc"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/ytdown/internal/domain"
)

// MPV implements domain.PlaybackEngine by driving an mpv process over its
// JSON IPC socket. Start must be called before any other method.
type MPV struct {
	command string
	args    []string

	mu         sync.Mutex
	cmd        *exec.Cmd
	conn       *mpvipc.Connection
	socketPath string
	logger     *slog.Logger
}

// NewMPV creates an mpv engine. command defaults to "mpv".
func NewMPV(cfg PlayerConfig, logger *slog.Logger) *MPV {
	if logger == nil {
		logger = slog.Default()
	}
	command := cfg.Command
	if command == "" {
		command = "mpv"
	}
	return &MPV{
		command: command,
		args:    cfg.Args,
		logger:  logger,
	}
}

// Connection timings.
const (
	startTimeout = 5 * time.Second
	dialInterval = 25 * time.Millisecond
	ipcTimeout   = 2 * time.Second
)

// Start spawns mpv and connects to its socket. It returns once the socket
// accepts connections, ctx is done, or startTimeout passes. Calling Start on
// a running engine is a no-op.
func (m *MPV) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil && !m.conn.IsClosed() {
		return nil
	}

	sockPath := filepath.Join(os.TempDir(), "ytdown", "mpv-"+strconv.Itoa(os.Getpid())+".sock")
	if err := os.MkdirAll(filepath.Dir(sockPath), 0755); err != nil {
		return goerr.Wrap(err, "failed to make socket directory")
	}
	if err := os.RemoveAll(sockPath); err != nil {
		return goerr.Wrap(err, "failed to clean up socket")
	}

	args := []string{
		"--idle",
		"--quiet",
		"--no-video",
		"--no-input-terminal",
		"--keep-open=yes",
		"--input-ipc-server=" + sockPath,
	}
	args = append(args, m.args...)

	cmd := exec.Command(m.command, args...)
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		return goerr.Wrap(domain.ErrEngineUnavailable, "failed to start mpv",
			goerr.V("command", m.command),
			goerr.V("cause", err.Error()))
	}

	conn := mpvipc.NewConnection(sockPath)

	ctx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	ticker := time.NewTicker(dialInterval)
	defer ticker.Stop()

	var err error
	for {
		if err = conn.Open(); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return goerr.Wrap(domain.ErrEngineUnavailable, "failed to open mpv connection",
				goerr.V("socket", sockPath),
				goerr.V("cause", err.Error()))
		case <-ticker.C:
		}
	}

	m.cmd = cmd
	m.conn = conn
	m.socketPath = sockPath
	m.logger.Info("mpv started", "pid", cmd.Process.Pid, "socket", sockPath)
	return nil
}

// current returns the open connection, or nil when mpv is not running.
func (m *MPV) current() *mpvipc.Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil || m.conn.IsClosed() {
		return nil
	}
	return m.conn
}

func (m *MPV) connection() (*mpvipc.Connection, error) {
	conn := m.current()
	if conn == nil {
		return nil, goerr.Wrap(domain.ErrEngineUnavailable, "mpv is not running")
	}
	return conn, nil
}

// mpvIPC runs fn against conn and gives up after ipcTimeout. A call that
// times out keeps running in the background until mpv answers.
func mpvIPC(conn *mpvipc.Connection, fn func(*mpvipc.Connection) (interface{}, error)) (interface{}, error) {
	type result struct {
		v   interface{}
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(conn)
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-time.After(ipcTimeout):
		return nil, goerr.Wrap(domain.ErrEngineUnavailable, "mpv did not respond",
			goerr.V("timeout", ipcTimeout))
	}
}

func mpvCall(conn *mpvipc.Connection, args ...interface{}) error {
	_, err := mpvIPC(conn, func(c *mpvipc.Connection) (interface{}, error) {
		return c.Call(args...)
	})
	return err
}

func mpvSet(conn *mpvipc.Connection, property string, value interface{}) error {
	_, err := mpvIPC(conn, func(c *mpvipc.Connection) (interface{}, error) {
		return nil, c.Set(property, value)
	})
	return err
}

func mpvGet(conn *mpvipc.Connection, property string) (interface{}, error) {
	return mpvIPC(conn, func(c *mpvipc.Connection) (interface{}, error) {
		return c.Get(property)
	})
}

// Load replaces the current media with path, paused.
func (m *MPV) Load(path string) error {
	conn, err := m.connection()
	if err != nil {
		return err
	}
	if err := mpvSet(conn, "pause", true); err != nil {
		return goerr.Wrap(err, "failed to pause before load")
	}
	if err := mpvCall(conn, "loadfile", path, "replace"); err != nil {
		return goerr.Wrap(err, "failed to load file", goerr.V("path", path))
	}
	return nil
}

// Play resumes playback of the loaded media.
func (m *MPV) Play() error {
	return m.setPause(false)
}

// Pause pauses playback.
func (m *MPV) Pause() error {
	return m.setPause(true)
}

func (m *MPV) setPause(paused bool) error {
	conn, err := m.connection()
	if err != nil {
		return err
	}
	if err := mpvSet(conn, "pause", paused); err != nil {
		return goerr.Wrap(err, "failed to set pause", goerr.V("pause", paused))
	}
	return nil
}

// Stop unloads the current media. The mpv process keeps running idle.
func (m *MPV) Stop() error {
	conn := m.current()
	if conn == nil {
		return nil
	}
	if err := mpvCall(conn, "stop"); err != nil {
		return goerr.Wrap(err, "failed to stop playback")
	}
	return nil
}

// Seek moves the playhead by offset relative to the current position.
func (m *MPV) Seek(offset time.Duration) error {
	conn, err := m.connection()
	if err != nil {
		return err
	}
	if err := mpvCall(conn, "seek", offset.Seconds(), "relative"); err != nil {
		return goerr.Wrap(err, "failed to seek", goerr.V("offset", offset))
	}
	return nil
}

// SetVolume sets the output volume in percent.
func (m *MPV) SetVolume(volume int) error {
	conn, err := m.connection()
	if err != nil {
		return err
	}
	if err := mpvSet(conn, "volume", volume); err != nil {
		return goerr.Wrap(err, "failed to set volume", goerr.V("volume", volume))
	}
	return nil
}

// Elapsed returns the playback position of the loaded media.
func (m *MPV) Elapsed() (time.Duration, error) {
	conn := m.current()
	if conn == nil {
		return 0, nil
	}
	v, err := mpvGet(conn, "time-pos")
	if err != nil {
		// time-pos is unavailable while nothing is loaded.
		return 0, nil
	}
	pos, ok := v.(float64)
	if !ok {
		return 0, nil
	}
	return time.Duration(pos * float64(time.Second)), nil
}

// State maps mpv properties onto the engine state machine.
func (m *MPV) State() (domain.EngineState, error) {
	conn := m.current()
	if conn == nil {
		return domain.EngineIdle, nil
	}

	if idle, err := getBool(conn, "idle-active"); err != nil || idle {
		return domain.EngineIdle, nil
	}
	if eof, err := getBool(conn, "eof-reached"); err == nil && eof {
		return domain.EngineEnded, nil
	}
	paused, err := getBool(conn, "pause")
	if err != nil {
		return domain.EngineIdle, nil
	}
	if paused {
		return domain.EnginePaused, nil
	}
	return domain.EnginePlaying, nil
}

func getBool(conn *mpvipc.Connection, property string) (bool, error) {
	v, err := mpvGet(conn, property)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

// Close terminates the mpv process. It is safe to call more than once.
func (m *MPV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil
	}
	m.conn.Close()
	m.conn = nil

	if err := m.cmd.Process.Signal(os.Interrupt); err != nil {
		m.logger.Warn("failed to interrupt mpv, killing", "error", err)
		if err := m.cmd.Process.Kill(); err != nil {
			m.logger.Error("failed to kill mpv", "error", err)
		}
	}
	// Wait for mpv to finish up.
	_ = m.cmd.Wait()

	if err := os.Remove(m.socketPath); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("failed to clean up socket", "error", err)
	}
	return nil
}
