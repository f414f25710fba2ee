// Package jobs runs background work for the TUI.
//
// Each named slot holds at most one live task. Submitting to an occupied slot
// supersedes the previous task: its context is cancelled and its completion
// is dropped when it eventually arrives. Completions are delivered as Done
// messages through the Bubble Tea update loop, never by calling into the UI
// from a worker goroutine.
package jobs

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Task is the unit of work executed off the update loop.
type Task func(ctx context.Context) (any, error)

// Done is delivered to the update loop when a task finishes.
type Done struct {
	Slot  string
	Gen   uint64
	ID    string
	Value any
	Err   error
}

type slot struct {
	gen      uint64
	cancel   context.CancelFunc
	inFlight bool
}

// Runner is a generation-tagged, per-slot task executor.
type Runner struct {
	mu     sync.Mutex
	slots  map[string]*slot
	logger *slog.Logger
}

// NewRunner creates a runner with no active slots
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		slots:  make(map[string]*slot),
		logger: logger,
	}
}

func (r *Runner) slotLocked(name string) *slot {
	s, ok := r.slots[name]
	if !ok {
		s = &slot{}
		r.slots[name] = s
	}
	return s
}

// Submit supersedes whatever is running in the slot and returns a command
// that executes task and reports a Done message.
func (r *Runner) Submit(name string, task Task) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	r.mu.Lock()
	s := r.slotLocked(name)
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = cancel
	s.inFlight = true
	gen := s.gen
	r.mu.Unlock()

	r.logger.Debug("job submitted", "slot", name, "gen", gen, "job", id)

	return func() tea.Msg {
		defer cancel()
		value, err := r.run(ctx, name, id, task)
		return Done{Slot: name, Gen: gen, ID: id, Value: value, Err: err}
	}
}

// run executes task, converting a panic into an error value.
func (r *Runner) run(ctx context.Context, name, id string, task Task) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic in job",
				"slot", name,
				"job", id,
				"recover", p,
				"stack", string(debug.Stack()))
			value = nil
			err = goerr.New("background job failed unexpectedly",
				goerr.V("slot", name),
				goerr.V("panic", p))
		}
	}()
	return task(ctx)
}

// Accept reports whether d is the current completion of its slot and marks
// the slot idle when it is. Stale completions return false and should be
// dropped by the caller.
func (r *Runner) Accept(d Done) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[d.Slot]
	if !ok || s.gen != d.Gen {
		r.logger.Debug("dropping stale job result", "slot", d.Slot, "gen", d.Gen, "job", d.ID)
		return false
	}
	s.inFlight = false
	s.cancel = nil
	return true
}

// Cancel supersedes the slot's in-flight task without starting a new one.
func (r *Runner) Cancel(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[name]
	if !ok {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.inFlight = false
}

// InFlight reports whether the slot has a task whose result is still wanted.
func (r *Runner) InFlight(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[name]
	return ok && s.inFlight
}
