package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mmcdole/ytdown/internal/jobs"
)

func runDone(t *testing.T, cmd func() any) jobs.Done {
	t.Helper()
	d, ok := cmd().(jobs.Done)
	if !ok {
		t.Fatalf("command did not produce jobs.Done")
	}
	return d
}

func TestRunnerDeliversResult(t *testing.T) {
	r := jobs.NewRunner(nil)

	cmd := r.Submit("search", func(ctx context.Context) (any, error) {
		return []string{"a", "b"}, nil
	})
	gt.True(t, r.InFlight("search"))

	d := runDone(t, func() any { return cmd() })
	gt.Equal(t, d.Slot, "search")
	gt.NoError(t, d.Err)
	gt.True(t, r.Accept(d))
	gt.Value(t, r.InFlight("search")).Equal(false)
	gt.Equal(t, d.Value.([]string), []string{"a", "b"})
}

func TestRunnerLatestSubmissionWins(t *testing.T) {
	r := jobs.NewRunner(nil)

	var firstCtx context.Context
	first := r.Submit("search", func(ctx context.Context) (any, error) {
		firstCtx = ctx
		return "first", nil
	})
	second := r.Submit("search", func(ctx context.Context) (any, error) {
		return "second", nil
	})

	// Completions may arrive in any order; only the latest is applied.
	d2 := runDone(t, func() any { return second() })
	d1 := runDone(t, func() any { return first() })

	gt.Value(t, r.Accept(d1)).Equal(false)
	gt.True(t, r.Accept(d2))
	gt.Equal(t, d2.Value.(string), "second")
	gt.Error(t, firstCtx.Err())
}

func TestRunnerSlotsAreIndependent(t *testing.T) {
	r := jobs.NewRunner(nil)

	a := r.Submit("search", func(ctx context.Context) (any, error) { return 1, nil })
	b := r.Submit("library", func(ctx context.Context) (any, error) { return 2, nil })

	gt.True(t, r.Accept(runDone(t, func() any { return a() })))
	gt.True(t, r.Accept(runDone(t, func() any { return b() })))
}

func TestRunnerRecoversPanic(t *testing.T) {
	r := jobs.NewRunner(nil)

	cmd := r.Submit("download", func(ctx context.Context) (any, error) {
		panic("boom")
	})

	d := runDone(t, func() any { return cmd() })
	gt.Error(t, d.Err)
	gt.Value(t, d.Value).Nil()
	gt.True(t, r.Accept(d))
}

func TestRunnerPropagatesTaskError(t *testing.T) {
	r := jobs.NewRunner(nil)
	want := errors.New("network down")

	cmd := r.Submit("search", func(ctx context.Context) (any, error) {
		return nil, want
	})

	d := runDone(t, func() any { return cmd() })
	gt.True(t, errors.Is(d.Err, want))
}

func TestRunnerCancelDropsCompletion(t *testing.T) {
	r := jobs.NewRunner(nil)

	started := make(chan context.Context, 1)
	cmd := r.Submit("library", func(ctx context.Context) (any, error) {
		started <- ctx
		<-ctx.Done()
		return nil, ctx.Err()
	})

	result := make(chan jobs.Done, 1)
	go func() { result <- cmd().(jobs.Done) }()

	ctx := <-started
	r.Cancel("library")

	select {
	case d := <-result:
		gt.Value(t, r.Accept(d)).Equal(false)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled task did not finish")
	}
	gt.Error(t, ctx.Err())
	gt.Value(t, r.InFlight("library")).Equal(false)
}

func TestRunnerAcceptUnknownSlot(t *testing.T) {
	r := jobs.NewRunner(nil)
	gt.Value(t, r.Accept(jobs.Done{Slot: "nope", Gen: 1})).Equal(false)
}
