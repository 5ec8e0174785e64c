// Package jobsys provides the cooperative job-group primitive the frame
// graph core uses for parallel command-list recording. It is the concrete
// stand-in for the engine's job system described by the specification:
// Reserve, AddJob, Execute (synchronous join), and ExecuteAsync.
package jobsys

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Group batches a set of independent jobs (recording closures) and joins
// them, surfacing the first error any job returned.
//
// A Group is single-use: once Execute or ExecuteAsync has been called it
// must be discarded.
type Group struct {
	eg    *errgroup.Group
	ctx   context.Context
	cap   int
	n     int
	limit int
}

// NewGroup creates a job group bound to ctx. limit caps concurrent jobs;
// a limit of 0 defaults to runtime.GOMAXPROCS(0), matching the
// specification's "one worker per available logical core".
func NewGroup(ctx context.Context, limit int) *Group {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	return &Group{eg: eg, ctx: egCtx, limit: limit}
}

// Reserve is a hint for how many jobs will be added; it has no effect
// beyond documenting intent, since errgroup needs no pre-sized backing
// store, but it keeps call sites symmetric with the specification's
// JobGroup::Reserve(n).
func (g *Group) Reserve(n int) {
	g.cap = n
}

// AddJob schedules f to run on the group's worker pool. f may start
// executing before AddJob returns.
func (g *Group) AddJob(f func() error) {
	g.n++
	g.eg.Go(f)
}

// Context returns the context jobs should observe for cancellation; it is
// canceled as soon as any job returns a non-nil error.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Execute blocks until every added job has returned, then returns the
// first non-nil error encountered (errgroup's standard first-error
// semantics) — the join point at which a recording closure's error
// propagates back to the caller.
func (g *Group) Execute() error {
	return g.eg.Wait()
}

// ExecuteAsync runs Execute on a background goroutine and returns a
// channel that receives exactly one value: the result of Execute.
func (g *Group) ExecuteAsync() <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- g.Execute()
	}()
	return done
}
