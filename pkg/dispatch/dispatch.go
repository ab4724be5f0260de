// Package dispatch supplies the execution contexts used for asynchronous work.
//
// A ContextProvider hands out three executors. Main runs one task at a time,
// IO allows many concurrent blocking tasks, and Default is bounded by the
// number of CPUs. Tests swap in UnconfinedContextProvider, which runs every
// task inline on the caller's goroutine.
package dispatch

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Task is a unit of work run by an Executor.
type Task func(ctx context.Context) error

// Executor runs tasks.
type Executor interface {
	// Execute runs fn and waits for it.
	Execute(ctx context.Context, fn Task) error
	// Launch runs fn asynchronously. The channel receives exactly one result.
	Launch(ctx context.Context, fn Task) <-chan error
}

// ContextProvider supplies the executors for the application.
type ContextProvider interface {
	Main() Executor
	IO() Executor
	Default() Executor
}

// IOParallelism bounds concurrent tasks on the IO executor.
const IOParallelism = 64

type provider struct {
	main, io, def Executor
}

func (p *provider) Main() Executor    { return p.main }
func (p *provider) IO() Executor      { return p.io }
func (p *provider) Default() Executor { return p.def }

// MainContextProvider returns the production provider.
func MainContextProvider() ContextProvider {
	return &provider{
		main: NewBoundedExecutor(1),
		io:   NewBoundedExecutor(IOParallelism),
		def:  NewBoundedExecutor(int64(runtime.GOMAXPROCS(0))),
	}
}

// UnconfinedContextProvider runs everything on the calling goroutine.
func UnconfinedContextProvider() ContextProvider {
	ex := inlineExecutor{}
	return &provider{main: ex, io: ex, def: ex}
}

// BoundedExecutor limits the number of tasks running at once.
type BoundedExecutor struct {
	sem *semaphore.Weighted
}

// NewBoundedExecutor creates an executor running at most limit tasks at once.
func NewBoundedExecutor(limit int64) *BoundedExecutor {
	if limit < 1 {
		limit = 1
	}
	return &BoundedExecutor{sem: semaphore.NewWeighted(limit)}
}

// Execute waits for a slot, then runs fn on the calling goroutine.
func (e *BoundedExecutor) Execute(ctx context.Context, fn Task) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.sem.Release(1)
	return fn(ctx)
}

// Launch runs fn on a new goroutine once a slot is free.
func (e *BoundedExecutor) Launch(ctx context.Context, fn Task) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- e.Execute(ctx, fn)
	}()
	return done
}

type inlineExecutor struct{}

func (inlineExecutor) Execute(ctx context.Context, fn Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (e inlineExecutor) Launch(ctx context.Context, fn Task) <-chan error {
	done := make(chan error, 1)
	done <- e.Execute(ctx, fn)
	return done
}

// Group runs tasks on ex and waits for all of them. The first error cancels
// the group's context.
type Group struct {
	eg  *errgroup.Group
	ctx context.Context
	ex  Executor
}

// NewGroup creates a group bound to ctx.
func NewGroup(ctx context.Context, ex Executor) *Group {
	eg, gctx := errgroup.WithContext(ctx)
	return &Group{eg: eg, ctx: gctx, ex: ex}
}

// Go schedules fn.
func (g *Group) Go(fn Task) {
	g.eg.Go(func() error {
		return g.ex.Execute(g.ctx, fn)
	})
}

// Wait blocks until all tasks finish and returns the first error.
func (g *Group) Wait() error {
	return g.eg.Wait()
}
