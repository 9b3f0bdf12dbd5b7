package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Runner drives an Engine from a Scheduler's queue on a background
// goroutine, the Go counterpart of the source's thread-backed
// executor.Runner: peek the earliest entry, fire it if due, otherwise sleep
// until it is (or until the run is stopped). Wired through
// golang.org/x/sync/errgroup so a panic-free error from the loop surfaces
// through Stop instead of being silently dropped.
type Runner struct {
	mu        sync.Mutex
	engine    *Engine
	scheduler *Scheduler

	running bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// NewRunner builds a Runner over engine, driven by scheduler.
func NewRunner(engine *Engine, scheduler *Scheduler) *Runner {
	return &Runner{engine: engine, scheduler: scheduler}
}

// Start runs Engine.Start once, then launches the poll loop on a background
// goroutine. It returns ErrAlreadyRunning if called twice without an
// intervening Stop.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}

	if err := r.engine.Start(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(runCtx)
	group.Go(func() error { return r.loop(gctx) })

	r.cancel = cancel
	r.group = group
	r.running = true
	return nil
}

// Stop cancels the poll loop and waits for it to exit, returning any error
// other than the expected context cancellation.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	cancel, group := r.cancel, r.group
	r.running = false
	r.mu.Unlock()

	cancel()
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loop is the background goroutine body: pop and fire whatever is due,
// otherwise sleep until the earliest entry is due or the context ends. An
// empty queue ends the loop, matching the source's Runner thread exiting
// once its scheduler has nothing left pending.
func (r *Runner) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entry, ok := r.scheduler.Peek()
		if !ok {
			return nil
		}

		delay := entry.Deadline.Sub(r.scheduler.Now())
		if delay <= 0 {
			popped, ok := r.scheduler.Pop()
			if !ok {
				continue
			}
			r.engine.Run(popped.Handle, popped.Trigger)
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
