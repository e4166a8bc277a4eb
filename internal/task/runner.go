// Package task provides a bounded asynchronous runner with awaitable,
// cancelable handles.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrRunnerClosed = errors.New("runner closed")
	ErrNotDone      = errors.New("task not done")
)

// Func is a unit of work. It must honor ctx cancellation.
type Func func(ctx context.Context) error

// Handle tracks a submitted task.
type Handle struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// Await blocks until the task finishes or ctx is done.
func (h *Handle) Await(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitTimeout blocks until the task finishes or the timeout elapses.
func (h *Handle) AwaitTimeout(d time.Duration) error {
	select {
	case <-h.done:
		return h.Err()
	case <-time.After(d):
		return context.DeadlineExceeded
	}
}

// Cancel signals the task's context. The task itself decides when to stop.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed when the task has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the task's result error, or ErrNotDone while it is running.
func (h *Handle) Err() error {
	select {
	case <-h.done:
	default:
		return ErrNotDone
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Runner executes tasks on goroutines with a concurrency ceiling. Submissions
// beyond the ceiling queue on the internal semaphore rather than failing.
type Runner struct {
	sem    chan struct{}
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewRunner(maxConcurrency int, logger *slog.Logger) *Runner {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Runner{
		sem:    make(chan struct{}, maxConcurrency),
		logger: logger,
	}
}

// Submit schedules fn and returns its handle. The task context derives from
// ctx, so caller cancellation propagates.
func (r *Runner) Submit(ctx context.Context, name string, fn Func) (*Handle, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRunnerClosed
	}
	r.wg.Add(1)
	r.mu.Unlock()

	taskCtx, cancel := context.WithCancel(ctx)
	h := &Handle{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer r.wg.Done()
		defer cancel()
		defer close(h.done)

		select {
		case r.sem <- struct{}{}:
		case <-taskCtx.Done():
			h.mu.Lock()
			h.err = taskCtx.Err()
			h.mu.Unlock()
			return
		}
		defer func() { <-r.sem }()

		err := r.run(taskCtx, name, fn)
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
	}()

	return h, nil
}

func (r *Runner) run(ctx context.Context, name string, fn Func) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task %s panicked: %v", name, rec)
			r.logger.Error("task panic recovered", "task", name, "panic", rec)
		}
	}()
	return fn(ctx)
}

// Shutdown stops accepting tasks and waits for running ones, up to ctx.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
