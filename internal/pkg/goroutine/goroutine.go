// Package goroutine runs the app's long lived background work: broker
// consumers and periodic jobs.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/shandysiswandi/otpflow/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine per CPU applies when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

var (
	ErrManagerClosed = errors.New("goroutine: manager is closed")
	ErrLimitReached  = errors.New("goroutine: concurrency limit reached")
)

// Manager starts named tasks up to a fixed concurrency and remembers their
// failures. A panicking task is recovered and reported as an error.
type Manager struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	sema   chan struct{}
	errs   []error
	closed bool
}

func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go starts f unless the manager is closed or full, in which case the
// returned error says why and f never runs.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager closed, task not started", "task", name)
		return ErrManagerClosed
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "goroutine limit reached, task not started", "task", name)
		return ErrLimitReached
	}

	g.wg.Go(func() {
		defer func() { <-g.sema }()

		if err := g.run(ctx, name, f); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	})

	return nil
}

func (g *Manager) run(ctx context.Context, name string, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "panic", rvr, stacktrace.Attr())
			err = fmt.Errorf("goroutine %s: panic: %v", name, rvr)
		}
	}()

	if ctx.Err() != nil {
		slog.WarnContext(ctx, "goroutine canceled before start", "task", name, "because", ctx.Err())
		return nil
	}

	if err := f(ctx); err != nil {
		return fmt.Errorf("goroutine %s: %w", name, err)
	}
	return nil
}

// Wait closes the manager to new tasks, blocks until running ones return
// and joins their errors.
func (g *Manager) Wait() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
