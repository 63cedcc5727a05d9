// Package goroutine runs background work with a bounded number of
// goroutines and a drain step for graceful shutdown.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/emailcode/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager gets a
// non-positive limit.
const DefaultMaxGoroutine int = 100

// Manager schedules fire-and-forget tasks. Tasks that do not fit in the
// limit are dropped with a warning rather than queued.
type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	mu     sync.Mutex
	errs   []error
	closed bool
}

func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}
	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go runs f in a new goroutine. f receives a context detached from the
// caller's cancellation so work started by a request outlives the response.
// It reports whether f was scheduled.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		slog.WarnContext(ctx, "goroutine manager is closed, task dropped")
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		g.mu.Unlock()
		slog.WarnContext(ctx, "maximum goroutine limit reached, task dropped")
		return false
	}
	g.wg.Add(1)
	g.mu.Unlock()

	taskCtx := context.WithoutCancel(ctx)
	go func() {
		defer g.wg.Done()
		defer func() { <-g.sema }()
		defer func() {
			if rvr := recover(); rvr != nil {
				slog.ErrorContext(taskCtx, "panic occurred in goroutine",
					"panic", rvr, "stack", stacktrace.InternalPaths(debug.Stack()))
			}
		}()

		if err := f(taskCtx); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	}()

	return true
}

// Wait stops accepting tasks, blocks until running ones finish and returns
// their joined errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
