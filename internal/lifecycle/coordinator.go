// Package lifecycle binds authentication transitions to cache
// population and eviction.
package lifecycle

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/arnfell/driftline/internal/models"
)

// Actions is the slice of the hub the coordinator drives.
type Actions interface {
	LoadEssential(ctx context.Context)
	ClearAll()
}

// Coordinator reacts to auth-state transitions: an authenticated
// non-anonymous identity loads the essential domains, a sign-out clears
// everything, and anonymous sessions deliberately touch nothing.
//
// Concurrency model: a single internal loop (goroutine) owns the
// previous-state comparison, so notifications are serialized and each
// distinct transition acts exactly once. Redundant notifications that
// leave the state unchanged are dropped.
type Coordinator struct {
	actions Actions
	logger  *slog.Logger

	observeCh chan models.AuthState
	stopCh    chan struct{}
	stopped   chan struct{}
	closed    atomic.Bool
}

// New creates a coordinator and starts its loop.
func New(actions Actions, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		actions:   actions,
		logger:    logger,
		observeCh: make(chan models.AuthState, 16),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Coordinator) run() {
	defer close(c.stopped)

	var prev *models.AuthState
	for {
		select {
		case <-c.stopCh:
			return
		case state := <-c.observeCh:
			if prev != nil && prev.Equal(state) {
				continue
			}
			snapshot := state
			prev = &snapshot
			c.apply(state)
		}
	}
}

func (c *Coordinator) apply(state models.AuthState) {
	switch {
	case state.IsAuthenticated && state.Identity != nil && !state.Identity.IsAnonymous:
		c.logger.Info("lifecycle: authenticated, loading essential domains",
			slog.String("user_id", state.Identity.ID))
		c.actions.LoadEssential(context.Background())
	case !state.IsAuthenticated:
		c.logger.Info("lifecycle: signed out, clearing caches")
		c.actions.ClearAll()
	default:
		// Anonymous session: never populate personal-data caches.
		c.logger.Debug("lifecycle: anonymous session, no action")
	}
}

// Observe enqueues an auth-state notification. Safe to call from any
// goroutine; a closed coordinator drops the notification.
func (c *Coordinator) Observe(state models.AuthState) {
	if c.closed.Load() {
		return
	}
	select {
	case c.observeCh <- state:
	case <-c.stopped:
	}
}

// Close stops the loop and waits for it to drain.
func (c *Coordinator) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	<-c.stopped
}
