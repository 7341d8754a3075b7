// Package trigger decides when a reconciliation pass runs: on a
// reconnection edge from the connectivity monitor, on a host-provided
// background-wake signal, or on an explicit "sync now" action. It owns the
// engine's single synchronization primitive, the reentrancy guard that
// collapses concurrent triggers into a no-op.
package trigger

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/avelichka/lectern/internal/client/connectivity"
	"github.com/avelichka/lectern/internal/client/reconcile"
	"github.com/avelichka/lectern/internal/logging"
)

// Syncer runs one reconciliation pass; *reconcile.Syncer is the real
// implementation.
type Syncer interface {
	Sync(ctx context.Context) (*reconcile.Report, error)
}

// Trigger wires trigger sources to the syncer.
type Trigger struct {
	monitor *connectivity.Monitor
	syncer  Syncer
	logger  logging.Logger

	inFlight atomic.Bool
	wake     chan struct{}
	manual   chan struct{}

	mu   sync.Mutex
	last *reconcile.Report
}

func New(monitor *connectivity.Monitor, syncer Syncer, logger logging.Logger) *Trigger {
	return &Trigger{
		monitor: monitor,
		syncer:  syncer,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		manual:  make(chan struct{}, 1),
	}
}

// Wake is the host platform's background-wake entry point, safe to call
// from any goroutine. Signals coalesce while a pass is pending.
func (t *Trigger) Wake() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// SyncNow requests a manual pass, safe to call from any goroutine.
func (t *Trigger) SyncNow() {
	select {
	case t.manual <- struct{}{}:
	default:
	}
}

// Syncing reports whether a pass is currently in flight.
func (t *Trigger) Syncing() bool {
	return t.inFlight.Load()
}

// LastReport returns the report of the most recent completed pass, or nil.
func (t *Trigger) LastReport() *reconcile.Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// TrySync runs one pass unless another is already in flight, in which case
// it returns immediately with ok=false. The same queue contents are never
// submitted twice concurrently.
func (t *Trigger) TrySync(ctx context.Context) (ok bool, err error) {
	if !t.inFlight.CompareAndSwap(false, true) {
		t.logger.Debug(ctx, "sync already in flight, trigger collapsed")
		return false, nil
	}
	defer t.inFlight.Store(false)

	report, err := t.syncer.Sync(ctx)
	if err != nil {
		// Failed pass: the queue is retained as-is for the next trigger.
		t.logger.Error(ctx, "sync pass failed", "error", err)
		return true, err
	}

	t.mu.Lock()
	t.last = report
	t.mu.Unlock()
	return true, nil
}

// Run consumes trigger sources until ctx is canceled. Passes run
// sequentially on this goroutine; sources that fire mid-pass stay pending
// in their buffered channels and cause a follow-up pass, which picks up
// anything enqueued while the previous batch was in flight.
func (t *Trigger) Run(ctx context.Context) {
	online := t.monitor.OnOnline()

	for {
		select {
		case <-online:
			t.logger.Info(ctx, "connectivity restored, triggering sync")
			_, _ = t.TrySync(ctx)
		case <-t.wake:
			t.logger.Info(ctx, "background wake, triggering sync")
			_, _ = t.TrySync(ctx)
		case <-t.manual:
			t.logger.Info(ctx, "manual sync requested")
			_, _ = t.TrySync(ctx)
		case <-ctx.Done():
			return
		}
	}
}
