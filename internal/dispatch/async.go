// Package dispatch composes event sinks: fan-out and fire-and-forget delivery.
package dispatch

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/ports"
)

// DefaultBuffer is the queue capacity used when none is given.
const DefaultBuffer = 256

// Async forwards sink calls from a single background goroutine. Emit and
// Assigned never block: when the queue is full the call is dropped.
type Async struct {
	next    ports.EventSink
	log     *zap.SugaredLogger
	queue   chan func(context.Context)
	done    chan struct{}
	closeMu sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewAsync starts the delivery goroutine. Close must be called to stop it.
func NewAsync(next ports.EventSink, buffer int, log *zap.SugaredLogger) *Async {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	a := &Async{
		next:  next,
		log:   log,
		queue: make(chan func(context.Context), buffer),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	// Delivery outlives the caller's request, so it gets its own context.
	ctx := context.Background()
	for job := range a.queue {
		job(ctx)
	}
}

func (a *Async) enqueue(kind string, job func(context.Context)) {
	a.closeMu.RLock()
	defer a.closeMu.RUnlock()
	if a.closed {
		a.dropped.Add(1)
		return
	}
	select {
	case a.queue <- job:
	default:
		n := a.dropped.Add(1)
		a.log.Debugw("sink queue full, dropping", "kind", kind, "dropped", n)
	}
}

func (a *Async) Emit(_ context.Context, ev domain.TrackedEvent) {
	a.enqueue("event", func(ctx context.Context) { a.next.Emit(ctx, ev) })
}

func (a *Async) Assigned(_ context.Context, experiment string, v domain.Variant) {
	a.enqueue("assignment", func(ctx context.Context) { a.next.Assigned(ctx, experiment, v) })
}

// Dropped reports how many calls were discarded.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Close stops accepting work, waits for the queue to drain or ctx to end,
// then closes the wrapped sink. Calls after Close are dropped.
func (a *Async) Close(ctx context.Context) error {
	a.closeMu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.closeMu.Unlock()

	select {
	case <-a.done:
	case <-ctx.Done():
		a.log.Warnw("sink drain interrupted", "error", ctx.Err())
		return ctx.Err()
	}

	if n := a.dropped.Load(); n > 0 {
		a.log.Infow("sink dropped events", "dropped", n)
	}
	return a.next.Close(ctx)
}
