package transport

import (
	"context"
	"sync"
)

// Tracker records the operations in flight for one session so they can be
// cancelled together when the session is invalidated.
type Tracker struct {
	mu          sync.Mutex
	invalidated bool
	pending     map[*handle]struct{}
	wg          sync.WaitGroup
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[*handle]struct{})}
}

// Start runs fn on its own goroutine with a context that Task.Cancel and
// Invalidate(true) cancel. If the tracker is invalidated, fn is skipped and
// reject is called on a new goroutine with ErrInvalidated instead.
func (t *Tracker) Start(ctx context.Context, fn func(ctx context.Context), reject func(error)) Task {
	t.mu.Lock()
	if t.invalidated {
		t.mu.Unlock()
		go reject(&Error{Op: "start", Err: ErrInvalidated})
		return noopTask{}
	}
	runCtx, cancel := context.WithCancelCause(ctx)
	h := &handle{cancel: cancel}
	t.pending[h] = struct{}{}
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.finish(h)
		fn(runCtx)
	}()
	return h
}

// Invalidate refuses new work. With cancelPending, operations in flight
// are cancelled with ErrInvalidated as the cause.
func (t *Tracker) Invalidate(cancelPending bool) {
	t.mu.Lock()
	t.invalidated = true
	var victims []*handle
	if cancelPending {
		for h := range t.pending {
			victims = append(victims, h)
		}
	}
	t.mu.Unlock()

	for _, h := range victims {
		h.cancel(ErrInvalidated)
	}
}

// Invalidated reports whether Invalidate has been called.
func (t *Tracker) Invalidated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.invalidated
}

// Pending returns the number of operations in flight.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Wait blocks until every started operation has returned.
func (t *Tracker) Wait() { t.wg.Wait() }

func (t *Tracker) finish(h *handle) {
	t.mu.Lock()
	delete(t.pending, h)
	t.mu.Unlock()
	h.cancel(nil)
	t.wg.Done()
}

type handle struct {
	cancel context.CancelCauseFunc
}

func (h *handle) Cancel() { h.cancel(context.Canceled) }

type noopTask struct{}

func (noopTask) Cancel() {}
