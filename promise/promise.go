// Package promise provides a single-assignment result cell with
// cancellation, used to deliver exactly one terminal outcome per request.
//
// The first of Resolve, Reject or Cancel wins; later calls are no-ops and
// report false. Callbacks registered with Then run once, after completion,
// and never run for a cancelled promise.
package promise

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled is returned by Await for a cancelled promise.
var ErrCancelled = errors.New("promise: cancelled")

type state int

const (
	pending state = iota
	resolved
	rejected
	cancelled
)

// Promise holds the eventual result of an asynchronous operation.
type Promise[T any] struct {
	mu       sync.Mutex
	state    state
	value    T
	err      error
	done     chan struct{}
	then     []func(T, error)
	onCancel []func()
}

// New creates a pending promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Resolve completes p with v.
func (p *Promise[T]) Resolve(v T) bool {
	return p.complete(resolved, v, nil)
}

// Reject completes p with err.
func (p *Promise[T]) Reject(err error) bool {
	var zero T
	return p.complete(rejected, zero, err)
}

func (p *Promise[T]) complete(s state, v T, err error) bool {
	p.mu.Lock()
	if p.state != pending {
		p.mu.Unlock()
		return false
	}
	p.state, p.value, p.err = s, v, err
	callbacks := p.then
	p.then, p.onCancel = nil, nil
	close(p.done)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(v, err)
	}
	return true
}

// Cancel cancels a pending promise and runs the OnCancel hooks. It has no
// effect once the promise completed.
func (p *Promise[T]) Cancel() bool {
	p.mu.Lock()
	if p.state != pending {
		p.mu.Unlock()
		return false
	}
	p.state, p.err = cancelled, ErrCancelled
	hooks := p.onCancel
	p.then, p.onCancel = nil, nil
	close(p.done)
	p.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return true
}

// OnCancel registers fn to run if p is cancelled while pending. It runs
// immediately when p is already cancelled.
func (p *Promise[T]) OnCancel(fn func()) {
	p.mu.Lock()
	switch p.state {
	case pending:
		p.onCancel = append(p.onCancel, fn)
		p.mu.Unlock()
	case cancelled:
		p.mu.Unlock()
		fn()
	default:
		p.mu.Unlock()
	}
}

// Then registers fn to receive the outcome. It runs immediately when p has
// already completed and never runs when p is cancelled.
func (p *Promise[T]) Then(fn func(T, error)) {
	p.mu.Lock()
	switch p.state {
	case pending:
		p.then = append(p.then, fn)
		p.mu.Unlock()
	case resolved, rejected:
		v, err := p.value, p.err
		p.mu.Unlock()
		fn(v, err)
	default:
		p.mu.Unlock()
	}
}

// Done is closed once p reaches a terminal state.
func (p *Promise[T]) Done() <-chan struct{} { return p.done }

// Cancelled reports whether p was cancelled.
func (p *Promise[T]) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == cancelled
}

// Result returns the outcome without blocking; done is false while pending.
func (p *Promise[T]) Result() (v T, done bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == pending {
		return v, false, nil
	}
	return p.value, true, p.err
}

// Await blocks until p completes or ctx ends. Ending ctx does not cancel p.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		v, _, err := p.Result()
		return v, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
