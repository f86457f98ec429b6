package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	verrors "github.com/kbukum/vimeonet/errors"
	"github.com/kbukum/vimeonet/promise"
)

// Response is a successful outcome.
type Response[T any] struct {
	// Model is the decoded payload. For downloads it is the destination path.
	Model T
	// Raw is the full response body, before ModelKeyPath selection.
	Raw        []byte
	StatusCode int
	Header     http.Header
	// CacheKey is the request fingerprint, set when the policy used the cache.
	CacheKey  string
	FromCache bool
	RequestID string
}

// Task is the handle of one submission. It completes exactly once, or never
// when cancelled first.
type Task[T any] struct {
	id string
	p  *promise.Promise[*Response[T]]
}

func newTask[T any]() *Task[T] {
	return &Task[T]{id: uuid.NewString(), p: promise.New[*Response[T]]()}
}

// ID returns the submission ID sent as the X-Request-Id header.
func (t *Task[T]) ID() string { return t.id }

// Cancel cancels the submission and its transport operation. It reports
// false when the task had already completed.
func (t *Task[T]) Cancel() bool { return t.p.Cancel() }

// Cancelled reports whether the task was cancelled.
func (t *Task[T]) Cancelled() bool { return t.p.Cancelled() }

// Then registers fn to receive the outcome. fn never runs after a cancellation.
func (t *Task[T]) Then(fn func(*Response[T], error)) { t.p.Then(fn) }

// Done is closed when the task completes or is cancelled.
func (t *Task[T]) Done() <-chan struct{} { return t.p.Done() }

// Await blocks until the task completes or ctx ends. A cancelled task
// returns a cancelled transport error. Ending ctx does not cancel the task.
func (t *Task[T]) Await(ctx context.Context) (*Response[T], error) {
	resp, err := t.p.Await(ctx)
	switch {
	case err == nil:
		return resp, nil
	case t.p.Cancelled():
		return nil, verrors.NewTransportError(fmt.Errorf("%w: %w", promise.ErrCancelled, context.Canceled))
	case ctx.Err() != nil && err == ctx.Err():
		return nil, verrors.Classify(err)
	}
	return nil, err
}
