package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidated is reported for work submitted to, or cancelled by, an
// invalidated session.
var ErrInvalidated = errors.New("session invalidated")

// Error wraps a failure of the transport layer itself. The request pipeline
// classifies any *Error as a transport failure.
type Error struct {
	Op     string
	Method string
	URL    string
	Err    error
}

// Wrap builds an *Error for op on req. It returns nil for a nil err.
func Wrap(op string, req *http.Request, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	e := &Error{Op: op, Err: err}
	if req != nil {
		e.Method = req.Method
		if req.URL != nil {
			e.URL = req.URL.Redacted()
		}
	}
	return e
}

func (e *Error) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport: %s %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// TransportFailure marks the error for the classifier.
func (e *Error) TransportFailure() bool { return true }

// Cause folds the cancellation cause of ctx into err, so a failure caused by
// invalidation reports ErrInvalidated alongside the underlying error.
func Cause(ctx context.Context, err error) error {
	if err == nil || ctx.Err() == nil {
		return err
	}
	cause := context.Cause(ctx)
	if cause == nil || errors.Is(err, cause) {
		return err
	}
	return fmt.Errorf("%w: %w", cause, err)
}
