package transport

import (
	"context"
	"net/http"
)

// Session is the transport capability consumed by the client.
type Session interface {
	// Request sends req and reports the response body.
	Request(ctx context.Context, req *http.Request, done func(Result)) Task

	// Upload sends the file at sourcePath as the request body.
	Upload(ctx context.Context, req *http.Request, sourcePath string, done func(Result)) Task

	// Download streams a successful response body into destPath.
	Download(ctx context.Context, req *http.Request, destPath string, done func(DownloadResult)) Task

	// Invalidate stops the session from accepting new work. When
	// cancelPending is set, operations already in flight are cancelled.
	Invalidate(cancelPending bool)
}

// Task is the cancellation handle of one operation. Cancel is advisory: an
// operation that has already completed is unaffected.
type Task interface {
	Cancel()
}

// Response is the metadata of a completed HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
}

// Result is the outcome of a request or upload. Err is set when the exchange
// did not complete; a completed exchange with an error status has Response set
// and Err nil.
type Result struct {
	Request  *http.Request
	Response *Response
	Body     []byte
	Err      error
}

// DownloadResult is the outcome of a download. Path is set only when the body
// was written; for an error status Body holds the server's response instead.
type DownloadResult struct {
	Request  *http.Request
	Response *Response
	Body     []byte
	Path     string
	Err      error
}

// Success reports whether the exchange completed with a 2xx status.
func (r *Response) Success() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
