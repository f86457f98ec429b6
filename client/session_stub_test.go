package client

import (
	"context"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/kbukum/vimeonet/transport"
)

// stubSession answers requests from respond on a separate goroutine. When
// hold is set, answers wait until it is closed or the operation is cancelled.
type stubSession struct {
	respond func(*http.Request) transport.Result
	hold    chan struct{}

	mu       sync.Mutex
	requests []*http.Request
	bodies   []string

	cancels     atomic.Int32
	invalidated atomic.Bool
}

type stubTask struct {
	s      *stubSession
	cancel context.CancelFunc
}

func (t stubTask) Cancel() {
	t.s.cancels.Add(1)
	t.cancel()
}

func (s *stubSession) record(req *http.Request, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	s.bodies = append(s.bodies, string(body))
}

func (s *stubSession) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubSession) last() (*http.Request, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil, ""
	}
	return s.requests[len(s.requests)-1], s.bodies[len(s.bodies)-1]
}

func (s *stubSession) answer(ctx context.Context, req *http.Request) transport.Result {
	if s.hold != nil {
		select {
		case <-s.hold:
		case <-ctx.Done():
			return transport.Result{Request: req, Err: transport.Wrap("request", req, transport.Cause(ctx, ctx.Err()))}
		}
	}
	r := s.respond(req)
	r.Request = req
	return r
}

func (s *stubSession) Request(ctx context.Context, req *http.Request, done func(transport.Result)) transport.Task {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	s.record(req, body)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		done(s.answer(ctx, req))
	}()
	return stubTask{s: s, cancel: cancel}
}

func (s *stubSession) Upload(ctx context.Context, req *http.Request, sourcePath string, done func(transport.Result)) transport.Task {
	body, err := os.ReadFile(sourcePath)
	s.record(req, body)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		if err != nil {
			done(transport.Result{Request: req, Err: transport.Wrap("upload", req, err)})
			return
		}
		done(s.answer(ctx, req))
	}()
	return stubTask{s: s, cancel: cancel}
}

func (s *stubSession) Download(ctx context.Context, req *http.Request, destPath string, done func(transport.DownloadResult)) transport.Task {
	s.record(req, nil)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		r := s.answer(ctx, req)
		out := transport.DownloadResult{Request: req, Response: r.Response, Body: r.Body, Err: r.Err}
		if r.Err == nil && r.Response.Success() {
			if err := os.WriteFile(destPath, r.Body, 0o600); err != nil {
				out.Err = err
			} else {
				out.Path, out.Body = destPath, nil
			}
		}
		done(out)
	}()
	return stubTask{s: s, cancel: cancel}
}

func (s *stubSession) Invalidate(bool) { s.invalidated.Store(true) }

func reply(status int, body string) func(*http.Request) transport.Result {
	return func(*http.Request) transport.Result {
		return transport.Result{
			Response: &transport.Response{StatusCode: status, Header: http.Header{"Content-Type": {"application/json"}}},
			Body:     []byte(body),
		}
	}
}

func fail(err error) func(*http.Request) transport.Result {
	return func(req *http.Request) transport.Result {
		return transport.Result{Err: transport.Wrap("request", req, err)}
	}
}
