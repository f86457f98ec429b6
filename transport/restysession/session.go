package restysession

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kbukum/vimeonet/logger"
	"github.com/kbukum/vimeonet/transport"
)

// Session is a transport.Session backed by a *resty.Client.
type Session struct {
	cfg     transport.Config
	resty   *resty.Client
	guard   *transport.Guard
	tracker *transport.Tracker
	log     *logger.Logger
}

var _ transport.Session = (*Session)(nil)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithRestyClient replaces the underlying resty client.
func WithRestyClient(c *resty.Client) Option {
	return func(s *Session) { s.resty = c }
}

// New creates a session.
func New(cfg transport.Config, opts ...Option) (*Session, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:     cfg,
		resty:   resty.New(),
		guard:   transport.NewGuard(cfg),
		tracker: transport.NewTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		s.resty.SetTLSClientConfig(tlsCfg)
	}
	s.resty.SetRetryCount(0)
	s.resty.SetHeader("User-Agent", cfg.UserAgent)
	s.resty.SetHeaders(cfg.Headers)

	s.log = logger.OrNop(s.log).WithComponent("restysession")
	s.resty.SetLogger(restyLogger{log: s.log})
	return s, nil
}

// Client returns the underlying resty client.
func (s *Session) Client() *resty.Client { return s.resty }

// Request implements transport.Session.
func (s *Session) Request(ctx context.Context, req *http.Request, done func(transport.Result)) transport.Task {
	return s.tracker.Start(ctx, func(ctx context.Context) {
		body, err := drainBody(req)
		if err != nil {
			done(transport.Result{Request: req, Err: transport.Wrap("request", req, err)})
			return
		}
		done(s.exchange(ctx, "request", req, body))
	}, func(err error) {
		done(transport.Result{Request: req, Err: err})
	})
}

// Upload implements transport.Session.
func (s *Session) Upload(ctx context.Context, req *http.Request, sourcePath string, done func(transport.Result)) transport.Task {
	return s.tracker.Start(ctx, func(ctx context.Context) {
		f, err := os.Open(sourcePath)
		if err != nil {
			done(transport.Result{Request: req, Err: transport.Wrap("upload", req, err)})
			return
		}
		defer func() { _ = f.Close() }()
		done(s.exchange(ctx, "upload", req, f))
	}, func(err error) {
		done(transport.Result{Request: req, Err: err})
	})
}

// Download implements transport.Session.
func (s *Session) Download(ctx context.Context, req *http.Request, destPath string, done func(transport.DownloadResult)) transport.Task {
	return s.tracker.Start(ctx, func(ctx context.Context) {
		done(s.download(ctx, req, destPath))
	}, func(err error) {
		done(transport.DownloadResult{Request: req, Err: err})
	})
}

// Invalidate implements transport.Session.
func (s *Session) Invalidate(cancelPending bool) {
	s.log.Debug("invalidating session", logger.Fields("cancel_pending", cancelPending))
	s.tracker.Invalidate(cancelPending)
}

// Wait blocks until every started operation has delivered its result.
func (s *Session) Wait() { s.tracker.Wait() }

func (s *Session) exchange(ctx context.Context, op string, req *http.Request, body io.Reader) transport.Result {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.execute(ctx, s.prepare(ctx, req, body), req)
	if err != nil {
		return transport.Result{Request: req, Err: transport.Wrap(op, req, err)}
	}
	return transport.Result{
		Request:  req,
		Response: &transport.Response{StatusCode: resp.StatusCode(), Header: resp.Header()},
		Body:     resp.Body(),
	}
}

func (s *Session) download(ctx context.Context, req *http.Request, destPath string) transport.DownloadResult {
	r := s.prepare(ctx, req, nil).SetDoNotParseResponse(true)
	resp, err := s.execute(ctx, r, req)
	if err != nil {
		return transport.DownloadResult{Request: req, Err: transport.Wrap("download", req, err)}
	}
	raw := resp.RawBody()
	defer func() { _ = raw.Close() }()

	result := transport.DownloadResult{
		Request:  req,
		Response: &transport.Response{StatusCode: resp.StatusCode(), Header: resp.Header()},
	}
	if !result.Response.Success() {
		result.Body, _ = io.ReadAll(raw)
		return result
	}
	if err := transport.WriteFile(ctx, raw, resp.RawResponse.ContentLength, destPath); err != nil {
		result.Err = transport.Wrap("download", req, transport.Cause(ctx, err))
		return result
	}
	result.Path = destPath
	return result
}

func (s *Session) prepare(ctx context.Context, req *http.Request, body io.Reader) *resty.Request {
	r := s.resty.R().SetContext(ctx)
	for k, vs := range req.Header {
		r.Header[k] = append([]string(nil), vs...)
	}
	if body != nil {
		r.SetBody(body)
	}
	return r
}

func (s *Session) execute(ctx context.Context, r *resty.Request, req *http.Request) (*resty.Response, error) {
	if err := s.guard.Acquire(ctx); err != nil {
		return nil, transport.Cause(ctx, err)
	}

	start := time.Now()
	resp, err := r.Execute(req.Method, req.URL.String())
	if err != nil {
		s.guard.Release(0, err)
		err = transport.Cause(ctx, err)
		s.log.Debug("exchange failed", logger.Fields(
			logger.FieldMethod, req.Method,
			logger.FieldPath, req.URL.Path,
			logger.FieldError, err.Error(),
		))
		return nil, err
	}
	s.guard.Release(resp.StatusCode(), nil)
	s.log.Debug("exchange completed", logger.Fields(
		logger.FieldMethod, req.Method,
		logger.FieldPath, req.URL.Path,
		logger.FieldStatusCode, resp.StatusCode(),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return resp, nil
}

// drainBody reads an encoded request body so resty can own it.
func drainBody(req *http.Request) (io.Reader, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	rc := req.Body
	if req.GetBody != nil {
		var err error
		if rc, err = req.GetBody(); err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return bytes.NewReader(data), nil
}
