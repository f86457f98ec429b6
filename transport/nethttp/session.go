package nethttp

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"

	"github.com/kbukum/vimeonet/logger"
	"github.com/kbukum/vimeonet/transport"
)

// Session is a transport.Session backed by an *http.Client.
type Session struct {
	cfg     transport.Config
	client  *http.Client
	stream  *http.Client
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

// WithRoundTripper replaces the HTTP/2-capable transport, typically with a
// test double. TLS settings in the config are not applied to it.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(s *Session) {
		s.client.Transport = rt
		s.stream.Transport = rt
	}
}

// New creates a session.
func New(cfg transport.Config, opts ...Option) (*Session, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt, err := newTransport(cfg.TLS)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:     cfg,
		client:  &http.Client{Transport: rt, Timeout: cfg.Timeout},
		stream:  &http.Client{Transport: rt},
		guard:   transport.NewGuard(cfg),
		tracker: transport.NewTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrNop(s.log).WithComponent("nethttp")
	return s, nil
}

func newTransport(tlsCfg *transport.TLSConfig) (*http.Transport, error) {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	rt := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	built, err := tlsCfg.Build()
	if err != nil {
		return nil, err
	}
	if built != nil {
		rt.TLSClientConfig = built
	}
	if err := http2.ConfigureTransport(rt); err != nil {
		return nil, fmt.Errorf("nethttp: configure http2: %w", err)
	}
	return rt, nil
}

// Request implements transport.Session.
func (s *Session) Request(ctx context.Context, req *http.Request, done func(transport.Result)) transport.Task {
	return s.tracker.Start(ctx, func(ctx context.Context) {
		done(s.exchange(ctx, "request", req.Clone(ctx)))
	}, func(err error) {
		done(transport.Result{Request: req, Err: err})
	})
}

// Upload implements transport.Session. The file is streamed as the raw
// request body.
func (s *Session) Upload(ctx context.Context, req *http.Request, sourcePath string, done func(transport.Result)) transport.Task {
	return s.tracker.Start(ctx, func(ctx context.Context) {
		r := req.Clone(ctx)
		f, err := os.Open(sourcePath)
		if err != nil {
			done(transport.Result{Request: r, Err: transport.Wrap("upload", r, err)})
			return
		}
		defer func() { _ = f.Close() }()
		info, err := f.Stat()
		if err != nil {
			done(transport.Result{Request: r, Err: transport.Wrap("upload", r, err)})
			return
		}
		r.Body = f
		r.ContentLength = info.Size()
		r.GetBody = func() (io.ReadCloser, error) { return os.Open(sourcePath) }
		done(s.exchange(ctx, "upload", r))
	}, func(err error) {
		done(transport.Result{Request: req, Err: err})
	})
}

// Download implements transport.Session. A 2xx body is written to destPath;
// any other status is reported with its body and nothing is written.
func (s *Session) Download(ctx context.Context, req *http.Request, destPath string, done func(transport.DownloadResult)) transport.Task {
	return s.tracker.Start(ctx, func(ctx context.Context) {
		done(s.download(ctx, req.Clone(ctx), destPath))
	}, func(err error) {
		done(transport.DownloadResult{Request: req, Err: err})
	})
}

// Invalidate implements transport.Session.
func (s *Session) Invalidate(cancelPending bool) {
	s.log.Debug("invalidating session", logger.Fields("cancel_pending", cancelPending))
	s.tracker.Invalidate(cancelPending)
	if !cancelPending {
		return
	}
	s.client.CloseIdleConnections()
}

// Wait blocks until every started operation has delivered its result.
func (s *Session) Wait() { s.tracker.Wait() }

func (s *Session) exchange(ctx context.Context, op string, req *http.Request) transport.Result {
	resp, err := s.send(ctx, s.client, req)
	if err != nil {
		return transport.Result{Request: req, Err: transport.Wrap(op, req, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transport.Result{Request: req, Err: transport.Wrap(op, req, transport.Cause(ctx, fmt.Errorf("read body: %w", err)))}
	}
	return transport.Result{
		Request:  req,
		Response: &transport.Response{StatusCode: resp.StatusCode, Header: resp.Header},
		Body:     body,
	}
}

func (s *Session) download(ctx context.Context, req *http.Request, destPath string) transport.DownloadResult {
	resp, err := s.send(ctx, s.stream, req)
	if err != nil {
		return transport.DownloadResult{Request: req, Err: transport.Wrap("download", req, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	result := transport.DownloadResult{
		Request:  req,
		Response: &transport.Response{StatusCode: resp.StatusCode, Header: resp.Header},
	}
	if !result.Response.Success() {
		result.Body, _ = io.ReadAll(resp.Body)
		return result
	}
	if err := transport.WriteFile(ctx, resp.Body, resp.ContentLength, destPath); err != nil {
		result.Err = transport.Wrap("download", req, transport.Cause(ctx, err))
		return result
	}
	result.Path = destPath
	return result
}

// send passes the guard and performs one round trip.
func (s *Session) send(ctx context.Context, c *http.Client, req *http.Request) (*http.Response, error) {
	if err := s.guard.Acquire(ctx); err != nil {
		return nil, transport.Cause(ctx, err)
	}
	s.cfg.ApplyHeaders(req)

	start := time.Now()
	resp, err := c.Do(req)
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
	s.guard.Release(resp.StatusCode, nil)
	s.log.Debug("exchange completed", logger.Fields(
		logger.FieldMethod, req.Method,
		logger.FieldPath, req.URL.Path,
		logger.FieldStatusCode, resp.StatusCode,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return resp, nil
}
