package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/vimeonet/auth"
	"github.com/kbukum/vimeonet/cache"
	"github.com/kbukum/vimeonet/endpoint"
	verrors "github.com/kbukum/vimeonet/errors"
	"github.com/kbukum/vimeonet/logger"
	"github.com/kbukum/vimeonet/params"
	"github.com/kbukum/vimeonet/transport"
)

const instrumentationName = "github.com/kbukum/vimeonet/client"

// HeaderRequestID carries the submission ID on every outgoing request.
const HeaderRequestID = "X-Request-Id"

var errEmptyPath = errors.New("empty request path")

// Client submits API requests through a transport session.
type Client struct {
	cfg     Config
	base    *url.URL
	session transport.Session
	cache   *cache.ResponseCache

	tokens auth.TokenProvider
	creds  *auth.ClientCredentials

	log      *logger.Logger
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram

	inflight *pending
}

var _ auth.Listener = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithCache enables the response cache for policies that use it. Without a
// cache every lookup misses and nothing is stored.
func WithCache(c *cache.ResponseCache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithAuth reads tokens and client credentials from state and clears the
// cache when the user logs out.
func WithAuth(state *auth.State) Option {
	return func(c *Client) {
		c.tokens = state.TokenProvider()
		if creds, ok := state.ClientCredentials(); ok {
			c.creds = &creds
		}
		state.AddListener(c)
	}
}

// WithTokenProvider sets the access token source directly.
func WithTokenProvider(p auth.TokenProvider) Option {
	return func(c *Client) { c.tokens = p }
}

// WithClientCredentials sets the Basic authentication fallback.
func WithClientCredentials(id, secret string) Option {
	return func(c *Client) { c.creds = &auth.ClientCredentials{ID: id, Secret: secret} }
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTracerProvider records pipeline spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(instrumentationName) }
}

// WithMeterProvider records pipeline metrics on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Client) { c.initMetrics(mp) }
}

// New creates a client sending through session.
func New(cfg Config, session transport.Session, opts ...Option) (*Client, error) {
	if session == nil {
		return nil, fmt.Errorf("client: session is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("client: invalid base_url: %w", err)
	}

	c := &Client{cfg: cfg, base: base, session: session, inflight: newPending()}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	if c.requests == nil {
		c.initMetrics(otel.GetMeterProvider())
	}
	c.log = logger.OrNop(c.log).WithComponent("client")
	return c, nil
}

func (c *Client) initMetrics(mp metric.MeterProvider) {
	meter := mp.Meter(instrumentationName)
	c.requests, _ = meter.Int64Counter("vimeonet.client.requests",
		metric.WithDescription("Completed submissions by method, outcome and source"))
	c.duration, _ = meter.Float64Histogram("vimeonet.client.duration",
		metric.WithDescription("Submission duration from encode to delivery"),
		metric.WithUnit("s"))
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Cache returns the response cache, or nil when caching is disabled.
func (c *Client) Cache() *cache.ResponseCache { return c.cache }

// Invalidate stops the session from accepting new work. When cancelPending
// is set, in-flight operations are cancelled and their tasks fail with a
// cancelled transport error.
func (c *Client) Invalidate(cancelPending bool) {
	c.log.Info("invalidating session", logger.Fields("cancel_pending", cancelPending))
	c.session.Invalidate(cancelPending)
}

// ClearCache empties both cache tiers.
func (c *Client) ClearCache() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Clear()
}

// Wait blocks until every submitted pipeline has delivered or been dropped.
// Submissions may continue while another goroutine waits.
func (c *Client) Wait() { <-c.inflight.idleCh() }

// Idle returns a channel that is closed once no submission is pending.
func (c *Client) Idle() <-chan struct{} { return c.inflight.idleCh() }

// Pending returns the number of submissions that have not finished.
func (c *Client) Pending() int { return c.inflight.count() }

// AuthenticationChanged clears cached responses when a user logs out.
func (c *Client) AuthenticationChanged(change auth.Change) {
	if change.From != auth.ModeUser || change.To == auth.ModeUser {
		return
	}
	if err := c.ClearCache(); err != nil {
		c.log.Warn("failed to clear cache after logout", logger.Fields(logger.FieldError, err.Error()))
		return
	}
	c.log.Debug("cache cleared after logout")
}

// authorization reads the provider on every call; tokens are never cached.
func (c *Client) authorization() string {
	return auth.Authorization(c.tokens, c.creds)
}

// build turns req into an encoded, authorized *http.Request.
func (c *Client) build(ctx context.Context, req endpoint.Request, enc params.Encoding, requestID string) (*http.Request, error) {
	if !req.Method.Valid() {
		return nil, verrors.NewEncodingError(verrors.MissingHTTPMethod, fmt.Errorf("method %q", req.Method))
	}
	target, err := c.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), target.String(), nil)
	if err != nil {
		return nil, verrors.NewEncodingError(verrors.MissingURL, err)
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", c.cfg.Accept())
	}
	if httpReq.Header.Get("Authorization") == "" {
		if a := c.authorization(); a != "" {
			httpReq.Header.Set("Authorization", a)
		}
	}
	httpReq.Header.Set(HeaderRequestID, requestID)

	encoded, err := enc.Encode(httpReq, req.Parameters)
	if err != nil {
		return nil, verrors.Classify(err)
	}
	return encoded, nil
}

// resolve joins path to the base URL. Absolute URLs, such as paging links
// returned by the API, are used as given.
func (c *Client) resolve(path string) (*url.URL, error) {
	if strings.TrimSpace(path) == "" {
		return nil, verrors.NewEncodingError(verrors.MissingURL, errEmptyPath)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, verrors.NewEncodingError(verrors.MissingURL, err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	rel := *ref
	rel.Path = strings.TrimPrefix(rel.Path, "/")
	rel.RawPath = strings.TrimPrefix(rel.RawPath, "/")
	return c.base.ResolveReference(&rel), nil
}
