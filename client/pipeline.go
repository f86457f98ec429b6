package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/vimeonet/cache"
	"github.com/kbukum/vimeonet/endpoint"
	verrors "github.com/kbukum/vimeonet/errors"
	"github.com/kbukum/vimeonet/logger"
	"github.com/kbukum/vimeonet/params"
	"github.com/kbukum/vimeonet/transport"
)

var (
	errCacheMiss  = errors.New("no cached response")
	errNoResponse = errors.New("transport returned no response")
)

const (
	sourceNetwork = "network"
	sourceCache   = "cache"
)

// Submit starts req and decodes a successful payload into T. The returned
// task never blocks the caller; the outcome arrives through Then or Await.
func Submit[T any](ctx context.Context, c *Client, req endpoint.Request) *Task[T] {
	t := newTask[T]()
	ctx, k := newCall(ctx, c, req, "request", t)
	go k.request(ctx)
	return t
}

// Fetch submits req and waits for the outcome. When ctx ends first the
// submission is cancelled and a cancelled transport error is returned.
func Fetch[T any](ctx context.Context, c *Client, req endpoint.Request) (*Response[T], error) {
	t := Submit[T](ctx, c, req)
	resp, err := t.Await(ctx)
	if err != nil && ctx.Err() != nil {
		t.Cancel()
	}
	return resp, err
}

// UploadAs sends the file at sourcePath as the body of req and decodes the
// response into T. Parameters are sent in the query unless req sets its own
// encoding. The cache is never used.
func UploadAs[T any](ctx context.Context, c *Client, req endpoint.Request, sourcePath string) *Task[T] {
	if req.Encoding == nil {
		req.Encoding = params.URLEncoding{Destination: params.QueryString}
	}
	req.CachePolicy = endpoint.NetworkOnly
	t := newTask[T]()
	ctx, k := newCall(ctx, c, req, "upload", t)
	go k.upload(ctx, sourcePath)
	return t
}

// SubmitJSON submits req and returns the JSON payload as generic values.
func (c *Client) SubmitJSON(ctx context.Context, req endpoint.Request) *Task[any] {
	return Submit[any](ctx, c, req.With(endpoint.WithShape(endpoint.ShapeJSON)))
}

// SubmitData submits req and returns the raw response body.
func (c *Client) SubmitData(ctx context.Context, req endpoint.Request) *Task[[]byte] {
	return Submit[[]byte](ctx, c, req.With(endpoint.WithShape(endpoint.ShapeData)))
}

// Upload sends the file at sourcePath and returns the raw response body.
func (c *Client) Upload(ctx context.Context, req endpoint.Request, sourcePath string) *Task[[]byte] {
	if req.Shape == endpoint.ShapeJSON {
		req.Shape = endpoint.ShapeData
	}
	return UploadAs[[]byte](ctx, c, req, sourcePath)
}

// Download streams the response of req into destPath. The task's model is
// the written path. The cache is never used.
func (c *Client) Download(ctx context.Context, req endpoint.Request, destPath string) *Task[string] {
	req.CachePolicy = endpoint.NetworkOnly
	t := newTask[string]()
	ctx, k := newCall(ctx, c, req, "download", t)
	go download(ctx, k, destPath)
	return t
}

// call carries one submission through the pipeline stages.
type call[T any] struct {
	c    *Client
	req  endpoint.Request
	task *Task[T]
	op   string
	key  string

	source string
	status int
	start  time.Time
	span   trace.Span
	log    *logger.Logger
	once   sync.Once
}

func newCall[T any](ctx context.Context, c *Client, req endpoint.Request, op string, t *Task[T]) (context.Context, *call[T]) {
	ctx, span := c.tracer.Start(ctx, "vimeonet.client."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", string(req.Method)),
			attribute.String("url.path", req.Path),
			attribute.String("vimeonet.cache_policy", req.CachePolicy.String()),
			attribute.String("vimeonet.request_id", t.id),
		),
	)
	c.inflight.add()
	k := &call[T]{
		c:      c,
		req:    req,
		task:   t,
		op:     op,
		source: sourceNetwork,
		start:  time.Now(),
		span:   span,
		log: c.log.WithFields(logger.Fields(
			logger.FieldOperation, op,
			logger.FieldMethod, string(req.Method),
			logger.FieldPath, req.Path,
			logger.FieldRequestID, t.id,
		)),
	}
	return ctx, k
}

func (k *call[T]) request(ctx context.Context) {
	httpReq, err := k.c.build(ctx, k.req, k.req.ParameterEncoding(), k.task.id)
	if err != nil {
		k.fail(err)
		return
	}
	k.log.Debug("request encoded", logger.Fields(logger.FieldCachePolicy, k.req.CachePolicy.String()))

	if k.req.CachePolicy.ReadsCache() {
		k.key = k.req.CacheKey()
		k.span.SetAttributes(attribute.String("vimeonet.cache_key", k.key))
	}
	switch k.req.CachePolicy {
	case endpoint.CacheOnly:
		entry, ok := k.c.lookup(k.key)
		if !ok {
			k.fail(verrors.NewDecodingError(verrors.ResponseDataNotFound, errCacheMiss))
			return
		}
		resp, err := k.fromCache(entry)
		if err != nil {
			k.fail(err)
			return
		}
		k.deliver(resp)
		return
	case endpoint.CacheThenNetwork:
		if entry, ok := k.c.lookup(k.key); ok {
			resp, err := k.fromCache(entry)
			if err == nil {
				k.deliver(resp)
				return
			}
			k.log.Warn("discarding undecodable cache entry", logger.Fields(
				logger.FieldCacheKey, k.key,
				logger.FieldError, err.Error(),
			))
			_ = k.c.cache.Remove(k.key)
		}
	}

	k.dispatch(func() transport.Task {
		return k.c.session.Request(ctx, httpReq, k.complete)
	})
}

func (k *call[T]) upload(ctx context.Context, sourcePath string) {
	httpReq, err := k.c.build(ctx, k.req, k.req.ParameterEncoding(), k.task.id)
	if err != nil {
		k.fail(err)
		return
	}
	k.dispatch(func() transport.Task {
		return k.c.session.Upload(ctx, httpReq, sourcePath, k.complete)
	})
}

func download(ctx context.Context, k *call[string], destPath string) {
	httpReq, err := k.c.build(ctx, k.req, k.req.ParameterEncoding(), k.task.id)
	if err != nil {
		k.fail(err)
		return
	}
	k.dispatch(func() transport.Task {
		return k.c.session.Download(ctx, httpReq, destPath, func(r transport.DownloadResult) {
			if r.Err != nil {
				k.fail(r.Err)
				return
			}
			if r.Response == nil {
				k.fail(verrors.NewUnknownError(errNoResponse))
				return
			}
			k.observe(r.Response)
			if e := verrors.FromResponse(r.Response.StatusCode, r.Response.Header, r.Body); e != nil {
				k.fail(e)
				return
			}
			k.deliver(&Response[string]{
				Model:      r.Path,
				StatusCode: r.Response.StatusCode,
				Header:     r.Response.Header,
			})
		})
	})
}

// dispatch hands the request to the session unless the task was already
// cancelled, and ties the task's cancellation to the transport operation.
func (k *call[T]) dispatch(start func() transport.Task) {
	if k.task.Cancelled() {
		k.finish(nil)
		return
	}
	k.log.Debug("dispatching")
	handle := start()
	k.task.p.OnCancel(handle.Cancel)
}

// complete handles the transport outcome of a request or upload.
func (k *call[T]) complete(r transport.Result) {
	if r.Err != nil {
		err := verrors.Classify(r.Err)
		if k.req.CachePolicy == endpoint.TryNetworkThenCache && verrors.IsConnection(err) {
			if resp, ok := k.fallback(); ok {
				k.deliver(resp)
				return
			}
		}
		k.fail(err)
		return
	}
	if r.Response == nil {
		k.fail(verrors.NewUnknownError(errNoResponse))
		return
	}
	k.observe(r.Response)
	if e := verrors.FromResponse(r.Response.StatusCode, r.Response.Header, r.Body); e != nil {
		k.fail(e)
		return
	}

	model, err := decode[T](k.req.Shape, k.req.ModelKeyPath, r.Body)
	if err != nil {
		k.fail(err)
		return
	}
	resp := &Response[T]{
		Model:      model,
		Raw:        r.Body,
		StatusCode: r.Response.StatusCode,
		Header:     r.Response.Header,
		CacheKey:   k.key,
	}
	if k.req.CachePolicy.WritesCache() && k.c.cache != nil && len(r.Body) > 0 {
		k.c.cache.Put(k.key, r.Body)
		k.log.Debug("response cached", logger.Fields(logger.FieldCacheKey, k.key))
	}
	k.deliver(resp)
}

// fallback serves the cached payload after a connection failure.
func (k *call[T]) fallback() (*Response[T], bool) {
	entry, ok := k.c.lookup(k.key)
	if !ok {
		return nil, false
	}
	resp, err := k.fromCache(entry)
	if err != nil {
		return nil, false
	}
	k.log.Info("serving cached response after connection failure", logger.Fields(logger.FieldCacheKey, k.key))
	return resp, true
}

func (k *call[T]) fromCache(entry cache.Entry) (*Response[T], error) {
	model, err := decode[T](k.req.Shape, k.req.ModelKeyPath, entry.Payload)
	if err != nil {
		return nil, err
	}
	k.source = sourceCache
	return &Response[T]{
		Model:     model,
		Raw:       entry.Payload,
		CacheKey:  entry.Key,
		FromCache: true,
	}, nil
}

func (k *call[T]) observe(resp *transport.Response) {
	k.status = resp.StatusCode
	k.span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
}

func (k *call[T]) deliver(resp *Response[T]) {
	resp.RequestID = k.task.id
	k.task.p.Resolve(resp)
	k.finish(nil)
}

func (k *call[T]) fail(err error) {
	e := verrors.Classify(err)
	k.task.p.Reject(e)
	k.finish(e)
}

// finish records the outcome once. A task cancelled before completion is
// reported as cancelled whatever the pipeline produced.
func (k *call[T]) finish(e *verrors.Error) {
	k.once.Do(func() {
		defer k.c.inflight.done()

		outcome := "success"
		switch {
		case k.task.Cancelled() || (e != nil && e.Cancelled):
			outcome = "cancelled"
		case e != nil:
			outcome = e.Kind.String()
		}

		elapsed := time.Since(k.start)
		fields := logger.Fields(
			logger.FieldStatus, outcome,
			logger.FieldDuration, elapsed.Milliseconds(),
			"source", k.source,
		)
		if k.status != 0 {
			fields[logger.FieldStatusCode] = k.status
		}
		if e != nil {
			fields[logger.FieldErrorKind] = e.Kind.String()
			fields[logger.FieldError] = e.Error()
		}
		switch outcome {
		case "success", "cancelled":
			k.log.Debug("request finished", fields)
		default:
			k.log.Warn("request failed", fields)
		}

		k.span.SetAttributes(
			attribute.String("vimeonet.outcome", outcome),
			attribute.String("vimeonet.source", k.source),
		)
		if e != nil && outcome != "cancelled" {
			k.span.RecordError(e)
			k.span.SetStatus(codes.Error, e.Kind.String())
		}
		k.span.End()

		attrs := metric.WithAttributes(
			attribute.String("operation", k.op),
			attribute.String("method", string(k.req.Method)),
			attribute.String("outcome", outcome),
			attribute.String("source", k.source),
		)
		k.c.requests.Add(context.Background(), 1, attrs)
		k.c.duration.Record(context.Background(), elapsed.Seconds(), attrs)
	})
}

func (c *Client) lookup(key string) (cache.Entry, bool) {
	if c.cache == nil || key == "" {
		return cache.Entry{}, false
	}
	return c.cache.Get(key)
}
