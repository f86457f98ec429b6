package endpoint

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kbukum/vimeonet/params"
)

// Method is an HTTP method accepted by the API.
type Method string

const (
	GET     Method = http.MethodGet
	POST    Method = http.MethodPost
	PUT     Method = http.MethodPut
	PATCH   Method = http.MethodPatch
	DELETE  Method = http.MethodDelete
	HEAD    Method = http.MethodHead
	OPTIONS Method = http.MethodOptions
)

// Valid reports whether m is one of the known methods.
func (m Method) Valid() bool {
	switch m {
	case GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS:
		return true
	}
	return false
}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	return m, m.Valid()
}

// CachePolicy selects how the pipeline combines the response cache with the network.
type CachePolicy int

const (
	// NetworkOnly never reads or writes the cache.
	NetworkOnly CachePolicy = iota
	// CacheOnly serves from the cache and never touches the network. A miss
	// is a decoding failure.
	CacheOnly
	// CacheThenNetwork serves a live cache entry when present, otherwise goes
	// to the network and stores the result.
	CacheThenNetwork
	// TryNetworkThenCache always goes to the network first and falls back to
	// the cache only when the transport fails with a connection-class error.
	TryNetworkThenCache
)

// String returns the policy name.
func (p CachePolicy) String() string {
	switch p {
	case CacheOnly:
		return "cache_only"
	case CacheThenNetwork:
		return "cache_then_network"
	case TryNetworkThenCache:
		return "try_network_then_cache"
	default:
		return "network_only"
	}
}

// ReadsCache reports whether the policy may serve a cached payload.
func (p CachePolicy) ReadsCache() bool { return p != NetworkOnly }

// WritesCache reports whether successful network payloads are stored.
func (p CachePolicy) WritesCache() bool {
	return p == CacheThenNetwork || p == TryNetworkThenCache
}

// Shape is the payload form the caller expects.
type Shape int

const (
	// ShapeJSON expects a JSON document, optionally decoded into a type.
	ShapeJSON Shape = iota
	// ShapeData expects raw bytes; no JSON parsing happens.
	ShapeData
	// ShapeNone expects no payload; an empty body is a success.
	ShapeNone
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeData:
		return "data"
	case ShapeNone:
		return "none"
	default:
		return "json"
	}
}

// Request is a declarative description of one API call. It is a value
// type; options return modified copies.
type Request struct {
	Path        string
	Method      Method
	Parameters  params.Value
	CachePolicy CachePolicy
	Shape       Shape
	// ModelKeyPath selects a sub-document of the JSON response (gjson path
	// syntax, e.g. "data") before typed decoding.
	ModelKeyPath string
	// Encoding overrides the parameter encoding. Nil means URL encoding.
	Encoding params.Encoding
	Headers  http.Header
}

// Option customises a Request.
type Option func(*Request)

// New builds a GET request for path with the JSON shape and no caching.
func New(path string, opts ...Option) Request {
	r := Request{Path: path, Method: GET}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithMethod sets the method.
func WithMethod(m Method) Option { return func(r *Request) { r.Method = m } }

// WithParameters sets the parameter tree.
func WithParameters(p params.Value) Option { return func(r *Request) { r.Parameters = p } }

// WithCachePolicy sets the cache policy.
func WithCachePolicy(p CachePolicy) Option { return func(r *Request) { r.CachePolicy = p } }

// WithShape sets the expected response shape.
func WithShape(s Shape) Option { return func(r *Request) { r.Shape = s } }

// WithModelKeyPath sets the response sub-document to decode.
func WithModelKeyPath(path string) Option { return func(r *Request) { r.ModelKeyPath = path } }

// WithEncoding sets the parameter encoding.
func WithEncoding(e params.Encoding) Option { return func(r *Request) { r.Encoding = e } }

// WithHeader adds a request header.
func WithHeader(key, value string) Option {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = http.Header{}
		} else {
			r.Headers = r.Headers.Clone()
		}
		r.Headers.Add(key, value)
	}
}

// With returns a copy of r with opts applied.
func (r Request) With(opts ...Option) Request {
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// ParameterEncoding returns the configured encoding, defaulting to URL encoding.
func (r Request) ParameterEncoding() params.Encoding {
	if r.Encoding == nil {
		return params.URLEncoding{}
	}
	return r.Encoding
}

// CacheKey returns the fingerprint addressing this request in the response cache.
// A query embedded in Path takes part in the hash, not in the dotted prefix.
func (r Request) CacheKey() string {
	path, embedded, _ := strings.Cut(r.Path, "?")
	path = strings.ReplaceAll(strings.TrimPrefix(path, "/"), "/", ".")

	query := params.Query(r.Parameters)
	switch {
	case embedded != "" && query != "":
		query = embedded + "&" + query
	case embedded != "":
		query = embedded
	}
	return "cached." + path + "." + strconv.FormatUint(xxhash.Sum64String(query), 10)
}
