package params

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"strings"

	verrors "github.com/kbukum/vimeonet/errors"
)

const (
	// ContentTypeForm is set on form encoded bodies when no Content-Type is present.
	ContentTypeForm = "application/x-www-form-urlencoded; charset=utf-8"
	// ContentTypeJSON is set on JSON bodies when no Content-Type is present.
	ContentTypeJSON = "application/json"
)

// Encoding applies parameters to a request. Implementations never mutate
// the request they are given.
type Encoding interface {
	Encode(req *http.Request, p Value) (*http.Request, error)
}

// Destination selects where URLEncoding places parameters.
type Destination int

const (
	// MethodDependent uses the query for GET, HEAD and DELETE and the body otherwise.
	MethodDependent Destination = iota
	// QueryString always uses the query.
	QueryString
	// HTTPBody always uses the body.
	HTTPBody
)

// URLEncoding encodes parameters as a percent escaped query string.
type URLEncoding struct {
	Destination Destination
}

// Encode returns a copy of req carrying p. Empty parameters return req
// itself. Existing query strings are extended with "&", never replaced.
func (e URLEncoding) Encode(req *http.Request, p Value) (*http.Request, error) {
	if req == nil {
		return nil, verrors.NewEncodingError(verrors.MissingURL, nil)
	}
	if p.IsEmpty() {
		return req, nil
	}
	if p.Type() != TypeMap {
		return nil, verrors.NewEncodingError(verrors.InvalidParameters, nil)
	}
	if req.URL == nil {
		return nil, verrors.NewEncodingError(verrors.MissingURL, nil)
	}
	if !validMethod(req.Method) {
		return nil, verrors.NewEncodingError(verrors.MissingHTTPMethod, nil)
	}

	query := Query(p)
	out := req.Clone(req.Context())
	if e.inQuery(req.Method) {
		if query != "" {
			u := *req.URL
			if u.RawQuery != "" {
				u.RawQuery += "&" + query
			} else {
				u.RawQuery = query
			}
			out.URL = &u
		}
		return out, nil
	}

	if out.Header.Get("Content-Type") == "" {
		out.Header.Set("Content-Type", ContentTypeForm)
	}
	setBody(out, []byte(query))
	return out, nil
}

func (e URLEncoding) inQuery(method string) bool {
	switch e.Destination {
	case QueryString:
		return true
	case HTTPBody:
		return false
	}
	return encodesInURL(method)
}

// JSONEncoding sends parameters as a JSON body. GET, HEAD and DELETE still
// use the query string since they carry no body.
type JSONEncoding struct{}

// Encode returns a copy of req carrying p as JSON.
func (JSONEncoding) Encode(req *http.Request, p Value) (*http.Request, error) {
	if req == nil {
		return nil, verrors.NewEncodingError(verrors.MissingURL, nil)
	}
	if p.IsNull() {
		return req, nil
	}
	if req.URL == nil {
		return nil, verrors.NewEncodingError(verrors.MissingURL, nil)
	}
	if !validMethod(req.Method) {
		return nil, verrors.NewEncodingError(verrors.MissingHTTPMethod, nil)
	}
	if encodesInURL(req.Method) {
		return URLEncoding{}.Encode(req, p)
	}
	if t := p.Type(); t != TypeMap && t != TypeArray {
		return nil, verrors.NewEncodingError(verrors.InvalidParameters, nil)
	}

	body, err := p.MarshalJSON()
	if err != nil {
		return nil, verrors.NewEncodingError(verrors.JSONEncoding, err)
	}
	out := req.Clone(req.Context())
	if out.Header.Get("Content-Type") == "" {
		out.Header.Set("Content-Type", ContentTypeJSON)
	}
	setBody(out, body)
	return out, nil
}

// Query flattens a map value into "key=value" pairs joined by "&". Top
// level keys are sorted; nested maps keep insertion order and arrays keep
// element order. Non-map values produce an empty string.
func Query(p Value) string {
	m, ok := p.AsMap()
	if !ok {
		return ""
	}
	keys := m.Keys()
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		v, _ := m.Get(k)
		parts = appendComponents(parts, k, v)
	}
	return strings.Join(parts, "&")
}

func appendComponents(dst []string, key string, v Value) []string {
	switch v.Type() {
	case TypeMap:
		v.m.Range(func(child string, cv Value) bool {
			dst = appendComponents(dst, key+"["+child+"]", cv)
			return true
		})
	case TypeArray:
		for _, e := range v.arr {
			dst = appendComponents(dst, key+"[]", e)
		}
	default:
		dst = append(dst, Escape(key)+"="+Escape(v.Scalar()))
	}
	return dst
}

// Escape percent encodes s for use in a query component. Unreserved
// characters plus "/" and "?" are kept; every general and sub delimiter and
// every non-ASCII byte is escaped.
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !queryAllowed(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	const hex = "0123456789ABCDEF"
	buf := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if queryAllowed(c) {
			buf = append(buf, c)
			continue
		}
		buf = append(buf, '%', hex[c>>4], hex[c&0x0f])
	}
	return string(buf)
}

func queryAllowed(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', '/', '?':
		return true
	}
	return false
}

func encodesInURL(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return true
	}
	return false
}

func validMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
		http.MethodTrace, http.MethodConnect:
		return true
	}
	return false
}

func setBody(req *http.Request, body []byte) {
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
}
