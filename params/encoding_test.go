package params

import (
	"io"
	"net/http"
	"strings"
	"testing"

	verrors "github.com/kbukum/vimeonet/errors"
)

func newRequest(t *testing.T, method, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, rawURL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func readBody(t *testing.T, req *http.Request) string {
	t.Helper()
	if req.Body == nil {
		return ""
	}
	b, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestQuery_TopLevelSorted(t *testing.T) {
	p := Object(P("foo", String("bar")), P("baz", String("qux")))
	if got := Query(p); got != "baz=qux&foo=bar" {
		t.Errorf("expected baz=qux&foo=bar, got %q", got)
	}
}

func TestQuery_NestedMap(t *testing.T) {
	p := Object(P("foo", Object(P("bar", Int(1)))))
	if got := Query(p); got != "foo%5Bbar%5D=1" {
		t.Errorf("expected foo%%5Bbar%%5D=1, got %q", got)
	}
}

func TestQuery_NestedMapKeepsInsertionOrder(t *testing.T) {
	p := Object(P("filter", Object(P("z", String("1")), P("a", String("2")))))
	want := "filter%5Bz%5D=1&filter%5Ba%5D=2"
	if got := Query(p); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestQuery_Array(t *testing.T) {
	p := Object(P("foo", Array(String("a"), Int(1), Bool(true))))
	want := "foo%5B%5D=a&foo%5B%5D=1&foo%5B%5D=1"
	if got := Query(p); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestQuery_Booleans(t *testing.T) {
	p := Object(P("yes", Bool(true)), P("no", Bool(false)))
	if got := Query(p); got != "no=0&yes=1" {
		t.Errorf("expected no=0&yes=1, got %q", got)
	}
}

func TestQuery_Deterministic(t *testing.T) {
	p := MustFromAny(map[string]any{
		"c": []any{"x", map[string]any{"k": 1.5}},
		"a": map[string]any{"b": true},
		"b": "v",
	})
	first := Query(p)
	for i := 0; i < 10; i++ {
		if got := Query(p); got != first {
			t.Fatalf("encoding not deterministic: %q vs %q", first, got)
		}
	}
}

func TestEscape_ReservedCharacters(t *testing.T) {
	for _, c := range ":#[]@!$&'()*+,;=" {
		if got := Escape(string(c)); !strings.HasPrefix(got, "%") {
			t.Errorf("expected %q to be escaped, got %q", c, got)
		}
	}
	if got := Escape("a/b?c"); got != "a/b?c" {
		t.Errorf("expected / and ? to be kept, got %q", got)
	}
	if got := Escape("héllo wörld"); got != "h%C3%A9llo%20w%C3%B6rld" {
		t.Errorf("unexpected non-ascii escaping %q", got)
	}
	if got := Escape("A-z_0.9~"); got != "A-z_0.9~" {
		t.Errorf("unreserved characters should pass through, got %q", got)
	}
}

func TestURLEncoding_GETUsesQuery(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodDelete} {
		req := newRequest(t, method, "https://api.vimeo.com/videos")
		out, err := URLEncoding{}.Encode(req, Object(P("page", Int(2))))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", method, err)
		}
		if out.URL.RawQuery != "page=2" {
			t.Errorf("%s: expected page=2, got %q", method, out.URL.RawQuery)
		}
		if out.Header.Get("Content-Type") != "" {
			t.Errorf("%s: content type should be untouched", method)
		}
		if req.URL.RawQuery != "" {
			t.Errorf("%s: original request was mutated", method)
		}
	}
}

func TestURLEncoding_AppendsToExistingQuery(t *testing.T) {
	req := newRequest(t, http.MethodGet, "https://api.vimeo.com/videos?sort=date")
	out, err := URLEncoding{}.Encode(req, Object(P("page", Int(2))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.URL.RawQuery != "sort=date&page=2" {
		t.Errorf("expected sort=date&page=2, got %q", out.URL.RawQuery)
	}
}

func TestURLEncoding_POSTUsesBody(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		req := newRequest(t, method, "https://api.vimeo.com/me/videos")
		out, err := URLEncoding{}.Encode(req, Object(P("name", String("a b")), P("private", Bool(false))))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", method, err)
		}
		if ct := out.Header.Get("Content-Type"); ct != ContentTypeForm {
			t.Errorf("%s: expected form content type, got %q", method, ct)
		}
		if body := readBody(t, out); body != "name=a%20b&private=0" {
			t.Errorf("%s: unexpected body %q", method, body)
		}
		if out.URL.RawQuery != "" {
			t.Errorf("%s: query should be empty, got %q", method, out.URL.RawQuery)
		}
	}
}

func TestURLEncoding_KeepsExistingContentType(t *testing.T) {
	req := newRequest(t, http.MethodPost, "https://api.vimeo.com/me/videos")
	req.Header.Set("Content-Type", "text/plain")
	out, err := URLEncoding{}.Encode(req, Object(P("a", String("b"))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct := out.Header.Get("Content-Type"); ct != "text/plain" {
		t.Errorf("content type overwritten: %q", ct)
	}
}

func TestURLEncoding_EmptyParametersPassThrough(t *testing.T) {
	for name, p := range map[string]Value{"nil": Null(), "empty": Object()} {
		req := newRequest(t, http.MethodGet, "https://api.vimeo.com/videos")
		out, err := URLEncoding{}.Encode(req, p)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if out != req {
			t.Errorf("%s: expected the original request", name)
		}
		if out.URL.RawQuery != "" {
			t.Errorf("%s: expected empty query, got %q", name, out.URL.RawQuery)
		}
		if out.Body != nil {
			t.Errorf("%s: body should be untouched", name)
		}
	}
}

func TestURLEncoding_Failures(t *testing.T) {
	tests := []struct {
		name   string
		req    func() *http.Request
		p      Value
		reason verrors.EncodingReason
	}{
		{
			name:   "non-map parameters",
			req:    func() *http.Request { return newRequest(t, http.MethodGet, "https://x.test/") },
			p:      Array(String("a")),
			reason: verrors.InvalidParameters,
		},
		{
			name:   "nil request",
			req:    func() *http.Request { return nil },
			p:      Object(P("a", Int(1))),
			reason: verrors.MissingURL,
		},
		{
			name: "missing url",
			req: func() *http.Request {
				r := newRequest(t, http.MethodGet, "https://x.test/")
				r.URL = nil
				return r
			},
			p:      Object(P("a", Int(1))),
			reason: verrors.MissingURL,
		},
		{
			name: "missing method",
			req: func() *http.Request {
				r := newRequest(t, http.MethodGet, "https://x.test/")
				r.Method = ""
				return r
			},
			p:      Object(P("a", Int(1))),
			reason: verrors.MissingHTTPMethod,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := URLEncoding{}.Encode(tt.req(), tt.p)
			e, ok := verrors.As(err)
			if !ok {
				t.Fatalf("expected *errors.Error, got %v", err)
			}
			if e.Kind != verrors.KindEncodingFailed || e.Encoding != tt.reason {
				t.Errorf("expected encoding failure %s, got %s/%s", tt.reason, e.Kind, e.Encoding)
			}
		})
	}
}

func TestURLEncoding_ForcedDestination(t *testing.T) {
	req := newRequest(t, http.MethodPost, "https://api.vimeo.com/me")
	out, err := URLEncoding{Destination: QueryString}.Encode(req, Object(P("a", Int(1))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.URL.RawQuery != "a=1" {
		t.Errorf("expected a=1 in query, got %q", out.URL.RawQuery)
	}
}

func TestJSONEncoding_Body(t *testing.T) {
	req := newRequest(t, http.MethodPatch, "https://api.vimeo.com/videos/1")
	p := Object(P("name", String("Clip")), P("privacy", Object(P("view", String("anybody")))))
	out, err := JSONEncoding{}.Encode(req, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct := out.Header.Get("Content-Type"); ct != ContentTypeJSON {
		t.Errorf("expected json content type, got %q", ct)
	}
	want := `{"name":"Clip","privacy":{"view":"anybody"}}`
	if body := readBody(t, out); body != want {
		t.Errorf("expected %s, got %s", want, body)
	}
}

func TestJSONEncoding_InvalidNumber(t *testing.T) {
	req := newRequest(t, http.MethodPost, "https://api.vimeo.com/videos")
	_, err := JSONEncoding{}.Encode(req, Object(P("n", Number("1.2.3"))))
	e, ok := verrors.As(err)
	if !ok || e.Encoding != verrors.JSONEncoding {
		t.Fatalf("expected json encoding failure, got %v", err)
	}
	if e.Cause == nil {
		t.Error("expected a cause")
	}
}

func TestJSONEncoding_GETFallsBackToQuery(t *testing.T) {
	req := newRequest(t, http.MethodGet, "https://api.vimeo.com/videos")
	out, err := JSONEncoding{}.Encode(req, Object(P("q", String("cats"))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.URL.RawQuery != "q=cats" {
		t.Errorf("expected q=cats, got %q", out.URL.RawQuery)
	}
}
