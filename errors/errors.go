package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Kind is one member of the closed failure taxonomy.
type Kind int

const (
	// KindUnknown is the catch-all; seeing it means the classifier is missing a case.
	KindUnknown Kind = iota
	// KindEncodingFailed is raised before any network call.
	KindEncodingFailed
	// KindTransportFailed wraps a failure of the underlying transport.
	KindTransportFailed
	// KindDecodingFailed means payload bytes are absent or do not match the target.
	KindDecodingFailed
	// KindServerReported means the exchange succeeded but the server reported a failure.
	KindServerReported
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEncodingFailed:
		return "encoding_failed"
	case KindTransportFailed:
		return "transport_failed"
	case KindDecodingFailed:
		return "decoding_failed"
	case KindServerReported:
		return "server_reported"
	default:
		return "unknown"
	}
}

// EncodingReason refines KindEncodingFailed.
type EncodingReason int

const (
	EncodingNone EncodingReason = iota
	InvalidParameters
	MissingURL
	MissingHTTPMethod
	JSONEncoding
)

// String returns the reason name.
func (r EncodingReason) String() string {
	switch r {
	case InvalidParameters:
		return "invalid_parameters"
	case MissingURL:
		return "missing_url"
	case MissingHTTPMethod:
		return "missing_http_method"
	case JSONEncoding:
		return "json_encoding"
	default:
		return "none"
	}
}

// DecodingReason refines KindDecodingFailed.
type DecodingReason int

const (
	DecodingNone DecodingReason = iota
	ResponseDataNotFound
	MalformedJSON
	TypeMismatch
)

// String returns the reason name.
func (r DecodingReason) String() string {
	switch r {
	case ResponseDataNotFound:
		return "response_data_not_found"
	case MalformedJSON:
		return "malformed_json"
	case TypeMismatch:
		return "type_mismatch"
	default:
		return "none"
	}
}

// Error is the single failure value delivered by the pipeline.
type Error struct {
	Kind     Kind
	Encoding EncodingReason
	Decoding DecodingReason

	// StatusCode is the HTTP status (0 when no response was received).
	StatusCode int
	// APIErrorCode is the API specific numeric code; valid when HasAPIErrorCode.
	APIErrorCode    int
	HasAPIErrorCode bool
	// Message is the user facing message reported by the server.
	Message string
	// DeveloperMessage is the developer facing message reported by the server.
	DeveloperMessage string
	// InvalidParameterCodes lists per-field validation codes, in server order.
	InvalidParameterCodes []int
	// InvalidParameterMessage is the message of the first invalid parameter.
	InvalidParameterMessage string
	// Header and Body are the raw response metadata, when a response exists.
	Header http.Header
	Body   []byte

	// Cancelled marks a transport failure caused by the caller cancelling.
	Cancelled bool
	// Retryable is advisory; the pipeline never retries.
	Retryable bool
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("vimeonet: ")
	b.WriteString(e.Kind.String())
	switch e.Kind {
	case KindEncodingFailed:
		if e.Encoding != EncodingNone {
			b.WriteString(" (" + e.Encoding.String() + ")")
		}
	case KindDecodingFailed:
		if e.Decoding != DecodingNone {
			b.WriteString(" (" + e.Decoding.String() + ")")
		}
	case KindServerReported:
		fmt.Fprintf(&b, " (HTTP %d", e.StatusCode)
		if e.HasAPIErrorCode {
			fmt.Fprintf(&b, ", code %d", e.APIErrorCode)
		}
		b.WriteString(")")
		if e.Message != "" {
			b.WriteString(": " + e.Message)
		}
	}
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// InvalidParameterCodesString joins the invalid parameter codes with "_",
// the form used by the API for compound failures.
func (e *Error) InvalidParameterCodesString() string {
	if len(e.InvalidParameterCodes) == 0 {
		return ""
	}
	parts := make([]string, len(e.InvalidParameterCodes))
	for i, c := range e.InvalidParameterCodes {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, "_")
}

// NewEncodingError creates an EncodingFailed error.
func NewEncodingError(reason EncodingReason, cause error) *Error {
	return &Error{Kind: KindEncodingFailed, Encoding: reason, Cause: cause}
}

// NewDecodingError creates a DecodingFailed error.
func NewDecodingError(reason DecodingReason, cause error) *Error {
	return &Error{Kind: KindDecodingFailed, Decoding: reason, Cause: cause}
}

// NewTransportError creates a TransportFailed error.
func NewTransportError(cause error) *Error {
	return &Error{
		Kind:      KindTransportFailed,
		Cause:     cause,
		Retryable: isConnectionClass(cause),
		Cancelled: isCancellation(cause),
	}
}

// NewUnknownError creates an Unknown error.
func NewUnknownError(cause error) *Error {
	return &Error{Kind: KindUnknown, Cause: cause}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// IsEncoding reports whether err is an encoding failure.
func IsEncoding(err error) bool { return KindOf(err) == KindEncodingFailed }

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return KindOf(err) == KindTransportFailed }

// IsDecoding reports whether err is a decoding failure.
func IsDecoding(err error) bool { return KindOf(err) == KindDecodingFailed }

// IsServerReported reports whether err was reported by the server.
func IsServerReported(err error) bool { return KindOf(err) == KindServerReported }

// IsCancelled reports whether err is a caller initiated cancellation.
// Cancellations should not be surfaced to users.
func IsCancelled(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindTransportFailed && e.Cancelled
}

// IsConnection reports whether err is a connection-class transport failure:
// timeout, unreachable host, DNS failure, no connectivity or a lost connection.
func IsConnection(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindTransportFailed && !e.Cancelled && isConnectionClass(e.Cause)
}

// IsRetryable reports whether err is advisory-retryable.
func IsRetryable(err error) bool {
	e, ok := As(err)
	return ok && e.Retryable
}

// IsInvalidToken reports whether the server rejected the access token.
func IsInvalidToken(err error) bool {
	e, ok := As(err)
	if !ok || e.Kind != KindServerReported || e.StatusCode != 401 {
		return false
	}
	for _, v := range e.Header.Values("WWW-Authenticate") {
		if strings.Contains(v, `error="invalid_token"`) {
			return true
		}
	}
	return false
}

// IsServiceUnavailable reports whether the server answered 503.
func IsServiceUnavailable(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindServerReported && e.StatusCode == 503
}

// HasInvalidParameterCode reports whether the server flagged code among the
// invalid parameters.
func HasInvalidParameterCode(err error, code int) bool {
	e, ok := As(err)
	if !ok {
		return false
	}
	for _, c := range e.InvalidParameterCodes {
		if c == code {
			return true
		}
	}
	return false
}
