package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"syscall"

	"github.com/tidwall/gjson"
)

// HeaderErrorCode carries the API error code on error responses.
const HeaderErrorCode = "Vimeo-Error-Code"

// Classify maps any failure into the taxonomy. It is pure: the same input
// always yields the same kind. An *Error passes through unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return NewDecodingError(MalformedJSON, err)
	}
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return NewDecodingError(TypeMismatch, err)
	}
	var marshalErr *json.UnsupportedTypeError
	if stderrors.As(err, &marshalErr) {
		return NewEncodingError(JSONEncoding, err)
	}
	var valueErr *json.UnsupportedValueError
	if stderrors.As(err, &valueErr) {
		return NewEncodingError(JSONEncoding, err)
	}

	if isCancellation(err) || isConnectionClass(err) || isTransportClass(err) {
		return NewTransportError(err)
	}
	return NewUnknownError(err)
}

// FromResponse builds an error from a completed exchange. It returns nil
// for 2xx statuses. A 4xx or 5xx status classifies as ServerReported, with
// or without a body; any other status is Unknown.
func FromResponse(status int, header http.Header, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}
	if status < 400 || status > 599 {
		return &Error{
			Kind:       KindUnknown,
			StatusCode: status,
			Header:     header,
			Body:       body,
			Cause:      fmt.Errorf("unexpected HTTP status %d", status),
		}
	}
	e := &Error{
		Kind:       KindServerReported,
		StatusCode: status,
		Header:     header,
		Body:       body,
		Retryable:  status == http.StatusTooManyRequests || status >= 500,
	}

	if v := header.Get(HeaderErrorCode); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			e.APIErrorCode, e.HasAPIErrorCode = code, true
		}
	}

	if len(body) == 0 || !gjson.ValidBytes(body) {
		return e
	}
	doc := gjson.ParseBytes(body)
	if !e.HasAPIErrorCode {
		if code := doc.Get("error_code"); code.Exists() {
			e.APIErrorCode, e.HasAPIErrorCode = int(code.Int()), true
		}
	}
	e.Message = doc.Get("error").String()
	e.DeveloperMessage = doc.Get("developer_message").String()

	doc.Get("invalid_parameters").ForEach(func(_, param gjson.Result) bool {
		if code := param.Get("error_code"); code.Exists() {
			e.InvalidParameterCodes = append(e.InvalidParameterCodes, int(code.Int()))
		}
		if e.InvalidParameterMessage == "" {
			e.InvalidParameterMessage = param.Get("error").String()
		}
		return true
	})
	return e
}

func isCancellation(err error) bool {
	return err != nil && stderrors.Is(err, context.Canceled)
}

// isConnectionClass matches failures that mean the network itself is
// unavailable rather than a protocol problem.
func isConnectionClass(err error) bool {
	if err == nil || isCancellation(err) {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if stderrors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ECONNABORTED,
		syscall.ENETUNREACH,
		syscall.EHOSTUNREACH,
		syscall.ENETDOWN,
		syscall.EPIPE,
	} {
		if stderrors.Is(err, errno) {
			return true
		}
	}
	return stderrors.Is(err, io.ErrUnexpectedEOF) || stderrors.Is(err, io.EOF)
}

// transportError lets transports tag their own failures.
type transportError interface {
	TransportFailure() bool
}

func isTransportClass(err error) bool {
	var te transportError
	return stderrors.As(err, &te) && te.TransportFailure()
}
